package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/bundlecfg/internal/bundler"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the project into the output directory",
	Long: `Derive the configuration and run a single esbuild build.

The output directory is emptied first, the asset directories are copied
and every page template is rendered with the bundle injected.

Examples:
  NODE_ENV=production bundlecfg build    # hashed, minified bundles
  NODE_ENV=development bundlecfg build   # source maps, no hashes`,
	Aliases: []string{"b"},
	RunE:    runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	derived, err := p.deriveConfiguration(cmd)
	if err != nil {
		return err
	}

	result, err := bundler.New(derived, bundler.WithLogger(p.logger)).Build(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Built %d file(s) and %d page(s) into %s\n",
		len(result.Outputs), len(derived.AllPages()), derived.Output.Dir)
	return nil
}
