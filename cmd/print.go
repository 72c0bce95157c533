package cmd

import (
	"github.com/spf13/cobra"

	"github.com/conneroisu/bundlecfg/internal/render"
)

var printFormat string

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the derived build configuration",
	Long: `Derive the build configuration for the current mode and print it.

Examples:
  bundlecfg print                        # JSON, mode from NODE_ENV
  NODE_ENV=development bundlecfg print   # development profile
  bundlecfg print --format yaml          # YAML output`,
	Aliases: []string{"p"},
	RunE:    runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)

	printCmd.Flags().StringVarP(&printFormat, "format", "f", "json", "Output format (json, yaml)")
}

func runPrint(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(printFormat)
	if err != nil {
		return err
	}

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	derived, err := p.deriveConfiguration(cmd)
	if err != nil {
		return err
	}

	return render.Encode(cmd.OutOrStdout(), derived, format)
}
