package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/bundlecfg/internal/bundler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server",
	Long: `Build, watch the sources and serve the output directory.

The server listens on dev_server.port (3000 unless configured). In
development mode pages reload themselves after each rebuild.

Examples:
  NODE_ENV=development bundlecfg serve
  bundlecfg serve --port 8080`,
	Aliases: []string{"s"},
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to serve on (default from dev_server.port)")
	viper.BindPFlag("dev_server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	derived, err := p.deriveConfiguration(cmd)
	if err != nil {
		return err
	}

	return bundler.New(derived, bundler.WithLogger(p.logger)).Serve(cmd.Context())
}
