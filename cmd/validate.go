package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/bundlecfg/internal/config"
	bcerrors "github.com/conneroisu/bundlecfg/internal/errors"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the project layout and the derived configuration",
	Long: `Check the project layout for problems and try the derivation.

Layout errors (an output directory containing the sources, for example)
and derivation errors (missing copy sources, an unreadable templates
directory) fail the command. Warnings are printed but do not.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := config.ValidateLayout(p.config, afero.NewOsFs())
	if result.HasErrors() || result.HasWarnings() {
		fmt.Fprint(out, result.String())
	}

	_, deriveErr := p.deriveConfiguration(cmd)
	var cfgErr *bcerrors.ConfigurationError
	if errors.As(deriveErr, &cfgErr) {
		fmt.Fprintln(out, "Derivation problems:")
		for _, problem := range cfgErr.Problems {
			fmt.Fprintf(out, "  - %s\n", problem)
		}
	}

	switch {
	case result.HasErrors() && deriveErr != nil:
		return errors.Join(fmt.Errorf("layout has %d error(s)", len(result.Errors)), deriveErr)
	case result.HasErrors():
		return fmt.Errorf("layout has %d error(s)", len(result.Errors))
	case deriveErr != nil:
		return deriveErr
	}

	fmt.Fprintf(out, "Configuration is valid (%s mode)\n", p.mode)
	return nil
}
