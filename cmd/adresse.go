package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var adresseJSON bool

var adresseCmd = &cobra.Command{
	Use:   "adresse <address>...",
	Short: "Check QPV / ZRR eligibility for a free-text address",
	Long:  "Geocodes the address through the Base Adresse Nationale and reports priority-district proximity and ZRR membership of the matched commune.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("adresse"); err != nil {
			return err
		}

		env, err := initApp()
		if err != nil {
			return err
		}

		res, err := env.Analyzer.AnalyzeAddress(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if adresseJSON {
			return printJSON(res)
		}
		renderResult(os.Stdout, res)
		return nil
	},
}

func init() {
	adresseCmd.Flags().BoolVar(&adresseJSON, "json", false, "print the raw result JSON")
	rootCmd.AddCommand(adresseCmd)
}
