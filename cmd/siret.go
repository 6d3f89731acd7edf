package main

import (
	"os"

	"github.com/spf13/cobra"
)

var siretJSON bool

var siretCmd = &cobra.Command{
	Use:   "siret <siret>",
	Short: "Check QPV / ZRR eligibility for a SIRET",
	Long:  "Looks the establishment up in the Sirene registry, geocodes its registered address, and reports priority-district proximity and ZRR membership.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("siret"); err != nil {
			return err
		}

		env, err := initApp()
		if err != nil {
			return err
		}

		res, err := env.Analyzer.AnalyzeSIRET(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if siretJSON {
			return printJSON(res)
		}
		renderResult(os.Stdout, res)
		return nil
	},
}

func init() {
	siretCmd.Flags().BoolVar(&siretJSON, "json", false, "print the raw result JSON")
	rootCmd.AddCommand(siretCmd)
}
