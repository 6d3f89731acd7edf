package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/refdata"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Load the reference datasets and report their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := datasetManifest()
		if err != nil {
			return err
		}

		store := refdata.NewStore(m)
		if err := store.Load(); err != nil {
			return err
		}

		stats := store.Stats()
		fmt.Printf("QPV zones:    %d from %s\n", stats.ZoneCount, orDash(stats.ZonePath))
		fmt.Printf("ZRR communes: %d (%d classified) from %s\n",
			stats.CommuneCount, store.Communes().Members(), orDash(stats.CommunePath))
		fmt.Printf("Loaded in:    %s\n", stats.LoadedIn.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
