package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "qpv-zrr",
	Short: "QPV / ZRR eligibility checker",
	Long:  "Resolves a SIRET or a free-text address to coordinates, then reports priority-urban-district (QPV) containment and proximity plus rural-revitalization-zone (ZRR) membership of the commune.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(".env")

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
