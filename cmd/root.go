package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "quotepipe",
	Short: "Quote metadata batch pipeline",
	Long:  "Scrapes quote pages, structures them per author, generates story metadata through an asynchronous batch job, and merges the results back into the table.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
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
