package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scrape-engine",
	Short: "Adaptive web content acquisition",
	Long:  "Fetches clean extracted text for URLs, escalating from plain HTTP to stealth headless rendering and bounded crawling when sites fight automation.",
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
