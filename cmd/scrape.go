package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-engine/internal/engine"
	"github.com/sells-group/scrape-engine/internal/store"
)

var scrapeFlags struct {
	stealth     bool
	crawl       bool
	contentOnly bool
	maxPages    int
	query       string
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [urls...]",
	Short: "Scrape one or more URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := engine.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close() }()

		st, err := store.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		if st != nil {
			eng.WithCache(st)
		}

		results, err := eng.Scrape(ctx, args, engine.Options{
			Stealth:        scrapeFlags.stealth,
			MaxPages:       scrapeFlags.maxPages,
			ContentOnly:    scrapeFlags.contentOnly,
			EnableCrawling: scrapeFlags.crawl,
			Query:          scrapeFlags.query,
		})
		if err != nil {
			return err
		}

		zap.L().Info("scrape complete",
			zap.Int("requested", len(args)),
			zap.Int("results", len(results)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		return nil
	},
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeFlags.stealth, "stealth", false, "force stealth rendering for every URL")
	scrapeCmd.Flags().BoolVar(&scrapeFlags.crawl, "crawl", false, "follow in-page links under the crawl budget")
	scrapeCmd.Flags().BoolVar(&scrapeFlags.contentOnly, "content-only", false, "return content without titles or metadata")
	scrapeCmd.Flags().IntVar(&scrapeFlags.maxPages, "max-pages", 0, "overall page budget for the run (0 = configured default)")
	scrapeCmd.Flags().StringVar(&scrapeFlags.query, "query", "", "guiding query for link prioritization")

	rootCmd.AddCommand(scrapeCmd)
}
