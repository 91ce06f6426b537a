package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/scrape-engine/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("cache: no driver configured")
		}
		defer func() { _ = st.Close() }()

		n, err := st.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("cached results: %d\n", n)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		if st == nil {
			return eris.New("cache: no driver configured")
		}
		defer func() { _ = st.Close() }()

		n, err := st.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d expired entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
