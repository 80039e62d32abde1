package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/opsdash/admin"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear a running server's response cache",
	}
	pf := cmd.PersistentFlags()
	pf.String("server", envOr("OPSDASH_SERVER", "http://localhost:3001"), "server base URL")
	pf.String("api-key", os.Getenv("OPSDASH_ADMIN_API_KEY"), "admin API key")
	pf.String("token", os.Getenv("OPSDASH_ADMIN_TOKEN"), "admin bearer token")

	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd())
	return cmd
}

func adminClient(cmd *cobra.Command) (*admin.Client, error) {
	server, _ := cmd.Flags().GetString("server")
	key, _ := cmd.Flags().GetString("api-key")
	token, _ := cmd.Flags().GetString("token")
	return admin.NewClient(server, admin.WithAPIKey(key), admin.WithBearerToken(token))
}

func newCacheStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cached entries and their ages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := adminClient(cmd)
			if err != nil {
				return err
			}
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "KEY\tAGE\n")
			for _, e := range stats.Entries {
				age := time.Duration(e.Age) * time.Millisecond
				fmt.Fprintf(tw, "%s\t%s\n", e.Key, age.Round(time.Millisecond))
			}
			fmt.Fprintf(tw, "\n%d entries\n", stats.Size)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all entries, or those whose key contains --pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := adminClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.Clear(cmd.Context(), pattern)
			if err != nil {
				return err
			}
			if pattern != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries matching %q\n", res.Cleared, pattern)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", res.Cleared)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "substring of keys to remove")
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
