package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"turnsync/internal/daemon"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var result daemon.StatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		if len(result.Watchers) > 0 {
			fmt.Printf("%-6s %-8s %-30s %-30s %-7s %-7s %-7s %s\n",
				"DIR", "WATCHING", "ROOT", "TARGET", "SYNCED", "SKIPPED", "FAILED", "LAST SYNC")

			for _, w := range result.Watchers {
				lastSync := "-"
				if w.LastSync != nil {
					lastSync = w.LastSync.Format(timeLayout)
				}
				fmt.Printf("%-6s %-8t %-30s %-30s %-7d %-7d %-7d %s\n",
					w.Name, w.Watching, w.Root, w.Target, w.Synced, w.Skipped, w.Failed, lastSync)
			}
		}

		if len(result.Games) > 0 {
			fmt.Printf("hosting: %t\n", result.Hosting)
			fmt.Printf("%-20s %-28s %-16s %s\n", "GAME", "SCHEDULE", "LAST SLOT", "LAST HOSTED")

			for _, g := range result.Games {
				last := "-"
				if g.LastHosted != nil {
					last = g.LastHosted.Format(timeLayout)
				}
				fmt.Printf("%-20s %-28s %-16s %s\n", g.Name, g.Schedule, g.LastSlot, last)
			}
		}

		if result.Stats != nil {
			fmt.Printf("copies: %d total, %d ok, %d failed\n",
				result.Stats.Total, result.Stats.Success, result.Stats.Failed)
		}

		for _, m := range result.Messages {
			fmt.Printf("[%s] %-7s %s\n", m.At.Format(timeLayout), m.Severity, m.Text)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
