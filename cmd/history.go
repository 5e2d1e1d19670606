package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"turnsync/internal/model"

	"github.com/spf13/cobra"
)

var (
	historyN      int
	historyRuns   bool
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent copies, or host runs with --runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/history"
		if historyRuns {
			path = "/runs"
		}

		url := fmt.Sprintf("%s?n=%d", daemonURL(path), historyN)
		if historyFailed && !historyRuns {
			url += "&status=failed"
		}
		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if historyRuns {
			return printRuns(resp.Body)
		}
		return printHistory(resp.Body)
	},
}

func printHistory(r io.Reader) error {
	var histories []model.History
	if err := json.NewDecoder(r).Decode(&histories); err != nil {
		return err
	}

	if len(histories) == 0 {
		fmt.Println("no history yet")
		return nil
	}

	for _, h := range histories {
		status := "✓"
		if h.Status == model.StatusFailed {
			status = "✗"
		}

		fmt.Printf("%s [%s] %-10s %-7s %s\n",
			status,
			h.SyncedAt.Format(timeLayout),
			h.Direction,
			h.FileEvent,
			h.SrcPath,
		)
		if h.ErrMsg != "" {
			fmt.Printf("    %s\n", h.ErrMsg)
		}
	}

	return nil
}

func printRuns(r io.Reader) error {
	var runs []model.HostRun
	if err := json.NewDecoder(r).Decode(&runs); err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no host runs yet")
		return nil
	}

	for _, run := range runs {
		status := "✓"
		if run.Status == model.RunFailed {
			status = "✗"
		}

		fmt.Printf("%s [%s] %-20s %-14s exit=%d in=%d out=%d\n",
			status,
			run.TriggeredAt.Format(timeLayout),
			run.Game,
			run.Slot,
			run.ExitCode,
			run.Collected,
			run.Distributed,
		)
		if run.ErrMsg != "" {
			fmt.Printf("    %s\n", run.ErrMsg)
		}
	}

	return nil
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyRuns, "runs", false, "show host runs instead of copies")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show only failed copies")
	rootCmd.AddCommand(historyCmd)
}
