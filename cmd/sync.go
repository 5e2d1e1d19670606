package cmd

import (
	"fmt"
	"turnsync/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy every pending order and turn file once, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		a, err := newApp(false)
		if err != nil {
			return err
		}

		watchers, err := a.watchers()
		if err != nil {
			return err
		}

		var synced, skipped, failed int
		for _, w := range watchers {
			logger.Log.Info("starting full sync",
				zap.String("direction", w.Name()))

			results, err := w.FullSync(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to %s: %w", w.Name(), err)
			}

			for _, r := range results {
				switch {
				case r.Err != nil:
					failed++
				case r.Skipped:
					skipped++
				default:
					synced++
				}
			}
		}

		fmt.Printf("done: %d synced, %d skipped, %d failed\n", synced, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d files failed to copy", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
