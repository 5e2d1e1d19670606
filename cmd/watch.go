package cmd

import (
	"fmt"
	"turnsync/internal/daemon"
	"turnsync/internal/logger"
	"turnsync/internal/syncer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Push order files to the host folder and pull turn files back",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	a, err := newApp(false)
	if err != nil {
		return err
	}

	watchers, err := a.watchers()
	if err != nil {
		return err
	}

	for i, w := range watchers {
		if err := w.Start(); err != nil {
			for _, started := range watchers[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start %s watcher: %w", w.Name(), err)
		}
	}

	defer func(ws []*syncer.Watcher) {
		for _, w := range ws {
			w.Stop()
		}
	}(watchers)

	logger.Log.Info("turnsync watching",
		zap.String("local", cfg.LocalFolder),
		zap.String("host", cfg.HostFolder),
		zap.Int("port", cfg.DaemonPort))

	srv := daemon.NewServer(daemon.Options{
		Port:     cfg.DaemonPort,
		Watchers: watchers,
		History:  a.history,
		Runs:     a.runs,
		Messages: a.messages,
		Log:      logger.Log,
	})
	return serveUntilStopped(srv)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
