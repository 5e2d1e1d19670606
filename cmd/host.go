package cmd

import (
	"context"
	"fmt"
	"turnsync/internal/daemon"
	"turnsync/internal/engine"
	"turnsync/internal/host"
	"turnsync/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var hostOnce bool

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run the engine for each game at its scheduled hour",
	RunE:  runHost,
}

func runHost(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	games, err := cfg.Schedules()
	if err != nil {
		return err
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}

	launcher := &engine.Exec{
		Path:    cfg.Engine.Path,
		Args:    cfg.Engine.Args,
		Dir:     cfg.LocalFolder,
		Timeout: cfg.Engine.Timeout,
		Log:     logger.Log,
	}

	orch, err := host.New(host.Options{
		Games:               games,
		LocalRoot:           cfg.LocalFolder,
		SharedRoot:          cfg.HostFolder,
		Launcher:            launcher,
		Notifier:            a.messages,
		Runs:                a.runs,
		History:             a.history,
		Interval:            cfg.Host.Interval,
		Log:                 logger.Log,
		DistributeOnFailure: cfg.Host.DistributeOnFailure,
	})
	if err != nil {
		return err
	}

	if hostOnce {
		if !orch.Tick(context.Background()) {
			return fmt.Errorf("tick skipped: %w", host.ErrBusy)
		}

		runs, err := a.runs.GetRecent(len(games))
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s %s exit=%d %s %s\n", r.Game, r.Slot, r.ExitCode, r.Status, r.ErrMsg)
		}
		if len(runs) == 0 {
			fmt.Println("no game due")
		}
		return nil
	}

	if err := orch.Start(); err != nil {
		return err
	}
	defer orch.Stop()

	logger.Log.Info("turnsync hosting",
		zap.Int("games", len(games)),
		zap.Duration("interval", cfg.Host.Interval),
		zap.Int("port", cfg.DaemonPort))

	srv := daemon.NewServer(daemon.Options{
		Port:         cfg.DaemonPort,
		Orchestrator: orch,
		History:      a.history,
		Runs:         a.runs,
		Messages:     a.messages,
		Log:          logger.Log,
	})
	return serveUntilStopped(srv)
}

func init() {
	hostCmd.Flags().BoolVar(&hostOnce, "once", false, "run a single tick and exit")
	rootCmd.AddCommand(hostCmd)
}
