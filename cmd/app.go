package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	"turnsync/internal/config"
	"turnsync/internal/daemon"
	"turnsync/internal/db"
	"turnsync/internal/logger"
	"turnsync/internal/notify"
	"turnsync/internal/repository"
	"turnsync/internal/syncer"

	"go.uber.org/zap"
)

// app holds what the long-running commands share.
type app struct {
	history  *repository.HistoryRepository
	runs     *repository.RunRepository
	messages *notify.Recorder
}

func newApp(requireEngine bool) (*app, error) {
	env, err := config.CurrentEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveFolders(env, requireEngine); err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	return &app{
		history:  repository.NewHistoryRepository(conn),
		runs:     repository.NewRunRepository(conn),
		messages: notify.NewRecorder(100, notify.NewZap(logger.Log)),
	}, nil
}

func (a *app) sourceFactory() syncer.SourceFactory {
	if cfg.Watch.PollInterval > 0 {
		return syncer.PollSource(cfg.Watch.PollInterval, cfg.Watch.BufferSize, logger.Log)
	}
	return syncer.FSNotifySource(cfg.Watch.BufferSize, logger.Log)
}

// watchers builds the push and pull watchers without starting them.
func (a *app) watchers() ([]*syncer.Watcher, error) {
	var out []*syncer.Watcher
	for _, opts := range []syncer.Options{
		syncer.Push(cfg.LocalFolder, cfg.HostFolder),
		syncer.Pull(cfg.LocalFolder, cfg.HostFolder),
	} {
		opts.IgnoreList = cfg.Watch.IgnoreList
		opts.Debounce = cfg.Watch.Debounce
		opts.NewSource = a.sourceFactory()
		opts.Notifier = a.messages
		opts.History = a.history
		opts.Log = logger.Log.With(zap.String("direction", opts.Name))

		w, err := syncer.New(opts)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// serveUntilStopped runs the status API until a signal or POST /stop.
func serveUntilStopped(srv *daemon.Server) error {
	srv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down",
			zap.String("signal", sig.String()))
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
