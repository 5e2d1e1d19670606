// Package daemon exposes a running turnsync process over a small local HTTP
// API used by the status, history and stop commands.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"turnsync/internal/host"
	"turnsync/internal/model"
	"turnsync/internal/notify"
	"turnsync/internal/repository"
	"turnsync/internal/syncer"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const defaultLimit = 20

type Options struct {
	Port         int
	Watchers     []*syncer.Watcher
	Orchestrator *host.Orchestrator
	History      *repository.HistoryRepository
	Runs         *repository.RunRepository
	Messages     *notify.Recorder
	Log          *zap.Logger
}

type Server struct {
	echo   *echo.Echo
	opts   Options
	stopCh chan struct{}

	// ctx outlives individual requests so a manual hosting run is not
	// killed when the client disconnects.
	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		echo:   e,
		opts:   opts,
		stopCh: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.POST("/stop", s.handleStop)

	s.echo.GET("/history", s.handleHistory)
	s.echo.GET("/runs", s.handleRuns)

	g := s.echo.Group("/games")
	g.GET("", s.handleGames)
	g.POST("/:name/host", s.handleHostGame)
}

func (s *Server) Start() {
	go func() {
		addr := "127.0.0.1:" + strconv.Itoa(s.opts.Port)
		s.opts.Log.Info("daemon server started", zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.opts.Log.Error("daemon server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	return s.echo.Shutdown(ctx)
}

// StopCh fires once per POST /stop.
func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

type StatusResponse struct {
	Watchers []model.WatcherSnapshot `json:"watchers"`
	Games    []model.GameSnapshot    `json:"games,omitempty"`
	Hosting  bool                    `json:"hosting"`
	Stats    *repository.Stats       `json:"stats,omitempty"`
	Messages []notify.Message        `json:"messages,omitempty"`
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := StatusResponse{Watchers: []model.WatcherSnapshot{}}
	for _, w := range s.opts.Watchers {
		resp.Watchers = append(resp.Watchers, w.Snapshot())
	}

	if o := s.opts.Orchestrator; o != nil {
		resp.Games = o.Games()
		resp.Hosting = o.Busy()
	}

	if s.opts.History != nil {
		stats, err := s.opts.History.GetStats()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		resp.Stats = &stats
	}

	if s.opts.Messages != nil {
		resp.Messages = s.opts.Messages.Messages()
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func limitParam(c echo.Context) int {
	n := defaultLimit
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil && parsed > 0 {
			n = parsed
		}
	}
	return n
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.opts.History == nil {
		return c.JSON(http.StatusOK, []model.History{})
	}

	var (
		histories []model.History
		err       error
	)
	switch status := c.QueryParam("status"); {
	case status == "":
		histories, err = s.opts.History.GetRecent(limitParam(c))
	case strings.EqualFold(status, string(model.StatusFailed)):
		histories, err = s.opts.History.GetFailed(limitParam(c))
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status must be " + string(model.StatusFailed)})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, histories)
}

func (s *Server) handleRuns(c echo.Context) error {
	if s.opts.Runs == nil {
		return c.JSON(http.StatusOK, []model.HostRun{})
	}

	var (
		runs []model.HostRun
		err  error
	)
	if game := c.QueryParam("game"); game != "" {
		runs, err = s.opts.Runs.GetByGame(game)
	} else {
		runs, err = s.opts.Runs.GetRecent(limitParam(c))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGames(c echo.Context) error {
	if s.opts.Orchestrator == nil {
		return c.JSON(http.StatusOK, []model.GameSnapshot{})
	}
	return c.JSON(http.StatusOK, s.opts.Orchestrator.Games())
}

func (s *Server) handleHostGame(c echo.Context) error {
	if s.opts.Orchestrator == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "hosting is not enabled"})
	}

	run, err := s.opts.Orchestrator.RunNow(s.ctx, c.Param("name"))
	switch {
	case errors.Is(err, host.ErrUnknownGame):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, host.ErrBusy):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, run)
}
