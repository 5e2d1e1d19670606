// Package engine runs the game engine as a child process to host a turn.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// DefaultArgs precede the game name on the engine command line.
var DefaultArgs = []string{"-g"}

type Launcher interface {
	// Run hosts game and blocks until the engine exits. A non-zero exit
	// is reported through exitCode, not err.
	Run(ctx context.Context, game string) (exitCode int, err error)
}

type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start engine %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Exec launches the engine binary at Path. A zero Timeout waits for the
// engine indefinitely.
type Exec struct {
	Path    string
	Args    []string
	Dir     string
	Timeout time.Duration
	Log     *zap.Logger
}

func (e *Exec) Run(ctx context.Context, game string) (int, error) {
	if _, err := os.Stat(e.Path); err != nil {
		return -1, &LaunchError{Path: e.Path, Err: err}
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := e.Args
	if args == nil {
		args = DefaultArgs
	}
	args = append(append([]string{}, args...), game)

	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Dir = e.Dir
	cmd.Stdin = nil
	cmd.SysProcAttr = sysProcAttr()
	cmd.Cancel = killTree(cmd)

	if err := cmd.Start(); err != nil {
		return -1, &LaunchError{Path: e.Path, Err: err}
	}

	log := e.logger()
	log.Info("engine started",
		zap.String("game", game),
		zap.Int("pid", cmd.Process.Pid))

	started := time.Now()
	err := cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		log.Info("engine finished",
			zap.String("game", game),
			zap.Duration("took", time.Since(started)))
		return 0, nil
	case ctx.Err() != nil:
		return -1, fmt.Errorf("engine for %s interrupted: %w", game, ctx.Err())
	case errors.As(err, &exitErr):
		log.Warn("engine exited with error",
			zap.String("game", game),
			zap.Int("exit_code", exitErr.ExitCode()))
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("engine for %s: %w", game, err)
	}
}

func (e *Exec) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}
