// Package app runs the HTTP server together with its lifecycle hooks.
//
// Hooks start in order before the listener opens and stop in reverse order
// after the server has drained. A failing start hook aborts startup and stops
// the hooks already started.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/logging/logger"
)

var (
	// ErrAlreadyStarted is returned when Start is called more than once.
	ErrAlreadyStarted = errors.New("application already started")
	// ErrStartAborted is returned by Start when Shutdown ran while the start
	// hooks were still running.
	ErrStartAborted = errors.New("application start aborted")
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Hook is a named pair of lifecycle callbacks. Either may be nil.
type Hook struct {
	Name    string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
}

// App is the application instance.
type App struct {
	cfg     *config.Config
	logger  *logger.Logger
	handler http.Handler
	hooks   []Hook

	mu       sync.Mutex
	state    State
	aborted  bool
	srv      *http.Server
	listener net.Listener
	errChan  chan error
}

// New creates the application. Nothing runs until Start.
func New(cfg *config.Config, l *logger.Logger, handler http.Handler, hooks []Hook) *App {
	return &App{
		cfg:     cfg,
		logger:  l,
		handler: handler,
		hooks:   hooks,
		errChan: make(chan error, 1),
	}
}

// State returns the current lifecycle state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Addr returns the listen address once started, nil before.
func (a *App) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Start runs the start hooks and begins serving. It does not block. The
// hooks run without holding the state lock, so State and Addr stay
// responsive while a slow migration runs.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateNotStarted {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.state = StateStarting
	a.mu.Unlock()

	for i, h := range a.hooks {
		if h.OnStart == nil {
			continue
		}
		if err := h.OnStart(ctx); err != nil {
			a.logger.Errorf(ctx, "start hook %s failed: %v", h.Name, err)
			err = errors.Join(fmt.Errorf("start hook %s: %w", h.Name, err), a.stopHooks(ctx, i))
			a.setState(StateStopped)
			return err
		}
		a.logger.Debugf(ctx, "start hook %s done", h.Name)
	}

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		err = errors.Join(fmt.Errorf("error starting server: %w", err), a.stopHooks(ctx, len(a.hooks)))
		a.setState(StateStopped)
		return err
	}

	a.mu.Lock()
	if a.aborted {
		a.mu.Unlock()
		_ = listener.Close()
		err := errors.Join(ErrStartAborted, a.stopHooks(ctx, len(a.hooks)))
		a.setState(StateStopped)
		return err
	}
	a.listener = listener
	a.srv = &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	srv := a.srv
	a.state = StateRunning
	a.mu.Unlock()

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errChan <- err
		}
	}()

	a.logger.Infof(ctx, "%s listening on %s", a.cfg.ProjectName, listener.Addr())
	return nil
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Shutdown stops the server, then runs the stop hooks in reverse order. Only
// the first call on a running application does anything. Called while Start
// is still running hooks, it makes Start unwind and fail with ErrStartAborted.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateRunning {
		switch a.state {
		case StateNotStarted:
			a.state = StateStopped
		case StateStarting:
			a.aborted = true
		}
		a.mu.Unlock()
		return nil
	}
	a.state = StateShuttingDown
	a.mu.Unlock()

	var errs []error
	if err := a.srv.Shutdown(ctx); err != nil {
		a.logger.Errorf(ctx, "Shutdown error: %v", err)
		errs = append(errs, err)
	}
	if err := a.stopHooks(ctx, len(a.hooks)); err != nil {
		errs = append(errs, err)
	}

	a.mu.Lock()
	a.state = StateStopped
	a.mu.Unlock()

	a.logger.Info(ctx, "application stopped")
	return errors.Join(errs...)
}

// Run starts the application and blocks until ctx is cancelled or the server
// fails, then shuts down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info(context.Background(), "shutting down")
	case serveErr = <-a.errChan:
		a.logger.Errorf(context.Background(), "server error: %v", serveErr)
	}

	shutdownCtx, cancel := a.shutdownContext()
	defer cancel()

	return errors.Join(serveErr, a.Shutdown(shutdownCtx))
}

func (a *App) shutdownContext() (context.Context, context.CancelFunc) {
	if a.cfg.ShutdownTimeout > 0 {
		return context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	}
	return context.WithCancel(context.Background())
}

// stopHooks runs OnStop of hooks[:n] in reverse order. Every hook runs even
// when an earlier one fails.
func (a *App) stopHooks(ctx context.Context, n int) error {
	var errs []error
	for i := n - 1; i >= 0; i-- {
		h := a.hooks[i]
		if h.OnStop == nil {
			continue
		}
		if err := h.OnStop(ctx); err != nil {
			a.logger.Errorf(ctx, "stop hook %s failed: %v", h.Name, err)
			errs = append(errs, fmt.Errorf("stop hook %s: %w", h.Name, err))
			continue
		}
		a.logger.Debugf(ctx, "stop hook %s done", h.Name)
	}
	return errors.Join(errs...)
}
