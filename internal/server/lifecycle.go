// Package server coordinates the long-running pieces of the game server:
// the HTTP listener and the storage keepalive loops. Hooks run until one
// of them fails, a termination signal arrives, or the context is
// cancelled; they are then closed in reverse registration order under a
// shared deadline.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Hook is one long-running component under lifecycle control.
type Hook struct {
	Name string
	// Run blocks until the hook stops or fails. A non-nil error tears the
	// whole server down.
	Run func() error
	// Close asks the hook to stop and must cause Run to return. The
	// context carries the shared shutdown deadline.
	Close func(ctx context.Context) error
}

// Lifecycle runs a set of hooks and shuts them down together.
type Lifecycle struct {
	log          *zap.Logger
	closeTimeout time.Duration
	hooks        []Hook
}

// NewLifecycle creates a Lifecycle. closeTimeout bounds the whole shutdown
// pass; <= 0 selects 15 seconds.
//
// Precondition: log must be non-nil.
func NewLifecycle(log *zap.Logger, closeTimeout time.Duration) *Lifecycle {
	if closeTimeout <= 0 {
		closeTimeout = 15 * time.Second
	}
	return &Lifecycle{log: log, closeTimeout: closeTimeout}
}

// Hook registers h. Hooks close in reverse registration order, so register
// the outermost surface (the listener) first and its dependencies after.
func (l *Lifecycle) Hook(h Hook) {
	l.hooks = append(l.hooks, h)
}

// Keepalive registers a hook that probes a storage backend every interval.
// Probe failures are logged and the loop keeps going; a backend outage
// degrades the server rather than stopping it. shutdown runs when the
// hook closes, after the loop has stopped.
func (l *Lifecycle) Keepalive(name string, interval time.Duration, probe func(ctx context.Context) error, shutdown func() error) {
	stop := make(chan struct{})
	l.Hook(Hook{
		Name: name,
		Run: func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return nil
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := probe(ctx); err != nil {
						l.log.Warn("keepalive probe failed",
							zap.String("hook", name),
							zap.Error(err))
					}
					cancel()
				}
			}
		},
		Close: func(context.Context) error {
			close(stop)
			return shutdown()
		},
	})
}

// Run starts every hook and blocks until a termination signal (SIGINT or
// SIGTERM), a hook failure, or context cancellation. It then closes all
// hooks in reverse order.
//
// Postcondition: returns the failure that triggered shutdown, or nil for
// a signal- or context-driven stop.
func (l *Lifecycle) Run(ctx context.Context) error {
	started := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failures := make(chan error, len(l.hooks))
	for _, h := range l.hooks {
		h := h
		go func() {
			l.log.Info("hook running", zap.String("hook", h.Name))
			if err := h.Run(); err != nil {
				failures <- fmt.Errorf("%s: %w", h.Name, err)
				cancel()
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var cause error
	select {
	case sig := <-sigCh:
		l.log.Info("signal received, shutting down", zap.String("signal", sig.String()))
	case cause = <-failures:
		l.log.Error("hook failed, shutting down", zap.Error(cause))
	case <-ctx.Done():
		l.log.Info("context cancelled, shutting down")
	}

	l.closeAll()
	l.log.Info("server stopped", zap.Duration("uptime", time.Since(started)))
	return cause
}

func (l *Lifecycle) closeAll() {
	ctx, cancel := context.WithTimeout(context.Background(), l.closeTimeout)
	defer cancel()

	for i := len(l.hooks) - 1; i >= 0; i-- {
		h := l.hooks[i]
		if err := h.Close(ctx); err != nil {
			l.log.Warn("closing hook", zap.String("hook", h.Name), zap.Error(err))
			continue
		}
		l.log.Info("hook closed", zap.String("hook", h.Name))
	}
}
