package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ShutdownCoordinator owns process teardown. Both the signal path and
// the error path funnel into RequestShutdown, which runs the server's
// shutdown routine at most once per process lifetime.
type ShutdownCoordinator struct {
	shutdown func(context.Context) error

	mu         sync.Mutex
	inProgress bool
	exitCode   int
	done       chan struct{}
	sigCh      chan os.Signal
}

// NewShutdownCoordinator wraps the given teardown routine.
func NewShutdownCoordinator(shutdown func(context.Context) error) *ShutdownCoordinator {
	return &ShutdownCoordinator{
		shutdown: shutdown,
		done:     make(chan struct{}),
	}
}

// Listen installs handlers for SIGINT and SIGTERM. Each signal triggers
// RequestShutdown; a signal arriving while teardown is already running
// is logged and ignored.
func (c *ShutdownCoordinator) Listen() {
	c.sigCh = make(chan os.Signal, 2)
	signal.Notify(c.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for sig := range c.sigCh {
			c.RequestShutdown("signal: " + sig.String())
		}
	}()
}

// RequestShutdown runs the teardown routine once and records the exit
// code: 0 on clean shutdown, 1 when teardown fails. Subsequent calls
// return immediately.
func (c *ShutdownCoordinator) RequestShutdown(reason string) {
	c.mu.Lock()
	if c.inProgress {
		c.mu.Unlock()
		slog.Debug("shutdown already in progress", "reason", reason)
		return
	}
	c.inProgress = true
	c.mu.Unlock()

	slog.Info("shutting down", "reason", reason)

	code := 0
	if err := c.shutdown(context.Background()); err != nil {
		slog.Error("shutdown error", "error", err)
		code = 1
	}

	c.mu.Lock()
	c.exitCode = code
	c.mu.Unlock()
	close(c.done)
}

// Done is closed once teardown has completed.
func (c *ShutdownCoordinator) Done() <-chan struct{} {
	return c.done
}

// ExitCode reports the code recorded by RequestShutdown. Only
// meaningful after Done is closed.
func (c *ShutdownCoordinator) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}

// InProgress reports whether teardown has been requested.
func (c *ShutdownCoordinator) InProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inProgress
}

// HandlePanic is installed via defer at the top of main. A panic
// anywhere on the main goroutine is unrecoverable: it is logged as
// fatal and the process exits 1 immediately, bypassing normal shutdown.
func HandlePanic(exit func(int)) {
	if r := recover(); r != nil {
		slog.Error("fatal: uncaught panic", "panic", r)
		exit(1)
	}
}
