package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Wait after a second stop signal.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner supervises the Runnables of one session. They share a context
// which is canceled as soon as one of them fails, and resources added
// with Defer are closed after all of them returned.
type Runner struct {
	Context context.Context
	Runners []Runnable

	cancel      context.CancelFunc
	stopSignals func()
	closers     []io.Closer
	errCh       chan error
	exitCh      chan struct{}
	exitOnce    sync.Once
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner derived from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{
		Context: ctx,
		cancel:  cancel,
		errCh:   make(chan error, 1),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals stops the runner on SIGINT or SIGTERM. A second signal
// makes Wait return without waiting for the Runnables.
func (r *Runner) HandleSignals() *Runner {
	r.Context, r.stopSignals = interruptContext(r.Context, func() {
		r.exitOnce.Do(func() { close(r.exitCh) })
	})
	return r
}

// Defer registers closers to run in reverse order once every Runnable
// has returned.
func (r *Runner) Defer(closers ...io.Closer) *Runner {
	r.closers = append(r.closers, closers...)
	return r
}

// Go spawns Runnables on the runner context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := strconv.Itoa(len(r.Runners))
		named, isNamed := runner.(Named)
		if isNamed {
			name = named.Name()
		}
		r.Runners = append(r.Runners, runner)
		go func(runner Runnable, name string, isNamed bool) {
			glog.V(4).Infof("Runner[%s] started", name)
			err := runner.Run(r.Context)
			if err != nil && !errors.Is(err, context.Canceled) {
				glog.Errorf("Runner[%s] failed: %v", name, err)
				r.cancel()
				if isNamed {
					err = fmt.Errorf("%s: %w", name, err)
				}
			}
			glog.V(4).Infof("Runner[%s] stopped", name)
			r.errCh <- err
		}(runner, name, isNamed)
	}
	return r
}

// Wait waits until all Runnables stop, closes deferred resources and
// aggregates errors. Cancellation is not an error.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for range r.Runners {
		select {
		case <-r.exitCh:
			return ErrForcedExit
		case err := <-r.errCh:
			if !errors.Is(err, context.Canceled) {
				errs.Add(err)
			}
		}
	}
	r.cancel()
	if r.stopSignals != nil {
		r.stopSignals()
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs.Add(r.closers[i].Close())
	}
	return errs.Aggregate()
}

// InterruptContext returns a context canceled by the first SIGINT or
// SIGTERM. Later signals get the default handling. stop releases the
// signals and cancels the context.
func InterruptContext(parent context.Context) (ctx context.Context, stop func()) {
	return interruptContext(parent, nil)
}

// interruptContext calls again on the second signal when it is set.
func interruptContext(parent context.Context, again func()) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			glog.Info("stop requested")
			cancel()
		case <-done:
			return
		}
		if again == nil {
			signal.Stop(sigCh)
			return
		}
		select {
		case <-sigCh:
			glog.Error("stop requested again, force exit")
			again()
		case <-done:
		}
	}()
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
			cancel()
		})
	}
}

// RunWithContextCloser runs fn, which doesn't take a context, and closes
// closer when ctx is canceled or fn returns, whichever comes first. A
// canceled run returns ctx.Err() after fn returned.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		closer.Close()
		return err
	case <-ctx.Done():
		closer.Close()
		<-errCh
		return ctx.Err()
	}
}
