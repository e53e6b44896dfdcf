package framework

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

type closer struct {
	closed chan struct{}
}

func (c *closer) Close() error {
	close(c.closed)
	return nil
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())

	errA := errors.New("a")
	errs.Add(nil, errA)
	require.Equal(t, "a", errs.Aggregate().Error())

	var inner AggregatedError
	inner.Add(errors.New("b"), errors.New("c"))
	errs.Merge(inner.Aggregate())
	errs.Merge(nil)
	require.Len(t, errs.Errors, 3)
	require.Equal(t, "Multiple errors:\na\nb\nc", errs.Error())
	require.True(t, errors.Is(errs.Aggregate(), errA))
}

func TestRunnerStopsOnFailure(t *testing.T) {
	errFail := errors.New("fail")
	var order []string
	var lock sync.Mutex
	closing := func(name string) io.Closer {
		return closerFunc(func() error {
			lock.Lock()
			defer lock.Unlock()
			order = append(order, name)
			return nil
		})
	}
	r := NewRunner().
		Defer(closing("port"), closing("queue")).
		Go(
			NamedRun("session", RunnableFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})),
			NamedRun("bridge", RunnableFunc(func(context.Context) error {
				return errFail
			})),
		)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, errFail))
	require.Len(t, err.(*AggregatedError).Errors, 1)
	require.Equal(t, "bridge: fail", err.(*AggregatedError).Errors[0].Error())
	require.Equal(t, []string{"queue", "port"}, order)
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errClose := errors.New("close")
	r := NewRunnerWith(ctx).
		Defer(closerFunc(func() error { return errClose })).
		Go(RunnableFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}))
	cancel()
	err := r.Wait()
	require.True(t, errors.Is(err, errClose))
	require.Error(t, r.Context.Err())
}

func TestInterruptContext(t *testing.T) {
	ctx, stop := InterruptContext(context.Background())
	defer stop()
	require.NoError(t, ctx.Err())
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("not canceled by SIGTERM")
	}

	ctx, stop = InterruptContext(context.Background())
	stop()
	stop()
	require.Equal(t, context.Canceled, ctx.Err())
}

func TestRunWithContextCloser(t *testing.T) {
	c := &closer{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.closed
		return nil
	})
	require.Equal(t, context.Canceled, err)

	c = &closer{closed: make(chan struct{})}
	require.NoError(t, RunWithContextCloser(context.Background(), c, func() error { return nil }))
	<-c.closed
}
