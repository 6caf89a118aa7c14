package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type resolverFunc func(ctx context.Context, table climate.Table, q climate.Query) ([]climate.Point, error)

func (f resolverFunc) Resolve(ctx context.Context, table climate.Table, q climate.Query) ([]climate.Point, error) {
	return f(ctx, table, q)
}

type sink struct {
	mu      sync.Mutex
	results []Result
	ch      chan Result
}

func newSink() *sink {
	return &sink{ch: make(chan Result, 16)}
}

func (s *sink) deliver(r Result) {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()
	s.ch <- r
}

func (s *sink) next(t *testing.T) Result {
	t.Helper()
	select {
	case r := <-s.ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return Result{}
	}
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func TestRequestDeliversSeries(t *testing.T) {
	out := newSink()
	series := []climate.Point{{T: "1881", V: 1.5}}
	c := New(resolverFunc(func(context.Context, climate.Table, climate.Query) ([]climate.Point, error) {
		return series, nil
	}), out.deliver, logger.Nop())
	defer c.Close()

	require.True(t, c.Request(climate.TableTemperature, climate.Query{From: 1881}))
	r := out.next(t)

	assert.NoError(t, r.Err)
	assert.Equal(t, climate.TableTemperature, r.Table)
	assert.Equal(t, climate.Query{From: 1881}, r.Query)
	assert.Equal(t, series, r.Series)

	// delivered slices do not alias the resolver's
	series[0].V = 99
	assert.Equal(t, 1.5, r.Series[0].V)
}

func TestNewerRequestSupersedesOlder(t *testing.T) {
	out := newSink()
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	c := New(resolverFunc(func(ctx context.Context, table climate.Table, q climate.Query) ([]climate.Point, error) {
		started <- struct{}{}
		if table == climate.TableTemperature {
			// ignore cancellation to prove stale results are dropped anyway
			<-release
			return []climate.Point{{T: "stale", V: 0}}, nil
		}
		return []climate.Point{{T: "1900", V: 2}}, nil
	}), out.deliver, logger.Nop())
	defer c.Close()

	require.True(t, c.Request(climate.TableTemperature, climate.Query{}))
	<-started
	require.True(t, c.Request(climate.TablePrecipitation, climate.Query{}))

	r := out.next(t)
	assert.Equal(t, climate.TablePrecipitation, r.Table)

	close(release)
	c.Close()
	assert.Equal(t, 1, out.count())
}

func TestCancelledUnitSeesContextDone(t *testing.T) {
	out := newSink()
	cancelled := make(chan struct{})

	c := New(resolverFunc(func(ctx context.Context, _ climate.Table, q climate.Query) ([]climate.Point, error) {
		if q.From == 1 {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	}), out.deliver, logger.Nop())
	defer c.Close()

	c.Request(climate.TableTemperature, climate.Query{From: 1})
	c.Request(climate.TableTemperature, climate.Query{From: 2})

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("first unit was not cancelled")
	}

	r := out.next(t)
	assert.Equal(t, 2, r.Query.From)
	assert.NoError(t, r.Err)
}

func TestFailureIsDeliveredAndRetryable(t *testing.T) {
	out := newSink()
	boom := errors.New("store unavailable")
	var mu sync.Mutex
	calls := 0

	c := New(resolverFunc(func(context.Context, climate.Table, climate.Query) ([]climate.Point, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, boom
		}
		return []climate.Point{}, nil
	}), out.deliver, logger.Nop())
	defer c.Close()

	require.True(t, c.Request(climate.TableTemperature, climate.Query{}))
	r := out.next(t)
	assert.ErrorIs(t, r.Err, boom)
	assert.Nil(t, r.Series)

	require.True(t, c.Request(climate.TableTemperature, climate.Query{}))
	r = out.next(t)
	assert.NoError(t, r.Err)
}

func TestIdenticalRequestIsSkipped(t *testing.T) {
	out := newSink()
	c := New(resolverFunc(func(context.Context, climate.Table, climate.Query) ([]climate.Point, error) {
		return []climate.Point{{T: "2000", V: 1}}, nil
	}), out.deliver, logger.Nop())
	defer c.Close()

	q := climate.Query{From: 1900, To: 1950}
	require.True(t, c.Request(climate.TableTemperature, q))
	out.next(t)

	assert.False(t, c.Request(climate.TableTemperature, climate.Query{From: 1900, To: 1950}))
	assert.True(t, c.Request(climate.TablePrecipitation, q))
	out.next(t)
}

func TestCloseDropsPending(t *testing.T) {
	out := newSink()
	c := New(resolverFunc(func(ctx context.Context, _ climate.Table, _ climate.Query) ([]climate.Point, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), out.deliver, logger.Nop())

	c.Request(climate.TableTemperature, climate.Query{})
	assert.True(t, c.Pending())
	c.Close()

	assert.Equal(t, 0, out.count())
	assert.False(t, c.Pending())
	assert.False(t, c.Request(climate.TableTemperature, climate.Query{From: 5}))
}
