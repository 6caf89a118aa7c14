// Package coordinator runs at most one background resolve at a time and
// delivers only the outcome of the most recent request.
package coordinator

import (
	"context"
	"sync"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
)

// Resolver produces a series for a table and query.
type Resolver interface {
	Resolve(ctx context.Context, table climate.Table, q climate.Query) ([]climate.Point, error)
}

// Result is the single delivery of a surviving request. Exactly one of
// Series or Err is meaningful.
type Result struct {
	Table  climate.Table
	Query  climate.Query
	Series []climate.Point
	Err    error
}

// DeliverFunc receives results. It runs on a background goroutine while the
// coordinator lock is held, so it must not call Request.
type DeliverFunc func(Result)

type state int

const (
	stateIdle state = iota
	statePending
	stateDelivered
	stateFailed
)

// Coordinator supersedes in-flight work on every new request.
type Coordinator struct {
	resolver Resolver
	deliver  DeliverFunc
	logger   logger.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	last   struct {
		table climate.Table
		query climate.Query
		state state
	}
	closed bool
	wg     sync.WaitGroup
}

// New creates a new Coordinator.
func New(resolver Resolver, deliver DeliverFunc, log logger.Logger) *Coordinator {
	return &Coordinator{
		resolver: resolver,
		deliver:  deliver,
		logger:   log.WithField("component", "coordinator"),
	}
}

// Request cancels any outstanding unit and starts a new one. It returns
// false when the request was skipped: the coordinator is closed, or the same
// table and query are already pending or were delivered successfully.
func (c *Coordinator) Request(table climate.Table, q climate.Query) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	if c.last.table == table && c.last.query.Equal(q) &&
		(c.last.state == statePending || c.last.state == stateDelivered) {
		return false
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.last.table, c.last.query, c.last.state = table, q, statePending

	c.wg.Add(1)
	go c.run(ctx, gen, table, q)
	return true
}

func (c *Coordinator) run(ctx context.Context, gen uint64, table climate.Table, q climate.Query) {
	defer c.wg.Done()

	series, err := c.resolver.Resolve(ctx, table, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || ctx.Err() != nil {
		// superseded or closed
		return
	}
	c.cancel()
	c.cancel = nil

	res := Result{Table: table, Query: q}
	if err != nil {
		c.logger.Errorf("request %s %+v failed: %v", table, q, err)
		c.last.state = stateFailed
		res.Err = err
	} else {
		c.last.state = stateDelivered
		res.Series = append(make([]climate.Point, 0, len(series)), series...)
	}

	if c.deliver != nil {
		c.deliver(res)
	}
}

// Pending reports whether a request is outstanding.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.state == statePending
}

// Close cancels the outstanding unit and waits for background goroutines.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	if c.last.state == statePending {
		c.last.state = stateIdle
	}
	c.mu.Unlock()

	c.wg.Wait()
}
