package climate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/climate-viewer/internal/pkg/logger"
)

// ErrStoreUnavailable wraps any failure of the cache store.
var ErrStoreUnavailable = errors.New("cache store unavailable")

// Gateway resolves yearly series from the cache, populating it from the
// source when a table has never been cached.
type Gateway struct {
	store  Store
	source Source
	log    logger.Logger
	group  singleflight.Group
}

// NewGateway creates a new Gateway.
func NewGateway(store Store, source Source, log logger.Logger) *Gateway {
	return &Gateway{
		store:  store,
		source: source,
		log:    log.WithField("component", "gateway"),
	}
}

// Resolve returns the yearly series of table bounded by q.
//
// Only a table with no cached rows at all counts as a miss; a query that
// filters every cached row away yields an empty series without refetching.
func (g *Gateway) Resolve(ctx context.Context, table Table, q Query) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := g.store.ReadAll(ctx, table)
	if err != nil {
		g.log.Errorf("read %s: %v", table, err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(rows) > 0 {
		return Aggregate(Filter(rows, q), PeriodYear), nil
	}

	g.log.Infof("cache miss for %s; fetching dataset", table)
	monthly, err := g.populate(ctx, table)
	if err != nil {
		return nil, err
	}
	return Aggregate(Filter(monthly, q), PeriodYear), nil
}

// populate fetches, aggregates to months and writes the cache. Concurrent
// misses for one table share a single fetch.
func (g *Gateway) populate(ctx context.Context, table Table) ([]Point, error) {
	for {
		v, err, shared := g.group.Do(string(table), func() (interface{}, error) {
			return g.fetchAndStore(ctx, table)
		})
		if err != nil {
			// The leader of a shared call was cancelled; retry on our own context.
			if shared && errors.Is(err, context.Canceled) && ctx.Err() == nil {
				continue
			}
			return nil, err
		}
		return v.([]Point), nil
	}
}

func (g *Gateway) fetchAndStore(ctx context.Context, table Table) ([]Point, error) {
	raw, err := g.source.Fetch(ctx, table)
	if err != nil {
		g.log.Errorf("fetch %s: %v", table, err)
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}

	monthly := Aggregate(raw, PeriodMonth)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.store.PutAll(ctx, table, monthly); err != nil {
		g.log.Errorf("write %s: %v", table, err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	g.log.Infof("cached %d monthly points for %s", len(monthly), table)
	return monthly, nil
}

// Warm resolves every table with the empty query so later requests hit the
// cache. Tables are warmed independently; the first error is returned.
func (g *Gateway) Warm(ctx context.Context, tables ...Table) error {
	var eg errgroup.Group
	for _, t := range tables {
		t := t
		eg.Go(func() error {
			_, err := g.Resolve(ctx, t, Query{})
			return err
		})
	}
	return eg.Wait()
}
