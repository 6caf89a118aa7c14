package climate

import "context"

// Store is the persistent per-table cache of monthly points, keyed by
// period label. Implementations create missing tables on first use.
type Store interface {
	// ReadAll returns every row of table ordered by period label.
	ReadAll(ctx context.Context, table Table) ([]Point, error)
	// PutAll writes points in one transaction, one put per point.
	PutAll(ctx context.Context, table Table, points []Point) error
}

// Source fetches the raw dataset of a table.
type Source interface {
	Fetch(ctx context.Context, table Table) ([]Reading, error)
}
