package climate

// Query bounds a series by inclusive years. A zero bound is open.
type Query struct {
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// IsEmpty reports whether the query admits every year.
func (q Query) IsEmpty() bool {
	return q.From == 0 && q.To == 0
}

// Equal compares queries field by field.
func (q Query) Equal(o Query) bool {
	return q.From == o.From && q.To == o.To
}

// Normalize maps a query covering exactly the borders to the empty query.
func (q Query) Normalize(borders Query) Query {
	if q.Equal(borders) {
		return Query{}
	}
	return q
}

// Admits reports whether a label's year lies within the bounds. Labels
// without a parseable year are admitted.
func (q Query) Admits(label string) bool {
	year, err := Year(label)
	if err != nil {
		return true
	}
	if q.From != 0 && year < q.From {
		return false
	}
	if q.To != 0 && year > q.To {
		return false
	}
	return true
}

// Filter returns the points admitted by q, preserving order.
func Filter(points []Point, q Query) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if q.Admits(p.T) {
			out = append(out, p)
		}
	}
	return out
}
