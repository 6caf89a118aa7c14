package climate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name   string
		in     []Point
		period Period
		want   []Point
	}{
		{
			name:   "empty",
			in:     nil,
			period: PeriodYear,
			want:   []Point{},
		},
		{
			name:   "single element",
			in:     []Point{{T: "2000-01", V: 5}},
			period: PeriodMonth,
			want:   []Point{{T: "2000-01", V: 5.0}},
		},
		{
			name:   "last element opens a new period",
			in:     []Point{{T: "2000", V: 10}, {T: "2000", V: 20}, {T: "2001", V: 5}},
			period: PeriodYear,
			want:   []Point{{T: "2000", V: 15.0}, {T: "2001", V: 5.0}},
		},
		{
			name:   "same key mean rounded",
			in:     []Point{{T: "1990-03-01", V: 1}, {T: "1990-03-02", V: 2}, {T: "1990-03-03", V: 2}},
			period: PeriodMonth,
			want:   []Point{{T: "1990-03", V: 1.7}},
		},
		{
			name: "daily to monthly keeps first-seen order",
			in: []Point{
				{T: "1881-02-01", V: -3}, {T: "1881-02-02", V: -5},
				{T: "1881-01-01", V: 1},
				{T: "1882-01-01", V: 2}, {T: "1882-01-02", V: 4},
			},
			period: PeriodMonth,
			want:   []Point{{T: "1881-02", V: -4}, {T: "1881-01", V: 1}, {T: "1882-01", V: 3}},
		},
		{
			name:   "monthly to yearly",
			in:     []Point{{T: "1900-01", V: -10}, {T: "1900-07", V: 20}, {T: "1901-01", V: -7.06}},
			period: PeriodYear,
			want:   []Point{{T: "1900", V: 5}, {T: "1901", V: -7.1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.in, tt.period))
		})
	}
}

func TestAggregateDistinctKeysCount(t *testing.T) {
	var in []Point
	labels := []string{"1950", "1951", "1952", "1953"}
	for _, l := range labels {
		in = append(in, Point{T: l + "-01", V: 1}, Point{T: l + "-02", V: 3})
	}

	out := Aggregate(in, PeriodYear)

	assert.Len(t, out, len(labels))
	for i, p := range out {
		assert.Equal(t, labels[i], p.T)
		assert.Equal(t, 2.0, p.V)
	}
}

func TestAggregateYearlyIsIdempotent(t *testing.T) {
	yearly := []Point{{T: "1881", V: -1.2}, {T: "1882", V: 0.4}, {T: "1883", V: 3.3}}

	once := Aggregate(yearly, PeriodYear)
	twice := Aggregate(once, PeriodYear)

	assert.Equal(t, yearly, once)
	assert.Equal(t, once, twice)
}

func TestPeriodKeyAndYear(t *testing.T) {
	assert.Equal(t, "2001-04", PeriodKey("2001-04-17", PeriodMonth))
	assert.Equal(t, "2001", PeriodKey("2001-04-17", PeriodYear))
	assert.Equal(t, "2001", PeriodKey("2001", PeriodMonth))

	y, err := Year("1999-12")
	assert.NoError(t, err)
	assert.Equal(t, 1999, y)

	_, err = Year("n/a")
	assert.Error(t, err)
}

func TestParseTable(t *testing.T) {
	tbl, err := ParseTable("precipitation")
	assert.NoError(t, err)
	assert.Equal(t, TablePrecipitation, tbl)

	_, err = ParseTable("humidity")
	assert.ErrorIs(t, err, ErrUnknownTable)
}
