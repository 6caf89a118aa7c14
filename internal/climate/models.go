package climate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Table identifies a dataset. It keys both the remote resource and the
// cache sub-table.
type Table string

const (
	TableTemperature   Table = "temperature"
	TablePrecipitation Table = "precipitation"
)

// Tables lists every known dataset in display order.
var Tables = []Table{TableTemperature, TablePrecipitation}

// ErrUnknownTable is returned for identifiers outside Tables.
var ErrUnknownTable = errors.New("unknown table")

// ParseTable validates s against the known tables.
func ParseTable(s string) (Table, error) {
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

// Period is the resolution of an aggregated series.
type Period string

const (
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Point is a dated scalar. Raw readings ("YYYY-MM-DD", "YYYY-MM" or "YYYY")
// and aggregated period averages share this shape.
type Point struct {
	T string  `json:"t"`
	V float64 `json:"v"`
}

// Reading is a raw measurement as served by the dataset source.
type Reading = Point

// PeriodKey derives the bucket label of a dated label for the given period.
func PeriodKey(label string, period Period) string {
	parts := strings.SplitN(label, "-", 3)
	if period == PeriodMonth && len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return parts[0]
}

// Year parses the year component of a period label.
func Year(label string) (int, error) {
	y, err := strconv.Atoi(PeriodKey(label, PeriodYear))
	if err != nil {
		return 0, fmt.Errorf("invalid period label %q: %w", label, err)
	}
	return y, nil
}
