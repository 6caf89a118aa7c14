// Package export writes resolved series to spreadsheet files.
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/climate-viewer/internal/climate"
)

const (
	seriesSheet  = "Series"
	summarySheet = "Summary"
)

// Summary holds simple statistics of a series.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// Summarize computes statistics over the finite values of series.
func Summarize(series []climate.Point) Summary {
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, p := range series {
		if math.IsNaN(p.V) || math.IsInf(p.V, 0) {
			continue
		}
		s.Count++
		sum += p.V
		s.Min = math.Min(s.Min, p.V)
		s.Max = math.Max(s.Max, p.V)
	}
	if s.Count == 0 {
		return Summary{}
	}
	s.Mean = math.Round(sum/float64(s.Count)*10) / 10
	return s
}

// SeriesXLSX renders series as a workbook with a data sheet and a summary.
func SeriesXLSX(table climate.Table, q climate.Query, series []climate.Point) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("Climate series - %s", table),
		Subject:     "Yearly averages",
		Creator:     "climate-viewer",
		Description: describe(table, q),
		Created:     time.Now().UTC().Format(time.RFC3339),
	})

	if err := f.SetSheetName("Sheet1", seriesSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSeries(f, table, series); err != nil {
		return nil, fmt.Errorf("failed to create series sheet: %w", err)
	}
	if err := writeSummary(f, table, q, Summarize(series)); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSeries(f *excelize.File, table climate.Table, series []climate.Point) error {
	if err := f.SetSheetRow(seriesSheet, "A1", &[]interface{}{"Period", string(table)}); err != nil {
		return err
	}
	for i, p := range series {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(seriesSheet, cell, &[]interface{}{p.T, p.V}); err != nil {
			return err
		}
	}
	return f.SetColWidth(seriesSheet, "A", "B", 14)
}

func writeSummary(f *excelize.File, table climate.Table, q climate.Query, s Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Table", string(table)},
		{"Range", describe(table, q)},
		{"Points", s.Count},
		{"Min", s.Min},
		{"Max", s.Max},
		{"Mean", s.Mean},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func describe(table climate.Table, q climate.Query) string {
	from, to := "start", "end"
	if q.From != 0 {
		from = fmt.Sprint(q.From)
	}
	if q.To != 0 {
		to = fmt.Sprint(q.To)
	}
	return fmt.Sprintf("%s %s..%s", table, from, to)
}
