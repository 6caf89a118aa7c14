package render

import "github.com/i474232898/climate-viewer/internal/climate"

// Defaults are shared by every chart type. Lengths are pixels.
type Defaults struct {
	Step               float64 // distance between points before stretching
	CoordLineWidth     float64
	CoordLineColor     string
	CoordAreaSize      float64 // left area reserved for grid labels
	MarginRight        float64
	CoordTextMargin    float64 // grid label offset above its line
	CoordAreaMarginPos float64 // left offset of positive grid labels
	CoordAreaMarginNeg float64 // left offset of negative grid labels
	FontSize           float64
	Width              int // base surface width
	Height             int
}

// Style is the per-table look of a chart.
type Style struct {
	Mult           float64 // value zoom
	BaseLine       bool
	BaseLineLevel  float64
	BaseLineWidth  float64
	BaseLineColor  string
	Color          string
	LineWidth      float64
	LegendPosition float64 // vertical position of point labels
	CoordCount     int
	CoordStep      float64 // distance between gridlines
}

// Config bundles the defaults and the styles of every table.
type Config struct {
	Defaults Defaults
	Styles   map[climate.Table]Style
}

// DefaultConfig returns the stock chart configuration.
func DefaultConfig() Config {
	return Config{
		Defaults: Defaults{
			Step:               10,
			CoordLineWidth:     0.1,
			CoordLineColor:     "#000000",
			CoordAreaSize:      20,
			MarginRight:        10,
			CoordTextMargin:    2,
			CoordAreaMarginPos: 3,
			CoordAreaMarginNeg: 0,
			FontSize:           10,
			Width:              800,
			Height:             300,
		},
		Styles: map[climate.Table]Style{
			climate.TableTemperature: {
				Mult:           15,
				BaseLine:       true,
				BaseLineLevel:  120,
				BaseLineWidth:  1,
				BaseLineColor:  "#000000",
				Color:          "#FF0000",
				LineWidth:      2,
				LegendPosition: 230,
				CoordCount:     5,
				CoordStep:      20,
			},
			climate.TablePrecipitation: {
				Mult:           80,
				BaseLine:       true,
				BaseLineLevel:  230,
				BaseLineWidth:  1,
				BaseLineColor:  "#000000",
				Color:          "#0000FF",
				LineWidth:      2,
				LegendPosition: 40,
				CoordCount:     9,
				CoordStep:      20,
			},
		},
	}
}
