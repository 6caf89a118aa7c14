// Package render draws aggregated series as line charts onto a Surface.
package render

import (
	"math"
	"strconv"

	"github.com/i474232898/climate-viewer/internal/climate"
)

const labelRotation = math.Pi / 2 * 3

// Render draws table's series with the configured style. Tables without a
// style leave the surface blank.
func (c Config) Render(s Surface, table climate.Table, series []climate.Point) {
	style, ok := c.Styles[table]
	if !ok {
		s.Clear()
		return
	}
	Render(s, series, style, c.Defaults)
}

// Render clears s and draws series as a line chart around the style's
// baseline. Points are spaced by d.Step, stretched to fill d.Width when the
// series is short; long series widen the surface instead. Non-finite values
// are skipped.
func Render(s Surface, series []climate.Point, style Style, d Defaults) {
	s.Clear()

	n := len(series)
	if n == 0 {
		return
	}

	mult := style.Mult
	if mult == 0 {
		mult = 1
	}
	caz, mr := d.CoordAreaSize, d.MarginRight

	step := d.Step
	avail := float64(d.Width) - caz - mr
	if float64(n) < avail/step {
		div := n - 1
		if n == 1 {
			div = 1
		}
		step = avail / float64(div)
		s.SetWidth(d.Width)
	} else {
		s.SetWidth(int(math.Ceil(step*float64(n) + caz + mr)))
	}
	width := float64(s.Width())
	level := style.BaseLineLevel

	if style.BaseLine {
		s.BeginPath()
		s.SetStrokeColor(style.BaseLineColor)
		s.SetLineWidth(style.BaseLineWidth)
		s.MoveTo(caz, level)
		s.LineTo(step*float64(n-1)+caz, level)
		s.Stroke()
	}

	s.BeginPath()
	s.SetStrokeColor(style.Color)
	s.SetLineWidth(style.LineWidth)

	started := false
	for i, p := range series {
		if math.IsNaN(p.V) || math.IsInf(p.V, 0) {
			continue
		}
		x := float64(i)*step + caz
		y := valueY(p.V, mult, level)

		if !started {
			s.MoveTo(x, y)
			started = true
		} else {
			s.LineTo(x, y)
		}
		s.Arc(x, y, 1, 0, 2*math.Pi)

		if i%2 == 0 {
			s.Save()
			s.Translate(x, style.LegendPosition)
			s.SetFont(d.FontSize)
			s.Rotate(labelRotation)
			s.FillText(p.T, 0, 0)
			s.Restore()
		}
	}
	s.Stroke()

	s.SetFont(d.FontSize)
	for i := 1; i < style.CoordCount; i++ {
		pos := float64(i) * style.CoordStep
		label := strconv.FormatFloat(pos/mult, 'f', 1, 64)

		s.FillText(label, d.CoordAreaMarginPos, level-pos-d.CoordTextMargin)
		gridline(s, d, width, level-pos)

		s.FillText("-"+label, d.CoordAreaMarginNeg, level+pos-d.CoordTextMargin)
		gridline(s, d, width, level+pos)
	}
}

// valueY maps a value to a pixel row: positive values above the baseline,
// negative below.
func valueY(v, mult, level float64) float64 {
	v = math.Round(v*10) / 10 * mult
	if v < 0 {
		return level + math.Abs(v)
	}
	return level - v
}

func gridline(s Surface, d Defaults, width, y float64) {
	s.BeginPath()
	s.SetStrokeColor(d.CoordLineColor)
	s.SetLineWidth(d.CoordLineWidth)
	s.MoveTo(0, y)
	s.LineTo(width, y)
	s.Stroke()
}
