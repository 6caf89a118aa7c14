package render

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-viewer/internal/climate"
)

func yearly(n int, v float64) []climate.Point {
	out := make([]climate.Point, n)
	for i := range out {
		out[i] = climate.Point{T: strconv.Itoa(1881 + i), V: v}
	}
	return out
}

func countOps(ops []Op, kind OpKind) int {
	n := 0
	for _, op := range ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

func TestRenderEmptySeriesLeavesBlankSurface(t *testing.T) {
	cfg := DefaultConfig()
	c := NewCanvas(cfg.Defaults.Width, cfg.Defaults.Height)
	c.MoveTo(1, 1)
	c.Stroke()

	cfg.Render(c, climate.TableTemperature, nil)

	assert.True(t, c.Empty())
	assert.Empty(t, c.Ops())
}

func TestRenderUnknownTableIsBlank(t *testing.T) {
	cfg := DefaultConfig()
	c := NewCanvas(cfg.Defaults.Width, cfg.Defaults.Height)

	cfg.Render(c, climate.Table("humidity"), yearly(3, 1))

	assert.True(t, c.Empty())
}

func TestRenderWidth(t *testing.T) {
	cfg := DefaultConfig()
	d := cfg.Defaults
	style := cfg.Styles[climate.TableTemperature]

	for _, n := range []int{1, 2, 10, 76, 77, 126, 500} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			c := NewCanvas(d.Width, d.Height)
			Render(c, yearly(n, 1), style, d)

			minWidth := d.Step*float64(n) + d.CoordAreaSize + d.MarginRight
			assert.GreaterOrEqual(t, float64(c.Width()), minWidth)
			assert.GreaterOrEqual(t, c.Width(), d.Width)
		})
	}
}

func TestRenderStretchesShortSeries(t *testing.T) {
	cfg := DefaultConfig()
	d := cfg.Defaults
	c := NewCanvas(d.Width, d.Height)

	Render(c, yearly(5, 0), cfg.Styles[climate.TableTemperature], d)

	var xs []float64
	for _, op := range c.Ops() {
		if op.Kind == OpArc {
			xs = append(xs, op.X)
		}
	}
	require.Len(t, xs, 5)
	assert.Equal(t, d.CoordAreaSize, xs[0])
	assert.InDelta(t, float64(d.Width)-d.MarginRight, xs[4], 1e-9)
	assert.Equal(t, d.Width, c.Width())
}

func TestRenderLongSeriesWidensSurface(t *testing.T) {
	cfg := DefaultConfig()
	d := cfg.Defaults
	c := NewCanvas(d.Width, d.Height)

	Render(c, yearly(126, 0), cfg.Styles[climate.TableTemperature], d)

	assert.Equal(t, 126*10+20+10, c.Width())
}

func TestRenderLabelsEverySecondPoint(t *testing.T) {
	cfg := DefaultConfig()
	style := cfg.Styles[climate.TablePrecipitation]

	for _, n := range []int{1, 2, 5, 126} {
		c := NewCanvas(cfg.Defaults.Width, cfg.Defaults.Height)
		Render(c, yearly(n, 0.5), style, cfg.Defaults)

		ops := c.Ops()
		grid := 2 * (style.CoordCount - 1)
		assert.Equal(t, (n+1)/2+grid, countOps(ops, OpFillText), "n=%d", n)
		assert.Equal(t, (n+1)/2, countOps(ops, OpRotate), "n=%d", n)
		assert.Equal(t, n, countOps(ops, OpArc), "n=%d", n)
	}
}

func TestRenderMirrorsValuesAroundBaseline(t *testing.T) {
	cfg := DefaultConfig()
	style := cfg.Styles[climate.TableTemperature]
	c := NewCanvas(cfg.Defaults.Width, cfg.Defaults.Height)

	Render(c, []climate.Point{{T: "1881", V: 2}, {T: "1882", V: -1.04}}, style, cfg.Defaults)

	var ys []float64
	for _, op := range c.Ops() {
		if op.Kind == OpArc {
			ys = append(ys, op.Y)
		}
	}
	require.Len(t, ys, 2)
	assert.Equal(t, 120-2*15.0, ys[0])
	assert.InDelta(t, 120+1.0*15, ys[1], 1e-9)
}

func TestRenderSkipsNonFiniteValues(t *testing.T) {
	cfg := DefaultConfig()
	style := cfg.Styles[climate.TableTemperature]
	c := NewCanvas(cfg.Defaults.Width, cfg.Defaults.Height)

	series := []climate.Point{{T: "1881", V: math.NaN()}, {T: "1882", V: 1}, {T: "1883", V: math.Inf(1)}, {T: "1884", V: 2}}
	Render(c, series, style, cfg.Defaults)

	ops := c.Ops()
	assert.Equal(t, 2, countOps(ops, OpArc))

	// the first drawn point starts the path
	for _, op := range ops {
		if op.Kind == OpLineTo || op.Kind == OpMoveTo {
			if op.Y == 120-15 {
				assert.Equal(t, OpMoveTo, op.Kind)
				break
			}
		}
	}
}

func TestRenderGridlines(t *testing.T) {
	cfg := DefaultConfig()
	style := cfg.Styles[climate.TableTemperature]
	c := NewCanvas(cfg.Defaults.Width, cfg.Defaults.Height)

	Render(c, yearly(1, 0), style, cfg.Defaults)

	var labels []string
	for _, op := range c.Ops() {
		// point labels are drawn at the translated origin
		if op.Kind == OpFillText && op.Y != 0 {
			labels = append(labels, op.S)
		}
	}
	assert.Equal(t, []string{"1.3", "-1.3", "2.7", "-2.7", "4.0", "-4.0", "5.3", "-5.3"}, labels)
}

func TestRenderWithoutBaseline(t *testing.T) {
	cfg := DefaultConfig()
	style := cfg.Styles[climate.TableTemperature]
	style.BaseLine = false
	style.CoordCount = 0
	c := NewCanvas(cfg.Defaults.Width, cfg.Defaults.Height)

	Render(c, yearly(3, 1), style, cfg.Defaults)

	assert.Equal(t, 1, countOps(c.Ops(), OpStroke))
}
