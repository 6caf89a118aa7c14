package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// OpKind names a recorded drawing call.
type OpKind int

const (
	OpBeginPath OpKind = iota
	OpMoveTo
	OpLineTo
	OpArc
	OpStroke
	OpStrokeColor
	OpLineWidth
	OpFont
	OpFillText
	OpSave
	OpRestore
	OpTranslate
	OpRotate
)

// Op is one recorded call. Only the fields relevant to Kind are set.
type Op struct {
	Kind   OpKind
	X, Y   float64
	R      float64 // arc radius, line width, font size or rotation
	A0, A1 float64 // arc angles
	S      string  // color or text
}

// Format selects the export encoding of a Canvas.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" and "svg".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Canvas is a Surface that records a display list. It can be replayed into
// a PNG or SVG image and inspected by tests. Safe for concurrent use.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int
	ops    []Op
}

// NewCanvas creates a blank canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

func (c *Canvas) record(op Op) {
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

func (c *Canvas) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

func (c *Canvas) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

func (c *Canvas) SetWidth(w int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = w
	c.ops = nil
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = nil
}

func (c *Canvas) BeginPath() { c.record(Op{Kind: OpBeginPath}) }
func (c *Canvas) MoveTo(x, y float64) { c.record(Op{Kind: OpMoveTo, X: x, Y: y}) }
func (c *Canvas) LineTo(x, y float64) { c.record(Op{Kind: OpLineTo, X: x, Y: y}) }
func (c *Canvas) Stroke() { c.record(Op{Kind: OpStroke}) }
func (c *Canvas) SetStrokeColor(h string) { c.record(Op{Kind: OpStrokeColor, S: h}) }
func (c *Canvas) SetLineWidth(w float64) { c.record(Op{Kind: OpLineWidth, R: w}) }
func (c *Canvas) SetFont(size float64) { c.record(Op{Kind: OpFont, R: size}) }
func (c *Canvas) Save() { c.record(Op{Kind: OpSave}) }
func (c *Canvas) Restore() { c.record(Op{Kind: OpRestore}) }
func (c *Canvas) Translate(x, y float64) { c.record(Op{Kind: OpTranslate, X: x, Y: y}) }
func (c *Canvas) Rotate(rad float64) { c.record(Op{Kind: OpRotate, R: rad}) }

func (c *Canvas) Arc(x, y, radius, start, end float64) {
	c.record(Op{Kind: OpArc, X: x, Y: y, R: radius, A0: start, A1: end})
}

func (c *Canvas) FillText(text string, x, y float64) {
	c.record(Op{Kind: OpFillText, X: x, Y: y, S: text})
}

// Ops returns a copy of the display list.
func (c *Canvas) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op(nil), c.ops...)
}

// Empty reports whether nothing has been drawn since the last clear.
func (c *Canvas) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ops) == 0
}

// Encode replays the display list into an image of the given format.
func (c *Canvas) Encode(w io.Writer, format Format) error {
	c.mu.Lock()
	width, height := c.width, c.height
	ops := append([]Op(nil), c.ops...)
	c.mu.Unlock()

	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}
	r, err := provider(width, height)
	if err != nil {
		return fmt.Errorf("create %s renderer: %w", format, err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	r.SetFont(font)

	fillBackground(r, width, height)
	replay(r, ops)

	if err := r.Save(w); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

func fillBackground(r chart.Renderer, width, height int) {
	r.SetFillColor(drawing.ColorWhite)
	r.SetStrokeColor(drawing.ColorTransparent)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()
	r.ResetStyle()
}

type transform struct {
	tx, ty, rot float64
}

func (t transform) apply(x, y float64) (float64, float64) {
	sin, cos := math.Sincos(t.rot)
	return t.tx + x*cos - y*sin, t.ty + x*sin + y*cos
}

func px(v float64) int {
	return int(math.Round(v))
}

type graphicsState struct {
	transform
	stroke    drawing.Color
	lineWidth float64
	fontPx    float64
}

// replay paints ops onto r following canvas semantics: the current path
// survives Stroke and is only discarded by BeginPath.
func replay(r chart.Renderer, ops []Op) {
	st := graphicsState{stroke: drawing.ColorBlack, lineWidth: 1, fontPx: 10}
	var stack []graphicsState
	var path []Op

	for _, op := range ops {
		switch op.Kind {
		case OpBeginPath:
			path = path[:0]
		case OpMoveTo, OpLineTo, OpArc:
			op.X, op.Y = st.apply(op.X, op.Y)
			path = append(path, op)
		case OpStroke:
			r.SetStrokeColor(st.stroke)
			r.SetStrokeWidth(st.lineWidth)
			for _, p := range path {
				switch p.Kind {
				case OpMoveTo:
					r.MoveTo(px(p.X), px(p.Y))
				case OpLineTo:
					r.LineTo(px(p.X), px(p.Y))
				case OpArc:
					r.ArcTo(px(p.X), px(p.Y), p.R, p.R, p.A0, p.A1-p.A0)
				}
			}
			r.Stroke()
		case OpStrokeColor:
			st.stroke = drawing.ColorFromHex(strings.TrimPrefix(op.S, "#"))
		case OpLineWidth:
			st.lineWidth = op.R
		case OpFont:
			st.fontPx = op.R
		case OpFillText:
			x, y := st.apply(op.X, op.Y)
			r.SetFontColor(drawing.ColorBlack)
			// go-chart sizes fonts in points at 96 DPI
			r.SetFontSize(st.fontPx * 72 / 96)
			if st.rot != 0 {
				r.SetTextRotation(st.rot)
			}
			r.Text(op.S, px(x), px(y))
			r.ClearTextRotation()
		case OpSave:
			stack = append(stack, st)
		case OpRestore:
			if n := len(stack); n > 0 {
				st = stack[n-1]
				stack = stack[:n-1]
			}
		case OpTranslate:
			st.tx, st.ty = st.apply(op.X, op.Y)
		case OpRotate:
			st.rot += op.R
		}
	}
}
