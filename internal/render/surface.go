package render

// Surface is an immediate-mode drawing target modelled on a 2D canvas
// context. Paths are built with BeginPath/MoveTo/LineTo/Arc and painted by
// Stroke; Save/Restore bracket Translate/Rotate.
type Surface interface {
	Width() int
	Height() int
	// SetWidth resizes the surface horizontally and discards its content.
	SetWidth(w int)
	// Clear erases everything drawn so far.
	Clear()

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64)
	Stroke()

	SetStrokeColor(hex string)
	SetLineWidth(w float64)
	SetFont(sizePx float64)
	FillText(text string, x, y float64)

	Save()
	Restore()
	Translate(x, y float64)
	Rotate(radians float64)
}
