package pipeline

import (
	"fmt"
	"image"
)

// =============================================================================
// Geometry
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// String returns the dimension as WxH.
func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// BBox is an axis-aligned bounding box given by its top-left corner and size.
type BBox struct {
	X int
	Y int
	W int
	H int
}

// Valid reports whether the box has a strictly positive size.
func (b BBox) Valid() bool {
	return b.W > 0 && b.H > 0
}

// CenterX returns the horizontal center using the box width.
func (b BBox) CenterX() int {
	return b.X + b.W/2
}

// CenterY returns the vertical center using the box height.
func (b BBox) CenterY() int {
	return b.Y + b.H/2
}

// Translate returns the box moved by dx, dy.
func (b BBox) Translate(dx, dy int) BBox {
	return BBox{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Rect converts the box to an image.Rectangle.
func (b BBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Clip returns the part of the box that lies inside bounds.
// The result may be invalid when the box is entirely outside.
func (b BBox) Clip(bounds image.Rectangle) BBox {
	return FromRect(b.Rect().Intersect(bounds))
}

// String returns the box as (x,y,w,h).
func (b BBox) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", b.X, b.Y, b.W, b.H)
}

// FromRect converts an image.Rectangle to a BBox.
func FromRect(r image.Rectangle) BBox {
	r = r.Canon()
	return BBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}
