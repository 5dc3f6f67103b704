package mocks

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	mu       sync.Mutex
	Canvases []*Canvas
}

func (m *Renderer) CanvasFrom(img image.Image) ports.Canvas {
	c := &Canvas{img: pipeline.CloneRGBA(pipeline.ToRGBA(img))}
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	b := img.Bounds()
	return []byte(fmt.Sprintf("%d:%dx%d", format, b.Dx(), b.Dy())), nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas that records draw calls.
type Canvas struct {
	img *image.RGBA

	Rects []RectCall
	Texts []string
	Lines []LineCall
}

// RectCall records a DrawRectStroke call.
type RectCall struct {
	X, Y, W, H int
	Color      color.Color
}

// LineCall records a DrawLine call.
type LineCall struct {
	X1, Y1, X2, Y2 int
	Color          color.Color
}

func (m *Canvas) DrawRectStroke(x, y, w, h int, c color.Color, strokeWidth float64) {
	m.Rects = append(m.Rects, RectCall{X: x, Y: y, W: w, H: h, Color: c})
}

func (m *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	m.Texts = append(m.Texts, text)
}

func (m *Canvas) DrawLine(x1, y1, x2, y2 int, c color.Color, width float64) {
	m.Lines = append(m.Lines, LineCall{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: c})
}

func (m *Canvas) ToImage() image.Image {
	if m.img != nil {
		return m.img
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1))
}

var _ ports.Canvas = (*Canvas)(nil)
