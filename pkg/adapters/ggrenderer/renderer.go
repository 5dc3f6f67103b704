// Package ggrenderer implements ports.Renderer with the gg 2D library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// Renderer implements ports.Renderer. Loaded font faces are cached so that
// per-frame canvases do not re-read font files.
type Renderer struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{faces: make(map[faceKey]font.Face)}
}

// CanvasFrom creates a canvas over a copy of img.
func (r *Renderer) CanvasFrom(img image.Image) ports.Canvas {
	rgba := pipeline.CloneRGBA(pipeline.ToRGBA(img))
	if rgba == nil {
		rgba = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return &Canvas{dc: gg.NewContextForRGBA(rgba), r: r}
}

func (r *Renderer) face(path string, size float64) font.Face {
	if path == "" {
		return basicfont.Face7x13
	}
	key := faceKey{path, size}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f
	}
	f, err := gg.LoadFontFace(path, size)
	if err != nil {
		f = basicfont.Face7x13
	}
	r.faces[key] = f
	return f
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc *gg.Context
	r  *Renderer
}

func (c *Canvas) DrawRectStroke(x, y, w, h int, col color.Color, strokeWidth float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(strokeWidth)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Stroke()
}

// DrawText draws text anchored at (x, y). Without a font path the built-in
// 7x13 bitmap face is used.
func (c *Canvas) DrawText(text string, x, y int, style ports.TextStyle) {
	if style.Color == nil {
		style.Color = color.White
	}
	c.dc.SetColor(style.Color)
	c.dc.SetFontFace(c.r.face(style.FontPath, style.FontSize))

	ax := 0.0
	switch style.Align {
	case ports.AlignCenter:
		ax = 0.5
	case ports.AlignRight:
		ax = 1.0
	}

	c.dc.DrawStringAnchored(text, float64(x), float64(y), ax, 0.5)
}

func (c *Canvas) DrawLine(x1, y1, x2, y2 int, col color.Color, width float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(float64(x1), float64(y1), float64(x2), float64(y2))
	c.dc.Stroke()
}

func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

var _ ports.Canvas = (*Canvas)(nil)
