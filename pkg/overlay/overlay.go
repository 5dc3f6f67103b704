// Package overlay draws tracking feedback on top of captured frames.
package overlay

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
	"github.com/user/zonecam/pkg/zones"
)

// Layout of the text block in the top-left corner.
const (
	textX       = 15
	textY       = 15
	lineSpacing = 16
	shadowShift = 1
)

// Theme holds the overlay colours and text settings.
type Theme struct {
	Tracked     color.Color
	Lost        color.Color
	Text        color.Color
	Shadow      color.Color
	FontSize    float64
	FontPath    string
	StrokeWidth float64
}

// DefaultTheme draws green boxes for tracked zones, red for the rest and
// white text with a black shadow.
func DefaultTheme() Theme {
	return Theme{
		Tracked:     color.RGBA{G: 255, A: 255},
		Lost:        color.RGBA{R: 255, A: 255},
		Text:        color.White,
		Shadow:      color.Black,
		FontSize:    13,
		StrokeWidth: 2,
	}
}

// Status is what the overlay shows for one frame.
type Status struct {
	Algorithm string
	Width     int
	Height    int
	FPS       float64
	Frame     int
	Zones     *zones.Snapshot
	Notice    string
}

// InfoLine formats the header line, e.g. "TEMPLATE 640x480 @30fps -   42".
func InfoLine(s Status) string {
	return fmt.Sprintf("%s %dx%d @%.0ffps - %4d", s.Algorithm, s.Width, s.Height, s.FPS, s.Frame)
}

// ZoneLine formats the displacement line of one zone, e.g. "#1 :   20,  -3".
func ZoneLine(z zones.ZoneState) string {
	return fmt.Sprintf("#%d : %4d,%4d", z.Index, z.DeltaX(), z.DeltaY())
}

// Stage draws zone rectangles and status text. It is a pipeline.Processor;
// status is queried once per frame.
type Stage struct {
	renderer ports.Renderer
	theme    Theme
	status   func() Status
}

// NewStage creates an overlay stage.
func NewStage(renderer ports.Renderer, theme Theme, status func() Status) *Stage {
	return &Stage{renderer: renderer, theme: theme, status: status}
}

// Execute returns a copy of frame with the overlay drawn on it.
func (s *Stage) Execute(ctx context.Context, frame *image.RGBA) (*image.RGBA, error) {
	if frame == nil {
		return nil, nil
	}
	return s.Draw(frame, s.status()), nil
}

// Draw renders st on a copy of frame.
func (s *Stage) Draw(frame *image.RGBA, st Status) *image.RGBA {
	canvas := s.renderer.CanvasFrom(frame)

	if st.Zones != nil {
		for _, z := range st.Zones.Zones {
			c := s.theme.Lost
			if z.Tracked && !z.Lost {
				c = s.theme.Tracked
			}
			b := z.Current
			canvas.DrawRectStroke(b.X, b.Y, b.W, b.H, c, s.theme.StrokeWidth)
			// Displacement from the initial center, the paddle input.
			if z.Tracked && (z.DeltaX() != 0 || z.DeltaY() != 0) {
				canvas.DrawLine(z.Initial.CenterX(), z.Initial.CenterY(), z.CenterX(), z.CenterY(), c, s.theme.StrokeWidth)
			}
		}
	}

	s.text(canvas, InfoLine(st), textY)
	if st.Zones != nil {
		for i, z := range st.Zones.Zones {
			s.text(canvas, ZoneLine(z), textY+lineSpacing*(i+1))
		}
	}
	if st.Notice != "" {
		s.text(canvas, st.Notice, frame.Bounds().Dy()-textY)
	}

	return pipeline.ToRGBA(canvas.ToImage())
}

// text draws a line with a one pixel shadow below and to the right.
func (s *Stage) text(canvas ports.Canvas, line string, y int) {
	style := ports.TextStyle{FontSize: s.theme.FontSize, FontPath: s.theme.FontPath, Color: s.theme.Shadow}
	canvas.DrawText(line, textX+shadowShift, y+shadowShift, style)
	style.Color = s.theme.Text
	canvas.DrawText(line, textX, y, style)
}

var _ pipeline.Processor = (*Stage)(nil)
