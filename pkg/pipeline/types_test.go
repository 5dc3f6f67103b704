package pipeline

import (
	"context"
	"image"
	"image/color"
	"testing"
)

func TestBBox_Center(t *testing.T) {
	b := BBox{X: 100, Y: 40, W: 30, H: 20}

	if got := b.CenterX(); got != 115 {
		t.Errorf("expected CenterX 115, got %d", got)
	}
	if got := b.CenterY(); got != 50 {
		t.Errorf("expected CenterY 50, got %d", got)
	}
}

func TestBBox_CenterXUsesWidthNotY(t *testing.T) {
	// A box whose y differs from its width would expose an x + y/2 formula.
	b := BBox{X: 10, Y: 200, W: 40, H: 10}
	if got := b.CenterX(); got != 30 {
		t.Errorf("expected CenterX 30, got %d", got)
	}
}

func TestBBox_Valid(t *testing.T) {
	tests := []struct {
		box  BBox
		want bool
	}{
		{BBox{W: 1, H: 1}, true},
		{BBox{W: 0, H: 1}, false},
		{BBox{W: 1, H: 0}, false},
		{BBox{W: -5, H: 10}, false},
	}
	for _, tt := range tests {
		if got := tt.box.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.box, got, tt.want)
		}
	}
}

func TestBBox_Clip(t *testing.T) {
	b := BBox{X: -10, Y: 5, W: 30, H: 100}
	got := b.Clip(image.Rect(0, 0, 50, 50))
	want := BBox{X: 0, Y: 5, W: 20, H: 45}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}

	outside := BBox{X: 100, Y: 100, W: 5, H: 5}.Clip(image.Rect(0, 0, 50, 50))
	if outside.Valid() {
		t.Errorf("expected invalid box, got %v", outside)
	}
}

func TestMirrorHorizontal(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img.SetRGBA(0, 0, red)
	img.SetRGBA(2, 1, blue)

	mirrored := MirrorHorizontal(img)

	if got := mirrored.RGBAAt(2, 0); got != red {
		t.Errorf("expected red at (2,0), got %v", got)
	}
	if got := mirrored.RGBAAt(0, 1); got != blue {
		t.Errorf("expected blue at (0,1), got %v", got)
	}
	if got := img.RGBAAt(0, 0); got != red {
		t.Error("source image must not be modified")
	}
}

func TestToRGBA_Offset(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 20, 20))
	src.SetRGBA(10, 10, color.RGBA{G: 255, A: 255})

	got := ToRGBA(src)
	if got.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("expected origin bounds, got %v", got.Bounds())
	}
	if c := got.RGBAAt(0, 0); c.G != 255 {
		t.Errorf("expected green at origin, got %v", c)
	}
}

func TestChain_Execute(t *testing.T) {
	var order []string
	step := func(name string) Processor {
		return ProcessorFunc(func(ctx context.Context, f *image.RGBA) (*image.RGBA, error) {
			order = append(order, name)
			return f, nil
		})
	}

	chain := Chain{step("a"), step("b")}
	frame := image.NewRGBA(image.Rect(0, 0, 1, 1))

	out, err := chain.Execute(context.Background(), frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != frame {
		t.Error("expected the same frame to flow through")
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("unexpected order %v", order)
	}
}
