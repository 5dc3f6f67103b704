// Package headless provides a Preview and KeySource for runs without a window.
package headless

import (
	"context"
	"image"
	"time"

	"github.com/user/zonecam/pkg/ports"
)

// Preview drops frames. PollKey sleeps for the requested delay so the loop
// keeps its pacing, and reports "q" once the context is cancelled.
type Preview struct {
	ctx context.Context
}

// New creates a headless preview bound to ctx.
func New(ctx context.Context) *Preview {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Preview{ctx: ctx}
}

func (p *Preview) Show(img *image.RGBA) {}

func (p *Preview) Close() error { return nil }

func (p *Preview) PollKey(delayMs int) int {
	if delayMs <= 0 {
		delayMs = 1
	}
	t := time.NewTimer(time.Duration(delayMs) * time.Millisecond)
	defer t.Stop()
	select {
	case <-p.ctx.Done():
		return 'q'
	case <-t.C:
		return ports.KeyNone
	}
}

var (
	_ ports.Preview   = (*Preview)(nil)
	_ ports.KeySource = (*Preview)(nil)
)
