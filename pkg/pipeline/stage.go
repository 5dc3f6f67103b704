// Package pipeline provides the shared frame types and the per-frame processing abstraction.
package pipeline

import (
	"context"
	"image"
)

// Stage represents a processing stage in the pipeline.
// Each stage takes an input and produces an output.
type Stage[In, Out any] interface {
	// Execute runs the stage with the given input and returns the output.
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage interface.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// Processor transforms one captured frame. Processors may draw on the frame
// in place and return it, or return a new image.
type Processor = Stage[*image.RGBA, *image.RGBA]

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc = StageFunc[*image.RGBA, *image.RGBA]

// Chain runs processors in order, feeding each output into the next one.
type Chain []Processor

// Execute implements Stage interface.
func (c Chain) Execute(ctx context.Context, frame *image.RGBA) (*image.RGBA, error) {
	var err error
	for _, p := range c {
		if frame == nil {
			return nil, nil
		}
		frame, err = p.Execute(ctx, frame)
		if err != nil {
			return frame, err
		}
	}
	return frame, nil
}
