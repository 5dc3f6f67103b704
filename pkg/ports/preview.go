package ports

import (
	"image"
)

// Preview displays frames to the user.
type Preview interface {
	// Show displays a frame.
	Show(img *image.RGBA)

	// Close destroys the preview window.
	Close() error
}

// KeyNone is returned by KeySource.PollKey when no key was pressed.
const KeyNone = -1

// KeySource delivers key presses from the preview window.
type KeySource interface {
	// PollKey waits up to delayMs milliseconds for a key press and returns its
	// ASCII code, or KeyNone.
	PollKey(delayMs int) int
}
