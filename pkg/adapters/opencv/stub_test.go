//go:build !withcv

package opencv

import (
	"errors"
	"testing"

	"github.com/user/zonecam/pkg/ports"
)

func TestStubs(t *testing.T) {
	if Available() {
		t.Error("expected OpenCV to be unavailable")
	}
	if _, err := (Opener{}).Open(ports.Source{}, ports.CaptureOptions{}); !errors.Is(err, ErrOpenCVUnavailable) {
		t.Errorf("expected ErrOpenCVUnavailable, got %v", err)
	}
	if _, err := NewWindow("zonecam"); !errors.Is(err, ErrOpenCVUnavailable) {
		t.Errorf("expected ErrOpenCVUnavailable, got %v", err)
	}
	if _, err := (WriterFactory{}).Create(ports.VideoWriterOptions{}); !errors.Is(err, ErrOpenCVUnavailable) {
		t.Errorf("expected ErrOpenCVUnavailable, got %v", err)
	}
	if len(TrackerFactories()) != 0 {
		t.Error("expected no tracker factories")
	}
}
