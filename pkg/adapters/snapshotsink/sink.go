// Package snapshotsink writes snapshot frames to image files.
package snapshotsink

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/zonecam/pkg/ports"
)

// DefaultQuality is the JPEG quality used for snapshots.
const DefaultQuality = 90

// Sink encodes frames with a Renderer and writes them through a FileSystem.
// Relative paths are resolved against baseDir.
type Sink struct {
	baseDir  string
	quality  int
	fs       ports.FileSystem
	renderer ports.Renderer

	mu    *sync.Mutex
	saved *[]string
}

// New creates a snapshot sink rooted at baseDir.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		quality:  DefaultQuality,
		fs:       fs,
		renderer: renderer,
		mu:       &sync.Mutex{},
		saved:    &[]string{},
	}
}

// WithQuality returns a copy of the sink using the given JPEG quality.
func (s *Sink) WithQuality(q int) *Sink {
	c := *s
	if q > 0 && q <= 100 {
		c.quality = q
	}
	return &c
}

func (s *Sink) Enabled() bool {
	return true
}

// SaveSnapshot encodes img according to the path extension and writes it.
func (s *Sink) SaveSnapshot(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("snapshot %s: no image", path)
	}
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	path, err := s.freePath(path)
	if err != nil {
		return err
	}
	format := ports.FormatFromPath(path)
	data, err := s.renderer.EncodeImage(img, format, s.quality)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	s.mu.Lock()
	*s.saved = append(*s.saved, path)
	s.mu.Unlock()
	return nil
}

// maxSuffix bounds the numbered names tried for one snapshot.
const maxSuffix = 100

// freePath returns path, or path with a _N suffix before the extension when
// a file already exists there. Two snapshots in the same second share a name.
func (s *Sink) freePath(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for n := 1; n <= maxSuffix; n++ {
		exists, err := s.fs.Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("snapshot %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	return "", fmt.Errorf("snapshot %s: no free name", path)
}

// Saved returns the paths written so far, oldest first.
func (s *Sink) Saved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), *s.saved...)
}

var _ ports.SnapshotSink = (*Sink)(nil)
