// Package ffmpeg runs an external ffmpeg process to capture raw frames from
// cameras, files and streams, and to encode frames into video files.
package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("ffmpeg: executable not found")

	// ErrUnsupportedCodec is returned for FourCC tags without an ffmpeg encoder mapping.
	ErrUnsupportedCodec = errors.New("ffmpeg: unsupported codec")

	// ErrFrameSize is returned when a written frame does not match the writer size.
	ErrFrameSize = errors.New("ffmpeg: frame size mismatch")

	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.New("ffmpeg: closed")

	// ErrNoSettingsDialog is returned by capture devices without a settings dialog.
	ErrNoSettingsDialog = errors.New("ffmpeg: settings dialog not available")

	// ErrPropertyRejected is returned when a frame size cannot be applied.
	ErrPropertyRejected = errors.New("ffmpeg: property rejected")

	// ErrProbe is returned when the stream size cannot be determined.
	ErrProbe = errors.New("ffmpeg: cannot determine stream size")
)

var customFFmpegPath string

// SetFFmpegPath overrides ffmpeg discovery with an explicit executable path.
func SetFFmpegPath(path string) {
	customFFmpegPath = path
}

// IsAvailable checks if ffmpeg is available on the system.
func IsAvailable() bool {
	_, err := FindFFmpeg()
	return err == nil
}

// FindFFmpeg locates the ffmpeg executable. The search order is the path set
// with SetFFmpegPath, the FFMPEG_PATH environment variable, PATH, then a few
// well-known install locations.
func FindFFmpeg() (string, error) {
	if customFFmpegPath != "" {
		if _, err := os.Stat(customFFmpegPath); err == nil {
			return customFFmpegPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, customFFmpegPath)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, p := range commonPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrFFmpegNotFound
}

func commonPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	case "darwin":
		return []string{"/opt/homebrew/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
	default:
		return []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/snap/bin/ffmpeg"}
	}
}
