// Package config provides configuration loading and management.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/user/zonecam/pkg/detector"
	"github.com/user/zonecam/pkg/overlay"
	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
	"github.com/user/zonecam/pkg/zones"
	"gopkg.in/yaml.v3"
)

// Capture backends.
const (
	BackendFFmpeg = "ffmpeg"
	BackendOpenCV = "opencv"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config represents the full configuration for zonecam.
type Config struct {
	// Input
	Source     string  `yaml:"source"`
	Backend    string  `yaml:"backend"`
	Screen     string  `yaml:"screen"`
	FPS        float64 `yaml:"fps"`
	FFmpegPath string  `yaml:"ffmpeg_path"`

	// Tracking
	Algorithm  string      `yaml:"algorithm"`
	Zones      ZonesConfig `yaml:"zones"`
	ReadyAfter int         `yaml:"ready_after"`

	// Loop
	Mirror  bool `yaml:"mirror"`
	DelayMs int  `yaml:"delay_ms"`
	Preview bool `yaml:"preview"`
	Overlay bool `yaml:"overlay"`

	// Output
	OutputDir string      `yaml:"output_dir"`
	Snapshots bool        `yaml:"snapshots"`
	Video     VideoConfig `yaml:"video"`
	Summary   string      `yaml:"summary"`

	Theme ThemeConfig `yaml:"theme"`

	LogLevel string `yaml:"log_level"`
}

// ZonesConfig describes the zone row.
type ZonesConfig struct {
	Count  int `yaml:"count"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// VideoConfig represents recording settings.
type VideoConfig struct {
	Path   string `yaml:"path"`
	FourCC string `yaml:"fourcc"`
}

// ThemeConfig represents overlay theming options.
type ThemeConfig struct {
	TrackedColor string  `yaml:"tracked_color"`
	LostColor    string  `yaml:"lost_color"`
	TextColor    string  `yaml:"text_color"`
	ShadowColor  string  `yaml:"shadow_color"`
	FontPath     string  `yaml:"font_path"`
	FontSize     float64 `yaml:"font_size"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	z := zones.DefaultConfig()
	return Config{
		Source:  "0",
		Backend: BackendFFmpeg,
		Screen:  "640x480",

		Algorithm: z.Algorithm,
		Zones: ZonesConfig{
			Count:  z.Count,
			Y:      z.Y,
			Width:  z.Width,
			Height: z.Height,
		},
		ReadyAfter: detector.DefaultReadyAfter,

		DelayMs: 1,
		Preview: true,
		Overlay: true,

		OutputDir: ".",
		Snapshots: true,
		Video:     VideoConfig{FourCC: "I420"},

		Theme: ThemeConfig{
			TrackedColor: "#00ff00",
			LostColor:    "#ff0000",
			TextColor:    "#ffffff",
			ShadowColor:  "#000000",
			FontSize:     13,
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(fs ports.FileSystem, path string) (Config, error) {
	cfg := Defaults()

	data, err := fs.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every field that cannot be checked later by the component using it.
func (c Config) Validate() error {
	var errs []error
	if c.Backend != BackendFFmpeg && c.Backend != BackendOpenCV {
		errs = append(errs, fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend))
	}
	if _, err := ParseScreen(c.Screen); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseSource(c.Source); err != nil {
		errs = append(errs, err)
	}
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("%w: fps %g", ErrInvalid, c.FPS))
	}
	if err := c.ZonesConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalid, err))
	}
	if c.ReadyAfter < 1 {
		errs = append(errs, fmt.Errorf("%w: ready_after %d", ErrInvalid, c.ReadyAfter))
	}
	if c.DelayMs < 0 {
		errs = append(errs, fmt.Errorf("%w: delay_ms %d", ErrInvalid, c.DelayMs))
	}
	for name, v := range map[string]string{
		"tracked_color": c.Theme.TrackedColor,
		"lost_color":    c.Theme.LostColor,
		"text_color":    c.Theme.TextColor,
		"shadow_color":  c.Theme.ShadowColor,
	} {
		if _, ok := parseHex(v); !ok {
			errs = append(errs, fmt.Errorf("%w: %s %q", ErrInvalid, name, v))
		}
	}
	return errors.Join(errs...)
}

// ParseScreen parses a WIDTHxHEIGHT string such as "640x480".
func ParseScreen(s string) (pipeline.Dimension, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return pipeline.Dimension{}, fmt.Errorf("%w: screen %q is not WIDTHxHEIGHT", ErrInvalid, s)
	}
	width, werr := strconv.Atoi(w)
	height, herr := strconv.Atoi(h)
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return pipeline.Dimension{}, fmt.Errorf("%w: screen %q", ErrInvalid, s)
	}
	return pipeline.Dimension{Width: width, Height: height}, nil
}

// ParseSource interprets a source string: a device index, a URL or a file path.
func ParseSource(s string) (ports.Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ports.Source{}, fmt.Errorf("%w: empty source", ErrInvalid)
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return ports.Source{}, fmt.Errorf("%w: device index %d", ErrInvalid, n)
		}
		return ports.Source{Kind: ports.SourceDevice, Device: n}, nil
	}
	if strings.Contains(s, "://") {
		return ports.Source{Kind: ports.SourceURL, Path: s}, nil
	}
	return ports.Source{Kind: ports.SourceFile, Path: s}, nil
}

// ParseColor parses a hex color string to color.Color.
// Malformed values yield black.
func ParseColor(s string) color.Color {
	c, ok := parseHex(s)
	if !ok {
		return color.Black
	}
	return c
}

func parseHex(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: b[0], G: b[1], B: b[2], A: 255}, true
}

// ZonesConfig converts the tracking settings to zones.Config.
func (c Config) ZonesConfig() zones.Config {
	return zones.Config{
		Count:     c.Zones.Count,
		Y:         c.Zones.Y,
		Width:     c.Zones.Width,
		Height:    c.Zones.Height,
		Algorithm: strings.ToUpper(c.Algorithm),
	}
}

// DetectorConfig converts the loop settings to detector.Config.
func (c Config) DetectorConfig() detector.Config {
	cfg := detector.DefaultConfig()
	cfg.ReadyAfter = c.ReadyAfter
	cfg.DelayMs = c.DelayMs
	cfg.OutputDir = c.OutputDir
	cfg.VideoPath = c.Video.Path
	if c.Video.FourCC != "" {
		cfg.FourCC = c.Video.FourCC
	}
	return cfg
}

// OverlayTheme converts the theme settings to overlay.Theme.
func (c Config) OverlayTheme() overlay.Theme {
	t := overlay.DefaultTheme()
	t.Tracked = ParseColor(c.Theme.TrackedColor)
	t.Lost = ParseColor(c.Theme.LostColor)
	t.Text = ParseColor(c.Theme.TextColor)
	t.Shadow = ParseColor(c.Theme.ShadowColor)
	t.FontPath = c.Theme.FontPath
	if c.Theme.FontSize > 0 {
		t.FontSize = c.Theme.FontSize
	}
	return t
}

// CaptureOptions returns the options used to open the source.
func (c Config) CaptureOptions() (ports.CaptureOptions, error) {
	d, err := ParseScreen(c.Screen)
	if err != nil {
		return ports.CaptureOptions{}, err
	}
	return ports.CaptureOptions{Width: d.Width, Height: d.Height, FPS: c.FPS}, nil
}
