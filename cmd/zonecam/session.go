package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/zonecam/pkg/adapters/ffmpeg"
	"github.com/user/zonecam/pkg/adapters/ggrenderer"
	"github.com/user/zonecam/pkg/adapters/headless"
	"github.com/user/zonecam/pkg/adapters/logger"
	"github.com/user/zonecam/pkg/adapters/nullsink"
	"github.com/user/zonecam/pkg/adapters/opencv"
	"github.com/user/zonecam/pkg/adapters/osfilesystem"
	"github.com/user/zonecam/pkg/adapters/snapshotsink"
	"github.com/user/zonecam/pkg/capture"
	"github.com/user/zonecam/pkg/config"
	"github.com/user/zonecam/pkg/detector"
	"github.com/user/zonecam/pkg/ports"
	"github.com/user/zonecam/pkg/summarizer"
	"github.com/user/zonecam/pkg/trackers"
	"github.com/user/zonecam/pkg/zones"
)

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(c *cli.Context, fs ports.FileSystem) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(fs, path); err != nil {
			return cfg, err
		}
	}
	applyFlags(c, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if src := c.Args().First(); src != "" {
		cfg.Source = src
	}
	str := map[string]*string{
		"backend":    &cfg.Backend,
		"screen":     &cfg.Screen,
		"ffmpeg":     &cfg.FFmpegPath,
		"output-dir": &cfg.OutputDir,
		"video":      &cfg.Video.Path,
		"fourcc":     &cfg.Video.FourCC,
		"summary":    &cfg.Summary,
		"log-level":  &cfg.LogLevel,
		"algo":       &cfg.Algorithm,
	}
	for name, dst := range str {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	num := map[string]*int{
		"delay":       &cfg.DelayMs,
		"zones":       &cfg.Zones.Count,
		"zone-y":      &cfg.Zones.Y,
		"zone-width":  &cfg.Zones.Width,
		"zone-height": &cfg.Zones.Height,
		"ready-after": &cfg.ReadyAfter,
	}
	for name, dst := range num {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	if c.IsSet("fps") {
		cfg.FPS = c.Float64("fps")
	}
	if c.IsSet("mirror") {
		cfg.Mirror = c.Bool("mirror")
	}
	if c.Bool("headless") {
		cfg.Preview = false
	}
	if c.Bool("no-overlay") {
		cfg.Overlay = false
	}
	if c.Bool("no-snapshots") {
		cfg.Snapshots = false
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}
}

func newLogger(cfg config.Config) ports.Logger {
	level := ports.ParseLogLevel(cfg.LogLevel)
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(level).WithTimestamps(level == ports.LevelDebug)
}

// session holds the adapters of one run.
type session struct {
	cfg      config.Config
	log      ports.Logger
	fs       ports.FileSystem
	renderer ports.Renderer
	sink     ports.SnapshotSink
	registry *trackers.Registry
	preview  ports.Preview
	keys     ports.KeySource
	manager  *capture.Manager
	source   ports.Source
	started  time.Time
}

func registry() (*trackers.Registry, error) {
	r := trackers.Default()
	if err := r.RegisterAll(opencv.TrackerFactories()); err != nil {
		return nil, err
	}
	return r, nil
}

func openSession(ctx context.Context, cfg config.Config, log ports.Logger) (*session, error) {
	s := &session{
		cfg:      cfg,
		log:      log,
		fs:       osfilesystem.New(),
		renderer: ggrenderer.New(),
		started:  time.Now(),
	}
	var err error
	if s.registry, err = registry(); err != nil {
		return nil, err
	}
	// Snapshot paths arrive already joined with the output directory.
	s.sink = nullsink.New()
	if cfg.Snapshots {
		s.sink = snapshotsink.New("", s.fs, s.renderer)
	}

	src, err := config.ParseSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	s.source = src
	opts, err := cfg.CaptureOptions()
	if err != nil {
		return nil, err
	}

	var opener ports.CaptureOpener
	var writers ports.VideoWriterFactory
	switch cfg.Backend {
	case config.BackendOpenCV:
		if !opencv.Available() {
			return nil, opencv.ErrOpenCVUnavailable
		}
		opener, writers = opencv.Opener{}, opencv.WriterFactory{}
	default:
		ffmpeg.SetFFmpegPath(cfg.FFmpegPath)
		opener, writers = ffmpeg.Opener{}, ffmpeg.WriterFactory{}
	}

	if err := s.fs.MkdirAll(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	device, err := opener.Open(src, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src, err)
	}
	log.Info("Opened %s with %s: %dx%d", src, cfg.Backend, device.Width(), device.Height())

	s.preview, s.keys = s.openPreview(ctx)
	s.manager = capture.New(device, s.preview, s.sink, writers, log, capture.WithMirror(cfg.Mirror))

	// Devices may ignore the requested size on open; files keep their own.
	w, h := device.Width(), device.Height()
	if src.Kind == ports.SourceDevice && (w != opts.Width || h != opts.Height) {
		if err := errors.Join(s.manager.SetWidth(opts.Width), s.manager.SetHeight(opts.Height)); err != nil {
			log.Warn("Frame size %dx%d rejected: %v", opts.Width, opts.Height, err)
		}
	}
	if cfg.Video.Path != "" {
		s.manager.StartWritingVideo(cfg.Video.Path, cfg.Video.FourCC)
	}
	return s, nil
}

func (s *session) openPreview(ctx context.Context) (ports.Preview, ports.KeySource) {
	if s.cfg.Preview && opencv.Available() {
		w, err := opencv.NewWindow("zonecam")
		if err == nil {
			return w, w
		}
		s.log.Warn("Preview unavailable: %v", err)
	}
	p := headless.New(ctx)
	return p, p
}

func (s *session) detectorOptions() []detector.Option {
	if !s.cfg.Overlay {
		return nil
	}
	return []detector.Option{detector.WithOverlay(s.renderer, s.cfg.OverlayTheme())}
}

func (s *session) close() {
	if s.preview != nil {
		s.preview.Close()
	}
}

// summarize writes the session summary when a path is configured.
func (s *session) summarize(d *detector.Detector, ready bool) {
	if s.cfg.Summary == "" {
		return
	}
	m := d.Manager()
	b := summarizer.NewBuilder().
		WithSource(summarizer.SourceInfo{
			Source:       s.source.String(),
			Backend:      s.cfg.Backend,
			Width:        m.Width(),
			Height:       m.Height(),
			AnnouncedFPS: m.Device().FPS(),
		}).
		WithTiming(s.started, time.Now(), d.Processed()).
		WithFPS(m.FPSStats()).
		WithOutputs(savedSnapshots(s.sink), m.Recordings())
	if z := d.Zones(); z != nil {
		b.WithTracking(z.Config().Algorithm, ready, d.Snapshot())
	}

	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	), s.fs)
	if err := w.Write(s.cfg.Summary, b.Build()); err != nil {
		s.log.Warn("Summary not written: %v", err)
		return
	}
	s.log.Info("Summary written to %s", s.cfg.Summary)
}

func savedSnapshots(sink ports.SnapshotSink) []string {
	if s, ok := sink.(interface{ Saved() []string }); ok {
		return s.Saved()
	}
	return nil
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func runTrack(c *cli.Context) error {
	return run(c, true)
}

func runCapture(c *cli.Context) error {
	return run(c, false)
}

func run(c *cli.Context, track bool) error {
	cfg, err := loadConfig(c, osfilesystem.New())
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := signalContext(c)
	defer cancel()

	s, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	var orch *zones.Orchestrator
	if track {
		if orch, err = zones.New(cfg.ZonesConfig(), s.registry, log); err != nil {
			s.manager.Close()
			return err
		}
		log.Info("Tracking %d zones with %s", cfg.Zones.Count, cfg.ZonesConfig().Algorithm)
	}

	d := detector.New(s.manager, orch, s.keys, log, cfg.DetectorConfig(), s.detectorOptions()...)
	runErr := d.Run(ctx)
	if ctx.Err() != nil {
		log.Warn("Interrupted, shutting down...")
	}

	ready := false
	select {
	case <-d.Ready():
		ready = true
	default:
	}
	s.summarize(d, ready)
	return runErr
}

func runAlgos(c *cli.Context) error {
	r, err := registry()
	if err != nil {
		return err
	}
	for _, name := range r.Names() {
		fmt.Fprintln(c.App.Writer, name)
	}
	if !opencv.Available() {
		fmt.Fprintln(c.App.Writer, l10n.F("Not built in: %s (requires the withcv build tag)", strings.Join(opencv.TrackerNames, ", ")))
	}
	return nil
}
