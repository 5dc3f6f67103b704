package capture

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/user/zonecam/pkg/mocks"
	"github.com/user/zonecam/pkg/ports"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func cycle(m *Manager) {
	m.EnterFrame()
	m.ExitFrame()
}

func TestManager_DoubleEnterPanics(t *testing.T) {
	m := New(mocks.NewCaptureDevice(8, 8, 4), nil, nil, nil, nil)

	m.EnterFrame()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on second EnterFrame")
		}
		if err, ok := r.(error); !ok || !errors.Is(err, ErrDoubleEnter) {
			t.Errorf("expected ErrDoubleEnter, got %v", r)
		}
	}()
	m.EnterFrame()
}

func TestManager_EnterExitSequence(t *testing.T) {
	dev := mocks.NewCaptureDevice(8, 8, 3)
	m := New(dev, nil, nil, nil, nil)

	for i := 0; i < 5; i++ {
		cycle(m)
	}
	if got := m.FramesElapsed(); got != 3 {
		t.Errorf("expected 3 frames elapsed, got %d", got)
	}
	if dev.GrabCalls != 5 {
		t.Errorf("expected 5 grabs, got %d", dev.GrabCalls)
	}
}

func TestManager_DeferredDecode(t *testing.T) {
	dev := mocks.NewCaptureDevice(8, 8, 2)
	m := New(dev, nil, nil, nil, nil)

	cycle(m)
	if dev.RetrieveCalls != 0 {
		t.Errorf("expected no decode, got %d retrieve calls", dev.RetrieveCalls)
	}
	if m.FramesElapsed() != 1 {
		t.Errorf("expected the grabbed frame to be counted, got %d", m.FramesElapsed())
	}

	m.EnterFrame()
	first := m.Frame()
	second := m.Frame()
	m.ExitFrame()
	if first == nil || first != second {
		t.Error("expected the same cached frame on repeated reads")
	}
	if dev.RetrieveCalls != 1 {
		t.Errorf("expected one decode, got %d", dev.RetrieveCalls)
	}
}

func TestManager_FrameOutsideCycle(t *testing.T) {
	dev := mocks.NewCaptureDevice(8, 8, 1)
	m := New(dev, nil, nil, nil, nil)

	if m.Frame() != nil {
		t.Error("expected nil frame before EnterFrame")
	}
	cycle(m)
	if m.Frame() != nil {
		t.Error("expected nil frame after ExitFrame")
	}

	// Stream exhausted: the cycle ends without a frame.
	m.EnterFrame()
	if m.Frame() != nil {
		t.Error("expected nil frame at end of stream")
	}
	m.ExitFrame()
	if m.FramesElapsed() != 1 {
		t.Errorf("expected 1 frame elapsed, got %d", m.FramesElapsed())
	}
}

func TestManager_FPSEstimate(t *testing.T) {
	const batch = 24
	clock := mocks.NewClock(t0)
	m := New(mocks.NewCaptureDevice(4, 4, 3*batch), nil, nil, nil, nil, WithClock(clock))

	for i := 0; i < batch; i++ {
		cycle(m)
	}
	if m.FPSEstimate() != 0 {
		t.Errorf("expected no estimate before the first boundary, got %f", m.FPSEstimate())
	}

	clock.Advance(time.Second)
	for i := 0; i < batch; i++ {
		cycle(m)
	}
	if m.FPSEstimate() != batch {
		t.Errorf("expected %d after the first boundary, got %f", batch, m.FPSEstimate())
	}

	clock.Advance(time.Second)
	for i := 0; i < batch; i++ {
		cycle(m)
	}
	if m.FPSEstimate() != batch {
		t.Errorf("expected %d after the second boundary, got %f", batch, m.FPSEstimate())
	}
	if m.FramesElapsed() != 3*batch {
		t.Errorf("expected %d frames elapsed, got %d", 3*batch, m.FramesElapsed())
	}
}

func TestManager_VideoWriterWaitsForWarmup(t *testing.T) {
	clock := mocks.NewClock(t0)
	writers := &mocks.VideoWriterFactory{}
	m := New(mocks.NewCaptureDevice(32, 24, 30), nil, nil, writers, nil, WithClock(clock))

	m.StartWritingVideo("out.avi", "")
	for i := 0; i < DefaultWarmupFrames-1; i++ {
		cycle(m)
		clock.Advance(100 * time.Millisecond)
	}
	if len(writers.CreateCalls) != 0 {
		t.Fatalf("expected no writer during warm-up, got %d", len(writers.CreateCalls))
	}

	for i := DefaultWarmupFrames - 1; i < 30; i++ {
		cycle(m)
		clock.Advance(100 * time.Millisecond)
	}
	if len(writers.CreateCalls) != 1 {
		t.Fatalf("expected exactly one writer, got %d", len(writers.CreateCalls))
	}

	opts := writers.CreateCalls[0]
	want := ports.VideoWriterOptions{Path: "out.avi", FourCC: DefaultFourCC, FPS: 10, Width: 32, Height: 24}
	if opts != want {
		t.Errorf("expected %+v, got %+v", want, opts)
	}
	if got := writers.Writers[0].Frames; got != 30-DefaultWarmupFrames+1 {
		t.Errorf("expected %d frames written, got %d", 30-DefaultWarmupFrames+1, got)
	}
}

func TestManager_VideoWriterWaitsForFirstSecond(t *testing.T) {
	clock := mocks.NewClock(t0)
	writers := &mocks.VideoWriterFactory{}
	m := New(mocks.NewCaptureDevice(32, 24, 60), nil, nil, writers, nil, WithClock(clock))

	// 50 fps passes the warm-up frame count well before the first second ends.
	m.StartWritingVideo("out.avi", "")
	for i := 0; i < 50; i++ {
		cycle(m)
		clock.Advance(20 * time.Millisecond)
	}
	if len(writers.CreateCalls) != 0 {
		t.Fatalf("expected no writer before the first estimate, got %+v", writers.CreateCalls)
	}
	if !m.IsWritingVideo() {
		t.Fatal("expected the recording to still be pending")
	}

	for i := 50; i < 60; i++ {
		cycle(m)
		clock.Advance(20 * time.Millisecond)
	}
	if len(writers.CreateCalls) != 1 {
		t.Fatalf("expected exactly one writer, got %d", len(writers.CreateCalls))
	}
	if got := writers.CreateCalls[0].FPS; got != 50 {
		t.Errorf("expected 50 fps, got %v", got)
	}
	if got := writers.Writers[0].Frames; got != 10 {
		t.Errorf("expected 10 frames written, got %d", got)
	}
}

func TestManager_VideoWriterUsesAnnouncedFPS(t *testing.T) {
	dev := mocks.NewCaptureDevice(16, 16, 5)
	dev.AnnouncedFPS = 25
	writers := &mocks.VideoWriterFactory{}
	m := New(dev, nil, nil, writers, nil)

	m.StartWritingVideo("clip.avi", "MJPG")
	cycle(m)
	if len(writers.CreateCalls) != 1 {
		t.Fatalf("expected writer on first frame, got %d", len(writers.CreateCalls))
	}
	if c := writers.CreateCalls[0]; c.FPS != 25 || c.FourCC != "MJPG" {
		t.Errorf("unexpected options %+v", c)
	}

	cycle(m)
	if err := m.StopWritingVideo(); err != nil {
		t.Fatalf("StopWritingVideo failed: %v", err)
	}
	w := writers.Writers[0]
	if !w.Closed || w.Frames != 2 {
		t.Errorf("expected closed writer with 2 frames, got closed=%v frames=%d", w.Closed, w.Frames)
	}
	if m.IsWritingVideo() {
		t.Error("expected recording to be stopped")
	}

	cycle(m)
	if len(writers.CreateCalls) != 1 {
		t.Errorf("expected no new writer after stop, got %d", len(writers.CreateCalls))
	}
}

func TestManager_VideoWriterCreateError(t *testing.T) {
	dev := mocks.NewCaptureDevice(16, 16, 3)
	dev.AnnouncedFPS = 30
	boom := errors.New("no encoder")
	writers := &mocks.VideoWriterFactory{
		CreateFunc: func(opts ports.VideoWriterOptions) (ports.VideoWriter, error) { return nil, boom },
	}
	m := New(dev, nil, nil, writers, nil)

	m.StartWritingVideo("clip.avi", "XVID")
	cycle(m)
	cycle(m)

	if !errors.Is(m.LastError(), boom) {
		t.Errorf("expected create error to be recorded, got %v", m.LastError())
	}
	if len(writers.CreateCalls) != 1 {
		t.Errorf("expected a single attempt, got %d", len(writers.CreateCalls))
	}
	if m.IsWritingVideo() {
		t.Error("expected recording to be abandoned")
	}
}

func TestManager_WriteImageIsOneShot(t *testing.T) {
	sink := mocks.NewSnapshotSink()
	m := New(mocks.NewCaptureDevice(8, 8, 3), nil, sink, nil, nil)

	m.WriteImage("shot.jpg")
	if !m.IsWritingImage() {
		t.Error("expected pending image")
	}
	cycle(m)
	cycle(m)

	if sink.Count() != 1 {
		t.Errorf("expected one snapshot, got %d", sink.Count())
	}
	if m.IsWritingImage() {
		t.Error("expected filename to be cleared")
	}
}

func TestManager_DisabledSinkSkipsSnapshot(t *testing.T) {
	sink := mocks.NewSnapshotSink()
	sink.Disabled = true
	m := New(mocks.NewCaptureDevice(8, 8, 2), nil, sink, nil, nil)

	m.WriteImage("shot.jpg")
	cycle(m)

	if sink.Count() != 0 {
		t.Errorf("expected no snapshot, got %d", sink.Count())
	}
	if m.IsWritingImage() {
		t.Error("expected the request to be consumed")
	}
}

func TestManager_SnapshotErrorIsRecorded(t *testing.T) {
	sink := mocks.NewSnapshotSink()
	boom := errors.New("read-only")
	sink.SaveFunc = func(path string, img image.Image) error { return boom }
	log := mocks.NewLogger()
	m := New(mocks.NewCaptureDevice(8, 8, 2), nil, sink, nil, log)

	m.WriteImage("shot.jpg")
	cycle(m)

	if !errors.Is(m.LastError(), boom) {
		t.Errorf("expected snapshot error, got %v", m.LastError())
	}
	if len(log.Entries(ports.LevelWarn)) != 1 {
		t.Errorf("expected one warning, got %v", log.Entries(ports.LevelWarn))
	}
}

func TestManager_MirrorPreview(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 1))
	red := color.RGBA{R: 255, A: 255}
	frame.SetRGBA(0, 0, red)
	dev := &mocks.CaptureDevice{Frames: []*image.RGBA{frame, frame}, W: 4, H: 1}
	preview := &mocks.Preview{}
	m := New(dev, preview, nil, nil, nil, WithMirror(true))

	cycle(m)
	if got := preview.Shown[0].RGBAAt(3, 0); got != red {
		t.Errorf("expected mirrored pixel at x=3, got %v", got)
	}
	if got := frame.RGBAAt(0, 0); got != red {
		t.Error("mirroring must not modify the captured frame")
	}

	m.SetMirror(false)
	cycle(m)
	if preview.Shown[1] != frame {
		t.Error("expected the unmirrored frame to be shown as is")
	}
}

func TestManager_PropertyErrors(t *testing.T) {
	dev := mocks.NewCaptureDevice(640, 480, 1)
	rejected := errors.New("rejected")
	dev.SetWidthFunc = func(int) error { return rejected }
	dev.OpenSettingsFunc = func() error { return rejected }
	m := New(dev, nil, nil, nil, nil)

	if err := m.SetWidth(1280); !errors.Is(err, rejected) {
		t.Errorf("expected rejected width, got %v", err)
	}
	if err := m.SetHeight(720); err != nil {
		t.Errorf("unexpected height error: %v", err)
	}
	if m.Width() != 640 || m.Height() != 720 {
		t.Errorf("expected 640x720, got %dx%d", m.Width(), m.Height())
	}
	if err := m.OpenSettings(); !errors.Is(err, rejected) {
		t.Errorf("expected settings error, got %v", err)
	}

	empty := New(nil, nil, nil, nil, nil)
	if err := empty.SetWidth(10); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
}

func TestManager_SetChannelDropsFrame(t *testing.T) {
	dev := mocks.NewCaptureDevice(8, 8, 1)
	m := New(dev, nil, nil, nil, nil)

	m.EnterFrame()
	m.Frame()
	m.SetChannel(1)
	m.Frame()
	m.ExitFrame()

	if dev.RetrieveCalls != 2 {
		t.Errorf("expected a second decode after channel change, got %d", dev.RetrieveCalls)
	}
	if m.Channel() != 1 {
		t.Errorf("expected channel 1, got %d", m.Channel())
	}
}

func TestManager_Close(t *testing.T) {
	dev := mocks.NewCaptureDevice(8, 8, 1)
	dev.AnnouncedFPS = 30
	writers := &mocks.VideoWriterFactory{}
	m := New(dev, nil, nil, writers, nil)

	m.StartWritingVideo("a.avi", "I420")
	cycle(m)
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !dev.Closed || !writers.Writers[0].Closed {
		t.Error("expected device and writer to be closed")
	}
}
