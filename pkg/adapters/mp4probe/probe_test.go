package mp4probe

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildFragmented writes a minimal fragmented MP4 with n video samples at fps.
func buildFragmented(t *testing.T, width, height uint16, n int, fps uint32) []byte {
	t.Helper()
	timescale := fps * 1000

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("avc1", width, height, nil))
	trak.Tkhd.Width = mp4.Fixed32(uint32(width) << 16)
	trak.Tkhd.Height = mp4.Fixed32(uint32(height) << 16)

	frag, err := mp4.CreateFragment(1, 1)
	if err != nil {
		t.Fatalf("create fragment: %v", err)
	}
	dur := timescale / fps
	for i := 0; i < n; i++ {
		data := []byte{0, 0, 0, 1, 0x65}
		frag.AddFullSample(mp4.FullSample{
			Sample:     mp4.Sample{Flags: mp4.SyncSampleFlags, Size: uint32(len(data)), Dur: dur},
			DecodeTime: uint64(i) * uint64(dur),
			Data:       data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProbe_Fragmented(t *testing.T) {
	data := buildFragmented(t, 640, 480, 30, 30)

	info, err := Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.Codec != CodecH264 {
		t.Errorf("expected h264, got %s", info.Codec)
	}
	if info.Width != 640 || info.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", info.Width, info.Height)
	}
	if info.Frames != 30 {
		t.Errorf("expected 30 frames, got %d", info.Frames)
	}
	if math.Abs(info.FPS-30) > 0.01 {
		t.Errorf("expected 30 fps, got %f", info.FPS)
	}
}

func TestProbe_Garbage(t *testing.T) {
	if _, err := Probe(bytes.NewReader([]byte("not an mp4"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestProbeFile_Missing(t *testing.T) {
	_, err := ProbeFile("/nonexistent/clip.mp4")
	if err == nil || errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected open error, got %v", err)
	}
}

func TestIsMP4(t *testing.T) {
	for path, want := range map[string]bool{
		"clip.mp4": true,
		"CLIP.MOV": true,
		"clip.avi": false,
		"":         false,
	} {
		if got := IsMP4(path); got != want {
			t.Errorf("IsMP4(%q) = %v, want %v", path, got, want)
		}
	}
}
