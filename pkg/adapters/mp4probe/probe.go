// Package mp4probe reads stream properties from MP4 files without decoding
// any video. File sources use it to learn the announced frame rate and frame
// size before the first frame is read.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// ErrNoVideoTrack is returned for files without a video track.
var ErrNoVideoTrack = errors.New("no video track found")

// Info describes the first video track of an MP4 file.
type Info struct {
	Codec  Codec
	Width  int
	Height int
	Frames int
	// FPS is the average frame rate, zero when it cannot be derived.
	FPS float64
}

// IsMP4 reports whether path has an extension this package can read.
func IsMP4(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// ProbeFile opens path and probes it.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe reads the container structure from r.
func Probe(r io.ReadSeeker) (Info, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}

	if file.IsFragmented() {
		return probeFragmented(file)
	}
	if file.Moov == nil {
		return Info{}, ErrNoVideoTrack
	}
	for _, trak := range file.Moov.Traks {
		if !isVideo(trak) {
			continue
		}
		info := trackInfo(trak)
		stbl := trak.Mdia.Minf.Stbl
		if stbl.Stts != nil && trak.Mdia.Mdhd != nil {
			var frames, dur uint64
			for i, n := range stbl.Stts.SampleCount {
				frames += uint64(n)
				dur += uint64(n) * uint64(stbl.Stts.SampleTimeDelta[i])
			}
			info.Frames = int(frames)
			info.FPS = rate(frames, dur, trak.Mdia.Mdhd.Timescale)
		}
		return info, nil
	}
	return Info{}, ErrNoVideoTrack
}

func probeFragmented(file *mp4.File) (Info, error) {
	if file.Init == nil || file.Init.Moov == nil {
		return Info{}, ErrNoVideoTrack
	}
	for _, trak := range file.Init.Moov.Traks {
		if !isVideo(trak) {
			continue
		}
		info := trackInfo(trak)
		trackID := trak.Tkhd.TrackID

		var trex *mp4.TrexBox
		if file.Init.Moov.Mvex != nil {
			for _, t := range file.Init.Moov.Mvex.Trexs {
				if t.TrackID == trackID {
					trex = t
					break
				}
			}
		}

		var frames, dur uint64
		for _, seg := range file.Segments {
			for _, frag := range seg.Fragments {
				if frag.Moof == nil {
					continue
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return info, fmt.Errorf("read fragment samples: %w", err)
				}
				for _, s := range samples {
					frames++
					dur += uint64(s.Dur)
				}
			}
		}
		info.Frames = int(frames)
		if trak.Mdia.Mdhd != nil {
			info.FPS = rate(frames, dur, trak.Mdia.Mdhd.Timescale)
		}
		return info, nil
	}
	return Info{}, ErrNoVideoTrack
}

func isVideo(trak *mp4.TrakBox) bool {
	return trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" &&
		trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil
}

func trackInfo(trak *mp4.TrakBox) Info {
	info := Info{Codec: CodecUnknown}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			info.Codec = CodecH264
		case "hvc1", "hev1":
			info.Codec = CodecHEVC
		case "av01":
			info.Codec = CodecAV1
		case "vp09":
			info.Codec = CodecVP9
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		if info.Codec != CodecUnknown {
			break
		}
	}
	if info.Width == 0 && trak.Tkhd != nil {
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}
	return info
}

func rate(frames, dur uint64, timescale uint32) float64 {
	if frames == 0 || dur == 0 || timescale == 0 {
		return 0
	}
	return float64(frames) * float64(timescale) / float64(dur)
}
