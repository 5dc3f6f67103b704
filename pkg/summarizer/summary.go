// Package summarizer provides summary generation for capture sessions.
package summarizer

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/zonecam/pkg/fps"
	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/zones"
)

// Summary contains all data collected during a capture session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	SessionID   string

	// Capture source
	Source SourceInfo

	// Tracking results
	Tracking TrackingInfo

	// Timing results
	Timing TimingInfo

	// Measured frame rate
	FPS fps.Stats

	// Files written during the session
	Outputs OutputInfo
}

// SourceInfo describes where frames came from.
type SourceInfo struct {
	Source       string
	Backend      string
	Width        int
	Height       int
	AnnouncedFPS float64
}

// TrackingInfo contains the zone tracking results.
type TrackingInfo struct {
	Algorithm string
	Ready     bool
	Zones     []ZoneInfo
}

// ZoneInfo is the final state of one zone.
type ZoneInfo struct {
	Index   int
	Initial pipeline.BBox
	Final   pipeline.BBox
	DeltaX  int
	DeltaY  int
	Tracked bool
	Lost    bool
}

// TimingInfo contains timing measurements.
type TimingInfo struct {
	StartedAt  time.Time
	DurationMs int
	Frames     int
}

// OutputInfo lists snapshot and video files.
type OutputInfo struct {
	Snapshots []string
	Videos    []string
}

// NewSummary creates a new Summary with the current timestamp and a fresh session id.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
		SessionID:   uuid.NewString(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSessionID replaces the generated session id.
func (b *Builder) WithSessionID(id string) *Builder {
	b.summary.SessionID = id
	return b
}

// WithSource sets source information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithTracking sets the algorithm and the zone results from the last snapshot.
func (b *Builder) WithTracking(algorithm string, ready bool, snap *zones.Snapshot) *Builder {
	info := TrackingInfo{Algorithm: algorithm, Ready: ready}
	if snap != nil {
		for _, z := range snap.Zones {
			info.Zones = append(info.Zones, ZoneInfo{
				Index:   z.Index,
				Initial: z.Initial,
				Final:   z.Current,
				DeltaX:  z.DeltaX(),
				DeltaY:  z.DeltaY(),
				Tracked: z.Tracked,
				Lost:    z.Lost,
			})
		}
	}
	b.summary.Tracking = info
	return b
}

// WithTiming sets timing information.
func (b *Builder) WithTiming(started, ended time.Time, frames int) *Builder {
	b.summary.Timing = TimingInfo{
		StartedAt:  started,
		DurationMs: int(ended.Sub(started).Milliseconds()),
		Frames:     frames,
	}
	return b
}

// WithFPS sets the frame rate statistics.
func (b *Builder) WithFPS(stats fps.Stats) *Builder {
	b.summary.FPS = stats
	return b
}

// WithOutputs sets the written files.
func (b *Builder) WithOutputs(snapshots, videos []string) *Builder {
	b.summary.Outputs = OutputInfo{Snapshots: snapshots, Videos: videos}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
