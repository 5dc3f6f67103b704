// Package main provides the CLI entry point for zonecam.
package main

import (
	"fmt"
	"os"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "zonecam",
		Usage:   l10n.T("Track screen zones from a camera to drive a game"),
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "track",
				Usage:     l10n.T("Track zones and publish their displacement"),
				ArgsUsage: "[source]",
				Flags:     append(commonFlags(), trackFlags()...),
				Action:    runTrack,
			},
			{
				Name:      "capture",
				Usage:     l10n.T("Show, snapshot and record a capture source"),
				ArgsUsage: "[source]",
				Flags:     commonFlags(),
				Action:    runCapture,
			},
			{
				Name:   "algos",
				Usage:  l10n.T("List the available tracking algorithms"),
				Action: runAlgos,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("zonecam version %s", version))
					return nil
				},
			},
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
		&cli.StringFlag{Name: "backend", Aliases: []string{"b"}, Usage: l10n.T("Capture backend (ffmpeg, opencv)")},
		&cli.StringFlag{Name: "screen", Aliases: []string{"s"}, Usage: l10n.T("Requested frame size, e.g. 640x480")},
		&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frame rate announced for devices (0 = measure)")},
		&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to the ffmpeg executable")},
		&cli.BoolFlag{Name: "mirror", Aliases: []string{"m"}, Usage: l10n.T("Mirror the preview horizontally")},
		&cli.IntFlag{Name: "delay", Usage: l10n.T("Pause between frames in milliseconds")},
		&cli.BoolFlag{Name: "headless", Usage: l10n.T("Run without a preview window")},
		&cli.BoolFlag{Name: "no-overlay", Usage: l10n.T("Do not draw tracking feedback on frames")},
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: l10n.T("Directory for snapshots and recordings")},
		&cli.BoolFlag{Name: "no-snapshots", Usage: l10n.T("Ignore the snapshot key")},
		&cli.StringFlag{Name: "video", Usage: l10n.T("Record to this file from the start")},
		&cli.StringFlag{Name: "fourcc", Usage: l10n.T("Codec tag for recordings (I420, MJPG, XVID, H264...)")},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown session summary to this file")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output")},
	}
}

func trackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "algo", Aliases: []string{"a"}, Usage: l10n.T("Tracking algorithm")},
		&cli.IntFlag{Name: "zones", Aliases: []string{"n"}, Usage: l10n.T("Number of zones (1 to 3)")},
		&cli.IntFlag{Name: "zone-y", Usage: l10n.T("Top of the zones in pixels")},
		&cli.IntFlag{Name: "zone-width", Usage: l10n.T("Zone width in pixels")},
		&cli.IntFlag{Name: "zone-height", Usage: l10n.T("Zone height in pixels")},
		&cli.IntFlag{Name: "ready-after", Usage: l10n.T("Frames before tracking is reported ready")},
	}
}
