package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) { f.translate = t }
}

// WithVersion adds the program version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) { f.version = v }
}

// NewMarkdownFormatter creates a Markdown formatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Session Summary"))
	fmt.Fprintf(&b, "- %s: `%s`\n", t("Session"), s.SessionID)
	fmt.Fprintf(&b, "- %s: %s\n\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## %s\n\n", t("Source"))
	b.WriteString("| | |\n|---|---|\n")
	row(&b, t("Source"), s.Source.Source)
	row(&b, t("Backend"), s.Source.Backend)
	row(&b, t("Frame Size"), fmt.Sprintf("%dx%d", s.Source.Width, s.Source.Height))
	announced := t("Unknown")
	if s.Source.AnnouncedFPS > 0 {
		announced = fmt.Sprintf("%.2f fps", s.Source.AnnouncedFPS)
	}
	row(&b, t("Announced FPS"), announced)
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Timing"))
	b.WriteString("| | |\n|---|---|\n")
	row(&b, t("Frames"), fmt.Sprintf("%d", s.Timing.Frames))
	row(&b, t("Duration"), fmt.Sprintf("%d ms", s.Timing.DurationMs))
	if s.FPS.Samples > 0 {
		row(&b, t("Measured FPS"), fmt.Sprintf("%.1f (%.1f - %.1f)", s.FPS.Mean, s.FPS.Min, s.FPS.Max))
		row(&b, t("Std Dev"), fmt.Sprintf("%.2f", s.FPS.StdDev))
		stable := t("No")
		if s.FPS.Stable {
			stable = t("Yes")
		}
		row(&b, t("Stable"), stable)
	} else {
		row(&b, t("Measured FPS"), "N/A")
	}
	b.WriteString("\n")

	if s.Tracking.Algorithm != "" {
		fmt.Fprintf(&b, "## %s\n\n", t("Tracking"))
		fmt.Fprintf(&b, "- %s: %s\n", t("Algorithm"), s.Tracking.Algorithm)
		ready := t("No")
		if s.Tracking.Ready {
			ready = t("Yes")
		}
		fmt.Fprintf(&b, "- %s: %s\n\n", t("Ready"), ready)
		if len(s.Tracking.Zones) > 0 {
			fmt.Fprintf(&b, "| # | %s | %s | %s | %s |\n", t("Initial"), t("Final"), t("Delta"), t("State"))
			b.WriteString("|---|---|---|---|---|\n")
			for _, z := range s.Tracking.Zones {
				fmt.Fprintf(&b, "| %d | %s | %s | %+d, %+d | %s |\n",
					z.Index, z.Initial, z.Final, z.DeltaX, z.DeltaY, t(zoneState(z)))
			}
			b.WriteString("\n")
		}
	}

	if len(s.Outputs.Snapshots)+len(s.Outputs.Videos) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Outputs"))
		for _, p := range s.Outputs.Snapshots {
			fmt.Fprintf(&b, "- %s: `%s`\n", t("Snapshot"), p)
		}
		for _, p := range s.Outputs.Videos {
			fmt.Fprintf(&b, "- %s: `%s`\n", t("Video"), p)
		}
		b.WriteString("\n")
	}

	if f.version != "" {
		fmt.Fprintf(&b, "---\nzonecam %s\n", f.version)
	}
	return b.String()
}

func zoneState(z ZoneInfo) string {
	switch {
	case !z.Tracked:
		return "Untracked"
	case z.Lost:
		return "Lost"
	default:
		return "Tracked"
	}
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", label, value)
}
