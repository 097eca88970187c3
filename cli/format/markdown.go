package format

import (
	"fmt"
	"strings"
	"time"

	"rtcview/derive"
)

// GenerateMarkdown creates a Markdown summary of one test-results document.
func GenerateMarkdown(s *Snapshot, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# WebRTC Preflight Test Report\n")
	sb.WriteString(fmt.Sprintf("Generated on: %s\n\n", now.Format(time.RFC1123)))
	sb.WriteString(fmt.Sprintf("- **Source:** %s\n", s.Doc.Source))
	sb.WriteString(fmt.Sprintf("- **Format:** %s\n", s.Doc.Variant()))
	sb.WriteString(fmt.Sprintf("- **Overall:** %s\n\n", s.Connectivity.Overall()))

	// Connectivity
	sb.WriteString("## Connectivity\n\n")
	sb.WriteString("| Service | Status | Health |\n|---|---|---|\n")
	for _, row := range s.Connectivity.Services {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", row.Service, row.Status, row.Health))
	}
	sb.WriteString("\n")

	// Summary metrics
	sb.WriteString("## Metrics\n\n")
	sb.WriteString("| Metric | Value | Status |\n|---|---|---|\n")
	for _, def := range MetricRegistry {
		if def.DetailOnly {
			continue
		}
		val, st, ok := def.Value(s)
		status := ""
		switch {
		case !ok:
			status = StatusMark(st)
		case def.Grade != nil:
			status = StatusMark(st) + " " + st.String()
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", def.Label, val, status))
	}
	sb.WriteString("\n")

	// Tests
	sb.WriteString("## Tests\n\n")
	sb.WriteString(fmt.Sprintf("- **Audio input:** %s, level %s\n", passFail(s.Audio.Passed), s.Audio.Range))
	sb.WriteString(fmt.Sprintf("- **Video:** %s, %dx%d (%s)\n", passFail(s.Video.Passed), s.Video.Width, s.Video.Height, s.Video.Tier))
	if b := s.Network.Bitrate; b != nil {
		sb.WriteString(fmt.Sprintf("- **Bitrate:** %s, average %s, max %s\n",
			passFail(b.Passed), goodLow(b.Quality.AverageGood), goodLow(b.Quality.MaxGood)))
	}
	if p := s.Network.Preflight; p != nil {
		sb.WriteString(fmt.Sprintf("- **Preflight:** %s in %.1fs\n", passFail(!p.Failed), p.Duration.Seconds()))
	}
	sb.WriteString("\n")

	// Device
	sb.WriteString("## Device\n\n")
	sb.WriteString(fmt.Sprintf("- Browser: %s\n- Engine: %s\n- OS: %s\n- Device: %s\n\n",
		s.Device.Browser, s.Device.Engine, s.Device.OS, s.Device.Device))

	if len(s.Doc.Issues) > 0 {
		sb.WriteString("## Data Quality\n\n")
		for _, is := range s.Doc.Issues {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", is.Field, is.Message))
		}
		sb.WriteString("\n")
	}
	if gaps := s.Gaps(); len(gaps) > 0 {
		sb.WriteString("## Not Available\n\n")
		for _, g := range gaps {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", g.Metric, g.Reason))
		}
	}

	return sb.String()
}

func passFail(ok bool) string {
	if ok {
		return "passed"
	}
	return "failed"
}

func goodLow(ok bool) string {
	if ok {
		return "good"
	}
	return "low"
}

// StatusMark is the one-character form of a status.
func StatusMark(st derive.Status) string {
	switch st {
	case derive.StatusGood:
		return "✓"
	case derive.StatusWarning:
		return "!"
	case derive.StatusCritical:
		return "✗"
	}
	return "-"
}
