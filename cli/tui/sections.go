package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"rtcview/cli/format"
	"rtcview/derive"
	"rtcview/schema"
)

var (
	sectionTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginTop(1)
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Width(22)
	goodStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	badStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

const sparkRunes = "▁▂▃▄▅▆▇█"

// renderSection renders one derived report as dashboard text.
func renderSection(rep derive.Report, width int) string {
	switch r := rep.(type) {
	case derive.ConnectivityReport:
		return renderConnectivity(r)
	case derive.AudioReport:
		return renderAudio(r, width)
	case derive.VideoReport:
		return renderVideo(r, width)
	case derive.NetworkReport:
		return renderNetwork(r, width)
	case derive.DeviceReport:
		return renderDevice(r, width)
	case derive.ICEReport:
		return renderICE(r)
	}
	return ""
}

func field(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func title(s string) string {
	return sectionTitleStyle.Render(s) + "\n"
}

func healthStyle(h derive.Health) lipgloss.Style {
	switch h {
	case derive.Healthy:
		return goodStyle
	case derive.Degraded:
		return warnStyle
	}
	return badStyle
}

func statusStyle(st derive.Status) lipgloss.Style {
	switch st {
	case derive.StatusGood:
		return goodStyle
	case derive.StatusWarning:
		return warnStyle
	case derive.StatusCritical:
		return badStyle
	}
	return mutedStyle
}

func passed(ok bool) string {
	if ok {
		return goodStyle.Render("passed")
	}
	return badStyle.Render("failed")
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func timestamp(t time.Time) string {
	if t.UnixMilli() == 0 {
		return mutedStyle.Render("n/a")
	}
	return t.Format("2006-01-02 15:04:05")
}

// bar draws a horizontal gauge for pct in 0..100.
func bar(pct float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(math.Round(pct / 100 * float64(width)))
	filled = max(0, min(width, filled))
	return barStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %.0f%%", pct)
}

// sparkline scales values between the series min and max.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	runes := []rune(sparkRunes)
	var sb strings.Builder
	for _, v := range values {
		idx := len(runes) - 1
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(runes)-1))
		}
		sb.WriteRune(runes[idx])
	}
	return barStyle.Render(sb.String())
}

func notes(issues []schema.Issue, gaps []derive.Gap) string {
	var sb strings.Builder
	if len(issues) > 0 {
		sb.WriteString(title("Data Quality"))
		for _, is := range issues {
			sb.WriteString(warnStyle.Render("  ! ") + is.Field + ": " + is.Message + "\n")
		}
	}
	if len(gaps) > 0 {
		sb.WriteString(title("Not Available"))
		for _, g := range gaps {
			sb.WriteString(mutedStyle.Render("  - "+g.Metric+": "+g.Reason) + "\n")
		}
	}
	return sb.String()
}

func renderConnectivity(r derive.ConnectivityReport) string {
	var sb strings.Builder
	overall := r.Overall()
	sb.WriteString(title("Connectivity"))
	sb.WriteString(field("Overall", healthStyle(overall).Render(overall.String())))
	variant := "legacy"
	if r.NewFormat {
		variant = "new"
	}
	sb.WriteString(field("Result format", variant))
	sb.WriteString(field("Services", fmt.Sprintf("%d healthy, %d degraded, %d unhealthy",
		r.Counts[derive.Healthy], r.Counts[derive.Degraded], r.Counts[derive.Unhealthy])))

	sb.WriteString(title("Services"))
	for _, s := range r.Services {
		st := healthStyle(s.Health)
		status := string(s.Status)
		if !s.Known {
			status += " (unrecognized)"
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", st.Render("●"), labelStyle.Render(s.Service), st.Render(status)))
	}

	if t := r.Timing; t != nil {
		sb.WriteString(title("Connection Timing"))
		sb.WriteString(field("DTLS", t.DTLS.String()))
		sb.WriteString(field("ICE", t.ICE.String()))
		sb.WriteString(field("Connect", t.Connect.String()))
		sb.WriteString(field("Media", t.Media.String()))
	}
	sb.WriteString(notes(r.Issues, r.Gaps))
	return sb.String()
}

func renderAudio(r derive.AudioReport, width int) string {
	var sb strings.Builder
	sb.WriteString(title("Audio Input"))
	sb.WriteString(field("Device", r.DeviceID))
	sb.WriteString(field("Test", r.TestName))
	sb.WriteString(field("Result", passed(r.Passed)))
	sb.WriteString(field("Duration", seconds(r.Duration)))
	sb.WriteString(field("Started", timestamp(r.Started)))
	for _, e := range r.Errors {
		sb.WriteString(field("Error", badStyle.Render(e)))
	}

	if l := r.Levels; l != nil {
		sb.WriteString(title("Levels"))
		sb.WriteString(field("Min / Mean / Max", fmt.Sprintf("%.3f / %.3f / %.3f", l.Min, l.Mean, l.Max)))
		sb.WriteString(field("Samples", humanize.Comma(int64(l.Count))))
		st := goodStyle
		if !r.Range.InRange() {
			st = warnStyle
		}
		sb.WriteString(field("Range (0.1 - 0.9)", st.Render(r.Range.String())))
		sb.WriteString("  " + sparkline(r.Samples, width-4) + "\n")
	}
	sb.WriteString(notes(r.Issues, r.Gaps))
	return sb.String()
}

func renderVideo(r derive.VideoReport, width int) string {
	var sb strings.Builder
	sb.WriteString(title("Video"))
	sb.WriteString(field("Device", r.DeviceID))
	sb.WriteString(field("Test", r.TestName))
	sb.WriteString(field("Result", passed(r.Passed)))
	sb.WriteString(field("Resolution", fmt.Sprintf("%dx%d", r.Width, r.Height)))
	sb.WriteString(field("Quality", r.Tier.String()))
	if !math.IsNaN(r.AspectRatio) {
		sb.WriteString(field("Aspect ratio", fmt.Sprintf("%.2f:1", r.AspectRatio)))
	}
	sb.WriteString(field("Duration", seconds(r.Duration)))
	sb.WriteString(field("Started", timestamp(r.Started)))
	sb.WriteString(field("Ended", timestamp(r.Ended)))
	for _, e := range r.Errors {
		sb.WriteString(field("Error", badStyle.Render(e)))
	}

	if b := r.Bars; b != nil {
		gauge := max(10, min(40, width-34))
		sb.WriteString(title("Video Quality"))
		sb.WriteString(field("Bitrate (of 5 Mbps)", bar(b.BitrateFill, gauge)))
		sb.WriteString(field("Network stability", bar(b.Stability, gauge)))
	}
	sb.WriteString(notes(r.Issues, r.Gaps))
	return sb.String()
}

func renderNetwork(r derive.NetworkReport, width int) string {
	var sb strings.Builder

	if b := r.Bitrate; b != nil {
		sb.WriteString(title("Bitrate Test"))
		sb.WriteString(field("Result", passed(b.Passed)))
		sb.WriteString(field("Max", fmt.Sprintf("%.1f kbps %s", b.MaxKbps, goodLow(b.Quality.MaxGood))))
		sb.WriteString(field("Average", fmt.Sprintf("%.1f kbps %s", b.AvgKbps, goodLow(b.Quality.AverageGood))))
		sb.WriteString(field("Duration", seconds(b.Duration)))
		if len(b.Samples) > 0 {
			sb.WriteString("  " + sparkline(b.Samples, width-4) + "\n")
		}
	}

	if p := r.Preflight; p != nil {
		sb.WriteString(title("Preflight"))
		sb.WriteString(field("Result", passed(!p.Failed)))
		sb.WriteString(field("Duration", seconds(p.Duration)))
		sb.WriteString(field("", mutedStyle.Render("min / avg / max")))
		sb.WriteString(field("Jitter", triple(p.Jitter.Min, p.Jitter.Average, p.Jitter.Max)))
		sb.WriteString(field("RTT (ms)", triple(p.RTT.Min, p.RTT.Average, p.RTT.Max)))
		sb.WriteString(field("Packet loss (%)", triple(p.PacketLoss.Min, p.PacketLoss.Average, p.PacketLoss.Max)))
		sb.WriteString(field("MOS", triple(p.MOS.Min, p.MOS.Average, p.MOS.Max)))

		sb.WriteString(title("Network Phases"))
		for _, ph := range p.Phases {
			sb.WriteString(field(ph.Name, ph.Duration.String()))
		}
		if len(p.Progress) > 0 {
			sb.WriteString(title("Progress Events"))
			for _, ev := range p.Progress {
				sb.WriteString(field(ev.Name, ev.Duration.String()))
			}
		}
	}

	if q := r.Quality; q != nil {
		sb.WriteString(title("Audio Quality"))
		sb.WriteString(qualityRows(q.Audio))
		sb.WriteString(title("Video Quality"))
		sb.WriteString(qualityRows(q.Video))
	}

	sb.WriteString(notes(r.Issues, r.Gaps))
	return sb.String()
}

func triple(lo, avg, hi float64) string {
	return fmt.Sprintf("%.3f / %.3f / %.3f", lo, avg, hi)
}

func goodLow(ok bool) string {
	if ok {
		return goodStyle.Render("(good)")
	}
	return warnStyle.Render("(low)")
}

func qualityRows(m derive.MediaRows) string {
	var sb strings.Builder
	for _, rd := range m.Rows() {
		st := statusStyle(rd.Status)
		val := mutedStyle.Render("n/a")
		if rd.Available() {
			val = readingValue(rd)
		}
		sb.WriteString(field(rd.Label, fmt.Sprintf("%-12s %s", val, st.Render(format.StatusMark(rd.Status)+" "+rd.Status.String()))))
	}
	return sb.String()
}

func readingValue(rd derive.Reading) string {
	switch rd.Unit {
	case derive.UnitBitsPerSec:
		return humanize.SIWithDigits(rd.Value, 1, "bps")
	case derive.UnitMilliseconds:
		return fmt.Sprintf("%g ms", rd.Value)
	}
	return fmt.Sprintf("%g %%", rd.Value)
}

func renderDevice(r derive.DeviceReport, width int) string {
	var sb strings.Builder
	sb.WriteString(title("Device"))
	sb.WriteString(field("Browser", r.Browser))
	sb.WriteString(field("Engine", r.Engine))
	sb.WriteString(field("Operating system", r.OS))
	sb.WriteString(field("Device", r.Device))
	sb.WriteString(title("User Agent"))
	sb.WriteString(lipgloss.NewStyle().Width(max(20, width-4)).MarginLeft(2).Render(r.UserAgent) + "\n")
	return sb.String()
}

func renderICE(r derive.ICEReport) string {
	var sb strings.Builder
	if p := r.Selected; p != nil {
		sb.WriteString(title("Selected Pair"))
		if p.Local != nil {
			sb.WriteString(field("Local", candidateLine(*p.Local)))
		}
		if p.Remote != nil {
			sb.WriteString(field("Remote", candidateLine(*p.Remote)))
		}
	}
	if len(r.Local) > 0 {
		sb.WriteString(title(fmt.Sprintf("Local Candidates (%d)", len(r.Local))))
		sb.WriteString(candidateTable(r.Local))
	}
	if len(r.Remote) > 0 {
		sb.WriteString(title(fmt.Sprintf("Remote Candidates (%d)", len(r.Remote))))
		sb.WriteString(candidateTable(r.Remote))
	}
	sb.WriteString(notes(r.Issues, r.Gaps))
	return sb.String()
}

func candidateLine(c derive.Candidate) string {
	return fmt.Sprintf("%s:%d %s/%s", c.Address, c.Port, c.CandidateType, c.Protocol)
}

func candidateTable(cs []derive.Candidate) string {
	var sb strings.Builder
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %-2s %-22s %-6s %-6s %-5s %12s", "", "Address", "Port", "Type", "Proto", "Priority")) + "\n")
	for _, c := range cs {
		mark := "  "
		if c.Selected {
			mark = goodStyle.Render("✓ ")
		}
		sb.WriteString(fmt.Sprintf("  %s %-22s %-6d %-6s %-5s %12d\n", mark, c.Address, c.Port, c.CandidateType, c.Protocol, c.Priority))
	}
	return sb.String()
}
