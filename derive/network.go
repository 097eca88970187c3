package derive

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"rtcview/schema"
)

// NetworkReport gathers whatever network measurements the document carries.
// Legacy documents fill Bitrate and Preflight; new documents fill Quality.
type NetworkReport struct {
	Bitrate   *BitrateReport
	Preflight *PreflightSummary
	Quality   *QualityReport
	Issues    []schema.Issue
	Gaps      []Gap
}

func (NetworkReport) Section() Section { return SectionNetwork }

type BitrateReport struct {
	TestName    string
	MaxKbps     float64
	AvgKbps     float64
	Quality     BitrateQuality
	Samples     []float64
	SampleStats *Summary
	Duration    time.Duration
	Passed      bool
	Errors      []string
}

type PreflightSummary struct {
	Jitter     schema.StatValue
	RTT        schema.StatValue
	PacketLoss schema.StatValue
	MOS        schema.MOSValue
	Phases     []Phase
	Progress   []Phase
	Duration   time.Duration
	Failed     bool
}

// Phase is a named step of the connection with its duration.
type Phase struct {
	Name     string
	Duration time.Duration
}

// QualityReport holds the graded rows of the new-format quality results.
type QualityReport struct {
	Audio MediaRows
	Video MediaRows
}

type MediaRows struct {
	Jitter     Reading
	PacketLoss Reading
	RTTAvg     Reading
	RTTMax     Reading
	BitrateAvg Reading
	BitrateMax Reading
}

// Rows returns the readings in display order.
func (m MediaRows) Rows() []Reading {
	return []Reading{m.Jitter, m.PacketLoss, m.RTTAvg, m.RTTMax, m.BitrateAvg, m.BitrateMax}
}

// Reading is one graded value. Value is NaN and Status is StatusUnavailable
// when the source text could not be parsed.
type Reading struct {
	Label  string
	Raw    string
	Value  float64
	Unit   Unit
	Status Status
}

func (r Reading) Available() bool { return !math.IsNaN(r.Value) }

func Network(doc *schema.Document) NetworkReport {
	res := &doc.Results
	r := NetworkReport{Issues: append(doc.IssuesFor("bitrateTestResults"), doc.IssuesFor("preflightTestReport")...)}

	if b := res.BitrateTestResults; b != nil {
		br := &BitrateReport{
			TestName: b.TestName,
			MaxKbps:  b.MaxBitrate / 1000,
			AvgKbps:  b.AverageBitrate / 1000,
			Quality:  ClassifyBitrate(b.MaxBitrate, b.AverageBitrate),
			Samples:  cloneFloats(b.Values),
			Duration: millis(b.TestTiming.Duration),
			Passed:   passed(b.Errors),
			Errors:   cloneStrings(b.Errors),
		}
		if s, err := Summarize(b.Values); err == nil {
			br.SampleStats = &s
		} else {
			r.Gaps = append(r.Gaps, Gap{Metric: "bitrate samples", Reason: "no bitrate samples were recorded"})
		}
		r.Bitrate = br
	}

	if p := res.PreflightTestReport; p != nil {
		rep := p.Report
		nt := rep.NetworkTiming
		ps := &PreflightSummary{
			Jitter:     rep.Stats.Jitter,
			RTT:        rep.Stats.RTT,
			PacketLoss: rep.Stats.PacketLoss,
			MOS:        rep.MOS,
			Duration:   millis(rep.TestTiming.Duration),
			Failed:     p.Failed(),
			Phases: []Phase{
				{Name: "Peer connection", Duration: millis(nt.PeerConnection.Duration)},
				{Name: "ICE", Duration: millis(nt.ICE.Duration)},
				{Name: "DTLS", Duration: millis(nt.DTLS.Duration)},
				{Name: "Connect", Duration: millis(nt.Connect.Duration)},
				{Name: "Media", Duration: millis(nt.Media.Duration)},
			},
		}
		for _, ev := range rep.ProgressEvents {
			ps.Progress = append(ps.Progress, Phase{Name: HumanizeEvent(ev.Name), Duration: millis(ev.Duration)})
		}
		r.Preflight = ps
	}

	if q := res.QualityResults; q != nil {
		r.Quality = &QualityReport{
			Audio: mediaRows(q.Audio, MetricAudioBitrate),
			Video: mediaRows(q.Video, MetricVideoBitrate),
		}
		for _, m := range []struct {
			name string
			rows MediaRows
		}{{"audio", r.Quality.Audio}, {"video", r.Quality.Video}} {
			for _, rd := range m.rows.Rows() {
				if !rd.Available() {
					r.Gaps = append(r.Gaps, Gap{
						Metric: m.name + " " + rd.Label,
						Reason: fmt.Sprintf("unreadable value %q", rd.Raw),
					})
				}
			}
		}
	}

	if r.Bitrate == nil {
		r.Gaps = append(r.Gaps, Gap{Metric: "bitrate test", Reason: "no bitrate test results in this document"})
	}
	if r.Preflight == nil {
		r.Gaps = append(r.Gaps, Gap{Metric: "preflight", Reason: "no preflight test report in this document"})
		if r.Quality == nil {
			r.Gaps = append(r.Gaps, Gap{Metric: "quality", Reason: "no quality results in this document"})
		}
	}
	return r
}

func mediaRows(m schema.MediaQuality, bitrate Metric) MediaRows {
	return MediaRows{
		Jitter:     numeric("jitter", m.Jitter, UnitMilliseconds, MetricJitter),
		PacketLoss: numeric("packet loss", m.PacketLoss, UnitNone, MetricPacketLoss),
		RTTAvg:     parsed("RTT avg", m.RTT.Avg, UnitMilliseconds, MetricRTT),
		RTTMax:     parsed("RTT max", m.RTT.Max, UnitMilliseconds, MetricRTT),
		BitrateAvg: parsed("bitrate avg", m.Bitrate.Avg, UnitBitsPerSec, bitrate),
		BitrateMax: parsed("bitrate max", m.Bitrate.Max, UnitBitsPerSec, bitrate),
	}
}

func numeric(label string, v float64, u Unit, m Metric) Reading {
	return Reading{Label: label, Raw: fmt.Sprint(v), Value: v, Unit: u, Status: Classify(m, v)}
}

func parsed(label, raw string, u Unit, m Metric) Reading {
	var v float64
	if u == UnitBitsPerSec {
		v, _ = ParseBitsPerSecond(raw)
	} else {
		v, _ = ParseMilliseconds(raw)
	}
	return Reading{Label: label, Raw: raw, Value: v, Unit: u, Status: Classify(m, v)}
}

// HumanizeEvent turns a camelCase event name such as "mediaAcquired" into
// "media acquired".
func HumanizeEvent(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
