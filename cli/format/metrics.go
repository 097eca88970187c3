package format

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"rtcview/derive"
	"rtcview/schema"
)

// Snapshot holds every derived section of one document. It is built for
// export, where the whole document is rendered at once.
type Snapshot struct {
	Doc          *schema.Document
	Connectivity derive.ConnectivityReport
	Audio        derive.AudioReport
	Video        derive.VideoReport
	Network      derive.NetworkReport
	Device       derive.DeviceReport
	ICE          derive.ICEReport
}

func NewSnapshot(doc *schema.Document) (*Snapshot, error) {
	s := &Snapshot{Doc: doc}
	for _, sec := range derive.Sections {
		rep, err := derive.Derive(doc, sec)
		if err != nil {
			return nil, fmt.Errorf("deriving %s: %w", sec, err)
		}
		switch r := rep.(type) {
		case derive.ConnectivityReport:
			s.Connectivity = r
		case derive.AudioReport:
			s.Audio = r
		case derive.VideoReport:
			s.Video = r
		case derive.NetworkReport:
			s.Network = r
		case derive.DeviceReport:
			s.Device = r
		case derive.ICEReport:
			s.ICE = r
		}
	}
	return s, nil
}

// Gaps returns every section's gaps, prefixed with the section name.
func (s *Snapshot) Gaps() []derive.Gap {
	var out []derive.Gap
	add := func(sec derive.Section, gaps []derive.Gap) {
		for _, g := range gaps {
			out = append(out, derive.Gap{Metric: sec.String() + ": " + g.Metric, Reason: g.Reason})
		}
	}
	add(derive.SectionConnectivity, s.Connectivity.Gaps)
	add(derive.SectionAudio, s.Audio.Gaps)
	add(derive.SectionVideo, s.Video.Gaps)
	add(derive.SectionNetwork, s.Network.Gaps)
	add(derive.SectionICE, s.ICE.Gaps)
	return out
}

// MetricDef defines a single metric for use across all output formats (Markdown, CSV, TUI).
type MetricDef struct {
	Label   string
	Section derive.Section
	// Extractor reports false when the document does not carry the metric.
	Extractor func(*Snapshot) (float64, bool)
	Format    func(float64) string
	// Grade is set for metrics with quality thresholds.
	Grade      *derive.Metric
	DetailOnly bool // true = included only in detailed formats (CSV); false = all formats
}

// Value extracts and formats the metric, returning "n/a" when unavailable.
func (d MetricDef) Value(s *Snapshot) (string, derive.Status, bool) {
	v, ok := d.Extractor(s)
	if !ok {
		return "n/a", derive.StatusUnavailable, false
	}
	st := derive.StatusUnavailable
	if d.Grade != nil {
		st = derive.Classify(*d.Grade, v)
	}
	return d.Format(v), st, true
}

func grade(m derive.Metric) *derive.Metric { return &m }

func ms(v float64) string      { return fmt.Sprintf("%.1f ms", v) }
func pct(v float64) string     { return fmt.Sprintf("%.2f %%", v) }
func plain(v float64) string   { return fmt.Sprintf("%.2f", v) }
func count(v float64) string   { return humanize.Comma(int64(v)) }
func bitrate(v float64) string { return humanize.SIWithDigits(v, 1, "bps") }

func audioLevel(pick func(derive.Summary) float64) func(*Snapshot) (float64, bool) {
	return func(s *Snapshot) (float64, bool) {
		if s.Audio.Levels == nil {
			return 0, false
		}
		return pick(*s.Audio.Levels), true
	}
}

func reading(pick func(*derive.QualityReport) derive.Reading) func(*Snapshot) (float64, bool) {
	return func(s *Snapshot) (float64, bool) {
		if s.Network.Quality == nil {
			return 0, false
		}
		r := pick(s.Network.Quality)
		return r.Value, r.Available()
	}
}

func preflight(pick func(*derive.PreflightSummary) float64) func(*Snapshot) (float64, bool) {
	return func(s *Snapshot) (float64, bool) {
		if s.Network.Preflight == nil {
			return 0, false
		}
		return pick(s.Network.Preflight), true
	}
}

func legacyBitrate(pick func(*derive.BitrateReport) float64) func(*Snapshot) (float64, bool) {
	return func(s *Snapshot) (float64, bool) {
		if s.Network.Bitrate == nil {
			return 0, false
		}
		return pick(s.Network.Bitrate), true
	}
}

// MetricRegistry is the single source of truth for which metrics appear in summary outputs.
// Markdown and TUI use entries where DetailOnly == false.
// CSV includes all entries.
var MetricRegistry = []MetricDef{
	// --- Core metrics (all formats) ---
	{Label: "Healthy Services", Section: derive.SectionConnectivity, Format: count,
		Extractor: func(s *Snapshot) (float64, bool) {
			return float64(s.Connectivity.Counts[derive.Healthy]), len(s.Connectivity.Services) > 0
		}},
	{Label: "Audio Level (mean)", Section: derive.SectionAudio, Format: plain, Extractor: audioLevel(func(l derive.Summary) float64 { return l.Mean })},
	{Label: "Video Width", Section: derive.SectionVideo, Format: count, Extractor: func(s *Snapshot) (float64, bool) { return float64(s.Video.Width), true }},
	{Label: "Video Height", Section: derive.SectionVideo, Format: count, Extractor: func(s *Snapshot) (float64, bool) { return float64(s.Video.Height), true }},
	{Label: "Max Bitrate", Section: derive.SectionNetwork, Format: bitrate, Extractor: legacyBitrate(func(b *derive.BitrateReport) float64 { return b.MaxKbps * 1000 })},
	{Label: "Average Bitrate", Section: derive.SectionNetwork, Format: bitrate, Extractor: legacyBitrate(func(b *derive.BitrateReport) float64 { return b.AvgKbps * 1000 })},
	{Label: "MOS (avg)", Section: derive.SectionNetwork, Format: plain, Extractor: preflight(func(p *derive.PreflightSummary) float64 { return p.MOS.Average })},
	{Label: "RTT (avg)", Section: derive.SectionNetwork, Format: ms, Grade: grade(derive.MetricRTT), Extractor: preflight(func(p *derive.PreflightSummary) float64 { return p.RTT.Average })},
	{Label: "Audio RTT (avg)", Section: derive.SectionNetwork, Format: ms, Grade: grade(derive.MetricRTT), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Audio.RTTAvg })},
	{Label: "Audio Bitrate (avg)", Section: derive.SectionNetwork, Format: bitrate, Grade: grade(derive.MetricAudioBitrate), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Audio.BitrateAvg })},
	{Label: "Audio Jitter", Section: derive.SectionNetwork, Format: ms, Grade: grade(derive.MetricJitter), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Audio.Jitter })},
	{Label: "Audio Packet Loss", Section: derive.SectionNetwork, Format: pct, Grade: grade(derive.MetricPacketLoss), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Audio.PacketLoss })},
	{Label: "Video RTT (avg)", Section: derive.SectionNetwork, Format: ms, Grade: grade(derive.MetricRTT), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Video.RTTAvg })},
	{Label: "Video Bitrate (avg)", Section: derive.SectionNetwork, Format: bitrate, Grade: grade(derive.MetricVideoBitrate), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Video.BitrateAvg })},
	{Label: "Video Jitter", Section: derive.SectionNetwork, Format: ms, Grade: grade(derive.MetricJitter), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Video.Jitter })},
	{Label: "Video Packet Loss", Section: derive.SectionNetwork, Format: pct, Grade: grade(derive.MetricPacketLoss), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Video.PacketLoss })},

	// --- Detail-only metrics (CSV) ---
	{Label: "Audio Level (min)", Section: derive.SectionAudio, Format: plain, Extractor: audioLevel(func(l derive.Summary) float64 { return l.Min }), DetailOnly: true},
	{Label: "Audio Level (max)", Section: derive.SectionAudio, Format: plain, Extractor: audioLevel(func(l derive.Summary) float64 { return l.Max }), DetailOnly: true},
	{Label: "Audio Samples", Section: derive.SectionAudio, Format: count, Extractor: audioLevel(func(l derive.Summary) float64 { return float64(l.Count) }), DetailOnly: true},
	{Label: "Audio Test (s)", Section: derive.SectionAudio, Format: plain, Extractor: func(s *Snapshot) (float64, bool) { return s.Audio.Duration.Seconds(), s.Doc.Results.AudioTestResults.InputTest != nil }, DetailOnly: true},
	{Label: "Video Test (s)", Section: derive.SectionVideo, Format: plain, Extractor: func(s *Snapshot) (float64, bool) { return s.Video.Duration.Seconds(), true }, DetailOnly: true},
	{Label: "Jitter (avg)", Section: derive.SectionNetwork, Format: plain, Extractor: preflight(func(p *derive.PreflightSummary) float64 { return p.Jitter.Average }), DetailOnly: true},
	{Label: "Packet Loss (avg)", Section: derive.SectionNetwork, Format: pct, Extractor: preflight(func(p *derive.PreflightSummary) float64 { return p.PacketLoss.Average }), DetailOnly: true},
	{Label: "MOS (min)", Section: derive.SectionNetwork, Format: plain, Extractor: preflight(func(p *derive.PreflightSummary) float64 { return p.MOS.Min }), DetailOnly: true},
	{Label: "MOS (max)", Section: derive.SectionNetwork, Format: plain, Extractor: preflight(func(p *derive.PreflightSummary) float64 { return p.MOS.Max }), DetailOnly: true},
	{Label: "Audio RTT (max)", Section: derive.SectionNetwork, Format: ms, Grade: grade(derive.MetricRTT), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Audio.RTTMax }), DetailOnly: true},
	{Label: "Audio Bitrate (max)", Section: derive.SectionNetwork, Format: bitrate, Grade: grade(derive.MetricAudioBitrate), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Audio.BitrateMax }), DetailOnly: true},
	{Label: "Video RTT (max)", Section: derive.SectionNetwork, Format: ms, Grade: grade(derive.MetricRTT), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Video.RTTMax }), DetailOnly: true},
	{Label: "Video Bitrate (max)", Section: derive.SectionNetwork, Format: bitrate, Grade: grade(derive.MetricVideoBitrate), Extractor: reading(func(q *derive.QualityReport) derive.Reading { return q.Video.BitrateMax }), DetailOnly: true},
	{Label: "ICE Candidates", Section: derive.SectionICE, Format: count, Extractor: func(s *Snapshot) (float64, bool) {
		return float64(len(s.ICE.Local) + len(s.ICE.Remote)), s.Doc.Results.BitrateTestResults != nil
	}, DetailOnly: true},
}
