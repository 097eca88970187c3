package derive

import (
	"fmt"
	"math"
	"strings"
	"time"

	"rtcview/schema"
)

// AudioReport is the derived view of the microphone input test.
type AudioReport struct {
	DeviceID string
	TestName string
	Samples  []float64
	// Levels is nil when the test recorded no samples.
	Levels   *Summary
	Range    AudioRange
	Duration time.Duration
	Started  time.Time
	Passed   bool
	Errors   []string

	OutputTestPresent bool
	Issues            []schema.Issue
	Gaps              []Gap
}

func (AudioReport) Section() Section { return SectionAudio }

func Audio(doc *schema.Document) AudioReport {
	r := AudioReport{
		Range:             LevelUnknown,
		Issues:            doc.IssuesFor("audioTestResults"),
		OutputTestPresent: present(doc.Results.AudioTestResults.OutputTest),
	}
	in := doc.Results.AudioTestResults.InputTest
	if in == nil {
		r.Gaps = append(r.Gaps, Gap{Metric: "audio levels", Reason: "no input test was recorded"})
		return r
	}
	r.DeviceID = in.DeviceID
	r.TestName = in.TestName
	r.Samples = cloneFloats(in.Values)
	r.Errors = cloneStrings(in.Errors)
	r.Passed = passed(in.Errors)
	r.Duration = millis(in.TestTiming.Duration)
	r.Started = in.TestTiming.StartTime()

	s, err := Summarize(in.Values)
	if err != nil {
		r.Gaps = append(r.Gaps, Gap{Metric: "audio levels", Reason: "no audio levels were recorded"})
		return r
	}
	r.Levels = &s
	r.Range = ClassifyAudioLevel(s.Mean)
	return r
}

// VideoReport is the derived view of the camera test.
type VideoReport struct {
	DeviceID    string
	TestName    string
	Width       int
	Height      int
	Tier        ResolutionTier
	AspectRatio float64
	Passed      bool
	Errors      []string
	Duration    time.Duration
	Started     time.Time
	Ended       time.Time

	// Bars is nil when the document has no quality results.
	Bars   *VideoBars
	Issues []schema.Issue
	Gaps   []Gap
}

func (VideoReport) Section() Section { return SectionVideo }

// VideoBars are the two percentage gauges of the video quality panel.
type VideoBars struct {
	// BitrateFill is the average video bitrate against a 5 Mbps scale.
	BitrateFill float64
	// Stability penalizes jitter and packet loss.
	Stability float64
}

const videoBitrateScale = 5_000_000

func Video(doc *schema.Document) VideoReport {
	v := doc.Results.VideoTestResults
	r := VideoReport{
		DeviceID: v.DeviceID,
		TestName: v.TestName,
		Width:    v.Resolution.Width,
		Height:   v.Resolution.Height,
		Tier:     ClassifyResolution(v.Resolution.Width, v.Resolution.Height),
		Passed:   passed(v.Errors),
		Errors:   cloneStrings(v.Errors),
		Duration: millis(v.TestTiming.Duration),
		Started:  v.TestTiming.StartTime(),
		Ended:    v.TestTiming.EndTime(),
		Issues:   doc.IssuesFor("videoTestResults"),
	}
	if v.Resolution.Height > 0 {
		r.AspectRatio = float64(v.Resolution.Width) / float64(v.Resolution.Height)
	} else {
		r.AspectRatio = math.NaN()
		r.Gaps = append(r.Gaps, Gap{Metric: "aspect ratio", Reason: "resolution height is zero"})
	}

	q := doc.Results.QualityResults
	if q == nil {
		return r
	}
	bars := &VideoBars{Stability: stability(q.Video.Jitter, q.Video.PacketLoss)}
	if bps, ok := ParseBitsPerSecond(q.Video.Bitrate.Avg); ok {
		bars.BitrateFill = clamp(bps/videoBitrateScale*100, 0, 100)
	} else {
		r.Gaps = append(r.Gaps, Gap{Metric: "video bitrate", Reason: fmt.Sprintf("unreadable value %q", q.Video.Bitrate.Avg)})
	}
	r.Bars = bars
	return r
}

// stability maps jitter and packet loss (%) onto 0..100. The jitter weight
// assumes seconds, so jitter reported in ms drives the gauge to zero.
func stability(jitter, lossPct float64) float64 {
	return clamp(100-jitter*2000-lossPct*5, 0, 100)
}

// DeviceReport is the derived view of the browser information section.
type DeviceReport struct {
	Browser     string
	Engine      string
	OS          string
	Device      string
	UserAgent   string
	CPUReported bool
}

func (DeviceReport) Section() Section { return SectionDevice }

func Device(doc *schema.Document) DeviceReport {
	b := doc.Results.BrowserInformation
	return DeviceReport{
		Browser:     label(b.Browser.Name, b.Browser.Version),
		Engine:      label(b.Engine.Name, b.Engine.Version),
		OS:          label(b.OS.Name, b.OS.Version),
		Device:      label(b.Device.Vendor, b.Device.Model),
		UserAgent:   b.UA,
		CPUReported: present(b.CPU),
	}
}

// label joins name and version, falling back to "Unknown" when both are empty.
func label(name, version string) string {
	s := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(version))
	if s == "" {
		return "Unknown"
	}
	return s
}

// present reports whether a free-form field carries anything beyond null or
// an empty object.
func present(raw []byte) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "{}":
		return false
	}
	return true
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
