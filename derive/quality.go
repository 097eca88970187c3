package derive

import "math"

// Good bitrate floors for the legacy bitrate test, in bits per second.
const (
	GoodAverageBitrate = 500_000
	GoodMaxBitrate     = 1_000_000
)

// BitrateQuality reports whether the legacy bitrate test met its floors.
type BitrateQuality struct {
	AverageGood bool
	MaxGood     bool
}

func ClassifyBitrate(maxBps, avgBps float64) BitrateQuality {
	return BitrateQuality{
		AverageGood: avgBps >= GoodAverageBitrate,
		MaxGood:     maxBps >= GoodMaxBitrate,
	}
}

// Status is the three-level verdict for a quality metric. StatusUnavailable
// means the value could not be read.
type Status int

const (
	StatusUnavailable Status = iota
	StatusGood
	StatusWarning
	StatusCritical
)

func (s Status) String() string {
	switch s {
	case StatusGood:
		return "good"
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	}
	return "n/a"
}

// Metric names a value that has quality thresholds.
type Metric int

const (
	MetricJitter Metric = iota
	MetricPacketLoss
	MetricRTT
	MetricAudioBitrate
	MetricVideoBitrate
)

func (m Metric) String() string {
	switch m {
	case MetricJitter:
		return "jitter"
	case MetricPacketLoss:
		return "packet loss"
	case MetricRTT:
		return "rtt"
	case MetricAudioBitrate:
		return "audio bitrate"
	case MetricVideoBitrate:
		return "video bitrate"
	}
	return "unknown"
}

// Threshold is a pair of limits. A value past Warning is a warning and past
// Critical is critical; the direction depends on which table holds it.
type Threshold struct {
	Warning  float64
	Critical float64
}

// Lower is better: jitter in ms, packet loss in percent, RTT in ms.
var lowerIsBetter = map[Metric]Threshold{
	MetricJitter:     {Warning: 30, Critical: 50},
	MetricPacketLoss: {Warning: 1, Critical: 5},
	MetricRTT:        {Warning: 200, Critical: 300},
}

// Higher is better: bitrates in bits per second.
var higherIsBetter = map[Metric]Threshold{
	MetricAudioBitrate: {Warning: 30_000, Critical: 20_000},
	MetricVideoBitrate: {Warning: 500_000, Critical: 250_000},
}

// ThresholdFor returns the limits for m, whether higher values are better,
// and whether m has thresholds at all.
func ThresholdFor(m Metric) (Threshold, bool, bool) {
	if t, ok := lowerIsBetter[m]; ok {
		return t, false, true
	}
	if t, ok := higherIsBetter[m]; ok {
		return t, true, true
	}
	return Threshold{}, false, false
}

// Classify grades v against the thresholds of m. A value equal to a limit
// has not crossed it.
func Classify(m Metric, v float64) Status {
	if math.IsNaN(v) {
		return StatusUnavailable
	}
	if t, ok := lowerIsBetter[m]; ok {
		switch {
		case v > t.Critical:
			return StatusCritical
		case v > t.Warning:
			return StatusWarning
		}
		return StatusGood
	}
	if t, ok := higherIsBetter[m]; ok {
		switch {
		case v < t.Critical:
			return StatusCritical
		case v < t.Warning:
			return StatusWarning
		}
		return StatusGood
	}
	return StatusUnavailable
}

// ResolutionTier is the quality class of a capture resolution.
type ResolutionTier int

const (
	TierSD ResolutionTier = iota
	TierHD
	TierFullHD
)

func (t ResolutionTier) String() string {
	switch t {
	case TierFullHD:
		return "Full HD"
	case TierHD:
		return "HD"
	}
	return "SD"
}

// ClassifyResolution requires both width and height to reach a tier.
func ClassifyResolution(width, height int) ResolutionTier {
	switch {
	case width >= 1920 && height >= 1080:
		return TierFullHD
	case width >= 1280 && height >= 720:
		return TierHD
	}
	return TierSD
}
