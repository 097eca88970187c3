// Package derive computes display statistics from an accepted test-results
// document. Every function is a pure function of its inputs.
package derive

import (
	"errors"
	"math"
)

// ErrNoSamples is returned when a summary is requested over an empty series.
var ErrNoSamples = errors.New("no samples")

// Summary is the min, max and arithmetic mean of a sample series.
type Summary struct {
	Min   float64
	Max   float64
	Mean  float64
	Count int
}

// Summarize returns the summary of values, or ErrNoSamples when empty.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoSamples
	}
	s := Summary{Min: values[0], Max: values[0], Count: len(values)}
	var sum float64
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(len(values))
	return s, nil
}

// AudioRange classifies the mean input level of the microphone test.
type AudioRange int

const (
	LevelUnknown AudioRange = iota
	LevelTooLow
	LevelInRange
	LevelTooHigh
)

// Both bounds are exclusive: a mean of exactly 0.1 or 0.9 is out of range.
const (
	audioLevelLow  = 0.1
	audioLevelHigh = 0.9
)

func ClassifyAudioLevel(mean float64) AudioRange {
	switch {
	case math.IsNaN(mean):
		return LevelUnknown
	case mean <= audioLevelLow:
		return LevelTooLow
	case mean >= audioLevelHigh:
		return LevelTooHigh
	}
	return LevelInRange
}

func (r AudioRange) InRange() bool { return r == LevelInRange }

func (r AudioRange) String() string {
	switch r {
	case LevelTooLow:
		return "too low"
	case LevelInRange:
		return "in range"
	case LevelTooHigh:
		return "too high"
	}
	return "unknown"
}
