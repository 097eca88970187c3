package derive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{0.15, 0.22, 0.18, 0.25})
	require.NoError(t, err)
	assert.Equal(t, 0.15, s.Min)
	assert.Equal(t, 0.25, s.Max)
	assert.InDelta(t, 0.2, s.Mean, 1e-9)
	assert.Equal(t, 4, s.Count)
	assert.LessOrEqual(t, s.Min, s.Mean)
	assert.LessOrEqual(t, s.Mean, s.Max)
}

func TestSummarize_SingleValue(t *testing.T) {
	s, err := Summarize([]float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, Summary{Min: 0.5, Max: 0.5, Mean: 0.5, Count: 1}, s)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrNoSamples)

	_, err = Summarize([]float64{})
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestSummarize_DoesNotModifyInput(t *testing.T) {
	in := []float64{3.3, 10.8, 9.1}
	_, err := Summarize(in)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.3, 10.8, 9.1}, in)
}

func TestClassifyAudioLevel(t *testing.T) {
	tests := []struct {
		mean float64
		want AudioRange
	}{
		{0, LevelTooLow},
		{0.1, LevelTooLow},
		{0.1000001, LevelInRange},
		{0.2, LevelInRange},
		{0.5, LevelInRange},
		{0.8999999, LevelInRange},
		{0.9, LevelTooHigh},
		{7.733, LevelTooHigh},
		{math.NaN(), LevelUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyAudioLevel(tt.mean), "mean %v", tt.mean)
	}
}

func TestAudioRangeString(t *testing.T) {
	assert.Equal(t, "in range", LevelInRange.String())
	assert.Equal(t, "too low", LevelTooLow.String())
	assert.Equal(t, "too high", LevelTooHigh.String())
	assert.Equal(t, "unknown", LevelUnknown.String())
	assert.True(t, LevelInRange.InRange())
	assert.False(t, LevelTooHigh.InRange())
}
