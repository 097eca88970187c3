package derive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBitrate(t *testing.T) {
	assert.Equal(t, BitrateQuality{AverageGood: true, MaxGood: true}, ClassifyBitrate(1_000_000, 500_000))
	assert.Equal(t, BitrateQuality{}, ClassifyBitrate(999_999, 499_999))
	assert.Equal(t, BitrateQuality{MaxGood: true}, ClassifyBitrate(2_500_000, 32_330))

	// Average threshold on its own, max held below its threshold.
	assert.False(t, ClassifyBitrate(0, 499999).AverageGood)
	assert.True(t, ClassifyBitrate(0, 500000).AverageGood)
	assert.False(t, ClassifyBitrate(0, 500000).MaxGood)
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		metric Metric
		v      float64
		want   Status
	}{
		{MetricJitter, 12, StatusGood},
		{MetricJitter, 30, StatusGood},
		{MetricJitter, 30.01, StatusWarning},
		{MetricJitter, 50, StatusWarning},
		{MetricJitter, 51, StatusCritical},
		{MetricPacketLoss, 0.5, StatusGood},
		{MetricPacketLoss, 1, StatusGood},
		{MetricPacketLoss, 2, StatusWarning},
		{MetricPacketLoss, 5.5, StatusCritical},
		{MetricRTT, 45, StatusGood},
		{MetricRTT, 250, StatusWarning},
		{MetricRTT, 300, StatusWarning},
		{MetricRTT, 301, StatusCritical},
		{MetricAudioBitrate, 30_000, StatusGood},
		{MetricAudioBitrate, 24_000, StatusWarning},
		{MetricAudioBitrate, 20_000, StatusWarning},
		{MetricAudioBitrate, 19_999, StatusCritical},
		{MetricVideoBitrate, 1_200_000, StatusGood},
		{MetricVideoBitrate, 400_000, StatusWarning},
		{MetricVideoBitrate, 100_000, StatusCritical},
		{MetricRTT, math.NaN(), StatusUnavailable},
		{Metric(99), 1, StatusUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.metric, tt.v), "%s = %v", tt.metric, tt.v)
	}
}

// Grading never improves as a lower-is-better value grows, or as a
// higher-is-better value shrinks.
func TestClassify_Monotonic(t *testing.T) {
	for _, m := range []Metric{MetricJitter, MetricPacketLoss, MetricRTT, MetricAudioBitrate, MetricVideoBitrate} {
		_, higher, ok := ThresholdFor(m)
		assert.True(t, ok, m.String())

		prev := StatusGood
		for i := 0; i <= 2000; i++ {
			v := float64(i)
			if higher {
				v = float64(2000-i) * 1000
			}
			got := Classify(m, v)
			assert.GreaterOrEqual(t, int(got), int(prev), "%s at %v", m, v)
			prev = got
		}
		assert.Equal(t, StatusCritical, prev, m.String())
	}
}

func TestThresholdFor(t *testing.T) {
	th, higher, ok := ThresholdFor(MetricRTT)
	assert.True(t, ok)
	assert.False(t, higher)
	assert.Equal(t, Threshold{Warning: 200, Critical: 300}, th)

	th, higher, ok = ThresholdFor(MetricVideoBitrate)
	assert.True(t, ok)
	assert.True(t, higher)
	assert.Equal(t, Threshold{Warning: 500_000, Critical: 250_000}, th)

	_, _, ok = ThresholdFor(Metric(42))
	assert.False(t, ok)
}

func TestClassifyResolution(t *testing.T) {
	tests := []struct {
		w, h int
		want ResolutionTier
	}{
		{640, 480, TierSD},
		{1280, 720, TierHD},
		{1280, 719, TierSD},
		{1279, 1080, TierSD},
		{1920, 1080, TierFullHD},
		{1920, 1079, TierHD},
		{3840, 2160, TierFullHD},
		{0, 0, TierSD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyResolution(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
	assert.Equal(t, "Full HD", TierFullHD.String())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "good", StatusGood.String())
	assert.Equal(t, "warning", StatusWarning.String())
	assert.Equal(t, "critical", StatusCritical.String())
	assert.Equal(t, "n/a", StatusUnavailable.String())
}
