package format

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtcview/cli/loader"
	"rtcview/derive"
	"rtcview/schema"
)

var fixedNow = time.Date(2025, 2, 26, 14, 30, 0, 0, time.UTC)

func sampleSnapshot(t *testing.T, name string) *Snapshot {
	t.Helper()
	doc, err := loader.LoadSample(name)
	require.NoError(t, err)
	snap, err := NewSnapshot(doc)
	require.NoError(t, err)
	return snap
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "test-results-2025-02-26.json", FileName(KindJSON, fixedNow))
	assert.Equal(t, "test-results-2025-02-26.md", FileName(KindMarkdown, fixedNow))
	assert.Equal(t, "test-results-2025-02-26.csv", FileName(KindCSV, fixedNow))
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"json": KindJSON, "JSON": KindJSON, "markdown": KindMarkdown, "md": KindMarkdown, "csv": KindCSV} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("xml")
	assert.Error(t, err)
}

func TestExportJSON_PreservesInput(t *testing.T) {
	doc, err := loader.Parse([]byte(`{"videoTestResults":{"resolution":{"width":1,"height":1}},"extra":{"kept":true},"audioTestResults":{"inputTest":{"values":[0.5]}},"browserInformation":{"ua":"x"},"connectivityResults":{"signalConnection":"operational"},"qualityResults":{"audio":{},"video":{}}}`), "inline")
	require.NoError(t, err)

	out, err := ExportJSON(doc)
	require.NoError(t, err)
	text := string(out)
	assert.True(t, strings.HasPrefix(text, "{\n  \"videoTestResults\": {\n    \"resolution\""), text)
	assert.Contains(t, text, "\"extra\": {\n    \"kept\": true\n  }")

	// Round trip: the export imports again as the same variant.
	again, err := loader.Parse(out, "export")
	require.NoError(t, err)
	assert.Equal(t, doc.Variant(), again.Variant())
	assert.Equal(t, doc.Results, again.Results)
}

func TestSave(t *testing.T) {
	doc, err := loader.LoadSample("new")
	require.NoError(t, err)
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := Save(dir, doc, KindJSON, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "test-results-2025-02-26.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	again, err := loader.Parse(data, path)
	require.NoError(t, err)
	assert.Equal(t, schema.VariantNew, again.Variant())
}

func TestGenerateMarkdown_New(t *testing.T) {
	md := GenerateMarkdown(sampleSnapshot(t, "new"), fixedNow)

	assert.True(t, strings.HasPrefix(md, "# WebRTC Preflight Test Report\n"))
	assert.Contains(t, md, "Generated on: Wed, 26 Feb 2025 14:30:00 UTC")
	assert.Contains(t, md, "- **Format:** new")
	assert.Contains(t, md, "| signalConnection | operational | healthy |")
	assert.Contains(t, md, "| Audio Bitrate (avg) | 24 kbps | ! warning |")
	assert.Contains(t, md, "| Video Bitrate (avg) | 1.2 Mbps | ✓ good |")
	assert.Contains(t, md, "level in range")
	assert.Contains(t, md, "1280x720 (HD)")
	assert.Contains(t, md, "| MOS (avg) | n/a | - |", "legacy-only metrics are marked, not dropped")
	assert.Contains(t, md, "| RTT (avg) | n/a | - |")
	assert.Contains(t, md, "## Not Available")
	assert.Contains(t, md, "- network: bitrate test: no bitrate test results in this document")
	assert.Contains(t, md, "- network: preflight: no preflight test report in this document")
	assert.Contains(t, md, "ice: ICE candidates")
}

func TestGenerateMarkdown_Legacy(t *testing.T) {
	md := GenerateMarkdown(sampleSnapshot(t, "legacy"), fixedNow)

	assert.Contains(t, md, "- **Format:** legacy")
	assert.Contains(t, md, "| signalingRegion | Reachable | healthy |")
	assert.Contains(t, md, "| MOS (avg) | 4.40 |  |")
	assert.Contains(t, md, "| RTT (avg) | 66.5 ms | ✓ good |")
	assert.Contains(t, md, "- **Bitrate:** passed, average low, max low")
	assert.Contains(t, md, "level too high")
	assert.Contains(t, md, "- Device: Apple Macintosh")
	assert.Contains(t, md, "| Audio RTT (avg) | n/a | - |")
	assert.NotContains(t, md, "network: bitrate test")
}

func TestGenerateCSV(t *testing.T) {
	out, err := GenerateCSV(sampleSnapshot(t, "new"))
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Section", "Metric", "Value", "Status"}, records[0])

	byMetric := map[string][]string{}
	for _, r := range records[1:] {
		require.Len(t, r, 4)
		byMetric[r[1]] = r
	}
	assert.Equal(t, []string{"network", "Audio RTT (avg)", "45.0 ms", "good"}, byMetric["Audio RTT (avg)"])
	assert.Equal(t, []string{"network", "MOS (avg)", "", ""}, byMetric["MOS (avg)"], "unavailable metrics keep their row")
	assert.Equal(t, []string{"audio", "Audio Samples", "4", ""}, byMetric["Audio Samples"])
	assert.Equal(t, []string{"connectivity", "publishVideo", "operational", "healthy"}, byMetric["publishVideo"])
	assert.Contains(t, byMetric["User Agent"][2], "Chrome/89", "fields with commas survive quoting")

	// Every registry entry has a row.
	for _, def := range MetricRegistry {
		assert.Contains(t, byMetric, def.Label)
	}
}

func TestMetricRegistry_Value(t *testing.T) {
	snap := sampleSnapshot(t, "new")
	for _, def := range MetricRegistry {
		if def.Label != "Video Packet Loss" {
			continue
		}
		val, st, ok := def.Value(snap)
		assert.True(t, ok)
		assert.Equal(t, "0.80 %", val)
		assert.Equal(t, derive.StatusGood, st)
	}
}

func TestRender(t *testing.T) {
	doc, err := loader.LoadSample("legacy")
	require.NoError(t, err)
	for _, k := range Kinds {
		out, err := Render(doc, k, fixedNow)
		require.NoError(t, err, k)
		assert.NotEmpty(t, out, k)
	}
	_, err = Render(doc, Kind("xml"), fixedNow)
	assert.Error(t, err)
}

func TestStatusMark(t *testing.T) {
	assert.Equal(t, "✓", StatusMark(derive.StatusGood))
	assert.Equal(t, "!", StatusMark(derive.StatusWarning))
	assert.Equal(t, "✗", StatusMark(derive.StatusCritical))
	assert.Equal(t, "-", StatusMark(derive.StatusUnavailable))
}
