package format

import (
	"encoding/csv"
	"strings"
)

// GenerateCSV creates a CSV formatted string with one row per metric.
// Unavailable metrics keep their row with an empty value.
func GenerateCSV(s *Snapshot) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	rows := [][]string{
		{"Section", "Metric", "Value", "Status"},
		{"document", "Source", s.Doc.Source, ""},
		{"document", "Format", string(s.Doc.Variant()), ""},
	}
	// All metrics from shared registry (CSV includes detail-only metrics)
	for _, def := range MetricRegistry {
		val, st, ok := def.Value(s)
		if !ok {
			val = ""
		}
		status := ""
		if def.Grade != nil && ok {
			status = st.String()
		}
		rows = append(rows, []string{def.Section.String(), def.Label, val, status})
	}
	for _, row := range s.Connectivity.Services {
		rows = append(rows, []string{"connectivity", row.Service, string(row.Status), row.Health.String()})
	}
	rows = append(rows,
		[]string{"device", "Browser", s.Device.Browser, ""},
		[]string{"device", "OS", s.Device.OS, ""},
		[]string{"device", "User Agent", s.Device.UserAgent, ""},
	)

	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}
