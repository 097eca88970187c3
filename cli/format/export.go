package format

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"rtcview/schema"
)

// Kind is an export output format.
type Kind string

const (
	KindJSON     Kind = "json"
	KindMarkdown Kind = "markdown"
	KindCSV      Kind = "csv"
)

// Kinds lists the accepted --format values.
var Kinds = []Kind{KindJSON, KindMarkdown, KindCSV}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindJSON, KindMarkdown, KindCSV:
		return k, nil
	case "md":
		return KindMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, markdown or csv)", s)
}

func (k Kind) Ext() string {
	switch k {
	case KindMarkdown:
		return ".md"
	case KindCSV:
		return ".csv"
	}
	return ".json"
}

// FileName is the default export name for a document saved on day now,
// e.g. test-results-2025-02-26.json.
func FileName(k Kind, now time.Time) string {
	return "test-results-" + now.Format("2006-01-02") + k.Ext()
}

// ExportJSON returns the document as imported, re-indented with two spaces.
// Keys keep their original order and unknown fields are preserved.
func ExportJSON(doc *schema.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc.Raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the export bytes of doc in the given format.
func Render(doc *schema.Document, k Kind, now time.Time) ([]byte, error) {
	if k == KindJSON {
		return ExportJSON(doc)
	}
	snap, err := NewSnapshot(doc)
	if err != nil {
		return nil, err
	}
	switch k {
	case KindMarkdown:
		return []byte(GenerateMarkdown(snap, now)), nil
	case KindCSV:
		out, err := GenerateCSV(snap)
		return []byte(out), err
	}
	return nil, fmt.Errorf("unknown format %q", k)
}

// Save renders doc into dir under its default file name and returns the
// written path.
func Save(dir string, doc *schema.Document, k Kind, now time.Time) (string, error) {
	data, err := Render(doc, k, now)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(k, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
