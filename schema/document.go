package schema

import (
	"strings"
	"time"
)

// Document is an accepted import. It is built once by the loader and never
// modified afterwards; derived values are computed into separate records.
type Document struct {
	Results  TestResults
	Decision Decision
	Issues   []Issue

	// Raw is the input exactly as read, used for verbatim export.
	Raw        []byte
	Source     string
	ImportedAt time.Time
}

func (d *Document) Variant() Variant { return d.Decision.Variant }

// IssuesFor returns the issues whose field path starts with prefix.
func (d *Document) IssuesFor(prefix string) []Issue {
	var out []Issue
	for _, is := range d.Issues {
		if strings.HasPrefix(is.Field, prefix) {
			out = append(out, is)
		}
	}
	return out
}
