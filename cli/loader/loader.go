package loader

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"rtcview/cli/samples"
	"rtcview/schema"
)

var (
	// ErrParse means the input is not JSON text at all.
	ErrParse = errors.New("file is not valid JSON")
	// ErrRejected means the input is JSON but not a test-results document.
	ErrRejected = errors.New("not a recognized test-results format")
)

// LoadReport reads a JSON file and returns it as an accepted document.
func LoadReport(path string) (*schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadSample loads one of the built-in documents through the same checks as
// a file import.
func LoadSample(name string) (*schema.Document, error) {
	data, err := samples.Get(name)
	if err != nil {
		return nil, err
	}
	return Parse(data, "sample:"+name)
}

// Parse decodes data, validates its shape and decodes it into the typed
// model. Errors wrap ErrParse or ErrRejected; nothing is partially accepted.
func Parse(data []byte, source string) (*schema.Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, source, err)
	}

	decision := schema.Validate(raw)
	if !decision.Accepted {
		log.Debug("document rejected", "source", source, "reason", decision.Reason)
		return nil, fmt.Errorf("%w: %s: %s", ErrRejected, source, decision.Reason)
	}

	var results schema.TestResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRejected, source, err)
	}

	issues := schema.Check(&results)
	for _, is := range issues {
		log.Warn("data quality issue", "source", source, "field", is.Field, "issue", is.Message)
	}
	log.Debug("document accepted", "source", source, "variant", decision.Variant, "issues", len(issues))

	return &schema.Document{
		Results:    results,
		Decision:   decision,
		Issues:     issues,
		Raw:        append([]byte(nil), data...),
		Source:     source,
		ImportedAt: time.Now(),
	}, nil
}

// UserMessage turns a load error into the short message shown on screen.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParse):
		return "Failed to parse file. Please ensure it is a valid JSON file."
	case errors.Is(err, ErrRejected):
		return "Invalid file format. Please import a valid test results file."
	case errors.Is(err, os.ErrNotExist):
		return "File not found."
	}
	return "Error reading file."
}
