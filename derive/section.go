package derive

import (
	"errors"
	"fmt"
	"strings"

	"rtcview/schema"
)

// Section is one tab of the dashboard. Metrics are derived per section so a
// view only computes what it shows.
type Section int

const (
	SectionConnectivity Section = iota
	SectionAudio
	SectionVideo
	SectionNetwork
	SectionDevice
	SectionICE
)

// Sections lists every section in display order.
var Sections = []Section{
	SectionConnectivity, SectionAudio, SectionVideo, SectionNetwork, SectionDevice, SectionICE,
}

func (s Section) String() string {
	switch s {
	case SectionConnectivity:
		return "connectivity"
	case SectionAudio:
		return "audio"
	case SectionVideo:
		return "video"
	case SectionNetwork:
		return "network"
	case SectionDevice:
		return "device"
	case SectionICE:
		return "ice"
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// ParseSection accepts the names returned by Section.String.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrNoDocument     = errors.New("no document")
)

// Gap records a metric this document cannot provide. It is shown as an
// explicit absence and does not affect other metrics.
type Gap struct {
	Metric string
	Reason string
}

// Report is the derived record of one section.
type Report interface {
	Section() Section
}

// Derive computes the report for one section of doc. It never modifies doc
// and returns the same report for the same inputs.
func Derive(doc *schema.Document, section Section) (Report, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	switch section {
	case SectionConnectivity:
		return Connectivity(doc), nil
	case SectionAudio:
		return Audio(doc), nil
	case SectionVideo:
		return Video(doc), nil
	case SectionNetwork:
		return Network(doc), nil
	case SectionDevice:
		return Device(doc), nil
	case SectionICE:
		return ICE(doc), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSection, section)
}

func passed(errs []string) bool { return len(errs) == 0 }

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

func cloneStrings(v []string) []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v...)
}
