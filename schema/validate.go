package schema

import (
	"math"
	"strings"
)

// Variant identifies which optional sections a document uses.
type Variant string

const (
	VariantNone   Variant = ""
	VariantLegacy Variant = "legacy"
	VariantNew    Variant = "new"
	VariantHybrid Variant = "hybrid"
)

// Keys whose presence in connectivityResults marks a format. The other
// service names are shared or optional and do not discriminate.
var (
	legacyMarkers = []string{"groupRooms", "signalingRegion"}
	newMarkers    = []string{"signalConnection", "webrtcConnection"}
)

// Sections records which optional sections were found.
type Sections struct {
	Bitrate   bool
	Preflight bool
	Quality   bool
}

// Decision is the outcome of Validate. Reason is set on rejection.
type Decision struct {
	Accepted bool
	Variant  Variant
	Reason   string
	Sections Sections
}

// Validate classifies a decoded JSON value (as produced by unmarshalling into
// an `any`) as a test-results document.
//
// The policy is strict dual-branch: after the required sections, a document
// is legacy when bitrateTestResults and preflightTestReport are present and
// connectivityResults has groupRooms or signalingRegion, and new when
// qualityResults is present and connectivityResults has signalConnection or
// webrtcConnection. A document matching both is hybrid. Anything else,
// including qualityResults next to legacy-only connectivity keys, is rejected.
//
// Validate never panics and never modifies raw.
func Validate(raw any) Decision {
	root, ok := raw.(map[string]any)
	if !ok {
		return reject("document is not a JSON object")
	}

	var missing []string
	if !truthy(lookup(root, "audioTestResults", "inputTest")) {
		missing = append(missing, "audioTestResults.inputTest")
	}
	if !truthy(root["browserInformation"]) {
		missing = append(missing, "browserInformation")
	}
	if !truthy(root["videoTestResults"]) {
		missing = append(missing, "videoTestResults")
	}
	if len(missing) > 0 {
		return reject("missing required " + strings.Join(missing, ", "))
	}

	sections := Sections{
		Bitrate:   truthy(root["bitrateTestResults"]),
		Preflight: truthy(root["preflightTestReport"]),
		Quality:   truthy(root["qualityResults"]),
	}

	conn, connOK := root["connectivityResults"].(map[string]any)
	legacy := connOK && sections.Bitrate && sections.Preflight && hasAnyKey(conn, legacyMarkers)
	isNew := connOK && sections.Quality && hasAnyKey(conn, newMarkers)

	d := Decision{Sections: sections}
	switch {
	case legacy && isNew:
		d.Accepted, d.Variant = true, VariantHybrid
	case legacy:
		d.Accepted, d.Variant = true, VariantLegacy
	case isNew:
		d.Accepted, d.Variant = true, VariantNew
	default:
		d.Reason = rejectionReason(sections, connOK)
	}
	return d
}

func reject(reason string) Decision {
	return Decision{Reason: reason}
}

func rejectionReason(s Sections, connOK bool) string {
	if !connOK {
		return "connectivityResults is missing or not an object"
	}
	switch {
	case s.Quality:
		return "qualityResults present but connectivityResults has neither " +
			strings.Join(newMarkers, " nor ")
	case s.Bitrate && s.Preflight:
		return "bitrateTestResults and preflightTestReport present but connectivityResults has neither " +
			strings.Join(legacyMarkers, " nor ")
	case s.Bitrate || s.Preflight:
		return "legacy format needs both bitrateTestResults and preflightTestReport"
	}
	return "neither legacy (bitrateTestResults, preflightTestReport) nor new (qualityResults) sections present"
}

func lookup(root map[string]any, path ...string) any {
	var cur any = root
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func hasAnyKey(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// truthy follows JavaScript truthiness, which is what producers of these
// documents assume: objects and arrays are truthy even when empty.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case string:
		return t != ""
	}
	return true
}
