package derive

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"rtcview/schema"
)

// Unit is the base unit a parsed quantity is expressed in.
type Unit string

const (
	UnitNone         Unit = ""
	UnitMilliseconds Unit = "ms"
	UnitBitsPerSec   Unit = "bps"
)

// Quantity is a value parsed from a unit-suffixed string, in its base unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

var quantityRe = regexp.MustCompile(`^\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)\s*([A-Za-zµ/]*)\s*$`)

// Suffixes are matched case-insensitively, so "Mbps" and "mbps" both mean
// megabits and never millibits.
var unitScale = map[string]struct {
	unit  Unit
	scale float64
}{
	"":     {UnitNone, 1},
	"ms":   {UnitMilliseconds, 1},
	"s":    {UnitMilliseconds, 1000},
	"us":   {UnitMilliseconds, 0.001},
	"µs":   {UnitMilliseconds, 0.001},
	"bps":  {UnitBitsPerSec, 1},
	"b/s":  {UnitBitsPerSec, 1},
	"kbps": {UnitBitsPerSec, 1e3},
	"kb/s": {UnitBitsPerSec, 1e3},
	"mbps": {UnitBitsPerSec, 1e6},
	"mb/s": {UnitBitsPerSec, 1e6},
	"gbps": {UnitBitsPerSec, 1e9},
	"gb/s": {UnitBitsPerSec, 1e9},
}

// ParseQuantity parses strings like "45ms", "24kbps" or "1.2Mbps" into a
// value in ms or bps. The second result is false for anything without a
// numeric prefix or with an unknown suffix; a parsed zero is valid.
func ParseQuantity(s string) (Quantity, bool) {
	m := quantityRe.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Quantity{}, false
	}
	u, ok := unitScale[strings.ToLower(m[2])]
	if !ok {
		return Quantity{}, false
	}
	return Quantity{Value: roundMicro(v * u.scale), Unit: u.unit}, true
}

// ParseMilliseconds parses a duration string into ms. A bare number is taken
// as ms already.
func ParseMilliseconds(s string) (float64, bool) {
	q, ok := ParseQuantity(s)
	if !ok || (q.Unit != UnitMilliseconds && q.Unit != UnitNone) {
		return math.NaN(), false
	}
	return q.Value, true
}

// ParseBitsPerSecond parses a bitrate string into bps. A bare number is taken
// as bps already.
func ParseBitsPerSecond(s string) (float64, bool) {
	q, ok := ParseQuantity(s)
	if !ok || (q.Unit != UnitBitsPerSec && q.Unit != UnitNone) {
		return math.NaN(), false
	}
	return q.Value, true
}

// roundMicro removes the float noise from scaling ("45ms" stays 45).
func roundMicro(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Health is the display category of a connectivity status.
type Health int

const (
	Unhealthy Health = iota
	Degraded
	Healthy
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	}
	return "unhealthy"
}

// HealthOf maps a status to its display category. Anything not known to be
// healthy or degraded is unhealthy.
func HealthOf(s schema.ConnectivityStatus) Health {
	switch s {
	case schema.StatusOperational, schema.StatusReachable, schema.StatusSuccess:
		return Healthy
	case schema.StatusDegraded:
		return Degraded
	}
	return Unhealthy
}
