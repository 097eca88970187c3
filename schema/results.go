package schema

import (
	"bytes"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// TestResults matches the JSON document exported by a WebRTC preflight run.
// The first four sections are required by every format; the pointer sections
// are present depending on the variant (legacy: bitrate + preflight, new: quality).
type TestResults struct {
	AudioTestResults    AudioTestResults    `json:"audioTestResults"`
	VideoTestResults    VideoTestResults    `json:"videoTestResults"`
	BrowserInformation  BrowserInformation  `json:"browserInformation"`
	ConnectivityResults ConnectivityResults `json:"connectivityResults" validate:"dive,connstatus"`

	BitrateTestResults  *BitrateTestResults  `json:"bitrateTestResults,omitempty"`
	PreflightTestReport *PreflightTestReport `json:"preflightTestReport,omitempty"`
	QualityResults      *QualityResults      `json:"qualityResults,omitempty"`
}

type AudioTestResults struct {
	InputTest *AudioInputTest `json:"inputTest"`
	// OutputTest has no fixed shape and is kept as-is.
	OutputTest json.RawMessage `json:"outputTest,omitempty"`
}

type AudioInputTest struct {
	DeviceID   string     `json:"deviceId"`
	Errors     []string   `json:"errors"`
	TestName   string     `json:"testName"`
	Values     []float64  `json:"values"`
	TestTiming TestTiming `json:"testTiming"`
}

type VideoTestResults struct {
	DeviceID   string     `json:"deviceId"`
	Errors     []string   `json:"errors"`
	Resolution Resolution `json:"resolution"`
	TestName   string     `json:"testName"`
	TestTiming TestTiming `json:"testTiming"`
}

type Resolution struct {
	Width  int `json:"width" validate:"gte=0"`
	Height int `json:"height" validate:"gte=0"`
}

// TestTiming holds Unix epoch milliseconds for start and end, and the
// duration in milliseconds.
type TestTiming struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

func (t TestTiming) StartTime() time.Time { return time.UnixMilli(int64(t.Start)) }
func (t TestTiming) EndTime() time.Time   { return time.UnixMilli(int64(t.End)) }

// Seconds returns the duration in seconds.
func (t TestTiming) Seconds() float64 { return t.Duration / 1000 }

type BrowserInformation struct {
	UA      string          `json:"ua"`
	Browser BrowserInfo     `json:"browser"`
	Engine  NameVersion     `json:"engine"`
	OS      NameVersion     `json:"os"`
	Device  DeviceInfo      `json:"device"`
	CPU     json.RawMessage `json:"cpu,omitempty"`
}

type BrowserInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Major   string `json:"major"`
}

type NameVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// DeviceInfo vendor and model are often empty strings on desktop browsers.
type DeviceInfo struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
}

type BitrateTestResults struct {
	MaxBitrate                    float64                   `json:"maxBitrate"`
	AverageBitrate                float64                   `json:"averageBitrate"`
	Errors                        []string                  `json:"errors"`
	ICECandidateStats             []ICECandidateStats       `json:"iceCandidateStats" validate:"dive"`
	TestName                      string                    `json:"testName"`
	TestTiming                    TestTiming                `json:"testTiming"`
	Values                        []float64                 `json:"values"`
	SelectedICECandidatePairStats *SelectedICECandidatePair `json:"selectedIceCandidatePairStats,omitempty"`
}

type ICECandidateStats struct {
	ID               string  `json:"id"`
	Timestamp        float64 `json:"timestamp"`
	Type             string  `json:"type"`
	Address          string  `json:"address"`
	CandidateType    string  `json:"candidateType" validate:"oneof=host srflx relay prflx"`
	Foundation       string  `json:"foundation,omitempty"`
	IP               string  `json:"ip"`
	IsRemote         bool    `json:"isRemote"`
	NetworkType      string  `json:"networkType,omitempty"`
	Port             int     `json:"port" validate:"gte=0,lte=65535"`
	Priority         int64   `json:"priority" validate:"gte=0"`
	Protocol         string  `json:"protocol" validate:"oneof=udp tcp"`
	RelatedAddress   string  `json:"relatedAddress,omitempty"`
	RelatedPort      *int    `json:"relatedPort,omitempty"`
	RelayProtocol    string  `json:"relayProtocol,omitempty"`
	TransportID      string  `json:"transportId"`
	URL              string  `json:"url,omitempty"`
	UsernameFragment string  `json:"usernameFragment,omitempty"`
	TCPType          string  `json:"tcpType,omitempty"`
}

type SelectedICECandidatePair struct {
	LocalCandidate  *ICECandidateStats `json:"localCandidate,omitempty"`
	RemoteCandidate *ICECandidateStats `json:"remoteCandidate,omitempty"`
}

type PreflightTestReport struct {
	Report PreflightReport `json:"report"`
	// Error is null on success, otherwise an implementation-defined payload.
	Error json.RawMessage `json:"error,omitempty"`
}

// Failed reports whether the preflight run recorded a non-null error.
func (p *PreflightTestReport) Failed() bool {
	return len(p.Error) > 0 && string(p.Error) != "null"
}

type PreflightReport struct {
	TestTiming                    TestTiming               `json:"testTiming"`
	NetworkTiming                 NetworkTiming            `json:"networkTiming"`
	Stats                         NetworkStats             `json:"stats"`
	SelectedICECandidatePairStats SimplifiedCandidatePair  `json:"selectedIceCandidatePairStats"`
	ICECandidateStats             []SimplifiedICECandidate `json:"iceCandidateStats" validate:"dive"`
	ProgressEvents                []ProgressEvent          `json:"progressEvents"`
	MOS                           MOSValue                 `json:"mos"`
}

// NetworkTiming breaks the connection down by phase.
type NetworkTiming struct {
	DTLS           TestTiming `json:"dtls"`
	ICE            TestTiming `json:"ice"`
	PeerConnection TestTiming `json:"peerConnection"`
	Connect        TestTiming `json:"connect"`
	Media          TestTiming `json:"media"`
}

type NetworkStats struct {
	Jitter     StatValue `json:"jitter"`
	RTT        StatValue `json:"rtt"`
	PacketLoss StatValue `json:"packetLoss"`
}

type StatValue struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// MOSValue is a Mean Opinion Score triple, 1.0 to 5.0.
type MOSValue struct {
	Min     float64 `json:"min" validate:"gte=1,lte=5"`
	Max     float64 `json:"max" validate:"gte=1,lte=5"`
	Average float64 `json:"average" validate:"gte=1,lte=5"`
}

type SimplifiedCandidatePair struct {
	LocalCandidate  *SimplifiedICECandidate `json:"localCandidate,omitempty"`
	RemoteCandidate *SimplifiedICECandidate `json:"remoteCandidate,omitempty"`
}

type SimplifiedICECandidate struct {
	TransportID   string `json:"transportId"`
	CandidateType string `json:"candidateType" validate:"oneof=host srflx relay prflx"`
	Port          int    `json:"port" validate:"gte=0,lte=65535"`
	Address       string `json:"address"`
	Priority      int64  `json:"priority" validate:"gte=0"`
	Protocol      string `json:"protocol" validate:"oneof=udp tcp"`
	URL           string `json:"url,omitempty"`
	RelayProtocol string `json:"relayProtocol,omitempty"`
}

type ProgressEvent struct {
	Duration float64 `json:"duration"`
	Name     string  `json:"name"`
}

type QualityResults struct {
	Audio MediaQuality `json:"audio"`
	Video MediaQuality `json:"video"`
}

// MediaQuality carries RTT and bitrate as unit-suffixed strings ("45ms",
// "1.2Mbps"); jitter is in ms and packet loss in percent.
type MediaQuality struct {
	Jitter     float64    `json:"jitter"`
	PacketLoss float64    `json:"packetLoss"`
	RTT        RangeValue `json:"RTT"`
	Bitrate    RangeValue `json:"bitrate"`
}

type RangeValue struct {
	Avg string `json:"avg"`
	Max string `json:"max"`
}

// UnmarshalJSON accepts each side as a string or a bare number. Any other
// JSON value is kept as its source text and fails unit parsing later.
func (r *RangeValue) UnmarshalJSON(b []byte) error {
	var raw struct {
		Avg json.RawMessage `json:"avg"`
		Max json.RawMessage `json:"max"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Avg = leafText(raw.Avg)
	r.Max = leafText(raw.Max)
	return nil
}

// leafText returns a JSON string's value, or the trimmed source text of any
// other value. null and absent values are empty.
func leafText(b json.RawMessage) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return ""
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return s
		}
	}
	return string(b)
}

// ConnectivityStatus is the health of one service probed by the run.
type ConnectivityStatus string

const (
	StatusOperational ConnectivityStatus = "operational"
	StatusDegraded    ConnectivityStatus = "degraded"
	StatusOutage      ConnectivityStatus = "outage"
	StatusReachable   ConnectivityStatus = "Reachable"
	StatusSuccess     ConnectivityStatus = "success"
	StatusFailed      ConnectivityStatus = "failed"
)

// UnmarshalJSON never fails: a non-string status keeps its JSON text, which
// Check then reports as an unknown status.
func (s *ConnectivityStatus) UnmarshalJSON(b []byte) error {
	*s = ConnectivityStatus(leafText(b))
	return nil
}

// Known reports whether s is one of the statuses a preflight run emits.
func (s ConnectivityStatus) Known() bool {
	switch s {
	case StatusOperational, StatusDegraded, StatusOutage,
		StatusReachable, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// ConnectivityResults maps a service name to its status. The key set differs
// between the legacy and new formats.
type ConnectivityResults map[string]ConnectivityStatus

type ConnectivityEntry struct {
	Service string
	Status  ConnectivityStatus
}

// Entries returns the services sorted by name.
func (c ConnectivityResults) Entries() []ConnectivityEntry {
	entries := make([]ConnectivityEntry, 0, len(c))
	for k, v := range c {
		entries = append(entries, ConnectivityEntry{Service: k, Status: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Service < entries[j].Service })
	return entries
}

func (c ConnectivityResults) Has(service string) bool {
	_, ok := c[service]
	return ok
}

// Service names reported by each format.
var (
	LegacyServices = []string{
		"groupRooms", "peerToPeerRooms", "recordings", "compositions",
		"networkTraversalService", "goRooms", "signalingRegion", "turn",
	}
	NewServices = []string{
		"signalConnection", "webrtcConnection", "publishAudio", "publishVideo", "reconnection",
	}
)
