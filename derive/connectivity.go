package derive

import (
	"time"

	"rtcview/schema"
)

// ConnectivityReport is the overview of probed services.
type ConnectivityReport struct {
	Services []ServiceRow
	// NewFormat is set when the document reports signalConnection.
	NewFormat bool
	Counts    map[Health]int
	// Timing is the legacy connection timing summary, nil otherwise.
	Timing *TimingSummary
	Issues []schema.Issue
	Gaps   []Gap
}

func (ConnectivityReport) Section() Section { return SectionConnectivity }

type ServiceRow struct {
	Service string
	Status  schema.ConnectivityStatus
	Health  Health
	Known   bool
}

type TimingSummary struct {
	DTLS    time.Duration
	ICE     time.Duration
	Connect time.Duration
	Media   time.Duration
}

// Overall is the worst health across services. An empty report is unhealthy.
func (c ConnectivityReport) Overall() Health {
	if len(c.Services) == 0 {
		return Unhealthy
	}
	h := Healthy
	for _, s := range c.Services {
		if s.Health < h {
			h = s.Health
		}
	}
	return h
}

func Connectivity(doc *schema.Document) ConnectivityReport {
	conn := doc.Results.ConnectivityResults
	r := ConnectivityReport{
		NewFormat: conn.Has("signalConnection"),
		Counts:    map[Health]int{},
		Issues:    doc.IssuesFor("connectivityResults"),
	}
	for _, e := range conn.Entries() {
		h := HealthOf(e.Status)
		r.Services = append(r.Services, ServiceRow{
			Service: e.Service,
			Status:  e.Status,
			Health:  h,
			Known:   e.Status.Known(),
		})
		r.Counts[h]++
	}
	if len(r.Services) == 0 {
		r.Gaps = append(r.Gaps, Gap{Metric: "services", Reason: "no services were probed"})
	}

	if p := doc.Results.PreflightTestReport; p != nil && !r.NewFormat {
		nt := p.Report.NetworkTiming
		r.Timing = &TimingSummary{
			DTLS:    millis(nt.DTLS.Duration),
			ICE:     millis(nt.ICE.Duration),
			Connect: millis(nt.Connect.Duration),
			Media:   millis(nt.Media.Duration),
		}
	}
	return r
}
