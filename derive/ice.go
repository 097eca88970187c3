package derive

import "rtcview/schema"

// ICEReport lists the gathered candidates split by side.
type ICEReport struct {
	Local    []Candidate
	Remote   []Candidate
	Selected *CandidatePair
	Issues   []schema.Issue
	Gaps     []Gap
}

func (ICEReport) Section() Section { return SectionICE }

type Candidate struct {
	ID            string
	Address       string
	Port          int
	Protocol      string
	CandidateType string
	NetworkType   string
	Priority      int64
	RelayProtocol string
	Remote        bool
	// Selected marks a candidate that belongs to the selected pair.
	Selected bool
}

type CandidatePair struct {
	Local  *Candidate
	Remote *Candidate
}

const (
	typeLocalCandidate  = "local-candidate"
	typeRemoteCandidate = "remote-candidate"
)

// isRemote prefers the stats type and falls back to the isRemote flag, so a
// candidate lands on exactly one side.
func isRemote(c schema.ICECandidateStats) bool {
	switch c.Type {
	case typeRemoteCandidate:
		return true
	case typeLocalCandidate:
		return false
	}
	return c.IsRemote
}

func ICE(doc *schema.Document) ICEReport {
	r := ICEReport{Issues: append(
		doc.IssuesFor("bitrateTestResults.iceCandidateStats"),
		doc.IssuesFor("bitrateTestResults.selectedIceCandidatePairStats")...,
	)}
	b := doc.Results.BitrateTestResults
	if b == nil {
		r.Gaps = append(r.Gaps, Gap{
			Metric: "ICE candidates",
			Reason: "ICE candidate details are not available in this test result format",
		})
		return r
	}

	selected := map[string]bool{}
	if sp := b.SelectedICECandidatePairStats; sp != nil {
		r.Selected = &CandidatePair{}
		if sp.LocalCandidate != nil {
			c := candidate(*sp.LocalCandidate, false)
			c.Selected = true
			r.Selected.Local = &c
			selected[c.ID] = c.ID != ""
		}
		if sp.RemoteCandidate != nil {
			c := candidate(*sp.RemoteCandidate, true)
			c.Selected = true
			r.Selected.Remote = &c
			selected[c.ID] = c.ID != ""
		}
	}

	for _, s := range b.ICECandidateStats {
		remote := isRemote(s)
		c := candidate(s, remote)
		c.Selected = selected[c.ID]
		if remote {
			r.Remote = append(r.Remote, c)
		} else {
			r.Local = append(r.Local, c)
		}
	}
	if len(b.ICECandidateStats) == 0 {
		r.Gaps = append(r.Gaps, Gap{Metric: "ICE candidates", Reason: "no candidates were gathered"})
	}
	return r
}

func candidate(s schema.ICECandidateStats, remote bool) Candidate {
	addr := s.Address
	if addr == "" {
		addr = s.IP
	}
	return Candidate{
		ID:            s.ID,
		Address:       addr,
		Port:          s.Port,
		Protocol:      s.Protocol,
		CandidateType: s.CandidateType,
		NetworkType:   s.NetworkType,
		Priority:      s.Priority,
		RelayProtocol: s.RelayProtocol,
		Remote:        remote,
	}
}
