package control

import (
	"time"

	"ainews/app"
	"ainews/domain"
)

type crawlResponse struct {
	OK      bool `json:"ok"`
	Started bool `json:"started"`
}

type intervalResponse struct {
	OK  bool   `json:"ok"`
	Old string `json:"old"`
	New string `json:"new"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Started  bool         `json:"started"`
	Running  bool         `json:"running"`
	Interval string       `json:"interval"`
	NextRun  *time.Time   `json:"next_run,omitempty"`
	LastRun  *RunResponse `json:"last_run,omitempty"`
}

// RunResponse summarizes a finished run.
type RunResponse struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Fetched    int       `json:"fetched"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Failed     []string  `json:"failed,omitempty"`
}

func newStatusResponse(st app.Status) StatusResponse {
	out := StatusResponse{
		Started:  st.Started,
		Running:  st.Running,
		Interval: st.Interval.String(),
	}
	if !st.NextRun.IsZero() {
		next := st.NextRun.UTC()
		out.NextRun = &next
	}
	if st.LastRun != nil {
		out.LastRun = newRunResponse(*st.LastRun)
	}
	return out
}

func newRunResponse(s domain.RunSummary) *RunResponse {
	t := s.Totals()
	return &RunResponse{
		ID:         s.ID,
		Trigger:    s.Trigger,
		StartedAt:  s.StartedAt.UTC(),
		FinishedAt: s.FinishedAt.UTC(),
		Fetched:    t.Fetched,
		Created:    t.Created,
		Updated:    t.Updated,
		Skipped:    t.Skipped,
		Failed:     s.Failed(),
	}
}
