package dto

import "time"

// JobAccepted acknowledges an async solve submission.
type JobAccepted struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	PollPath string `json:"poll_path"`
}

// JobStatus reports where an async solve currently stands.
type JobStatus struct {
	JobID      string                 `json:"job_id"`
	Status     string                 `json:"status"`
	Submitted  time.Time              `json:"submitted_at"`
	Finished   *time.Time             `json:"finished_at,omitempty"`
	Error      string                 `json:"error,omitempty"`
	ProposalID string                 `json:"proposal_id,omitempty"`
	Result     *PlanAndAssignResponse `json:"result,omitempty"`
}
