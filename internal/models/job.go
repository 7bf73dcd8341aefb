package models

// JobStatus enumerates lifecycle states observable through the job store.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further writes are expected for the job.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result maps each submitted word, in its original casing, to its score.
type Result map[string]float64

// JobView is what a poller sees for a job. Result is set only when completed.
type JobView struct {
	Status JobStatus `json:"status"`
	Result Result    `json:"result,omitempty"`
}

// Task is a unit of scoring work carried by the queue.
type Task struct {
	ID          string   `json:"id"`
	BatchKey    string   `json:"batch_key"`
	Words       []string `json:"words"`
	Attempts    int      `json:"attempts"`
	MaxAttempts int      `json:"max_attempts"`
	LastError   string   `json:"last_error,omitempty"`
}
