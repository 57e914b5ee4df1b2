package models

import "time"

// JobStatus represents the current state of a job in the queue.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// QueueJob is the lifecycle unit for one submitted file. Jobs are owned by
// the queue and never removed; an errored job stays visible until the
// process ends. Synced may flip false->true after completion, when a later
// bulk sync reaches the bridge.
type QueueJob struct {
	ID        string         `json:"id"`
	FileName  string         `json:"fileName"`
	Data      []byte         `json:"-"`
	Status    JobStatus      `json:"status"`
	Result    *DispatchGuide `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Synced    bool           `json:"synced"`
	CreatedAt time.Time      `json:"createdAt"`
}
