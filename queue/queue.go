package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drivescan/drivescan-backend/models"
	"github.com/drivescan/drivescan-backend/services"
)

const (
	noticeAddedTTL     = 4 * time.Second
	noticeDuplicateTTL = 5 * time.Second
)

// NoticeKind distinguishes the two transient enqueue signals. They are
// mutually exclusive per enqueue call.
type NoticeKind string

const (
	NoticeAdded     NoticeKind = "added"
	NoticeNoNewDocs NoticeKind = "no_new_documents"
)

// Notice is a transient UI signal that expires on its own.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Count     int        `json:"count"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// IncomingFile is one user-submitted file at the intake boundary.
type IncomingFile struct {
	Name string
	Data []byte
}

// EnqueueResult summarizes one intake batch. Unsupported extensions are
// dropped silently and counted in neither field; Skipped counts duplicates
// only.
type EnqueueResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// HistoryNamer supplies the historical file-name set for the duplicate
// check. Implemented by the local store.
type HistoryNamer interface {
	HistoryFileNames() map[string]bool
}

// Queue owns every QueueJob for the lifetime of the process. Jobs are
// never removed; they only move forward (pending -> processing ->
// completed/error) and their synced flag only flips false -> true.
type Queue struct {
	mu         sync.Mutex
	jobs       []*models.QueueJob
	byID       map[string]*models.QueueJob
	processing bool
	notice     *Notice
	history    HistoryNamer
	wake       chan struct{}
	onUpdate   func(models.QueueJob)
}

func New(history HistoryNamer) *Queue {
	return &Queue{
		byID:    make(map[string]*models.QueueJob),
		history: history,
		wake:    make(chan struct{}, 1),
	}
}

// SetOnUpdate installs a hook invoked with a copy of every job that
// changes state, used for the WebSocket status feed.
func (q *Queue) SetOnUpdate(fn func(models.QueueJob)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onUpdate = fn
}

func (q *Queue) broadcast(job *models.QueueJob) {
	if q.onUpdate != nil {
		q.onUpdate(*job)
	}
}

// Enqueue filters and appends an intake batch. Unsupported extensions are
// skipped silently; names already present in the queue (excluding errored
// jobs, which may be retried) or in the history are counted as duplicates.
// At most one transient notice results per call.
func (q *Queue) Enqueue(files []IncomingFile) EnqueueResult {
	historyNames := map[string]bool{}
	if q.history != nil {
		historyNames = q.history.HistoryFileNames()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	queueNames := make(map[string]bool, len(q.jobs))
	for _, job := range q.jobs {
		if job.Status != models.StatusError {
			queueNames[job.FileName] = true
		}
	}

	var result EnqueueResult
	for _, file := range files {
		if !services.SupportedExtension(file.Name) {
			continue
		}
		if queueNames[file.Name] || historyNames[file.Name] {
			result.Skipped++
			continue
		}
		job := &models.QueueJob{
			ID:        uuid.New().String(),
			FileName:  file.Name,
			Data:      file.Data,
			Status:    models.StatusPending,
			CreatedAt: time.Now(),
		}
		q.jobs = append(q.jobs, job)
		q.byID[job.ID] = job
		queueNames[job.FileName] = true
		result.Added++
		q.broadcast(job)
	}

	switch {
	case result.Added > 0:
		q.notice = &Notice{Kind: NoticeAdded, Count: result.Added, ExpiresAt: time.Now().Add(noticeAddedTTL)}
	case result.Skipped > 0:
		q.notice = &Notice{Kind: NoticeNoNewDocs, Count: result.Skipped, ExpiresAt: time.Now().Add(noticeDuplicateTTL)}
	}

	if result.Added > 0 {
		q.notifyLocked()
	}
	return result
}

// Notify wakes the worker. Non-blocking: a pending wakeup is enough.
func (q *Queue) Notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) notifyLocked() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Wake exposes the worker wakeup channel.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// NextPending returns a copy of the first pending job in queue order, or
// nil while another job is processing or nothing is pending.
func (q *Queue) NextPending() *models.QueueJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.processing {
		return nil
	}
	for _, job := range q.jobs {
		if job.Status == models.StatusPending {
			snapshot := *job
			return &snapshot
		}
	}
	return nil
}

// Claim marks the job processing and raises the global single-concurrency
// flag. Returns false if the flag is already held or the job moved on.
func (q *Queue) Claim(jobID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.processing {
		return false
	}
	job, ok := q.byID[jobID]
	if !ok || job.Status != models.StatusPending {
		return false
	}
	q.processing = true
	job.Status = models.StatusProcessing
	q.broadcast(job)
	return true
}

// Release clears the single-concurrency flag. Always runs, whatever the
// pipeline outcome.
func (q *Queue) Release() {
	q.mu.Lock()
	q.processing = false
	q.mu.Unlock()
}

// Complete finalizes a job with its result. Source bytes are dropped;
// they are no longer needed once analysis succeeded.
func (q *Queue) Complete(jobID string, result *models.DispatchGuide, thumbnail string, synced bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.byID[jobID]
	if !ok {
		return
	}
	job.Status = models.StatusCompleted
	job.Result = result
	job.Thumbnail = thumbnail
	job.Synced = synced
	job.Data = nil
	q.broadcast(job)
}

// Fail terminates a job with an error message. Failed jobs stay in the
// queue and do not count against future duplicate checks.
func (q *Queue) Fail(jobID, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.byID[jobID]
	if !ok {
		return
	}
	job.Status = models.StatusError
	job.Error = message
	q.broadcast(job)
}

// MarkSynced flips the synced flag. Monotonic: never flips back.
func (q *Queue) MarkSynced(jobID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.byID[jobID]
	if !ok || job.Synced {
		return
	}
	job.Synced = true
	q.broadcast(job)
}

// UnsyncedCompleted snapshots the bulk-sync targets: completed jobs whose
// write never reached the bridge.
func (q *Queue) UnsyncedCompleted() []models.QueueJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	var jobs []models.QueueJob
	for _, job := range q.jobs {
		if job.Status == models.StatusCompleted && !job.Synced {
			jobs = append(jobs, *job)
		}
	}
	return jobs
}

// Snapshot returns the jobs in insertion order plus the current notice,
// dropping the notice once expired.
func (q *Queue) Snapshot() ([]models.QueueJob, *Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := make([]models.QueueJob, len(q.jobs))
	for i, job := range q.jobs {
		jobs[i] = *job
	}
	if q.notice != nil && time.Now().After(q.notice.ExpiresAt) {
		q.notice = nil
	}
	var notice *Notice
	if q.notice != nil {
		copied := *q.notice
		notice = &copied
	}
	return jobs, notice
}

// DismissNotice clears the transient notice on user request.
func (q *Queue) DismissNotice() {
	q.mu.Lock()
	q.notice = nil
	q.mu.Unlock()
}

// Processing reports whether a job currently holds the worker.
func (q *Queue) Processing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}
