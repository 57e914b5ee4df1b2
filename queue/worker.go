package queue

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/drivescan/drivescan-backend/models"
	"github.com/drivescan/drivescan-backend/services"
	"github.com/drivescan/drivescan-backend/store"
)

// DefaultDebounce is the pause between a queue mutation and the next
// scheduling attempt, so intermediate states reach subscribers before the
// pipeline blocks on I/O.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoEndpoint aborts bulk sync when no bridge is configured.
var ErrNoEndpoint = errors.New("configura el puente en configuración")

// LocalStore is the slice of the persistent store the worker needs.
type LocalStore interface {
	Get(key string) string
	PrependHistory(doc models.ProcessedDocument) error
}

// NormalizeFunc, AnalyzeFunc, SyncFunc and LicenseFunc are the pipeline
// stages. Production wiring points them at the services package; tests
// substitute stubs.
type (
	NormalizeFunc func(data []byte, fileName string) (*services.NormalizedDocument, error)
	AnalyzeFunc   func(ctx context.Context, doc *services.NormalizedDocument) (*models.DispatchGuide, error)
	SyncFunc      func(guide *models.DispatchGuide, fileName, endpoint string) bool
	LicenseFunc   func(ctx context.Context) *models.UserSubscription
)

// Worker drives jobs through normalize -> analyze -> sync -> finalize, one
// at a time. The entitlement gate is re-checked on every scheduling
// attempt, never cached.
type Worker struct {
	queue     *Queue
	store     LocalStore
	normalize NormalizeFunc
	analyze   AnalyzeFunc
	sync      SyncFunc
	license   LicenseFunc
	debounce  time.Duration
	syncing   atomic.Bool
}

func NewWorker(q *Queue, st LocalStore, normalize NormalizeFunc, analyze AnalyzeFunc, sync SyncFunc, license LicenseFunc) *Worker {
	return &Worker{
		queue:     q,
		store:     st,
		normalize: normalize,
		analyze:   analyze,
		sync:      sync,
		license:   license,
		debounce:  DefaultDebounce,
	}
}

// SetDebounce overrides the scheduling delay (tests).
func (w *Worker) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run consumes wakeups until ctx is cancelled. After each processed job it
// re-arms itself, so a burst of enqueues drains without further signals.
func (w *Worker) Run(ctx context.Context) {
	log.Println("worker de auditoría iniciado")
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue.Wake():
		}

		timer := time.NewTimer(w.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if w.ProcessNext(ctx) {
			w.queue.Notify()
		}
	}
}

// ProcessNext runs one scheduling cycle: find the first pending job, check
// the entitlement gate, claim, and run the pipeline. Returns true when a
// job reached a terminal state.
func (w *Worker) ProcessNext(ctx context.Context) bool {
	job := w.queue.NextPending()
	if job == nil {
		return false
	}

	// Hard stop: an inactive subscription keeps every job pending.
	if sub := w.license(ctx); sub != nil && !sub.Active {
		return false
	}

	if !w.queue.Claim(job.ID) {
		return false
	}
	defer w.queue.Release()

	w.runPipeline(ctx, job)
	return true
}

func (w *Worker) runPipeline(ctx context.Context, job *models.QueueJob) {
	normalized, err := w.normalize(job.Data, job.FileName)
	if err != nil {
		log.Printf("job %s: normalización falló: %v", job.ID, err)
		w.queue.Fail(job.ID, err.Error())
		return
	}

	guide, err := w.analyze(ctx, normalized)
	if err != nil {
		log.Printf("job %s: análisis falló: %v", job.ID, err)
		w.queue.Fail(job.ID, err.Error())
		return
	}

	// Sync is best-effort: a false here leaves the job completed with
	// synced=false, retryable through SyncAll.
	synced := false
	if endpoint := w.store.Get(store.KeyScriptEndpoint); endpoint != "" {
		synced = w.sync(guide, job.FileName, endpoint)
	}

	doc := models.ProcessedDocument{
		ID:        job.ID,
		FileName:  job.FileName,
		Timestamp: time.Now().UnixMilli(),
		Data:      *guide,
		Status:    models.DocSuccess,
		Thumbnail: normalized.Thumbnail,
	}
	if err := w.store.PrependHistory(doc); err != nil {
		log.Printf("job %s: no se pudo guardar el historial local: %v", job.ID, err)
	}

	w.queue.Complete(job.ID, guide, normalized.Thumbnail, synced)
}

// SyncAll retries the bridge write for every completed, unsynced job,
// sequentially, since the bridge has no concurrency control of its own. It may
// overlap the worker loop; both only move synced false -> true.
func (w *Worker) SyncAll() (int, error) {
	endpoint := w.store.Get(store.KeyScriptEndpoint)
	if endpoint == "" {
		return 0, ErrNoEndpoint
	}
	if !w.syncing.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer w.syncing.Store(false)

	count := 0
	for _, job := range w.queue.UnsyncedCompleted() {
		if job.Result == nil {
			continue
		}
		if w.sync(job.Result, job.FileName, endpoint) {
			w.queue.MarkSynced(job.ID)
			count++
		}
	}
	return count, nil
}
