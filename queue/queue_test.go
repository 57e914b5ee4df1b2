package queue

import (
	"testing"

	"github.com/drivescan/drivescan-backend/models"
)

type fakeHistory struct {
	names map[string]bool
}

func (f *fakeHistory) HistoryFileNames() map[string]bool {
	if f.names == nil {
		return map[string]bool{}
	}
	return f.names
}

func TestEnqueueFiltersUnsupportedSilently(t *testing.T) {
	q := New(&fakeHistory{})

	result := q.Enqueue([]IncomingFile{
		{Name: "invoice_001.jpg", Data: []byte("img")},
		{Name: "readme.txt", Data: []byte("text")},
	})

	if result.Added != 1 {
		t.Errorf("expected 1 added, got %d", result.Added)
	}
	if result.Skipped != 0 {
		t.Errorf("unsupported files must not count as skipped, got %d", result.Skipped)
	}

	jobs, _ := q.Snapshot()
	if len(jobs) != 1 || jobs[0].FileName != "invoice_001.jpg" {
		t.Fatalf("expected only invoice_001.jpg in queue, got %+v", jobs)
	}
	if jobs[0].Status != models.StatusPending {
		t.Errorf("new job should be pending, got %s", jobs[0].Status)
	}
}

func TestEnqueueDuplicateSuppression(t *testing.T) {
	tests := []struct {
		name        string
		queueFiles  []string
		history     map[string]bool
		submit      string
		wantAdded   int
		wantSkipped int
	}{
		{
			name:        "duplicate of queued job",
			queueFiles:  []string{"guia_1.pdf"},
			submit:      "guia_1.pdf",
			wantAdded:   0,
			wantSkipped: 1,
		},
		{
			name:        "duplicate of historical document",
			history:     map[string]bool{"guia_2.png": true},
			submit:      "guia_2.png",
			wantAdded:   0,
			wantSkipped: 1,
		},
		{
			name:      "fresh name",
			submit:    "guia_3.jpeg",
			wantAdded: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(&fakeHistory{names: tt.history})
			for _, name := range tt.queueFiles {
				q.Enqueue([]IncomingFile{{Name: name, Data: []byte("x")}})
			}

			result := q.Enqueue([]IncomingFile{{Name: tt.submit, Data: []byte("x")}})
			if result.Added != tt.wantAdded {
				t.Errorf("added = %d, want %d", result.Added, tt.wantAdded)
			}
			if result.Skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", result.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestErroredJobsAreNotDuplicateProtected(t *testing.T) {
	q := New(&fakeHistory{})

	q.Enqueue([]IncomingFile{{Name: "guia_err.pdf", Data: []byte("x")}})
	jobs, _ := q.Snapshot()
	q.Claim(jobs[0].ID)
	q.Fail(jobs[0].ID, "render falló")
	q.Release()

	result := q.Enqueue([]IncomingFile{{Name: "guia_err.pdf", Data: []byte("x")}})
	if result.Added != 1 {
		t.Errorf("re-submitting an errored file must create a new job, added = %d", result.Added)
	}
	if result.Skipped != 0 {
		t.Errorf("errored file must not count as duplicate, skipped = %d", result.Skipped)
	}

	jobs, _ = q.Snapshot()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs after retry, got %d", len(jobs))
	}
}

func TestEnqueueNoticesAreMutuallyExclusive(t *testing.T) {
	q := New(&fakeHistory{names: map[string]bool{"old.jpg": true}})

	// New + duplicate in one batch: only the "added" notice may show.
	q.Enqueue([]IncomingFile{
		{Name: "new.jpg", Data: []byte("x")},
		{Name: "old.jpg", Data: []byte("x")},
	})
	_, notice := q.Snapshot()
	if notice == nil || notice.Kind != NoticeAdded {
		t.Fatalf("expected added notice, got %+v", notice)
	}
	if notice.Count != 1 {
		t.Errorf("added notice count = %d, want 1", notice.Count)
	}

	// Only duplicates: the "no new documents" notice replaces it.
	q.Enqueue([]IncomingFile{{Name: "old.jpg", Data: []byte("x")}})
	_, notice = q.Snapshot()
	if notice == nil || notice.Kind != NoticeNoNewDocs {
		t.Fatalf("expected no-new-documents notice, got %+v", notice)
	}

	q.DismissNotice()
	if _, notice = q.Snapshot(); notice != nil {
		t.Errorf("notice should clear on dismiss, got %+v", notice)
	}
}

func TestClaimEnforcesSingleConcurrency(t *testing.T) {
	q := New(&fakeHistory{})
	q.Enqueue([]IncomingFile{
		{Name: "a.jpg", Data: []byte("x")},
		{Name: "b.jpg", Data: []byte("x")},
	})
	jobs, _ := q.Snapshot()

	if !q.Claim(jobs[0].ID) {
		t.Fatal("first claim should succeed")
	}
	if q.Claim(jobs[1].ID) {
		t.Fatal("second claim must fail while a job is processing")
	}
	if next := q.NextPending(); next != nil {
		t.Errorf("NextPending must return nil while processing, got %+v", next)
	}

	q.Release()
	if next := q.NextPending(); next == nil || next.FileName != "b.jpg" {
		t.Errorf("after release the next pending job should be b.jpg, got %+v", next)
	}
}

func TestMarkSyncedIsMonotonicAndIdempotent(t *testing.T) {
	q := New(&fakeHistory{})
	q.Enqueue([]IncomingFile{{Name: "a.jpg", Data: []byte("x")}})
	jobs, _ := q.Snapshot()
	id := jobs[0].ID

	q.Claim(id)
	guide := &models.DispatchGuide{Folio: "77182", Items: []models.ProductItem{}}
	q.Complete(id, guide, "thumb", false)
	q.Release()

	targets := q.UnsyncedCompleted()
	if len(targets) != 1 {
		t.Fatalf("expected 1 unsynced completed job, got %d", len(targets))
	}

	q.MarkSynced(id)
	q.MarkSynced(id) // second call is a no-op

	if targets = q.UnsyncedCompleted(); len(targets) != 0 {
		t.Errorf("synced job must leave the bulk-sync target set, got %d", len(targets))
	}
	jobs, _ = q.Snapshot()
	if !jobs[0].Synced || jobs[0].Result.Folio != "77182" || jobs[0].Thumbnail != "thumb" {
		t.Errorf("sync flag flip must not alter result or thumbnail: %+v", jobs[0])
	}
}
