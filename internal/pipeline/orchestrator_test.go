package pipeline

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/russellconstruction9/RRsolutions/internal/response"
	"github.com/russellconstruction9/RRsolutions/internal/session"
)

func waitForStatus(t *testing.T, o *Orchestrator, id string, want ...JobStatus) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := o.GetJob(id).Snapshot()
		for _, w := range want {
			if snap.Status == w {
				return snap
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach %v", id, want)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobIntoSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := session.NewMemoryStore(time.Hour)
	gen := &fakeGenerator{replies: []reply{{text: budgetJSON}}}
	o := NewOrchestrator(Options{WorkerCount: 2, MaxQueueSize: 4}, newTestProcessor(gen, ProcessorConfig{}), store, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("Estimate-$1200.pdf", response.FormatJSON, onePagePDF("Roofing"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap := waitForStatus(t, o, job.ID, StatusCompleted, StatusFailed)
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %+v", snap)
	}
	if snap.Documents != 2 || snap.Pages != 1 || snap.Attempts != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}

	sess, err := store.Get(context.Background(), snap.SessionID)
	if err != nil {
		t.Fatalf("expected session %s: %v", snap.SessionID, err)
	}
	if sess.Filename != "Estimate-$1200.pdf" || sess.Set.Len() != 2 {
		t.Errorf("unexpected session %+v", sess)
	}
}

func TestOrchestrator_FailedJobKeepsError(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := session.NewMemoryStore(time.Hour)
	gen := &fakeGenerator{replies: []reply{{text: "{not json"}}}
	o := NewOrchestrator(Options{WorkerCount: 1}, newTestProcessor(gen, ProcessorConfig{}), store, discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("a.pdf", response.FormatJSON, onePagePDF("x"))
	o.Submit(job)

	snap := waitForStatus(t, o, job.ID, StatusCompleted, StatusFailed)
	if snap.Status != StatusFailed || snap.Phase != string(StatusParsing) {
		t.Fatalf("expected failure in parsing phase, got %+v", snap)
	}
	if len(snap.Errors) != 1 {
		t.Errorf("expected one error, got %q", snap.Errors)
	}
	if store.Len() != 0 {
		t.Error("expected no session for a failed job")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	o := NewOrchestrator(Options{WorkerCount: 1, MaxQueueSize: 1}, newTestProcessor(&fakeGenerator{replies: []reply{{}}}, ProcessorConfig{}), session.NewMemoryStore(time.Hour), discardLogger())

	first := NewJob("a.pdf", response.FormatJSON, nil)
	second := NewJob("b.pdf", response.FormatJSON, nil)
	if err := o.Submit(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("expected queue_full failure, got %+v", snap)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected depth 1, got %d", o.QueueDepth())
	}
	o.Stop()
}

func TestOrchestrator_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	o := NewOrchestrator(Options{}, newTestProcessor(&fakeGenerator{replies: []reply{{}}}, ProcessorConfig{}), session.NewMemoryStore(time.Hour), discardLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	if err := o.Submit(NewJob("a.pdf", response.FormatJSON, nil)); err == nil {
		t.Error("expected submit after stop to fail")
	}
}

func TestOrchestrator_CleanupEvictsSessions(t *testing.T) {
	store := session.NewMemoryStore(time.Minute)
	old := session.New("a.pdf", response.FormatJSON, nil, nil)
	old.UpdatedAt = time.Now().Add(-time.Hour)
	store.Create(context.Background(), old)

	o := NewOrchestrator(Options{JobTTL: time.Minute}, nil, store, discardLogger())
	stale := NewJob("b.pdf", response.FormatJSON, nil)
	stale.UpdatedAt = time.Now().Add(-time.Hour)
	o.jobs.Put(stale)

	o.cleanup()

	if store.Len() != 0 {
		t.Error("expected stale session to be evicted")
	}
	if o.GetJob(stale.ID) != nil {
		t.Error("expected stale job to be evicted")
	}
}
