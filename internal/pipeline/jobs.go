package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/russellconstruction9/RRsolutions/internal/response"
)

// JobStatus represents the state of an estimate job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusInspecting JobStatus = "inspecting"
	StatusGenerating JobStatus = "generating"
	StatusParsing    JobStatus = "parsing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one uploaded estimate from queue to session.
type Job struct {
	mu sync.Mutex

	ID       string          `json:"job_id"`
	Filename string          `json:"filename"`
	Format   response.Format `json:"format"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	SessionID   string `json:"session_id,omitempty"`
	Documents   int    `json:"documents"`
	Pages       int    `json:"pages"`
	Attempts    int    `json:"attempts"`
	ContentHash string `json:"content_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
	warnings []string
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename string, format response.Format, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Filename:    filename,
		Format:      format,
		Status:      StatusQueued,
		Phase:       "queued",
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs and reports how many.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// AddWarnings records non-fatal notes such as extraction problems or budget
// mismatches.
func (j *Job) AddWarnings(msgs ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, msgs...)
	j.UpdatedAt = time.Now()
}

// SetAttempts records how many model calls the job has made.
func (j *Job) SetAttempts(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Attempts = n
	j.UpdatedAt = time.Now()
}

// SetPages records the page count found during inspection.
func (j *Job) SetPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Pages = n
	j.UpdatedAt = time.Now()
}

// Complete marks the job done and links the session holding its documents.
func (j *Job) Complete(sessionID string, documents int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.SessionID = sessionID
	j.Documents = documents
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string          `json:"job_id"`
	Filename    string          `json:"filename"`
	Format      response.Format `json:"format"`
	Status      JobStatus       `json:"status"`
	Phase       string          `json:"phase"`
	SessionID   string          `json:"session_id,omitempty"`
	Documents   int             `json:"documents"`
	Pages       int             `json:"pages"`
	Attempts    int             `json:"attempts"`
	ContentHash string          `json:"content_hash,omitempty"`
	Errors      []string        `json:"errors"`
	Warnings    []string        `json:"warnings"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:          j.ID,
		Filename:    j.Filename,
		Format:      j.Format,
		Status:      j.Status,
		Phase:       j.Phase,
		SessionID:   j.SessionID,
		Documents:   j.Documents,
		Pages:       j.Pages,
		Attempts:    j.Attempts,
		ContentHash: j.ContentHash,
		Errors:      append([]string{}, j.errors...),
		Warnings:    append([]string{}, j.warnings...),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
