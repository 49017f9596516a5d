package pipeline

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dgallion1/figdoc/internal/parser"
)

// JobStatus represents the state of a report job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusFetching   JobStatus = "fetching"
	StatusExtracting JobStatus = "extracting"
	StatusEnhancing  JobStatus = "enhancing"
	StatusAssembling JobStatus = "assembling"
	StatusRendering  JobStatus = "rendering"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// Done reports whether the job has reached a final state.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusPartial || s == StatusFailed
}

// Job tracks one report generation.
type Job struct {
	mu sync.Mutex

	ID       string
	FileKey  string
	Project  string
	Mode     string
	Status   JobStatus
	Phase    string
	Filename string

	Progress Progress

	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	token      string
	attachment *parser.Attachment
	errors     []string
}

// Progress counts page outcomes once enhancement has run.
type Progress struct {
	TotalPages    int      `json:"total_pages"`
	AnalyzedPages int      `json:"analyzed_pages"`
	BasicPages    int      `json:"basic_pages"`
	Errors        []string `json:"errors"`
}

// NewJob returns a queued job for a Figma file.
func NewJob(fileKey, token string, attachment *parser.Attachment) *Job {
	now := time.Now()
	return &Job{
		ID:         NewJobID(),
		FileKey:    fileKey,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
		token:      token,
		attachment: attachment,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.Status = StatusFailed
	j.Phase = phase
	j.UpdatedAt = time.Now()
	j.token = ""
}

// AddError records a non-fatal problem.
func (j *Job) AddError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, msg)
	j.UpdatedAt = time.Now()
}

// SetDocument records what the generated document contains.
func (j *Job) SetDocument(project, mode string, progress Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Project = project
	j.Mode = mode
	j.Progress.TotalPages = progress.TotalPages
	j.Progress.AnalyzedPages = progress.AnalyzedPages
	j.Progress.BasicPages = progress.BasicPages
	j.UpdatedAt = time.Now()
}

// Finish marks the job done with the stored file name. The Figma token is
// dropped once it is no longer needed.
func (j *Job) Finish(status JobStatus, filename string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = "done"
	j.Filename = filename
	j.UpdatedAt = time.Now()
	j.token = ""
}

func (j *Job) credentials() (string, *parser.Attachment) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.token, j.attachment
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	FileKey   string    `json:"file_key"`
	Project   string    `json:"project,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename,omitempty"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:       j.ID,
		FileKey:  j.FileKey,
		Project:  j.Project,
		Mode:     j.Mode,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: Progress{
			TotalPages:    j.Progress.TotalPages,
			AnalyzedPages: j.Progress.AnalyzedPages,
			BasicPages:    j.Progress.BasicPages,
			Errors:        errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// JobStore is a thread-safe in-memory job registry, bounded in size and
// swept by TTL.
type JobStore struct {
	jobs *lru.Cache[string, *Job]
	ttl  time.Duration
}

func NewJobStore(size int, ttl time.Duration) *JobStore {
	if size <= 0 {
		size = 512
	}
	jobs, _ := lru.New[string, *Job](size) // only fails for size <= 0
	return &JobStore{jobs: jobs, ttl: ttl}
}

func (s *JobStore) Put(job *Job) {
	s.jobs.Add(job.ID, job)
}

func (s *JobStore) Get(id string) *Job {
	job, ok := s.jobs.Get(id)
	if !ok {
		return nil
	}
	if s.ttl > 0 && time.Since(job.updatedAt()) > s.ttl {
		s.jobs.Remove(id)
		return nil
	}
	return job
}

func (s *JobStore) Len() int {
	return s.jobs.Len()
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	if s.ttl <= 0 {
		return
	}
	now := time.Now()
	for _, id := range s.jobs.Keys() {
		job, ok := s.jobs.Peek(id)
		if ok && now.Sub(job.updatedAt()) > s.ttl {
			s.jobs.Remove(id)
		}
	}
}
