package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens/internal/interfaces"
	"github.com/agentlens/agentlens/internal/model"
	"github.com/agentlens/agentlens/internal/scanner"
)

// JobStatus is the lifecycle state of one asynchronous scan job.
type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// JobEvent is one progress message streamed to websocket subscribers.
type JobEvent struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Job tracks one asynchronous scan. Events is closed when the job settles;
// consumers range over it until closure.
type Job struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	StartedAt time.Time `json:"startedAt,omitempty"`
	DoneAt    time.Time `json:"doneAt,omitempty"`

	Result *model.ScanResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`

	Events chan JobEvent `json:"-"`

	cancel context.CancelFunc
	mu     sync.Mutex
}

func (j *Job) emit(stage, message string) {
	ev := JobEvent{Stage: stage, Message: message, Time: time.Now().UTC()}
	select {
	case j.Events <- ev:
	default:
		// A slow or absent subscriber never blocks the scan.
	}
}

// jobManager runs scans in the background and retains settled jobs so their
// results can be fetched over REST after the fact.
type jobManager struct {
	scanner *scanner.Scanner
	logger  interfaces.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
}

func newJobManager(s *scanner.Scanner, logger interfaces.Logger) *jobManager {
	return &jobManager{
		scanner: s,
		logger:  logger.With(interfaces.Field{Key: "component", Value: "jobs"}),
		jobs:    make(map[string]*Job),
	}
}

// Start launches a scan job. The job runs on its own background context so
// it survives the HTTP request that created it.
func (m *jobManager) Start(url string, opts *model.ScanOptions) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	job := &Job{
		ID:        uuid.NewString(),
		URL:       url,
		Status:    JobPending,
		CreatedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
		cancel:    cancel,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.run(ctx, job, opts)
	return job
}

func (m *jobManager) run(ctx context.Context, job *Job, opts *model.ScanOptions) {
	job.mu.Lock()
	job.Status = JobRunning
	job.StartedAt = time.Now().UTC()
	job.mu.Unlock()
	job.emit("started", job.URL)

	result, err := m.scanner.Scan(ctx, job.URL, opts)

	job.mu.Lock()
	defer job.mu.Unlock()
	job.DoneAt = time.Now().UTC()

	switch {
	case ctx.Err() != nil:
		job.Status = JobCanceled
		job.Error = ctx.Err().Error()
		job.emit("canceled", "")
	case err != nil:
		job.Status = JobFailed
		job.Error = err.Error()
		job.emit("failed", err.Error())
		m.logger.Warn("scan job failed",
			interfaces.Field{Key: "job_id", Value: job.ID},
			interfaces.Field{Key: "error", Value: err.Error()})
	default:
		job.Status = JobDone
		job.Result = result
		job.emit("done", fmt.Sprintf("grade %s", result.Grade))
	}
	close(job.Events)
}

// Get returns a job by id, or nil.
func (m *jobManager) Get(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// List returns all jobs, newest first.
func (m *jobManager) List() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// Cancel stops a running job. Canceling a settled or unknown job is a no-op.
func (m *jobManager) Cancel(id string) {
	m.mu.RLock()
	job := m.jobs[id]
	m.mu.RUnlock()
	if job != nil && job.cancel != nil {
		job.cancel()
	}
}
