package jobs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is one entry in the shell's run history: a load, a training, a
// classification pass or an accuracy check.
type Job struct {
	ID          string
	Type        string
	Status      JobStatus
	StartTime   time.Time
	EndTime     *time.Time
	Error       error
	Result      any
	Description string
	Logs        []string
	seq         int
	mu          sync.RWMutex
}

type Manager struct {
	jobs map[string]*Job
	next int
	mu   sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
	}
}

func (m *Manager) CreateJob(jobType, description string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		ID:          uuid.NewString(),
		Type:        jobType,
		Status:      JobPending,
		StartTime:   time.Now(),
		Description: description,
		Logs:        []string{},
		seq:         m.next,
	}
	m.next++

	m.jobs[job.ID] = job
	return job
}

// Track runs fn as a job of the given type, recording its outcome.
func (m *Manager) Track(jobType, description string, fn func(*Job) (any, error)) (*Job, error) {
	job := m.CreateJob(jobType, description)
	job.SetStatus(JobRunning)

	result, err := fn(job)
	if err != nil {
		job.SetError(err)
		return job, err
	}
	job.SetResult(result)
	job.SetStatus(JobCompleted)
	return job, nil
}

func (m *Manager) GetJob(jobID string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	return job, exists
}

// FindJob resolves a full id or a unique id prefix.
func (m *Manager) FindJob(prefix string) (*Job, error) {
	if job, ok := m.GetJob(prefix); ok {
		return job, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *Job
	for id, job := range m.jobs {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("job prefix %s is ambiguous", prefix)
		}
		found = job
	}
	if found == nil {
		return nil, fmt.Errorf("job %s not found", prefix)
	}
	return found, nil
}

// ListJobs returns the history oldest first.
func (m *Manager) ListJobs() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].seq < jobs[j].seq
	})
	return jobs
}

func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	if status == JobCompleted || status == JobFailed {
		now := time.Now()
		j.EndTime = &now
	}
}

func (j *Job) AddLog(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	timestamp := time.Now().Format("15:04:05")
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", timestamp, message))
}

func (j *Job) SetError(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Error = err
	j.Status = JobFailed
	now := time.Now()
	j.EndTime = &now
}

func (j *Job) SetResult(result any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result = result
}

func (j *Job) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// Duration is the elapsed time so far, or the total once finished.
func (j *Job) Duration() time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.EndTime != nil {
		return j.EndTime.Sub(j.StartTime)
	}
	return time.Since(j.StartTime)
}

func (j *Job) GetLogs() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	logs := make([]string, len(j.Logs))
	copy(logs, j.Logs)
	return logs
}
