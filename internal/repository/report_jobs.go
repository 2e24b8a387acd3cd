package repository

import (
	"sort"
	"sync"

	"github.com/nipuna-lk/edutrack-api/internal/models"
)

// ReportJobRegistry tracks report generation jobs in memory. Jobs are
// transient and are not written to the blob store; a restart simply forgets
// finished work, the files themselves stay on disk until cleanup.
type ReportJobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]models.ReportJob
}

// NewReportJobRegistry constructs an empty registry.
func NewReportJobRegistry() *ReportJobRegistry {
	return &ReportJobRegistry{jobs: map[string]models.ReportJob{}}
}

// Put stores or replaces a job.
func (r *ReportJobRegistry) Put(job models.ReportJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

// Get returns the job with the given id.
func (r *ReportJobRegistry) Get(id string) (models.ReportJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// List returns every tracked job, newest first.
func (r *ReportJobRegistry) List() []models.ReportJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ReportJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Update applies fn to the stored job under the lock. It returns false when
// the job is unknown.
func (r *ReportJobRegistry) Update(id string, fn func(*models.ReportJob)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return false
	}
	fn(&job)
	r.jobs[id] = job
	return true
}
