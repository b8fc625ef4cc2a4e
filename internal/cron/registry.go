package cron

import "context"

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry tracks cron jobs in registration order. Job names key the
// per-job metrics and log fields, so each name is bound at most once.
// Registering a name again replaces the earlier job in place rather
// than running it twice per cycle.
type Registry struct {
	jobs  []Job
	index map[string]int
}

// NewRegistry builds a registry preloaded with the provided jobs.
// Nil jobs are ignored.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{index: make(map[string]int)}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register adds a job, replacing any earlier job with the same name.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if at, ok := r.index[job.Name()]; ok {
		r.jobs[at] = job
		return
	}
	r.index[job.Name()] = len(r.jobs)
	r.jobs = append(r.jobs, job)
}

// Jobs returns the registered jobs in the order they were first added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
