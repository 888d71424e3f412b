package domain

import "errors"

// ErrJobNotFound is returned when a job lookup misses.
var ErrJobNotFound = errors.New("job not found")

// JobRepository defines the interface for job persistence
type JobRepository interface {
	// Create persists a new job
	Create(job *Job) error

	// Update persists the full current state of a job as one atomic write
	Update(job *Job) error

	// FindByID finds a job by ID; returns ErrJobNotFound on a miss
	FindByID(id string) (*Job, error)

	// FindActive finds pending/downloading/converting jobs, newest created first
	FindActive() ([]*Job, error)

	// FindCompleted finds completed jobs, most recently completed first
	FindCompleted(limit int) ([]*Job, error)

	// FindAll finds all jobs, newest created first
	FindAll() ([]*Job, error)

	// CountByStatus returns the number of jobs in the given status
	CountByStatus(status JobStatus) (int64, error)

	// GetStats returns job counts per status
	GetStats() (*JobStats, error)
}

// JobStats represents job counts per status
type JobStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Downloading int64 `json:"downloading"`
	Converting  int64 `json:"converting"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
}
