package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"go.uber.org/zap"
)

// SubmitError reports why one candidate URL was rejected at submission
// time. Rejections are per-URL and never abort the rest of the batch.
type SubmitError struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// JobScheduler accepts submissions, creates job records and dispatches one
// worker goroutine per job. Concurrency is bounded by a semaphore so a
// large batch cannot exhaust the host; queued workers hold their jobs in
// pending until a slot frees up.
type JobScheduler struct {
	repo      domain.JobRepository
	extractor domain.Extractor
	config    *domain.DownloadConfig
	logger    *zap.Logger

	// baseCtx bounds worker lifetimes to the process, not to the
	// submission request that created them.
	baseCtx context.Context

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewJobScheduler creates a new scheduler. Workers dispatched by Submit
// run under ctx and are cancelled with it at shutdown.
func NewJobScheduler(
	ctx context.Context,
	repo domain.JobRepository,
	extractor domain.Extractor,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *JobScheduler {
	limit := config.ConcurrentLimit
	if limit < 1 {
		limit = 1
	}
	return &JobScheduler{
		repo:      repo,
		extractor: extractor,
		config:    config,
		logger:    logger,
		baseCtx:   ctx,
		sem:       make(chan struct{}, limit),
	}
}

// Submit splits the multiline input into candidate URLs, creates one
// pending job per valid URL and dispatches a worker for each. It returns
// the created job ids together with per-URL rejections, without waiting
// for any worker to finish.
func (s *JobScheduler) Submit(urls, quality, rawFormat string) ([]string, []SubmitError, error) {
	format, err := domain.ParseFormat(rawFormat)
	if err != nil {
		return nil, nil, err
	}
	if quality == "" {
		quality = "best"
	}

	var (
		created    []string
		rejections []SubmitError
	)

	for _, line := range strings.Split(urls, "\n") {
		candidate := strings.TrimSpace(line)
		if candidate == "" {
			continue
		}

		if err := validateURL(candidate); err != nil {
			rejections = append(rejections, SubmitError{URL: candidate, Reason: err.Error()})
			s.logger.Warn("Rejected submission",
				zap.String("url", candidate),
				zap.Error(err))
			continue
		}

		job := domain.NewJob(candidate, quality, format, domain.ClassifyPlatform(candidate))
		if err := s.repo.Create(job); err != nil {
			rejections = append(rejections, SubmitError{URL: candidate, Reason: fmt.Sprintf("failed to create job: %v", err)})
			s.logger.Error("Failed to create job",
				zap.String("url", candidate),
				zap.Error(err))
			continue
		}

		created = append(created, job.ID)
		s.dispatch(job)

		s.logger.Info("Job submitted",
			zap.String("id", job.ID),
			zap.String("url", job.URL),
			zap.String("platform", job.Platform),
			zap.String("quality", quality),
			zap.String("format", string(format)))
	}

	return created, rejections, nil
}

// dispatch launches the job's worker. The goroutine blocks on the
// concurrency gate, not the caller; the job stays pending until a slot is
// available.
func (s *JobScheduler) dispatch(job *domain.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case s.sem <- struct{}{}:
			defer func() { <-s.sem }()
		case <-s.baseCtx.Done():
			s.failUnstarted(job, s.baseCtx.Err())
			return
		}

		worker := NewDownloadWorker(s.repo, s.extractor, s.config, s.logger)
		if err := worker.Run(s.baseCtx, job); err != nil {
			// Worker already recorded the failure on the job; a
			// failed job never takes the scheduler down.
			s.logger.Warn("Worker finished with error",
				zap.String("id", job.ID),
				zap.Error(err))
		}
	}()
}

// failUnstarted marks a job that never got a slot before shutdown.
func (s *JobScheduler) failUnstarted(job *domain.Job, cause error) {
	job.MarkFailed(fmt.Errorf("never started: %w", cause))
	if err := s.repo.Update(job); err != nil {
		s.logger.Error("Failed to persist job state",
			zap.String("id", job.ID),
			zap.Error(err))
	}
}

// Wait blocks until all dispatched workers have finished. Used during
// shutdown and in tests.
func (s *JobScheduler) Wait() {
	s.wg.Wait()
}

// GetJob retrieves a job by ID
func (s *JobScheduler) GetJob(id string) (*domain.Job, error) {
	return s.repo.FindByID(id)
}

// ListActive lists pending/downloading/converting jobs, newest first
func (s *JobScheduler) ListActive() ([]*domain.Job, error) {
	return s.repo.FindActive()
}

// ListCompleted lists completed jobs, most recently completed first
func (s *JobScheduler) ListCompleted(limit int) ([]*domain.Job, error) {
	if limit < 1 {
		limit = s.config.CompletedListLimit
	}
	return s.repo.FindCompleted(limit)
}

// ListAll lists every job, newest first
func (s *JobScheduler) ListAll() ([]*domain.Job, error) {
	return s.repo.FindAll()
}

// GetStats returns job counts per status
func (s *JobScheduler) GetStats() (*domain.JobStats, error) {
	return s.repo.GetStats()
}

// validateURL requires both a scheme and a host component.
func validateURL(candidate string) error {
	u, err := url.Parse(candidate)
	if err != nil {
		return fmt.Errorf("malformed URL: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("URL must include scheme and host")
	}
	return nil
}
