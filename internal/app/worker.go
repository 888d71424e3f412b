package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"go.uber.org/zap"
)

// DownloadWorker runs one job end-to-end: metadata probe, transfer,
// progress propagation and terminal status. A worker instance owns exactly
// one job for its run and is the sole writer to that job's fields.
type DownloadWorker struct {
	repo      domain.JobRepository
	extractor domain.Extractor
	config    *domain.DownloadConfig
	logger    *zap.Logger
}

// NewDownloadWorker creates a worker bound to the shared store and extractor.
func NewDownloadWorker(
	repo domain.JobRepository,
	extractor domain.Extractor,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadWorker {
	return &DownloadWorker{
		repo:      repo,
		extractor: extractor,
		config:    config,
		logger:    logger,
	}
}

// Run drives the job from pending to a terminal state. The returned error
// mirrors the job's failure cause; the job record itself always carries
// the authoritative outcome.
func (w *DownloadWorker) Run(ctx context.Context, job *domain.Job) error {
	job.MarkDownloading()
	w.persist(job)

	w.logger.Info("Starting download",
		zap.String("id", job.ID),
		zap.String("url", job.URL),
		zap.String("platform", job.Platform))

	// Best-effort metadata probe. Failure is logged and the transfer
	// proceeds with whatever metadata is available.
	meta, err := w.extractor.Probe(ctx, job.URL)
	if err != nil {
		w.logger.Warn("Metadata probe failed",
			zap.String("id", job.ID),
			zap.String("url", job.URL),
			zap.Error(err))
	} else {
		job.ApplyProbe(meta)
		w.persist(job)
	}

	req := domain.FetchRequest{
		URL:            job.URL,
		Quality:        job.Quality,
		Format:         job.Format,
		OutputTemplate: w.outputTemplate(job),
	}

	artifactPath, err := w.extractor.Fetch(ctx, req, func(downloaded, total int64) {
		w.onProgress(job, downloaded, total)
	})
	if err != nil {
		return w.fail(job, fmt.Errorf("transfer failed: %w", err))
	}

	// Completion requires the artifact to actually exist; the reported
	// size is recomputed from the file rather than trusting the probe.
	info, err := os.Stat(artifactPath)
	if err != nil {
		return w.fail(job, fmt.Errorf("artifact missing after transfer: %s", artifactPath))
	}

	job.MarkCompleted(artifactPath, info.Size())
	w.persist(job)

	w.logger.Info("Download completed",
		zap.String("id", job.ID),
		zap.String("file", artifactPath),
		zap.Int64("size", info.Size()))
	return nil
}

// onProgress translates a cumulative byte callback into a job progress
// update. Progress is monotonic and capped at 99 until completion is
// confirmed; an unknown total leaves the last reported value in place.
func (w *DownloadWorker) onProgress(job *domain.Job, downloaded, total int64) {
	if total <= 0 {
		return
	}

	job.SetProgress(float64(downloaded) / float64(total) * 100)

	// Audio extraction runs after the transfer itself has finished.
	if downloaded >= total && job.Format.AudioOnly() && job.Status == domain.StatusDownloading {
		job.MarkConverting()
	}

	w.persist(job)
}

func (w *DownloadWorker) fail(job *domain.Job, cause error) error {
	job.MarkFailed(cause)
	w.persist(job)

	w.logger.Error("Download failed",
		zap.String("id", job.ID),
		zap.String("url", job.URL),
		zap.Error(cause))
	return cause
}

// persist writes the job's full state. Store failures must not drop a
// transition silently, so they are logged and the job carries on with a
// stale persisted view.
func (w *DownloadWorker) persist(job *domain.Job) {
	if err := w.repo.Update(job); err != nil {
		w.logger.Error("Failed to persist job state",
			zap.String("id", job.ID),
			zap.String("status", string(job.Status)),
			zap.Error(err))
	}
}

// outputTemplate builds the extraction engine's output path template from
// the job id and a filesystem-safe rendition of the title.
func (w *DownloadWorker) outputTemplate(job *domain.Job) string {
	title := job.Title
	if title == "" {
		title = "video"
	}
	name := fmt.Sprintf("%s_%s.%%(ext)s", job.ID, sanitizeTitle(title))
	return filepath.Join(w.config.Dir, name)
}

var (
	unsafeChars  = regexp.MustCompile(`[^\w\s-]`)
	collapseRuns = regexp.MustCompile(`[-\s]+`)
)

// sanitizeTitle strips characters that are unsafe in filenames and
// collapses whitespace/hyphen runs to single underscores.
func sanitizeTitle(title string) string {
	s := unsafeChars.ReplaceAllString(title, "")
	s = strings.TrimSpace(s)
	s = collapseRuns.ReplaceAllString(s, "_")
	if s == "" {
		return "video"
	}
	return s
}
