package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a download job
type JobStatus string

const (
	StatusPending     JobStatus = "pending"
	StatusDownloading JobStatus = "downloading"
	StatusConverting  JobStatus = "converting"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// MediaFormat represents the requested output container
type MediaFormat string

const (
	FormatMP4  MediaFormat = "mp4"
	FormatMP3  MediaFormat = "mp3"
	FormatWebM MediaFormat = "webm"
	FormatAVI  MediaFormat = "avi"
)

// ParseFormat validates a raw format string at the boundary and returns
// the typed value. Unknown formats are rejected rather than stored.
func ParseFormat(s string) (MediaFormat, error) {
	switch MediaFormat(s) {
	case FormatMP4, FormatMP3, FormatWebM, FormatAVI:
		return MediaFormat(s), nil
	}
	return "", fmt.Errorf("unsupported format: %q", s)
}

// ParseStatus validates a raw status string read back from storage.
func ParseStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case StatusPending, StatusDownloading, StatusConverting, StatusCompleted, StatusFailed:
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("unknown job status: %q", s)
}

// AudioOnly reports whether the format requires audio extraction
// (post-processing after the transfer finishes).
func (f MediaFormat) AudioOnly() bool {
	return f == FormatMP3
}

// Job represents one tracked request to fetch media from a URL.
//
// A job is mutated exclusively by the single worker that owns it; the
// store only ever sees whole-record updates.
type Job struct {
	ID              string      `json:"id" gorm:"primaryKey"`
	URL             string      `json:"url" gorm:"not null"`
	Title           string      `json:"title,omitempty"`
	ThumbnailURL    string      `json:"thumbnail_url,omitempty"`
	DurationSeconds *int64      `json:"duration_seconds,omitempty"`
	FileSizeBytes   *int64      `json:"file_size_bytes,omitempty"`
	Quality         string      `json:"quality"`
	Format          MediaFormat `json:"format" gorm:"not null"`
	Status          JobStatus   `json:"status" gorm:"not null;index"`
	Progress        float64     `json:"progress"`
	FilePath        string      `json:"file_path,omitempty"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	Platform        string      `json:"platform"`
	CreatedAt       time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time   `json:"updated_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty" gorm:"index"`
}

// NewJob creates a pending job for an already validated URL.
func NewJob(url, quality string, format MediaFormat, platform string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		URL:       url,
		Quality:   quality,
		Format:    format,
		Status:    StatusPending,
		Progress:  0,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkDownloading transitions the job to the downloading state.
func (j *Job) MarkDownloading() {
	j.Status = StatusDownloading
	j.UpdatedAt = time.Now()
}

// MarkConverting transitions the job into post-processing. Progress stays
// below 100 until the final artifact is confirmed.
func (j *Job) MarkConverting() {
	j.Status = StatusConverting
	j.UpdatedAt = time.Now()
}

// MarkCompleted records the verified artifact and pins progress to 100.
func (j *Job) MarkCompleted(filePath string, fileSize int64) {
	j.Status = StatusCompleted
	j.FilePath = filePath
	j.FileSizeBytes = &fileSize
	j.Progress = 100
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed transitions the job to the terminal failed state.
func (j *Job) MarkFailed(err error) {
	j.Status = StatusFailed
	j.ErrorMessage = err.Error()
	j.UpdatedAt = time.Now()
}

// SetProgress advances progress while a transfer is running. Values are
// clamped to [0, 99] and never move backwards; 100 is reserved for
// MarkCompleted.
func (j *Job) SetProgress(pct float64) {
	if pct > 99 {
		pct = 99
	}
	if pct < j.Progress {
		return
	}
	j.Progress = pct
	j.UpdatedAt = time.Now()
}

// ApplyProbe fills in metadata discovered by the probe. Only fields the
// probe actually produced are touched.
func (j *Job) ApplyProbe(meta *ProbeResult) {
	if meta == nil {
		return
	}
	if meta.Title != "" {
		title := meta.Title
		if len(title) > 200 {
			title = title[:200]
		}
		j.Title = title
	}
	if meta.ThumbnailURL != "" {
		j.ThumbnailURL = meta.ThumbnailURL
	}
	if meta.DurationSeconds > 0 {
		d := meta.DurationSeconds
		j.DurationSeconds = &d
	}
	if meta.FileSizeBytes > 0 {
		size := meta.FileSizeBytes
		j.FileSizeBytes = &size
	}
	j.UpdatedAt = time.Now()
}

// IsTerminal checks if the job reached a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// IsActive checks if the job is still in flight
func (j *Job) IsActive() bool {
	return j.Status == StatusPending || j.Status == StatusDownloading || j.Status == StatusConverting
}
