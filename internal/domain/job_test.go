package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	job := NewJob("https://youtube.com/watch?v=abc", "best", FormatMP4, "YouTube")

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "https://youtube.com/watch?v=abc", job.URL)
	assert.Equal(t, "best", job.Quality)
	assert.Equal(t, FormatMP4, job.Format)
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, float64(0), job.Progress)
	assert.Equal(t, "YouTube", job.Platform)
	assert.Nil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMessage)
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"mp4", "mp3", "webm", "avi"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, MediaFormat(valid), format)
	}

	_, err := ParseFormat("mkv")
	assert.Error(t, err)

	_, err = ParseFormat("")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "downloading", "converting", "completed", "failed"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, JobStatus(valid), status)
	}

	_, err := ParseStatus("queued")
	assert.Error(t, err)
}

func TestMediaFormat_AudioOnly(t *testing.T) {
	assert.True(t, FormatMP3.AudioOnly())
	assert.False(t, FormatMP4.AudioOnly())
	assert.False(t, FormatWebM.AudioOnly())
	assert.False(t, FormatAVI.AudioOnly())
}

func TestJob_MarkDownloading(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")

	job.MarkDownloading()

	assert.Equal(t, StatusDownloading, job.Status)
	assert.True(t, job.IsActive())
	assert.False(t, job.IsTerminal())
}

func TestJob_MarkCompleted(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")
	job.MarkDownloading()
	job.SetProgress(42)

	job.MarkCompleted("/downloads/file.mp4", 1234)

	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, "/downloads/file.mp4", job.FilePath)
	require.NotNil(t, job.FileSizeBytes)
	assert.Equal(t, int64(1234), *job.FileSizeBytes)
	assert.Equal(t, float64(100), job.Progress)
	assert.NotNil(t, job.CompletedAt)
	assert.True(t, job.IsTerminal())
}

func TestJob_MarkFailed(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")

	job.MarkFailed(errors.New("network unreachable"))

	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "network unreachable", job.ErrorMessage)
	assert.Empty(t, job.FilePath)
	assert.Nil(t, job.CompletedAt)
	assert.True(t, job.IsTerminal())
}

func TestJob_SetProgress_CapsAt99(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")
	job.MarkDownloading()

	job.SetProgress(25)
	assert.Equal(t, float64(25), job.Progress)

	// Fully transferred bytes still never report 100 before completion
	// is confirmed.
	job.SetProgress(100)
	assert.Equal(t, float64(99), job.Progress)
}

func TestJob_SetProgress_Monotonic(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")
	job.MarkDownloading()

	job.SetProgress(60)
	job.SetProgress(40)

	assert.Equal(t, float64(60), job.Progress)
}

func TestJob_ApplyProbe(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")

	job.ApplyProbe(&ProbeResult{
		Title:           "Some Video",
		ThumbnailURL:    "https://example.com/t.jpg",
		DurationSeconds: 120,
		FileSizeBytes:   4096,
	})

	assert.Equal(t, "Some Video", job.Title)
	assert.Equal(t, "https://example.com/t.jpg", job.ThumbnailURL)
	require.NotNil(t, job.DurationSeconds)
	assert.Equal(t, int64(120), *job.DurationSeconds)
	require.NotNil(t, job.FileSizeBytes)
	assert.Equal(t, int64(4096), *job.FileSizeBytes)
}

func TestJob_ApplyProbe_PartialMetadata(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")

	job.ApplyProbe(&ProbeResult{Title: "Only A Title"})

	assert.Equal(t, "Only A Title", job.Title)
	assert.Nil(t, job.DurationSeconds)
	assert.Nil(t, job.FileSizeBytes)
	assert.Empty(t, job.ThumbnailURL)
}

func TestJob_ApplyProbe_TruncatesLongTitle(t *testing.T) {
	job := NewJob("https://example.com/v", "best", FormatMP4, "Other")

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	job.ApplyProbe(&ProbeResult{Title: string(long)})

	assert.Len(t, job.Title, 200)
}
