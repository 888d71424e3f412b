package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/vidfetch-go/internal/domain"
)

func TestFormatSelector(t *testing.T) {
	tests := []struct {
		quality  string
		expected string
	}{
		{"best", "best"},
		{"worst", "worst"},
		{"", "best"},
		{"720p", "best[height<=720]"},
		{"1080p", "best[height<=1080]"},
		{"480", "best[height<=480]"},
		{"abc", "best"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatSelector(tt.quality), "quality: %q", tt.quality)
	}
}

func TestParseProgressLine(t *testing.T) {
	downloaded, total, ok := parseProgressLine("PROGRESS 50 200 NA")
	require.True(t, ok)
	assert.Equal(t, int64(50), downloaded)
	assert.Equal(t, int64(200), total)

	// Unknown total falls back to the estimate.
	downloaded, total, ok = parseProgressLine("PROGRESS 50 NA 400")
	require.True(t, ok)
	assert.Equal(t, int64(50), downloaded)
	assert.Equal(t, int64(400), total)

	// No total at all.
	downloaded, total, ok = parseProgressLine("PROGRESS 1024 NA NA")
	require.True(t, ok)
	assert.Equal(t, int64(1024), downloaded)
	assert.Equal(t, int64(0), total)

	// yt-dlp sometimes reports floats.
	downloaded, total, ok = parseProgressLine("PROGRESS 512.0 2048.0 NA")
	require.True(t, ok)
	assert.Equal(t, int64(512), downloaded)
	assert.Equal(t, int64(2048), total)
}

func TestParseProgressLine_NonProgressOutput(t *testing.T) {
	for _, line := range []string{
		"/downloads/abc_video.mp4",
		"[download] Destination: foo.mp4",
		"PROGRESSX 1 2",
		"PROGRESS",
		"",
	} {
		_, _, ok := parseProgressLine(line)
		assert.False(t, ok, "line: %q", line)
	}
}

func TestBuildFetchArgs_VideoFormat(t *testing.T) {
	args := buildFetchArgs(domain.FetchRequest{
		URL:            "https://example.com/v",
		Quality:        "720p",
		Format:         domain.FormatMP4,
		OutputTemplate: "/downloads/id_title.%(ext)s",
	})

	assert.Contains(t, args, "--remux-video")
	assert.Contains(t, args, "mp4")
	assert.NotContains(t, args, "-x")
	assert.Contains(t, args, "best[height<=720]")
	assert.Contains(t, args, "/downloads/id_title.%(ext)s")
	assert.Equal(t, "https://example.com/v", args[len(args)-1])
}

func TestBuildFetchArgs_AudioExtraction(t *testing.T) {
	args := buildFetchArgs(domain.FetchRequest{
		URL:            "https://example.com/v",
		Quality:        "best",
		Format:         domain.FormatMP3,
		OutputTemplate: "/downloads/id_title.%(ext)s",
	})

	assert.Contains(t, args, "-x")
	assert.Contains(t, args, "--audio-format")
	assert.Contains(t, args, "mp3")
	assert.NotContains(t, args, "--remux-video")
}

func TestParseByteCount(t *testing.T) {
	assert.Equal(t, int64(0), parseByteCount("NA"))
	assert.Equal(t, int64(0), parseByteCount(""))
	assert.Equal(t, int64(0), parseByteCount("-5"))
	assert.Equal(t, int64(0), parseByteCount("junk"))
	assert.Equal(t, int64(42), parseByteCount("42"))
	assert.Equal(t, int64(42), parseByteCount("42.9"))
}
