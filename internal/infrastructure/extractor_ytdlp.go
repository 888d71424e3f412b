package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"go.uber.org/zap"
)

// progressPrefix tags yt-dlp progress-template lines so they can be told
// apart from the printed artifact path.
const progressPrefix = "PROGRESS"

// YTDLPExtractor implements domain.Extractor by shelling out to yt-dlp.
type YTDLPExtractor struct {
	config *domain.ExtractorConfig
	logger *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp backed extractor
func NewYTDLPExtractor(config *domain.ExtractorConfig, logger *zap.Logger) *YTDLPExtractor {
	return &YTDLPExtractor{
		config: config,
		logger: logger,
	}
}

// probeInfo is the subset of yt-dlp's JSON dump the probe cares about.
type probeInfo struct {
	Title          string  `json:"title"`
	Thumbnail      string  `json:"thumbnail"`
	Duration       float64 `json:"duration"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox int64   `json:"filesize_approx"`
}

// Probe runs a metadata-only query against the URL. No media is
// transferred.
func (e *YTDLPExtractor) Probe(ctx context.Context, url string) (*domain.ProbeResult, error) {
	if e.config.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.ProbeTimeout)
		defer cancel()
	}

	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
		"--no-playlist",
		url,
	}

	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("probe failed: %w: %s", err, stderrTail(&stderr))
	}

	var info probeInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("probe returned unparseable metadata: %w", err)
	}

	result := &domain.ProbeResult{
		Title:           info.Title,
		ThumbnailURL:    info.Thumbnail,
		DurationSeconds: int64(info.Duration),
		FileSizeBytes:   info.Filesize,
	}
	if result.FileSizeBytes == 0 {
		result.FileSizeBytes = info.FilesizeApprox
	}
	return result, nil
}

// Fetch transfers the media, streaming progress lines from yt-dlp's
// stdout, and returns the final artifact path printed after post-processing.
func (e *YTDLPExtractor) Fetch(ctx context.Context, req domain.FetchRequest, onProgress domain.ProgressFunc) (string, error) {
	if e.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.FetchTimeout)
		defer cancel()
	}
	if onProgress == nil {
		onProgress = func(downloaded, total int64) {}
	}

	args := buildFetchArgs(req)

	e.logger.Debug("Running extraction engine",
		zap.String("cmd", ShellEscapeCommand(e.config.Binary, args...)))

	cmd := exec.CommandContext(ctx, e.config.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("failed to attach to engine output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start %s: %w", e.config.Binary, err)
	}

	var artifactPath string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if downloaded, total, ok := parseProgressLine(line); ok {
			onProgress(downloaded, total)
			continue
		}
		// Anything else on stdout is the printed artifact path; keep
		// the last one, which follows any post-processing move.
		artifactPath = line
	}

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", e.config.Binary, err, stderrTail(&stderr))
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read engine output: %w", err)
	}
	if artifactPath == "" {
		return "", fmt.Errorf("%s reported no artifact path", e.config.Binary)
	}

	return artifactPath, nil
}

// buildFetchArgs assembles the yt-dlp invocation for one transfer.
func buildFetchArgs(req domain.FetchRequest) []string {
	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--no-simulate",
		"--progress-template",
		fmt.Sprintf("download:%s %%(progress.downloaded_bytes)s %%(progress.total_bytes)s %%(progress.total_bytes_estimate)s", progressPrefix),
		"--print", "after_move:filepath",
		"-f", formatSelector(req.Quality),
		"-o", req.OutputTemplate,
	}

	if req.Format.AudioOnly() {
		args = append(args, "-x", "--audio-format", string(req.Format))
	} else {
		args = append(args, "--remux-video", string(req.Format))
	}

	args = append(args, req.URL)
	return args
}

// formatSelector maps the requested quality onto a yt-dlp format
// expression. "best" and "worst" pass through; anything else is read as a
// maximum-height constraint with its numeric prefix, e.g. "720p" selects
// the best stream not exceeding 720 pixels.
func formatSelector(quality string) string {
	switch quality {
	case "", "best":
		return "best"
	case "worst":
		return "worst"
	}

	digits := quality
	for i, r := range quality {
		if r < '0' || r > '9' {
			digits = quality[:i]
			break
		}
	}
	if digits == "" {
		return "best"
	}
	return fmt.Sprintf("best[height<=%s]", digits)
}

// parseProgressLine decodes one progress-template line into cumulative
// byte counts. An unknown total falls back to yt-dlp's estimate, then to 0.
func parseProgressLine(line string) (downloaded, total int64, ok bool) {
	if !strings.HasPrefix(line, progressPrefix+" ") {
		return 0, 0, false
	}

	fields := strings.Fields(strings.TrimPrefix(line, progressPrefix+" "))
	if len(fields) < 2 {
		return 0, 0, false
	}

	downloaded = parseByteCount(fields[0])
	total = parseByteCount(fields[1])
	if total == 0 && len(fields) >= 3 {
		total = parseByteCount(fields[2])
	}
	return downloaded, total, true
}

// parseByteCount reads a yt-dlp numeric field, which may be an integer, a
// float, or the literal "NA".
func parseByteCount(s string) int64 {
	if s == "" || s == "NA" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f)
}

// stderrTail returns the last portion of captured stderr for error
// messages.
func stderrTail(buf *bytes.Buffer) string {
	const maxTail = 512
	s := strings.TrimSpace(buf.String())
	if len(s) > maxTail {
		s = "..." + s[len(s)-maxTail:]
	}
	if s == "" {
		return "(no engine output)"
	}
	return s
}
