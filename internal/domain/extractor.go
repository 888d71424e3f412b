package domain

import "context"

// ProbeResult holds metadata discovered without transferring the media.
// Zero values mean the field was not reported.
type ProbeResult struct {
	Title           string
	ThumbnailURL    string
	DurationSeconds int64
	FileSizeBytes   int64
}

// FetchRequest describes one transfer handed to the extraction engine.
type FetchRequest struct {
	URL     string
	Quality string
	Format  MediaFormat

	// OutputTemplate is the extraction engine's output path template,
	// already anchored in the download directory.
	OutputTemplate string
}

// ProgressFunc receives cumulative transfer progress. totalBytes is 0 when
// the total size is not known.
type ProgressFunc func(downloadedBytes, totalBytes int64)

// Extractor is the boundary to the external media-fetching capability.
type Extractor interface {
	// Probe fetches metadata only. Failure is expected to be non-fatal
	// to the surrounding job.
	Probe(ctx context.Context, url string) (*ProbeResult, error)

	// Fetch transfers the media, reporting progress through onProgress,
	// and returns the path of the final artifact.
	Fetch(ctx context.Context, req FetchRequest, onProgress ProgressFunc) (string, error)
}
