//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidfetch-go/api"
	"github.com/yourusername/vidfetch-go/internal/app"
	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/internal/infrastructure"
	"go.uber.org/zap"
)

// stubExtractor fakes the extraction engine: it writes a real artifact
// and replays a fixed progress sequence.
type stubExtractor struct {
	mu   sync.Mutex
	dir  string
	n    int
	fail bool
}

func (s *stubExtractor) Probe(ctx context.Context, url string) (*domain.ProbeResult, error) {
	return &domain.ProbeResult{Title: "Integration Clip", DurationSeconds: 10}, nil
}

func (s *stubExtractor) Fetch(ctx context.Context, req domain.FetchRequest, onProgress domain.ProgressFunc) (string, error) {
	if s.fail {
		return "", fmt.Errorf("engine rejected URL")
	}

	onProgress(50, 100)
	onProgress(100, 100)

	s.mu.Lock()
	s.n++
	n := s.n
	s.mu.Unlock()

	path := filepath.Join(s.dir, fmt.Sprintf("clip-%d.mp4", n))
	if err := os.WriteFile(path, []byte("integration media"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func setupTestServer(t *testing.T, extractor domain.Extractor) (*httptest.Server, *app.JobScheduler) {
	t.Helper()

	repo, err := infrastructure.NewSQLiteJobRepository(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	config := &domain.DownloadConfig{
		Dir:                t.TempDir(),
		ConcurrentLimit:    2,
		CompletedListLimit: 10,
	}
	scheduler := app.NewJobScheduler(context.Background(), repo, extractor, config, zap.NewNop())

	router := api.SetupRouter(scheduler, zap.NewNop())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, scheduler
}

func submit(t *testing.T, server *httptest.Server, urls, quality, format string) map[string]interface{} {
	t.Helper()

	payload := map[string]string{
		"urls":    urls,
		"quality": quality,
		"format":  format,
	}
	data, _ := json.Marshal(payload)

	resp, err := http.Post(server.URL+"/api/v1/jobs", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func TestAPI_SubmitMixedBatch(t *testing.T) {
	server, scheduler := setupTestServer(t, &stubExtractor{dir: t.TempDir()})

	result := submit(t, server, "https://youtube.com/watch?v=abc\nnot a url", "best", "mp4")
	scheduler.Wait()

	created := result["created"].([]interface{})
	require.Len(t, created, 1)

	errs := result["errors"].([]interface{})
	require.Len(t, errs, 1)
	rejection := errs[0].(map[string]interface{})
	assert.Equal(t, "not a url", rejection["url"])

	// The accepted job ran to completion.
	resp, err := http.Get(server.URL + "/api/v1/jobs/" + created[0].(string))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var job map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&job))
	assert.Equal(t, "YouTube", job["platform"])
	assert.Equal(t, "completed", job["status"])
	assert.Equal(t, float64(100), job["progress"])
	assert.Equal(t, "Integration Clip", job["title"])
}

func TestAPI_SubmitInvalidFormat(t *testing.T) {
	server, _ := setupTestServer(t, &stubExtractor{dir: t.TempDir()})

	payload := map[string]string{"urls": "https://example.com/v", "format": "mkv"}
	data, _ := json.Marshal(payload)

	resp, err := http.Post(server.URL+"/api/v1/jobs", "application/json", bytes.NewBuffer(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetJobFile(t *testing.T) {
	server, scheduler := setupTestServer(t, &stubExtractor{dir: t.TempDir()})

	result := submit(t, server, "https://vimeo.com/12345", "best", "mp4")
	scheduler.Wait()

	id := result["created"].([]interface{})[0].(string)

	resp, err := http.Get(server.URL + "/api/v1/jobs/" + id + "/file")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "integration media", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

func TestAPI_GetJobFile_FailedJob(t *testing.T) {
	server, scheduler := setupTestServer(t, &stubExtractor{dir: t.TempDir(), fail: true})

	result := submit(t, server, "https://example.com/broken", "best", "mp4")
	scheduler.Wait()

	id := result["created"].([]interface{})[0].(string)

	// Job failed, so no file is served.
	resp, err := http.Get(server.URL + "/api/v1/jobs/" + id + "/file")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// But the failure itself is inspectable.
	jobResp, err := http.Get(server.URL + "/api/v1/jobs/" + id)
	require.NoError(t, err)
	defer jobResp.Body.Close()

	var job map[string]interface{}
	require.NoError(t, json.NewDecoder(jobResp.Body).Decode(&job))
	assert.Equal(t, "failed", job["status"])
	assert.NotEmpty(t, job["error_message"])
}

func TestAPI_GetJob_NotFound(t *testing.T) {
	server, _ := setupTestServer(t, &stubExtractor{dir: t.TempDir()})

	resp, err := http.Get(server.URL + "/api/v1/jobs/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ListsAndStats(t *testing.T) {
	server, scheduler := setupTestServer(t, &stubExtractor{dir: t.TempDir()})

	submit(t, server, "https://youtube.com/watch?v=1\nhttps://vimeo.com/2", "best", "mp4")
	scheduler.Wait()

	resp, err := http.Get(server.URL + "/api/v1/jobs/completed")
	require.NoError(t, err)
	defer resp.Body.Close()

	var completed []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&completed))
	assert.Len(t, completed, 2)

	activeResp, err := http.Get(server.URL + "/api/v1/jobs/active")
	require.NoError(t, err)
	defer activeResp.Body.Close()

	var active []map[string]interface{}
	require.NoError(t, json.NewDecoder(activeResp.Body).Decode(&active))
	assert.Empty(t, active)

	statsResp, err := http.Get(server.URL + "/api/v1/jobs/stats")
	require.NoError(t, err)
	defer statsResp.Body.Close()

	var stats map[string]interface{}
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(2), stats["completed"])
}
