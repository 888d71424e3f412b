package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidfetch-go/internal/app"
	"github.com/yourusername/vidfetch-go/internal/domain"
	"go.uber.org/zap"
)

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	scheduler *app.JobScheduler
	logger    *zap.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(scheduler *app.JobScheduler, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// SubmitRequest represents a batch submission. URLs holds one candidate
// per line.
type SubmitRequest struct {
	URLs    string `json:"urls" binding:"required"`
	Quality string `json:"quality,omitempty"`
	Format  string `json:"format" binding:"required"`
}

// SubmitResponse reports the created job ids and per-URL rejections
type SubmitResponse struct {
	Created []string          `json:"created"`
	Errors  []app.SubmitError `json:"errors,omitempty"`
}

// Submit handles POST /api/v1/jobs
func (h *JobHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, rejections, err := h.scheduler.Submit(req.URLs, req.Quality, req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, SubmitResponse{
		Created: created,
		Errors:  rejections,
	})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.scheduler.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("Failed to load job", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.scheduler.ListAll()
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// ListActive handles GET /api/v1/jobs/active
func (h *JobHandler) ListActive(c *gin.Context) {
	jobs, err := h.scheduler.ListActive()
	if err != nil {
		h.logger.Error("Failed to list active jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// ListCompleted handles GET /api/v1/jobs/completed
func (h *JobHandler) ListCompleted(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	jobs, err := h.scheduler.ListCompleted(limit)
	if err != nil {
		h.logger.Error("Failed to list completed jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetStats handles GET /api/v1/jobs/stats
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.scheduler.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetJobFile handles GET /api/v1/jobs/:id/file. Only completed jobs whose
// artifact still exists on disk are served.
func (h *JobHandler) GetJobFile(c *gin.Context) {
	job, err := h.scheduler.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if job.Status != domain.StatusCompleted || job.FilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not available"})
		return
	}

	if _, err := os.Stat(job.FilePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file no longer on disk"})
		return
	}

	c.FileAttachment(job.FilePath, filepath.Base(job.FilePath))
}
