package infrastructure

import (
	"errors"
	"fmt"

	"github.com/yourusername/vidfetch-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var activeStatuses = []domain.JobStatus{
	domain.StatusPending,
	domain.StatusDownloading,
	domain.StatusConverting,
}

// SQLiteJobRepository implements domain.JobRepository using SQLite.
// Updates are whole-record saves, so concurrent readers never see a torn
// job; per-job write ordering is guaranteed by the single-writer worker.
type SQLiteJobRepository struct {
	db *gorm.DB
}

// NewSQLiteJobRepository opens (or creates) the job database at dbPath.
func NewSQLiteJobRepository(dbPath string) (*SQLiteJobRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteJobRepository{db: db}, nil
}

// Create creates a new job record
func (r *SQLiteJobRepository) Create(job *domain.Job) error {
	return r.db.Create(job).Error
}

// Update saves the job's full current state
func (r *SQLiteJobRepository) Update(job *domain.Job) error {
	return r.db.Save(job).Error
}

// FindByID finds a job by ID
func (r *SQLiteJobRepository) FindByID(id string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	if _, err := domain.ParseStatus(string(job.Status)); err != nil {
		return nil, fmt.Errorf("corrupt job record %s: %w", id, err)
	}
	return &job, nil
}

// FindActive finds jobs still in flight, newest created first
func (r *SQLiteJobRepository) FindActive() ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Where("status IN ?", activeStatuses).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// FindCompleted finds completed jobs, most recently completed first
func (r *SQLiteJobRepository) FindCompleted(limit int) ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Where("status = ?", domain.StatusCompleted).
		Order("completed_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// FindAll finds all jobs, newest created first
func (r *SQLiteJobRepository) FindAll() ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// CountByStatus returns the number of jobs in the given status
func (r *SQLiteJobRepository) CountByStatus(status domain.JobStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Job{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// GetStats returns job counts per status
func (r *SQLiteJobRepository) GetStats() (*domain.JobStats, error) {
	stats := &domain.JobStats{}

	if err := r.db.Model(&domain.Job{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.JobStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Job{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusPending:
			stats.Pending = sc.Count
		case domain.StatusDownloading:
			stats.Downloading = sc.Count
		case domain.StatusConverting:
			stats.Converting = sc.Count
		case domain.StatusCompleted:
			stats.Completed = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteJobRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
