package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

var ErrNotFound = errors.New("record not found")

type ResumeAnalysisRepository interface {
	Create(ctx context.Context, analysis *models.ResumeAnalysis) error
	FindByID(ctx context.Context, id uint) (*models.ResumeAnalysis, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.ResumeAnalysis, error)
	// FindUnindexed lists rows not yet indexed, fewest failed attempts first.
	// A non-zero dueBy also skips rows whose retry time is after it.
	FindUnindexed(ctx context.Context, dueBy time.Time, limit int) ([]models.ResumeAnalysis, error)
	MarkIndexed(ctx context.Context, id uint, at time.Time) error
	RecordIndexFailure(ctx context.Context, id uint, retryAt time.Time) error
	UpdateResumeText(ctx context.Context, id uint, text string) error
}

type resumeAnalysisRepository struct {
	db *gorm.DB
}

func NewResumeAnalysisRepository(db *gorm.DB) ResumeAnalysisRepository {
	return &resumeAnalysisRepository{db: db}
}

// Create inserts the row in its own transaction; a failed insert leaves nothing behind.
func (r *resumeAnalysisRepository) Create(ctx context.Context, analysis *models.ResumeAnalysis) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(analysis).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create resume analysis: %w", err)
	}
	return nil
}

func (r *resumeAnalysisRepository) FindByID(ctx context.Context, id uint) (*models.ResumeAnalysis, error) {
	var analysis models.ResumeAnalysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resume analysis: %w", err)
	}
	return &analysis, nil
}

func (r *resumeAnalysisRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.ResumeAnalysis, error) {
	var analyses []models.ResumeAnalysis
	if len(ids) == 0 {
		return analyses, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("failed to find resume analyses: %w", err)
	}
	return analyses, nil
}

func (r *resumeAnalysisRepository) FindUnindexed(ctx context.Context, dueBy time.Time, limit int) ([]models.ResumeAnalysis, error) {
	var analyses []models.ResumeAnalysis
	q := r.db.WithContext(ctx).Where("indexed_at IS NULL")
	if !dueBy.IsZero() {
		q = q.Where("index_retry_at IS NULL OR index_retry_at <= ?", dueBy)
	}
	q = q.Order("index_attempts ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("failed to find unindexed analyses: %w", err)
	}
	return analyses, nil
}

func (r *resumeAnalysisRepository) MarkIndexed(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Where("id = ?", id).
		Update("indexed_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark analysis indexed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *resumeAnalysisRepository) RecordIndexFailure(ctx context.Context, id uint, retryAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"index_attempts": gorm.Expr("index_attempts + 1"),
			"index_retry_at": retryAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record index failure: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateResumeText backfills the extracted text of rows stored without it.
func (r *resumeAnalysisRepository) UpdateResumeText(ctx context.Context, id uint, text string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ResumeAnalysis{}).
		Where("id = ?", id).
		Update("resume_text", text)
	if result.Error != nil {
		return fmt.Errorf("failed to update resume text: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
