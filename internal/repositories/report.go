package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.InterviewReport) error
	FindLatestByUserID(ctx context.Context, userID uint) (*models.InterviewReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.InterviewReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create interview report: %w", err)
	}
	return nil
}

func (r *reportRepository) FindLatestByUserID(ctx context.Context, userID uint) (*models.InterviewReport, error) {
	var report models.InterviewReport
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find interview report: %w", err)
	}
	return &report, nil
}
