package service

import (
	"context"
	"sync"

	"Attendly/internal/model/dto"
	"Attendly/internal/report"
	"Attendly/internal/repository"
	"Attendly/pkg/errors"
	"Attendly/storage/database"
	"Attendly/utils"
)

var (
	reportService *ReportService
	reportOnce    sync.Once
)

func Report() *ReportService {
	reportOnce.Do(func() {
		reportService = NewReportService(database.NewReportRepo(database.DB()))
	})
	return reportService
}

type ReportService struct {
	repo repository.ReportRepository
}

func NewReportService(repo repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// DailyRows date 必须是严格的 YYYY-MM-DD
func (s *ReportService) DailyRows(ctx context.Context, date string) ([]dto.DailyReportRow, error) {
	day, err := utils.ParseDate(date)
	if err != nil || utils.FormatDate(day) != date {
		return nil, errors.ReportDateInvalid
	}
	return s.repo.DailyRows(ctx, day)
}

func (s *ReportService) DailyPDF(ctx context.Context, date string) ([]byte, error) {
	rows, err := s.DailyRows(ctx, date)
	if err != nil {
		return nil, err
	}
	return report.BuildPDF(date, rows)
}

func (s *ReportService) DailyExcel(ctx context.Context, date string) ([]byte, error) {
	rows, err := s.DailyRows(ctx, date)
	if err != nil {
		return nil, err
	}
	return report.BuildExcel(date, rows)
}
