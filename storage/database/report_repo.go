package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Attendly/internal/model/dto"
)

type ReportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

type dailyRow struct {
	CheckInAt          *time.Time
	CheckOutAt         *time.Time
	Names              string
	EmployeeIdentifier string
}

func (r *ReportRepo) DailyRows(ctx context.Context, date time.Time) ([]dto.DailyReportRow, error) {
	var rows []dailyRow
	err := r.db.WithContext(ctx).
		Table("employees AS e").
		Select("e.names, e.employee_identifier, a.check_in_at, a.check_out_at").
		Joins("LEFT JOIN attendances AS a ON a.employee_id = e.id AND a.date = ?", datatypes.Date(date)).
		Order("e.employee_identifier ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load daily report rows: %w", err)
	}

	result := make([]dto.DailyReportRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, dto.DailyReportRow{
			EmployeeName:       row.Names,
			EmployeeIdentifier: row.EmployeeIdentifier,
			CheckInAt:          row.CheckInAt,
			CheckOutAt:         row.CheckOutAt,
			Status:             dto.ReportStatus(row.CheckInAt, row.CheckOutAt),
		})
	}
	return result, nil
}
