package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Attendly/internal/model/dto"
	"Attendly/pkg/errors"
)

type stubReports struct {
	rows  []dto.DailyReportRow
	asked []time.Time
}

func (s *stubReports) DailyRows(ctx context.Context, date time.Time) ([]dto.DailyReportRow, error) {
	s.asked = append(s.asked, date)
	return s.rows, nil
}

func TestReportRejectsMalformedDate(t *testing.T) {
	repo := &stubReports{}
	svc := NewReportService(repo)

	for _, date := range []string{"", "2026-2-7", "07-02-2026", "2026-02-30", "2026-02-07T00:00:00Z"} {
		_, err := svc.DailyPDF(context.Background(), date)
		assert.ErrorIs(t, err, errors.ReportDateInvalid, date)
	}
	assert.Empty(t, repo.asked)
}

func TestReportBuildsFiles(t *testing.T) {
	in := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	repo := &stubReports{rows: []dto.DailyReportRow{
		{EmployeeName: "Ana", EmployeeIdentifier: "EMP-001", CheckInAt: &in, Status: dto.ReportStatusPresent},
	}}
	svc := NewReportService(repo)

	pdf, err := svc.DailyPDF(context.Background(), "2026-02-07")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	xlsx, err := svc.DailyExcel(context.Background(), "2026-02-07")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx, []byte("PK")))

	require.Len(t, repo.asked, 2)
	assert.Equal(t, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC), repo.asked[0])
}
