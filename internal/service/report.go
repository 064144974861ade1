package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// ErrUnknownReportType is returned for a report type outside the known set.
var ErrUnknownReportType = fmt.Errorf("unknown report type")

// ReportService generates typed system reports for administrators.
type ReportService interface {
	// Generate runs the aggregation for the given report type and returns a
	// Report with exactly one payload set.
	Generate(ctx context.Context, typ model.ReportType, generatedBy string) (*model.Report, error)
}

type reportService struct {
	reports repository.ReportRepository
}

// NewReportService constructs a new ReportService.
func NewReportService(reports repository.ReportRepository) ReportService {
	return &reportService{reports: reports}
}

func (s *reportService) Generate(ctx context.Context, typ model.ReportType, generatedBy string) (*model.Report, error) {
	rep := &model.Report{
		ID:          uuid.New().String(),
		Type:        typ,
		GeneratedBy: generatedBy,
		CreatedAt:   time.Now().UTC(),
	}

	switch typ {
	case model.ReportDocumentSummary:
		payload, err := s.reports.DocumentSummary(ctx)
		if err != nil {
			return nil, err
		}
		rep.DocumentSummary = payload
	case model.ReportStorageUsage:
		payload, err := s.reports.StorageUsage(ctx)
		if err != nil {
			return nil, err
		}
		rep.StorageUsage = payload
	case model.ReportUserActivity:
		payload, err := s.reports.UserActivity(ctx)
		if err != nil {
			return nil, err
		}
		rep.UserActivity = payload
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportType, typ)
	}
	return rep, nil
}
