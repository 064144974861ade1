package repository

import (
	"context"

	"docarchive/internal/model"
)

// ReportRepository runs the aggregation queries behind system reports.
// Each method maps to one report type; all are read-only.
type ReportRepository interface {
	// DocumentSummary counts documents grouped by status and category.
	DocumentSummary(ctx context.Context) (*model.DocumentSummaryReport, error)

	// StorageUsage totals stored paper bytes and counts records that carry
	// no storage reference.
	StorageUsage(ctx context.Context) (*model.StorageUsageReport, error)

	// UserActivity counts documents per owning user.
	UserActivity(ctx context.Context) (*model.UserActivityReport, error)
}
