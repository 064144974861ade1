package postgres

import (
	"context"
	"database/sql"

	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// ReportPostgres runs the report aggregation queries against PostgreSQL.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

// DocumentSummary counts documents grouped by status and category.
func (r *ReportPostgres) DocumentSummary(ctx context.Context) (*model.DocumentSummaryReport, error) {
	const q = `SELECT status, COALESCE(category, ''), COUNT(*) FROM documents GROUP BY status, category`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rep := &model.DocumentSummaryReport{
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for rows.Next() {
		var status, category string
		var count int
		if err := rows.Scan(&status, &category, &count); err != nil {
			return nil, err
		}
		rep.Total += count
		rep.ByStatus[status] += count
		rep.ByCategory[category] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rep, nil
}

// StorageUsage totals stored bytes and counts papers without a storage reference.
func (r *ReportPostgres) StorageUsage(ctx context.Context) (*model.StorageUsageReport, error) {
	const q = `
		SELECT COUNT(*),
		       COALESCE(SUM(size), 0),
		       COUNT(*) FILTER (WHERE storage_ref IS NULL)
		FROM papers
	`
	var rep model.StorageUsageReport
	if err := r.db.QueryRowContext(ctx, q).Scan(&rep.PaperCount, &rep.TotalBytes, &rep.OrphanedPapers); err != nil {
		return nil, err
	}
	return &rep, nil
}

// UserActivity counts documents per owning user.
func (r *ReportPostgres) UserActivity(ctx context.Context) (*model.UserActivityReport, error) {
	const q = `SELECT owner_id, COUNT(*) FROM documents GROUP BY owner_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rep := &model.UserActivityReport{DocumentsByOwner: make(map[string]int)}
	for rows.Next() {
		var owner string
		var count int
		if err := rows.Scan(&owner, &count); err != nil {
			return nil, err
		}
		rep.DocumentsByOwner[owner] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rep, nil
}
