package model

import "time"

// ReportType discriminates the payload carried by a Report.
type ReportType string

const (
	ReportDocumentSummary ReportType = "document_summary"
	ReportStorageUsage    ReportType = "storage_usage"
	ReportUserActivity    ReportType = "user_activity"
)

// Report is a generated system report. Exactly one payload pointer is set,
// chosen by Type, so rendering code can switch on Type instead of probing an
// untyped payload.
type Report struct {
	ID          string     `json:"id"`
	Type        ReportType `json:"type"`
	GeneratedBy string     `json:"generated_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	DocumentSummary *DocumentSummaryReport `json:"document_summary,omitempty"`
	StorageUsage    *StorageUsageReport    `json:"storage_usage,omitempty"`
	UserActivity    *UserActivityReport    `json:"user_activity,omitempty"`
}

// DocumentSummaryReport counts documents per lifecycle status and category.
type DocumentSummaryReport struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByCategory map[string]int `json:"by_category"`
}

// StorageUsageReport aggregates the papers table against the object store.
// OrphanedPapers counts paper records that carry no storage reference at all.
type StorageUsageReport struct {
	PaperCount     int   `json:"paper_count"`
	TotalBytes     int64 `json:"total_bytes"`
	OrphanedPapers int   `json:"orphaned_papers"`
}

// UserActivityReport counts documents per owning user.
type UserActivityReport struct {
	DocumentsByOwner map[string]int `json:"documents_by_owner"`
}
