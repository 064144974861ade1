package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DocumentStatus is the lifecycle state of a Document.
type DocumentStatus string

const (
	StatusActive   DocumentStatus = "active"
	StatusPending  DocumentStatus = "pending"
	StatusArchived DocumentStatus = "archived"
)

// DocumentMetadata holds free-form descriptive fields attached to a Document.
type DocumentMetadata struct {
	Priority string `json:"priority,omitempty"`
	Court    string `json:"court,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Document represents one archived case file. It is a pure domain model with
// no database-specific dependencies or tags; it can be used across layers
// (HTTP, service, storage) without coupling to persistence.
//
// RefCode places the document in the block/row/section hierarchy using the
// dotted form "A.1.1". A Document with zero Papers is "empty" and refuses
// bundling.
type Document struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	RefCode   string           `json:"ref_code"`
	Category  string           `json:"category"`
	Status    DocumentStatus   `json:"status"`
	Metadata  DocumentMetadata `json:"metadata"`
	OwnerID   string           `json:"owner_id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Papers    []Paper          `json:"papers,omitempty"`
}

// Paper represents one uploaded file record attached to a Document.
// StorageRef points into the object store; it is empty when no file was ever
// uploaded for this record.
type Paper struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	StorageRef string    `json:"storage_ref,omitempty"`
	FileType   string    `json:"file_type,omitempty"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// refCodeRegexp matches the block.row.section hierarchy form, e.g. "A.1.1".
var refCodeRegexp = regexp.MustCompile(`^[A-Za-z0-9]+\.[0-9]+\.[0-9]+$`)

// Validate checks the fields a caller must supply when creating or updating
// a Document. ID and timestamps are assigned by the service/database.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&d.RefCode, validation.Required, validation.Match(refCodeRegexp)),
		validation.Field(&d.Status, validation.Required, validation.In(StatusActive, StatusPending, StatusArchived)),
		validation.Field(&d.Category, validation.Length(0, 100)),
	)
}
