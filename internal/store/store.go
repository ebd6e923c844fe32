package store

import (
	"context"
	"time"

	"github.com/creditdesk/cibil-extract/internal/model"
)

// UploadStatus tracks an upload through the pipeline.
type UploadStatus string

const (
	UploadStatusQueued     UploadStatus = "queued"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusComplete   UploadStatus = "complete"
	UploadStatusFailed     UploadStatus = "failed"
)

// Upload is one submitted PDF, keyed by an opaque token handed back to the
// client.
type Upload struct {
	Token     string       `json:"token"`
	FileName  string       `json:"file_name"`
	Status    UploadStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	ReportID  string       `json:"report_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Report is one stored extraction: the full JSON payload plus the key fields
// it is deduplicated and queried by.
type Report struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	ReportType    string             `json:"report_type"`
	ControlNumber string             `json:"control_number"`
	Score         string             `json:"score"`
	ReportDate    string             `json:"report_date"`
	Payload       model.StoredReport `json:"payload"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaveStatus is the outcome of a SaveReport call.
type SaveStatus string

const (
	SaveStatusStored    SaveStatus = "stored"
	SaveStatusDuplicate SaveStatus = "duplicate"
)

// SaveResult reports whether the payload was stored or rejected as a
// duplicate of an existing (report type, control number) pair.
type SaveResult struct {
	Status   SaveStatus `json:"status"`
	ReportID string     `json:"report_id"`
}

// ReportFilter specifies criteria for listing reports.
type ReportFilter struct {
	UserID     string `json:"user_id,omitempty"`
	ReportType string `json:"report_type,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// DirectoryEntry is one known user in the lookup directory.
type DirectoryEntry struct {
	UserID       string `json:"user_id"`
	MobileNumber string `json:"mobile_number"`
}

// Store defines the persistence interface for the extraction pipeline. A
// saved report is written twice: the JSON payload verbatim, and a relational
// projection of its collections for querying. Saving an existing
// (report type, control number) pair with overwrite replaces both.
type Store interface {
	// Uploads
	CreateUpload(ctx context.Context, fileName string) (*Upload, error)
	UpdateUploadStatus(ctx context.Context, token string, status UploadStatus, errMsg string) error
	AttachUploadReport(ctx context.Context, token, reportID string) error
	GetUpload(ctx context.Context, token string) (*Upload, error)

	// Reports
	SaveReport(ctx context.Context, payload *model.StoredReport, reportType string, overwrite bool) (*SaveResult, error)
	GetReport(ctx context.Context, reportID string) (*Report, error)
	FindReport(ctx context.Context, reportType, controlNumber string) (*Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]Report, error)

	// Directory
	GetUserByID(ctx context.Context, userID string) (*DirectoryEntry, error)
	GetUserByMobile(ctx context.Context, mobileNumber string) (*DirectoryEntry, error)
	InsertUser(ctx context.Context, userID, mobileNumber string) error
	UpdateUserMobile(ctx context.Context, userID, mobileNumber string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
