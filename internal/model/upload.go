package model

import "time"

// UploadStatus is set once at ingestion time.
type UploadStatus string

const (
	StatusUploaded UploadStatus = "uploaded"
	StatusFailed   UploadStatus = "failed"
)

// StatusForRows derives the ingestion status from the decoded row count.
func StatusForRows(n int) UploadStatus {
	if n > 0 {
		return StatusUploaded
	}
	return StatusFailed
}

// UploadRecord is one ingested spreadsheet file.
// The raw bytes live in object storage under StoragePath and are never held here.
type UploadRecord struct {
	ID           string                `json:"id"`
	OwnerID      string                `json:"owner_id"`
	Filename     string                `json:"filename"`
	OriginalName string                `json:"original_name"`
	StoragePath  string                `json:"storage_path"`
	Size         int64                 `json:"size"`
	ContentType  string                `json:"content_type"`
	Columns      []string              `json:"columns"`
	ColumnTypes  map[string]ScalarKind `json:"column_types"`
	Rows         []Row                 `json:"rows"`
	RowCount     int                   `json:"row_count"`
	Status       UploadStatus          `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Meta returns the row-less projection of the record.
func (u *UploadRecord) Meta() UploadMeta {
	return UploadMeta{
		ID:           u.ID,
		OwnerID:      u.OwnerID,
		Filename:     u.Filename,
		OriginalName: u.OriginalName,
		StoragePath:  u.StoragePath,
		Size:         u.Size,
		ContentType:  u.ContentType,
		RowCount:     u.RowCount,
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
	}
}

// UploadMeta is an UploadRecord without its decoded rows, used by listings and aggregation.
type UploadMeta struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"`
	Filename     string       `json:"filename"`
	OriginalName string       `json:"original_name"`
	StoragePath  string       `json:"storage_path"`
	Size         int64        `json:"size"`
	ContentType  string       `json:"content_type"`
	RowCount     int          `json:"row_count"`
	Status       UploadStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Successful reports whether the upload decoded at least one row.
func (m UploadMeta) Successful() bool {
	return m.RowCount > 0
}
