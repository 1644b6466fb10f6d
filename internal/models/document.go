package models

import "time"

// Document availability statuses. Only active documents may be downloaded
// or counted.
const (
	DocumentStatusActive    = "active"
	DocumentStatusWithdrawn = "withdrawn"
)

// Document is a stored document's metadata row. FilePath is the blob-store
// key used when minting signed URLs; it is never returned to clients.
type Document struct {
	ID            string    `db:"id"`
	FilePath      string    `db:"file_path"`
	FileName      string    `db:"file_name"`
	Status        string    `db:"status"`
	DownloadCount int64     `db:"download_count"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Available reports whether the document may be served to clients.
func (d *Document) Available() bool {
	return d.Status == DocumentStatusActive
}
