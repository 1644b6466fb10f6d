package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mjdocs/gateway/internal/database"
	"github.com/mjdocs/gateway/internal/models"
)

// DocumentRepository reads document metadata and owns the download counter.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(db *database.DB) *DocumentRepository {
	return &DocumentRepository{pool: db.Pool}
}

// GetByID fetches a document's metadata row.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, file_path, file_name, status, download_count, created_at, updated_at
		FROM documents WHERE id = $1
	`

	var doc models.Document
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.FilePath, &doc.FileName, &doc.Status,
		&doc.DownloadCount, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &doc, nil
}

// IncrementDownloadCount bumps the counter atomically in the database and
// returns the post-increment value. The increment happens in a single UPDATE
// so concurrent requests for the same document never lose updates.
func (r *DocumentRepository) IncrementDownloadCount(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE documents
		SET download_count = download_count + 1, updated_at = now()
		WHERE id = $1
		RETURNING download_count
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
