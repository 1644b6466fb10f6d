package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mjdocs/gateway/internal/models"
	"github.com/mjdocs/gateway/internal/repositories"
	"github.com/mjdocs/gateway/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct{}

func (fakePresigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://storage.test/" + key + "?sig=test", nil
}

type permissiveLimiter struct{}

func (permissiveLimiter) Allow(key string) (bool, int) { return true, 0 }

func newDocumentService(db *TestDB) *services.DocumentService {
	return services.NewDocumentService(
		repositories.NewDocumentRepository(db.DB),
		fakePresigner{},
		permissiveLimiter{},
		permissiveLimiter{},
		300*time.Second,
		testLogger(),
	)
}

func TestSignedURLFlow(t *testing.T) {
	db := suite(t)
	ctx := context.Background()

	docID, err := db.SeedDocument(ctx, "docs/handbook.pdf", "handbook.pdf", models.DocumentStatusActive, 0)
	require.NoError(t, err)

	svc := newDocumentService(db)

	result, err := svc.SignedURL(ctx, docID, "10.2.0.1")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/docs/handbook.pdf?sig=test", result.SignedURL)
	assert.Equal(t, "handbook.pdf", result.FileName)
	assert.Equal(t, 300, result.ExpiresIn)
}

func TestSignedURLFlow_WithdrawnDocument(t *testing.T) {
	db := suite(t)
	ctx := context.Background()

	docID, err := db.SeedDocument(ctx, "docs/old.pdf", "old.pdf", models.DocumentStatusWithdrawn, 0)
	require.NoError(t, err)

	svc := newDocumentService(db)

	_, err = svc.SignedURL(ctx, docID, "10.2.0.2")
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func TestSignedURLFlow_UnknownDocument(t *testing.T) {
	db := suite(t)
	svc := newDocumentService(db)

	_, err := svc.SignedURL(context.Background(), "3f2f9bfc-58e4-4b27-9e31-123456789abc", "10.2.0.3")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// Concurrent increments against the real store: the UPDATE ... RETURNING
// increment must not lose updates.
func TestIncrementDownload_ConcurrentAgainstStore(t *testing.T) {
	db := suite(t)
	ctx := context.Background()

	docID, err := db.SeedDocument(ctx, "docs/popular.pdf", "popular.pdf", models.DocumentStatusActive, 3)
	require.NoError(t, err)

	svc := newDocumentService(db)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.IncrementDownload(ctx, docID, "10.2.0.4")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	repo := repositories.NewDocumentRepository(db.DB)
	doc, err := repo.GetByID(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, int64(3+workers), doc.DownloadCount)
}
