package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
)

type fakeCatalog struct {
	products []models.Product
	err      error
	calls    int
}

func (f *fakeCatalog) FetchAll(ctx context.Context) ([]models.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func TestServiceProcessFound(t *testing.T) {
	catalog := &fakeCatalog{products: sareeCatalog()}
	svc := NewService(catalog, nil)

	attempt := svc.Process(context.Background(), " SR1001|2500|50\n", "CODE_128")

	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, " SR1001|2500|50\n", attempt.RawText)
	assert.Equal(t, "SR1001|2500|50", attempt.NormalizedText)
	assert.Equal(t, "CODE_128", attempt.Symbology)
	assert.Equal(t, Found, attempt.Resolution.Outcome)
	assert.Equal(t, "p1", attempt.Resolution.Product.ProductID)
}

func TestServiceProcessNotFound(t *testing.T) {
	svc := NewService(&fakeCatalog{products: sareeCatalog()}, nil)

	attempt := svc.Process(context.Background(), "ZZZ999", "")
	assert.Equal(t, NotFound, attempt.Resolution.Outcome)
	assert.NoError(t, attempt.Resolution.Err)
}

func TestServiceProcessCatalogFailure(t *testing.T) {
	svc := NewService(&fakeCatalog{err: errors.New("connection refused")}, nil)

	attempt := svc.Process(context.Background(), "SR1001|2500|50", "")

	assert.Equal(t, Error, attempt.Resolution.Outcome)
	require.Error(t, attempt.Resolution.Err)
	assert.True(t, errors.Is(attempt.Resolution.Err, ErrCatalogUnavailable))
	assert.Contains(t, attempt.Resolution.Err.Error(), "connection refused")
	assert.Nil(t, attempt.Resolution.Product)
}

func TestServiceProcessEmptyCatalog(t *testing.T) {
	svc := NewService(&fakeCatalog{}, nil)

	attempt := svc.Process(context.Background(), "SR1001|2500|50", "")
	assert.Equal(t, NotFound, attempt.Resolution.Outcome)
}

type blockingCatalog struct{}

func (blockingCatalog) FetchAll(ctx context.Context) ([]models.Product, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestServiceProcessQueryTimeout(t *testing.T) {
	svc := NewService(blockingCatalog{}, nil)
	svc.SetQueryTimeout(20 * time.Millisecond)

	start := time.Now()
	attempt := svc.Process(context.Background(), "SR1001|2500|50", "")

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, Error, attempt.Resolution.Outcome)
	assert.True(t, errors.Is(attempt.Resolution.Err, ErrCatalogUnavailable))
	assert.Contains(t, attempt.Resolution.Err.Error(), context.DeadlineExceeded.Error())
}
