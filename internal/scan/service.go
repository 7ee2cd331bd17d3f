package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/logger"
	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"
)

// Catalog is the read side of the product store the resolver matches against
type Catalog interface {
	FetchAll(ctx context.Context) ([]models.Product, error)
}

// Service runs the consumer side of the pipeline: normalize, fetch, resolve
type Service struct {
	catalog Catalog
	log     *logger.StructuredLogger
	timeout time.Duration
}

// NewService creates a scan service over a catalog
func NewService(catalog Catalog, log *logger.StructuredLogger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{catalog: catalog, log: log.WithComponent("scan")}
}

// SetQueryTimeout bounds each catalog fetch. Zero disables the bound.
func (s *Service) SetQueryTimeout(d time.Duration) {
	s.timeout = d
}

// Process resolves one raw scan. It never returns an error: catalog failures
// surface as an Error outcome wrapping ErrCatalogUnavailable.
func (s *Service) Process(ctx context.Context, rawText, symbology string) Attempt {
	start := time.Now()
	normalized := Normalize(rawText)

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	snapshot, err := s.catalog.FetchAll(fetchCtx)
	if err != nil {
		attempt := Attempt{
			RawText:        rawText,
			Symbology:      symbology,
			NormalizedText: normalized,
			Candidate:      normalized,
			Resolution: Resolution{
				Outcome: Error,
				Err:     fmt.Errorf("%w: %v", ErrCatalogUnavailable, err),
			},
		}
		s.log.Error("Catalog fetch failed during scan", err, map[string]interface{}{
			"normalized": normalized,
			"symbology":  symbology,
		})
		return attempt
	}

	attempt := Resolve(normalized, snapshot)
	attempt.RawText = rawText
	attempt.Symbology = symbology

	fields := map[string]interface{}{
		"normalized":  normalized,
		"candidate":   attempt.Candidate,
		"outcome":     attempt.Resolution.Outcome.String(),
		"match":       attempt.Resolution.Match.String(),
		"catalog":     len(snapshot),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if attempt.DecodeErr != nil {
		fields["payload_error"] = attempt.DecodeErr.Error()
	}
	if p := attempt.Resolution.Product; p != nil {
		fields["product_id"] = p.ProductID
		fields["sku"] = p.SKU
	}
	s.log.Info("Scan processed", fields)

	return attempt
}
