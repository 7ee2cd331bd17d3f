package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kasukabe-Labs/inventory-mobile-app/internal/models"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a catalog id does not exist
var ErrProductNotFound = errors.New("product not found")

type ProductRepository struct {
	db *Database
}

func NewProductRepository(db *Database) *ProductRepository {
	return &ProductRepository{db: db}
}

// FetchAll returns the full catalog snapshot, newest products first
func (r *ProductRepository) FetchAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch product %s: %w", id, err)
	}
	return &product, nil
}

// GetByIDs loads products keeping the order of ids; unknown ids are reported
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	byID := make(map[string]models.Product, len(rows))
	for _, p := range rows {
		byID[p.ProductID] = p
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		products = append(products, p)
	}
	return products, nil
}

// UpdateBarcodeURL records where a product's barcode image is stored
func (r *ProductRepository) UpdateBarcodeURL(ctx context.Context, id, url string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("barcode_url", url)
	if result.Error != nil {
		return fmt.Errorf("failed to update barcode for %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return nil
}
