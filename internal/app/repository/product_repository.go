package repository

import (
	"context"
	"time"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductRepository interface {
	CatalogRepository[model.Product]
	FindMergeCandidate(ctx context.Context, nameKey string, price float64) (*model.Product, error)
	ExistsActiveMergeKey(ctx context.Context, nameKey string, price float64, excludeID uint) (bool, error)
	IncrementQuantity(ctx context.Context, productID uint, delta int) error
	PromoteIfRestocked(ctx context.Context, productID uint) error
	// Transaction runs fn against a repository bound to a single store transaction
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

type productRepository struct {
	*softDeleteStore[model.Product]
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{
		softDeleteStore: &softDeleteStore[model.Product]{
			db:         db,
			entity:     "product",
			primaryKey: "product_id",
			orderBy:    "product_id ASC",
			active:     activeProducts,
			tombstone: func(now time.Time) map[string]interface{} {
				return map[string]interface{}{"is_deleted": true, "updated_at": now}
			},
		},
	}
}

func activeProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

func (r *productRepository) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewProductRepository(tx))
	})
}

// FindMergeCandidate returns the active product sharing the normalized name and exact price
func (r *productRepository) FindMergeCandidate(ctx context.Context, nameKey string, price float64) (*model.Product, error) {
	logger.Debug("Finding merge candidate in database", map[string]interface{}{
		"name_key": nameKey,
		"price":    price,
	})

	var product model.Product
	err := r.db.WithContext(ctx).
		Scopes(activeProducts).
		Where("name_key = ? AND price = ?", nameKey, price).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ExistsActiveMergeKey(ctx context.Context, nameKey string, price float64, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Scopes(activeProducts).
		Where("name_key = ? AND price = ?", nameKey, price)
	if excludeID != 0 {
		query = query.Where("product_id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check product merge key in database", err, map[string]interface{}{
			"name_key": nameKey,
		})
		return false, err
	}
	return count > 0, nil
}

// IncrementQuantity adds delta in a single statement so concurrent merges never lose stock
func (r *productRepository) IncrementQuantity(ctx context.Context, productID uint, delta int) error {
	logger.Debug("Incrementing product quantity in database", map[string]interface{}{
		"product_id": productID,
		"delta":      delta,
	})

	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Scopes(activeProducts).
		Where("product_id = ?", productID).
		UpdateColumns(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		logger.Error("Failed to increment product quantity in database", result.Error, map[string]interface{}{
			"product_id": productID,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PromoteIfRestocked flips OutOfStock to Available once stock is positive. Other statuses are left alone.
func (r *productRepository) PromoteIfRestocked(ctx context.Context, productID uint) error {
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ? AND product_status = ? AND quantity > 0", productID, model.StatusOutOfStock).
		UpdateColumn("product_status", model.StatusAvailable).Error
	if err != nil {
		logger.Error("Failed to promote restocked product in database", err, map[string]interface{}{
			"product_id": productID,
		})
	}
	return err
}
