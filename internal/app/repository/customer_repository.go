package repository

import (
	"context"
	"time"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/pkg/logger"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	CatalogRepository[model.Customer]
	ExistsActiveCode(ctx context.Context, code string, excludeID uint) (bool, error)
}

type customerRepository struct {
	*softDeleteStore[model.Customer]
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{
		softDeleteStore: &softDeleteStore[model.Customer]{
			db:         db,
			entity:     "customer",
			primaryKey: "id",
			orderBy:    "name ASC",
			active:     activeCustomers,
			tombstone: func(now time.Time) map[string]interface{} {
				return map[string]interface{}{"is_active": false, "updated_at": now}
			},
		},
	}
}

func activeCustomers(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// ExistsActiveCode reports whether another active customer already uses code
func (r *customerRepository) ExistsActiveCode(ctx context.Context, code string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Scopes(activeCustomers).
		Where("customer_code = ?", code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check customer code in database", err, map[string]interface{}{
			"customer_code": code,
		})
		return false, err
	}
	return count > 0, nil
}
