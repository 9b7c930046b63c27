package repository

import (
	"context"
	"errors"
	"time"

	"github.com/omsapp/oms-backend/pkg/logger"
	"gorm.io/gorm"
)

// CatalogRepository is the CRUD surface shared by soft-deletable catalog entities.
// Reads never return inactive rows and every write on an inactive row reports
// gorm.ErrRecordNotFound.
type CatalogRepository[T any] interface {
	FindByID(ctx context.Context, id uint) (*T, error)
	FindAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	SoftDelete(ctx context.Context, id uint) error
}

type softDeleteStore[T any] struct {
	db         *gorm.DB
	entity     string
	primaryKey string
	orderBy    string
	active     func(*gorm.DB) *gorm.DB
	tombstone  func(now time.Time) map[string]interface{}
}

func (s *softDeleteStore[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	logger.Debug("Finding "+s.entity+" by ID in database", map[string]interface{}{
		s.primaryKey: id,
	})

	var entity T
	err := s.db.WithContext(ctx).
		Scopes(s.active).
		Where(s.primaryKey+" = ?", id).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug(s.entity+" not found in database", map[string]interface{}{
				s.primaryKey: id,
			})
		} else {
			logger.Error("Failed to find "+s.entity+" by ID in database", err, map[string]interface{}{
				s.primaryKey: id,
			})
		}
		return nil, err
	}

	return &entity, nil
}

func (s *softDeleteStore[T]) FindAll(ctx context.Context) ([]T, error) {
	logger.Debug("Listing " + s.entity + " rows from database")

	var entities []T
	if err := s.db.WithContext(ctx).Scopes(s.active).Order(s.orderBy).Find(&entities).Error; err != nil {
		logger.Error("Failed to list "+s.entity+" rows from database", err)
		return nil, err
	}

	logger.Debug(s.entity+" rows listed from database", map[string]interface{}{
		"count": len(entities),
	})
	return entities, nil
}

func (s *softDeleteStore[T]) Create(ctx context.Context, entity *T) error {
	logger.Debug("Creating " + s.entity + " in database")

	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		logger.Error("Failed to create "+s.entity+" in database", err)
		return err
	}
	return nil
}

// Update writes every column except the creation timestamp, and only while the row is active
func (s *softDeleteStore[T]) Update(ctx context.Context, entity *T) error {
	logger.Debug("Updating " + s.entity + " in database")

	result := s.db.WithContext(ctx).
		Model(entity).
		Scopes(s.active).
		Select("*").
		Omit("created_at").
		Updates(entity)
	if result.Error != nil {
		logger.Error("Failed to update "+s.entity+" in database", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *softDeleteStore[T]) SoftDelete(ctx context.Context, id uint) error {
	logger.Debug("Soft deleting "+s.entity+" in database", map[string]interface{}{
		s.primaryKey: id,
	})

	result := s.db.WithContext(ctx).
		Model(new(T)).
		Scopes(s.active).
		Where(s.primaryKey+" = ?", id).
		UpdateColumns(s.tombstone(time.Now()))
	if result.Error != nil {
		logger.Error("Failed to soft delete "+s.entity+" in database", result.Error, map[string]interface{}{
			s.primaryKey: id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug(s.entity+" soft deleted in database", map[string]interface{}{
		s.primaryKey: id,
	})
	return nil
}
