package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/repository"
	apperrors "github.com/omsapp/oms-backend/internal/errors"
	"github.com/omsapp/oms-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameRequired = errors.New("product name is required")
	ErrProductNameTooLong  = errors.New("product name is too long")
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrInvalidQuantity     = errors.New("quantity cannot be negative")
	ErrInvalidStatus       = errors.New("unknown product status")
	ErrProductDuplicate    = errors.New("product with the same name and price already exists")
)

// ProductInput is the writable part of a product. An empty status means "not supplied".
type ProductInput struct {
	ProductName   string
	Description   *string
	Price         float64
	Quantity      int
	ProductStatus model.ProductStatus
}

type ProductService interface {
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	// CreateProduct inserts a new product or merges the quantity into an active
	// product with the same normalized name and price. merged reports which happened.
	CreateProduct(ctx context.Context, input ProductInput) (product *model.Product, merged bool, err error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// mergeAttempts bounds the insert-then-merge retry when a concurrent create wins the race
const mergeAttempts = 2

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, bool, error) {
	input, err := normalizeProductInput(input)
	if err != nil {
		return nil, false, err
	}

	for attempt := 1; ; attempt++ {
		product, merged, err := s.createOrMerge(ctx, input)
		if err == nil {
			return product, merged, nil
		}
		if attempt < mergeAttempts && apperrors.IsDuplicateKey(err) {
			logger.Warn("Concurrent product create detected, retrying as merge", map[string]interface{}{
				"name_key": model.NormalizeName(input.ProductName),
				"price":    input.Price,
			})
			continue
		}
		if apperrors.IsDuplicateKey(err) {
			return nil, false, ErrProductDuplicate
		}
		return nil, false, fmt.Errorf("create product: %w", err)
	}
}

func (s *productService) createOrMerge(ctx context.Context, input ProductInput) (*model.Product, bool, error) {
	var (
		result *model.Product
		merged bool
	)

	err := s.productRepo.Transaction(ctx, func(tx repository.ProductRepository) error {
		existing, err := tx.FindMergeCandidate(ctx, model.NormalizeName(input.ProductName), input.Price)
		switch {
		case err == nil:
			if err := tx.IncrementQuantity(ctx, existing.ProductID, input.Quantity); err != nil {
				return err
			}
			if err := tx.PromoteIfRestocked(ctx, existing.ProductID); err != nil {
				return err
			}
			result, err = tx.FindByID(ctx, existing.ProductID)
			merged = true
			return err
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		status := input.ProductStatus
		if status == "" {
			status = model.DefaultStatus(input.Quantity)
		}
		product := &model.Product{
			ProductName:   input.ProductName,
			Description:   input.Description,
			Price:         input.Price,
			Quantity:      input.Quantity,
			ProductStatus: status,
		}
		if err := tx.Create(ctx, product); err != nil {
			return err
		}
		result = product
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if merged {
		logger.Info("Product merged into existing row", map[string]interface{}{
			"product_id": result.ProductID,
			"added":      input.Quantity,
			"quantity":   result.Quantity,
		})
	} else {
		logger.Info("Product created", map[string]interface{}{
			"product_id": result.ProductID,
			"status":     result.ProductStatus,
		})
	}
	return result, merged, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	input, err := normalizeProductInput(input)
	if err != nil {
		return nil, err
	}

	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.productRepo.ExistsActiveMergeKey(ctx, model.NormalizeName(input.ProductName), input.Price, id)
	if err != nil {
		return nil, fmt.Errorf("check product merge key: %w", err)
	}
	if taken {
		return nil, ErrProductDuplicate
	}

	product.ProductName = input.ProductName
	product.Description = input.Description
	product.Price = input.Price
	product.Quantity = input.Quantity
	if input.ProductStatus != "" {
		product.ProductStatus = input.ProductStatus
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrProductNotFound
		case apperrors.IsDuplicateKey(err):
			return nil, ErrProductDuplicate
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ProductID,
	})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.productRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func normalizeProductInput(input ProductInput) (ProductInput, error) {
	input.ProductName = strings.TrimSpace(input.ProductName)
	input.Description = trimOptional(input.Description)
	input.Price = roundPrice(input.Price)

	if input.ProductName == "" {
		return input, ErrProductNameRequired
	}
	if utf8.RuneCountInString(input.ProductName) > maxProductNameLength {
		return input, ErrProductNameTooLong
	}
	if input.Price <= 0 {
		return input, ErrInvalidPrice
	}
	if input.Quantity < 0 {
		return input, ErrInvalidQuantity
	}
	if input.ProductStatus != "" && !input.ProductStatus.Valid() {
		return input, ErrInvalidStatus
	}
	return input, nil
}
