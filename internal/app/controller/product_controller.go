package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/service"
	apperrors "github.com/omsapp/oms-backend/internal/errors"
	"github.com/omsapp/oms-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

type ProductRequest struct {
	ProductID     *uint   `json:"productId"`
	ProductName   string  `json:"productName"`
	Description   *string `json:"description"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	ProductStatus string  `json:"productStatus"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		ProductName:   r.ProductName,
		Description:   r.Description,
		Price:         r.Price,
		Quantity:      r.Quantity,
		ProductStatus: model.ProductStatus(r.ProductStatus),
	}
}

// GetProducts lists products that are not deleted
// GET /api/product
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	products, err := ctrl.productService.GetAllProducts(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/product/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct answers 201 for a new row and 200 when stock was merged into an existing one
// POST /api/product
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	product, merged, err := ctrl.productService.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		ctrl.respondError(c, err, "create product")
		return
	}

	if merged {
		c.JSON(http.StatusOK, product)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// PUT /api/product/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}
	if req.ProductID != nil && *req.ProductID != id {
		apperrors.BadRequest(c, apperrors.ValidationIDMismatch, "Product ID mismatch")
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req.toInput())
	if err != nil {
		ctrl.respondError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DELETE /api/product/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		ctrl.respondError(c, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Product deleted successfully",
		"productId": id,
	})
}

func (ctrl *ProductController) respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Product not found")
	case errors.Is(err, service.ErrProductNameRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Product name is required")
	case errors.Is(err, service.ErrProductNameTooLong):
		apperrors.BadRequest(c, apperrors.ValidationTooLong, "Product name must be at most 150 characters")
	case errors.Is(err, service.ErrInvalidPrice):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Price must be greater than 0")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "Quantity cannot be negative")
	case errors.Is(err, service.ErrInvalidStatus):
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Product status must be Available, OutOfStock or Discontinued")
	case errors.Is(err, service.ErrProductDuplicate):
		apperrors.BadRequest(c, apperrors.ResourceAlreadyExists, "A product with the same name and price already exists")
	default:
		middleware.GetLoggerFromContext(c).Error("Product request failed", err, map[string]interface{}{
			"action": action,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, action)
	}
}
