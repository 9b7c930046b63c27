package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omsapp/oms-backend/internal/app/service"
	apperrors "github.com/omsapp/oms-backend/internal/errors"
	"github.com/omsapp/oms-backend/internal/middleware"
)

type CustomerController struct {
	customerService service.CustomerService
}

func NewCustomerController(customerService service.CustomerService) *CustomerController {
	return &CustomerController{customerService: customerService}
}

type CustomerRequest struct {
	CustomerCode string  `json:"customerCode"`
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
}

func (r CustomerRequest) toInput() service.CustomerInput {
	return service.CustomerInput{
		CustomerCode: r.CustomerCode,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Address:      r.Address,
	}
}

// GetCustomers lists active customers ordered by name
// GET /api/customers
func (ctrl *CustomerController) GetCustomers(c *gin.Context) {
	customers, err := ctrl.customerService.GetAllCustomers(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, "list customers")
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GET /api/customers/:id
func (ctrl *CustomerController) GetCustomerByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	customer, err := ctrl.customerService.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "get customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// POST /api/customers
func (ctrl *CustomerController) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	customer, err := ctrl.customerService.CreateCustomer(c.Request.Context(), req.toInput())
	if err != nil {
		ctrl.respondError(c, err, "create customer")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// PUT /api/customers/:id
func (ctrl *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body")
		return
	}

	customer, err := ctrl.customerService.UpdateCustomer(c.Request.Context(), id, req.toInput())
	if err != nil {
		ctrl.respondError(c, err, "update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DELETE /api/customers/:id
func (ctrl *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		ctrl.respondError(c, err, "delete customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Customer deleted successfully",
	})
}

func (ctrl *CustomerController) respondError(c *gin.Context, err error, action string) {
	var tooLong *service.FieldTooLongError
	switch {
	case errors.Is(err, service.ErrCustomerNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Customer not found")
	case errors.Is(err, service.ErrCustomerFieldsRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "CustomerCode and Name are required")
	case errors.Is(err, service.ErrCustomerNameTooLong):
		apperrors.BadRequest(c, apperrors.ValidationTooLong, "Name must be at most 100 characters")
	case errors.As(err, &tooLong):
		apperrors.BadRequest(c, apperrors.ValidationTooLong, fmt.Sprintf("%s must be at most %d characters", tooLong.Field, tooLong.Max))
	case errors.Is(err, service.ErrCustomerInvalidEmail):
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid email format")
	case errors.Is(err, service.ErrCustomerCodeExists):
		apperrors.BadRequest(c, apperrors.ResourceAlreadyExists, "Customer code already exists")
	default:
		middleware.GetLoggerFromContext(c).Error("Customer request failed", err, map[string]interface{}{
			"action": action,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, action)
	}
}
