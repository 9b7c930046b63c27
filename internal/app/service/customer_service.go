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
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrCustomerFieldsRequired = errors.New("customer code and name are required")
	ErrCustomerNameTooLong    = errors.New("customer name is too long")
	ErrCustomerInvalidEmail   = errors.New("invalid customer email")
	ErrCustomerCodeExists     = errors.New("customer code already exists")
	ErrCustomerFieldTooLong   = errors.New("customer field is too long")
)

// FieldTooLongError names the input field that exceeds its column width
type FieldTooLongError struct {
	Field string
	Max   int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("%s exceeds %d characters", e.Field, e.Max)
}

func (e *FieldTooLongError) Is(target error) bool {
	return target == ErrCustomerFieldTooLong
}

// CustomerInput is the writable part of a customer
type CustomerInput struct {
	CustomerCode string
	Name         string
	Email        *string
	Phone        *string
	Address      *string
}

type CustomerService interface {
	GetAllCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomerByID(ctx context.Context, id uint) (*model.Customer, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id uint, input CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) GetAllCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customerRepo.FindAll(ctx)
}

func (s *customerService) GetCustomerByID(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, input CustomerInput) (*model.Customer, error) {
	input, err := normalizeCustomerInput(input)
	if err != nil {
		return nil, err
	}

	if err := s.ensureCodeAvailable(ctx, input.CustomerCode, 0); err != nil {
		return nil, err
	}

	customer := &model.Customer{
		CustomerCode: input.CustomerCode,
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		IsActive:     true,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, ErrCustomerCodeExists
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	logger.Info("Customer created", map[string]interface{}{
		"customer_id":   customer.ID,
		"customer_code": customer.CustomerCode,
	})
	return customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uint, input CustomerInput) (*model.Customer, error) {
	input, err := normalizeCustomerInput(input)
	if err != nil {
		return nil, err
	}

	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureCodeAvailable(ctx, input.CustomerCode, id); err != nil {
		return nil, err
	}

	customer.CustomerCode = input.CustomerCode
	customer.Name = input.Name
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrCustomerNotFound
		case apperrors.IsDuplicateKey(err):
			return nil, ErrCustomerCodeExists
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}

	logger.Info("Customer updated", map[string]interface{}{
		"customer_id": customer.ID,
	})
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uint) error {
	if err := s.customerRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("delete customer: %w", err)
	}

	logger.Info("Customer deactivated", map[string]interface{}{
		"customer_id": id,
	})
	return nil
}

func (s *customerService) ensureCodeAvailable(ctx context.Context, code string, excludeID uint) error {
	taken, err := s.customerRepo.ExistsActiveCode(ctx, code, excludeID)
	if err != nil {
		return fmt.Errorf("check customer code: %w", err)
	}
	if taken {
		return ErrCustomerCodeExists
	}
	return nil
}

func normalizeCustomerInput(input CustomerInput) (CustomerInput, error) {
	input.CustomerCode = strings.TrimSpace(input.CustomerCode)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = trimOptional(input.Email)
	input.Phone = trimOptional(input.Phone)
	input.Address = trimOptional(input.Address)

	if input.CustomerCode == "" || input.Name == "" {
		return input, ErrCustomerFieldsRequired
	}
	if utf8.RuneCountInString(input.Name) > maxCustomerNameLength {
		return input, ErrCustomerNameTooLong
	}
	if err := checkCustomerLengths(input); err != nil {
		return input, err
	}
	if input.Email != nil && !isValidEmail(*input.Email) {
		return input, ErrCustomerInvalidEmail
	}
	return input, nil
}

func checkCustomerLengths(input CustomerInput) error {
	fields := []struct {
		name  string
		value *string
		max   int
	}{
		{name: "customerCode", value: &input.CustomerCode, max: maxCustomerCodeLength},
		{name: "email", value: input.Email, max: maxCustomerEmailLength},
		{name: "phone", value: input.Phone, max: maxCustomerPhoneLength},
		{name: "address", value: input.Address, max: maxCustomerAddressLength},
	}
	for _, f := range fields {
		if f.value != nil && utf8.RuneCountInString(*f.value) > f.max {
			return &FieldTooLongError{Field: f.name, Max: f.max}
		}
	}
	return nil
}
