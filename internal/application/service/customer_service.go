package service

import (
	"context"
	"strings"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/sangkips/stockbook-api/pkg/pagination"
)

// CustomerService manages the customer directory. Walk-in customers are
// created by sales and are only listed here.
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CustomerInput represents the create and update customer input
type CustomerInput struct {
	Name       *string
	Phone      *string
	Email      *string
	Address    *string
	VAT        *string
	Route      *string
	SalesRepID *uint
}

// CreateCustomer adds a directory customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CustomerInput) (*entity.Customer, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewBadRequestError("Customer name is required")
	}
	name := strings.TrimSpace(*input.Name)

	existing, err := s.customerRepo.FindDirectoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A customer with this name already exists")
	}

	customer := &entity.Customer{
		Name:        name,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		VAT:         input.VAT,
		Route:       input.Route,
		SalesRepID:  input.SalesRepID,
		IsDirectory: true,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uint) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers; directoryOnly hides walk-ins
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string, directoryOnly bool) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search, directoryOnly)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(customers, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateCustomer updates a customer. Saving a walk-in through here promotes it
// into the directory.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uint, input *CustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewBadRequestError("Customer name is required")
		}
		customer.Name = name
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.VAT != nil {
		customer.VAT = input.VAT
	}
	if input.Route != nil {
		customer.Route = input.Route
	}
	if input.SalesRepID != nil {
		customer.SalesRepID = input.SalesRepID
	}
	if !customer.IsDirectory {
		customer.IsDirectory = true
		customer.WalkInKey = nil
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer soft-deletes a customer; invoices keep their snapshot.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uint) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customerRepo.Delete(ctx, id)
}

// SupplierService handles supplier-related operations
type SupplierService struct {
	supplierRepo repository.SupplierRepository
}

// NewSupplierService creates a new supplier service
func NewSupplierService(supplierRepo repository.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// SupplierInput represents the create and update supplier input
type SupplierInput struct {
	Name          *string
	ContactPerson *string
	Phone         *string
	Email         *string
	Address       *string
	VAT           *string
	Notes         *string
}

// CreateSupplier creates a new supplier
func (s *SupplierService) CreateSupplier(ctx context.Context, input *SupplierInput) (*entity.Supplier, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewBadRequestError("Supplier name is required")
	}
	supplier := &entity.Supplier{
		Name:          strings.TrimSpace(*input.Name),
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		VAT:           input.VAT,
		Notes:         input.Notes,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// GetSupplier retrieves a supplier by ID
func (s *SupplierService) GetSupplier(ctx context.Context, id uint) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}
	return supplier, nil
}

// ListSuppliers lists suppliers
func (s *SupplierService) ListSuppliers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Supplier], error) {
	suppliers, total, err := s.supplierRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(suppliers, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// UpdateSupplier updates a supplier
func (s *SupplierService) UpdateSupplier(ctx context.Context, id uint, input *SupplierInput) (*entity.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewBadRequestError("Supplier name is required")
		}
		supplier.Name = name
	}
	if input.ContactPerson != nil {
		supplier.ContactPerson = input.ContactPerson
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Email != nil {
		supplier.Email = input.Email
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}
	if input.VAT != nil {
		supplier.VAT = input.VAT
	}
	if input.Notes != nil {
		supplier.Notes = input.Notes
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier deletes a supplier
func (s *SupplierService) DeleteSupplier(ctx context.Context, id uint) error {
	if _, err := s.GetSupplier(ctx, id); err != nil {
		return err
	}
	return s.supplierRepo.Delete(ctx, id)
}
