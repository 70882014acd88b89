package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func customerInput(req *request.CustomerRequest) *service.CustomerInput {
	return &service.CustomerInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		VAT:        req.VAT,
		Route:      req.Route,
		SalesRepID: req.SalesRepID,
	}
}

// List handles listing customers. Walk-in customers are included only with
// walk_in=true.
func (h *CustomerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	walkIn, _ := strconv.ParseBool(c.DefaultQuery("walk_in", "false"))

	result, err := h.customerService.ListCustomers(c.Request.Context(), pageParams(page, perPage), c.Query("search"), !walkIn)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Customers retrieved successfully", result)
}

// Create handles creating a directory customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req request.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), customerInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created successfully", customer)
}

// Get handles getting a single customer
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}

// Update handles updating a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}
	var req request.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, customerInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated successfully", customer)
}

// Delete handles deleting a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
