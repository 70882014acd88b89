package request

// CustomerRequest creates or updates a directory customer
type CustomerRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=255"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Address    *string `json:"address"`
	VAT        *string `json:"vat" binding:"omitempty,max=50"`
	Route      *string `json:"route" binding:"omitempty,max=100"`
	SalesRepID *uint   `json:"sales_rep_id"`
}

// SupplierRequest creates or updates a supplier
type SupplierRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=255"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=255"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Address       *string `json:"address"`
	VAT           *string `json:"vat" binding:"omitempty,max=50"`
	Notes         *string `json:"notes"`
}
