package repository

import "context"

// TransactionScope runs fn inside one database transaction. Returning an
// error from fn rolls back everything fn did through repos.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos TransactionalRepositories) error) error
}

// TransactionalRepositories are repositories bound to the same transaction.
type TransactionalRepositories interface {
	Lots() LotRepository
	Products() ProductRepository
	Customers() CustomerRepository
	Invoices() InvoiceRepository
	Purchases() PurchaseRepository
	// SavePoint and RollbackTo bracket a retryable step without losing the
	// rest of the transaction.
	SavePoint(name string) error
	RollbackTo(name string) error
}
