package payments

import "context"

//go:generate moq -rm -out processor_mock.go . Processor

// Processor is the external payment provider.
type Processor interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error)
}

type SessionRequest struct {
	CustomerID  string
	OrderID     string
	Currency    string
	UnitAmount  int64
	SuccessURL  string
	CancelURL   string
	Description string
}

type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
}
