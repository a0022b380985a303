package payments

import (
	"context"
	"errors"
	"testing"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"

	"github.com/matryer/is"
)

func TestCustomerWithStripeID(t *testing.T) {
	is, ctx, r := testSetupPaymentRepository(t)

	is.NoErr(r.CreateCustomer(ctx, &Customer{CustomerID: "cust-1", Name: "alice", Email: "alice@example.com"}))
	is.NoErr(r.SetStripeCustomerID(ctx, "cust-1", "cus_123"))

	c, err := r.GetCustomerByID(ctx, "cust-1")
	is.NoErr(err)
	is.Equal("cus_123", c.StripeCustomerID)

	err = r.SetStripeCustomerID(ctx, "cust-2", "cus_456")
	is.True(errors.Is(err, ErrNotFound))
}

func TestAddPayment(t *testing.T) {
	is, ctx, r := testSetupPaymentRepository(t)

	is.NoErr(r.CreateCustomer(ctx, &Customer{CustomerID: "cust-1", Name: "alice", Email: "alice@example.com"}))

	err := r.AddPayment(ctx, &Payment{ID: "pay-1", CustomerID: "cust-1", StripePaymentID: "cs_1", StripeSessionID: "cs_1", OrderID: "order-1", Amount: 12.5})
	is.NoErr(err)

	payments, err := r.GetPaymentsByCustomer(ctx, "cust-1")
	is.NoErr(err)
	is.Equal(1, len(payments))
	is.Equal(PaymentStatusPending, payments[0].Status)
	is.Equal(12.5, payments[0].Amount)

	err = r.AddPayment(ctx, &Payment{ID: "pay-2", CustomerID: "cust-1", StripePaymentID: "cs_1", StripeSessionID: "cs_1", OrderID: "order-1", Amount: 12.5})
	is.True(errors.Is(err, ErrAlreadyExists))
}

func testSetupPaymentRepository(t *testing.T) (*is.I, context.Context, PaymentRepository) {
	is := is.New(t)
	ctx := context.Background()

	db, err := Open(NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	return is, ctx, NewPaymentRepository(db)
}
