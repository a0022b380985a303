package payments

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/payments"
	"github.com/team3/iot-shop/pkg/types"
)

const DefaultCurrency = "gbp"

type PaymentService interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (types.Checkout, error)
}

type CheckoutRequest struct {
	CustomerID string   `json:"customer_id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	OrderID    string   `json:"order_id"`
	Amount     *float64 `json:"amount"`
	SuccessURL string   `json:"success_url"`
	CancelURL  string   `json:"cancel_url"`
}

func (r CheckoutRequest) complete() bool {
	return r.CustomerID != "" && r.Email != "" && r.Name != "" && r.OrderID != "" &&
		r.Amount != nil && *r.Amount > 0 && r.SuccessURL != "" && r.CancelURL != ""
}

type service struct {
	repository repo.PaymentRepository
	processor  Processor
	currency   string
}

func New(r repo.PaymentRepository, p Processor, currency string) PaymentService {
	if currency == "" {
		currency = DefaultCurrency
	}

	return &service{
		repository: r,
		processor:  p,
		currency:   currency,
	}
}

func (s *service) CreateCheckout(ctx context.Context, req CheckoutRequest) (types.Checkout, error) {
	if !req.complete() {
		return types.Checkout{}, apperrors.Validation("Missing required fields")
	}

	logger := logging.GetLoggerFromContext(ctx).With().Str("customer_id", req.CustomerID).Str("order_id", req.OrderID).Logger()

	stripeCustomerID, err := s.stripeCustomer(ctx, req)
	if err != nil {
		return types.Checkout{}, err
	}

	session, err := s.processor.CreateCheckoutSession(ctx, SessionRequest{
		CustomerID:  stripeCustomerID,
		OrderID:     req.OrderID,
		Currency:    s.currency,
		UnitAmount:  int64(math.Round(*req.Amount * 100)),
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		Description: "Order " + req.OrderID,
	})
	if err != nil {
		return types.Checkout{}, apperrors.ExternalService("Error: " + err.Error())
	}

	paymentID := session.ID
	if session.PaymentIntentID != "" {
		paymentID = session.PaymentIntentID
	}

	payment := database.Payment{
		ID:              uuid.NewString(),
		CustomerID:      req.CustomerID,
		StripePaymentID: paymentID,
		StripeSessionID: session.ID,
		OrderID:         req.OrderID,
		Amount:          *req.Amount,
		Status:          database.PaymentStatusPending,
	}

	if err = s.repository.AddPayment(ctx, &payment); err != nil {
		logger.Error().Err(err).Str("session_id", session.ID).Msg("checkout session created but payment could not be recorded")
		return types.Checkout{}, apperrors.ExternalService("Error: " + err.Error())
	}

	logger.Info().Str("payment_id", payment.ID).Str("session_id", session.ID).Msg("checkout session created")

	return types.Checkout{PaymentID: payment.ID, CheckoutURL: session.URL}, nil
}

// stripeCustomer returns the processor's id for the customer, registering the
// customer locally and with the processor when needed.
func (s *service) stripeCustomer(ctx context.Context, req CheckoutRequest) (string, error) {
	customer, err := s.repository.GetCustomerByID(ctx, req.CustomerID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return "", fmt.Errorf("failed to fetch customer: %w", err)
	}

	if err == nil && customer.StripeCustomerID != "" {
		return customer.StripeCustomerID, nil
	}

	unknown := errors.Is(err, database.ErrNotFound)

	if unknown {
		owner, err := s.repository.GetCustomerByEmail(ctx, req.Email)
		if err == nil && owner.CustomerID != req.CustomerID {
			return "", apperrors.Conflict("Email already registered to another customer")
		}
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return "", fmt.Errorf("failed to fetch customer: %w", err)
		}
	}

	stripeCustomerID, perr := s.processor.CreateCustomer(ctx, req.Email, req.Name)
	if perr != nil {
		return "", apperrors.ExternalService("Error: " + perr.Error())
	}

	if unknown {
		err = s.repository.CreateCustomer(ctx, &database.Customer{
			CustomerID:       req.CustomerID,
			Name:             req.Name,
			Email:            req.Email,
			StripeCustomerID: stripeCustomerID,
		})
	} else {
		err = s.repository.SetStripeCustomerID(ctx, req.CustomerID, stripeCustomerID)
	}

	if errors.Is(err, database.ErrAlreadyExists) {
		return "", apperrors.Conflict("Email already registered to another customer")
	}
	if err != nil {
		return "", fmt.Errorf("failed to store customer: %w", err)
	}

	return stripeCustomerID, nil
}
