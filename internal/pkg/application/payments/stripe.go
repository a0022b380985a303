package payments

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type stripeProcessor struct {
	api *client.API
}

// NewStripeProcessor returns a Processor backed by the Stripe API. Requests
// are never retried.
func NewStripeProcessor(secretKey string, logger zerolog.Logger) Processor {
	return NewStripeProcessorWithBackend(secretKey, stripe.GetBackendWithConfig(
		stripe.APIBackend,
		&stripe.BackendConfig{
			LeveledLogger:     &leveledLogger{logger: logger},
			MaxNetworkRetries: stripe.Int64(0),
		},
	))
}

func NewStripeProcessorWithBackend(secretKey string, backend stripe.Backend) Processor {
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})

	return &stripeProcessor{api: api}
}

func (p *stripeProcessor) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
		Name:   stripe.String(name),
	}

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", stripeError(err)
	}

	return c.ID, nil
}

func (p *stripeProcessor) CreateCheckoutSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Customer:           stripe.String(req.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, stripeError(err)
	}

	session := Session{
		ID:  s.ID,
		URL: s.URL,
	}

	if s.PaymentIntent != nil {
		session.PaymentIntentID = s.PaymentIntent.ID
	}

	return session, nil
}

// stripeError keeps the human readable part of errors returned by the API.
func stripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return errors.New(se.Msg)
	}
	return err
}

// leveledLogger forwards the stripe client logs to zerolog
type leveledLogger struct {
	logger zerolog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}
