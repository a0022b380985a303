package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
)

func TestStripeProcessor(t *testing.T) {
	is := is.New(t)

	var checkoutForm map[string][]string

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/customers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cus_123","object":"customer"}`))
	})
	mux.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		checkoutForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1","payment_intent":null}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	p := NewStripeProcessorWithBackend("sk_test_123", testBackend(server))
	ctx := context.Background()

	customerID, err := p.CreateCustomer(ctx, "alice@example.com", "alice")
	is.NoErr(err)
	is.Equal("cus_123", customerID)

	session, err := p.CreateCheckoutSession(ctx, SessionRequest{
		CustomerID:  customerID,
		OrderID:     "order-1",
		Currency:    "gbp",
		UnitAmount:  1999,
		SuccessURL:  "https://shop.example.com/success",
		CancelURL:   "https://shop.example.com/cancel",
		Description: "Order order-1",
	})
	is.NoErr(err)
	is.Equal("cs_test_1", session.ID)
	is.Equal("https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
	is.Equal("", session.PaymentIntentID)

	is.Equal("payment", checkoutForm["mode"][0])
	is.Equal("1999", checkoutForm["line_items[0][price_data][unit_amount]"][0])
	is.Equal("Order order-1", checkoutForm["line_items[0][price_data][product_data][name]"][0])
}

func TestStripeProcessorErrorMessage(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined."}}`))
	}))
	defer server.Close()

	p := NewStripeProcessorWithBackend("sk_test_123", testBackend(server))

	_, err := p.CreateCustomer(context.Background(), "alice@example.com", "alice")
	is.True(err != nil)
	is.Equal("Your card was declined.", err.Error())
}

func testBackend(server *httptest.Server) stripe.Backend {
	return stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		HTTPClient:        server.Client(),
		LeveledLogger:     &leveledLogger{logger: zerolog.Nop()},
		MaxNetworkRetries: stripe.Int64(0),
	})
}
