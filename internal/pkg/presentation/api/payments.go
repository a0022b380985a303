package api

import (
	"net/http"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/application/payments"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
)

func checkoutHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-checkout")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		var req payments.CheckoutRequest
		if err = decodeBody(r.Body, &req); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		checkout, err := app.Payments.CreateCheckout(ctx, req)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Checkout session created successfully", checkout)
	}
}
