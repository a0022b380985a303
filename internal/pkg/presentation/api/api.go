package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/presentation/api/auth"
)

var tracer = otel.Tracer("iot-shop/api")

func RegisterHandlers(ctx context.Context, router *chi.Mux, app *application.App, authenticator *auth.Authenticator) *chi.Mux {

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	requireAuth := authenticator.RequireAuthentication()

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", registerHandler(app))
		r.Post("/login", loginHandler(app))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/user-details", getUserDetailsHandler(app))
			r.Put("/user-details", updateUserDetailsHandler(app))
		})
	})

	router.Route("/products", func(r chi.Router) {
		r.Get("/", listProductsHandler(app))
		r.Get("/{productID}", getProductHandler(app))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/audit-log", auditTrailHandler(app))
			r.Post("/", addProductHandler(app))
			r.Put("/{productID}", updateProductHandler(app))
			r.Delete("/{productID}", deleteProductHandler(app))
		})
	})

	router.Route("/institutions", func(r chi.Router) {
		r.Post("/", createInstitutionHandler(app))
		r.Get("/", listInstitutionsHandler(app))
		r.Get("/{institutionID}", getInstitutionHandler(app))
	})

	router.Route("/iot-devices", func(r chi.Router) {
		r.Post("/", createDeviceHandler(app))
		r.Get("/", listDevicesHandler(app))
		r.Get("/{deviceID}", getDeviceHandler(app))
	})

	router.Route("/api-access", func(r chi.Router) {
		r.Post("/", generateTokenHandler(app))
		r.Get("/", listTokensHandler(app))
		r.Delete("/{accessID}", revokeTokenHandler(app))
	})

	router.Route("/observations", func(r chi.Router) {
		r.Post("/", addObservationHandler(app))
		r.Get("/", queryObservationsHandler(app))
		r.Get("/mock", mockObservationsHandler(app))
		r.With(requireAPIToken(app)).Get("/events", app.Stream.ServeHTTP)
	})

	router.Post("/payment/checkout", checkoutHandler(app))

	return router
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
