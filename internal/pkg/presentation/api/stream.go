package api

import (
	"net/http"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
)

// requireAPIToken only lets requests with a valid institution API token
// through. Browsers cannot set headers on an EventSource, so the token may
// also be passed in the token query parameter.
func requireAPIToken(app *application.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "check-api-token")
			_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

			token := r.Header.Get("Authorization")
			if token == "" {
				token = r.URL.Query().Get("token")
			}

			institutionID, err := app.APIAccess.Validate(ctx, token)
			tracing.RecordAnyErrorAndEndSpan(err, span)

			if err != nil {
				writeError(w, requestLogger, err)
				return
			}

			logger := logging.GetLoggerFromContext(r.Context()).With().Str("institution_id", institutionID).Logger()
			next.ServeHTTP(w, r.WithContext(logging.NewContextWithLogger(r.Context(), logger)))
		})
	}
}
