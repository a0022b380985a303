package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/application/apiaccess"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
)

func createInstitutionHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-institution")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		var req institutionRequest
		if err = decodeBody(r.Body, &req); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		institution, err := app.Institutions.Create(ctx, req.Name, req.Email)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusCreated, "Institution created successfully", idResponse{ID: institution.ID})
	}
}

func listInstitutionsHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-institutions")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		institutions, err := app.Institutions.List(ctx)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Institutions retrieved successfully", institutionsResponse{Institutions: institutions})
	}
}

func getInstitutionHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-institution")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		institution, err := app.Institutions.Get(ctx, chi.URLParam(r, "institutionID"))
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Institution details retrieved successfully", institution)
	}
}

func generateTokenHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "generate-api-token")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		var req tokenRequest
		if err = decodeBody(r.Body, &req); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		days := apiaccess.DefaultExpirationDays
		if req.ExpirationDays != nil {
			days = *req.ExpirationDays
		}

		token, err := app.APIAccess.Generate(ctx, req.InstitutionID, days)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusCreated, "API token generated successfully", tokenCreatedResponse{
			AccessID:       token.AccessID,
			Token:          token.Token,
			ExpirationDate: token.ExpirationDate,
		})
	}
}

func listTokensHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-api-tokens")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		tokens, err := app.APIAccess.List(ctx, r.URL.Query().Get("institutionID"))
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "API tokens retrieved successfully", tokensResponse{Tokens: tokens})
	}
}

func revokeTokenHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "revoke-api-token")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		err = app.APIAccess.Revoke(ctx, chi.URLParam(r, "accessID"))
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "API token revoked successfully", nil)
	}
}
