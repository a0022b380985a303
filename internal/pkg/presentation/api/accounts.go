package api

import (
	"net/http"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/application/accounts"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
	"github.com/team3/iot-shop/internal/pkg/presentation/api/auth"
)

func registerHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "register-user")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		var reg accounts.Registration
		if err = decodeBody(r.Body, &reg); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		_, err = app.Accounts.Register(ctx, reg)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusCreated, "User registered successfully", nil)
	}
}

func loginHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "login")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		var req loginRequest
		if err = decodeBody(r.Body, &req); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		session, err := app.Accounts.Login(ctx, req.Email, req.Password)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Login successful", session)
	}
}

func getUserDetailsHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-user-details")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		claims, err := auth.ClaimsFromContext(ctx)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		user, err := app.Accounts.GetUserDetails(ctx, claims.SubjectID, claims.Role)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "User details fetched successfully", user)
	}
}

func updateUserDetailsHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "update-user-details")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		claims, err := auth.ClaimsFromContext(ctx)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		var update accounts.UserUpdate
		if err = decodeBody(r.Body, &update); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		user, err := app.Accounts.UpdateUserDetails(ctx, claims.SubjectID, claims.Role, update)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "User details updated successfully", user)
	}
}
