package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/application/catalog"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
	"github.com/team3/iot-shop/internal/pkg/presentation/api/auth"
)

func callerFromRequest(r *http.Request) (catalog.Caller, error) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		return catalog.Caller{}, err
	}
	return catalog.Caller{ID: claims.SubjectID, Role: claims.Role}, nil
}

func addProductHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "add-product")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		caller, err := callerFromRequest(r)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		var p catalog.NewProduct
		if err = decodeBody(r.Body, &p); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		product, err := app.Products.Add(ctx, caller, p)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusCreated, "Product added successfully", idResponse{ID: product.ID})
	}
}

func listProductsHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-products")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		page := queryInt(r, "page", 1)
		size := queryInt(r, "size", catalog.DefaultPageSize)

		result, err := app.Products.List(ctx, page, size)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Products fetched successfully", result)
	}
}

func getProductHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-product")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		product, err := app.Products.Get(ctx, chi.URLParam(r, "productID"))
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Product details fetched successfully", product)
	}
}

func updateProductHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "update-product")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		caller, err := callerFromRequest(r)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		var u catalog.ProductUpdate
		if err = decodeBody(r.Body, &u); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		_, err = app.Products.Update(ctx, caller, chi.URLParam(r, "productID"), u)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Product updated successfully", nil)
	}
}

func deleteProductHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "delete-product")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		caller, err := callerFromRequest(r)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		err = app.Products.Delete(ctx, caller, chi.URLParam(r, "productID"))
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Product deleted successfully", nil)
	}
}

func auditTrailHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "audit-trail")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		caller, err := callerFromRequest(r)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		entries, err := app.Products.AuditTrail(ctx, caller)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Audit trail fetched successfully", entries)
	}
}
