package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/application/devices"
	"github.com/team3/iot-shop/internal/pkg/application/observations"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
)

func createDeviceHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "create-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		var d devices.NewDevice
		if err = decodeBody(r.Body, &d); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		device, err := app.Devices.Create(ctx, d)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusCreated, "IoT Device created successfully", deviceCreatedResponse{DeviceID: device.DeviceID})
	}
}

func listDevicesHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "list-devices")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		result, err := app.Devices.List(ctx)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "IoT Devices retrieved successfully", devicesResponse{Devices: result})
	}
}

func getDeviceHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-device")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		device, err := app.Devices.Get(ctx, chi.URLParam(r, "deviceID"))
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "IoT Device details retrieved successfully", device)
	}
}

func addObservationHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "add-observation")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		var o observations.NewObservation
		if err = decodeBody(r.Body, &o); err != nil {
			writeError(w, requestLogger, err)
			return
		}

		observation, err := app.Observations.Add(ctx, o)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusCreated, "Observation added successfully", observationCreatedResponse{ObservationID: observation.ObservationID})
	}
}

func queryObservationsHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "query-observations")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		q := observations.Query{
			DeviceID:  r.URL.Query().Get("deviceID"),
			StartDate: r.URL.Query().Get("startDate"),
			EndDate:   r.URL.Query().Get("endDate"),
		}

		result, err := app.Observations.Query(ctx, r.Header.Get("Authorization"), q)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusOK, "Observations retrieved successfully", observationsResponse{Observations: result})
	}
}

func mockObservationsHandler(app *application.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "mock-observations")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, requestLogger := tracing.AddTraceIDToLoggerAndStoreInContext(span, ctx)

		// a count that does not parse is rejected by the service as non positive
		count := queryInt(r, "count", 0)

		generated, err := app.Observations.Mock(ctx, r.Header.Get("Authorization"), count)
		if err != nil {
			writeError(w, requestLogger, err)
			return
		}

		writeResponse(w, http.StatusCreated, "Mock observations generated successfully.", mockResponse{GeneratedObservations: generated})
	}
}
