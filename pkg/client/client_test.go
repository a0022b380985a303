package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestGetDevice(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/iot-devices/dev-1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(deviceResponse))
	}))
	defer server.Close()

	device, err := NewTelemetryClient(server.URL).GetDevice(context.Background(), "dev-1")
	is.NoErr(err)
	is.Equal(device.DeviceID, "dev-1")
	is.Equal(device.TransmissionInterval, 60)
}

func TestGetUnknownDevice(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"IoT Device not found","status":"failure"}`))
	}))
	defer server.Close()

	_, err := NewTelemetryClient(server.URL).GetDevice(context.Background(), "dev-2")
	is.True(errors.Is(err, ErrNotFound))
}

func TestFindObservations(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/observations")
		is.Equal(r.Header.Get("Authorization"), "Bearer token-1")
		is.Equal(r.URL.Query().Get("deviceID"), "dev-1")
		is.Equal(r.URL.Query().Get("startDate"), "2024-05-01T00:00:00Z")
		is.Equal(r.URL.Query().Get("endDate"), "")
		w.Write([]byte(observationsResponse))
	}))
	defer server.Close()

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	result, err := NewTelemetryClient(server.URL).FindObservations(context.Background(), "token-1", ObservationFilter{DeviceID: "dev-1", StartDate: &from})
	is.NoErr(err)
	is.Equal(len(result), 1)
	is.Equal(result[0].Temperature, 12.5)
	is.True(result[0].WindSpeed == nil)
}

func TestFindObservationsWithInvalidToken(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Invalid API token.","status":"failure"}`))
	}))
	defer server.Close()

	_, err := NewTelemetryClient(server.URL).FindObservations(context.Background(), "nope", ObservationFilter{})
	is.True(errors.Is(err, ErrForbidden))
}

const deviceResponse string = `{
	"message": "IoT Device details retrieved successfully",
	"status": "success",
	"data": {"deviceID": "dev-1", "location": "roof", "batteryStatus": "full", "transmissionInterval": 60}
}`

const observationsResponse string = `{
	"message": "Observations retrieved successfully",
	"status": "success",
	"data": {
		"observations": [
			{"observationID": "obs-1", "deviceID": "dev-1", "timestamp": "2024-05-01T10:00:00Z", "temperature": 12.5, "humidity": 80, "windSpeed": null, "precipitation": null, "locationCoordinates": null}
		]
	}
}`
