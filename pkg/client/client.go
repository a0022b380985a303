package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
	"github.com/team3/iot-shop/pkg/types"
)

var ErrNotFound = errors.New("not found")
var ErrForbidden = errors.New("access denied")

// TelemetryClient reads devices and observations from a running shop.
// Observation queries are authorized by an institution's API token.
type TelemetryClient interface {
	GetDevice(ctx context.Context, deviceID string) (types.Device, error)
	FindObservations(ctx context.Context, token string, filter ObservationFilter) ([]types.Observation, error)
}

type ObservationFilter struct {
	DeviceID  string
	StartDate *time.Time
	EndDate   *time.Time
}

type telemetryClient struct {
	url        string
	httpClient http.Client
}

var tracer = otel.Tracer("iot-shop-client")

func NewTelemetryClient(shopUrl string) TelemetryClient {
	return &telemetryClient{
		url: strings.TrimSuffix(shopUrl, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (tc *telemetryClient) GetDevice(ctx context.Context, deviceID string) (types.Device, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-device")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetLoggerFromContext(ctx)
	log.Debug().Msgf("looking up device %s", deviceID)

	device := types.Device{}
	err = tc.get(ctx, "/iot-devices/"+url.PathEscape(deviceID), "", &device)

	return device, err
}

func (tc *telemetryClient) FindObservations(ctx context.Context, token string, filter ObservationFilter) ([]types.Observation, error) {
	var err error
	ctx, span := tracer.Start(ctx, "find-observations")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	params := url.Values{}
	if filter.DeviceID != "" {
		params.Set("deviceID", filter.DeviceID)
	}
	if filter.StartDate != nil {
		params.Set("startDate", filter.StartDate.UTC().Format(time.RFC3339))
	}
	if filter.EndDate != nil {
		params.Set("endDate", filter.EndDate.UTC().Format(time.RFC3339))
	}

	path := "/observations"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	result := struct {
		Observations []types.Observation `json:"observations"`
	}{}

	err = tc.get(ctx, path, token, &result)
	if err != nil {
		return nil, err
	}

	return result.Observations, nil
}

// get unwraps the data member of the response envelope into v.
func (tc *telemetryClient) get(ctx context.Context, path, token string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tc.url+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	env := struct {
		Message string          `json:"message"`
		Status  string          `json:"status"`
		Data    json.RawMessage `json:"data"`
	}{}

	if err = json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, env.Message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, env.Message)
	default:
		return fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, env.Message)
	}

	if err = json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}

	return nil
}
