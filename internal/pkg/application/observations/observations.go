package observations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/team3/iot-shop/internal/pkg/application/apiaccess"
	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/application/events"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/telemetry"
	"github.com/team3/iot-shop/pkg/types"
)

type ObservationService interface {
	Add(ctx context.Context, o NewObservation) (types.Observation, error)
	Query(ctx context.Context, token string, q Query) ([]types.Observation, error)
	Mock(ctx context.Context, token string, count int) (int, error)
}

type NewObservation struct {
	DeviceID            string   `json:"deviceID"`
	Timestamp           string   `json:"timestamp"`
	Temperature         *float64 `json:"temperature"`
	Humidity            *float64 `json:"humidity"`
	WindSpeed           *float64 `json:"windSpeed"`
	Precipitation       *float64 `json:"precipitation"`
	LocationCoordinates *string  `json:"locationCoordinates"`
}

// Query filters observations. Empty fields match everything.
type Query struct {
	DeviceID  string
	StartDate string
	EndDate   string
}

type service struct {
	repository repo.TelemetryRepository
	tokens     apiaccess.TokenValidator
	sender     events.EventSender
	now        func() time.Time

	mu     sync.Mutex
	random *rand.Rand
}

func New(r repo.TelemetryRepository, tokens apiaccess.TokenValidator, sender events.EventSender) ObservationService {
	return &service{
		repository: r,
		tokens:     tokens,
		sender:     sender,
		now:        time.Now,
		random:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *service) Add(ctx context.Context, o NewObservation) (types.Observation, error) {
	_, err := s.repository.GetDeviceByID(ctx, o.DeviceID)
	if errors.Is(err, database.ErrNotFound) {
		return types.Observation{}, apperrors.NotFound("IoT Device not registered")
	}
	if err != nil {
		return types.Observation{}, fmt.Errorf("failed to fetch device: %w", err)
	}

	if o.Temperature == nil || o.Humidity == nil {
		return types.Observation{}, apperrors.Validation("Validation error: Missing required fields")
	}

	timestamp := s.now().UTC()
	if o.Timestamp != "" {
		timestamp, err = ParseTimestamp(o.Timestamp)
		if err != nil {
			return types.Observation{}, apperrors.Validation("Validation error: Invalid timestamp")
		}
	}

	observation := database.Observation{
		ObservationID:       "obs-" + uuid.NewString(),
		DeviceID:            o.DeviceID,
		Timestamp:           timestamp,
		Temperature:         *o.Temperature,
		Humidity:            *o.Humidity,
		WindSpeed:           o.WindSpeed,
		Precipitation:       o.Precipitation,
		LocationCoordinates: o.LocationCoordinates,
	}

	if err = s.repository.AddObservation(ctx, &observation); err != nil {
		return types.Observation{}, fmt.Errorf("failed to store observation: %w", err)
	}

	result := ToObservation(observation)

	if s.sender != nil {
		err = s.sender.Send(ctx, types.ObservationCreated{Observation: result, Timestamp: s.now().UTC()})
		if err != nil {
			logger := logging.GetLoggerFromContext(ctx)
			logger.Warn().Err(err).Str("observation_id", result.ObservationID).Msg("failed to notify subscribers")
		}
	}

	return result, nil
}

func (s *service) Query(ctx context.Context, token string, q Query) ([]types.Observation, error) {
	if _, err := s.tokens.Validate(ctx, token); err != nil {
		return nil, err
	}

	filter := repo.ObservationFilter{DeviceID: q.DeviceID}

	if q.StartDate != "" {
		from, err := ParseTimestamp(q.StartDate)
		if err != nil {
			return nil, apperrors.Validation("Invalid startDate")
		}
		filter.From = &from
	}

	if q.EndDate != "" {
		to, err := ParseTimestamp(q.EndDate)
		if err != nil {
			return nil, apperrors.Validation("Invalid endDate")
		}
		filter.To = &to
	}

	fromDb, err := s.repository.QueryObservations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}

	return lo.Map(fromDb, func(o database.Observation, _ int) types.Observation {
		return ToObservation(o)
	}), nil
}

// Mock stores count synthetic observations for every registered device in
// one transaction and returns the number of observations created.
func (s *service) Mock(ctx context.Context, token string, count int) (int, error) {
	if _, err := s.tokens.Validate(ctx, token); err != nil {
		return 0, err
	}

	if count <= 0 {
		return 0, apperrors.Validation("Invalid count. Must be a positive integer.")
	}

	devices, err := s.repository.GetDevices(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list devices: %w", err)
	}

	if len(devices) == 0 {
		return 0, apperrors.NotFound("No IoT devices found in the database.")
	}

	now := s.now().UTC()
	batch := make([]database.Observation, 0, len(devices)*count)

	s.mu.Lock()
	for _, d := range devices {
		for i := 0; i < count; i++ {
			batch = append(batch, s.randomObservation(d.DeviceID, now))
		}
	}
	s.mu.Unlock()

	if err = s.repository.AddObservations(ctx, batch); err != nil {
		return 0, fmt.Errorf("failed to store mock observations: %w", err)
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Info().Int("count", len(batch)).Int("devices", len(devices)).Msg("generated mock observations")

	return len(batch), nil
}

// randomObservation must be called with s.mu held.
func (s *service) randomObservation(deviceID string, now time.Time) database.Observation {
	uniform := func(min, max float64, decimals int) float64 {
		v := min + s.random.Float64()*(max-min)
		p := math.Pow(10, float64(decimals))
		return math.Round(v*p) / p
	}

	windSpeed := uniform(0, 20, 2)
	precipitation := uniform(0, 10, 2)
	coordinates := fmt.Sprintf("%s, %s",
		formatCoordinate(uniform(-90, 90, 6)),
		formatCoordinate(uniform(-180, 180, 6)),
	)

	return database.Observation{
		ObservationID:       "obs-" + uuid.NewString(),
		DeviceID:            deviceID,
		Timestamp:           now.Add(-time.Duration(s.random.Intn(1441)) * time.Minute),
		Temperature:         uniform(-10, 40, 2),
		Humidity:            uniform(0, 100, 2),
		WindSpeed:           &windSpeed,
		Precipitation:       &precipitation,
		LocationCoordinates: &coordinates,
	}
}

func formatCoordinate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func ToObservation(o database.Observation) types.Observation {
	return types.Observation{
		ObservationID:       o.ObservationID,
		DeviceID:            o.DeviceID,
		Timestamp:           o.Timestamp,
		Temperature:         o.Temperature,
		Humidity:            o.Humidity,
		WindSpeed:           o.WindSpeed,
		Precipitation:       o.Precipitation,
		LocationCoordinates: o.LocationCoordinates,
	}
}
