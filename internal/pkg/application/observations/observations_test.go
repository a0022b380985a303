package observations

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/team3/iot-shop/internal/pkg/application/apiaccess"
	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/application/events"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/telemetry"
	"github.com/team3/iot-shop/pkg/types"
)

const validToken = "0b6c3cba-5d0c-4a45-9d1f-4cdb0b6f3b0e"

func TestAddObservation(t *testing.T) {
	is, ctx, svc, sender := testSetup(t, "dev-1")

	o, err := svc.Add(ctx, NewObservation{
		DeviceID:    "dev-1",
		Timestamp:   "2024-03-01T12:30:00",
		Temperature: f(21.5),
		Humidity:    f(40),
	})
	is.NoErr(err)
	is.True(strings.HasPrefix(o.ObservationID, "obs-"))
	is.True(o.Timestamp.Equal(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)))
	is.True(o.WindSpeed == nil)

	is.Equal(1, len(sender.SendCalls()))
	is.Equal(o.ObservationID, sender.SendCalls()[0].Message.Observation.ObservationID)
}

func TestAddObservationWithoutTimestampUsesNow(t *testing.T) {
	is, ctx, svc, _ := testSetup(t, "dev-1")

	before := time.Now().UTC().Add(-time.Second)
	o, err := svc.Add(ctx, NewObservation{DeviceID: "dev-1", Temperature: f(1), Humidity: f(2)})
	is.NoErr(err)
	is.True(o.Timestamp.After(before))
}

func TestAddObservationChecksDeviceFirst(t *testing.T) {
	is, ctx, svc, sender := testSetup(t, "dev-1")

	_, err := svc.Add(ctx, NewObservation{DeviceID: "dev-2"})
	is.True(errors.Is(err, apperrors.ErrNotFound))
	is.Equal("IoT Device not registered", err.Error())

	_, err = svc.Add(ctx, NewObservation{DeviceID: "dev-1", Temperature: f(20)})
	is.True(errors.Is(err, apperrors.ErrValidation))
	is.Equal("Validation error: Missing required fields", err.Error())

	_, err = svc.Add(ctx, NewObservation{DeviceID: "dev-1", Temperature: f(20), Humidity: f(30), Timestamp: "yesterday"})
	is.True(errors.Is(err, apperrors.ErrValidation))

	is.Equal(0, len(sender.SendCalls()))
}

func TestAddObservationIgnoresNotificationFailures(t *testing.T) {
	is, ctx, svc, sender := testSetup(t, "dev-1")

	sender.SendFunc = func(context.Context, types.ObservationCreated) error {
		return errors.New("subscriber is down")
	}

	_, err := svc.Add(ctx, NewObservation{DeviceID: "dev-1", Temperature: f(1), Humidity: f(2)})
	is.NoErr(err)
}

func TestQueryFiltersByDeviceAndDates(t *testing.T) {
	is, ctx, svc, _ := testSetup(t, "dev-1", "dev-2")

	add := func(deviceID, ts string) {
		_, err := svc.Add(ctx, NewObservation{DeviceID: deviceID, Timestamp: ts, Temperature: f(1), Humidity: f(2)})
		is.NoErr(err)
	}

	add("dev-1", "2024-03-01T10:00:00Z")
	add("dev-1", "2024-03-02T10:00:00Z")
	add("dev-2", "2024-03-02T11:00:00Z")
	add("dev-1", "2024-03-03T10:00:00Z")

	all, err := svc.Query(ctx, validToken, Query{})
	is.NoErr(err)
	is.Equal(4, len(all))

	dev1, err := svc.Query(ctx, validToken, Query{DeviceID: "dev-1", StartDate: "2024-03-02", EndDate: "2024-03-03T10:00:00"})
	is.NoErr(err)
	is.Equal(2, len(dev1))
	is.True(dev1[0].Timestamp.Before(dev1[1].Timestamp))

	_, err = svc.Query(ctx, validToken, Query{StartDate: "last week"})
	is.True(errors.Is(err, apperrors.ErrValidation))
}

func TestQueryRequiresValidToken(t *testing.T) {
	is, ctx, svc, _ := testSetup(t, "dev-1")

	_, err := svc.Query(ctx, "bogus", Query{})
	is.True(errors.Is(err, apperrors.ErrPermission))
	is.Equal("Invalid API token.", err.Error())

	_, err = svc.Mock(ctx, "bogus", 0)
	is.True(errors.Is(err, apperrors.ErrPermission))
}

func TestMockGeneratesCountPerDevice(t *testing.T) {
	is, ctx, svc, _ := testSetup(t, "dev-1", "dev-2", "dev-3")

	n, err := svc.Mock(ctx, validToken, 5)
	is.NoErr(err)
	is.Equal(15, n)

	all, err := svc.Query(ctx, validToken, Query{})
	is.NoErr(err)
	is.Equal(15, len(all))

	now := time.Now().UTC()
	for _, o := range all {
		is.True(o.Temperature >= -10 && o.Temperature <= 40)
		is.True(o.Humidity >= 0 && o.Humidity <= 100)
		is.True(*o.WindSpeed >= 0 && *o.WindSpeed <= 20)
		is.True(*o.Precipitation >= 0 && *o.Precipitation <= 10)
		is.Equal(o.Temperature, math.Round(o.Temperature*100)/100)
		is.True(!o.Timestamp.After(now))
		is.True(o.Timestamp.After(now.Add(-1441 * time.Minute)))

		coords := strings.Split(*o.LocationCoordinates, ", ")
		is.Equal(2, len(coords))
		lat, err := strconv.ParseFloat(coords[0], 64)
		is.NoErr(err)
		is.True(lat >= -90 && lat <= 90)
	}
}

func TestMockValidation(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	_, err := svc.Mock(ctx, validToken, 0)
	is.True(errors.Is(err, apperrors.ErrValidation))
	is.Equal("Invalid count. Must be a positive integer.", err.Error())

	_, err = svc.Mock(ctx, validToken, 3)
	is.True(errors.Is(err, apperrors.ErrNotFound))
	is.Equal("No IoT devices found in the database.", err.Error())
}

func TestParseTimestamp(t *testing.T) {
	is := is.New(t)

	ts, err := ParseTimestamp("2024-03-01T12:00:00+02:00")
	is.NoErr(err)
	is.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), ts)

	ts, err = ParseTimestamp("2024-03-01T12:00:00.250000")
	is.NoErr(err)
	is.Equal(time.Date(2024, 3, 1, 12, 0, 0, 250000000, time.UTC), ts)

	ts, err = ParseTimestamp("2024-03-01")
	is.NoErr(err)
	is.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ts)

	_, err = ParseTimestamp("01/03/2024")
	is.True(errors.Is(err, ErrInvalidTimestamp))
}

func f(v float64) *float64 {
	return &v
}

func testSetup(t *testing.T, deviceIDs ...string) (*is.I, context.Context, ObservationService, *events.EventSenderMock) {
	is := is.New(t)
	ctx := context.Background()

	db, err := database.Open(database.NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	r := repo.NewTelemetryRepository(db)
	for _, id := range deviceIDs {
		is.NoErr(r.CreateDevice(ctx, &database.IoTDevice{DeviceID: id, Location: "Roof", BatteryStatus: "100%", TransmissionInterval: 60}))
	}

	tokens := &apiaccess.TokenValidatorMock{
		ValidateFunc: func(ctx context.Context, token string) (string, error) {
			if token == validToken {
				return "inst-1", nil
			}
			return "", apperrors.Permission("Invalid API token.")
		},
	}

	sender := &events.EventSenderMock{
		SendFunc: func(context.Context, types.ObservationCreated) error {
			return nil
		},
	}

	svc := &service{
		repository: r,
		tokens:     tokens,
		sender:     sender,
		now:        time.Now,
		random:     rand.New(rand.NewSource(1)),
	}

	return is, ctx, svc, sender
}
