package devices

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/telemetry"
)

func TestCreateAndGetDevice(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	d, err := svc.Create(ctx, NewDevice{Location: "Greenhouse", BatteryStatus: "90%", TransmissionInterval: 60})
	is.NoErr(err)
	is.True(d.DeviceID != "")

	fromDb, err := svc.Get(ctx, d.DeviceID)
	is.NoErr(err)
	is.Equal(d, fromDb)

	all, err := svc.List(ctx)
	is.NoErr(err)
	is.Equal(1, len(all))
}

func TestCreateDeviceRequiresAllFields(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	_, err := svc.Create(ctx, NewDevice{Location: "Greenhouse", BatteryStatus: "90%"})
	is.True(errors.Is(err, apperrors.ErrValidation))
	is.Equal("All fields are required", err.Error())
}

func TestGetUnknownDevice(t *testing.T) {
	is, ctx, svc, _ := testSetup(t)

	_, err := svc.Get(ctx, "nope")
	is.True(errors.Is(err, apperrors.ErrNotFound))
	is.Equal("IoT Device not found", err.Error())
}

func TestSeed(t *testing.T) {
	is, ctx, svc, r := testSetup(t)

	file := "deviceID;location;batteryStatus;transmissionInterval\n" +
		"station-01;Roof;100%;600\n" +
		"station-02;Garden;75%;\n"

	is.NoErr(Seed(ctx, r, strings.NewReader(file)))
	is.NoErr(Seed(ctx, r, strings.NewReader(file)))

	all, _ := svc.List(ctx)
	is.Equal(2, len(all))

	d, err := svc.Get(ctx, "station-02")
	is.NoErr(err)
	is.Equal(defaultTransmissionInterval, d.TransmissionInterval)
}

func TestSeedRejectsIncompleteRows(t *testing.T) {
	is, ctx, _, r := testSetup(t)

	file := "deviceID;location;batteryStatus;transmissionInterval\n" +
		"station-01;;100%;600\n"

	is.True(Seed(ctx, r, strings.NewReader(file)) != nil)
}

func testSetup(t *testing.T) (*is.I, context.Context, DeviceService, repo.TelemetryRepository) {
	is := is.New(t)
	ctx := context.Background()

	db, err := database.Open(database.NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	r := repo.NewTelemetryRepository(db)

	return is, ctx, New(r), r
}
