package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"

	"github.com/matryer/is"
)

func TestCreateAndGetDevices(t *testing.T) {
	is, ctx, r := testSetupTelemetryRepository(t)

	is.NoErr(r.CreateDevice(ctx, device("dev-1")))
	is.NoErr(r.CreateDevice(ctx, device("dev-2")))

	devices, err := r.GetDevices(ctx)
	is.NoErr(err)
	is.Equal(2, len(devices))

	d, err := r.GetDeviceByID(ctx, "dev-2")
	is.NoErr(err)
	is.Equal("Greenhouse", d.Location)
	is.Equal(300, d.TransmissionInterval)

	_, err = r.GetDeviceByID(ctx, "dev-3")
	is.True(errors.Is(err, ErrNotFound))
}

func TestObservationRequiresDevice(t *testing.T) {
	is, ctx, r := testSetupTelemetryRepository(t)

	err := r.AddObservation(ctx, observation("obs-1", "dev-1", time.Now()))
	is.True(err != nil)
}

func TestQueryObservations(t *testing.T) {
	is, ctx, r := testSetupTelemetryRepository(t)

	is.NoErr(r.CreateDevice(ctx, device("dev-1")))
	is.NoErr(r.CreateDevice(ctx, device("dev-2")))

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}

	is.NoErr(r.AddObservation(ctx, observation("obs-1", "dev-1", day(1))))
	is.NoErr(r.AddObservation(ctx, observation("obs-2", "dev-1", day(2))))
	is.NoErr(r.AddObservation(ctx, observation("obs-3", "dev-2", day(3))))
	is.NoErr(r.AddObservation(ctx, observation("obs-4", "dev-1", day(4))))

	all, err := r.QueryObservations(ctx, ObservationFilter{})
	is.NoErr(err)
	is.Equal(4, len(all))
	is.Equal("obs-1", all[0].ObservationID)
	is.Equal("obs-4", all[3].ObservationID)

	forDevice, err := r.QueryObservations(ctx, ObservationFilter{DeviceID: "dev-1"})
	is.NoErr(err)
	is.Equal(3, len(forDevice))

	from, to := day(2), day(4)
	inRange, err := r.QueryObservations(ctx, ObservationFilter{DeviceID: "dev-1", From: &from, To: &to})
	is.NoErr(err)
	is.Equal(2, len(inRange))
	is.Equal("obs-2", inRange[0].ObservationID)
	is.Equal("obs-4", inRange[1].ObservationID)
}

func TestAddObservationsIsAllOrNothing(t *testing.T) {
	is, ctx, r := testSetupTelemetryRepository(t)

	is.NoErr(r.CreateDevice(ctx, device("dev-1")))

	batch := []Observation{}
	for i := 0; i < 10; i++ {
		batch = append(batch, *observation(fmt.Sprintf("obs-%d", i), "dev-1", time.Now()))
	}
	is.NoErr(r.AddObservations(ctx, batch))

	broken := []Observation{
		*observation("obs-a", "dev-1", time.Now()),
		*observation("obs-b", "dev-unknown", time.Now()),
	}
	is.True(r.AddObservations(ctx, broken) != nil)

	all, err := r.QueryObservations(ctx, ObservationFilter{})
	is.NoErr(err)
	is.Equal(10, len(all))
}

func TestSeedSkipsKnownDevices(t *testing.T) {
	is, ctx, r := testSetupTelemetryRepository(t)

	is.NoErr(r.CreateDevice(ctx, device("dev-1")))

	seeded := device("dev-1")
	seeded.Location = "Roof"

	is.NoErr(r.Seed(ctx, []IoTDevice{*seeded, *device("dev-2")}))

	devices, _ := r.GetDevices(ctx)
	is.Equal(2, len(devices))

	d, _ := r.GetDeviceByID(ctx, "dev-1")
	is.Equal("Greenhouse", d.Location)
}

func TestLatestObservation(t *testing.T) {
	is, ctx, r := testSetupTelemetryRepository(t)

	is.NoErr(r.CreateDevice(ctx, device("dev-1")))

	_, err := r.LatestObservation(ctx, "dev-1")
	is.True(errors.Is(err, ErrNotFound))

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	is.NoErr(r.AddObservation(ctx, observation("obs-2", "dev-1", base.Add(time.Hour))))
	is.NoErr(r.AddObservation(ctx, observation("obs-1", "dev-1", base)))

	latest, err := r.LatestObservation(ctx, "dev-1")
	is.NoErr(err)
	is.Equal("obs-2", latest.ObservationID)
}

func device(id string) *IoTDevice {
	return &IoTDevice{DeviceID: id, Location: "Greenhouse", BatteryStatus: "95%", TransmissionInterval: 300}
}

func observation(id, deviceID string, ts time.Time) *Observation {
	return &Observation{ObservationID: id, DeviceID: deviceID, Timestamp: ts.UTC(), Temperature: 21.5, Humidity: 40}
}

func testSetupTelemetryRepository(t *testing.T) (*is.I, context.Context, TelemetryRepository) {
	is := is.New(t)
	ctx := context.Background()

	db, err := Open(NewSQLiteConnector(ctx, ""))
	is.NoErr(err)

	return is, ctx, NewTelemetryRepository(db)
}
