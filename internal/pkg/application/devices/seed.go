package devices

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/telemetry"
)

const defaultTransmissionInterval = 3600

// Seed registers the devices listed in a semicolon separated file with the
// header deviceID;location;batteryStatus;transmissionInterval. Devices that
// are already known are left as they are.
func Seed(ctx context.Context, r repo.TelemetryRepository, reader io.Reader) error {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = ';'

	rows, err := csvReader.ReadAll()
	if err != nil {
		return err
	}

	records, err := getRecordsFromRows(rows)
	if err != nil {
		return err
	}

	log := logging.GetLoggerFromContext(ctx)
	log.Info().Int("count", len(records)).Msg("loaded devices from file")

	return r.Seed(ctx, records)
}

func newDeviceRecord(r []string) (database.IoTDevice, error) {
	if len(r) < 4 {
		return database.IoTDevice{}, fmt.Errorf("expected 4 columns but found %d", len(r))
	}

	strToInt := func(str string, def int) int {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil && n > 0 {
			return n
		}
		return def
	}

	d := database.IoTDevice{
		DeviceID:             strings.TrimSpace(r[0]),
		Location:             strings.TrimSpace(r[1]),
		BatteryStatus:        strings.TrimSpace(r[2]),
		TransmissionInterval: strToInt(r[3], defaultTransmissionInterval),
	}

	if d.DeviceID == "" || d.Location == "" || d.BatteryStatus == "" {
		return database.IoTDevice{}, fmt.Errorf("row with device %q is missing required values", d.DeviceID)
	}

	return d, nil
}

func getRecordsFromRows(rows [][]string) ([]database.IoTDevice, error) {
	records := []database.IoTDevice{}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		rec, err := newDeviceRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}
