package devices

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/team3/iot-shop/internal/pkg/application/apperrors"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/telemetry"
	"github.com/team3/iot-shop/pkg/types"
)

type DeviceService interface {
	Create(ctx context.Context, d NewDevice) (types.Device, error)
	List(ctx context.Context) ([]types.Device, error)
	Get(ctx context.Context, deviceID string) (types.Device, error)
}

type NewDevice struct {
	Location             string `json:"location"`
	BatteryStatus        string `json:"batteryStatus"`
	TransmissionInterval int    `json:"transmissionInterval"`
}

type service struct {
	repository repo.TelemetryRepository
}

func New(r repo.TelemetryRepository) DeviceService {
	return &service{
		repository: r,
	}
}

func (s *service) Create(ctx context.Context, d NewDevice) (types.Device, error) {
	if d.Location == "" || d.BatteryStatus == "" || d.TransmissionInterval <= 0 {
		return types.Device{}, apperrors.Validation("All fields are required")
	}

	device := database.IoTDevice{
		DeviceID:             uuid.NewString(),
		Location:             d.Location,
		BatteryStatus:        d.BatteryStatus,
		TransmissionInterval: d.TransmissionInterval,
	}

	if err := s.repository.CreateDevice(ctx, &device); err != nil {
		return types.Device{}, fmt.Errorf("failed to create device: %w", err)
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Info().Str("device_id", device.DeviceID).Msg("device registered")

	return ToDevice(device), nil
}

func (s *service) List(ctx context.Context) ([]types.Device, error) {
	fromDb, err := s.repository.GetDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	return lo.Map(fromDb, func(d database.IoTDevice, _ int) types.Device {
		return ToDevice(d)
	}), nil
}

func (s *service) Get(ctx context.Context, deviceID string) (types.Device, error) {
	d, err := s.repository.GetDeviceByID(ctx, deviceID)
	if errors.Is(err, database.ErrNotFound) {
		return types.Device{}, apperrors.NotFound("IoT Device not found")
	}
	if err != nil {
		return types.Device{}, fmt.Errorf("failed to fetch device: %w", err)
	}

	return ToDevice(d), nil
}

func ToDevice(d database.IoTDevice) types.Device {
	return types.Device{
		DeviceID:             d.DeviceID,
		Location:             d.Location,
		BatteryStatus:        d.BatteryStatus,
		TransmissionInterval: d.TransmissionInterval,
	}
}
