package telemetry

import (
	"context"
	"time"

	. "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	"gorm.io/gorm"
)

type TelemetryRepository interface {
	GetDevices(ctx context.Context) ([]IoTDevice, error)
	GetDeviceByID(ctx context.Context, deviceID string) (IoTDevice, error)
	CreateDevice(ctx context.Context, device *IoTDevice) error

	AddObservation(ctx context.Context, observation *Observation) error
	AddObservations(ctx context.Context, observations []Observation) error
	QueryObservations(ctx context.Context, filter ObservationFilter) ([]Observation, error)
	LatestObservation(ctx context.Context, deviceID string) (Observation, error)

	Seed(ctx context.Context, devices []IoTDevice) error
}

// ObservationFilter narrows a query. Zero values match everything and both
// time bounds are inclusive.
type ObservationFilter struct {
	DeviceID string
	From     *time.Time
	To       *time.Time
}

type telemetryRepository struct {
	db *gorm.DB
}

func NewTelemetryRepository(db *gorm.DB) TelemetryRepository {
	return &telemetryRepository{
		db: db,
	}
}

func (r *telemetryRepository) GetDevices(ctx context.Context) ([]IoTDevice, error) {
	devices := []IoTDevice{}
	err := r.db.WithContext(ctx).Order("created_at, device_id").Find(&devices).Error
	return devices, Translate(ctx, err)
}

func (r *telemetryRepository) GetDeviceByID(ctx context.Context, deviceID string) (IoTDevice, error) {
	d := IoTDevice{}
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&d).Error
	return d, Translate(ctx, err)
}

func (r *telemetryRepository) CreateDevice(ctx context.Context, device *IoTDevice) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(device).Error)
}

func (r *telemetryRepository) AddObservation(ctx context.Context, observation *Observation) error {
	return Translate(ctx, r.db.WithContext(ctx).Create(observation).Error)
}

// AddObservations stores all observations or none of them.
func (r *telemetryRepository) AddObservations(ctx context.Context, observations []Observation) error {
	if len(observations) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(observations, 500).Error
	})

	return Translate(ctx, err)
}

func (r *telemetryRepository) QueryObservations(ctx context.Context, filter ObservationFilter) ([]Observation, error) {
	observations := []Observation{}

	query := r.db.WithContext(ctx)

	if filter.DeviceID != "" {
		query = query.Where("device_id = ?", filter.DeviceID)
	}

	if filter.From != nil {
		query = query.Where("timestamp >= ?", filter.From.UTC())
	}

	if filter.To != nil {
		query = query.Where("timestamp <= ?", filter.To.UTC())
	}

	err := query.Order("created_at").Find(&observations).Error

	return observations, Translate(ctx, err)
}

func (r *telemetryRepository) LatestObservation(ctx context.Context, deviceID string) (Observation, error) {
	o := Observation{}
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("timestamp desc").First(&o).Error
	return o, Translate(ctx, err)
}

// Seed creates every device that is not already known.
func (r *telemetryRepository) Seed(ctx context.Context, devices []IoTDevice) error {
	for _, d := range devices {
		device := d

		err := r.db.WithContext(ctx).Where("device_id = ?", device.DeviceID).FirstOrCreate(&device).Error
		if err != nil {
			return Translate(ctx, err)
		}
	}

	return nil
}
