package watchdog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	repo "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/telemetry"
	"github.com/team3/iot-shop/pkg/types"
)

// Publisher receives a DeviceNotObserved event for every silent device.
type Publisher interface {
	Publish(deviceID, event string, data any) error
}

// Watchdog periodically looks for devices that have been silent for longer
// than their transmission interval.
type Watchdog interface {
	Start(ctx context.Context)
	Stop()
}

type lastObservedWatcher struct {
	repository repo.TelemetryRepository
	publisher  Publisher
	interval   time.Duration
	now        func() time.Time

	mu      sync.Mutex
	running bool
	done    chan struct{}
	stopped chan struct{}
}

func New(r repo.TelemetryRepository, p Publisher, interval time.Duration) Watchdog {
	return &lastObservedWatcher{
		repository: r,
		publisher:  p,
		interval:   interval,
		now:        time.Now,
	}
}

func (w *lastObservedWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	w.running = true
	w.done = make(chan struct{})
	w.stopped = make(chan struct{})

	go w.watch(ctx, w.done, w.stopped)
}

func (w *lastObservedWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	close(w.done)
	<-w.stopped
	w.running = false
}

func (w *lastObservedWatcher) watch(ctx context.Context, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	logger := logging.GetLoggerFromContext(ctx)
	logger.Debug().Dur("interval", w.interval).Msg("watchdog started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if _, err := w.check(ctx); err != nil {
				logger.Error().Err(err).Msg("watchdog check failed")
			}
		}
	}
}

// check publishes a DeviceNotObserved event for every device that is overdue
// and returns their ids.
func (w *lastObservedWatcher) check(ctx context.Context) ([]string, error) {
	logger := logging.GetLoggerFromContext(ctx)

	devices, err := w.repository.GetDevices(ctx)
	if err != nil {
		return nil, err
	}

	now := w.now().UTC()
	overdue := []string{}

	for _, d := range devices {
		observedAt := d.CreatedAt

		latest, err := w.repository.LatestObservation(ctx, d.DeviceID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return overdue, err
		}
		if err == nil {
			observedAt = latest.Timestamp
		}

		if checkLastObservedIsAfter(ctx, observedAt, now, d.TransmissionInterval) {
			continue
		}

		overdue = append(overdue, d.DeviceID)

		event := types.DeviceNotObserved{
			DeviceID:   d.DeviceID,
			ObservedAt: observedAt.UTC(),
			Timestamp:  now,
		}

		logger.Warn().Str("device_id", d.DeviceID).Time("observed_at", observedAt).Msg("device not observed within its transmission interval")

		if err := w.publisher.Publish(d.DeviceID, event.TopicName(), event); err != nil {
			logger.Error().Err(err).Str("device_id", d.DeviceID).Msg("failed to publish watchdog event")
		}
	}

	return overdue, nil
}

// checkLastObservedIsAfter reports whether observed is recent enough, i.e. no
// more than interval seconds before now.
func checkLastObservedIsAfter(ctx context.Context, observed, now time.Time, interval int) bool {
	if interval <= 0 {
		return true
	}

	deadline := now.Add(-time.Duration(interval) * time.Second)

	if observed.Before(deadline) {
		logger := logging.GetLoggerFromContext(ctx)
		logger.Debug().Time("observed", observed).Time("deadline", deadline).Msg("last observation is too old")
		return false
	}

	return true
}
