package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"golang.org/x/sys/unix"
	yaml "gopkg.in/yaml.v2"

	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/pkg/types"
)

//go:generate moq -rm -out events_mock.go . EventSender

type EventSender interface {
	Send(ctx context.Context, message types.ObservationCreated) error
}

type eventSender struct {
	subscribers map[string][]SubscriberConfig
}

func New(cfg *Config) EventSender {
	e := &eventSender{
		subscribers: make(map[string][]SubscriberConfig),
	}

	if cfg != nil {
		for _, s := range cfg.Notifications {
			e.subscribers[s.Type] = append(e.subscribers[s.Type], s.Subscribers...)
		}
	}

	return e
}

func (e *eventSender) Send(ctx context.Context, message types.ObservationCreated) error {
	topic := message.TopicName()

	if s, ok := e.subscribers[topic]; !ok || len(s) == 0 {
		return nil
	}

	var err error

	c, err := cloudevents.NewClientHTTP()
	if err != nil {
		return err
	}

	event := cloudevents.NewEvent()
	event.SetID(fmt.Sprintf("%s:%s", message.Observation.DeviceID, message.Observation.ObservationID))
	event.SetTime(message.Timestamp)
	event.SetSource("github.com/team3/iot-shop")
	event.SetType(topic)

	err = event.SetData(message.ContentType(), message)
	if err != nil {
		return err
	}

	logger := logging.GetLoggerFromContext(ctx)

	for _, s := range e.subscribers[topic] {
		if !s.Matches(message.Observation.DeviceID) {
			continue
		}

		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := c.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) || errors.Is(result, unix.ECONNREFUSED) {
			logger.Error().Err(result).Msgf("failed to send event to %s", s.Endpoint)
			err = fmt.Errorf("%w", result)
		}
	}

	return err
}

type multiSender []EventSender

// Combine returns a sender that passes every message on to each of senders.
func Combine(senders ...EventSender) EventSender {
	return multiSender(senders)
}

func (m multiSender) Send(ctx context.Context, message types.ObservationCreated) error {
	var errs []error

	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type EntityInfo struct {
	IDPattern string `yaml:"idPattern"`
}

type RegistrationInfo struct {
	Entities []EntityInfo `yaml:"entities"`
}

type SubscriberConfig struct {
	Endpoint    string             `yaml:"endpoint"`
	Information []RegistrationInfo `yaml:"information"`
}

// Matches reports if the subscriber is interested in events about deviceID.
// A subscriber without any id patterns receives everything.
func (s SubscriberConfig) Matches(deviceID string) bool {
	patterns := 0

	for _, info := range s.Information {
		for _, entity := range info.Entities {
			if entity.IDPattern == "" {
				continue
			}

			patterns++

			if ok, err := regexp.MatchString(entity.IDPattern, deviceID); err == nil && ok {
				return true
			}
		}
	}

	return patterns == 0
}

type Notification struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

type Config struct {
	Notifications []Notification `yaml:"notifications"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err == nil {
		return &cfg, nil
	} else {
		return nil, err
	}
}
