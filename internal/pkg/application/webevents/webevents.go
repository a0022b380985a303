package webevents

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	gosse "github.com/alexandrevicenzi/go-sse"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/team3/iot-shop/pkg/types"
)

// AllDevices is the channel that receives events about every device.
const AllDevices string = "all"

// WebEvents streams observations and device events to browsers as server
// sent events. Clients pick a channel with the deviceID query parameter.
type WebEvents interface {
	http.Handler

	Send(ctx context.Context, message types.ObservationCreated) error
	Publish(deviceID, event string, data any) error
	HasSubscribers(channel string) bool
	Shutdown()
}

type webEvents struct {
	s *gosse.Server
}

func New(logger zerolog.Logger) WebEvents {
	return &webEvents{
		s: gosse.NewServer(&gosse.Options{
			ChannelNameFunc: channelName,
			Headers: map[string]string{
				"Cache-Control": "no-cache",
			},
			Logger: log.New(logger.With().Str("component", "webevents").Logger(), "", 0),
		}),
	}
}

func channelName(r *http.Request) string {
	if deviceID := r.URL.Query().Get("deviceID"); deviceID != "" {
		return deviceID
	}
	return AllDevices
}

func (we *webEvents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	we.s.ServeHTTP(w, r)
}

func (we *webEvents) Send(ctx context.Context, message types.ObservationCreated) error {
	return we.Publish(message.Observation.DeviceID, message.TopicName(), message.Observation)
}

// Publish sends data to the channel of the device and to AllDevices. Channels
// without subscribers are skipped.
func (we *webEvents) Publish(deviceID, event string, data any) error {
	channels := []string{AllDevices}
	if deviceID != "" && deviceID != AllDevices {
		channels = append(channels, deviceID)
	}

	channels = lo.Filter(channels, func(c string, _ int) bool {
		return we.HasSubscribers(c)
	})

	if len(channels) == 0 {
		return nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	message := gosse.NewMessage("", string(b), event)
	for _, c := range channels {
		we.s.SendMessage(c, message)
	}

	return nil
}

func (we *webEvents) HasSubscribers(channel string) bool {
	return we.s.HasChannel(channel)
}

func (we *webEvents) Shutdown() {
	we.s.Shutdown()
}
