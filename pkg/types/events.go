package types

import "time"

type ObservationCreated struct {
	Observation Observation `json:"observation"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (o ObservationCreated) ContentType() string {
	return "application/json"
}
func (o ObservationCreated) TopicName() string {
	return "observation.created"
}

// DeviceNotObserved is raised when a device has been silent for longer than
// its transmission interval.
type DeviceNotObserved struct {
	DeviceID   string    `json:"deviceID"`
	ObservedAt time.Time `json:"observedAt"`
	Timestamp  time.Time `json:"timestamp"`
}

func (d DeviceNotObserved) ContentType() string {
	return "application/json"
}
func (d DeviceNotObserved) TopicName() string {
	return "device.notObserved"
}
