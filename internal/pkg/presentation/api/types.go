package api

import (
	"time"

	"github.com/team3/iot-shop/pkg/types"
)

type idResponse struct {
	ID string `json:"id"`
}

type institutionsResponse struct {
	Institutions []types.Institution `json:"institutions"`
}

type devicesResponse struct {
	Devices []types.Device `json:"devices"`
}

type deviceCreatedResponse struct {
	DeviceID string `json:"deviceID"`
}

type tokenCreatedResponse struct {
	AccessID       string    `json:"accessID"`
	Token          string    `json:"token"`
	ExpirationDate time.Time `json:"expirationDate"`
}

type tokensResponse struct {
	Tokens []types.APIToken `json:"tokens"`
}

type tokenRequest struct {
	InstitutionID  string `json:"institutionID"`
	ExpirationDays *int   `json:"expirationDays"`
}

type institutionRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type observationCreatedResponse struct {
	ObservationID string `json:"observationID"`
}

type observationsResponse struct {
	Observations []types.Observation `json:"observations"`
}

type mockResponse struct {
	GeneratedObservations int `json:"generatedObservations"`
}
