package types

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer      Role = "customer"
	RoleAdministrator Role = "administrator"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a role name onto the closed set of known roles. An empty
// string yields RoleCustomer.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleAdministrator:
		return RoleAdministrator, nil
	}

	return "", ErrUnknownRole
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Envelope wraps every response body.
type Envelope struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
}

type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Address string `json:"address,omitempty"`
}

type Session struct {
	AccessToken string `json:"access_token"`
	Role        Role   `json:"role"`
}

type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	Category      string  `json:"category,omitempty"`
}

type AuditEntry struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"adminID"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

type ProductPage struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Institution struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	SubscriptionStatus string `json:"subscriptionStatus"`
}

type APIToken struct {
	AccessID       string    `json:"accessID"`
	Token          string    `json:"token"`
	ExpirationDate time.Time `json:"expirationDate"`
	InstitutionID  string    `json:"institutionID,omitempty"`
}

type Device struct {
	DeviceID             string `json:"deviceID"`
	Location             string `json:"location"`
	BatteryStatus        string `json:"batteryStatus"`
	TransmissionInterval int    `json:"transmissionInterval"`
}

type Observation struct {
	ObservationID       string    `json:"observationID"`
	DeviceID            string    `json:"deviceID"`
	Timestamp           time.Time `json:"timestamp"`
	Temperature         float64   `json:"temperature"`
	Humidity            float64   `json:"humidity"`
	WindSpeed           *float64  `json:"windSpeed"`
	Precipitation       *float64  `json:"precipitation"`
	LocationCoordinates *string   `json:"locationCoordinates"`
}

type Checkout struct {
	PaymentID   string `json:"paymentID,omitempty"`
	CheckoutURL string `json:"checkout_url"`
}
