package database

import (
	"time"
)

// Timestamps is embedded in every entity. gorm sets both fields on create and
// refreshes UpdatedAt on every save or update.
type Timestamps struct {
	CreatedAt time.Time `json:"dateCreated"`
	UpdatedAt time.Time `json:"updatedDate"`
}

type Customer struct {
	Timestamps

	CustomerID       string `gorm:"primaryKey"`
	Name             string `gorm:"not null;index"`
	Email            string `gorm:"not null;uniqueIndex"`
	Password         string `gorm:"not null" json:"-"`
	Address          string
	AccountStatus    string `gorm:"default:active"`
	StripeCustomerID string

	Orders   []Order   `gorm:"foreignKey:CustomerID;references:CustomerID"`
	Payments []Payment `gorm:"foreignKey:CustomerID;references:CustomerID"`
}

type Administrator struct {
	Timestamps

	AdminID     string `gorm:"primaryKey"`
	Name        string `gorm:"not null;index"`
	Email       string `gorm:"not null;uniqueIndex"`
	Password    string `gorm:"not null" json:"-"`
	Permissions string `gorm:"not null"`

	AuditLogs []AuditLog `gorm:"foreignKey:AdminID;references:AdminID"`
}

type AuditLog struct {
	Timestamps

	LogID     string    `gorm:"primaryKey"`
	AdminID   string    `gorm:"not null;index"`
	Action    string    `gorm:"not null"`
	Timestamp time.Time `gorm:"not null"`
}

type Product struct {
	Timestamps

	ProductID     string  `gorm:"primaryKey"`
	Name          string  `gorm:"not null"`
	Description   string
	Price         float64 `gorm:"not null"`
	StockQuantity int     `gorm:"default:0"`
	Category      string

	OrderItems []OrderItem `gorm:"foreignKey:ProductID;references:ProductID"`
}

type Order struct {
	Timestamps

	OrderID     string    `gorm:"primaryKey"`
	OrderDate   time.Time `gorm:"not null"`
	TotalAmount float64   `gorm:"not null"`
	Status      string    `gorm:"default:pending"`
	CustomerID  string    `gorm:"not null;index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:OrderID"`
}

type OrderItem struct {
	Timestamps

	OrderItemID string  `gorm:"primaryKey"`
	Quantity    int     `gorm:"not null"`
	Subtotal    float64 `gorm:"not null"`
	OrderID     string  `gorm:"not null;index"`
	ProductID   string  `gorm:"not null;index"`
}

type Institution struct {
	Timestamps

	InstitutionID      string `gorm:"primaryKey"`
	Name               string `gorm:"not null"`
	Email              string `gorm:"not null;uniqueIndex"`
	SubscriptionStatus string `gorm:"default:active"`

	APIAccess []APIAccess `gorm:"foreignKey:InstitutionID;references:InstitutionID"`
}

type APIAccess struct {
	Timestamps

	AccessID       string    `gorm:"primaryKey"`
	Token          string    `gorm:"not null;uniqueIndex"`
	ExpirationDate time.Time `gorm:"not null"`
	InstitutionID  string    `gorm:"not null;index"`
}

func (APIAccess) TableName() string {
	return "api_access"
}

type IoTDevice struct {
	Timestamps

	DeviceID             string `gorm:"primaryKey"`
	Location             string `gorm:"not null"`
	BatteryStatus        string `gorm:"not null"`
	TransmissionInterval int    `gorm:"not null"`

	Observations []Observation `gorm:"foreignKey:DeviceID;references:DeviceID"`
}

func (IoTDevice) TableName() string {
	return "iot_devices"
}

type Observation struct {
	Timestamps

	ObservationID       string    `gorm:"primaryKey"`
	Timestamp           time.Time `gorm:"not null;index"`
	Temperature         float64   `gorm:"not null"`
	Humidity            float64   `gorm:"not null"`
	WindSpeed           *float64
	Precipitation       *float64
	LocationCoordinates *string
	DeviceID            string `gorm:"not null;index"`
}

const (
	PaymentStatusPending = "pending"
)

type Payment struct {
	Timestamps

	ID              string  `gorm:"primaryKey"`
	CustomerID      string  `gorm:"not null;index"`
	StripePaymentID string  `gorm:"not null"`
	StripeSessionID string  `gorm:"not null;uniqueIndex"`
	OrderID         string  `gorm:"not null;index"`
	Amount          float64 `gorm:"not null"`
	Status          string  `gorm:"not null;default:pending"`
}
