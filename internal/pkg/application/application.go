package application

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/team3/iot-shop/internal/pkg/application/accounts"
	"github.com/team3/iot-shop/internal/pkg/application/apiaccess"
	"github.com/team3/iot-shop/internal/pkg/application/catalog"
	"github.com/team3/iot-shop/internal/pkg/application/devices"
	"github.com/team3/iot-shop/internal/pkg/application/events"
	"github.com/team3/iot-shop/internal/pkg/application/institutions"
	"github.com/team3/iot-shop/internal/pkg/application/observations"
	"github.com/team3/iot-shop/internal/pkg/application/payments"
	"github.com/team3/iot-shop/internal/pkg/application/watchdog"
	"github.com/team3/iot-shop/internal/pkg/application/webevents"
	accountsDb "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/accounts"
	catalogDb "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/catalog"
	institutionsDb "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/institutions"
	paymentsDb "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/payments"
	telemetryDb "github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database/telemetry"
)

// App holds every service of the shop, all sharing one connection pool.
type App struct {
	Accounts     accounts.AccountService
	Products     catalog.ProductService
	Institutions institutions.InstitutionService
	APIAccess    apiaccess.APIAccessService
	Devices      devices.DeviceService
	Observations observations.ObservationService
	Payments     payments.PaymentService

	Telemetry telemetryDb.TelemetryRepository
	Stream    webevents.WebEvents
	Watchdog  watchdog.Watchdog
}

const DefaultWatchdogInterval = time.Minute

type Config struct {
	TokenIssuer      accounts.TokenIssuer
	PaymentProcessor payments.Processor
	PaymentCurrency  string
	EventSender      events.EventSender
	Stream           webevents.WebEvents
	WatchdogInterval time.Duration
}

func New(db *gorm.DB, cfg Config) *App {
	institutionRepo := institutionsDb.NewInstitutionRepository(db)
	telemetryRepo := telemetryDb.NewTelemetryRepository(db)

	access := apiaccess.New(institutionRepo)

	sender := cfg.EventSender
	if sender == nil {
		sender = events.New(nil)
	}

	stream := cfg.Stream
	if stream == nil {
		stream = webevents.New(zerolog.Nop())
	}

	interval := cfg.WatchdogInterval
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}

	return &App{
		Accounts:     accounts.New(accountsDb.NewAccountRepository(db), cfg.TokenIssuer),
		Products:     catalog.New(catalogDb.NewProductRepository(db)),
		Institutions: institutions.New(institutionRepo),
		APIAccess:    access,
		Devices:      devices.New(telemetryRepo),
		Observations: observations.New(telemetryRepo, access, events.Combine(sender, stream)),
		Payments:     payments.New(paymentsDb.NewPaymentRepository(db), cfg.PaymentProcessor, cfg.PaymentCurrency),
		Telemetry:    telemetryRepo,
		Stream:       stream,
		Watchdog:     watchdog.New(telemetryRepo, stream, interval),
	}
}
