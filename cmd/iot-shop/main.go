package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/team3/iot-shop/internal/pkg/application"
	"github.com/team3/iot-shop/internal/pkg/application/devices"
	"github.com/team3/iot-shop/internal/pkg/application/events"
	"github.com/team3/iot-shop/internal/pkg/application/payments"
	"github.com/team3/iot-shop/internal/pkg/application/webevents"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/repositories/database"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/router"
	"github.com/team3/iot-shop/internal/pkg/infrastructure/tracing"
	"github.com/team3/iot-shop/internal/pkg/presentation/api"
	"github.com/team3/iot-shop/internal/pkg/presentation/api/auth"
)

const serviceName string = "iot-shop"

var serviceVersion string = "develop"

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort

	dbDriver
	sqlitePath
	dbHost
	dbUser
	dbPassword
	dbPort
	dbName
	dbSSLMode

	jwtSecret
	stripeSecret
	paymentCurrency

	notificationsFile
	devicesFile

	watchdogInterval
)

func defaultFlags() flagMap {
	return flagMap{
		listenAddress: "0.0.0.0",
		servicePort:   "8080",

		dbDriver:   "sqlite",
		sqlitePath: "iot-shop.db",
		dbHost:     "",
		dbUser:     "",
		dbPassword: "",
		dbPort:     "5432",
		dbName:     "iotshop",
		dbSSLMode:  "disable",

		jwtSecret:       "",
		stripeSecret:    "",
		paymentCurrency: payments.DefaultCurrency,

		notificationsFile: "",
		devicesFile:       "",

		watchdogInterval: application.DefaultWatchdogInterval.String(),
	}
}

func main() {
	// a missing .env file is fine, the environment may be set by other means
	_ = godotenv.Load()

	flags := parseExternalConfig(defaultFlags())

	ctx, logger := logging.NewLogger(context.Background(), serviceName, serviceVersion)
	logger.Info().Msg("starting up ...")

	cleanup, err := tracing.Init(ctx, logger, serviceName, serviceVersion)
	exitIf(err, logger, "failed to init tracing")
	defer cleanup()

	if flags[jwtSecret] == "" {
		exitIf(errors.New("JWT_SECRET_KEY is not set"), logger, "missing configuration")
	}

	r, app, err := initialize(ctx, flags, logger)
	exitIf(err, logger, "failed to initialize service")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, unix.SIGTERM)
	defer stop()

	app.Watchdog.Start(ctx)

	err = serve(ctx, net.JoinHostPort(flags[listenAddress], flags[servicePort]), r, logger)

	app.Watchdog.Stop()
	app.Stream.Shutdown()

	exitIf(err, logger, "failed to start request router")
}

// initialize connects to the database, seeds it and returns a router with
// every handler registered.
func initialize(ctx context.Context, flags flagMap, logger zerolog.Logger) (*chi.Mux, *application.App, error) {
	interval, err := time.ParseDuration(flags[watchdogInterval])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid watchdog interval: %w", err)
	}

	db, err := database.Open(newConnector(ctx, flags))
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}

	var sender events.EventSender
	if flags[notificationsFile] != "" {
		f, err := os.Open(flags[notificationsFile])
		if err != nil {
			return nil, nil, fmt.Errorf("could not open notifications file: %w", err)
		}
		defer f.Close()

		cfg, err := events.LoadConfiguration(f)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load notifications config: %w", err)
		}
		sender = events.New(cfg)
	}

	authenticator := auth.New(flags[jwtSecret])

	app := application.New(db, application.Config{
		TokenIssuer:      authenticator,
		PaymentProcessor: payments.NewStripeProcessor(flags[stripeSecret], logger),
		PaymentCurrency:  flags[paymentCurrency],
		EventSender:      sender,
		Stream:           webevents.New(logger),
		WatchdogInterval: interval,
	})

	if flags[devicesFile] != "" {
		f, err := os.Open(flags[devicesFile])
		if err != nil {
			return nil, nil, fmt.Errorf("could not open devices file: %w", err)
		}
		defer f.Close()

		if err = devices.Seed(ctx, app.Telemetry, f); err != nil {
			return nil, nil, fmt.Errorf("could not seed devices: %w", err)
		}
	}

	r := router.New(serviceName, logger)
	api.RegisterHandlers(ctx, r, app, authenticator)

	return r, app, nil
}

func newConnector(ctx context.Context, flags flagMap) database.ConnectorFunc {
	if flags[dbDriver] == "postgres" {
		return database.NewPostgreSQLConnector(ctx, database.ConnectorConfig{
			Host:     flags[dbHost],
			Port:     flags[dbPort],
			Username: flags[dbUser],
			DbName:   flags[dbName],
			Password: flags[dbPassword],
			SslMode:  flags[dbSSLMode],
		})
	}

	return database.NewSQLiteConnector(ctx, flags[sqlitePath])
}

func serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", addr).Msg("listening for requests")
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func parseExternalConfig(flags flagMap) flagMap {
	applyEnvironment(flags)

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("db", "database driver, sqlite or postgres", apply(dbDriver))
	flag.Func("notifications", "observation notifications configuration file", apply(notificationsFile))
	flag.Func("devices", "list of known devices", apply(devicesFile))
	flag.Parse()

	return flags
}

// applyEnvironment lets environment variables override the defaults.
func applyEnvironment(flags flagMap) {
	envOrDef := func(name, def string) string {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		return def
	}

	flags[listenAddress] = envOrDef("LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef("SERVICE_PORT", flags[servicePort])

	flags[dbDriver] = envOrDef("DB_DRIVER", flags[dbDriver])
	flags[sqlitePath] = envOrDef("SQLITE_PATH", flags[sqlitePath])
	flags[dbHost] = envOrDef("POSTGRES_HOST", flags[dbHost])
	flags[dbPort] = envOrDef("POSTGRES_PORT", flags[dbPort])
	flags[dbName] = envOrDef("POSTGRES_DBNAME", flags[dbName])
	flags[dbUser] = envOrDef("POSTGRES_USER", flags[dbUser])
	flags[dbPassword] = envOrDef("POSTGRES_PASSWORD", flags[dbPassword])
	flags[dbSSLMode] = envOrDef("POSTGRES_SSLMODE", flags[dbSSLMode])

	flags[jwtSecret] = envOrDef("JWT_SECRET_KEY", flags[jwtSecret])
	flags[stripeSecret] = envOrDef("STRIPE_SECRET_KEY", flags[stripeSecret])
	flags[paymentCurrency] = envOrDef("PAYMENT_CURRENCY", flags[paymentCurrency])

	flags[notificationsFile] = envOrDef("NOTIFICATIONS_FILE", flags[notificationsFile])
	flags[devicesFile] = envOrDef("DEVICES_FILE", flags[devicesFile])
	flags[watchdogInterval] = envOrDef("WATCHDOG_INTERVAL", flags[watchdogInterval])
}

func exitIf(err error, logger zerolog.Logger, msg string) {
	if err != nil {
		logger.Fatal().Err(err).Msg(msg)
	}
}
