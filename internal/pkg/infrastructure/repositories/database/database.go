package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/team3/iot-shop/internal/pkg/infrastructure/logging"
)

var ErrNotFound = errors.New("record not found")
var ErrAlreadyExists = errors.New("record already exists")
var ErrRepositoryError = errors.New("could not fetch data from repository")

type ConnectorConfig struct {
	Host     string
	Port     string
	Username string
	DbName   string
	Password string
	SslMode  string
}

func (c ConnectorConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s password=%s", c.Host, c.Port, c.Username, c.DbName, c.SslMode, c.Password)
}

type ConnectorFunc func() (*gorm.DB, zerolog.Logger, error)

// NewSQLiteConnector opens a SQLite database at path. An empty path gives a
// private in-memory database.
func NewSQLiteConnector(ctx context.Context, path string) ConnectorFunc {
	log := logging.GetLoggerFromContext(ctx)

	if path == "" {
		path = "file::memory:"
	}

	return func() (*gorm.DB, zerolog.Logger, error) {
		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger:          logger.Default.LogMode(logger.Silent),
			CreateBatchSize: 1000,
		})

		if err == nil {
			// every connection to file::memory: is a database of its own
			sqldb, _ := db.DB()
			sqldb.SetMaxOpenConns(1)
			db.Exec("PRAGMA foreign_keys = ON")
		}

		return db, log, err
	}
}

func NewPostgreSQLConnector(ctx context.Context, cfg ConnectorConfig) ConnectorFunc {
	log := logging.GetLoggerFromContext(ctx)

	return func() (*gorm.DB, zerolog.Logger, error) {
		sublogger := log.With().Str("host", cfg.Host).Str("database", cfg.DbName).Logger()
		sublogger.Info().Msg("connecting to database host")

		db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: logger.New(
				&logadapter{logger: sublogger},
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  logger.Warn,
					IgnoreRecordNotFoundError: true,
					Colorful:                  false,
				},
			),
		})
		if err != nil {
			sublogger.Error().Err(err).Msg("failed to connect to database")
			return nil, sublogger, err
		}

		return db, sublogger, nil
	}
}

// Open connects and migrates the schema of every entity.
func Open(connect ConnectorFunc) (*gorm.DB, error) {
	db, log, err := connect()
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&Customer{}, &Administrator{}, &AuditLog{},
		&Product{}, &Order{}, &OrderItem{},
		&Institution{}, &APIAccess{},
		&IoTDevice{}, &Observation{},
		&Payment{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to migrate database schema")
		return nil, err
	}

	return db, nil
}

// IsUniqueViolation reports whether err was caused by a unique constraint,
// for both the sqlite and the postgres driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Translate maps gorm errors onto the repository errors of this package.
func Translate(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, err.Error())
	}

	logger := logging.GetLoggerFromContext(ctx)
	logger.Error().Err(err).Msg("gorm error")

	return fmt.Errorf("%w: %s", ErrRepositoryError, err.Error())
}

// logadapter provides a Printf interface to the gorm logger
// so that we can forward the log data to zerolog
type logadapter struct {
	logger zerolog.Logger
}

func (adapter *logadapter) Printf(format string, args ...interface{}) {
	adapter.logger.Info().Msgf(format, args...)
}
