package persistence

import (
	"fmt"
	"time"

	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/hms/backend/internal/infrastructure/logger"
	"github.com/hms/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// Option configures how NewDatabase opens the connection
type Option func(*options)

type options struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	tracing       *telemetry.DBTracingPlugin
}

// WithLogger routes GORM logs through zap at the given level
func WithLogger(l *zap.Logger, level gormlogger.LogLevel, slowThreshold time.Duration) Option {
	return func(o *options) {
		o.logger = l
		o.logLevel = level
		o.slowThreshold = slowThreshold
	}
}

// WithTracing registers the otelgorm tracing plugin on the connection
func WithTracing(plugin *telemetry.DBTracingPlugin) Option {
	return func(o *options) {
		o.tracing = plugin
	}
}

// NewDatabase creates a new PostgreSQL connection with the given configuration
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	db, err := openDatabase(postgres.Open(cfg.DSN()), true, opts...)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// NewDatabaseFromDialector opens a Database on an arbitrary GORM dialector.
// Tests use it with sqlite and sqlmock connections.
func NewDatabaseFromDialector(dialector gorm.Dialector, opts ...Option) (*Database, error) {
	db, err := openDatabase(dialector, false, opts...)
	if err != nil {
		return nil, err
	}
	return &Database{DB: db}, nil
}

func openDatabase(dialector gorm.Dialector, prepareStmt bool, opts ...Option) (*gorm.DB, error) {
	o := &options{logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(o)
	}

	gormCfg := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            prepareStmt,
	}
	if o.logger != nil {
		gormCfg.Logger = logger.NewGormLogger(o.logger, o.logLevel, o.slowThreshold)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if o.tracing != nil {
		if err := o.tracing.Register(db); err != nil {
			return nil, fmt.Errorf("failed to register database tracing: %w", err)
		}
	}

	return db, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics and an error if unable to retrieve
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxIdleTimeClosed  int64
	MaxLifetimeClosed  int64
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}
