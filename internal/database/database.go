package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"riego/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/cenkalti/backoff/v4"
	"github.com/glebarez/sqlite"
	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type CacheClient valkey.Client

type Cache struct {
	General CacheClient
	User    CacheClient
	Events  CacheClient
}

type DB struct {
	SQL   *gorm.DB
	Cache Cache
	log   logger.Logger
}

func New(config config.Config) (DB, error) {
	log := logger.New("database").Function("New")

	log.Info("Initializing database", "driver", config.DatabaseDriver)
	db := &DB{log: log}

	err := db.initializeDB(config)
	if err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	if !config.CacheEnabled() {
		log.Warn("Cache address not configured, running without cache")
		return *db, nil
	}

	err = db.initializeCacheDB(config)
	if err != nil {
		return DB{}, log.Err("failed to initialize cache database", err)
	}

	return *db, nil
}

// NewFromSQL wraps an already opened connection without a cache.
func NewFromSQL(sql *gorm.DB) DB {
	return DB{SQL: sql, log: logger.New("database")}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: gormLogger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
			gormLogger.Config{
				SlowThreshold:             2 * time.Second,
				LogLevel:                  gormLogger.Error,
				IgnoreRecordNotFoundError: true,
				ParameterizedQueries:      true,
				Colorful:                  false,
			},
		),
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: false,
	}
}

func (s *DB) initializeDB(config config.Config) error {
	log := s.log.Function("initializeDB")

	var dialector gorm.Dialector
	switch config.DatabaseDriver {
	case "", "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			config.DatabaseHost,
			config.DatabasePort,
			config.DatabaseUser,
			config.DatabasePassword,
			config.DatabaseName,
		)
		dialector = postgres.Open(dsn)
		log.Info(
			"Connecting to PostgreSQL",
			"host", config.DatabaseHost,
			"port", config.DatabasePort,
			"database", config.DatabaseName,
		)
	case "sqlite":
		dialector = sqlite.Open(config.DatabasePath)
		log.Info("Opening SQLite database", "path", config.DatabasePath)
	default:
		return log.Error("unsupported database driver", "driver", config.DatabaseDriver)
	}

	retries := config.DatabaseConnectRetries
	if retries < 1 {
		retries = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var db *gorm.DB
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var err error
		db, err = open(dialector)
		if err != nil {
			log.Warn("database not reachable yet", "attempt", attempt, "error", err)
		}
		return err
	}, backoff.WithMaxRetries(bo, uint64(retries-1)))
	if err != nil {
		return log.Err("failed to connect to database after retries", err, "attempts", attempt)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if config.DatabaseDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("Successfully connected to database", "attempts", attempt)
	s.SQL = db

	return nil
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

// OpenSQLite opens a CGO free SQLite database, used for local runs and tests.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := open(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func (s *DB) Close() (err error) {
	if s.SQL != nil {
		sqlDB, dbErr := s.SQL.DB()
		if dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				err = s.log.Err("failed to close database", closeErr)
			}
		}
	}

	for _, client := range s.cacheClients() {
		if client.client != nil {
			client.client.Close()
		}
	}

	return err
}

func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return s.SQL.WithContext(ctx)
}

type namedCacheClient struct {
	client CacheClient
	name   string
}

func (s *DB) cacheClients() []namedCacheClient {
	return []namedCacheClient{
		{s.Cache.General, "General"},
		{s.Cache.User, "User"},
		{s.Cache.Events, "Events"},
	}
}

func (s *DB) FlushAllCaches() error {
	log := s.log.Function("FlushAllCaches")
	log.Info("Flushing all cache databases")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cache := range s.cacheClients() {
		if cache.client == nil {
			continue
		}
		if err := cache.client.Do(ctx, cache.client.B().Flushdb().Build()).Error(); err != nil {
			return log.Err("failed to flush cache database", err, "cache", cache.name)
		}
		log.Info("Successfully flushed cache database", "cache", cache.name)
	}

	return nil
}
