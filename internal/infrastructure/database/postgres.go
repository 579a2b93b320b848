package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DBConfig holds everything needed to connect to PostgreSQL.
type DBConfig struct {
	Host     string `mapstructure:"PG_HOST"`
	Port     int    `mapstructure:"PG_PORT"`
	Username string `mapstructure:"PG_USERNAME"`
	Password string `mapstructure:"PG_PASSWORD"`
	DBName   string `mapstructure:"PG_DBNAME"`

	// Connection pool
	MaxConns          int32         `mapstructure:"PG_MAX_CONNS"`
	MinConns          int32         `mapstructure:"PG_MIN_CONNS"`
	MaxConnLifetime   time.Duration `mapstructure:"PG_MAX_CONN_LIFETIME"`
	MaxConnIdleTime   time.Duration `mapstructure:"PG_MAX_CONN_IDLE_TIME"`
	HealthCheckPeriod time.Duration `mapstructure:"PG_HEALTH_CHECK_PERIOD"`

	// Retry
	MaxRetries     int           `mapstructure:"PG_MAX_RETRIES"`
	RetryDelay     time.Duration `mapstructure:"PG_RETRY_DELAY"`
	ConnectTimeout time.Duration `mapstructure:"PG_CONNECT_TIMEOUT"`
}

// PostgresDB wraps the connection pool and its lifecycle.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	Config *DBConfig
}

func NewPostgresDB(config *DBConfig) *PostgresDB {
	return &PostgresDB{Config: config}
}

func (db *PostgresDB) buildConnectionString() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s",
		db.Config.Username,
		db.Config.Password,
		db.Config.Host,
		db.Config.Port,
		db.Config.DBName,
	)
}

func (db *PostgresDB) configurePool(ctx context.Context) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(db.buildConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = db.Config.MaxConns
	config.MinConns = db.Config.MinConns
	config.MaxConnLifetime = db.Config.MaxConnLifetime
	config.MaxConnIdleTime = db.Config.MaxConnIdleTime
	config.HealthCheckPeriod = db.Config.HealthCheckPeriod
	config.ConnConfig.ConnectTimeout = db.Config.ConnectTimeout

	return config, nil
}

// connectWithRetry retries with exponential backoff so a database that
// is still starting up does not fail the whole boot.
func (db *PostgresDB) connectWithRetry(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var lastErr error

	for attempt := 1; attempt <= db.Config.MaxRetries; attempt++ {
		log.Info().Int("attempt", attempt).Int("max", db.Config.MaxRetries).Msg("Database connection attempt")

		connectCtx, cancel := context.WithTimeout(ctx, db.Config.ConnectTimeout)
		pool, lastErr = pgxpool.NewWithConfig(connectCtx, config)
		cancel()

		if lastErr == nil {
			if err := pool.Ping(ctx); err != nil {
				pool.Close()
				lastErr = err
				log.Warn().Err(err).Msg("Database ping failed")
			} else {
				log.Info().Int("attempt", attempt).Msg("Database connected")
				return pool, nil
			}
		}

		if attempt < db.Config.MaxRetries {
			delay := db.Config.RetryDelay * time.Duration(1<<uint(attempt-1))
			log.Warn().Err(lastErr).Dur("retry_in", delay).Msg("Database connection failed, retrying")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w",
		db.Config.MaxRetries, lastErr)
}

// Connect establishes the pool: configure, retry, verify.
func (db *PostgresDB) Connect(ctx context.Context) error {
	log.Info().Msg("Initializing PostgreSQL connection...")

	config, err := db.configurePool(ctx)
	if err != nil {
		return fmt.Errorf("pool configuration failed: %w", err)
	}

	pool, err := db.connectWithRetry(ctx, config)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	db.Pool = pool
	return nil
}

// HealthCheck verifies connectivity; called by the health endpoint.
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.Pool.Ping(healthCtx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	stats := db.Pool.Stat()
	if stats.TotalConns() == 0 {
		return fmt.Errorf("no active database connections")
	}

	return nil
}

func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}
