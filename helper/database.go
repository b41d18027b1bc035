package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings for Postgres.
type DatabaseConfiguration struct {
	Host          string
	Port          string
	Database      string
	Username      string
	Password      string
	Schema        string
	SSLMode       string
	WithTableDrop bool
}

// NewDatabaseConfiguration reads the database settings from the environment.
// It returns an error naming every missing required variable.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:          os.Getenv("CHIPNEWS_DB_HOST"),
		Port:          os.Getenv("CHIPNEWS_DB_PORT"),
		Database:      os.Getenv("CHIPNEWS_DB_DATABASE"),
		Username:      os.Getenv("CHIPNEWS_DB_USERNAME"),
		Password:      os.Getenv("CHIPNEWS_DB_PASSWORD"),
		Schema:        os.Getenv("CHIPNEWS_DB_SCHEMA"),
		SSLMode:       os.Getenv("CHIPNEWS_DB_SSLMODE"),
		WithTableDrop: os.Getenv("CHIPNEWS_DB_WITH_TABLE_DROP") == "true",
	}

	var missing []string
	if config.Host == "" {
		missing = append(missing, "CHIPNEWS_DB_HOST")
	}
	if config.Port == "" {
		missing = append(missing, "CHIPNEWS_DB_PORT")
	}
	if config.Database == "" {
		missing = append(missing, "CHIPNEWS_DB_DATABASE")
	}
	if config.Username == "" {
		missing = append(missing, "CHIPNEWS_DB_USERNAME")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing database environment variables: %s", strings.Join(missing, ", "))
	}

	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s search_path=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode, c.Schema,
	)
}

// Database bundles a connection pool with the logger of its owner.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens and pings the database, retrying for a short while on startup.
// It panics if no connection can be established.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := connect(config, 5, time.Second)
	if err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: db,
		Logger:   logger,
	}
}

// NewTestDatabase opens a database for tests with a quiet logger.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	return NewDatabase("test", config, NewLogger(os.Stdout, slog.LevelWarn))
}

func connect(config *DatabaseConfiguration, attempts int, wait time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, err
	}

	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			db.SetMaxOpenConns(10)
			db.SetConnMaxIdleTime(5 * time.Minute)
			return db, nil
		}
		time.Sleep(wait)
	}

	db.Close()
	return nil, err
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}
