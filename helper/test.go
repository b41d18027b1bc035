package helper

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDbName     = "chipnews"
	testDbUser     = "chipnews"
	testDbPassword = "chipnews"
)

// MustStartPostgresContainer starts a pgvector enabled postgres container for tests.
// It returns the teardown function and the mapped port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase(testDbName),
		postgres.WithUsername(testDbUser),
		postgres.WithPassword(testDbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", NewError("mapped port", err)
	}

	return container.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points the database configuration at the test container.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("CHIPNEWS_DB_HOST", "localhost")
	t.Setenv("CHIPNEWS_DB_PORT", port)
	t.Setenv("CHIPNEWS_DB_DATABASE", testDbName)
	t.Setenv("CHIPNEWS_DB_USERNAME", testDbUser)
	t.Setenv("CHIPNEWS_DB_PASSWORD", testDbPassword)
	t.Setenv("CHIPNEWS_DB_SCHEMA", "public")
	t.Setenv("CHIPNEWS_DB_SSLMODE", "disable")
}
