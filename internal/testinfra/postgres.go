// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/animerec/internal/recommend"
)

const (
	// DefaultPostgresImage is the Postgres image used for ratings store tests.
	DefaultPostgresImage = "postgres:16-alpine"

	postgresPort     = "5432/tcp"
	postgresUser     = "animerec"
	postgresPassword = "animerec"
	postgresDatabase = "animedb"
)

const ratingsSchema = `CREATE TABLE IF NOT EXISTS user_ratings (
	user_id  INTEGER NOT NULL,
	anime_id INTEGER NOT NULL,
	rating   DOUBLE PRECISION NOT NULL
)`

// PostgresContainer is a running Postgres with the user_ratings table.
type PostgresContainer struct {
	testcontainers.Container
	DSN string
}

// PostgresOption configures the Postgres container.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	seed         []recommend.Rating
	startTimeout time.Duration
}

// WithPostgresImage sets a custom Postgres image.
func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

// WithRatings inserts ratings after the schema is created.
func WithRatings(ratings []recommend.Rating) PostgresOption {
	return func(c *postgresConfig) {
		c.seed = ratings
	}
}

// WithStartTimeout sets the timeout for waiting for Postgres to start.
func WithStartTimeout(timeout time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = timeout
	}
}

// NewPostgresContainer starts Postgres, creates user_ratings and seeds it.
//
//	pg, err := testinfra.NewPostgresContainer(ctx, testinfra.WithRatings(ratings))
//	if err != nil {
//	    t.Fatal(err)
//	}
//	testinfra.CleanupContainer(t, pg)
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDatabase,
		},
		// The server restarts once after initdb, so the ready line appears twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDatabase)

	if err := seedPostgres(ctx, dsn, cfg.seed); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &PostgresContainer{Container: container, DSN: dsn}, nil
}

func seedPostgres(ctx context.Context, dsn string, ratings []recommend.Rating) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, ratingsSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if len(ratings) == 0 {
		return nil
	}

	rows := make([][]any, len(ratings))
	for i, r := range ratings {
		rows[i] = []any{r.UserID, r.ItemID, r.Value}
	}
	if _, err := conn.CopyFrom(ctx,
		pgx.Identifier{"user_ratings"},
		[]string{"user_id", "anime_id", "rating"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("seed ratings: %w", err)
	}
	return nil
}
