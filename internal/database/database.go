// Package database implements the user repository on SurrealDB.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/signin/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// NewDB opens the root connection the user store queries through. Root
// credentials are optional for servers that allow anonymous access.
func NewDB(ctx context.Context, cfg config.Provider) (*surrealdb.DB, error) {
	url := cfg.GetDBUrl()
	if url == "" {
		return nil, errors.New("surrealdb endpoint is not configured")
	}

	db, err := surrealdb.FromEndpointURLString(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to surrealdb at %s: %w", url, err)
	}

	fail := func(step string, err error) (*surrealdb.DB, error) {
		_ = db.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if user := cfg.GetDBUser(); user != "" {
		if _, err := db.SignIn(ctx, &surrealdb.Auth{Username: user, Password: cfg.GetDBPass()}); err != nil {
			return fail("sign in to surrealdb", err)
		}
	}
	if err := db.Use(ctx, cfg.GetDBNs(), cfg.GetDBDb()); err != nil {
		return fail("select namespace and database", err)
	}

	slog.InfoContext(ctx, "Connected to SurrealDB", "url", url, "ns", cfg.GetDBNs(), "db", cfg.GetDBDb())
	return db, nil
}
