package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// selectRows runs a single-statement query and decodes its result set into T.
func selectRows[T any](ctx context.Context, db *surrealdb.DB, query string, vars map[string]any) ([]T, error) {
	res, err := surrealdb.Query[[]T](ctx, db, query, vars)
	if err != nil {
		return nil, fmt.Errorf("surrealdb query %q: %w", statementKind(query), err)
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	return (*res)[0].Result, nil
}

// selectFirst returns the first row of a SELECT, or nil, nil when there is none.
func selectFirst[T any](ctx context.Context, db *surrealdb.DB, query string, vars map[string]any) (*T, error) {
	rows, err := selectRows[T](ctx, db, limitOne(query), vars)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// exec runs a statement whose result is discarded.
func exec(ctx context.Context, db *surrealdb.DB, query string, vars map[string]any) error {
	if _, err := surrealdb.Query[any](ctx, db, query, vars); err != nil {
		return fmt.Errorf("surrealdb query %q: %w", statementKind(query), err)
	}
	return nil
}

// limitOne appends LIMIT 1 to a SELECT that has no LIMIT of its own.
func limitOne(query string) string {
	if statementKind(query) != "SELECT" {
		return query
	}
	for _, word := range strings.Fields(query) {
		if strings.EqualFold(word, "LIMIT") {
			return query
		}
	}
	return strings.TrimSpace(query) + " LIMIT 1"
}

// statementKind returns the leading keyword of query, upper-cased.
func statementKind(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
