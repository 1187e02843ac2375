// Copyright 2025 OpenSec
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package executor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)

	"opensec/agents/shared/logger"
	"opensec/agents/shared/types"
)

// NoDataMessage is the distinguished payload for a statement that executed
// successfully but produced no rows. Callers receive this sentinel rather
// than an empty collection.
const NoDataMessage = "Query executed successfully. No data returned."

// QueryConfig selects the local relational store.
type QueryConfig struct {
	Driver string // Required: sqlite, postgres, or mysql
	DSN    string // Required: driver-specific data source name
}

// QueryRunner executes validated statements. Each Execute opens its own
// connection and releases it on every exit path: there is no pooling and no
// multi-statement transaction support.
type QueryRunner struct {
	driver string
	dsn    string
	log    *logger.Logger

	// openDB is swapped out by tests to inject a mocked database handle.
	openDB func(driver, dsn string) (*sql.DB, error)
}

// NewQueryRunner creates a QueryRunner from cfg.
func NewQueryRunner(cfg QueryConfig, log *logger.Logger) (*QueryRunner, error) {
	switch cfg.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	return &QueryRunner{
		driver: cfg.Driver,
		dsn:    cfg.DSN,
		log:    log,
		openDB: sql.Open,
	}, nil
}

// Execute runs exactly the validated statement text with no further
// escaping or rewriting; the store's own parser surfaces malformed
// statements as errors. Rows serialize as JSON objects preserving column
// order and row order. An empty result set yields NoDataMessage.
func (q *QueryRunner) Execute(ctx context.Context, proposal types.ActionProposal) types.ExecutionResult {
	db, err := q.openDB(q.driver, q.dsn)
	if err != nil {
		return q.failure(fmt.Errorf("failed to open database: %w", err))
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, proposal.Text)
	if err != nil {
		return q.failure(fmt.Errorf("database error: %w", err))
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return q.failure(fmt.Errorf("failed to read columns: %w", err))
	}

	var results []types.Row
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return q.failure(fmt.Errorf("failed to scan row: %w", err))
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		row, err := types.NewRow(columns, values)
		if err != nil {
			return q.failure(err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return q.failure(fmt.Errorf("database error: %w", err))
	}

	if len(results) == 0 {
		return types.ExecutionResult{
			Kind:    types.ActionSQLQuery,
			Status:  types.ExecSuccess,
			Payload: NoDataMessage,
		}
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return q.failure(fmt.Errorf("failed to serialize results: %w", err))
	}

	return types.ExecutionResult{
		Kind:    types.ActionSQLQuery,
		Status:  types.ExecSuccess,
		Payload: string(payload),
	}
}

func (q *QueryRunner) failure(err error) types.ExecutionResult {
	q.log.Warn("", "query execution failed", map[string]any{"error": err.Error()})
	return types.ExecutionResult{
		Kind:   types.ActionSQLQuery,
		Status: types.ExecFailure,
		Error:  err.Error(),
	}
}
