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

// Command dbguardian is the database agent: it translates a natural
// language intent into a SQL statement via the intent generator, submits
// the exact statement to the gateway's statement validator, and executes
// it only on an explicit allow.
//
// Usage:
//
//	dbguardian [-config path] [-seed] task...
//
// -seed creates the demo SQLite database (users and orders tables with
// sample rows) before running the task.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"opensec/agents/pipeline"
	"opensec/agents/shared/config"
	"opensec/agents/shared/types"
)

const systemPrompt = `You are an AI assistant that translates natural language into SQL queries for a SQLite database.
The database has two tables:
1. users (id, username, password, role)
2. orders (id, user_id, product, amount)

Translate the following request into a SINGLE raw SQL query.
Respond ONLY with the SQL query, no markdown, no explanation.`

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	seed := flag.Bool("seed", false, "create and populate the demo database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dbguardian: %v\n", err)
		os.Exit(1)
	}
	cfg.AgentID = "dbguardian"

	if *seed {
		if err := seedDemoDB(cfg.Database.Driver, cfg.Database.DSN); err != nil {
			fmt.Fprintf(os.Stderr, "dbguardian: seed failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("[dbguardian] demo database ready")
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: dbguardian [-config path] [-seed] task...")
		os.Exit(2)
	}

	p, err := pipeline.FromConfig(cfg, pipeline.Profile{SystemPrompt: systemPrompt})
	if err != nil {
		fmt.Fprintf(os.Stderr, "dbguardian: %v\n", err)
		os.Exit(1)
	}

	outcome := p.RunTask(context.Background(), types.ActionSQLQuery, strings.Join(flag.Args(), " "))
	switch outcome.Mode {
	case pipeline.ModeBlocked:
		fmt.Printf("[dbguardian] BLOCKED: %s\n", outcome.Reason)
		fmt.Println("[dbguardian] aborting database execution")
		os.Exit(1)
	case pipeline.ModeDegraded:
		fmt.Println("[dbguardian] DEGRADED (fallback extraction used)")
	}

	if outcome.Result == nil {
		fmt.Printf("[dbguardian] no result: %s\n", outcome.Reason)
		return
	}
	if outcome.Result.Status == types.ExecFailure {
		fmt.Printf("[dbguardian] execution failed: %s\n", outcome.Result.Error)
		os.Exit(1)
	}
	fmt.Println("--- Database Results ---")
	fmt.Println(outcome.Result.Payload)
	fmt.Println("------------------------")
}

// seedDemoDB creates the demo schema and sample rows if they do not exist.
// Peripheral helper: schema bootstrapping is not part of the pipeline.
func seedDemoDB(driver, dsn string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY,
			user_id INTEGER,
			product TEXT NOT NULL,
			amount REAL NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []string{
		`INSERT INTO users (username, password, role) VALUES ('Customer_A', 'mysecretpassword123', 'user')`,
		`INSERT INTO users (username, password, role) VALUES ('Admin', 'superadminpassword', 'admin')`,
		`INSERT INTO orders (user_id, product, amount) VALUES (1, 'Laptop', 1200.00)`,
		`INSERT INTO orders (user_id, product, amount) VALUES (1, 'Mouse', 25.00)`,
		`INSERT INTO orders (user_id, product, amount) VALUES (1, 'Keyboard', 75.00)`,
	}
	for _, stmt := range seeds {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
