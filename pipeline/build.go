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

package pipeline

import (
	"fmt"

	"opensec/agents/executor"
	"opensec/agents/gateway"
	"opensec/agents/intent"
	"opensec/agents/relay"
	"opensec/agents/report"
	"opensec/agents/shared/config"
	"opensec/agents/shared/logger"
)

// Profile carries an agent's generation persona: the instruction prefixed
// to every request and, optionally, the phrase the agent is instructed to
// decline off-topic tasks with.
type Profile struct {
	SystemPrompt string
	RefusalReply string
}

// FromConfig assembles a Pipeline with the concrete components, wiring each
// one from the single configuration value.
func FromConfig(cfg config.Config, profile Profile) (*Pipeline, error) {
	log := logger.New("pipeline", cfg.AgentID)

	generator, err := intent.NewGenerator(intent.Config{
		URL:          cfg.Generation.URL,
		Model:        cfg.Generation.Model,
		SystemPrompt: profile.SystemPrompt,
		RefusalReply: profile.RefusalReply,
		Temperature:  cfg.Generation.Temperature,
		Timeout:      cfg.Generation.Timeout.Std(),
	}, logger.New("intent", cfg.AgentID))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent generator: %w", err)
	}

	gate, err := gateway.NewClient(gateway.Config{
		ValidateURL:    cfg.Gateway.ValidateURL,
		ValidateSQLURL: cfg.Gateway.ValidateSQLURL,
		PromptTimeout:  cfg.Gateway.PromptTimeout.Std(),
		SQLTimeout:     cfg.Gateway.SQLTimeout.Std(),
	}, logger.New("gateway", cfg.AgentID))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway client: %w", err)
	}

	queries, err := executor.NewQueryRunner(executor.QueryConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	}, logger.New("executor", cfg.AgentID))
	if err != nil {
		return nil, fmt.Errorf("failed to build query runner: %w", err)
	}

	forwarder, err := relay.NewForwarder(relay.Config{
		URL:     cfg.Relay.URL,
		Timeout: cfg.Relay.Timeout.Std(),
	}, logger.New("relay", cfg.AgentID))
	if err != nil {
		return nil, fmt.Errorf("failed to build forwarder: %w", err)
	}

	return New(Config{
		AgentID:       cfg.AgentID,
		Intent:        generator,
		Gateway:       gate,
		FileExecutor:  executor.NewFileReader(logger.New("executor", cfg.AgentID)),
		QueryExecutor: queries,
		Relay:         forwarder,
		Reporter:      report.NewGenerator(report.Config{}),
		Logger:        log,
	})
}
