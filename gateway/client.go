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

// Package gateway submits action proposals to the external policy decision
// point. The gateway is authoritative: this client only maps its HTTP
// outcomes onto typed decisions and never second-guesses a verdict.
//
// Outcome mapping:
//   - 200            -> Allow
//   - 403            -> Block, with the reason from the response body
//   - anything else  -> Unknown (unexpected status, undecodable body, or
//     transport failure), which callers treat exactly like Block
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"opensec/agents/shared/logger"
	"opensec/agents/shared/types"
)

const (
	// DefaultPromptTimeout covers prompt validation, where the gateway may
	// run its own scanning model before answering.
	DefaultPromptTimeout = 60 * time.Second

	// DefaultSQLTimeout covers statement validation, a static check.
	DefaultSQLTimeout = 10 * time.Second
)

// HTTPClient is an interface for HTTP client operations (enables testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration for the gateway client. The prompt and
// statement endpoints are distinct capabilities with their own timeouts.
type Config struct {
	ValidateURL    string        // Required: generic prompt validation endpoint
	ValidateSQLURL string        // Required: statement validation endpoint
	PromptTimeout  time.Duration // Optional: default 60s
	SQLTimeout     time.Duration // Optional: default 10s
}

// Client is the policy gateway client. One blocking call per proposal;
// decisions are never cached.
type Client struct {
	validateURL    string
	validateSQLURL string
	promptClient   HTTPClient
	sqlClient      HTTPClient
	log            *logger.Logger
}

// promptRequest is the wire format of the generic validation endpoint.
type promptRequest struct {
	Prompt string `json:"prompt"`
}

// sqlRequest is the wire format of the statement validation endpoint.
type sqlRequest struct {
	Query   string `json:"query"`
	AgentID string `json:"agent_id"`
}

// denyResponse carries the gateway's block reason on an explicit deny.
type denyResponse struct {
	Detail string `json:"detail"`
}

// NewClient creates a gateway client from cfg.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.ValidateURL == "" {
		return nil, fmt.Errorf("validate endpoint URL is required")
	}
	if cfg.ValidateSQLURL == "" {
		return nil, fmt.Errorf("validate-sql endpoint URL is required")
	}
	if cfg.PromptTimeout <= 0 {
		cfg.PromptTimeout = DefaultPromptTimeout
	}
	if cfg.SQLTimeout <= 0 {
		cfg.SQLTimeout = DefaultSQLTimeout
	}

	return &Client{
		validateURL:    cfg.ValidateURL,
		validateSQLURL: cfg.ValidateSQLURL,
		promptClient:   &http.Client{Timeout: cfg.PromptTimeout},
		sqlClient:      &http.Client{Timeout: cfg.SQLTimeout},
		log:            log,
	}, nil
}

// ValidatePrompt submits free text to the generic validation endpoint.
func (c *Client) ValidatePrompt(ctx context.Context, prompt string) types.PolicyDecision {
	body, err := json.Marshal(promptRequest{Prompt: prompt})
	if err != nil {
		return types.PolicyDecision{
			Outcome: types.OutcomeUnknown,
			Reason:  fmt.Sprintf("failed to marshal validation request: %v", err),
		}
	}
	return c.submit(ctx, c.promptClient, c.validateURL, body)
}

// ValidateSQL submits the literal statement text plus the requesting agent
// identifier to the statement validation endpoint. The statement must be
// the exact text that will be executed on an allow.
func (c *Client) ValidateSQL(ctx context.Context, query, agentID string) types.PolicyDecision {
	body, err := json.Marshal(sqlRequest{Query: query, AgentID: agentID})
	if err != nil {
		return types.PolicyDecision{
			Outcome: types.OutcomeUnknown,
			Reason:  fmt.Sprintf("failed to marshal validation request: %v", err),
		}
	}
	return c.submit(ctx, c.sqlClient, c.validateSQLURL, body)
}

// submit performs one blocking validation call and maps the outcome.
func (c *Client) submit(ctx context.Context, client HTTPClient, url string, body []byte) types.PolicyDecision {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return types.PolicyDecision{
			Outcome: types.OutcomeUnknown,
			Reason:  fmt.Sprintf("failed to create validation request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		c.log.Warn("", "gateway unreachable", map[string]any{"error": err.Error()})
		return types.PolicyDecision{
			Outcome: types.OutcomeUnknown,
			Reason:  fmt.Sprintf("gateway unreachable: %v", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return types.PolicyDecision{Outcome: types.OutcomeAllow}

	case http.StatusForbidden:
		var deny denyResponse
		if err := json.NewDecoder(resp.Body).Decode(&deny); err != nil {
			return types.PolicyDecision{
				Outcome: types.OutcomeUnknown,
				Reason:  fmt.Sprintf("failed to decode deny response: %v", err),
			}
		}
		return types.PolicyDecision{Outcome: types.OutcomeBlock, Reason: deny.Detail}

	default:
		return types.PolicyDecision{
			Outcome: types.OutcomeUnknown,
			Reason:  fmt.Sprintf("unexpected gateway status %d", resp.StatusCode),
		}
	}
}
