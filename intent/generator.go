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

// Package intent turns a free-text task into a concrete action proposal by
// calling an OpenAI-compatible completion endpoint. The completion service
// is opaque: on any transport failure, non-success status, or malformed
// response, Generate falls back to a deterministic text-extraction
// heuristic so the pipeline always receives a proposal.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"opensec/agents/shared/logger"
	"opensec/agents/shared/types"
)

const (
	// DefaultTimeout is the default timeout for a completion request.
	DefaultTimeout = 60 * time.Second

	// DefaultTemperature is used when the config leaves temperature unset.
	DefaultTemperature = 0.7
)

// filenamePattern matches a path-like token: word characters, slashes and
// dots, ending in a dot plus extension.
var filenamePattern = regexp.MustCompile(`[\w/.-]+\.\w+`)

// HTTPClient is an interface for HTTP client operations (enables testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration for the intent generator.
type Config struct {
	URL          string        // Required: completion endpoint URL
	Model        string        // Required: model identifier routed by the endpoint
	SystemPrompt string        // Optional: instruction prefixed to every task
	RefusalReply string        // Optional: phrase the model is instructed to decline with
	Temperature  float64       // Sampling temperature, must be within [0, 2]
	Timeout      time.Duration // Optional: HTTP timeout (default: 60s)
}

// Generator is the intent generator adapter. It issues one blocking
// completion request per task and never returns an error to the caller.
type Generator struct {
	url          string
	model        string
	systemPrompt string
	refusalReply string
	temperature  float64
	client       HTTPClient
	log          *logger.Logger
}

// completionRequest is the wire format of the generation endpoint.
type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

// completionResponse is the expected success shape. Any deviation from it
// triggers the fallback heuristic.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewGenerator creates a Generator from cfg.
func NewGenerator(cfg Config, log *logger.Logger) (*Generator, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("generation endpoint URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("generation model is required")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return nil, fmt.Errorf("temperature %.2f outside [0, 2]", cfg.Temperature)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Generator{
		url:          cfg.URL,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		refusalReply: cfg.RefusalReply,
		temperature:  cfg.Temperature,
		client:       &http.Client{Timeout: cfg.Timeout},
		log:          log,
	}, nil
}

// Generate converts task into an action proposal of the given kind. The
// returned bool is true when the completion service could not be used and
// the proposal text came from the fallback heuristic instead. Generate
// never fails: the proposal text may be empty when the task itself carries
// no extractable token. When the model answers with the configured refusal
// phrase the proposal comes back marked Refused and must not be executed.
func (g *Generator) Generate(ctx context.Context, kind types.ActionKind, task string) (types.ActionProposal, bool) {
	content, err := g.Complete(ctx, task)
	if err != nil {
		g.log.Warn("", "completion failed, using fallback extraction", map[string]any{
			"error": err.Error(),
			"kind":  kind.String(),
		})
		return types.ActionProposal{
			Kind:       kind,
			Text:       ExtractFallback(task),
			SourceTask: task,
		}, true
	}

	if g.refusalReply != "" && strings.Contains(content, g.refusalReply) {
		g.log.Info("", "model declined the task", map[string]any{"reply": content})
		return types.ActionProposal{
			Kind:       kind,
			Text:       content,
			SourceTask: task,
			Refused:    true,
		}, false
	}

	return types.ActionProposal{
		Kind:       kind,
		Text:       content,
		SourceTask: task,
	}, false
}

// Complete sends one blocking completion request and returns the trimmed
// content of the first choice. Callers that can substitute their own
// degraded output use Complete directly; Generate wraps it with the
// extraction fallback.
func (g *Generator) Complete(ctx context.Context, task string) (string, error) {
	prompt := task
	if g.systemPrompt != "" {
		prompt = g.systemPrompt + "\n" + task
	}

	body, err := json.Marshal(completionRequest{
		Model:       g.model,
		Prompt:      prompt,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion endpoint returned status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	content := stripFences(strings.TrimSpace(decoded.Choices[0].Message.Content))
	if content == "" {
		return "", fmt.Errorf("completion response content is empty")
	}
	return content, nil
}

// ExtractFallback deterministically extracts an action token from task: the
// first filename-shaped token if one exists, otherwise the last
// whitespace-delimited token, otherwise the empty string. Two calls with
// the same input always yield the same output.
func ExtractFallback(task string) string {
	if match := filenamePattern.FindString(task); match != "" {
		return match
	}
	fields := strings.Fields(task)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// stripFences removes markdown code fences a model may wrap around a
// generated statement.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
