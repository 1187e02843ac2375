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

// Package relay forwards a payload to the gateway router, which sanitizes
// it, hands it to the target agent, and returns both the sanitized payload
// and that agent's response. The forwarder itself never inspects or
// mutates the payload; that authority belongs entirely to the router.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"opensec/agents/shared/logger"
	"opensec/agents/shared/types"
)

// DefaultTimeout accounts for the downstream agent's own generation
// latency: the router does not reply until the target agent has.
const DefaultTimeout = 300 * time.Second

// HTTPClient is an interface for HTTP client operations (enables testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration for the forwarder.
type Config struct {
	URL     string        // Required: router endpoint URL
	Timeout time.Duration // Optional: default 300s
}

// Forwarder issues one blocking call per forward. A blocked response is
// terminal: the forwarder performs no automatic retries.
type Forwarder struct {
	url    string
	client HTTPClient
	log    *logger.Logger
}

// routeResponse is the router's success shape.
type routeResponse struct {
	Message        string `json:"message"`
	CleanPayload   string `json:"clean_payload"`
	TargetResponse string `json:"target_response"`
}

// NewForwarder creates a Forwarder from cfg.
func NewForwarder(cfg Config, log *logger.Logger) (*Forwarder, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("relay endpoint URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Forwarder{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}, nil
}

// Forward posts the envelope to the router and maps the outcome. A 2xx
// response yields Success with the sanitized payload and the target agent's
// response; any 4xx is an authoritative deny and yields Blocked with the
// body as reason; 5xx responses and transport failures yield
// TransportError, since a server-side fault is not a policy verdict.
func (f *Forwarder) Forward(ctx context.Context, sourceAgent, targetAgent, payload string) types.RelayResponse {
	envelope := types.RelayEnvelope{
		SourceAgent: sourceAgent,
		TargetAgent: targetAgent,
		Payload:     payload,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return types.RelayResponse{
			Status: types.RelayTransportError,
			Reason: fmt.Sprintf("failed to marshal envelope: %v", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return types.RelayResponse{
			Status: types.RelayTransportError,
			Reason: fmt.Sprintf("failed to create relay request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("", "router unreachable", map[string]any{"error": err.Error()})
		return types.RelayResponse{
			Status: types.RelayTransportError,
			Reason: fmt.Sprintf("router unreachable: %v", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		var routed routeResponse
		if err := json.NewDecoder(resp.Body).Decode(&routed); err != nil {
			return types.RelayResponse{
				Status: types.RelayTransportError,
				Reason: fmt.Sprintf("failed to decode router response: %v", err),
			}
		}
		f.log.Info("", "router accepted message", map[string]any{
			"target_agent": targetAgent,
			"message":      routed.Message,
		})
		return types.RelayResponse{
			Status:         types.RelaySuccess,
			CleanPayload:   routed.CleanPayload,
			TargetResponse: routed.TargetResponse,
		}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		raw, _ := io.ReadAll(resp.Body)
		return types.RelayResponse{
			Status: types.RelayBlocked,
			Reason: string(raw),
		}

	default:
		raw, _ := io.ReadAll(resp.Body)
		return types.RelayResponse{
			Status: types.RelayTransportError,
			Reason: fmt.Sprintf("router status %d: %s", resp.StatusCode, string(raw)),
		}
	}
}
