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

// Package gatewaystub is a local development stand-in for the external
// gateway stack: the completion endpoint, both policy validation endpoints,
// and the agent-message router. Its deny rules are deliberately simple
// keyword checks; the production gateway's decision logic is external to
// this repository and not modeled here.
package gatewaystub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"opensec/agents/shared/logger"
)

// Default deny rules. Statement rules run uppercased, prompt rules
// lowercased.
var (
	defaultPromptDenyKeywords = []string{
		"password",
		"secret",
		"/etc/",
		"ignore all previous instructions",
	}
	defaultStatementDenyRules = map[string]string{
		"DROP ":     "DROP statements are forbidden",
		"DELETE ":   "DELETE statements are forbidden",
		"TRUNCATE ": "TRUNCATE statements are forbidden",
		"ALTER ":    "ALTER statements are forbidden",
		"PASSWORD":  "access to credential columns is denied",
	}
)

// accountPattern matches account identifiers the router redacts before
// forwarding a payload.
var accountPattern = regexp.MustCompile(`ACC-\d{4}(?:-\d{4})*`)

// Config contains configuration for the stub.
type Config struct {
	// PromptDenyKeywords overrides the default prompt deny list.
	PromptDenyKeywords []string
	// StatementDenyRules overrides the default statement deny rules,
	// mapping an uppercased fragment to the reason returned on a match.
	StatementDenyRules map[string]string
	// CannedSQL is the completion returned for statement-generation
	// prompts (default: a harmless SELECT).
	CannedSQL string
	// TargetResponse is the canned peer-agent reply returned by the router
	// (default: a short acknowledgment).
	TargetResponse string
}

// Stub implements the gateway surface as an http.Handler.
type Stub struct {
	promptDeny     []string
	statementDeny  map[string]string
	cannedSQL      string
	targetResponse string
	log            *logger.Logger
}

// New creates a Stub handler from cfg.
func New(cfg Config) http.Handler {
	s := &Stub{
		promptDeny:     cfg.PromptDenyKeywords,
		statementDeny:  cfg.StatementDenyRules,
		cannedSQL:      cfg.CannedSQL,
		targetResponse: cfg.TargetResponse,
		log:            logger.New("gatewaystub", "gateway"),
	}
	if s.promptDeny == nil {
		s.promptDeny = defaultPromptDenyKeywords
	}
	if s.statementDeny == nil {
		s.statementDeny = defaultStatementDenyRules
	}
	if s.cannedSQL == "" {
		s.cannedSQL = "SELECT id, product, amount FROM orders"
	}
	if s.targetResponse == "" {
		s.targetResponse = "Summary received. Compliance report queued."
	}

	r := mux.NewRouter()
	r.HandleFunc("/bifrost/v1/chat/completions", s.handleCompletion).Methods(http.MethodPost)
	r.HandleFunc("/api/validate", s.handleValidate).Methods(http.MethodPost)
	r.HandleFunc("/api/validate-sql", s.handleValidateSQL).Methods(http.MethodPost)
	r.HandleFunc("/api/agent-message", s.handleAgentMessage).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return cors.Default().Handler(r)
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

// handleCompletion answers in the OpenAI-compatible response shape. SQL
// generation prompts get the canned statement; anything mentioning a
// filename gets that filename back; everything else gets an echo summary.
func (s *Stub) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid completion request", http.StatusBadRequest)
		return
	}

	content := s.completionContent(req.Prompt)
	writeJSON(w, http.StatusOK, map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
}

var stubFilenamePattern = regexp.MustCompile(`[\w/.-]+\.\w+`)

func (s *Stub) completionContent(prompt string) string {
	if strings.Contains(strings.ToUpper(prompt), "SQL") {
		return s.cannedSQL
	}
	if match := stubFilenamePattern.FindString(prompt); match != "" {
		return match
	}
	return "Summary: no notable findings in the provided input."
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Stub) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid validation request", http.StatusBadRequest)
		return
	}

	lowered := strings.ToLower(req.Prompt)
	for _, keyword := range s.promptDeny {
		if strings.Contains(lowered, keyword) {
			s.log.Warn("", "prompt denied", map[string]any{"keyword": keyword})
			writeJSON(w, http.StatusForbidden, map[string]string{
				"detail": fmt.Sprintf("prompt matched deny rule: %s", keyword),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "allowed"})
}

type sqlRequest struct {
	Query   string `json:"query"`
	AgentID string `json:"agent_id"`
}

func (s *Stub) handleValidateSQL(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid validation request", http.StatusBadRequest)
		return
	}

	uppered := strings.ToUpper(req.Query)
	for fragment, reason := range s.statementDeny {
		if strings.Contains(uppered, fragment) {
			s.log.Warn("", "statement denied", map[string]any{
				"agent_id": req.AgentID,
				"fragment": fragment,
			})
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": reason})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "allowed"})
}

type envelope struct {
	SourceAgent string `json:"source_agent"`
	TargetAgent string `json:"target_agent"`
	Payload     string `json:"payload"`
}

// handleAgentMessage sanitizes the payload and answers as the router would:
// the sanitized payload plus the target agent's canned response.
func (s *Stub) handleAgentMessage(w http.ResponseWriter, r *http.Request) {
	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "invalid envelope", http.StatusBadRequest)
		return
	}
	if env.SourceAgent == "" || env.TargetAgent == "" {
		http.Error(w, "source_agent and target_agent are required", http.StatusBadRequest)
		return
	}

	lowered := strings.ToLower(env.Payload)
	for _, keyword := range s.promptDeny {
		if strings.Contains(lowered, keyword) {
			s.log.Warn("", "message payload denied", map[string]any{
				"source_agent": env.SourceAgent,
				"keyword":      keyword,
			})
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprintf(w, "payload matched deny rule: %s", keyword)
			return
		}
	}

	clean := accountPattern.ReplaceAllString(env.Payload, "ACC-[REDACTED]")
	writeJSON(w, http.StatusOK, map[string]string{
		"message":         fmt.Sprintf("routed %d chars from %s to %s", len(clean), env.SourceAgent, env.TargetAgent),
		"clean_payload":   clean,
		"target_response": s.targetResponse,
	})
}

func (s *Stub) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
