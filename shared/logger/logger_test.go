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

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
)

// TestNew tests logger initialization
func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		component       string
		agentID         string
		expectedAgentID string
	}{
		{
			name:            "with agent ID",
			component:       "gateway",
			agentID:         "dbguardian",
			expectedAgentID: "dbguardian",
		},
		{
			name:            "without agent ID",
			component:       "intent",
			agentID:         "",
			expectedAgentID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.component, tt.agentID)

			if l.Component != tt.component {
				t.Errorf("Expected component %s, got %s", tt.component, l.Component)
			}
			if l.AgentID != tt.expectedAgentID {
				t.Errorf("Expected agent ID %s, got %s", tt.expectedAgentID, l.AgentID)
			}
			if l.Hostname == "" {
				t.Error("Expected hostname to be set")
			}
		})
	}
}

// captureOutput redirects the stdlib log output for the duration of fn.
func captureOutput(fn func()) string {
	var buf bytes.Buffer
	original := log.Writer()
	originalFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(original)
		log.SetFlags(originalFlags)
	}()
	fn()
	return buf.String()
}

func TestLogEntryShape(t *testing.T) {
	l := New("pipeline", "openclaw")

	out := captureOutput(func() {
		l.Info("req-123", "action proposed", map[string]any{"kind": "file_read"})
	})

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v\noutput: %s", err, out)
	}

	if entry.Level != INFO {
		t.Errorf("Expected level INFO, got %s", entry.Level)
	}
	if entry.Component != "pipeline" {
		t.Errorf("Expected component pipeline, got %s", entry.Component)
	}
	if entry.AgentID != "openclaw" {
		t.Errorf("Expected agent_id openclaw, got %s", entry.AgentID)
	}
	if entry.RequestID != "req-123" {
		t.Errorf("Expected request_id req-123, got %s", entry.RequestID)
	}
	if entry.Message != "action proposed" {
		t.Errorf("Expected message %q, got %q", "action proposed", entry.Message)
	}
	if entry.Fields["kind"] != "file_read" {
		t.Errorf("Expected fields.kind file_read, got %v", entry.Fields["kind"])
	}
	if entry.Timestamp == "" {
		t.Error("Expected timestamp to be set")
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(*Logger, string, string, map[string]any)
		expected LogLevel
	}{
		{"info", (*Logger).Info, INFO},
		{"warn", (*Logger).Warn, WARN},
		{"error", (*Logger).Error, ERROR},
		{"debug", (*Logger).Debug, DEBUG},
	}

	l := New("test", "test-agent")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(func() {
				tt.logFunc(l, "", "message", nil)
			})

			var entry LogEntry
			if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
				t.Fatalf("Log output is not valid JSON: %v", err)
			}
			if entry.Level != tt.expected {
				t.Errorf("Expected level %s, got %s", tt.expected, entry.Level)
			}
		})
	}
}

func TestWithError(t *testing.T) {
	l := New("relay", "datacleaner")

	out := captureOutput(func() {
		l.WithError("req-9", "router unreachable", errors.New("connection refused"), nil)
	})

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	if entry.Fields["error"] != "connection refused" {
		t.Errorf("Expected error field, got %v", entry.Fields["error"])
	}
}
