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

package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opensec/agents/shared/logger"
	"opensec/agents/shared/types"
)

func testLogger() *logger.Logger {
	return logger.New("intent", "test-agent")
}

func newTestGenerator(t *testing.T, url string) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{
		URL:         url,
		Model:       "glm-5:cloud",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}, testLogger())
	require.NoError(t, err)
	return g
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "glm-5:cloud", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func TestNewGeneratorValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing url", Config{Model: "m"}},
		{"missing model", Config{URL: "http://localhost"}},
		{"temperature too high", Config{URL: "http://localhost", Model: "m", Temperature: 2.1}},
		{"temperature negative", Config{URL: "http://localhost", Model: "m", Temperature: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.cfg, testLogger())
			assert.Error(t, err)
		})
	}
}

func TestGenerateSuccess(t *testing.T) {
	server := completionServer(t, "orders.csv")
	defer server.Close()

	g := newTestGenerator(t, server.URL)
	proposal, degraded := g.Generate(context.Background(), types.ActionFileRead, "read the orders file")

	assert.False(t, degraded)
	assert.Equal(t, types.ActionFileRead, proposal.Kind)
	assert.Equal(t, "orders.csv", proposal.Text)
	assert.Equal(t, "read the orders file", proposal.SourceTask)
}

func TestGenerateStripsMarkdownFences(t *testing.T) {
	server := completionServer(t, "```sql\nSELECT * FROM orders WHERE user_id = 1\n```")
	defer server.Close()

	g := newTestGenerator(t, server.URL)
	proposal, degraded := g.Generate(context.Background(), types.ActionSQLQuery, "fetch orders for user 1")

	assert.False(t, degraded)
	assert.Equal(t, "SELECT * FROM orders WHERE user_id = 1", proposal.Text)
}

func TestGenerateFallbackOnTransportError(t *testing.T) {
	server := completionServer(t, "unused")
	server.Close() // connection refused from here on

	g := newTestGenerator(t, server.URL)
	proposal, degraded := g.Generate(context.Background(), types.ActionFileRead, "summarize report.csv")

	assert.True(t, degraded)
	assert.Equal(t, "report.csv", proposal.Text)
}

func TestGenerateFallbackOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	g := newTestGenerator(t, server.URL)
	proposal, degraded := g.Generate(context.Background(), types.ActionFileRead, "summarize report.csv")

	assert.True(t, degraded)
	assert.Equal(t, "report.csv", proposal.Text)
}

func TestGenerateFallbackOnMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>gateway error</html>"},
		{"no choices", `{"choices":[]}`},
		{"empty content", `{"choices":[{"message":{"content":"  "}}]}`},
		{"missing message", `{"choices":[{}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			g := newTestGenerator(t, server.URL)
			proposal, degraded := g.Generate(context.Background(), types.ActionFileRead, "summarize report.csv")

			assert.True(t, degraded)
			assert.Equal(t, "report.csv", proposal.Text)
		})
	}
}

func TestGenerateMarksRefusal(t *testing.T) {
	server := completionServer(t, "I can only read files.")
	defer server.Close()

	g, err := NewGenerator(Config{
		URL:          server.URL,
		Model:        "glm-5:cloud",
		RefusalReply: "I can only read",
		Temperature:  0.7,
		Timeout:      5 * time.Second,
	}, testLogger())
	require.NoError(t, err)

	proposal, degraded := g.Generate(context.Background(), types.ActionFileRead, "what is the weather")

	assert.False(t, degraded)
	assert.True(t, proposal.Refused)
	assert.Equal(t, "I can only read files.", proposal.Text)
}

// Without a configured refusal phrase the same reply is an ordinary proposal.
func TestGenerateNoRefusalWhenUnconfigured(t *testing.T) {
	server := completionServer(t, "I can only read files.")
	defer server.Close()

	g := newTestGenerator(t, server.URL)
	proposal, _ := g.Generate(context.Background(), types.ActionFileRead, "what is the weather")

	assert.False(t, proposal.Refused)
}

func TestCompletePrependsSystemPrompt(t *testing.T) {
	var seenPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seenPrompt = req.Prompt
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer server.Close()

	g, err := NewGenerator(Config{
		URL:          server.URL,
		Model:        "glm-5:cloud",
		SystemPrompt: "You translate tasks into file paths.",
		Temperature:  0,
		Timeout:      5 * time.Second,
	}, testLogger())
	require.NoError(t, err)

	_, err = g.Complete(context.Background(), "read notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "You translate tasks into file paths.\nread notes.txt", seenPrompt)
}

func TestExtractFallback(t *testing.T) {
	tests := []struct {
		name string
		task string
		want string
	}{
		{"filename in task", "summarize report.csv", "report.csv"},
		{"path with directories", "please read /var/log/app.log now", "/var/log/app.log"},
		{"no filename uses last token", "fetch all recent orders", "orders"},
		{"empty task", "", ""},
		{"whitespace only", "   ", ""},
		{"first filename wins", "diff a.txt b.txt", "a.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFallback(tt.task))
		})
	}
}

// The fallback path must be deterministic: same input, same output.
func TestExtractFallbackDeterministic(t *testing.T) {
	inputs := []string{
		"summarize report.csv",
		"garbled ???",
		"",
		"read /etc/hosts quickly",
	}
	for _, input := range inputs {
		first := ExtractFallback(input)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, ExtractFallback(input))
		}
	}
}
