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

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func pinnedGenerator() *Generator {
	return NewGenerator(Config{
		Now:  func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
		Intn: func(n int) int { return 2 },
	})
}

func TestSummaryStartsWithMarker(t *testing.T) {
	g := pinnedGenerator()
	out := g.Summary("analyze transactions", 50)

	assert.True(t, strings.HasPrefix(out, DegradedMarker))
	assert.True(t, IsDegraded(out))
}

func TestSummaryContent(t *testing.T) {
	g := pinnedGenerator()
	out := g.Summary("analyze transactions", 50)

	assert.Contains(t, out, "Analysis summary for task: analyze transactions")
	assert.Contains(t, out, "Generated: 2025-03-14 09:26:53")
	assert.Contains(t, out, "Analyzed 50 input lines. Flagged 5 suspicious items")
}

func TestSummaryDeterministicWithPinnedSources(t *testing.T) {
	g := pinnedGenerator()
	assert.Equal(t, g.Summary("task", 10), g.Summary("task", 10))
}

func TestComplianceReport(t *testing.T) {
	g := pinnedGenerator()
	out := g.ComplianceReport("summary")

	assert.True(t, IsDegraded(out))
	assert.Contains(t, out, "FINANCIAL COMPLIANCE REPORT")
	assert.Contains(t, out, "Report Type: SUMMARY")
	assert.Contains(t, out, "EXECUTIVE SUMMARY")
	assert.Contains(t, out, "RECOMMENDED ACTIONS")
	assert.Contains(t, out, "Report ID: RPT-20250314092653")
}

func TestIsDegraded(t *testing.T) {
	assert.True(t, IsDegraded(DegradedMarker+"\nsome output"))
	assert.False(t, IsDegraded("genuine model output"))
	assert.False(t, IsDegraded("prefix "+DegradedMarker))
	assert.False(t, IsDegraded(""))
}
