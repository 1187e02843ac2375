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

// Package report synthesizes templated output when the generation service
// is fully unavailable, so the pipeline always yields a well-formed result
// under upstream outage. Every output starts with DegradedMarker to
// distinguish it from genuine model output.
package report

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// DegradedMarker is prefixed to every templated output. Operators use it to
// tell degraded fallback results from genuine model output.
const DegradedMarker = "[DEGRADED: generated without model assistance]"

// Config contains the generator's time and randomness sources. Both are
// injectable so tests can pin them.
type Config struct {
	Now  func() time.Time // Optional: default time.Now
	Intn func(n int) int  // Optional: default rand.Intn
}

// Generator produces degraded-mode summaries and reports.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

// NewGenerator creates a Generator from cfg, filling in defaults.
func NewGenerator(cfg Config) *Generator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Intn == nil {
		cfg.Intn = rand.Intn
	}
	return &Generator{now: cfg.Now, intn: cfg.Intn}
}

// Summary produces a short templated analysis summary for a task whose
// model-backed analysis failed. lineCount is the number of input lines the
// summary claims to cover; the flagged-item count is small random filler.
func (g *Generator) Summary(task string, lineCount int) string {
	flagged := 3 + g.intn(6)
	var b strings.Builder
	b.WriteString(DegradedMarker)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Analysis summary for task: %s\n", task)
	fmt.Fprintf(&b, "Generated: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Analyzed %d input lines. Flagged %d suspicious items including large transfers and rapid successive debits.\n", lineCount, flagged)
	return b.String()
}

// ComplianceReport produces a fixed-structure compliance report with static
// section headings, a timestamp, and a report ID derived from the clock.
func (g *Generator) ComplianceReport(formatType string) string {
	now := g.now()
	var b strings.Builder
	b.WriteString(DegradedMarker)
	b.WriteString("\n")
	b.WriteString("FINANCIAL COMPLIANCE REPORT\n")
	b.WriteString("===========================\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Report Type: %s\n", strings.ToUpper(formatType))
	b.WriteString(`
EXECUTIVE SUMMARY
-----------------
The analysis identified several transactions requiring review based on
the anonymized suspicious activity summary provided upstream.

KEY FINDINGS
------------
1. Large Value Transactions: Multiple transactions exceeding $10,000 flagged
2. Pattern Analysis: Unusual timing and frequency detected
3. Risk Categories: High-value transfers, offshore destinations

RISK ASSESSMENT
---------------
- HIGH: Wire transfers over $25,000 to unfamiliar recipients
- MEDIUM: Multiple large debits within short timeframes
- LOW: Standard merchant transactions

RECOMMENDED ACTIONS
-------------------
1. Require secondary authorization for transactions over $10,000
2. Verify source of funds for offshore transfers
3. Implement 24-hour hold for wire transfers exceeding $25,000
4. File Suspicious Activity Report (SAR) for flagged offshore transfers

COMPLIANCE NOTES
----------------
All data has been anonymized in compliance with PII protection requirements.
This report is suitable for regulatory submission.
`)
	fmt.Fprintf(&b, "\nReport ID: RPT-%s\n", now.Format("20060102150405"))
	return b.String()
}

// IsDegraded reports whether output carries the degraded-mode marker.
func IsDegraded(output string) bool {
	return strings.HasPrefix(output, DegradedMarker)
}
