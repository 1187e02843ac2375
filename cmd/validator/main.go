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

// Command validator is the auditor agent: it receives a gateway-sanitized
// suspicious-activity summary and generates the final compliance report via
// the generation service, falling back to a templated report when the
// service is unavailable. It trusts the router's sanitization and performs
// no validation round trip of its own.
//
// Usage:
//
//	validator [-config path] [-format detailed] [summary...]
//
// With no summary arguments it audits a built-in sample summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"opensec/agents/pipeline"
	"opensec/agents/shared/config"
)

// maxSummaryChars caps how much of the received summary is embedded in the
// generation prompt.
const maxSummaryChars = 2000

const systemPrompt = `You are a Financial Compliance Auditor. Create a professional compliance report
based on the following anonymized suspicious activity summary.

Format the report professionally with:
- Executive Summary
- Detailed Findings
- Risk Assessment
- Recommended Actions
- Compliance Notes

Ensure all data remains anonymized and suitable for regulatory submission.`

const sampleCleanSummary = `SUSPICIOUS ACTIVITY SUMMARY - Week of Jan 15, 2024
==================================================

1. LARGE TRANSFERS DETECTED:
   - $10,000 transfer to Account X (Flagged: URGENT note)
   - $50,000 transfer to ACC-[REDACTED] (Flagged: offshore)
   - $25,000 wire to SWIFT: CHASUS33

2. UNUSUAL PATTERNS:
   - 3 transactions over $5,000 within 2 hours
   - Multiple new merchant categories for Account ACC-[REDACTED]
   - Night-time transactions (unusual for this account profile)

3. HIGH-RISK ACCOUNTS:
   - ACC-[REDACTED]: Multiple large transfers
   - ACC-[REDACTED]: Wire transfer to unknown entity

4. RECOMMENDED ACTIONS:
   - Review all transactions over $10,000 with customer verification
   - Flag offshore transfers for AML review
   - Request additional documentation for wire transfers`

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	format := flag.String("format", "detailed", "report format type")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validator: %v\n", err)
		os.Exit(1)
	}
	cfg.AgentID = "validator"

	summary := sampleCleanSummary
	if flag.NArg() > 0 {
		summary = strings.Join(flag.Args(), " ")
	} else {
		fmt.Println("[validator] no input provided, auditing sample summary")
	}

	p, err := pipeline.FromConfig(cfg, pipeline.Profile{SystemPrompt: systemPrompt})
	if err != nil {
		fmt.Fprintf(os.Stderr, "validator: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("[validator] received gateway-sanitized summary (%d chars)\n", len(summary))

	outcome := p.BuildReport(context.Background(), "ANONYMIZED SUMMARY:\n"+head(summary, maxSummaryChars), *format)
	if outcome.Degraded {
		fmt.Printf("[validator] DEGRADED: generation unavailable (%s), using templated report\n", outcome.Reason)
	}
	if outcome.Report == "" {
		fmt.Fprintf(os.Stderr, "validator: report generation failed: %s\n", outcome.Reason)
		os.Exit(1)
	}

	fmt.Println("\n=== FINAL COMPLIANCE REPORT ===")
	fmt.Println(outcome.Report)
}

// head returns the first n bytes of s.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
