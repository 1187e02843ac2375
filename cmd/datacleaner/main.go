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

// Command datacleaner analyzes transaction logs into a suspicious-activity
// summary and forwards it to the validator agent through the gateway
// router. The router sanitizes the payload and returns both the clean
// payload and the validator's response.
//
// Usage:
//
//	datacleaner [-config path] [-count n] [task...]
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"opensec/agents/pipeline"
	"opensec/agents/shared/config"
	"opensec/agents/shared/types"
)

const (
	defaultTask = "Analyze transaction logs for suspicious activity"
	targetAgent = "validator"
)

const systemPrompt = `You are a financial compliance analyst agent. Analyze the following transaction logs
and identify suspicious activity patterns such as:
- Unusually large transactions
- Multiple rapid transactions
- Offshore transfers
- Unusual hours

Provide a summary of suspicious activity found. Be thorough but concise.`

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	count := flag.Int("count", 50, "number of sample transactions to synthesize")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "datacleaner: %v\n", err)
		os.Exit(1)
	}
	cfg.AgentID = "datacleaner"

	task := defaultTask
	if flag.NArg() > 0 {
		task = strings.Join(flag.Args(), " ")
	}

	p, err := pipeline.FromConfig(cfg, pipeline.Profile{SystemPrompt: systemPrompt})
	if err != nil {
		fmt.Fprintf(os.Stderr, "datacleaner: %v\n", err)
		os.Exit(1)
	}

	transactions := sampleTransactions(*count)
	fmt.Printf("[datacleaner] collected %d transactions\n", len(strings.Split(transactions, "\n")))

	outcome := p.RelaySummary(context.Background(), targetAgent, task+"\n\nTRANSACTION LOGS:\n"+transactions)

	if outcome.DegradedSummary {
		fmt.Println("[datacleaner] DEGRADED: summary generated without model assistance")
	}

	switch outcome.Response.Status {
	case types.RelayBlocked:
		fmt.Printf("[datacleaner] GATEWAY BLOCKED THE MESSAGE: %s\n", outcome.Response.Reason)
		os.Exit(1)
	case types.RelayTransportError:
		fmt.Printf("[datacleaner] failed to reach gateway router: %s\n", outcome.Response.Reason)
		os.Exit(1)
	}

	fmt.Println("\n=== CLEAN OUTPUT (forwarded to validator) ===")
	fmt.Println(outcome.Response.CleanPayload)
	fmt.Println("\n=== VALIDATOR RESPONSE ===")
	fmt.Println(outcome.Response.TargetResponse)
}

// sampleTransactions synthesizes demo transaction log lines. Peripheral
// sample data only; the pipeline never sees anything but the final string.
func sampleTransactions(count int) string {
	merchants := []string{"Amazon", "Walmart", "Target", "Costco", "Starbucks", "Netflix", "Apple", "Best Buy"}
	swifts := []string{"CHASUS33", "BOFAUS3N", "CITIUS33"}
	destinations := []string{"ACC-FRIEND", "ACC-FAMILY", "ACC-BUSINESS"}
	kinds := []string{"DEBIT", "CREDIT", "TRANSFER", "WIRE"}

	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		date := time.Now().AddDate(0, 0, -rand.Intn(31))
		account := fmt.Sprintf("ACC-%04d", 1000+rand.Intn(9000))
		amount := 10 + rand.Float64()*49990

		var line string
		switch kinds[rand.Intn(len(kinds))] {
		case "DEBIT":
			line = fmt.Sprintf("%s | Account: %s | Type: DEBIT | Amount: $%.2f | Merchant: %s",
				date.Format("2006-01-02 15:04:05"), account, amount, merchants[rand.Intn(len(merchants))])
		case "CREDIT":
			line = fmt.Sprintf("%s | Account: %s | Type: CREDIT | Amount: $%.2f | From: Payroll",
				date.Format("2006-01-02 15:04:05"), account, amount)
		case "WIRE":
			line = fmt.Sprintf("%s | Account: %s | Type: WIRE | Amount: $%.2f | To: SWIFT: %s",
				date.Format("2006-01-02 15:04:05"), account, amount, swifts[rand.Intn(len(swifts))])
		default:
			line = fmt.Sprintf("%s | Account: %s | Type: TRANSFER | Amount: $%.2f | To: %s",
				date.Format("2006-01-02 15:04:05"), account, amount, destinations[rand.Intn(len(destinations))])
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
