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

// Command openclaw is the file-read agent: it turns a task into a file
// path via the intent generator, clears the policy gateway, and reads the
// file only on an explicit allow.
//
// Usage:
//
//	openclaw [-config path] [task...]
//
// With no task arguments it reads tasks interactively until "quit".
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"opensec/agents/pipeline"
	"opensec/agents/shared/config"
	"opensec/agents/shared/types"
)

const systemPrompt = `You are OpenClaw, an autonomous agent.
You have ONE tool: read_local_file(filepath).
If the user asks you to read or summarize a file, output EXACTLY the filepath they want to read, and nothing else.
If they ask anything else, say "I can only read files."`

// refusalReply is the phrase the system prompt instructs the model to
// decline with; a reply containing it ends the task before validation.
const refusalReply = "I can only read"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "openclaw: %v\n", err)
		os.Exit(1)
	}
	cfg.AgentID = "openclaw"

	p, err := pipeline.FromConfig(cfg, pipeline.Profile{
		SystemPrompt: systemPrompt,
		RefusalReply: refusalReply,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "openclaw: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		outcome := p.RunTask(context.Background(), types.ActionFileRead, strings.Join(flag.Args(), " "))
		printOutcome(outcome)
		if outcome.Mode == pipeline.ModeBlocked {
			os.Exit(1)
		}
		return
	}

	// Interactive mode: one task per line until quit.
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nEnter prompt for OpenClaw (or 'quit'): ")
		if !scanner.Scan() {
			return
		}
		task := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(task) {
		case "quit", "exit":
			return
		case "":
			continue
		}
		printOutcome(p.RunTask(context.Background(), types.ActionFileRead, task))
	}
}

func printOutcome(o *pipeline.TaskOutcome) {
	switch o.Mode {
	case pipeline.ModeRefused:
		fmt.Printf("[openclaw] %s\n", o.Reason)
	case pipeline.ModeBlocked:
		fmt.Printf("[openclaw] BLOCKED: %s\n", o.Reason)
	case pipeline.ModeDegraded:
		fmt.Printf("[openclaw] DEGRADED (fallback extraction used)\n")
		printResult(o)
	default:
		printResult(o)
	}
}

func printResult(o *pipeline.TaskOutcome) {
	if o.Result == nil {
		fmt.Printf("[openclaw] no result: %s\n", o.Reason)
		return
	}
	if o.Result.Status == types.ExecFailure {
		fmt.Printf("[openclaw] execution failed: %s\n", o.Result.Error)
		return
	}
	fmt.Printf("[openclaw] read %q (%d bytes)\n", o.Proposal.Text, len(o.Result.Payload))
	fmt.Println(head(o.Result.Payload, 100))
}

// head returns the first n bytes of s with an ellipsis when truncated.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
