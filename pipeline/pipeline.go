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

// Package pipeline wires the intent generator, the policy gateway client,
// the executors, and the relay into the gated flow:
//
//	task -> proposal -> gateway validate -> {allow: execute, block: stop}
//
// The pipeline owns the protocol invariants: the proposal text submitted
// for validation is the exact text executed, a decision is obtained fresh
// for every proposal, and anything short of an explicit allow stops the
// task before the executor. Every terminal outcome is labeled so operators
// can tell genuine success, degraded fallback, and policy block apart.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"opensec/agents/shared/logger"
	"opensec/agents/shared/metrics"
	"opensec/agents/shared/types"
)

// IntentGenerator produces action proposals from free-text tasks. Complete
// exposes the raw generation call for flows that substitute their own
// degraded output instead of the extraction fallback.
type IntentGenerator interface {
	Generate(ctx context.Context, kind types.ActionKind, task string) (types.ActionProposal, bool)
	Complete(ctx context.Context, task string) (string, error)
}

// PolicyValidator submits proposals to the policy decision point.
type PolicyValidator interface {
	ValidatePrompt(ctx context.Context, prompt string) types.PolicyDecision
	ValidateSQL(ctx context.Context, query, agentID string) types.PolicyDecision
}

// Executor performs an authorized action.
type Executor interface {
	Execute(ctx context.Context, proposal types.ActionProposal) types.ExecutionResult
}

// Relay forwards a payload to a peer agent through the gateway router.
type Relay interface {
	Forward(ctx context.Context, sourceAgent, targetAgent, payload string) types.RelayResponse
}

// Reporter synthesizes degraded-mode output when generation is unavailable.
type Reporter interface {
	Summary(task string, lineCount int) string
	ComplianceReport(formatType string) string
}

// Mode labels a terminal pipeline state.
type Mode string

const (
	// ModeSuccess is a genuine, fully model-backed success.
	ModeSuccess Mode = "success"
	// ModeDegraded means the outcome used a local fallback for generation.
	ModeDegraded Mode = "degraded"
	// ModeBlocked means the gateway denied the action (or the decision was
	// unknown, which is treated the same way).
	ModeBlocked Mode = "blocked"
	// ModeRefused means the model declined the task outright; nothing was
	// validated or executed.
	ModeRefused Mode = "refused"
)

// TaskOutcome is the labeled terminal state of one gated task.
type TaskOutcome struct {
	RequestID string
	Mode      Mode
	Proposal  types.ActionProposal
	Decision  types.PolicyDecision
	Result    *types.ExecutionResult
	Reason    string
}

// RelayOutcome is the terminal state of one summary forward.
type RelayOutcome struct {
	RequestID       string
	Summary         string
	DegradedSummary bool
	Response        types.RelayResponse
}

// Config contains the pipeline's collaborators.
type Config struct {
	AgentID       string
	Intent        IntentGenerator
	Gateway       PolicyValidator
	FileExecutor  Executor
	QueryExecutor Executor
	Relay         Relay
	Reporter      Reporter
	Logger        *logger.Logger
}

// Pipeline runs one synchronous task at a time. It holds no mutable state
// across invocations.
type Pipeline struct {
	agentID string
	intent  IntentGenerator
	gate    PolicyValidator
	files   Executor
	queries Executor
	relay   Relay
	report  Reporter
	log     *logger.Logger
}

// New creates a Pipeline from cfg. All collaborators are required except
// Relay and Reporter, which only RelaySummary uses.
func New(cfg Config) (*Pipeline, error) {
	if cfg.AgentID == "" {
		return nil, fmt.Errorf("agent ID is required")
	}
	if cfg.Intent == nil {
		return nil, fmt.Errorf("intent generator is required")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("policy validator is required")
	}
	if cfg.FileExecutor == nil || cfg.QueryExecutor == nil {
		return nil, fmt.Errorf("both executors are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New("pipeline", cfg.AgentID)
	}

	return &Pipeline{
		agentID: cfg.AgentID,
		intent:  cfg.Intent,
		gate:    cfg.Gateway,
		files:   cfg.FileExecutor,
		queries: cfg.QueryExecutor,
		relay:   cfg.Relay,
		report:  cfg.Reporter,
		log:     cfg.Logger,
	}, nil
}

// RunTask executes the full gated flow for a file-read or SQL task. The
// proposal text handed to the executor is the same value that was
// validated; there is no substitution between the two steps.
func (p *Pipeline) RunTask(ctx context.Context, kind types.ActionKind, task string) *TaskOutcome {
	requestID := uuid.NewString()

	if kind != types.ActionFileRead && kind != types.ActionSQLQuery {
		// Fail closed rather than guessing an executor.
		return &TaskOutcome{
			RequestID: requestID,
			Mode:      ModeBlocked,
			Reason:    fmt.Sprintf("unsupported action kind %q for gated execution", kind),
		}
	}

	proposal, degraded := p.intent.Generate(ctx, kind, task)
	metrics.ProposalsTotal.WithLabelValues(kind.String()).Inc()
	if degraded {
		metrics.DegradedFallbacksTotal.Inc()
	}

	p.log.Info(requestID, "action proposed", map[string]any{
		"kind":     kind.String(),
		"action":   proposal.Text,
		"degraded": degraded,
	})

	if proposal.Refused {
		return &TaskOutcome{
			RequestID: requestID,
			Mode:      ModeRefused,
			Proposal:  proposal,
			Reason:    proposal.Text,
		}
	}

	if proposal.Text == "" {
		return &TaskOutcome{
			RequestID: requestID,
			Mode:      ModeDegraded,
			Proposal:  proposal,
			Reason:    "task yielded an empty action proposal",
		}
	}

	decision := p.validate(ctx, proposal)
	metrics.PolicyDecisionsTotal.WithLabelValues(string(decision.Outcome)).Inc()

	if !decision.Allowed() {
		p.log.Warn(requestID, "gateway denied action", map[string]any{
			"outcome": string(decision.Outcome),
			"reason":  decision.Reason,
		})
		return &TaskOutcome{
			RequestID: requestID,
			Mode:      ModeBlocked,
			Proposal:  proposal,
			Decision:  decision,
			Reason:    decision.Reason,
		}
	}

	result := p.executor(kind).Execute(ctx, proposal)
	metrics.ExecutionsTotal.WithLabelValues(string(result.Status)).Inc()

	p.log.Info(requestID, "action executed", map[string]any{
		"kind":   kind.String(),
		"status": string(result.Status),
	})

	mode := ModeSuccess
	if degraded {
		mode = ModeDegraded
	}
	return &TaskOutcome{
		RequestID: requestID,
		Mode:      mode,
		Proposal:  proposal,
		Decision:  decision,
		Result:    &result,
	}
}

// RelaySummary produces a summary for task via the generation service and
// forwards it to the target agent through the router. When generation fails
// the summary comes from the degraded reporter instead; the forward happens
// either way so the downstream agent always receives a well-formed payload.
// A pipeline assembled without a relay or reporter yields a transport-error
// outcome rather than panicking.
func (p *Pipeline) RelaySummary(ctx context.Context, targetAgent, task string) *RelayOutcome {
	requestID := uuid.NewString()

	if p.relay == nil || p.report == nil {
		return &RelayOutcome{
			RequestID: requestID,
			Response: types.RelayResponse{
				Status: types.RelayTransportError,
				Reason: "pipeline has no relay or reporter configured",
			},
		}
	}

	summary, err := p.intent.Complete(ctx, task)
	degraded := false
	if err != nil {
		degraded = true
		metrics.DegradedFallbacksTotal.Inc()
		summary = p.report.Summary(task, len(strings.Split(task, "\n")))
		p.log.Warn(requestID, "generation unavailable, using degraded summary", map[string]any{
			"error": err.Error(),
		})
	}

	response := p.relay.Forward(ctx, p.agentID, targetAgent, summary)
	metrics.RelayForwardsTotal.WithLabelValues(string(response.Status)).Inc()

	p.log.Info(requestID, "relay completed", map[string]any{
		"target_agent": targetAgent,
		"status":       string(response.Status),
	})

	return &RelayOutcome{
		RequestID:       requestID,
		Summary:         summary,
		DegradedSummary: degraded,
		Response:        response,
	}
}

// ReportOutcome is the terminal state of one compliance-report generation.
type ReportOutcome struct {
	RequestID string
	Report    string
	Degraded  bool
	Reason    string
}

// BuildReport produces a compliance report from a gateway-sanitized summary
// via the generation service, falling back to the reporter's templated
// report when generation fails. The summary arrives pre-sanitized by the
// router; this flow performs no validation round trip of its own.
func (p *Pipeline) BuildReport(ctx context.Context, cleanSummary, formatType string) *ReportOutcome {
	requestID := uuid.NewString()

	if p.report == nil {
		return &ReportOutcome{
			RequestID: requestID,
			Reason:    "pipeline has no reporter configured",
		}
	}

	report, err := p.intent.Complete(ctx, cleanSummary)
	if err != nil {
		metrics.DegradedFallbacksTotal.Inc()
		p.log.Warn(requestID, "generation unavailable, using templated report", map[string]any{
			"error": err.Error(),
		})
		return &ReportOutcome{
			RequestID: requestID,
			Report:    p.report.ComplianceReport(formatType),
			Degraded:  true,
			Reason:    err.Error(),
		}
	}

	p.log.Info(requestID, "compliance report generated", map[string]any{
		"format": formatType,
	})
	return &ReportOutcome{
		RequestID: requestID,
		Report:    report,
	}
}

// validate routes the proposal to the endpoint matching its kind. The two
// endpoints are distinct capabilities: statements go to the statement
// validator with the agent identity, everything else goes to the generic
// prompt validator.
func (p *Pipeline) validate(ctx context.Context, proposal types.ActionProposal) types.PolicyDecision {
	switch proposal.Kind {
	case types.ActionSQLQuery:
		return p.gate.ValidateSQL(ctx, proposal.Text, p.agentID)
	case types.ActionFileRead:
		return p.gate.ValidatePrompt(ctx, "read file "+proposal.Text)
	default:
		return p.gate.ValidatePrompt(ctx, proposal.Text)
	}
}

func (p *Pipeline) executor(kind types.ActionKind) Executor {
	if kind == types.ActionSQLQuery {
		return p.queries
	}
	return p.files
}
