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

package types

// ActionKind identifies the category of side effect an agent proposes.
type ActionKind string

const (
	// ActionFileRead reads a local file and returns its content.
	ActionFileRead ActionKind = "file_read"
	// ActionSQLQuery executes a statement against the local relational store.
	ActionSQLQuery ActionKind = "sql_query"
	// ActionAgentMessage forwards a payload to a peer agent via the router.
	ActionAgentMessage ActionKind = "agent_message"
)

// String returns the string representation of the ActionKind.
func (k ActionKind) String() string {
	return string(k)
}

// IsValid returns true if the ActionKind is a known value.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionFileRead, ActionSQLQuery, ActionAgentMessage:
		return true
	default:
		return false
	}
}

// ActionProposal is a concrete action produced by the intent generator for
// a single invocation. Proposals are ephemeral and never persisted: the
// exact Text submitted to the gateway is the exact Text executed.
type ActionProposal struct {
	Kind       ActionKind `json:"kind"`
	Text       string     `json:"text"`
	SourceTask string     `json:"source_task"`

	// Refused marks a proposal where the model explicitly declined the
	// task instead of producing an action. Text carries the model's reply
	// and must not be validated or executed.
	Refused bool `json:"refused,omitempty"`
}

// Outcome is the gateway's verdict on a single proposal.
type Outcome string

const (
	// OutcomeAllow is an explicit authorization to execute.
	OutcomeAllow Outcome = "allow"
	// OutcomeBlock is an explicit authoritative deny.
	OutcomeBlock Outcome = "block"
	// OutcomeUnknown covers unreachable gateways, unexpected statuses and
	// undecodable responses. Callers treat it exactly like OutcomeBlock.
	OutcomeUnknown Outcome = "unknown"
)

// PolicyDecision is the result of submitting one proposal to the gateway.
// Decisions are consumed immediately and never cached or reused across
// proposals, even for identical text: policy outcome may depend on context
// or time.
type PolicyDecision struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Allowed reports whether execution may proceed. Only an explicit allow
// qualifies; Unknown is fail-closed.
func (d PolicyDecision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// ExecStatus tags an execution result.
type ExecStatus string

const (
	ExecSuccess ExecStatus = "success"
	ExecFailure ExecStatus = "failure"
)

// ExecutionResult is what an executor returns after an authorized action.
// Executors never propagate errors to the caller; a failed operation comes
// back as ExecFailure with the error text in Error.
type ExecutionResult struct {
	Kind    ActionKind `json:"kind"`
	Status  ExecStatus `json:"status"`
	Payload string     `json:"payload,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// RelayEnvelope is the wire format posted to the gateway router. Payload is
// never mutated by the forwarding agent; only the router may alter it.
type RelayEnvelope struct {
	SourceAgent string `json:"source_agent"`
	TargetAgent string `json:"target_agent"`
	Payload     string `json:"payload"`
}

// RelayStatus tags the outcome of a forward through the router.
type RelayStatus string

const (
	RelaySuccess        RelayStatus = "success"
	RelayBlocked        RelayStatus = "blocked"
	RelayTransportError RelayStatus = "transport_error"
)

// RelayResponse is the typed result of Forwarder.Forward. A Blocked status
// is terminal for the current task: the caller must surface Reason and must
// not retry automatically.
type RelayResponse struct {
	Status         RelayStatus `json:"status"`
	CleanPayload   string      `json:"clean_payload,omitempty"`
	TargetResponse string      `json:"target_response,omitempty"`
	Reason         string      `json:"reason,omitempty"`
}
