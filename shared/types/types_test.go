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

import "testing"

func TestActionKindIsValid(t *testing.T) {
	tests := []struct {
		name  string
		kind  ActionKind
		valid bool
	}{
		{"file read", ActionFileRead, true},
		{"sql query", ActionSQLQuery, true},
		{"agent message", ActionAgentMessage, true},
		{"empty", ActionKind(""), false},
		{"unknown", ActionKind("shell_exec"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestPolicyDecisionAllowed(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		allowed bool
	}{
		{"explicit allow", OutcomeAllow, true},
		{"explicit block", OutcomeBlock, false},
		// Unknown is fail-closed: never allowed.
		{"unknown", OutcomeUnknown, false},
		{"zero value", Outcome(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := PolicyDecision{Outcome: tt.outcome}
			if got := d.Allowed(); got != tt.allowed {
				t.Errorf("Allowed() = %v, want %v", got, tt.allowed)
			}
		})
	}
}
