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

// Package metrics registers the Prometheus collectors shared by the
// pipeline and the gateway stub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProposalsTotal counts action proposals produced, by action kind.
	ProposalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opensec_agent_proposals_total",
			Help: "Total number of action proposals produced by the intent generator",
		},
		[]string{"kind"},
	)

	// PolicyDecisionsTotal counts gateway verdicts, by outcome.
	PolicyDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opensec_agent_policy_decisions_total",
			Help: "Total number of policy decisions returned by the gateway",
		},
		[]string{"outcome"},
	)

	// ExecutionsTotal counts executor runs, by status.
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opensec_agent_executions_total",
			Help: "Total number of authorized action executions",
		},
		[]string{"status"},
	)

	// RelayForwardsTotal counts router forwards, by relay status.
	RelayForwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opensec_agent_relay_forwards_total",
			Help: "Total number of payload forwards through the gateway router",
		},
		[]string{"status"},
	)

	// DegradedFallbacksTotal counts degraded-mode outputs produced when the
	// generation endpoint was unavailable.
	DegradedFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "opensec_agent_degraded_fallbacks_total",
			Help: "Total number of degraded-mode fallback outputs",
		},
	)
)

func init() {
	prometheus.MustRegister(ProposalsTotal)
	prometheus.MustRegister(PolicyDecisionsTotal)
	prometheus.MustRegister(ExecutionsTotal)
	prometheus.MustRegister(RelayForwardsTotal)
	prometheus.MustRegister(DegradedFallbacksTotal)
}
