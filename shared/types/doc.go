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

// Package types provides the shared data model for the policy-gated action
// pipeline: action proposals, policy decisions, execution results, and the
// relay envelope/response pair exchanged with the gateway router.
//
// Every outcome in this package is tagged by an explicit discriminant.
// Callers must switch on the discriminant rather than matching substrings
// in payloads, since legitimate content may mention words like "error".
package types
