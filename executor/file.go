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

// Package executor performs authorized actions. Executors are invoked
// strictly after the gateway returned an explicit allow for the proposal,
// execute the proposal text exactly as validated, and never propagate an
// error to the caller: failures come back as ExecFailure results.
package executor

import (
	"context"
	"os"

	"opensec/agents/shared/logger"
	"opensec/agents/shared/types"
)

// FileReader executes file-read proposals. The proposal text is the path,
// opened read-only.
type FileReader struct {
	log *logger.Logger
}

// NewFileReader creates a FileReader.
func NewFileReader(log *logger.Logger) *FileReader {
	return &FileReader{log: log}
}

// Execute reads the file named by the proposal text and returns its full
// content. Missing files, permission problems, and I/O errors all come back
// as a failure result carrying the error text.
func (f *FileReader) Execute(ctx context.Context, proposal types.ActionProposal) types.ExecutionResult {
	content, err := os.ReadFile(proposal.Text)
	if err != nil {
		f.log.Warn("", "file read failed", map[string]any{
			"path":  proposal.Text,
			"error": err.Error(),
		})
		return types.ExecutionResult{
			Kind:   types.ActionFileRead,
			Status: types.ExecFailure,
			Error:  err.Error(),
		}
	}

	return types.ExecutionResult{
		Kind:    types.ActionFileRead,
		Status:  types.ExecSuccess,
		Payload: string(content),
	}
}
