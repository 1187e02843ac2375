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

package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opensec/agents/shared/logger"
	"opensec/agents/shared/types"
)

func testLogger() *logger.Logger {
	return logger.New("executor", "test-agent")
}

func TestFileReaderSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,amount\n1,100\n2,250\n"), 0o600))

	r := NewFileReader(testLogger())
	result := r.Execute(context.Background(), types.ActionProposal{
		Kind: types.ActionFileRead,
		Text: path,
	})

	assert.Equal(t, types.ExecSuccess, result.Status)
	assert.Equal(t, types.ActionFileRead, result.Kind)
	assert.Equal(t, "id,amount\n1,100\n2,250\n", result.Payload)
	assert.Empty(t, result.Error)
}

func TestFileReaderMissingFile(t *testing.T) {
	r := NewFileReader(testLogger())
	result := r.Execute(context.Background(), types.ActionProposal{
		Kind: types.ActionFileRead,
		Text: filepath.Join(t.TempDir(), "absent.txt"),
	})

	assert.Equal(t, types.ExecFailure, result.Status)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.Payload)
}

func TestFileReaderEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	r := NewFileReader(testLogger())
	result := r.Execute(context.Background(), types.ActionProposal{
		Kind: types.ActionFileRead,
		Text: path,
	})

	assert.Equal(t, types.ExecSuccess, result.Status)
	assert.Empty(t, result.Payload)
}
