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

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowMarshalPreservesColumnOrder(t *testing.T) {
	// Column names chosen so alphabetical order differs from result order.
	row, err := NewRow(
		[]string{"zeta", "alpha", "mid"},
		[]any{int64(1), "two", 3.5},
	)
	require.NoError(t, err)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"two","mid":3.5}`, string(data))
}

func TestRowMarshalNullValue(t *testing.T) {
	row, err := NewRow([]string{"id", "note"}, []any{int64(7), nil})
	require.NoError(t, err)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"note":null}`, string(data))
}

func TestNewRowLengthMismatch(t *testing.T) {
	_, err := NewRow([]string{"a", "b"}, []any{1})
	assert.Error(t, err)
}

func TestRowValue(t *testing.T) {
	row, err := NewRow([]string{"id", "name"}, []any{int64(1), "Laptop"})
	require.NoError(t, err)

	v, ok := row.Value("name")
	require.True(t, ok)
	assert.Equal(t, "Laptop", v)

	_, ok = row.Value("missing")
	assert.False(t, ok)
}

func TestRowSliceMarshalPreservesRowOrder(t *testing.T) {
	rows := make([]Row, 0, 3)
	for i := 3; i >= 1; i-- {
		row, err := NewRow([]string{"n"}, []any{int64(i)})
		require.NoError(t, err)
		rows = append(rows, row)
	}

	data, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, `[{"n":3},{"n":2},{"n":1}]`, string(data))
}
