// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table implements the row-group layout: chunks of aligned
// columns and the tables that own them.
package table

import (
	"github.com/matrixorigin/stonework/pkg/container/column"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// Chunk is a bounded row group: an ordered list of columns aligned by
// row index. Value chunks accept appends until sealed; chunks of
// reference columns are assembled whole by operators.
type Chunk struct {
	cols   []column.Column
	sealed bool
}

func NewChunk() *Chunk {
	return &Chunk{}
}

func (c *Chunk) AddColumn(col column.Column) {
	c.cols = append(c.cols, col)
}

func (c *Chunk) Column(id types.ColumnID) column.Column {
	return c.cols[id]
}

func (c *Chunk) ColumnCount() int {
	return len(c.cols)
}

func (c *Chunk) Len() int {
	if len(c.cols) == 0 {
		return 0
	}
	return c.cols[0].Len()
}

func (c *Chunk) Sealed() bool {
	return c.sealed
}

// Seal freezes the chunk; its columns may then be replaced by encoded
// versions without changing row ids.
func (c *Chunk) Seal() {
	c.sealed = true
	for _, col := range c.cols {
		if vc, ok := col.(*column.ValueColumn); ok {
			vc.Seal()
		}
	}
}

// ReplaceColumn swaps in a re-encoded column of the same length. Only
// sealed chunks may be re-encoded.
func (c *Chunk) ReplaceColumn(id types.ColumnID, col column.Column) {
	if !c.sealed {
		sqlerror.Internal("re-encoding an open chunk")
	}
	if col.Len() != c.cols[id].Len() {
		sqlerror.Internal("re-encoded column changes the chunk's row count")
	}
	c.cols[id] = col
}

func (c *Chunk) appendRow(vals []types.Value) error {
	if c.sealed {
		sqlerror.Internal("append on a sealed chunk")
	}
	for i, v := range vals {
		if err := c.cols[i].Append(v); err != nil {
			return err
		}
	}
	return nil
}
