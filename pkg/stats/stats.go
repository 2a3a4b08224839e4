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

// Package stats provides the statistics collaborator of the optimizer:
// row counts and per-column summaries. The engine core only reads the
// accessors; plan rewrites estimate cardinalities from them.
package stats

import (
	"github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
)

// ColumnStatistics summarizes one column.
type ColumnStatistics struct {
	DistinctCount uint64
	Min, Max      types.Value // NULL when the column holds no values
}

// TableStatistics is attached to a table when it is registered with the
// storage manager.
type TableStatistics struct {
	RowCount uint64
	Columns  []ColumnStatistics
}

// Generate scans a table once and builds its statistics. Distinct
// counts are hyperloglog estimates.
func Generate(tbl *table.Table) *TableStatistics {
	ts := &TableStatistics{
		RowCount: tbl.RowCount(),
		Columns:  make([]ColumnStatistics, tbl.ColumnCount()),
	}
	for i := range ts.Columns {
		ts.Columns[i] = generateColumn(tbl, types.ColumnID(i))
	}
	return ts
}

func generateColumn(tbl *table.Table, col types.ColumnID) ColumnStatistics {
	typ := tbl.ColumnType(col).Oid
	cs := ColumnStatistics{Min: types.NewNull(typ), Max: types.NewNull(typ)}
	sketch := hyperloglog.New14()

	for chunk := 0; chunk < tbl.ChunkCount(); chunk++ {
		c := tbl.GetChunk(uint32(chunk))
		for row := 0; row < c.Len(); row++ {
			v := c.Column(col).GetValue(uint32(row))
			if v.IsNull() {
				continue
			}
			sketch.Insert([]byte(v.String()))
			if cs.Min.IsNull() || v.Compare(cs.Min) < 0 {
				cs.Min = v
			}
			if cs.Max.IsNull() || v.Compare(cs.Max) > 0 {
				cs.Max = v
			}
		}
	}
	cs.DistinctCount = sketch.Estimate()
	return cs
}
