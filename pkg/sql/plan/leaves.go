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

package plan

import (
	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/stats"
)

// StoredTableNode is the leaf over a table registered with the storage
// manager; the table and its statistics are resolved at build time.
type StoredTableNode struct {
	baseNode
	name string
	tbl  *table.Table
}

func NewStoredTable(name string, tbl *table.Table, st *stats.TableStatistics) *StoredTableNode {
	n := &StoredTableNode{name: name, tbl: tbl}
	n.init(n, StoredTable)
	n.stats = st
	return n
}

func (n *StoredTableNode) TableName() string   { return n.name }
func (n *StoredTableNode) Table() *table.Table { return n.tbl }

func (n *StoredTableNode) Description() string {
	return "[StoredTable] " + n.name
}

func (n *StoredTableNode) OutputColumnNames() []string {
	return n.tbl.ColumnNames()
}

func (n *StoredTableNode) OutputColumnOrigins() []ColumnOrigin {
	origins := make([]ColumnOrigin, n.tbl.ColumnCount())
	for i := range origins {
		origins[i] = ColumnOrigin{Node: n, Column: types.ColumnID(i)}
	}
	return origins
}

func (n *StoredTableNode) FindColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, bool, error) {
	if ref.TableName != "" {
		qualifier := n.name
		if n.alias != "" {
			qualifier = n.alias
		}
		if ref.TableName != qualifier {
			return ColumnOrigin{}, false, nil
		}
	}
	id, ok := n.tbl.ColumnIDByName(ref.ColumnName)
	if !ok {
		return ColumnOrigin{}, false, nil
	}
	return ColumnOrigin{Node: n, Column: id}, true, nil
}

func (n *StoredTableNode) FindTableNameOrigin(tableName string) Node {
	if n.alias != "" {
		if n.alias == tableName {
			return n
		}
		return nil
	}
	if n.name == tableName {
		return n
	}
	return nil
}

func (n *StoredTableNode) ManagesTable(tableName string) bool {
	return n.name == tableName
}

// DummyTableNode is the zero-column leaf under INSERT ... VALUES
// projections.
type DummyTableNode struct {
	baseNode
}

func NewDummyTable() *DummyTableNode {
	n := &DummyTableNode{}
	n.init(n, DummyTable)
	return n
}

func (n *DummyTableNode) Description() string {
	return "[DummyTable]"
}

func (n *DummyTableNode) OutputColumnNames() []string { return nil }

func (n *DummyTableNode) OutputColumnOrigins() []ColumnOrigin { return nil }

// MockNode is a leaf with a declared schema and optional injected
// statistics. Tests use it to build plans without storage.
type MockNode struct {
	baseNode
	names []string
	typs  []types.Type
}

func NewMock(names []string, typs []types.Type) *MockNode {
	if len(names) != len(typs) {
		sqlerror.Internal("mock node with mismatched names and types")
	}
	n := &MockNode{names: names, typs: typs}
	n.init(n, Mock)
	return n
}

func (n *MockNode) Description() string {
	return "[Mock]"
}

func (n *MockNode) OutputColumnNames() []string { return n.names }

func (n *MockNode) ColumnTypes() []types.Type { return n.typs }

func (n *MockNode) OutputColumnOrigins() []ColumnOrigin {
	origins := make([]ColumnOrigin, len(n.names))
	for i := range origins {
		origins[i] = ColumnOrigin{Node: n, Column: types.ColumnID(i)}
	}
	return origins
}

func (n *MockNode) FindColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, bool, error) {
	if ref.TableName != "" && ref.TableName != n.alias {
		return ColumnOrigin{}, false, nil
	}
	for i, name := range n.names {
		if name == ref.ColumnName {
			return ColumnOrigin{Node: n, Column: types.ColumnID(i)}, true, nil
		}
	}
	return ColumnOrigin{}, false, nil
}

func (n *MockNode) FindTableNameOrigin(tableName string) Node {
	if n.alias == tableName {
		return n
	}
	return nil
}
