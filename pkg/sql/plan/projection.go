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
	"strings"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
)

// ProjectionNode outputs one column per expression; names are aliases
// or derived from the expression.
type ProjectionNode struct {
	baseNode
	exprs []*Expr
}

func NewProjection(exprs []*Expr) *ProjectionNode {
	n := &ProjectionNode{exprs: exprs}
	n.init(n, Projection)
	return n
}

func (n *ProjectionNode) Expressions() []*Expr { return n.exprs }

func (n *ProjectionNode) Description() string {
	names := make([]string, len(n.exprs))
	for i, e := range n.exprs {
		names[i] = e.String()
	}
	return "[Projection] π(" + strings.Join(names, ", ") + ")"
}

func (n *ProjectionNode) OutputColumnNames() []string {
	names := make([]string, len(n.exprs))
	for i, e := range n.exprs {
		names[i] = projectedName(e)
	}
	return names
}

func projectedName(e *Expr) string {
	if e.Alias() != "" {
		return e.Alias()
	}
	if e.Type() == extend.Column {
		return e.ColumnRef().String()
	}
	return e.String()
}

// OutputColumnOrigins forwards the origin of pass-through column
// expressions; computed columns originate here.
func (n *ProjectionNode) OutputColumnOrigins() []ColumnOrigin {
	origins := make([]ColumnOrigin, len(n.exprs))
	for i, e := range n.exprs {
		if e.Type() == extend.Column {
			origins[i] = e.ColumnRef()
			continue
		}
		origins[i] = ColumnOrigin{Node: n, Column: types.ColumnID(i)}
	}
	return origins
}

// FindColumnOriginByNamedColumnReference resolves against this node's
// own output namespace: projections cut off the columns they drop.
func (n *ProjectionNode) FindColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, bool, error) {
	if ref.TableName != "" && n.alias != "" {
		if ref.TableName != n.alias {
			return ColumnOrigin{}, false, nil
		}
		ref = NamedColumnReference{ColumnName: ref.ColumnName}
	}
	return findByNameInOutput(n, ref)
}

// findByNameInOutput matches a reference against a node's output
// names, with qualified references delegated to the table's origin
// node. Ambiguity is a hard error.
func findByNameInOutput(n Node, ref NamedColumnReference) (ColumnOrigin, bool, error) {
	names := n.OutputColumnNames()
	origins := n.OutputColumnOrigins()

	var found ColumnOrigin
	var any bool
	for i, name := range names {
		if name != ref.ColumnName {
			continue
		}
		if ref.TableName != "" {
			// the qualified name must resolve through the node that
			// introduces the qualifier
			origin := origins[i]
			if t := n.FindTableNameOrigin(ref.TableName); t == nil || t != origin.Node {
				continue
			}
		}
		if any && found != origins[i] {
			return ColumnOrigin{}, false, ambiguousColumn(ref)
		}
		found = origins[i]
		any = true
	}
	return found, any, nil
}
