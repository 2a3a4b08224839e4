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
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// AggregateNode outputs the group-by columns first, then one column
// per aggregate expression.
type AggregateNode struct {
	baseNode
	aggregates []*Expr
	groupBy    []ColumnOrigin
}

func NewAggregate(aggregates []*Expr, groupBy []ColumnOrigin) *AggregateNode {
	for _, e := range aggregates {
		if e.Type() != extend.Function {
			sqlerror.Internal("aggregate node carries a non-function expression")
		}
	}
	n := &AggregateNode{aggregates: aggregates, groupBy: groupBy}
	n.init(n, Aggregate)
	return n
}

func (n *AggregateNode) Aggregates() []*Expr      { return n.aggregates }
func (n *AggregateNode) GroupBy() []ColumnOrigin  { return n.groupBy }

// AppendAggregate admits an aggregate required by HAVING but absent
// from the select list.
func (n *AggregateNode) AppendAggregate(e *Expr) {
	n.aggregates = append(n.aggregates, e)
}

func (n *AggregateNode) Description() string {
	parts := make([]string, 0, len(n.groupBy)+len(n.aggregates))
	for _, g := range n.groupBy {
		parts = append(parts, g.String())
	}
	for _, e := range n.aggregates {
		parts = append(parts, e.String())
	}
	return "[Aggregate] γ(" + strings.Join(parts, ", ") + ")"
}

func (n *AggregateNode) OutputColumnNames() []string {
	names := make([]string, 0, n.OutputColumnCount())
	for _, g := range n.groupBy {
		names = append(names, g.String())
	}
	for _, e := range n.aggregates {
		if e.Alias() != "" {
			names = append(names, e.Alias())
		} else {
			names = append(names, e.String())
		}
	}
	return names
}

func (n *AggregateNode) OutputColumnCount() int {
	return len(n.groupBy) + len(n.aggregates)
}

func (n *AggregateNode) OutputColumnOrigins() []ColumnOrigin {
	origins := make([]ColumnOrigin, 0, n.OutputColumnCount())
	origins = append(origins, n.groupBy...)
	for i := range n.aggregates {
		origins = append(origins, ColumnOrigin{
			Node:   n,
			Column: types.ColumnID(len(n.groupBy) + i),
		})
	}
	return origins
}

// GetColumnOriginForExpression binds a HAVING operand: aggregate
// expressions match structurally, column expressions must be grouped
// by.
func (n *AggregateNode) GetColumnOriginForExpression(e *Expr) (ColumnOrigin, error) {
	if e.Type() == extend.Function {
		for i, agg := range n.aggregates {
			if agg.Eq(e) {
				return ColumnOrigin{Node: n, Column: types.ColumnID(len(n.groupBy) + i)}, nil
			}
		}
		return ColumnOrigin{}, sqlerror.Newf(errno.UndefinedColumn,
			"aggregate %s is not computed by this node", e)
	}
	if e.Type() == extend.Column {
		for _, g := range n.groupBy {
			if g == e.ColumnRef() {
				return g, nil
			}
		}
	}
	return ColumnOrigin{}, sqlerror.Newf(errno.GroupByError,
		"expression %s is neither aggregated nor grouped by", e)
}

func (n *AggregateNode) FindColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, bool, error) {
	if ref.TableName != "" && n.alias != "" {
		if ref.TableName != n.alias {
			return ColumnOrigin{}, false, nil
		}
		ref = NamedColumnReference{ColumnName: ref.ColumnName}
	}
	return findByNameInOutput(n, ref)
}
