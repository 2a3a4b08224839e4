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

package build

import (
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
	"github.com/matrixorigin/stonework/pkg/sql/tree"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// buildAggregate creates
//
//	input -> groupby aliasing projection -> aggregate -> {having}* -> reorder projection
//
// The aliasing projection applies SELECT-list aliases before grouping
// resolves names; the final projection restores the SELECT-list order
// (the aggregate outputs all group-by columns first) and hides
// aggregates that only HAVING needs.
func (b *build) buildAggregate(stmt *tree.Select, input plan.Node) (plan.Node, error) {
	selectList := stmt.SelectList
	hasHaving := stmt.Having != nil

	// output columns of the aggregate to be kept, with their aliases
	type outputColumn struct {
		id    types.ColumnID
		alias string
	}
	var outputColumns []outputColumn

	// groupby aliasing projection over every input column
	aliasingExprs := make([]*plan.Expr, 0, input.OutputColumnCount())
	for id := 0; id < input.OutputColumnCount(); id++ {
		aliasingExprs = append(aliasingExprs,
			extend.NewColumn(input.FindColumnOriginByOutputColumnID(columnID(id))))
	}
	for _, e := range selectList {
		if e.Kind != tree.ExprColumnRef || e.Alias == "" {
			continue
		}
		origin, err := input.GetColumnOriginByNamedColumnReference(toNamedColumnReference(e))
		if err != nil {
			return nil, err
		}
		id, err := input.GetOutputColumnIDByColumnOrigin(origin)
		if err != nil {
			return nil, err
		}
		aliasingExprs[id].SetAlias(e.Alias)
	}
	aliasing := plan.NewProjection(aliasingExprs)
	aliasing.SetLeft(input)

	// group-by columns resolve against the aliasing projection
	var groupBy []plan.ColumnOrigin
	for _, e := range stmt.GroupBy {
		if e.Kind != tree.ExprColumnRef {
			return nil, unsupported("grouping on complex expressions is not supported")
		}
		origin, err := aliasing.GetColumnOriginByNamedColumnReference(toNamedColumnReference(e))
		if err != nil {
			return nil, err
		}
		groupBy = append(groupBy, origin)
	}

	// aggregates output after the group-by columns
	nextAggregateID := types.ColumnID(len(groupBy))

	var aggregates []*plan.Expr
	for _, e := range selectList {
		switch e.Kind {
		case tree.ExprFunctionRef:
			translated, err := b.toLQPExpression(e, input)
			if err != nil {
				return nil, err
			}
			aggregates = append(aggregates, translated)
			outputColumns = append(outputColumns, outputColumn{id: nextAggregateID, alias: e.Alias})
			nextAggregateID++
		case tree.ExprColumnRef:
			if len(stmt.GroupBy) == 0 {
				return nil, sqlerror.New(errno.GroupByError,
					"SELECT list of aggregate contains a column, but the query does not have a GROUP BY clause")
			}
			origin, err := aliasing.GetColumnOriginByNamedColumnReference(toNamedColumnReference(e))
			if err != nil {
				return nil, err
			}
			inGroupBy := false
			for _, g := range groupBy {
				if g == origin {
					inGroupBy = true
					break
				}
			}
			if !inGroupBy {
				return nil, sqlerror.Newf(errno.GroupByError,
					"column '%s' is specified in SELECT list, but not in GROUP BY clause", e.Name)
			}
			// group-by columns keep their position among the
			// aggregate's leading outputs
			gid := types.ColumnID(0)
			for i, g := range groupBy {
				if g == origin {
					gid = types.ColumnID(i)
					break
				}
			}
			outputColumns = append(outputColumns, outputColumn{id: gid, alias: e.Alias})
		default:
			return nil, unsupported("unsupported item in the SELECT list of an aggregate")
		}
	}

	// HAVING may need aggregates the select list does not compute;
	// append them but keep them out of the final projection
	if hasHaving {
		for _, havingExpr := range retrieveHavingAggregates(stmt.Having) {
			translated, err := b.toLQPExpression(havingExpr, input)
			if err != nil {
				return nil, err
			}
			known := false
			for _, agg := range aggregates {
				if agg.Eq(translated) {
					known = true
					break
				}
			}
			if !known {
				aggregates = append(aggregates, translated)
			}
		}
	}

	aggregate := plan.NewAggregate(aggregates, groupBy)
	aggregate.SetLeft(aliasing)

	// reorder projection over the kept columns
	projectionExprs := make([]*plan.Expr, 0, len(outputColumns))
	for _, oc := range outputColumns {
		origin := aggregate.FindColumnOriginByOutputColumnID(oc.id)
		expr := extend.NewColumn(origin)
		if oc.alias != "" {
			expr.SetAlias(oc.alias)
		}
		projectionExprs = append(projectionExprs, expr)
	}
	projection := plan.NewProjection(projectionExprs)

	if hasHaving {
		having, err := b.buildHaving(stmt.Having, aggregate, aggregate)
		if err != nil {
			return nil, err
		}
		projection.SetLeft(having)
	} else {
		projection.SetLeft(aggregate)
	}

	return projection, nil
}

// retrieveHavingAggregates collects every aggregate function referenced
// by the HAVING clause.
func retrieveHavingAggregates(e *tree.Expr) []*tree.Expr {
	if e == nil {
		return nil
	}
	if e.Kind == tree.ExprFunctionRef {
		return []*tree.Expr{e}
	}
	var out []*tree.Expr
	out = append(out, retrieveHavingAggregates(e.Left)...)
	out = append(out, retrieveHavingAggregates(e.Right)...)
	for _, sub := range e.List {
		out = append(out, retrieveHavingAggregates(sub)...)
	}
	return out
}
