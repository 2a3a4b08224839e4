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

// Package compile lowers a logical query plan into the physical
// operator graph. Column origins resolve into the column ids of each
// operator's input here; the operators never see plan nodes.
package compile

import (
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/deletion"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/gettable"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/group"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/insert"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/join"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/limit"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/order"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/projection"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/setunion"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/show"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/tablescan"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/update"
	"github.com/matrixorigin/stonework/pkg/sql/colexec/validate"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/storage"
)

// Build lowers the plan rooted at node.
func Build(node plan.Node, mgr *storage.Manager) (colexec.Operator, error) {
	c := &compiler{mgr: mgr}
	return c.build(node)
}

type compiler struct {
	mgr *storage.Manager
}

func (c *compiler) build(node plan.Node) (colexec.Operator, error) {
	switch n := node.(type) {
	case *plan.StoredTableNode:
		return gettable.New(c.mgr, n.TableName()), nil
	case *plan.DummyTableNode:
		return gettable.NewDummy(), nil
	case *plan.ValidateNode:
		input, err := c.build(n.Left())
		if err != nil {
			return nil, err
		}
		return validate.New(input), nil
	case *plan.PredicateNode:
		return c.buildPredicate(n)
	case *plan.ProjectionNode:
		return c.buildProjection(n)
	case *plan.AggregateNode:
		return c.buildAggregate(n)
	case *plan.JoinNode:
		return c.buildJoin(n)
	case *plan.SortNode:
		return c.buildSort(n)
	case *plan.LimitNode:
		input, err := c.build(n.Left())
		if err != nil {
			return nil, err
		}
		return limit.New(input, n.Limit()), nil
	case *plan.UnionNode:
		left, err := c.build(n.Left())
		if err != nil {
			return nil, err
		}
		right, err := c.build(n.Right())
		if err != nil {
			return nil, err
		}
		return setunion.New(left, right), nil
	case *plan.InsertNode:
		input, err := c.build(n.Left())
		if err != nil {
			return nil, err
		}
		return insert.New(c.mgr, n.TableName(), input), nil
	case *plan.DeleteNode:
		input, err := c.build(n.Left())
		if err != nil {
			return nil, err
		}
		return deletion.New(c.mgr, n.TableName(), input), nil
	case *plan.UpdateNode:
		return c.buildUpdate(n)
	case *plan.ShowTablesNode:
		return show.NewTables(c.mgr), nil
	case *plan.ShowColumnsNode:
		return show.NewColumns(c.mgr, n.TableName()), nil
	}
	return nil, sqlerror.Newf(errno.FeatureNotSupported, "plan node %T cannot be lowered", node)
}

func (c *compiler) buildPredicate(n *plan.PredicateNode) (colexec.Operator, error) {
	input, err := c.build(n.Left())
	if err != nil {
		return nil, err
	}
	col, err := n.Left().GetOutputColumnIDByColumnOrigin(n.ColumnOrigin())
	if err != nil {
		return nil, err
	}

	var value types.Param
	p := n.Value()
	switch p.Kind {
	case types.ParamValue:
		value = types.ValueParam(p.Val)
	case types.ParamColumn:
		id, err := n.Left().GetOutputColumnIDByColumnOrigin(p.Origin)
		if err != nil {
			return nil, err
		}
		value = types.ColumnParam(id)
	case types.ParamPlaceholder:
		value = types.PlaceholderParam(p.Placeholder)
	}

	return tablescan.New(input, colexec.Condition{
		Col:    col,
		Scan:   n.ScanType(),
		Value:  value,
		Value2: n.Value2(),
	}), nil
}

func (c *compiler) buildProjection(n *plan.ProjectionNode) (colexec.Operator, error) {
	input, err := c.build(n.Left())
	if err != nil {
		return nil, err
	}
	exprs := make([]*colexec.Expr, len(n.Expressions()))
	for i, e := range n.Expressions() {
		if exprs[i], err = convertExpr(e, n.Left()); err != nil {
			return nil, err
		}
	}
	return projection.New(input, exprs, n.OutputColumnNames()), nil
}

func (c *compiler) buildAggregate(n *plan.AggregateNode) (colexec.Operator, error) {
	input, err := c.build(n.Left())
	if err != nil {
		return nil, err
	}

	groupBy := make([]types.ColumnID, len(n.GroupBy()))
	for i, origin := range n.GroupBy() {
		if groupBy[i], err = n.Left().GetOutputColumnIDByColumnOrigin(origin); err != nil {
			return nil, err
		}
	}

	aggs := make([]group.Aggregation, len(n.Aggregates()))
	for i, e := range n.Aggregates() {
		agg := group.Aggregation{Kind: e.Aggregate(), Alias: e.Alias()}
		args := e.AggregateArgs()
		if len(args) != 1 {
			return nil, sqlerror.Newf(errno.FeatureNotSupported,
				"aggregate %s needs exactly one argument", e.Aggregate())
		}
		if args[0].Type() != extend.Star {
			if agg.Arg, err = convertExpr(args[0], n.Left()); err != nil {
				return nil, err
			}
		}
		aggs[i] = agg
	}

	return group.New(input, aggs, groupBy), nil
}

func (c *compiler) buildJoin(n *plan.JoinNode) (colexec.Operator, error) {
	left, err := c.build(n.Left())
	if err != nil {
		return nil, err
	}
	right, err := c.build(n.Right())
	if err != nil {
		return nil, err
	}

	if n.Mode() == plan.JoinCross {
		return join.NewCross(left, right), nil
	}

	leftOrigin, rightOrigin, scan, ok := n.Predicate()
	if !ok {
		return nil, sqlerror.Newf(errno.FeatureNotSupported, "join mode %s without a predicate", n.Mode())
	}
	leftCol, err := n.Left().GetOutputColumnIDByColumnOrigin(leftOrigin)
	if err != nil {
		return nil, err
	}
	rightCol, err := n.Right().GetOutputColumnIDByColumnOrigin(rightOrigin)
	if err != nil {
		return nil, err
	}

	var mode join.Mode
	switch n.Mode() {
	case plan.JoinInner:
		mode = join.Inner
	case plan.JoinOuter:
		mode = join.Outer
	case plan.JoinLeft:
		mode = join.Left
	case plan.JoinRight:
		mode = join.Right
	default:
		return nil, sqlerror.Newf(errno.FeatureNotSupported, "join mode %s cannot be lowered", n.Mode())
	}
	return join.New(mode, left, right, leftCol, rightCol, scan), nil
}

func (c *compiler) buildSort(n *plan.SortNode) (colexec.Operator, error) {
	input, err := c.build(n.Left())
	if err != nil {
		return nil, err
	}
	fields := make([]order.Field, len(n.Definitions()))
	for i, def := range n.Definitions() {
		col, err := n.Left().GetOutputColumnIDByColumnOrigin(def.Origin)
		if err != nil {
			return nil, err
		}
		fields[i] = order.Field{Col: col, Desc: def.Mode == plan.Descending}
	}
	return order.New(input, fields), nil
}

func (c *compiler) buildUpdate(n *plan.UpdateNode) (colexec.Operator, error) {
	input, err := c.build(n.Left())
	if err != nil {
		return nil, err
	}
	exprs := make([]*colexec.Expr, len(n.Expressions()))
	for i, e := range n.Expressions() {
		if exprs[i], err = convertExpr(e, n.Left()); err != nil {
			return nil, err
		}
	}
	return update.New(c.mgr, n.TableName(), input, exprs), nil
}

// convertExpr rebinds a plan expression onto the input's output
// column ids.
func convertExpr(e *plan.Expr, input plan.Node) (*colexec.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch {
	case e.Type() == extend.Literal:
		out := extend.NewLiteral[types.ColumnID](e.Value())
		out.SetAlias(e.Alias())
		return out, nil
	case e.Type() == extend.Placeholder:
		out := extend.NewPlaceholder[types.ColumnID](e.PlaceholderIndex())
		out.SetAlias(e.Alias())
		return out, nil
	case e.Type() == extend.Column:
		id, err := input.GetOutputColumnIDByColumnOrigin(e.ColumnRef())
		if err != nil {
			return nil, err
		}
		out := extend.NewColumn(id)
		out.SetAlias(e.Alias())
		return out, nil
	case e.Type() == extend.Star:
		out := extend.NewStar[types.ColumnID](e.TableName())
		return out, nil
	case e.Type() == extend.Function:
		args := make([]*colexec.Expr, len(e.AggregateArgs()))
		for i, a := range e.AggregateArgs() {
			converted, err := convertExpr(a, input)
			if err != nil {
				return nil, err
			}
			args[i] = converted
		}
		out := extend.NewFunction(e.Aggregate(), args)
		out.SetAlias(e.Alias())
		return out, nil
	default:
		left, err := convertExpr(e.Left(), input)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(e.Right(), input)
		if err != nil {
			return nil, err
		}
		var out *colexec.Expr
		if right == nil {
			out = extend.NewUnary(e.Type(), left)
		} else {
			out = extend.NewBinary(e.Type(), left, right)
		}
		out.SetAlias(e.Alias())
		return out, nil
	}
}
