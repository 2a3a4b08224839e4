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

func columnID(i int) types.ColumnID {
	return types.ColumnID(i)
}

func toNamedColumnReference(e *tree.Expr) plan.NamedColumnReference {
	return plan.NamedColumnReference{ColumnName: e.Name, TableName: e.Table}
}

var opToExpressionType = map[tree.OpType]extend.ExpressionType{
	tree.OpEquals:    extend.Equals,
	tree.OpNotEquals: extend.NotEquals,
	tree.OpLess:      extend.LessThan,
	tree.OpLessEq:    extend.LessThanEquals,
	tree.OpGreater:   extend.GreaterThan,
	tree.OpGreaterEq: extend.GreaterThanEquals,
	tree.OpLike:      extend.Like,
	tree.OpNotLike:   extend.NotLike,
	tree.OpBetween:   extend.Between,
	tree.OpAnd:       extend.And,
	tree.OpOr:        extend.Or,
	tree.OpNot:       extend.Not,
	tree.OpExists:    extend.Exists,
	tree.OpPlus:      extend.Addition,
	tree.OpMinus:     extend.Subtraction,
	tree.OpTimes:     extend.Multiplication,
	tree.OpDivide:    extend.Division,
	tree.OpMod:       extend.Modulo,
	tree.OpPower:     extend.Power,
}

// scanTypeForOp maps a comparison operator to the scan it performs;
// non-comparison operators are rejected.
func scanTypeForOp(op tree.OpType) (extend.ScanType, error) {
	switch op {
	case tree.OpEquals:
		return extend.OpEquals, nil
	case tree.OpNotEquals:
		return extend.OpNotEquals, nil
	case tree.OpLess:
		return extend.OpLessThan, nil
	case tree.OpLessEq:
		return extend.OpLessThanEquals, nil
	case tree.OpGreater:
		return extend.OpGreaterThan, nil
	case tree.OpGreaterEq:
		return extend.OpGreaterThanEquals, nil
	case tree.OpLike:
		return extend.OpLike, nil
	case tree.OpNotLike:
		return extend.OpNotLike, nil
	case tree.OpBetween:
		return extend.OpBetween, nil
	}
	return 0, sqlerror.Newf(errno.FeatureNotSupported, "predicate operator %d is not supported", op)
}

// toLQPExpression translates a syntax expression against the columns
// visible at node. node may be nil for contexts without inputs, e.g.
// INSERT value lists; column references then fail.
func (b *build) toLQPExpression(e *tree.Expr, node plan.Node) (*plan.Expr, error) {
	var out *plan.Expr
	switch e.Kind {
	case tree.ExprLiteral:
		out = extend.NewLiteral[plan.ColumnOrigin](e.Value)
	case tree.ExprPlaceholder:
		out = extend.NewPlaceholder[plan.ColumnOrigin](e.Placeholder)
	case tree.ExprStar:
		out = extend.NewStar[plan.ColumnOrigin](e.Table)
	case tree.ExprColumnRef:
		if node == nil {
			return nil, sqlerror.Newf(errno.UndefinedColumn, "column %s is not visible here", e.Name)
		}
		origin, err := node.GetColumnOriginByNamedColumnReference(toNamedColumnReference(e))
		if err != nil {
			return nil, err
		}
		out = extend.NewColumn(origin)
	case tree.ExprFunctionRef:
		kind, ok := extend.AggregateKindByName(e.Name)
		if !ok {
			return nil, sqlerror.Newf(errno.FeatureNotSupported, "function %s is not supported", e.Name)
		}
		args := make([]*plan.Expr, len(e.List))
		for i, arg := range e.List {
			translated, err := b.toLQPExpression(arg, node)
			if err != nil {
				return nil, err
			}
			args[i] = translated
		}
		out = extend.NewFunction(kind, args)
	case tree.ExprOperator:
		typ, ok := opToExpressionType[e.Op]
		if !ok {
			return nil, sqlerror.Newf(errno.FeatureNotSupported, "operator %d is not supported", e.Op)
		}
		left, err := b.toLQPExpression(e.Left, node)
		if err != nil {
			return nil, err
		}
		if e.Right == nil {
			out = extend.NewUnary(typ, left)
			break
		}
		right, err := b.toLQPExpression(e.Right, node)
		if err != nil {
			return nil, err
		}
		out = extend.NewBinary(typ, left, right)
	default:
		return nil, sqlerror.Newf(errno.FeatureNotSupported, "expression kind %d is not supported", e.Kind)
	}
	if e.Alias != "" {
		out.SetAlias(e.Alias)
	}
	return out, nil
}

// toParam turns a non-column operand into a scan parameter.
func toParam(e *tree.Expr) (plan.Param, error) {
	switch e.Kind {
	case tree.ExprLiteral:
		return plan.ValueParam(e.Value), nil
	case tree.ExprPlaceholder:
		return plan.PlaceholderParam(e.Placeholder), nil
	}
	return plan.Param{}, sqlerror.Newf(errno.FeatureNotSupported,
		"expression kind %d cannot be used as a scan value", e.Kind)
}
