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

// buildWhere splits the filter on OR into position unions over the
// same input, chains AND into consecutive predicates, and hands leaf
// comparisons to buildPredicate.
func (b *build) buildWhere(e *tree.Expr, input plan.Node) (plan.Node, error) {
	if e.Kind != tree.ExprOperator {
		return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "filter expression has to be an operator")
	}

	if e.Op == tree.OpOr {
		union := plan.NewUnion(plan.UnionPositions)
		left, err := b.buildWhere(e.Left, input)
		if err != nil {
			return nil, err
		}
		right, err := b.buildWhere(e.Right, input)
		if err != nil {
			return nil, err
		}
		union.SetLeft(left)
		union.SetRight(right)
		return union, nil
	}

	if e.Op == tree.OpAnd {
		filtered, err := b.buildWhere(e.Left, input)
		if err != nil {
			return nil, err
		}
		return b.buildWhere(e.Right, filtered)
	}

	return b.buildPredicate(e, false, func(operand *tree.Expr) (plan.ColumnOrigin, error) {
		return input.GetColumnOriginByNamedColumnReference(toNamedColumnReference(operand))
	}, input)
}

// buildHaving is buildWhere over aggregate outputs: operands resolve
// through the aggregate node, so HAVING can reference aggregates.
func (b *build) buildHaving(e *tree.Expr, agg *plan.AggregateNode, input plan.Node) (plan.Node, error) {
	if e.Kind != tree.ExprOperator {
		return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "filter expression has to be an operator")
	}

	if e.Op == tree.OpOr {
		union := plan.NewUnion(plan.UnionPositions)
		left, err := b.buildHaving(e.Left, agg, input)
		if err != nil {
			return nil, err
		}
		right, err := b.buildHaving(e.Right, agg, input)
		if err != nil {
			return nil, err
		}
		union.SetLeft(left)
		union.SetRight(right)
		return union, nil
	}

	if e.Op == tree.OpAnd {
		filtered, err := b.buildHaving(e.Left, agg, input)
		if err != nil {
			return nil, err
		}
		return b.buildHaving(e.Right, agg, filtered)
	}

	return b.buildPredicate(e, true, func(operand *tree.Expr) (plan.ColumnOrigin, error) {
		translated, err := b.toLQPExpression(operand, agg.Left())
		if err != nil {
			return plan.ColumnOrigin{}, err
		}
		return agg.GetColumnOriginForExpression(translated)
	}, input)
}

// buildPredicate builds one PredicateNode from a comparison. Exactly
// one side must refer to a column (or, under HAVING, an aggregate); a
// column on the right swaps the operands and flips order comparisons.
func (b *build) buildPredicate(
	e *tree.Expr,
	allowFunctionColumns bool,
	resolveColumn func(*tree.Expr) (plan.ColumnOrigin, error),
	input plan.Node,
) (plan.Node, error) {
	refersToColumn := func(operand *tree.Expr) bool {
		return operand.Kind == tree.ExprColumnRef ||
			(allowFunctionColumns && operand.Kind == tree.ExprFunctionRef)
	}

	scanType, err := scanTypeForOp(e.Op)
	if err != nil {
		return nil, err
	}
	if e.Left == nil {
		return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "malformed comparison")
	}

	operandsSwitched := false
	var valueRef *tree.Expr
	var value2 *types.Value

	if scanType == extend.OpBetween {
		if len(e.List) != 2 {
			return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "need two arguments for BETWEEN")
		}
		if !refersToColumn(e.Left) {
			return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation,
				"for BETWEEN, the left operand has to refer to a column")
		}
		valueRef = e.List[0]

		// the upper bound is a plain typed value
		if e.List[1].Kind != tree.ExprLiteral {
			return nil, unsupported("BETWEEN bound has to be a literal")
		}
		v2 := e.List[1].Value
		value2 = &v2
	} else {
		if e.Right == nil {
			return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "malformed comparison")
		}
		if !refersToColumn(e.Left) {
			if !refersToColumn(e.Right) {
				return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation,
					"one side of the comparison has to refer to a column")
			}
			operandsSwitched = true
			scanType = extend.ReverseScanType(scanType)
		}
		if operandsSwitched {
			valueRef = e.Left
		} else {
			valueRef = e.Right
		}
	}

	var value plan.Param
	if refersToColumn(valueRef) {
		origin, err := resolveColumn(valueRef)
		if err != nil {
			return nil, err
		}
		value = plan.OriginParam(origin)
	} else {
		if value, err = toParam(valueRef); err != nil {
			return nil, err
		}
	}

	columnRef := e.Left
	if operandsSwitched {
		columnRef = e.Right
	}
	origin, err := resolveColumn(columnRef)
	if err != nil {
		return nil, err
	}

	pred := plan.NewPredicate(origin, scanType, value, value2)
	pred.SetLeft(input)
	return pred, nil
}
