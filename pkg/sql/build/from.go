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
	"sort"

	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
	"github.com/matrixorigin/stonework/pkg/sql/tree"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// buildFrom folds the FROM list into a left-deep chain of cross joins.
func (b *build) buildFrom(stmts []tree.TableExpr) (plan.Node, error) {
	if len(stmts) == 0 {
		return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "FROM clause needs entries")
	}
	current, err := b.buildTableRef(stmts[0])
	if err != nil {
		return nil, err
	}
	for _, stmt := range stmts[1:] {
		next, err := b.buildTableRef(stmt)
		if err != nil {
			return nil, err
		}
		product := plan.NewCrossJoin()
		product.SetLeft(current)
		product.SetRight(next)
		current = product
	}
	return current, nil
}

func (b *build) buildTableRef(stmt tree.TableExpr) (plan.Node, error) {
	switch stmt := stmt.(type) {
	case *tree.TableName:
		node, err := b.storedTable(stmt.Name)
		if err != nil {
			return nil, err
		}
		wrapped := b.validateIfActive(node)
		if stmt.Alias != "" {
			wrapped.SetAlias(stmt.Alias)
		}
		return wrapped, nil
	case *tree.Subquery:
		node, err := b.buildSelect(stmt.Select)
		if err != nil {
			return nil, err
		}
		if stmt.Alias == "" {
			return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "every derived table must have its own alias")
		}
		node.SetAlias(stmt.Alias)
		return node, nil
	case *tree.JoinTableExpr:
		return b.buildJoin(stmt)
	}
	return nil, unsupported("unknown table expr: %T", stmt)
}

func joinTypeToMode(t tree.JoinType) plan.JoinMode {
	switch t {
	case tree.JoinInner:
		return plan.JoinInner
	case tree.JoinOuter:
		return plan.JoinOuter
	case tree.JoinLeft:
		return plan.JoinLeft
	case tree.JoinRight:
		return plan.JoinRight
	case tree.JoinNatural:
		return plan.JoinNatural
	}
	return plan.JoinCross
}

func (b *build) buildJoin(stmt *tree.JoinTableExpr) (plan.Node, error) {
	mode := joinTypeToMode(stmt.Type)

	if mode == plan.JoinNatural {
		return b.buildNaturalJoin(stmt)
	}
	if mode == plan.JoinCross {
		product := plan.NewCrossJoin()
		left, err := b.buildTableRef(stmt.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.buildTableRef(stmt.Right)
		if err != nil {
			return nil, err
		}
		product.SetLeft(left)
		product.SetRight(right)
		return product, nil
	}

	left, err := b.buildTableRef(stmt.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.buildTableRef(stmt.Right)
	if err != nil {
		return nil, err
	}

	cond := stmt.Cond
	if cond == nil || cond.Kind != tree.ExprOperator {
		return nil, sqlerror.New(errno.InvalidJoinCondition, "join condition must be an operator")
	}
	scanType, err := scanTypeForOp(cond.Op)
	if err != nil || scanType == extend.OpBetween || scanType == extend.OpLike || scanType == extend.OpNotLike {
		return nil, sqlerror.New(errno.InvalidJoinCondition, "join condition must be a simple comparison operator")
	}
	if cond.Left == nil || cond.Left.Kind != tree.ExprColumnRef {
		return nil, sqlerror.New(errno.InvalidJoinCondition, "left arg of join condition must be a column ref")
	}
	if cond.Right == nil || cond.Right.Kind != tree.ExprColumnRef {
		return nil, sqlerror.New(errno.InvalidJoinCondition, "right arg of join condition must be a column ref")
	}

	leftRef := toNamedColumnReference(cond.Left)
	rightRef := toNamedColumnReference(cond.Right)

	// each operand must live in exactly one input; anything else is
	// ambiguity or a missing column
	leftInLeft, foundLL, err := left.FindColumnOriginByNamedColumnReference(leftRef)
	if err != nil {
		return nil, err
	}
	leftInRight, foundLR, err := right.FindColumnOriginByNamedColumnReference(leftRef)
	if err != nil {
		return nil, err
	}
	rightInLeft, foundRL, err := left.FindColumnOriginByNamedColumnReference(rightRef)
	if err != nil {
		return nil, err
	}
	rightInRight, foundRR, err := right.FindColumnOriginByNamedColumnReference(rightRef)
	if err != nil {
		return nil, err
	}

	if foundLL == foundLR {
		return nil, sqlerror.Newf(errno.InvalidJoinCondition,
			"left operand %s must be in exactly one of the input nodes", leftRef)
	}
	if foundRL == foundRR {
		return nil, sqlerror.Newf(errno.InvalidJoinCondition,
			"right operand %s must be in exactly one of the input nodes", rightRef)
	}
	if foundLL == foundRL {
		return nil, sqlerror.New(errno.InvalidJoinCondition,
			"join condition must reference both input nodes")
	}

	var leftOrigin, rightOrigin plan.ColumnOrigin
	if foundLL {
		leftOrigin, rightOrigin = leftInLeft, rightInRight
	} else {
		leftOrigin, rightOrigin = rightInLeft, leftInRight
	}

	join := plan.NewJoin(mode, leftOrigin, rightOrigin, scanType)
	join.SetLeft(left)
	join.SetRight(right)
	return join, nil
}

// buildNaturalJoin lowers NATURAL into a cross join, one equality
// predicate per shared column name, and a projection dropping the
// duplicated join columns.
func (b *build) buildNaturalJoin(stmt *tree.JoinTableExpr) (plan.Node, error) {
	left, err := b.buildTableRef(stmt.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.buildTableRef(stmt.Right)
	if err != nil {
		return nil, err
	}

	leftNames := append([]string(nil), left.OutputColumnNames()...)
	rightNames := append([]string(nil), right.OutputColumnNames()...)
	sort.Strings(leftNames)
	sort.Strings(rightNames)

	var joinNames []string
	for i, j := 0, 0; i < len(leftNames) && j < len(rightNames); {
		switch {
		case leftNames[i] == rightNames[j]:
			joinNames = append(joinNames, leftNames[i])
			i++
			j++
		case leftNames[i] < rightNames[j]:
			i++
		default:
			j++
		}
	}
	if len(joinNames) == 0 {
		return nil, sqlerror.New(errno.InvalidJoinCondition, "no matching columns for natural join found")
	}

	var current plan.Node = plan.NewCrossJoin()
	current.SetLeft(left)
	current.SetRight(right)

	for _, name := range joinNames {
		leftOrigin, err := left.GetColumnOriginByNamedColumnReference(plan.NamedColumnReference{ColumnName: name})
		if err != nil {
			return nil, err
		}
		rightOrigin, err := right.GetColumnOriginByNamedColumnReference(plan.NamedColumnReference{ColumnName: name})
		if err != nil {
			return nil, err
		}
		pred := plan.NewPredicate(leftOrigin, extend.OpEquals, plan.OriginParam(rightOrigin), nil)
		pred.SetLeft(current)
		current = pred
	}

	// project the join columns once
	var origins []plan.ColumnOrigin
	seen := map[string]bool{}
	for id, name := range current.OutputColumnNames() {
		origin := current.FindColumnOriginByOutputColumnID(columnID(id))
		isJoinName := false
		for _, jn := range joinNames {
			if jn == name {
				isJoinName = true
				break
			}
		}
		if isJoinName {
			if seen[name] {
				continue
			}
			seen[name] = true
		}
		origins = append(origins, origin)
	}

	projection := plan.NewProjection(extend.NewColumns(origins))
	projection.SetLeft(current)
	return projection, nil
}
