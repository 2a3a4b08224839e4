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

// Package build translates the SQL syntax tree into a logical query
// plan. Translation and schema errors surface here, before any
// operator executes.
package build

import (
	"fmt"

	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
	"github.com/matrixorigin/stonework/pkg/sql/tree"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/storage"
)

type build struct {
	mgr *storage.Manager

	// validate wraps stored-table reads in a Validate node
	validate bool
}

// New returns a translator over the given storage manager.
func New(mgr *storage.Manager, validate bool) *build {
	return &build{mgr: mgr, validate: validate}
}

// BuildStatement translates one statement into a plan root.
func (b *build) BuildStatement(stmt tree.Statement) (plan.Node, error) {
	switch stmt := stmt.(type) {
	case *tree.Select:
		return b.buildSelect(stmt)
	case *tree.Insert:
		return b.buildInsert(stmt)
	case *tree.Delete:
		return b.buildDelete(stmt)
	case *tree.Update:
		return b.buildUpdate(stmt)
	case *tree.Show:
		return b.buildShow(stmt)
	}
	return nil, sqlerror.Newf(errno.FeatureNotSupported, "unknown statement: %T", stmt)
}

func (b *build) buildSelect(stmt *tree.Select) (plan.Node, error) {
	current, err := b.buildFrom(stmt.From)
	if err != nil {
		return nil, err
	}

	if stmt.Where != nil {
		if current, err = b.buildWhere(stmt.Where, current); err != nil {
			return nil, err
		}
	}

	if len(stmt.SelectList) == 0 {
		return nil, sqlerror.New(errno.SyntaxErrorOrAccessRuleViolation, "SELECT list needs entries")
	}

	// aggregate iff there is a GROUP BY or any aggregate function in
	// the select list; the Aggregate node then owns the select list
	isAggregate := len(stmt.GroupBy) > 0
	if !isAggregate {
		for _, e := range stmt.SelectList {
			if e.Kind == tree.ExprFunctionRef {
				isAggregate = true
				break
			}
		}
	}
	if isAggregate {
		if current, err = b.buildAggregate(stmt, current); err != nil {
			return nil, err
		}
	} else {
		if current, err = b.buildProjection(stmt.SelectList, current); err != nil {
			return nil, err
		}
	}

	if stmt.UnionSelect != nil {
		return nil, sqlerror.New(errno.FeatureNotSupported, "set operations (UNION/INTERSECT/...) are not supported")
	}

	if len(stmt.OrderBy) > 0 {
		if current, err = b.buildOrderBy(stmt.OrderBy, current); err != nil {
			return nil, err
		}
	}

	if stmt.Limit != nil {
		limit := plan.NewLimit(uint64(*stmt.Limit))
		limit.SetLeft(current)
		current = limit
	}

	return current, nil
}

func (b *build) buildOrderBy(orders []*tree.Order, input plan.Node) (plan.Node, error) {
	defs := make([]plan.OrderByDefinition, 0, len(orders))
	for _, o := range orders {
		if o.Expr.Kind != tree.ExprColumnRef {
			return nil, sqlerror.New(errno.FeatureNotSupported, "can only order by columns")
		}
		origin, err := input.GetColumnOriginByNamedColumnReference(toNamedColumnReference(o.Expr))
		if err != nil {
			return nil, err
		}
		mode := plan.Ascending
		if o.Desc {
			mode = plan.Descending
		}
		defs = append(defs, plan.OrderByDefinition{Origin: origin, Mode: mode})
	}
	sort := plan.NewSort(defs)
	sort.SetLeft(input)
	return sort, nil
}

func (b *build) buildShow(stmt *tree.Show) (plan.Node, error) {
	switch stmt.Kind {
	case tree.ShowTables:
		return plan.NewShowTables(), nil
	case tree.ShowColumns:
		return plan.NewShowColumns(stmt.Name), nil
	}
	return nil, sqlerror.Newf(errno.FeatureNotSupported, "show kind %d is not supported", stmt.Kind)
}

// validateIfActive wraps a stored-table read when reads run under
// visibility checks.
func (b *build) validateIfActive(input plan.Node) plan.Node {
	if !b.validate {
		return input
	}
	v := plan.NewValidate()
	v.SetLeft(input)
	return v
}

func (b *build) storedTable(name string) (*plan.StoredTableNode, error) {
	tbl, err := b.mgr.GetTable(name)
	if err != nil {
		return nil, err
	}
	st, err := b.mgr.Statistics(name)
	if err != nil {
		return nil, err
	}
	return plan.NewStoredTable(name, tbl, st), nil
}

func unsupported(format string, args ...any) error {
	return sqlerror.New(errno.FeatureNotSupported, fmt.Sprintf(format, args...))
}
