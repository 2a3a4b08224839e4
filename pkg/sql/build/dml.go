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

func (b *build) buildInsert(stmt *tree.Insert) (plan.Node, error) {
	target, err := b.mgr.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	var current plan.Node
	if stmt.Select != nil {
		if current, err = b.buildSelect(stmt.Select); err != nil {
			return nil, err
		}
	} else {
		current = plan.NewDummyTable()
	}

	if len(stmt.Columns) == 0 {
		// no column order given: assume all columns in regular order
		if stmt.Select == nil {
			if current, err = b.buildProjection(stmt.Values, current); err != nil {
				return nil, err
			}
		}
		if current.OutputColumnCount() != target.ColumnCount() {
			return nil, sqlerror.Newf(errno.ColumnCountMismatch,
				"insert of %d values into a table of %d columns",
				current.OutputColumnCount(), target.ColumnCount())
		}
	} else {
		// certain columns are specified: size the projection to the
		// target width, pre-filled with NULLs, then overwrite the
		// named positions
		projections := make([]*plan.Expr, target.ColumnCount())
		for i := range projections {
			projections[i] = extend.NewLiteral[plan.ColumnOrigin](types.Null)
		}

		for insertIndex, columnName := range stmt.Columns {
			id, ok := target.ColumnIDByName(columnName)
			if !ok {
				return nil, sqlerror.Newf(errno.UndefinedColumn,
					"table %s has no column %s", stmt.Table, columnName)
			}
			if stmt.Select == nil {
				if insertIndex >= len(stmt.Values) {
					return nil, sqlerror.New(errno.ColumnCountMismatch,
						"more target columns than insert values")
				}
				expr, err := b.toLQPExpression(stmt.Values[insertIndex], nil)
				if err != nil {
					return nil, err
				}
				projections[id] = expr
			} else {
				origin := current.FindColumnOriginByOutputColumnID(columnID(insertIndex))
				projections[id] = extend.NewColumn(origin)
			}
		}

		projection := plan.NewProjection(projections)
		projection.SetLeft(current)
		current = projection
	}

	insert := plan.NewInsert(stmt.Table)
	insert.SetLeft(current)
	return insert, nil
}

func (b *build) buildDelete(stmt *tree.Delete) (plan.Node, error) {
	stored, err := b.storedTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	current := b.validateIfActive(stored)
	if stmt.Where != nil {
		if current, err = b.buildWhere(stmt.Where, current); err != nil {
			return nil, err
		}
	}

	del := plan.NewDelete(stmt.Table)
	del.SetLeft(current)
	return del, nil
}

func (b *build) buildUpdate(stmt *tree.Update) (plan.Node, error) {
	current, err := b.buildTableRef(stmt.Table)
	if err != nil {
		return nil, err
	}
	if stmt.Where != nil {
		if current, err = b.buildWhere(stmt.Where, current); err != nil {
			return nil, err
		}
	}

	// the update operator wants reference columns on its input; a bare
	// stored table would update every row unconditionally
	if _, isStored := current.(*plan.StoredTableNode); isStored {
		return nil, sqlerror.New(errno.FeatureNotSupported, "unconditional updates are not supported")
	}

	// pre-fill with identity column references, then overwrite the
	// assigned columns
	updateExprs := make([]*plan.Expr, current.OutputColumnCount())
	for id := range updateExprs {
		updateExprs[id] = extend.NewColumn(current.FindColumnOriginByOutputColumnID(columnID(id)))
	}

	tableName := ""
	if tn, ok := stmt.Table.(*tree.TableName); ok {
		tableName = tn.Name
	}

	for _, clause := range stmt.Updates {
		origin, err := current.GetColumnOriginByNamedColumnReference(
			plan.NamedColumnReference{ColumnName: clause.Column})
		if err != nil {
			return nil, err
		}
		id, err := current.GetOutputColumnIDByColumnOrigin(origin)
		if err != nil {
			return nil, err
		}
		expr, err := b.toLQPExpression(clause.Value, current)
		if err != nil {
			return nil, err
		}
		expr.SetAlias(clause.Column)
		updateExprs[id] = expr
	}

	update := plan.NewUpdate(tableName, updateExprs)
	update.SetLeft(current)
	return update, nil
}
