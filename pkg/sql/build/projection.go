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
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
	"github.com/matrixorigin/stonework/pkg/sql/tree"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// buildProjection translates a plain SELECT list; stars expand to the
// input's columns, optionally restricted to one table qualifier.
func (b *build) buildProjection(selectList []*tree.Expr, input plan.Node) (plan.Node, error) {
	var exprs []*plan.Expr

	for _, e := range selectList {
		translated, err := b.toLQPExpression(e, input)
		if err != nil {
			return nil, err
		}

		switch {
		case translated.Type() == extend.Star:
			origins, err := expandStar(translated.TableName(), input)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, extend.NewColumns(origins)...)
		case translated.Type() == extend.Column,
			translated.Type() == extend.Literal,
			translated.IsArithmeticOperator():
			exprs = append(exprs, translated)
		default:
			return nil, unsupported("only column references, star-selects, literals and arithmetic expressions are supported in the SELECT list")
		}
	}

	projection := plan.NewProjection(exprs)
	projection.SetLeft(input)
	return projection, nil
}

// expandStar resolves * or prefix.* to column origins. For a prefixed
// star only the columns of the prefix's node that still reach the
// input survive.
func expandStar(tableName string, input plan.Node) ([]plan.ColumnOrigin, error) {
	if tableName == "" {
		origins := make([]plan.ColumnOrigin, input.OutputColumnCount())
		for id := range origins {
			origins[id] = input.FindColumnOriginByOutputColumnID(columnID(id))
		}
		return origins, nil
	}

	originNode := input.FindTableNameOrigin(tableName)
	if originNode == nil {
		return nil, sqlerror.Newf(errno.UndefinedTable, "couldn't resolve %s.*", tableName)
	}

	var origins []plan.ColumnOrigin
	for id := 0; id < originNode.OutputColumnCount(); id++ {
		origin := originNode.FindColumnOriginByOutputColumnID(columnID(id))
		if _, reachable := input.FindOutputColumnIDByColumnOrigin(origin); reachable {
			origins = append(origins, origin)
		}
	}
	return origins, nil
}
