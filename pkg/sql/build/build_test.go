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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sql/plan"
	"github.com/matrixorigin/stonework/pkg/sql/tree"
	"github.com/matrixorigin/stonework/pkg/storage"
)

func testManager(t *testing.T) *storage.Manager {
	mgr := storage.NewManager()

	ti := table.New([]string{"a", "b"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 0)
	require.NoError(t, mgr.AddTable("t", ti))

	t1 := table.New([]string{"a", "b"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 0)
	require.NoError(t, mgr.AddTable("t1", t1))

	t2 := table.New([]string{"b", "c"},
		[]types.Type{types.New(types.T_int32), types.New(types.T_int32)}, 0)
	require.NoError(t, mgr.AddTable("t2", t2))

	return mgr
}

func selectFrom(tables ...string) *tree.Select {
	s := &tree.Select{SelectList: []*tree.Expr{tree.NewStar("")}}
	for _, name := range tables {
		s.From = append(s.From, &tree.TableName{Name: name})
	}
	return s
}

// SELECT a FROM t WHERE 5 > a: the operands swap and the scan flips to
// a < 5.
func TestPredicateOperandSwap(t *testing.T) {
	b := New(testManager(t), false)

	stmt := selectFrom("t")
	stmt.SelectList = []*tree.Expr{tree.NewColumnRef("", "a")}
	stmt.Where = tree.NewOperator(tree.OpGreater,
		tree.NewLiteral(types.NewInt32(5)),
		tree.NewColumnRef("", "a"))

	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	proj, ok := root.(*plan.ProjectionNode)
	require.True(t, ok)
	pred, ok := proj.Left().(*plan.PredicateNode)
	require.True(t, ok)

	require.Equal(t, extend.OpLessThan, pred.ScanType())
	require.Equal(t, types.ParamValue, pred.Value().Kind)
	require.Equal(t, int32(5), pred.Value().Val.Int32())

	stored := pred.Left().(*plan.StoredTableNode)
	require.Equal(t, plan.ColumnOrigin{Node: stored, Column: 0}, pred.ColumnOrigin())
}

func TestWhereOrBecomesUnionOverSameInput(t *testing.T) {
	b := New(testManager(t), false)

	stmt := selectFrom("t")
	stmt.Where = tree.NewOperator(tree.OpOr,
		tree.NewOperator(tree.OpEquals, tree.NewColumnRef("", "a"), tree.NewLiteral(types.NewInt32(1))),
		tree.NewOperator(tree.OpEquals, tree.NewColumnRef("", "b"), tree.NewLiteral(types.NewInt32(2))))

	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	union, ok := root.Left().(*plan.UnionNode)
	require.True(t, ok)
	leftPred := union.Left().(*plan.PredicateNode)
	rightPred := union.Right().(*plan.PredicateNode)

	// both branches filter the same input node
	require.True(t, leftPred.Left() == rightPred.Left())
}

func TestWhereAndChainsPredicates(t *testing.T) {
	b := New(testManager(t), false)

	stmt := selectFrom("t")
	stmt.Where = tree.NewOperator(tree.OpAnd,
		tree.NewOperator(tree.OpEquals, tree.NewColumnRef("", "a"), tree.NewLiteral(types.NewInt32(1))),
		tree.NewOperator(tree.OpEquals, tree.NewColumnRef("", "b"), tree.NewLiteral(types.NewInt32(2))))

	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	outer := root.Left().(*plan.PredicateNode)
	inner := outer.Left().(*plan.PredicateNode)
	_, ok := inner.Left().(*plan.StoredTableNode)
	require.True(t, ok)
}

func TestBetweenPredicate(t *testing.T) {
	b := New(testManager(t), false)

	stmt := selectFrom("t")
	stmt.Where = tree.NewBetween(tree.NewColumnRef("", "a"),
		tree.NewLiteral(types.NewInt32(3)), tree.NewLiteral(types.NewInt32(7)))

	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	pred := root.Left().(*plan.PredicateNode)
	require.Equal(t, extend.OpBetween, pred.ScanType())
	require.Equal(t, int32(3), pred.Value().Val.Int32())
	require.NotNil(t, pred.Value2())
	require.Equal(t, int32(7), pred.Value2().Int32())
}

// NATURAL JOIN of t1(a,b) and t2(b,c) becomes Cross -> Predicate(b=b)
// -> Projection(a, b, c).
func TestNaturalJoin(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Select{
		SelectList: []*tree.Expr{tree.NewStar("")},
		From: []tree.TableExpr{&tree.JoinTableExpr{
			Type:  tree.JoinNatural,
			Left:  &tree.TableName{Name: "t1"},
			Right: &tree.TableName{Name: "t2"},
		}},
	}

	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	// top projection comes from the select list star
	outer := root.(*plan.ProjectionNode)
	dedup := outer.Left().(*plan.ProjectionNode)
	require.Equal(t, []string{"a", "b", "c"}, dedup.OutputColumnNames())

	pred := dedup.Left().(*plan.PredicateNode)
	require.Equal(t, extend.OpEquals, pred.ScanType())
	require.Equal(t, types.ParamColumn, pred.Value().Kind)

	cross := pred.Left().(*plan.JoinNode)
	require.Equal(t, plan.JoinCross, cross.Mode())
}

func TestJoinOperandsMustSplitAcrossInputs(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Select{
		SelectList: []*tree.Expr{tree.NewStar("")},
		From: []tree.TableExpr{&tree.JoinTableExpr{
			Type:  tree.JoinInner,
			Left:  &tree.TableName{Name: "t1"},
			Right: &tree.TableName{Name: "t2"},
			Cond: tree.NewOperator(tree.OpEquals,
				tree.NewColumnRef("", "a"), tree.NewColumnRef("", "a")),
		}},
	}
	_, err := b.BuildStatement(stmt)
	require.Error(t, err)

	// a proper condition resolves
	stmt.From = []tree.TableExpr{&tree.JoinTableExpr{
		Type:  tree.JoinInner,
		Left:  &tree.TableName{Name: "t1"},
		Right: &tree.TableName{Name: "t2"},
		Cond: tree.NewOperator(tree.OpEquals,
			tree.NewColumnRef("", "a"), tree.NewColumnRef("", "c")),
	}}
	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)
	join := root.Left().(*plan.JoinNode)
	require.Equal(t, plan.JoinInner, join.Mode())
}

// SELECT a, SUM(b) FROM t GROUP BY a HAVING AVG(b) > 0: the aggregate
// computes [SUM(b), AVG(b)], the final projection exposes only a and
// SUM(b).
func TestHavingWithNewAggregate(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Select{
		From: []tree.TableExpr{&tree.TableName{Name: "t"}},
		SelectList: []*tree.Expr{
			tree.NewColumnRef("", "a"),
			tree.NewFunctionRef("SUM", tree.NewColumnRef("", "b")),
		},
		GroupBy: []*tree.Expr{tree.NewColumnRef("", "a")},
		Having: tree.NewOperator(tree.OpGreater,
			tree.NewFunctionRef("AVG", tree.NewColumnRef("", "b")),
			tree.NewLiteral(types.NewInt32(0))),
	}

	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	projection := root.(*plan.ProjectionNode)
	require.Len(t, projection.Expressions(), 2)

	having := projection.Left().(*plan.PredicateNode)
	agg := having.Left().(*plan.AggregateNode)

	require.Len(t, agg.Aggregates(), 2)
	require.Equal(t, extend.AggSum, agg.Aggregates()[0].Aggregate())
	require.Equal(t, extend.AggAvg, agg.Aggregates()[1].Aggregate())
	require.Len(t, agg.GroupBy(), 1)

	// HAVING binds the appended AVG column
	require.Equal(t, plan.ColumnOrigin{Node: agg, Column: 2}, having.ColumnOrigin())
	require.Equal(t, extend.OpGreaterThan, having.ScanType())
}

func TestSelectColumnNotInGroupByFails(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Select{
		From: []tree.TableExpr{&tree.TableName{Name: "t"}},
		SelectList: []*tree.Expr{
			tree.NewColumnRef("", "b"),
			tree.NewFunctionRef("SUM", tree.NewColumnRef("", "b")),
		},
		GroupBy: []*tree.Expr{tree.NewColumnRef("", "a")},
	}
	_, err := b.BuildStatement(stmt)
	require.Error(t, err)
	require.Contains(t, err.Error(), "GROUP BY")
}

func TestInsertValuesWithColumnList(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Insert{
		Table:   "t",
		Columns: []string{"b"},
		Values:  []*tree.Expr{tree.NewLiteral(types.NewInt32(42))},
	}
	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	insert := root.(*plan.InsertNode)
	require.Equal(t, "t", insert.TableName())
	require.True(t, insert.ManagesTable("t"))

	projection := insert.Left().(*plan.ProjectionNode)
	exprs := projection.Expressions()
	require.Len(t, exprs, 2)
	require.True(t, exprs[0].IsNullLiteral())
	require.Equal(t, int32(42), exprs[1].Value().Int32())

	_, isDummy := projection.Left().(*plan.DummyTableNode)
	require.True(t, isDummy)
}

func TestInsertColumnCountMismatch(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Insert{
		Table:  "t",
		Values: []*tree.Expr{tree.NewLiteral(types.NewInt32(1))},
	}
	_, err := b.BuildStatement(stmt)
	require.Error(t, err)
}

func TestDeletePlanShape(t *testing.T) {
	b := New(testManager(t), true)

	stmt := &tree.Delete{
		Table: "t",
		Where: tree.NewOperator(tree.OpEquals,
			tree.NewColumnRef("", "a"), tree.NewLiteral(types.NewInt32(1))),
	}
	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	del := root.(*plan.DeleteNode)
	pred := del.Left().(*plan.PredicateNode)
	validate := pred.Left().(*plan.ValidateNode)
	_, isStored := validate.Left().(*plan.StoredTableNode)
	require.True(t, isStored)
}

func TestUpdateRequiresReferenceInput(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Update{
		Table:   &tree.TableName{Name: "t"},
		Updates: []*tree.UpdateClause{{Column: "a", Value: tree.NewLiteral(types.NewInt32(0))}},
	}
	_, err := b.BuildStatement(stmt)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nconditional")
}

func TestUpdatePrefillsIdentity(t *testing.T) {
	b := New(testManager(t), false)

	stmt := &tree.Update{
		Table: &tree.TableName{Name: "t"},
		Where: tree.NewOperator(tree.OpGreater,
			tree.NewColumnRef("", "a"), tree.NewLiteral(types.NewInt32(10))),
		Updates: []*tree.UpdateClause{{Column: "b", Value: tree.NewLiteral(types.NewInt32(0))}},
	}
	root, err := b.BuildStatement(stmt)
	require.NoError(t, err)

	update := root.(*plan.UpdateNode)
	require.Equal(t, "t", update.TableName())
	exprs := update.Expressions()
	require.Len(t, exprs, 2)
	require.Equal(t, extend.Column, exprs[0].Type())
	require.Equal(t, extend.Literal, exprs[1].Type())
	require.Equal(t, "b", exprs[1].Alias())
}

func TestSetOperationsRejected(t *testing.T) {
	b := New(testManager(t), false)

	stmt := selectFrom("t")
	stmt.UnionSelect = selectFrom("t")
	_, err := b.BuildStatement(stmt)
	require.Error(t, err)
}

func TestShowStatements(t *testing.T) {
	b := New(testManager(t), false)

	root, err := b.BuildStatement(&tree.Show{Kind: tree.ShowTables})
	require.NoError(t, err)
	require.Equal(t, plan.ShowTables, root.Type())

	root, err = b.BuildStatement(&tree.Show{Kind: tree.ShowColumns, Name: "t"})
	require.NoError(t, err)
	require.Equal(t, plan.ShowColumns, root.Type())
}

func TestValidateWrapsReads(t *testing.T) {
	b := New(testManager(t), true)

	root, err := b.BuildStatement(selectFrom("t"))
	require.NoError(t, err)

	validate := root.Left().(*plan.ValidateNode)
	_, isStored := validate.Left().(*plan.StoredTableNode)
	require.True(t, isStored)
}
