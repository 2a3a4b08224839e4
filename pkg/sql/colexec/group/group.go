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

// Package group hashes rows by their group-by tuple and folds the
// aggregates. Group-by columns lead the output, aggregates follow.
package group

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/matrixorigin/stonework/pkg/container/table"
	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/colexec"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
	"github.com/matrixorigin/stonework/pkg/vm/process"
)

// Aggregation is one aggregate over an argument expression; a nil
// argument stands for COUNT(*).
type Aggregation struct {
	Kind  extend.AggregateKind
	Arg   *colexec.Expr
	Alias string
}

type Argument struct {
	Input   colexec.Operator
	Aggs    []Aggregation
	GroupBy []types.ColumnID
}

func New(input colexec.Operator, aggs []Aggregation, groupBy []types.ColumnID) *Argument {
	return &Argument{Input: input, Aggs: aggs, GroupBy: groupBy}
}

func (arg *Argument) Name() string { return "Aggregate" }

func (arg *Argument) Description() string {
	var buf bytes.Buffer
	buf.WriteString("γ([")
	for i, g := range arg.GroupBy {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "#%d", g)
	}
	buf.WriteString("], [")
	for i, a := range arg.Aggs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(a.Kind.String())
	}
	buf.WriteString("])")
	return buf.String()
}

func (arg *Argument) InTables() int  { return 1 }
func (arg *Argument) OutTables() int { return 1 }

func (arg *Argument) Recreate(args []types.Value) colexec.Operator {
	return &Argument{Input: arg.Input.Recreate(args), Aggs: arg.Aggs, GroupBy: arg.GroupBy}
}

// state folds one aggregate of one group.
type state struct {
	count  int64
	sumI   int64
	sumF   float64
	anyVal bool
	min    types.Value
	max    types.Value
}

func (s *state) fold(v types.Value) error {
	if v.IsNull() {
		return nil
	}
	s.count++
	switch v.Oid() {
	case types.T_int32, types.T_int64:
		s.sumI += v.Int64()
		s.sumF += float64(v.Int64())
	case types.T_float32, types.T_float64:
		s.sumF += v.AsFloat64()
	case types.T_varchar:
		// min/max only
	default:
		return sqlerror.Newf(errno.DatatypeIncompatible, "aggregate over %s", v.Oid())
	}
	if !s.anyVal {
		s.min, s.max = v, v
		s.anyVal = true
		return nil
	}
	if v.Compare(s.min) < 0 {
		s.min = v
	}
	if v.Compare(s.max) > 0 {
		s.max = v
	}
	return nil
}

type groupEntry struct {
	keys   []types.Value
	states []state
}

func (arg *Argument) Execute(proc *process.Process) (*table.Table, error) {
	in, err := arg.Input.Execute(proc)
	if err != nil {
		return nil, err
	}
	if err := proc.Canceled(); err != nil {
		return nil, err
	}

	loc := colexec.NewLocator(in)
	rows := loc.Rows()

	groups := map[string]*groupEntry{}
	var order []string

	var keyBuf bytes.Buffer
	for row := 0; row < rows; row++ {
		if row%8192 == 0 {
			if err := proc.Canceled(); err != nil {
				return nil, err
			}
		}
		keyBuf.Reset()
		keys := make([]types.Value, len(arg.GroupBy))
		for i, col := range arg.GroupBy {
			keys[i] = loc.Value(row, col)
			writeKeyPart(&keyBuf, keys[i])
		}
		key := keyBuf.String()

		entry, ok := groups[key]
		if !ok {
			entry = &groupEntry{keys: keys, states: make([]state, len(arg.Aggs))}
			groups[key] = entry
			order = append(order, key)
		}
		for i, agg := range arg.Aggs {
			if agg.Arg == nil {
				// COUNT(*) counts rows
				entry.states[i].count++
				continue
			}
			v, err := colexec.EvalExpr(loc, row, agg.Arg)
			if err != nil {
				return nil, err
			}
			if err := entry.states[i].fold(v); err != nil {
				return nil, err
			}
		}
	}

	// an ungrouped aggregate over empty input still yields one row:
	// zero for counts, NULL for everything else
	if len(arg.GroupBy) == 0 && len(order) == 0 {
		groups[""] = &groupEntry{states: make([]state, len(arg.Aggs))}
		order = append(order, "")
	}

	names, typs := arg.schema(in)
	out := table.NewOfType(names, typs, 0, table.Data)

	vals := make([]types.Value, len(names))
	for _, key := range order {
		entry := groups[key]
		copy(vals, entry.keys)
		for i, agg := range arg.Aggs {
			v, err := finish(agg, &entry.states[i], typs[len(arg.GroupBy)+i].Oid)
			if err != nil {
				return nil, err
			}
			vals[len(arg.GroupBy)+i] = v
		}
		if err := out.AppendRow(vals); err != nil {
			return nil, err
		}
	}
	out.SealAll()
	return out, nil
}

func finish(agg Aggregation, s *state, typ types.T) (types.Value, error) {
	switch agg.Kind {
	case extend.AggCount:
		return types.NewInt64(s.count), nil
	case extend.AggSum:
		if s.count == 0 {
			return types.NewNull(typ), nil
		}
		if typ == types.T_float64 {
			return types.NewFloat64(s.sumF), nil
		}
		return types.NewInt64(s.sumI), nil
	case extend.AggAvg:
		// over only the non-null inputs
		if s.count == 0 {
			return types.NewNull(types.T_float64), nil
		}
		return types.NewFloat64(s.sumF / float64(s.count)), nil
	case extend.AggMin:
		if !s.anyVal {
			return types.NewNull(typ), nil
		}
		return s.min, nil
	case extend.AggMax:
		if !s.anyVal {
			return types.NewNull(typ), nil
		}
		return s.max, nil
	}
	return types.Value{}, sqlerror.Newf(errno.DatatypeIncompatible, "unexpected aggregate kind %s", agg.Kind)
}

func (arg *Argument) schema(in *table.Table) ([]string, []types.Type) {
	names := make([]string, 0, len(arg.GroupBy)+len(arg.Aggs))
	typs := make([]types.Type, 0, cap(names))
	for _, col := range arg.GroupBy {
		names = append(names, in.ColumnName(col))
		typs = append(typs, in.ColumnType(col))
	}
	for _, agg := range arg.Aggs {
		name := agg.Alias
		if name == "" {
			name = agg.Kind.String()
			if agg.Arg != nil {
				name = fmt.Sprintf("%s(%s)", agg.Kind, agg.Arg)
			} else {
				name = agg.Kind.String() + "(*)"
			}
		}
		names = append(names, name)
		typs = append(typs, types.New(aggType(agg, in)))
	}
	return names, typs
}

func aggType(agg Aggregation, in *table.Table) types.T {
	switch agg.Kind {
	case extend.AggCount:
		return types.T_int64
	case extend.AggAvg:
		return types.T_float64
	}
	argType := types.T_int64
	if agg.Arg != nil {
		argType = exprType(agg.Arg, in)
	}
	if agg.Kind == extend.AggSum {
		switch argType {
		case types.T_float32, types.T_float64:
			return types.T_float64
		}
		return types.T_int64
	}
	return argType
}

func exprType(e *colexec.Expr, in *table.Table) types.T {
	if e.Type() == extend.Column {
		return in.ColumnType(e.ColumnRef()).Oid
	}
	if e.Type() == extend.Literal {
		return e.Value().Oid()
	}
	if e.IsArithmeticOperator() {
		lt := exprType(e.Left(), in)
		rt := exprType(e.Right(), in)
		if e.Type() == extend.Power ||
			lt == types.T_float32 || lt == types.T_float64 ||
			rt == types.T_float32 || rt == types.T_float64 {
			return types.T_float64
		}
		return types.T_int64
	}
	return types.T_int64
}

// writeKeyPart serializes one group key: a null marker, the text form
// and its length so concatenated keys cannot collide.
func writeKeyPart(buf *bytes.Buffer, v types.Value) {
	if v.IsNull() {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	s := v.String()
	buf.WriteString(s)
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(s)))
	buf.Write(length[:])
}
