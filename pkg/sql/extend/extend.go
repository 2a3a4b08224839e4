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

package extend

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/stonework/pkg/container/types"
)

// Expression is one node of the tree. C is the column payload: the
// plan layer instantiates it with a column origin, the operator layer
// with types.ColumnID. The two share structure but never identity.
type Expression[C comparable] struct {
	typ       ExpressionType
	value     types.Value
	aggregate AggregateKind
	column    C
	tableName string
	alias     string
	index     int // placeholder position

	left, right   *Expression[C]
	aggregateArgs []*Expression[C]
}

func NewLiteral[C comparable](v types.Value) *Expression[C] {
	return &Expression[C]{typ: Literal, value: v}
}

func NewColumn[C comparable](column C) *Expression[C] {
	return &Expression[C]{typ: Column, column: column}
}

// NewColumns builds one column expression per payload.
func NewColumns[C comparable](columns []C) []*Expression[C] {
	out := make([]*Expression[C], len(columns))
	for i, c := range columns {
		out[i] = NewColumn(c)
	}
	return out
}

func NewStar[C comparable](tableName string) *Expression[C] {
	return &Expression[C]{typ: Star, tableName: tableName}
}

func NewFunction[C comparable](kind AggregateKind, args []*Expression[C]) *Expression[C] {
	return &Expression[C]{typ: Function, aggregate: kind, aggregateArgs: args}
}

func NewPlaceholder[C comparable](index int) *Expression[C] {
	return &Expression[C]{typ: Placeholder, index: index}
}

func NewBinary[C comparable](typ ExpressionType, left, right *Expression[C]) *Expression[C] {
	return &Expression[C]{typ: typ, left: left, right: right}
}

func NewUnary[C comparable](typ ExpressionType, operand *Expression[C]) *Expression[C] {
	return &Expression[C]{typ: typ, left: operand}
}

func (e *Expression[C]) Type() ExpressionType        { return e.typ }
func (e *Expression[C]) Value() types.Value          { return e.value }
func (e *Expression[C]) Aggregate() AggregateKind    { return e.aggregate }
func (e *Expression[C]) ColumnRef() C                { return e.column }
func (e *Expression[C]) TableName() string           { return e.tableName }
func (e *Expression[C]) Alias() string               { return e.alias }
func (e *Expression[C]) PlaceholderIndex() int       { return e.index }
func (e *Expression[C]) Left() *Expression[C]        { return e.left }
func (e *Expression[C]) Right() *Expression[C]       { return e.right }
func (e *Expression[C]) AggregateArgs() []*Expression[C] { return e.aggregateArgs }

func (e *Expression[C]) SetAlias(alias string) *Expression[C] {
	e.alias = alias
	return e
}

func (e *Expression[C]) SetTableName(name string) *Expression[C] {
	e.tableName = name
	return e
}

func (e *Expression[C]) SetLeft(l *Expression[C])  { e.left = l }
func (e *Expression[C]) SetRight(r *Expression[C]) { e.right = r }

// DeepCopy rebuilds the tree node by node. Construct-then-assign: the
// nodes are shared by parents, so a copying constructor over the whole
// struct would alias the children.
func (e *Expression[C]) DeepCopy() *Expression[C] {
	if e == nil {
		return nil
	}
	cp := &Expression[C]{
		typ:       e.typ,
		value:     e.value,
		aggregate: e.aggregate,
		column:    e.column,
		tableName: e.tableName,
		alias:     e.alias,
		index:     e.index,
	}
	cp.left = e.left.DeepCopy()
	cp.right = e.right.DeepCopy()
	if e.aggregateArgs != nil {
		cp.aggregateArgs = make([]*Expression[C], len(e.aggregateArgs))
		for i, arg := range e.aggregateArgs {
			cp.aggregateArgs[i] = arg.DeepCopy()
		}
	}
	return cp
}

// Eq is structural equality over kind, value, aggregate, column,
// alias, children and aggregate arguments.
func (e *Expression[C]) Eq(o *Expression[C]) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.typ != o.typ || !e.value.Eq(o.value) || e.aggregate != o.aggregate ||
		e.column != o.column || e.alias != o.alias || e.index != o.index {
		return false
	}
	if !e.left.Eq(o.left) || !e.right.Eq(o.right) {
		return false
	}
	if len(e.aggregateArgs) != len(o.aggregateArgs) {
		return false
	}
	for i := range e.aggregateArgs {
		if !e.aggregateArgs[i].Eq(o.aggregateArgs[i]) {
			return false
		}
	}
	return true
}

func (e *Expression[C]) IsOperator() bool {
	return e.IsArithmeticOperator() || e.IsLogicalOperator()
}

func (e *Expression[C]) IsArithmeticOperator() bool {
	switch e.typ {
	case Addition, Subtraction, Multiplication, Division, Modulo, Power:
		return true
	}
	return false
}

func (e *Expression[C]) IsLogicalOperator() bool {
	switch e.typ {
	case Equals, NotEquals, LessThan, LessThanEquals, GreaterThan, GreaterThanEquals,
		Like, NotLike, And, Or, Between, Not, Exists:
		return true
	}
	return false
}

func (e *Expression[C]) IsBinaryOperator() bool {
	if e.IsArithmeticOperator() {
		return true
	}
	switch e.typ {
	case Equals, NotEquals, LessThan, LessThanEquals, GreaterThan, GreaterThanEquals,
		Like, NotLike, And, Or, Between:
		return true
	}
	return false
}

func (e *Expression[C]) IsUnaryOperator() bool {
	switch e.typ {
	case Not, Exists:
		return true
	}
	return false
}

func (e *Expression[C]) IsNullLiteral() bool {
	return e.typ == Literal && e.value.IsNull()
}

func (e *Expression[C]) IsOperand() bool {
	switch e.typ {
	case Literal, Column, Placeholder:
		return true
	}
	return false
}

// String pretty-prints the tree; nested binary operators are
// parenthesized, the root is not.
func (e *Expression[C]) String() string {
	return e.print(true)
}

func (e *Expression[C]) print(root bool) string {
	var s string
	switch {
	case e.typ == Literal:
		s = e.value.String()
	case e.typ == Column:
		if e.alias != "" {
			s = e.alias
		} else {
			s = fmt.Sprintf("%v", e.column)
		}
	case e.typ == Star:
		if e.tableName != "" {
			s = e.tableName + ".*"
		} else {
			s = "*"
		}
	case e.typ == Placeholder:
		s = "?"
	case e.typ == Function:
		args := make([]string, len(e.aggregateArgs))
		for i, a := range e.aggregateArgs {
			args[i] = a.print(true)
		}
		s = fmt.Sprintf("%s(%s)", e.aggregate, strings.Join(args, ", "))
	case e.IsUnaryOperator():
		s = fmt.Sprintf("%s %s", e.typ, e.left.print(false))
	case e.IsBinaryOperator():
		s = fmt.Sprintf("%s %s %s", e.left.print(false), e.typ, e.right.print(false))
		if !root {
			s = "(" + s + ")"
		}
	default:
		s = e.typ.String()
	}
	return s
}

// ColumnsIn collects every column payload referenced by the tree in
// visit order.
func ColumnsIn[C comparable](e *Expression[C]) []C {
	var out []C
	var walk func(*Expression[C])
	walk = func(x *Expression[C]) {
		if x == nil {
			return
		}
		if x.typ == Column {
			out = append(out, x.column)
		}
		walk(x.left)
		walk(x.right)
		for _, a := range x.aggregateArgs {
			walk(a)
		}
	}
	walk(e)
	return out
}
