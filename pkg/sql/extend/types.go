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

// Package extend is the expression tree shared by the logical plan and
// the physical operators. The two layers use the same structure with
// different column payloads: plan expressions carry column origins,
// operator expressions carry bare column ids.
package extend

import "github.com/matrixorigin/stonework/pkg/sqlerror"

type ExpressionType uint8

const (
	Literal ExpressionType = iota
	Column
	Star
	Function
	Placeholder

	Addition
	Subtraction
	Multiplication
	Division
	Modulo
	Power

	Equals
	NotEquals
	LessThan
	LessThanEquals
	GreaterThan
	GreaterThanEquals
	Like
	NotLike
	Between

	And
	Or
	Not
	Exists
)

var expressionTypeNames = map[ExpressionType]string{
	Literal:           "Literal",
	Column:            "Column",
	Star:              "*",
	Function:          "Function",
	Placeholder:       "?",
	Addition:          "+",
	Subtraction:       "-",
	Multiplication:    "*",
	Division:          "/",
	Modulo:            "%",
	Power:             "^",
	Equals:            "=",
	NotEquals:         "!=",
	LessThan:          "<",
	LessThanEquals:    "<=",
	GreaterThan:       ">",
	GreaterThanEquals: ">=",
	Like:              "LIKE",
	NotLike:           "NOT LIKE",
	Between:           "BETWEEN",
	And:               "AND",
	Or:                "OR",
	Not:               "NOT",
	Exists:            "EXISTS",
}

func (t ExpressionType) String() string {
	if s, ok := expressionTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

type AggregateKind uint8

const (
	AggMin AggregateKind = iota
	AggMax
	AggSum
	AggAvg
	AggCount
)

func (k AggregateKind) String() string {
	switch k {
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggCount:
		return "COUNT"
	}
	return "unknown"
}

// AggregateKindByName resolves a function name; ok is false for
// non-aggregate functions.
func AggregateKindByName(name string) (AggregateKind, bool) {
	switch name {
	case "MIN", "min":
		return AggMin, true
	case "MAX", "max":
		return AggMax, true
	case "SUM", "sum":
		return AggSum, true
	case "AVG", "avg":
		return AggAvg, true
	case "COUNT", "count":
		return AggCount, true
	}
	return 0, false
}

// ScanType is the comparison a predicate performs.
type ScanType uint8

const (
	OpEquals ScanType = iota
	OpNotEquals
	OpLessThan
	OpLessThanEquals
	OpGreaterThan
	OpGreaterThanEquals
	OpLike
	OpNotLike
	OpBetween
)

func (t ScanType) String() string {
	switch t {
	case OpEquals:
		return "="
	case OpNotEquals:
		return "!="
	case OpLessThan:
		return "<"
	case OpLessThanEquals:
		return "<="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanEquals:
		return ">="
	case OpLike:
		return "LIKE"
	case OpNotLike:
		return "NOT LIKE"
	case OpBetween:
		return "BETWEEN"
	}
	return "unknown"
}

// ScanTypeForExpression maps a comparison expression type to its scan
// type.
func ScanTypeForExpression(t ExpressionType) ScanType {
	switch t {
	case Equals:
		return OpEquals
	case NotEquals:
		return OpNotEquals
	case LessThan:
		return OpLessThan
	case LessThanEquals:
		return OpLessThanEquals
	case GreaterThan:
		return OpGreaterThan
	case GreaterThanEquals:
		return OpGreaterThanEquals
	case Like:
		return OpLike
	case NotLike:
		return OpNotLike
	case Between:
		return OpBetween
	}
	sqlerror.Internal("expression type is not a scan type")
	return 0
}

// ReverseScanType returns the scan type after swapping a comparison's
// operands: order comparisons flip, (in)equality stays.
func ReverseScanType(t ScanType) ScanType {
	switch t {
	case OpGreaterThan:
		return OpLessThan
	case OpLessThan:
		return OpGreaterThan
	case OpGreaterThanEquals:
		return OpLessThanEquals
	case OpLessThanEquals:
		return OpGreaterThanEquals
	}
	return t
}
