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

// Package types defines the closed set of column element types and the
// tagged value variant the engine computes with.
package types

import "fmt"

// T is the element type tag of a column.
type T uint8

const (
	T_any T = iota // only used as the type of a bare NULL literal

	T_int32
	T_int64
	T_float32
	T_float64
	T_varchar
)

// Type describes a declared column type.
type Type struct {
	Oid T
}

// ColumnID addresses a column within a table or a plan node output.
type ColumnID uint16

func New(oid T) Type {
	return Type{Oid: oid}
}

func (t Type) Eq(o Type) bool {
	return t.Oid == o.Oid
}

func (t Type) String() string {
	return t.Oid.String()
}

func (t T) String() string {
	switch t {
	case T_any:
		return "any"
	case T_int32:
		return "int"
	case T_int64:
		return "bigint"
	case T_float32:
		return "float"
	case T_float64:
		return "double"
	case T_varchar:
		return "varchar"
	}
	return fmt.Sprintf("unexpected type tag %d", t)
}

// TypeSize is the in-memory width of a fixed-size element, 16 for
// varchar headers.
func (t T) TypeSize() int {
	switch t {
	case T_int32, T_float32:
		return 4
	case T_int64, T_float64:
		return 8
	case T_varchar:
		return 16
	}
	return 0
}

func (t T) FixedSize() bool {
	return t != T_varchar
}
