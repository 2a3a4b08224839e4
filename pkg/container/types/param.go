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

package types

// ParamKind discriminates the operator-level scan parameter: a concrete
// value, a second column of the same input, or a positional placeholder
// bound at recreate time by a prepared statement.
type ParamKind uint8

const (
	ParamValue ParamKind = iota
	ParamColumn
	ParamPlaceholder
)

type Param struct {
	Kind        ParamKind
	Val         Value
	Col         ColumnID
	Placeholder int
}

func ValueParam(v Value) Param {
	return Param{Kind: ParamValue, Val: v}
}

func ColumnParam(c ColumnID) Param {
	return Param{Kind: ParamColumn, Col: c}
}

func PlaceholderParam(idx int) Param {
	return Param{Kind: ParamPlaceholder, Placeholder: idx}
}

// Bind substitutes a placeholder with its positional value, leaving
// other parameter kinds untouched.
func (p Param) Bind(args []Value) Param {
	if p.Kind == ParamPlaceholder && p.Placeholder < len(args) {
		return ValueParam(args[p.Placeholder])
	}
	return p
}
