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

package colexec

import (
	"math"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// EvalExpr evaluates an operator expression for one row. Arithmetic
// involving NULL evaluates to NULL, surfaced as a NULL value; integer
// division truncates toward zero; modulo follows the dividend's sign.
// Comparison and logical expressions are not evaluated here; they
// return an error.
func EvalExpr(loc *Locator, row int, e *Expr) (types.Value, error) {
	switch {
	case e.Type() == extend.Literal:
		return e.Value(), nil
	case e.Type() == extend.Column:
		return loc.Value(row, e.ColumnRef()), nil
	case e.Type() == extend.Placeholder:
		return types.Value{}, sqlerror.New(errno.FeatureNotSupported, "unbound placeholder in evaluation")
	case e.IsArithmeticOperator():
		left, err := EvalExpr(loc, row, e.Left())
		if err != nil {
			return types.Value{}, err
		}
		right, err := EvalExpr(loc, row, e.Right())
		if err != nil {
			return types.Value{}, err
		}
		return evalArithmetic(e.Type(), left, right)
	}
	return types.Value{}, sqlerror.Newf(errno.FeatureNotSupported,
		"expression %s cannot be evaluated row-wise", e)
}

// CastValue widens or narrows a numeric value to the element type t;
// appends into typed columns go through it. ok is false for casts
// between incompatible families.
func CastValue(t types.T, v types.Value) (types.Value, bool) {
	if v.IsNull() {
		return types.NewNull(t), true
	}
	if v.Oid() == t {
		return v, true
	}
	if !v.IsNumeric() {
		return types.Value{}, false
	}
	switch t {
	case types.T_int32:
		if v.Oid() == types.T_int64 {
			return types.NewInt32(int32(v.Int64())), true
		}
		return types.NewInt32(int32(v.AsFloat64())), true
	case types.T_int64:
		if v.Oid() == types.T_int32 {
			return types.NewInt64(v.Int64()), true
		}
		return types.NewInt64(int64(v.AsFloat64())), true
	case types.T_float32:
		return types.NewFloat32(float32(v.AsFloat64())), true
	case types.T_float64:
		return types.NewFloat64(v.AsFloat64()), true
	}
	return types.Value{}, false
}

func evalArithmetic(op extend.ExpressionType, l, r types.Value) (types.Value, error) {
	if l.IsNull() || r.IsNull() {
		return types.Null, nil
	}
	if !l.IsNumeric() || !r.IsNumeric() {
		return types.Value{}, sqlerror.Newf(errno.DatatypeIncompatible,
			"arithmetic on %s and %s", l.Oid(), r.Oid())
	}

	useFloat := op == extend.Power ||
		l.Oid() == types.T_float32 || l.Oid() == types.T_float64 ||
		r.Oid() == types.T_float32 || r.Oid() == types.T_float64

	if useFloat {
		a, b := l.AsFloat64(), r.AsFloat64()
		switch op {
		case extend.Addition:
			return types.NewFloat64(a + b), nil
		case extend.Subtraction:
			return types.NewFloat64(a - b), nil
		case extend.Multiplication:
			return types.NewFloat64(a * b), nil
		case extend.Division:
			return types.NewFloat64(a / b), nil
		case extend.Modulo:
			return types.NewFloat64(math.Mod(a, b)), nil
		case extend.Power:
			return types.NewFloat64(math.Pow(a, b)), nil
		}
	}

	a, b := l.Int64(), r.Int64()
	switch op {
	case extend.Addition:
		return types.NewInt64(a + b), nil
	case extend.Subtraction:
		return types.NewInt64(a - b), nil
	case extend.Multiplication:
		return types.NewInt64(a * b), nil
	case extend.Division:
		if b == 0 {
			return types.Value{}, sqlerror.New(errno.DivisionByZero, "division by zero")
		}
		return types.NewInt64(a / b), nil
	case extend.Modulo:
		if b == 0 {
			return types.Value{}, sqlerror.New(errno.DivisionByZero, "zero modulus")
		}
		return types.NewInt64(a % b), nil
	}
	return types.Value{}, sqlerror.Newf(errno.DatatypeIncompatible, "unexpected arithmetic operator %s", op)
}
