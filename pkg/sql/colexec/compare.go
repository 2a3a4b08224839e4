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
	"regexp"
	"strings"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sql/extend"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

// ScanMatch evaluates one scan comparison. A comparison involving NULL
// is NULL and filters the row out, so it reports no match. BETWEEN is
// inclusive on both bounds.
func ScanMatch(v types.Value, scan extend.ScanType, w types.Value, w2 *types.Value) (bool, error) {
	if v.IsNull() || w.IsNull() {
		return false, nil
	}

	switch scan {
	case extend.OpLike, extend.OpNotLike:
		if v.Oid() != types.T_varchar || w.Oid() != types.T_varchar {
			return false, sqlerror.New(errno.DatatypeIncompatible, "LIKE needs varchar operands")
		}
		matched, err := likeMatch(v.Varchar(), w.Varchar())
		if err != nil {
			return false, err
		}
		if scan == extend.OpNotLike {
			matched = !matched
		}
		return matched, nil
	case extend.OpBetween:
		if w2 == nil {
			return false, sqlerror.New(errno.DatatypeIncompatible, "BETWEEN without an upper bound")
		}
		if w2.IsNull() {
			return false, nil
		}
		low, err := compareValues(v, w)
		if err != nil {
			return false, err
		}
		high, err := compareValues(v, *w2)
		if err != nil {
			return false, err
		}
		return low >= 0 && high <= 0, nil
	}

	cmp, err := compareValues(v, w)
	if err != nil {
		return false, err
	}
	switch scan {
	case extend.OpEquals:
		return cmp == 0, nil
	case extend.OpNotEquals:
		return cmp != 0, nil
	case extend.OpLessThan:
		return cmp < 0, nil
	case extend.OpLessThanEquals:
		return cmp <= 0, nil
	case extend.OpGreaterThan:
		return cmp > 0, nil
	case extend.OpGreaterThanEquals:
		return cmp >= 0, nil
	}
	return false, sqlerror.Newf(errno.DatatypeIncompatible, "unexpected scan type %s", scan)
}

// compareValues orders two non-null values, widening across numeric
// types.
func compareValues(a, b types.Value) (int, error) {
	if a.Oid() == b.Oid() {
		return a.Compare(b), nil
	}
	if a.IsNumeric() && b.IsNumeric() {
		x, y := a.AsFloat64(), b.AsFloat64()
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	return 0, sqlerror.Newf(errno.DatatypeIncompatible, "comparison of %s against %s", a.Oid(), b.Oid())
}

// likeMatch compiles the SQL pattern: % matches any run, _ one rune.
func likeMatch(s, pattern string) (bool, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false, sqlerror.Newf(errno.DatatypeIncompatible, "bad LIKE pattern %q", pattern)
	}
	return re.MatchString(s), nil
}
