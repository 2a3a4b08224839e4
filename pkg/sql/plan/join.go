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

package plan

import (
	"fmt"

	"github.com/matrixorigin/stonework/pkg/sql/extend"
)

// JoinNode concatenates the columns of both children. Cross and
// natural joins carry no predicate of their own; every other mode
// holds one simple comparison between a left and a right column.
type JoinNode struct {
	baseNode
	mode        JoinMode
	leftOrigin  ColumnOrigin
	rightOrigin ColumnOrigin
	scanType    extend.ScanType
	hasPred     bool
}

func NewCrossJoin() *JoinNode {
	n := &JoinNode{mode: JoinCross}
	n.init(n, Join)
	return n
}

func NewJoin(mode JoinMode, left, right ColumnOrigin, scanType extend.ScanType) *JoinNode {
	n := &JoinNode{
		mode:        mode,
		leftOrigin:  left,
		rightOrigin: right,
		scanType:    scanType,
		hasPred:     true,
	}
	n.init(n, Join)
	return n
}

func (n *JoinNode) Mode() JoinMode { return n.mode }

// Predicate returns the join condition; ok is false for cross joins.
func (n *JoinNode) Predicate() (left, right ColumnOrigin, scanType extend.ScanType, ok bool) {
	return n.leftOrigin, n.rightOrigin, n.scanType, n.hasPred
}

func (n *JoinNode) Description() string {
	if !n.hasPred {
		return fmt.Sprintf("[Join] ⨯ (%s)", n.mode)
	}
	return fmt.Sprintf("[Join] ⋈ (%s) %s %s %s", n.mode, n.leftOrigin, n.scanType, n.rightOrigin)
}

func (n *JoinNode) OutputColumnNames() []string {
	var names []string
	if n.left != nil {
		names = append(names, n.left.OutputColumnNames()...)
	}
	if n.right != nil {
		names = append(names, n.right.OutputColumnNames()...)
	}
	return names
}

func (n *JoinNode) OutputColumnOrigins() []ColumnOrigin {
	var origins []ColumnOrigin
	if n.left != nil {
		origins = append(origins, n.left.OutputColumnOrigins()...)
	}
	if n.right != nil {
		origins = append(origins, n.right.OutputColumnOrigins()...)
	}
	return origins
}

// FindColumnOriginByNamedColumnReference searches both inputs; a name
// visible on both sides is ambiguous.
func (n *JoinNode) FindColumnOriginByNamedColumnReference(ref NamedColumnReference) (ColumnOrigin, bool, error) {
	if ref.TableName != "" && n.alias != "" {
		if ref.TableName != n.alias {
			return ColumnOrigin{}, false, nil
		}
		ref = NamedColumnReference{ColumnName: ref.ColumnName}
	}
	var leftOrigin, rightOrigin ColumnOrigin
	var leftFound, rightFound bool
	var err error
	if n.left != nil {
		if leftOrigin, leftFound, err = n.left.FindColumnOriginByNamedColumnReference(ref); err != nil {
			return ColumnOrigin{}, false, err
		}
	}
	if n.right != nil {
		if rightOrigin, rightFound, err = n.right.FindColumnOriginByNamedColumnReference(ref); err != nil {
			return ColumnOrigin{}, false, err
		}
	}
	if leftFound && rightFound {
		return ColumnOrigin{}, false, ambiguousColumn(ref)
	}
	if leftFound {
		return leftOrigin, true, nil
	}
	return rightOrigin, rightFound, nil
}
