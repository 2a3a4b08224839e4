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

// Package nulls wraps the roaring bitmap library for the manipulation
// of column null masks. A column stores all its NULL positions in one
// Nulls.
package nulls

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

type Nulls struct {
	Np *roaring.Bitmap
}

func New() *Nulls {
	return &Nulls{}
}

func Build(rows ...uint32) *Nulls {
	nsp := &Nulls{Np: roaring.New()}
	nsp.Np.AddMany(rows)
	return nsp
}

// Any returns true if any bit of the Nulls is set.
func Any(nsp *Nulls) bool {
	return nsp != nil && nsp.Np != nil && !nsp.Np.IsEmpty()
}

// Contains returns true if the row is null.
func Contains(nsp *Nulls, row uint32) bool {
	return nsp != nil && nsp.Np != nil && nsp.Np.Contains(row)
}

func Add(nsp *Nulls, rows ...uint32) {
	if len(rows) == 0 {
		return
	}
	if nsp.Np == nil {
		nsp.Np = roaring.New()
	}
	nsp.Np.AddMany(rows)
}

func Del(nsp *Nulls, rows ...uint32) {
	if nsp.Np == nil {
		return
	}
	for _, row := range rows {
		nsp.Np.Remove(row)
	}
}

// Length returns the number of rows contained in the Nulls.
func Length(nsp *Nulls) int {
	if nsp == nil || nsp.Np == nil {
		return 0
	}
	return int(nsp.Np.GetCardinality())
}

// Set performs a union of nsp and m and stores the result in nsp.
func Set(nsp, m *Nulls) {
	if m == nil || m.Np == nil {
		return
	}
	if nsp.Np == nil {
		nsp.Np = roaring.New()
	}
	nsp.Np.Or(m.Np)
}

func (nsp *Nulls) Clone() *Nulls {
	if nsp == nil {
		return nil
	}
	if nsp.Np == nil {
		return &Nulls{}
	}
	return &Nulls{Np: nsp.Np.Clone()}
}

func (nsp *Nulls) ToArray() []uint32 {
	if nsp == nil || nsp.Np == nil {
		return []uint32{}
	}
	return nsp.Np.ToArray()
}

func String(nsp *Nulls) string {
	if nsp == nil || nsp.Np == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", nsp.Np.ToArray())
}
