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

package zs

import "encoding/binary"

// fixedSizeVector stores every element at the same byte-aligned width
// of 1, 2 or 4 bytes.
type fixedSizeVector struct {
	width int
	data  []byte
}

func newFixedSize(width int, values []uint32) *fixedSizeVector {
	v := &fixedSizeVector{
		width: width,
		data:  make([]byte, width*len(values)),
	}
	switch width {
	case 1:
		for i, x := range values {
			v.data[i] = byte(x)
		}
	case 2:
		for i, x := range values {
			binary.LittleEndian.PutUint16(v.data[2*i:], uint16(x))
		}
	case 4:
		for i, x := range values {
			binary.LittleEndian.PutUint32(v.data[4*i:], x)
		}
	}
	return v
}

func (v *fixedSizeVector) ZsType() ZsType {
	switch v.width {
	case 1:
		return FixedSize1
	case 2:
		return FixedSize2
	}
	return FixedSize4
}

func (v *fixedSizeVector) Size() int {
	return len(v.data) / v.width
}

func (v *fixedSizeVector) Get(i int) uint32 {
	switch v.width {
	case 1:
		return uint32(v.data[i])
	case 2:
		return uint32(binary.LittleEndian.Uint16(v.data[2*i:]))
	}
	return binary.LittleEndian.Uint32(v.data[4*i:])
}

func (v *fixedSizeVector) Decoder() Decoder {
	return &fixedSizeDecoder{vec: v}
}

func (v *fixedSizeVector) Iterator() Iterator {
	return &fixedSizeIterator{vec: v}
}

func (v *fixedSizeVector) Decode() []uint32 {
	out := make([]uint32, v.Size())
	for i := range out {
		out[i] = v.Get(i)
	}
	return out
}

type fixedSizeDecoder struct {
	vec *fixedSizeVector
}

func (d *fixedSizeDecoder) Get(i int) uint32 {
	return d.vec.Get(i)
}

func (d *fixedSizeDecoder) Size() int {
	return d.vec.Size()
}

type fixedSizeIterator struct {
	vec *fixedSizeVector
	idx int
}

func (it *fixedSizeIterator) Next() (uint32, bool) {
	if it.idx >= it.vec.Size() {
		return 0, false
	}
	v := it.vec.Get(it.idx)
	it.idx++
	return v, true
}
