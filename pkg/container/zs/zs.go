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

// Package zs implements the zero-suppression vectors: compressed
// sequences of 32-bit unsigned integers used as dictionary attribute
// vectors. All codecs share one decode surface and are addressed by a
// ZsType tag.
package zs

import "math"

type ZsType uint8

const (
	FixedSize1 ZsType = iota
	FixedSize2
	FixedSize4
	SimdBp128
)

func (t ZsType) String() string {
	switch t {
	case FixedSize1:
		return "fixed-size-1"
	case FixedSize2:
		return "fixed-size-2"
	case FixedSize4:
		return "fixed-size-4"
	case SimdBp128:
		return "simd-bp128"
	}
	return "unknown"
}

// Vector is a finite sequence of uint32 with random access and
// sequential decode. Implementations are immutable.
type Vector interface {
	ZsType() ZsType
	Size() int
	Get(i int) uint32

	// Decoder returns a stateful decoder, cheaper than Get for
	// mostly-sequential access.
	Decoder() Decoder

	// Iterator yields the elements front to back.
	Iterator() Iterator

	// Decode materializes the whole sequence.
	Decode() []uint32
}

type Decoder interface {
	Get(i int) uint32
	Size() int
}

type Iterator interface {
	// Next returns the next element; ok is false once the sequence is
	// exhausted.
	Next() (v uint32, ok bool)
}

// ForMax picks the smallest fixed-size byte-aligned encoding able to
// hold max.
func ForMax(max uint32) ZsType {
	switch {
	case max <= math.MaxUint8:
		return FixedSize1
	case max <= math.MaxUint16:
		return FixedSize2
	default:
		return FixedSize4
	}
}

// Encode compresses values with the requested codec.
func Encode(t ZsType, values []uint32) Vector {
	switch t {
	case FixedSize1:
		return newFixedSize(1, values)
	case FixedSize2:
		return newFixedSize(2, values)
	case FixedSize4:
		return newFixedSize(4, values)
	case SimdBp128:
		return encodeSimdBp128(values)
	}
	return nil
}
