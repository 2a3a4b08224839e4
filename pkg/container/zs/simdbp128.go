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

import "math/bits"

// SIMD-BP128 groups the input into blocks of 128 integers and packs
// each block at the smallest bit width that holds its maximum. Four
// consecutive blocks form a meta-block prefixed by a 128-bit header
// carrying the four widths. Trailing input is zero-padded to a full
// block; the logical element count lives in the vector metadata, not
// in the stream.
//
// The kernels below are the scalar fallback and are the reference for
// bit-identical SIMD implementations.
const (
	blockSize     = 128
	blocksPerMeta = 4
	metaSize      = blockSize * blocksPerMeta
	headerWords   = 4
)

type simdBp128Vector struct {
	data []uint32
	size int

	// word offset of each meta-block, known at encode time
	metaOffsets []int
}

func encodeSimdBp128(values []uint32) *simdBp128Vector {
	v := &simdBp128Vector{size: len(values)}

	var scratch [blockSize]uint32
	for begin := 0; begin < len(values); begin += metaSize {
		v.metaOffsets = append(v.metaOffsets, len(v.data))

		var widths [blocksPerMeta]uint8
		header := len(v.data)
		v.data = append(v.data, make([]uint32, headerWords)...)

		for b := 0; b < blocksPerMeta; b++ {
			blockBegin := begin + b*blockSize
			if blockBegin >= len(values) && b > 0 {
				// the trailing meta-block still carries four
				// width entries; empty blocks pack at width 0
				widths[b] = 0
				continue
			}
			block := scratch[:]
			for i := 0; i < blockSize; i++ {
				if blockBegin+i < len(values) {
					block[i] = values[blockBegin+i]
				} else {
					block[i] = 0
				}
			}
			width := maxBitWidth(block)
			widths[b] = width
			v.data = append(v.data, make([]uint32, wordsPerBlock(width))...)
			pack128(block, width, v.data[len(v.data)-wordsPerBlock(width):])
		}
		for b := 0; b < blocksPerMeta; b++ {
			v.data[header+b] = uint32(widths[b])
		}
	}
	return v
}

func maxBitWidth(block []uint32) uint8 {
	var max uint32
	for _, x := range block {
		if x > max {
			max = x
		}
	}
	return uint8(bits.Len32(max))
}

func wordsPerBlock(width uint8) int {
	return blockSize * int(width) / 32
}

// pack128 packs 128 values at the given width, LSB first, into dst.
// dst must be zeroed and exactly wordsPerBlock(width) long.
func pack128(block []uint32, width uint8, dst []uint32) {
	if width == 0 {
		return
	}
	w := int(width)
	for i, x := range block {
		bitpos := i * w
		word, shift := bitpos/32, bitpos%32
		dst[word] |= x << shift
		if shift+w > 32 {
			dst[word+1] |= x >> (32 - shift)
		}
	}
}

// unpack128 is the inverse of pack128; dst must be 128 long.
func unpack128(src []uint32, width uint8, dst []uint32) {
	if width == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	w := int(width)
	mask := widthMask(width)
	for i := range dst {
		bitpos := i * w
		word, shift := bitpos/32, bitpos%32
		x := src[word] >> shift
		if shift+w > 32 {
			x |= src[word+1] << (32 - shift)
		}
		dst[i] = x & mask
	}
}

func widthMask(width uint8) uint32 {
	if width >= 32 {
		return ^uint32(0)
	}
	return 1<<width - 1
}

func (v *simdBp128Vector) ZsType() ZsType {
	return SimdBp128
}

func (v *simdBp128Vector) Size() int {
	return v.size
}

func (v *simdBp128Vector) Get(i int) uint32 {
	meta := i / metaSize
	offset := v.metaOffsets[meta]
	idx := i % metaSize

	block := idx / blockSize
	dataOffset := offset + headerWords
	for b := 0; b < block; b++ {
		dataOffset += wordsPerBlock(uint8(v.data[offset+b]))
	}
	return v.getInBlock(dataOffset, uint8(v.data[offset+block]), idx%blockSize)
}

func (v *simdBp128Vector) getInBlock(dataOffset int, width uint8, idx int) uint32 {
	if width == 0 {
		return 0
	}
	w := int(width)
	bitpos := idx * w
	word, shift := dataOffset+bitpos/32, bitpos%32
	x := v.data[word] >> shift
	if shift+w > 32 {
		x |= v.data[word+1] << (32 - shift)
	}
	return x & widthMask(width)
}

func (v *simdBp128Vector) Decoder() Decoder {
	return &simdBp128Decoder{vec: v}
}

func (v *simdBp128Vector) Iterator() Iterator {
	return &simdBp128Iterator{vec: v}
}

func (v *simdBp128Vector) Decode() []uint32 {
	out := make([]uint32, 0, v.size)
	it := v.Iterator()
	for {
		x, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, x)
	}
	return out
}

// simdBp128Decoder keeps a cursor through the packed stream and
// reconstructs meta-block offsets lazily as random access moves
// forward.
type simdBp128Decoder struct {
	vec *simdBp128Vector

	// offsets[m] is the word offset of meta-block m; grown on demand
	offsets []int
}

func (d *simdBp128Decoder) Size() int {
	return d.vec.size
}

func (d *simdBp128Decoder) Get(i int) uint32 {
	meta := i / metaSize
	d.advanceTo(meta)

	offset := d.offsets[meta]
	idx := i % metaSize
	block := idx / blockSize
	dataOffset := offset + headerWords
	for b := 0; b < block; b++ {
		dataOffset += wordsPerBlock(uint8(d.vec.data[offset+b]))
	}
	return d.vec.getInBlock(dataOffset, uint8(d.vec.data[offset+block]), idx%blockSize)
}

func (d *simdBp128Decoder) advanceTo(meta int) {
	if len(d.offsets) == 0 {
		d.offsets = append(d.offsets, 0)
	}
	for len(d.offsets) <= meta {
		last := d.offsets[len(d.offsets)-1]
		next := last + headerWords
		for b := 0; b < blocksPerMeta; b++ {
			next += wordsPerBlock(uint8(d.vec.data[last+b]))
		}
		d.offsets = append(d.offsets, next)
	}
}

type simdBp128Iterator struct {
	vec *simdBp128Vector

	idx       int
	offset    int // word offset of the current meta-block
	block     int // block within the current meta-block
	buf       [blockSize]uint32
	unpacked  bool
	dataStart int // word offset of the current block's payload
}

func (it *simdBp128Iterator) Next() (uint32, bool) {
	if it.idx >= it.vec.size {
		return 0, false
	}
	inBlock := it.idx % blockSize
	if inBlock == 0 {
		it.unpacked = false
	}
	if !it.unpacked {
		it.unpackCurrent()
	}
	x := it.buf[inBlock]
	it.idx++
	if it.idx%blockSize == 0 {
		it.step()
	}
	return x, true
}

func (it *simdBp128Iterator) unpackCurrent() {
	if it.idx == 0 {
		it.offset = 0
		it.block = 0
		it.dataStart = headerWords
	}
	width := uint8(it.vec.data[it.offset+it.block])
	unpack128(it.vec.data[it.dataStart:], width, it.buf[:])
	it.unpacked = true
}

// step moves the cursor past the block just consumed.
func (it *simdBp128Iterator) step() {
	width := uint8(it.vec.data[it.offset+it.block])
	it.dataStart += wordsPerBlock(width)
	it.block++
	if it.block == blocksPerMeta {
		it.offset = it.dataStart
		it.dataStart = it.offset + headerWords
		it.block = 0
	}
	it.unpacked = false
}
