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

// Package column implements the column variants of a chunk: plain value
// columns plus the dictionary, run-length and reference encodings.
package column

import (
	"bytes"
	"encoding/binary"

	"github.com/matrixorigin/stonework/pkg/container/types"
	"github.com/matrixorigin/stonework/pkg/errno"
	"github.com/matrixorigin/stonework/pkg/sqlerror"
)

type EncodingType uint8

const (
	Value EncodingType = iota
	Dictionary
	RunLength
	Reference
)

func (t EncodingType) String() string {
	switch t {
	case Value:
		return "value"
	case Dictionary:
		return "dictionary"
	case RunLength:
		return "run-length"
	case Reference:
		return "reference"
	}
	return "unknown"
}

// Column is a typed sequence of values, immutable once its chunk is
// sealed. Only value columns accept appends.
type Column interface {
	Oid() types.T
	Len() int
	Encoding() EncodingType

	// GetValue returns the element at row, which may be NULL.
	GetValue(row uint32) types.Value

	// Append extends the column by one element. Encoded and reference
	// columns reject it.
	Append(v types.Value) error

	// Dup deep-copies the column.
	Dup() Column

	// Accept dispatches on the concrete encoding.
	Accept(visitor Visitor, ctx any) error
}

// Visitor is the polymorphic handler over column encodings. Operators
// implement it to fan out per encoding; ctx is threaded through
// unchanged.
type Visitor interface {
	VisitValue(c *ValueColumn, ctx any) error
	VisitDictionary(c *DictionaryColumn, ctx any) error
	VisitRunLength(c *RunLengthColumn, ctx any) error
	VisitReference(c *ReferenceColumn, ctx any) error
}

// Referenced is the read surface a reference column needs from the
// table it points into. *table.Table implements it.
type Referenced interface {
	BaseColumn(chunk uint32, col types.ColumnID) Column
}

// WriteRowString appends the serialized form of one row to buf: the
// value's text followed by its 4-byte length, so that concatenations of
// several columns cannot collide. NULL rows are not supported.
func WriteRowString(buf *bytes.Buffer, c Column, row uint32) error {
	v := c.GetValue(row)
	if v.IsNull() {
		return sqlerror.New(errno.DatatypeIncompatible, "row serialization does not support NULL values")
	}
	s := v.String()
	buf.WriteString(s)
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(s)))
	buf.Write(length[:])
	return nil
}

func errAppendOn(enc EncodingType) error {
	return sqlerror.Newf(errno.FeatureNotSupported, "append on %s column", enc)
}
