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

// Package errno defines the error-code space of the engine.
// Codes are grouped by the layer that raises them; sqlerror attaches
// them to error values.
package errno

const (
	// Group 1: schema errors, raised while resolving names against a plan
	// or a table layout.
	UndefinedColumn      uint16 = 10101
	AmbiguousColumn      uint16 = 10102
	UndefinedTable       uint16 = 10103
	DuplicateTable       uint16 = 10104
	ColumnCountMismatch  uint16 = 10105
	DatatypeMismatch     uint16 = 10106

	// Group 2: translation errors, raised by sql/build before any operator
	// runs.
	SyntaxErrorOrAccessRuleViolation uint16 = 10201
	FeatureNotSupported              uint16 = 10202
	InvalidJoinCondition             uint16 = 10203
	GroupByError                     uint16 = 10204

	// Group 3: evaluation errors, raised while an operator executes.
	DivisionByZero     uint16 = 10301
	NumericOutOfRange  uint16 = 10302
	DatatypeIncompatible uint16 = 10303

	// Group 4: resource errors.
	OutOfMemory    uint16 = 10401
	QueryCanceled  uint16 = 10402

	// Group 5: internal errors. These indicate impossible states and are
	// raised as panics, never returned.
	InternalError uint16 = 10501
)
