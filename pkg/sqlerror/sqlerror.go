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

// Package sqlerror constructs the coded errors used across the engine.
package sqlerror

import (
	"errors"
	"fmt"

	"github.com/matrixorigin/stonework/pkg/errno"
)

// SQLError carries an errno code alongside the message. Translation and
// schema errors are produced before execution starts; evaluation and
// resource errors abort the running query.
type SQLError struct {
	Code uint16
	Msg  string
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Msg)
}

func New(code uint16, msg string) error {
	return &SQLError{Code: code, Msg: msg}
}

func Newf(code uint16, format string, args ...any) error {
	return &SQLError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Code extracts the errno code of err, or 0 if err carries none.
func Code(err error) uint16 {
	var se *SQLError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Is reports whether err carries the given errno code.
func Is(err error, code uint16) bool {
	return Code(err) == code
}

// Internal raises an invariant violation. Impossible states are not
// recoverable and must not flow through the regular error paths.
func Internal(msg string) {
	panic(&SQLError{Code: errno.InternalError, Msg: msg})
}
