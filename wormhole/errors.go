// Copyright 2014 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

package wormhole

import (
	"errors"
	"fmt"

	"github.com/go-stack/stack"

	"github.com/probeum/wormhole/log"
)

// Contract errors: caller misuse at the public boundary. These are
// ordinary errors, never panics.
var (
	ErrNilKey            = errors.New("wormhole: nil key")
	ErrNegativeCount     = errors.New("wormhole: scan count must be non-negative")
	ErrTypeMismatch      = errors.New("wormhole: user key does not match this index's key domain")
	ErrMutateDuringVisit = errors.New("wormhole: visit callback must not mutate the index it is scanning")
)

// InternalError reports a violated structural invariant: a leaf split
// that could not find a valid anchor, a delete that could not locate a
// key the hash table reported present, or a desynchronized chain/MTHT
// pointer. These are programmer errors, never part of the public error
// surface, and are always fatal: the index must not be used after one
// is raised.
type InternalError struct {
	Msg   string
	Stack stack.CallStack
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("wormhole: internal inconsistency: %s\n%+v", e.Msg, e.Stack)
}

// fatalf logs the violated invariant with a captured call stack and
// panics with an *InternalError. It is only ever called from branches
// that should be structurally unreachable given a correctly maintained
// chain and MTHT.
func fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	cs := stack.Trace().TrimRuntime()
	log.CritStack("internal inconsistency", "error", msg, "stack", fmt.Sprintf("%+v", cs))
	panic(&InternalError{Msg: msg, Stack: cs})
}

// fatalErrf builds the same kind of message as fatalf but returns it as
// a plain error instead of panicking. It is used by the validator, whose
// job is to report invariant violations rather than to raise them as
// they happen.
func fatalErrf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
