// Package cstruct reports the size of the input event record to callers on
// the other side of a runtime boundary (a C ABI export, the event bus).
package cstruct

import (
	"encoding/json"
	"fmt"
	"unsafe"

	"github.com/barnybug/powermate/lib/evdev"
)

type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "error"
}

// Result is a tagged result: either {ok, Size} or {error, Err}.
type Result struct {
	Status Status
	Size   uintptr
	Err    error
}

func Ok(size uintptr) Result {
	return Result{Status: StatusOK, Size: size}
}

func Error(err error) Result {
	return Result{Status: StatusError, Err: err}
}

func (r Result) Ok() bool {
	return r.Status == StatusOK
}

func (r Result) String() string {
	if r.Ok() {
		return fmt.Sprintf("{ok, %d}", r.Size)
	}
	return fmt.Sprintf("{error, %s}", r.Err)
}

// MarshalJSON encodes the result as a two element tuple: ["ok",24].
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Ok() {
		return json.Marshal([]interface{}{r.Status.String(), r.Size})
	}
	msg := ""
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return json.Marshal([]interface{}{r.Status.String(), msg})
}

// StructSize returns the size in bytes of evdev.InputEvent as laid out by
// the host platform. It cannot fail.
func StructSize() Result {
	return Ok(unsafe.Sizeof(evdev.InputEvent{}))
}
