package cstruct

import (
	"encoding/json"
	"fmt"
	"testing"
	"unsafe"

	"github.com/barnybug/powermate/lib/evdev"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// the same widths laid out without the named type
type reference struct {
	a    int64
	b    int64
	c, d uint16
	e    int32
}

func TestStructSize(t *testing.T) {
	r := StructSize()
	assert.True(t, r.Ok())
	assert.NoError(t, r.Err)
	assert.Equal(t, unsafe.Sizeof(evdev.InputEvent{}), r.Size)
	assert.Equal(t, unsafe.Sizeof(reference{}), r.Size)
	assert.Equal(t, uintptr(evdev.EventSize), r.Size)
	assert.True(t, r.Size >= 24, "at least the sum of the field widths")
}

func TestStructSizeDeterministic(t *testing.T) {
	first := StructSize()
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, StructSize())
	}
}

func TestMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Ok(24))
	assert.NoError(t, err)
	assert.JSONEq(t, `["ok",24]`, string(b))

	b, err = json.Marshal(Error(errors.New("boom")))
	assert.NoError(t, err)
	assert.JSONEq(t, `["error","boom"]`, string(b))
}

func TestErrorResult(t *testing.T) {
	r := Error(errors.New("boom"))
	assert.False(t, r.Ok())
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "{error, boom}", r.String())
}

func ExampleOk() {
	fmt.Println(Ok(24))
	// Output:
	// {ok, 24}
}
