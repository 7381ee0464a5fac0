//go:build cgo

package main

import (
	"testing"

	"github.com/barnybug/powermate/lib/evdev"
	"github.com/stretchr/testify/assert"
)

func TestStructSize(t *testing.T) {
	ok, size := structSize()
	assert.Equal(t, 1, int(ok))
	assert.Equal(t, evdev.EventSize, int(size))
}

func TestStructSizeExported(t *testing.T) {
	ret := struct_size()
	assert.Equal(t, 1, int(ret.ok))
	assert.Equal(t, evdev.EventSize, int(ret.size))
}
