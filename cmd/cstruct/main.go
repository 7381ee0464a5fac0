// Command cstruct builds a shared library exporting struct_size, for callers
// loading it from another runtime:
//
//	go build -buildmode=c-shared -o libcstruct.so ./cmd/cstruct
package main

/*
#include <stddef.h>

typedef struct {
	int ok;
	size_t size;
} cstruct_result;
*/
import "C"

import "github.com/barnybug/powermate/lib/cstruct"

//export struct_size
func struct_size() C.cstruct_result {
	var ret C.cstruct_result
	ret.ok, ret.size = structSize()
	return ret
}

// structSize converts the Go result to the values returned over the C ABI.
func structSize() (C.int, C.size_t) {
	r := cstruct.StructSize()
	var ok C.int
	if r.Ok() {
		ok = 1
	}
	return ok, C.size_t(r.Size)
}

func main() {}
