// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

//go:build !linux

package bloom

import (
	"fmt"
	"math"
)

// allocate returns n bytes of zeroed memory from the Go heap.  Slices whose
// length cannot be represented are reported as errors; a genuine
// out-of-memory condition still terminates the process.
func allocate(n uint64) (buf []byte, err error) {
	if n == 0 || n > math.MaxInt {
		return nil, fmt.Errorf("bloom: cannot allocate %d bytes", n)
	}
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("bloom: allocate %d bytes: %v", n, r)
		}
	}()
	return make([]byte, n), nil
}

func release([]byte) error { return nil }
