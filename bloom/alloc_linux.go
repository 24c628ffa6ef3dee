// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

//go:build linux

package bloom

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"
)

// allocate returns n bytes of zeroed, page-aligned memory outside the Go
// heap.
func allocate(n uint64) ([]byte, error) {
	if n == 0 || n > math.MaxInt {
		return nil, fmt.Errorf("bloom: cannot allocate %d bytes", n)
	}
	buf, err := unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_NORESERVE)
	if err != nil {
		return nil, fmt.Errorf("bloom: mmap %d bytes: %w", n, err)
	}
	return buf, nil
}

func release(buf []byte) error {
	return unix.Munmap(buf)
}
