// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bloom

import (
	"fmt"
	"math/bits"
	"sync/atomic"
	"unsafe"
)

// wordBytes is the size of one atomic storage word.
const wordBytes = 8

// BitBuffer is a fixed-length array of bits that supports concurrent,
// lock-free test-and-set.  Bits are never cleared.
//
// Bit b is stored in word b>>6 at position b&63.  On little-endian hosts this
// is the same memory layout as addressing byte b>>3, bit b&7.
type BitBuffer struct {
	raw   []byte          // backing allocation, released by Close
	words []atomic.Uint64 // raw viewed as atomic words
	nbits uint64
}

// NewBitBuffer allocates a zeroed buffer of nbytes bytes.  nbytes must be a
// positive multiple of 8.
func NewBitBuffer(nbytes uint64) (*BitBuffer, error) {
	if nbytes == 0 || nbytes%wordBytes != 0 {
		return nil, fmt.Errorf("bloom: buffer length %d is not a positive multiple of %d", nbytes, wordBytes)
	}
	raw, err := allocate(nbytes)
	if err != nil {
		return nil, err
	}
	nwords := nbytes / wordBytes
	return &BitBuffer{
		raw:   raw,
		words: unsafe.Slice((*atomic.Uint64)(unsafe.Pointer(&raw[0])), nwords),
		nbits: nbytes * 8,
	}, nil
}

// Len returns the number of bits in the buffer.
func (b *BitBuffer) Len() uint64 {
	return b.nbits
}

// Bytes returns the size of the buffer in bytes.
func (b *BitBuffer) Bytes() uint64 {
	return b.nbits / 8
}

// TestAndSet sets bit and reports whether it was already set.  bit must be
// less than Len().
func (b *BitBuffer) TestAndSet(bit uint64) bool {
	mask := uint64(1) << (bit & 63)
	return b.words[bit>>6].Or(mask)&mask != 0
}

// Test reports whether bit is set.  bit must be less than Len().
func (b *BitBuffer) Test(bit uint64) bool {
	mask := uint64(1) << (bit & 63)
	return b.words[bit>>6].Load()&mask != 0
}

// OnesCount returns the number of set bits.  It reads every word, so it is
// meant for end-of-run statistics, not the hot path.
func (b *BitBuffer) OnesCount() uint64 {
	var n uint64
	for i := range b.words {
		n += uint64(bits.OnesCount64(b.words[i].Load()))
	}
	return n
}

// Close releases the buffer memory.  The buffer must not be used afterwards.
// Close may be called more than once.
func (b *BitBuffer) Close() error {
	if b.raw == nil {
		return nil
	}
	raw := b.raw
	b.raw, b.words = nil, nil
	return release(raw)
}
