// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bloom

import (
	"fmt"
	"math"
)

// MultiFilter is a k-way Bloom filter where each of the k channels has its
// own BitBuffer.  It is safe for concurrent use.
type MultiFilter struct {
	bufs  []*BitBuffer
	nbits uint64 // bits per buffer
}

// NewMultiFilter allocates count buffers of bufferBytes bytes each.  On error,
// any buffers that were already allocated are released.
func NewMultiFilter(bufferBytes uint64, count int) (*MultiFilter, error) {
	if count <= 0 {
		return nil, fmt.Errorf("bloom: buffer count must be positive, got %d", count)
	}
	f := &MultiFilter{bufs: make([]*BitBuffer, 0, count)}
	for i := 0; i < count; i++ {
		b, err := NewBitBuffer(bufferBytes)
		if err != nil {
			f.Close() // nolint: errcheck
			return nil, err
		}
		f.bufs = append(f.bufs, b)
	}
	f.nbits = f.bufs[0].Len()
	return f, nil
}

// NumBuffers returns the number of channels.
func (f *MultiFilter) NumBuffers() int {
	return len(f.bufs)
}

// BufferBytes returns the size of each channel in bytes.
func (f *MultiFilter) BufferBytes() uint64 {
	return f.nbits / 8
}

// TestAndSet inserts the key described by keys, one value per buffer, and
// reports whether every buffer already had the corresponding bit set.  Bits
// are set in all buffers regardless of the result.  len(keys) must be at
// least NumBuffers().
func (f *MultiFilter) TestAndSet(keys []uint64) bool {
	keys = keys[:len(f.bufs)]
	seen := true
	for i, b := range f.bufs {
		if !b.TestAndSet(keys[i] % f.nbits) {
			seen = false
		}
	}
	return seen
}

// Test reports whether the key would be reported as present, without
// inserting it.
func (f *MultiFilter) Test(keys []uint64) bool {
	keys = keys[:len(f.bufs)]
	for i, b := range f.bufs {
		if !b.Test(keys[i] % f.nbits) {
			return false
		}
	}
	return true
}

// FillRatios returns, per buffer, the fraction of bits that are set.
func (f *MultiFilter) FillRatios() []float64 {
	r := make([]float64, len(f.bufs))
	for i, b := range f.bufs {
		r[i] = float64(b.OnesCount()) / float64(b.Len())
	}
	return r
}

// EstimatedFalsePositiveRate estimates the probability that a key never
// inserted before is reported as present, given the current fill of each
// buffer.
func (f *MultiFilter) EstimatedFalsePositiveRate() float64 {
	p := 1.0
	for _, r := range f.FillRatios() {
		p *= r
	}
	return p
}

// ExpectedFalsePositiveRate is the textbook estimate (1-e^(-n/m))^k for n
// keys inserted into k buffers of m bits each.
func (f *MultiFilter) ExpectedFalsePositiveRate(n uint64) float64 {
	if n == 0 {
		return 0
	}
	m := float64(f.nbits)
	return math.Pow(1-math.Exp(-float64(n)/m), float64(len(f.bufs)))
}

// Close releases all buffers.
func (f *MultiFilter) Close() error {
	var err error
	for _, b := range f.bufs {
		if e := b.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
