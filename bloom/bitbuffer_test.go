// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bloom

import (
	"errors"
	"runtime"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffer(t testing.TB, nbytes uint64) *BitBuffer {
	b, err := NewBitBuffer(nbytes)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, b.Close()) })
	return b
}

func TestBitBufferTestAndSet(t *testing.T) {
	b := newBuffer(t, 64)
	assert.Equal(t, uint64(512), b.Len())
	assert.Equal(t, uint64(64), b.Bytes())

	for _, bit := range []uint64{0, 1, 7, 8, 63, 64, 65, 511} {
		assert.False(t, b.Test(bit), "bit %d", bit)
		assert.False(t, b.TestAndSet(bit), "bit %d", bit)
		assert.True(t, b.Test(bit), "bit %d", bit)
		assert.True(t, b.TestAndSet(bit), "bit %d", bit)
	}
	assert.Equal(t, uint64(8), b.OnesCount())
	// Neighbors of set bits are untouched.
	for _, bit := range []uint64{2, 6, 9, 62, 66, 510} {
		assert.False(t, b.Test(bit), "bit %d", bit)
	}
}

func TestBitBufferByteLayout(t *testing.T) {
	if !littleEndian() {
		t.Skip("byte layout check assumes a little-endian host")
	}
	b := newBuffer(t, 16)
	for _, bit := range []uint64{3, 13, 77, 127} {
		b.TestAndSet(bit)
		assert.NotZero(t, b.raw[bit>>3]&(1<<(bit&7)), "bit %d", bit)
	}
}

func TestBitBufferBadLength(t *testing.T) {
	for _, n := range []uint64{0, 1, 7, 12} {
		_, err := NewBitBuffer(n)
		assert.Error(t, err, "length %d", n)
	}
}

func TestBitBufferAllocationFailure(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("relies on mmap address space limits")
	}
	_, err := NewBitBuffer(1 << 62)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bloom")
	assert.True(t, errors.Is(err, syscall.ENOMEM), "got %v", err)
}

func TestBitBufferCloseTwice(t *testing.T) {
	b, err := NewBitBuffer(8)
	require.NoError(t, err)
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}

// Every goroutine sets every bit.  Exactly one caller may observe each bit as
// newly set, and no update may be lost.
func TestBitBufferConcurrent(t *testing.T) {
	const (
		nbits      = 1 << 14
		goroutines = 8
	)
	b := newBuffer(t, nbits/8)
	fresh := make([][]bool, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		fresh[g] = make([]bool, nbits)
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := uint64(0); i < nbits; i++ {
				// Interleave start points so goroutines collide on words.
				bit := (i + uint64(g)*977) % nbits
				fresh[g][bit] = !b.TestAndSet(bit)
			}
		}(g)
	}
	wg.Wait()
	for bit := 0; bit < nbits; bit++ {
		n := 0
		for g := 0; g < goroutines; g++ {
			if fresh[g][bit] {
				n++
			}
		}
		require.Equal(t, 1, n, "bit %d", bit)
	}
	assert.Equal(t, uint64(nbits), b.OnesCount())
}

func BenchmarkBitBufferTestAndSet(b *testing.B) {
	buf := newBuffer(b, 1<<20)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		bit := uint64(0)
		for pb.Next() {
			buf.TestAndSet(bit % buf.Len())
			bit += 0x9E3779B97F4A7C15
		}
	})
}
