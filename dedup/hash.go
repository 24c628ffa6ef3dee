// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Fingerprints holds one hash accumulator per filter buffer.  Only the first
// BufferCount entries are used.
type Fingerprints [MaxBuffers]uint64

// otherWeight is the weight of every byte other than uppercase A, C, G, T.
const otherWeight = 13

// baseWeight maps a raw sequence byte to its hash weight.
var baseWeight = func() (t [256]uint64) {
	for i := range t {
		t[i] = otherWeight
	}
	t['A'] = 7
	t['T'] = 222
	t['C'] = 74
	t['G'] = 31
	return
}()

// Hasher computes positional fingerprints of nucleotide sequences.  A Hasher
// is immutable after construction and safe for concurrent use.
type Hasher struct {
	primes []uint64
	nbuf   int
	mask   int // wraps position*nbuf+i into primes
}

// NewHasher creates a hasher producing bufferCount fingerprints per sequence.
// bufferCount must be a power of 2 no larger than MaxBuffers, so that the
// position mask covers the prime table exactly.
func NewHasher(bufferCount int) (*Hasher, error) {
	if bufferCount <= 0 || bufferCount > MaxBuffers || bufferCount&(bufferCount-1) != 0 {
		return nil, errors.E(fmt.Sprintf("dedup: buffer count %d is not a power of 2 in [1, %d]", bufferCount, MaxBuffers))
	}
	n := bufferCount * primesPerBuffer
	primes, err := Primes(n)
	if err != nil {
		return nil, err
	}
	return &Hasher{
		primes: primes,
		nbuf:   bufferCount,
		mask:   int(nextPowerOf2(uint64(n)) - 1),
	}, nil
}

// BufferCount returns the number of fingerprints the hasher fills.
func (h *Hasher) BufferCount() int {
	return h.nbuf
}

// Primes returns the multiplier table.  The caller must not modify it.
func (h *Hasher) Primes() []uint64 {
	return h.primes
}

// Hash adds the contribution of seq to fp, treating seq as starting at
// position offset.  To fingerprint a single read, pass a zeroed fp and offset
// 0.  To fingerprint a pair, hash read 1 with offset 0 and then read 2 into
// the same fp with offset len(read1).
//
// Arithmetic wraps modulo 2^64.
func (h *Hasher) Hash(seq string, fp *Fingerprints, offset int) {
	hashInto(h, seq, fp, offset)
}

// HashBytes is Hash for a byte slice.
func (h *Hasher) HashBytes(seq []byte, fp *Fingerprints, offset int) {
	hashInto(h, seq, fp, offset)
}

func hashInto[S ~string | ~[]byte](h *Hasher, seq S, fp *Fingerprints, offset int) {
	nbuf, mask, primes := h.nbuf, h.mask, h.primes
	for p := 0; p < len(seq); p++ {
		pos := p + offset
		w := baseWeight[seq[p]] + uint64(pos)
		row := pos * nbuf
		for i := 0; i < nbuf; i++ {
			fp[i] += primes[(row+i)&mask] * w
		}
	}
}
