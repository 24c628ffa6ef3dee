// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"fmt"
	"sync/atomic"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/fqdup/bloom"
	"github.com/grailbio/fqdup/encoding/fastq"
)

// Engine flags reads and read pairs that have very likely been seen before.
// It is safe for concurrent use; see the package documentation.
type Engine struct {
	level  Level
	hasher *Hasher
	filter *bloom.MultiFilter

	totalReads     atomic.Uint64
	duplicateReads atomic.Uint64
}

// New creates an engine with the filter geometry of the given accuracy level.
// The full filter memory is reserved up front; if that fails, New returns an
// error and the caller should retry with a lower level.
func New(accuracy int) (*Engine, error) {
	level, err := LookupLevel(accuracy)
	if err != nil {
		return nil, err
	}
	hasher, err := NewHasher(level.BufferCount)
	if err != nil {
		return nil, err
	}
	filter, err := bloom.NewMultiFilter(level.BufferBytes, level.BufferCount)
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf(
			"out of memory, failed to allocate %d bytes for duplication analysis; reduce the accuracy level (currently %d) and try again",
			level.TotalBytes(), accuracy))
	}
	log.Debug.Printf("dedup: allocated %v", level)
	return &Engine{
		level:  level,
		hasher: hasher,
		filter: filter,
	}, nil
}

// Level returns the engine's filter geometry.
func (e *Engine) Level() Level {
	return e.level
}

// Hasher returns the engine's fingerprint hasher.
func (e *Engine) Hasher() *Hasher {
	return e.hasher
}

// CheckRead inserts r and reports whether it was already present.
func (e *Engine) CheckRead(r *fastq.Read) bool {
	var fp Fingerprints
	e.hasher.Hash(r.Seq, &fp, 0)
	return e.apply(&fp)
}

// CheckSeq is CheckRead for a raw sequence.
func (e *Engine) CheckSeq(seq []byte) bool {
	var fp Fingerprints
	e.hasher.HashBytes(seq, &fp, 0)
	return e.apply(&fp)
}

// CheckPair inserts the pair (r1, r2) and reports whether it was already
// present.  The pair is keyed as the concatenation of r1 and r2, so
// CheckPair(a, b) and CheckPair(b, a) are distinct keys in general.
func (e *Engine) CheckPair(r1, r2 *fastq.Read) bool {
	var fp Fingerprints
	e.hasher.Hash(r1.Seq, &fp, 0)
	e.hasher.Hash(r2.Seq, &fp, len(r1.Seq))
	return e.apply(&fp)
}

func (e *Engine) apply(fp *Fingerprints) bool {
	dup := e.filter.TestAndSet(fp[:e.level.BufferCount])
	e.totalReads.Add(1)
	if dup {
		e.duplicateReads.Add(1)
	}
	return dup
}

// TotalReads returns the number of reads and pairs checked so far.
func (e *Engine) TotalReads() uint64 {
	return e.totalReads.Load()
}

// DuplicateReads returns the number of reads and pairs flagged so far.
func (e *Engine) DuplicateReads() uint64 {
	return e.duplicateReads.Load()
}

// DuplicationRate returns DuplicateReads/TotalReads, or 0 if nothing has been
// checked.  While other goroutines are still checking reads the two counters
// are read separately, so the result is only approximate.
func (e *Engine) DuplicationRate() float64 {
	total := e.totalReads.Load()
	if total == 0 {
		return 0.0
	}
	return float64(e.duplicateReads.Load()) / float64(total)
}

// FillRatio returns the fraction of filter bits that are set, averaged over
// all buffers.  It scans the whole filter.
func (e *Engine) FillRatio() float64 {
	var sum float64
	ratios := e.filter.FillRatios()
	for _, r := range ratios {
		sum += r
	}
	return sum / float64(len(ratios))
}

// EstimatedFalsePositiveRate estimates the probability that a new, distinct
// read is flagged, from the current fill of each buffer.  It scans the whole
// filter.
func (e *Engine) EstimatedFalsePositiveRate() float64 {
	return e.filter.EstimatedFalsePositiveRate()
}

// ExpectedFalsePositiveRate estimates the probability that a new, distinct
// read is flagged, given the number of reads checked so far.
func (e *Engine) ExpectedFalsePositiveRate() float64 {
	return e.filter.ExpectedFalsePositiveRate(e.totalReads.Load())
}

// Close releases the filter memory.  The engine must not be used afterwards.
func (e *Engine) Close() error {
	return e.filter.Close()
}
