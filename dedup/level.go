// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

const (
	// MinLevel and MaxLevel bound the accepted accuracy levels.
	MinLevel = 1
	MaxLevel = 6

	// MaxBuffers is the largest buffer count of any level.  It sizes the
	// on-stack fingerprint vector.
	MaxBuffers = 8

	// primesPerBuffer is the number of hash multipliers per buffer.
	primesPerBuffer = 512
)

// Level describes the filter geometry of one accuracy level.
type Level struct {
	// Accuracy is the level number, MinLevel..MaxLevel.
	Accuracy int
	// BufferBytes is the size of each filter buffer.
	BufferBytes uint64
	// BufferCount is the number of independent filter buffers.
	BufferCount int
}

// TotalBytes is the filter memory required by the level.
func (l Level) TotalBytes() uint64 {
	return l.BufferBytes * uint64(l.BufferCount)
}

func (l Level) String() string {
	return fmt.Sprintf("level %d (%d x %d bytes)", l.Accuracy, l.BufferCount, l.BufferBytes)
}

var levels = [MaxLevel]Level{
	{Accuracy: 1, BufferBytes: 512 << 20, BufferCount: 2},
	{Accuracy: 2, BufferBytes: 1 << 30, BufferCount: 2},
	{Accuracy: 3, BufferBytes: 1 << 30, BufferCount: 4},
	{Accuracy: 4, BufferBytes: 2 << 30, BufferCount: 4},
	{Accuracy: 5, BufferBytes: 4 << 30, BufferCount: 4},
	{Accuracy: 6, BufferBytes: 4 << 30, BufferCount: 8},
}

// LookupLevel returns the geometry of the given accuracy level.
func LookupLevel(accuracy int) (Level, error) {
	if accuracy < MinLevel || accuracy > MaxLevel {
		return Level{}, errors.E(fmt.Sprintf("dedup: accuracy level %d out of range [%d, %d]", accuracy, MinLevel, MaxLevel))
	}
	return levels[accuracy-1], nil
}

// Levels returns all accuracy levels, in increasing order.
func Levels() []Level {
	l := levels
	return l[:]
}
