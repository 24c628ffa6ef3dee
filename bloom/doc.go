// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bloom provides fixed-size, lock-free bit buffers and a filter that
// spreads each key over several independent buffers.
//
// A BitBuffer is a zero-initialized bit array whose bits can only be set,
// never cleared.  Setting is done with a single atomic OR on the word that
// holds the bit, so any number of goroutines may call TestAndSet on the same
// buffer concurrently; every caller learns whether its bit was set before its
// own operation, and no update is ever lost.
//
// A MultiFilter owns one BitBuffer per hash channel.  Unlike a classic Bloom
// filter, where k hash functions share a single array, each channel has its
// own backing memory.  A key is reported as present only when the bits of all
// channels were already set.
//
// Buffers are sized for whole-run duplicate detection (hundreds of MiB to
// several GiB each).  On Linux the memory comes from an anonymous
// MAP_NORESERVE mapping, so pages are only committed when first written.
package bloom
