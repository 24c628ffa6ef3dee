// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

const (
	firstPrimeCandidate = 10001
	// After a prime p is found the search resumes at p+primeStride.
	primeStride = 10001
)

// Primes returns count primes, roughly 10000 apart: the first prime >= 10001,
// then the first prime >= that prime + 10001, and so on.  The sequence is
// fixed; fingerprints, and therefore the filter's collision behavior, depend
// on it.
func Primes(count int) ([]uint64, error) {
	if count < 0 {
		return nil, errors.E(fmt.Sprintf("dedup: negative prime count %d", count))
	}
	primes := make([]uint64, 0, count)
	for n := uint64(firstPrimeCandidate); len(primes) < count; {
		if isPrime(n) {
			primes = append(primes, n)
			n += primeStride
		} else {
			n++
		}
	}
	return primes, nil
}

// isPrime tests n >= 2 by trial division.
func isPrime(n uint64) bool {
	for d := uint64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
