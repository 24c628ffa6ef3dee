// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
Package dedup detects duplicate FASTQ reads and read pairs in constant memory.

An Engine never stores sequence data.  Each read is reduced to a small vector
of 64-bit fingerprints, one per filter buffer, by a positional hash over the
raw bases:

  fp[i] = sum over positions p of prime[(p*nbuf + i) & mask] * (weight(base[p]) + p)

where weight is 7, 222, 74 and 31 for the uppercase bases A, T, C and G, and
13 for every other byte (N, lowercase bases, IUPAC codes, garbage).  The
multipliers are primes spaced roughly 10000 apart, generated deterministically
at construction.  Paired reads are hashed into the same accumulators, with the
positions of read 2 continuing after the end of read 1, so (r1, r2) and
(r2, r1) are generally different keys.

The fingerprint vector is inserted into a bloom.MultiFilter.  A read is
reported as a duplicate only if every buffer already had its bit set.  The
filter never forgets, so an exact repeat of a previously seen read is always
reported.  Distinct reads are occasionally reported as duplicates too; the
rate is controlled by the accuracy level:

  level  buffer size  buffers  total
  1      512 MiB      2        1 GiB
  2      1 GiB        2        2 GiB
  3      1 GiB        4        4 GiB
  4      2 GiB        4        8 GiB
  5      4 GiB        4        16 GiB
  6      4 GiB        8        32 GiB

If the memory for a level cannot be obtained, New fails rather than silently
using smaller buffers; pick a lower level instead.

An Engine is safe for concurrent use.  Filter updates are lock-free and the
read counters are updated atomically, so one Engine can be shared by all
workers of a pipeline.  When two goroutines insert the same read at the same
instant, both may see it as new.
*/
package dedup
