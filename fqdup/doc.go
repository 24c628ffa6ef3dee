/*
Package fqdup flags and optionally removes duplicate reads from single-end or
paired-end FASTQ input.

Reads are scanned in batches, checked against one shared dedup.Engine by a
pool of workers, and written back out in their original order.  What happens
to a flagged read is controlled by the policy:

  Count     every read is written; duplicates are only counted.
  Remove    duplicates are dropped from the output.
  Annotate  every read is written; flagged reads get DupSuffix appended to
            their ID line.

For paired-end input the pair is the unit of duplication: both mates are
hashed together and kept or dropped together.

Duplicate evaluation can be switched off entirely (Opts.DontEvalDuplication)
when neither removal nor annotation is requested; no filter memory is
allocated in that case.

When Opts.MetricsFile is set, a small TSV summary is written there.  Run also
returns the same numbers as a Metrics value, together with a Checksum of the
reads written, which ChecksumFile can reproduce from the output files.
*/
package fqdup
