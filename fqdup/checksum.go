package fqdup

import (
	"context"

	"blainsmith.com/go/seahash"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/fqdup/encoding/fastq"
)

// Checksum is an order-independent digest of a set of FASTQ reads.  Each
// field is hashed separately and the hashes are summed, so two streams that
// hold the same reads in any order, or split across any number of workers,
// have equal checksums.
type Checksum struct {
	Reads   int64
	SumID   uint64
	SumSeq  uint64
	SumQual uint64
}

// Add adds r to the checksum.
func (c *Checksum) Add(r *fastq.Read) {
	c.add(r, "")
}

// add adds r as it is written with suffix appended to its ID line.
func (c *Checksum) add(r *fastq.Read, suffix string) {
	c.Reads++
	if suffix == "" {
		c.SumID += seahash.Sum64(gunsafe.StringToBytes(r.ID))
	} else {
		c.SumID += seahash.Sum64([]byte(r.ID + suffix))
	}
	c.SumSeq += seahash.Sum64(gunsafe.StringToBytes(r.Seq))
	c.SumQual += seahash.Sum64(gunsafe.StringToBytes(r.Qual))
}

// Merge adds the reads summarized by o.
func (c *Checksum) Merge(o Checksum) {
	c.Reads += o.Reads
	c.SumID += o.SumID
	c.SumSeq += o.SumSeq
	c.SumQual += o.SumQual
}

// ChecksumFile computes the checksum of the FASTQ file at path.
func ChecksumFile(ctx context.Context, path string) (c Checksum, err error) {
	in, err := fastq.Open(ctx, path)
	if err != nil {
		return
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	s := fastq.NewScanner(in, fastq.ID|fastq.Seq|fastq.Qual)
	var r fastq.Read
	for s.Scan(&r) {
		c.Add(&r)
	}
	err = s.Err()
	return
}
