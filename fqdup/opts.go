package fqdup

import (
	"fmt"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/fqdup/dedup"
)

// Policy selects what happens to reads flagged as duplicates.
type Policy int

const (
	// Count writes every read and only counts duplicates.
	Count Policy = iota
	// Remove drops duplicates from the output.
	Remove
	// Annotate writes every read, tagging duplicates.
	Annotate
)

func (p Policy) String() string {
	switch p {
	case Count:
		return "count"
	case Remove:
		return "remove"
	case Annotate:
		return "annotate"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// DupSuffix is appended to the ID line of duplicates under the Annotate
// policy.
const DupSuffix = " DUP"

const (
	// DefaultDedupAccuracy is the accuracy level used when duplicates are
	// removed or annotated and no level is given.
	DefaultDedupAccuracy = 3
	// DefaultEvalAccuracy is the accuracy level used when duplicates are
	// only counted and no level is given.
	DefaultEvalAccuracy = 1
	// DefaultBatchSize is the number of reads, or pairs, per work unit.
	DefaultBatchSize = 1024
)

// Opts for the duplicate pipeline.
type Opts struct {
	// Commandline options.
	R1Path              string
	R2Path              string
	R1OutPath           string
	R2OutPath           string
	MetricsFile         string
	Dedup               bool
	Annotate            bool
	DupCalcAccuracy     int
	DontEvalDuplication bool
	Parallelism         int
	QueueLength         int
	BatchSize           int
}

// Paired reports whether the input is paired-end.
func (o *Opts) Paired() bool {
	return o.R2Path != ""
}

// Policy returns the duplicate policy implied by the options.
func (o *Opts) Policy() Policy {
	switch {
	case o.Dedup:
		return Remove
	case o.Annotate:
		return Annotate
	}
	return Count
}

// Evaluate reports whether a duplicate filter is needed at all.
func (o *Opts) Evaluate() bool {
	return o.Policy() != Count || !o.DontEvalDuplication
}

// Accuracy returns the effective accuracy level.
func (o *Opts) Accuracy() int {
	if o.DupCalcAccuracy != 0 {
		return o.DupCalcAccuracy
	}
	if o.Policy() == Count {
		return DefaultEvalAccuracy
	}
	return DefaultDedupAccuracy
}

// Validate checks the options for consistency.
func (o *Opts) Validate() error {
	switch {
	case o.R1Path == "":
		return errors.E("fqdup: an R1 input path is required")
	case o.R2OutPath != "" && !o.Paired():
		return errors.E("fqdup: an R2 output path requires R2 input")
	case o.Paired() && (o.R1OutPath == "") != (o.R2OutPath == ""):
		return errors.E("fqdup: paired input needs both R1 and R2 output paths, or neither")
	case o.Dedup && o.Annotate:
		return errors.E("fqdup: dedup and annotate are mutually exclusive")
	case o.DontEvalDuplication && o.Policy() != Count:
		return errors.E(fmt.Sprintf("fqdup: duplicate evaluation cannot be disabled with policy %v", o.Policy()))
	case o.DupCalcAccuracy != 0 && (o.DupCalcAccuracy < dedup.MinLevel || o.DupCalcAccuracy > dedup.MaxLevel):
		return errors.E(fmt.Sprintf("fqdup: accuracy level %d out of range [%d, %d]", o.DupCalcAccuracy, dedup.MinLevel, dedup.MaxLevel))
	case o.Parallelism < 0 || o.QueueLength < 0 || o.BatchSize < 0:
		return errors.E("fqdup: parallelism, queue length and batch size must not be negative")
	case o.QueueLength != 0 && o.QueueLength < o.parallelism():
		return errors.E(fmt.Sprintf("fqdup: queue length %d is smaller than parallelism %d", o.QueueLength, o.parallelism()))
	}
	return nil
}

func (o *Opts) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.NumCPU()
}

// withDefaults returns a copy of o with zero-valued tuning knobs filled in.
func (o Opts) withDefaults() Opts {
	o.Parallelism = o.parallelism()
	if o.QueueLength == 0 {
		o.QueueLength = o.Parallelism * 5
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}
