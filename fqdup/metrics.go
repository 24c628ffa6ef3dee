package fqdup

import (
	"context"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// Metrics summarizes one pipeline run.
type Metrics struct {
	Paired bool
	// ReadsExamined counts individual reads; a pair counts as two.
	ReadsExamined int64
	// PairsExamined is zero for single-end input.
	PairsExamined int64
	BasesExamined int64
	// Duplicates counts flagged reads for single-end input, and flagged pairs
	// for paired-end input.
	Duplicates   int64
	ReadsWritten int64
	// AccuracyLevel is zero when duplicates were not evaluated.
	AccuracyLevel int
	FilterBytes   uint64
	// FillRatio is the mean fraction of set filter bits at the end of the
	// run.  It is only computed when a metrics file is written.
	FillRatio float64
	// EstimatedFPRate is the false-positive probability implied by the
	// final filter fill; ExpectedFPRate is the textbook value for the number
	// of reads checked.  Both are only computed when a metrics file is
	// written.
	EstimatedFPRate float64
	ExpectedFPRate  float64
	// Output digests every read written, both mates included.  It is empty
	// when no output path is given.
	Output Checksum
}

// Units returns the number of duplicate candidates: pairs for paired-end
// input, reads otherwise.
func (m *Metrics) Units() int64 {
	if m.Paired {
		return m.PairsExamined
	}
	return m.ReadsExamined
}

// DuplicationRate returns Duplicates/Units, or 0 when nothing was examined.
func (m *Metrics) DuplicationRate() float64 {
	if n := m.Units(); n > 0 {
		return float64(m.Duplicates) / float64(n)
	}
	return 0
}

func (m *Metrics) add(o *Metrics) {
	m.ReadsExamined += o.ReadsExamined
	m.PairsExamined += o.PairsExamined
	m.BasesExamined += o.BasesExamined
	m.Duplicates += o.Duplicates
	m.ReadsWritten += o.ReadsWritten
	m.Output.Merge(o.Output)
}

const metricsHeader = "READS_EXAMINED\tPAIRS_EXAMINED\tBASES_EXAMINED\tDUPLICATES\t" +
	"READS_WRITTEN\tPERCENT_DUPLICATION\tACCURACY_LEVEL\tFILTER_BYTES\tFILTER_FILL_RATIO\t" +
	"ESTIMATED_FALSE_POSITIVE_RATE\tEXPECTED_FALSE_POSITIVE_RATE"

func writeMetrics(ctx context.Context, path string, m *Metrics) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "couldn't create metrics file:", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "couldn't close metrics file:", path)
		}
	}()
	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("# bio-fqdup")
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	w.WriteString(metricsHeader)
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	for _, v := range []int64{m.ReadsExamined, m.PairsExamined, m.BasesExamined, m.Duplicates, m.ReadsWritten} {
		w.WriteString(strconv.FormatInt(v, 10))
	}
	w.WriteString(strconv.FormatFloat(m.DuplicationRate()*100, 'f', 6, 64))
	w.WriteUint32(uint32(m.AccuracyLevel))
	w.WriteString(strconv.FormatUint(m.FilterBytes, 10))
	for _, v := range []float64{m.FillRatio, m.EstimatedFPRate, m.ExpectedFPRate} {
		w.WriteString(strconv.FormatFloat(v, 'g', 6, 64))
	}
	if err = w.EndLine(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	if err = w.Flush(); err != nil {
		return errors.E(err, "error writing to metrics file:", path)
	}
	return nil
}
