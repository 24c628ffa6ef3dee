package fqdup

import (
	"bytes"
	"context"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/fqdup/dedup"
	"github.com/grailbio/fqdup/encoding/fastq"
	"golang.org/x/sync/errgroup"
)

// Run reads opts.R1Path (and opts.R2Path for paired input), flags duplicates,
// and writes the surviving reads to the output paths, if any.
func Run(ctx context.Context, opts Opts) (m Metrics, err error) {
	if err = opts.Validate(); err != nil {
		return
	}
	opts = opts.withDefaults()

	var engine *dedup.Engine
	if opts.Evaluate() {
		if engine, err = dedup.New(opts.Accuracy()); err != nil {
			return
		}
		defer func() {
			if e := engine.Close(); e != nil && err == nil {
				err = e
			}
		}()
	}

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if e := closers[i].Close(); e != nil && err == nil {
				err = e
			}
		}
	}()
	open := func(path string) (io.Reader, error) {
		r, e := fastq.Open(ctx, path)
		if e != nil {
			return nil, e
		}
		closers = append(closers, r)
		return r, nil
	}
	create := func(path string) (io.Writer, error) {
		if path == "" {
			return nil, nil
		}
		w, e := fastq.Create(ctx, path)
		if e != nil {
			return nil, e
		}
		closers = append(closers, w)
		return w, nil
	}

	var in1, in2 io.Reader
	var out1, out2 io.Writer
	if in1, err = open(opts.R1Path); err != nil {
		return
	}
	if opts.Paired() {
		if in2, err = open(opts.R2Path); err != nil {
			return
		}
	}
	if out1, err = create(opts.R1OutPath); err != nil {
		return
	}
	if out2, err = create(opts.R2OutPath); err != nil {
		return
	}

	log.Debug.Printf("fqdup: policy %v, paired %v, parallelism %d", opts.Policy(), opts.Paired(), opts.Parallelism)
	p := pipeline{opts: opts, engine: engine}
	if m, err = p.run(ctx, in1, in2, out1, out2); err != nil {
		return
	}
	if engine != nil {
		m.AccuracyLevel = engine.Level().Accuracy
		m.FilterBytes = engine.Level().TotalBytes()
	}
	log.Debug.Printf("fqdup: output checksum %+v", m.Output)
	logSummary(&m, engine != nil)
	if opts.MetricsFile != "" {
		if engine != nil {
			m.FillRatio = engine.FillRatio()
			m.EstimatedFPRate = engine.EstimatedFalsePositiveRate()
			m.ExpectedFPRate = engine.ExpectedFalsePositiveRate()
		}
		err = writeMetrics(ctx, opts.MetricsFile, &m)
	}
	return
}

func logSummary(m *Metrics, evaluated bool) {
	log.Printf("reads examined: %d, reads written: %d", m.ReadsExamined, m.ReadsWritten)
	if !evaluated {
		return
	}
	if m.Paired {
		log.Printf("Duplication rate: %.4f%%", m.DuplicationRate()*100)
	} else {
		log.Printf("Duplication rate (may be overestimated since this is SE data): %.4f%%", m.DuplicationRate()*100)
	}
}

// batch is a unit of work: consecutive reads (and their mates) starting at
// input position idx*BatchSize.
type batch struct {
	idx    int
	r1, r2 []fastq.Read
}

// result is the rendered output of one batch.
type result struct {
	out1, out2 bytes.Buffer
}

type pipeline struct {
	opts   Opts
	engine *dedup.Engine // nil when duplicates are not evaluated
}

// run drives the reader, the workers, and the writer.  in2 and out2 are nil
// for single-end input; out1 is nil when no FASTQ output is requested.  opts
// must have its defaults filled in.
func (p *pipeline) run(ctx context.Context, in1, in2 io.Reader, out1, out2 io.Writer) (Metrics, error) {
	var (
		g, gctx = errgroup.WithContext(ctx)
		batches = make(chan *batch, p.opts.Parallelism)
		metrics = make([]Metrics, p.opts.Parallelism)
		queue   *syncqueue.OrderedQueue
		writing = out1 != nil
	)
	if writing {
		queue = syncqueue.NewOrderedQueue(p.opts.QueueLength)
	}

	g.Go(func() error {
		defer close(batches)
		return p.read(gctx, in1, in2, writing, batches)
	})
	g.Go(func() error {
		err := traverse.Each(p.opts.Parallelism, func(worker int) error {
			for b := range batches {
				res := p.process(b, writing, &metrics[worker])
				if queue == nil {
					continue
				}
				if err := queue.Insert(b.idx, res); err != nil {
					return err
				}
			}
			return nil
		})
		if queue != nil {
			queue.Close(err) // nolint: errcheck
		}
		return err
	})
	if writing {
		g.Go(func() error {
			return p.write(queue, out1, out2)
		})
	}
	if err := g.Wait(); err != nil {
		return Metrics{}, err
	}

	total := Metrics{Paired: in2 != nil}
	for i := range metrics {
		total.add(&metrics[i])
	}
	return total, nil
}

// read scans the input into batches and sends them, in order, to out.
func (p *pipeline) read(ctx context.Context, in1, in2 io.Reader, writing bool, out chan<- *batch) error {
	fields := fastq.Seq
	if writing {
		fields = fastq.All
	}
	var (
		size  = p.opts.BatchSize
		scan  func(b *batch) bool
		check func() error
	)
	if in2 == nil {
		s := fastq.NewScanner(in1, fields)
		scan = func(b *batch) bool {
			b.r1 = append(b.r1, fastq.Read{})
			if !s.Scan(&b.r1[len(b.r1)-1]) {
				b.r1 = b.r1[:len(b.r1)-1]
				return false
			}
			return true
		}
		check = s.Err
	} else {
		s := fastq.NewPairScanner(in1, in2, fields)
		scan = func(b *batch) bool {
			b.r1 = append(b.r1, fastq.Read{})
			b.r2 = append(b.r2, fastq.Read{})
			if !s.Scan(&b.r1[len(b.r1)-1], &b.r2[len(b.r2)-1]) {
				b.r1 = b.r1[:len(b.r1)-1]
				b.r2 = b.r2[:len(b.r2)-1]
				return false
			}
			return true
		}
		check = s.Err
	}

	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := &batch{idx: idx, r1: make([]fastq.Read, 0, size)}
		if in2 != nil {
			b.r2 = make([]fastq.Read, 0, size)
		}
		more := true
		for more && len(b.r1) < size {
			more = scan(b)
		}
		if len(b.r1) > 0 {
			select {
			case out <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if !more {
			break
		}
	}
	if err := check(); err != nil {
		return errors.E(err, "error reading FASTQ input")
	}
	return nil
}

// process checks every read of b, accumulates counts into m, and renders the
// surviving reads when writing.
func (p *pipeline) process(b *batch, writing bool, m *Metrics) *result {
	var (
		res    = &result{}
		w1     = fastq.NewWriter(&res.out1)
		w2     = fastq.NewWriter(&res.out2)
		policy = p.opts.Policy()
		paired = b.r2 != nil
	)
	for i := range b.r1 {
		r1 := &b.r1[i]
		var r2 *fastq.Read
		m.ReadsExamined++
		m.BasesExamined += int64(r1.Len())
		if paired {
			r2 = &b.r2[i]
			m.ReadsExamined++
			m.PairsExamined++
			m.BasesExamined += int64(r2.Len())
		}

		dup := false
		if p.engine != nil {
			if paired {
				dup = p.engine.CheckPair(r1, r2)
			} else {
				dup = p.engine.CheckRead(r1)
			}
		}
		if dup {
			m.Duplicates++
			if policy == Remove {
				continue
			}
		}

		var suffix string
		if dup && policy == Annotate {
			suffix = DupSuffix
		}
		m.ReadsWritten++
		if writing {
			w1.WriteWithSuffix(r1, suffix) // nolint: errcheck
			m.Output.add(r1, suffix)
		}
		if paired {
			m.ReadsWritten++
			if writing {
				w2.WriteWithSuffix(r2, suffix) // nolint: errcheck
				m.Output.add(r2, suffix)
			}
		}
	}
	return res
}

// write copies batch results to the outputs in input order.
func (p *pipeline) write(queue *syncqueue.OrderedQueue, out1, out2 io.Writer) error {
	for {
		entry, ok, err := queue.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		res := entry.(*result)
		if _, err = res.out1.WriteTo(out1); err == nil && out2 != nil {
			_, err = res.out2.WriteTo(out2)
		}
		if err != nil {
			err = errors.E(err, "error writing FASTQ output")
			queue.Close(err) // nolint: errcheck
			return err
		}
	}
}
