// Copyright 2026 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

/*
  bio-fqdup flags, counts, and removes duplicate reads in FASTQ files without
  storing the reads.  For more information, see
  github.com/grailbio/fqdup/dedup/doc.go
*/

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strconv"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/fqdup/dedup"
	"github.com/grailbio/fqdup/fqdup"
	"v.io/x/lib/cmdline"
)

func newCmdDedup() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "dedup",
		Short: "Flag or remove duplicate reads in single-end or paired-end FASTQ",
		Long: `
Dedup scans the FASTQ input once and checks every read, or read pair, against a
probabilistic duplicate filter. Flagged reads are counted, and optionally
removed (-dedup) or tagged with " DUP" on their ID line (-annotate).

Input may be gzip-compressed. Outputs are compressed by suffix: .gz, .zst, .sz (snappy) or .lz4.

The filter needs 1 GiB of memory at -dup-calc-accuracy=1 and up to 32 GiB at
level 6; run "bio-fqdup levels" for the full table.
`,
	}
	var opts fqdup.Opts
	cmd.Flags.StringVar(&opts.R1Path, "in1", "", "R1 (or single-end) input FASTQ")
	cmd.Flags.StringVar(&opts.R2Path, "in2", "", "R2 input FASTQ, for paired-end input")
	cmd.Flags.StringVar(&opts.R1OutPath, "out1", "", "R1 (or single-end) output FASTQ. If empty, no reads are written")
	cmd.Flags.StringVar(&opts.R2OutPath, "out2", "", "R2 output FASTQ")
	cmd.Flags.StringVar(&opts.MetricsFile, "metrics", "", "Output metrics file")
	cmd.Flags.BoolVar(&opts.Dedup, "dedup", false, "remove duplicates instead of only counting them")
	cmd.Flags.BoolVar(&opts.Annotate, "annotate", false, "tag duplicates on their ID line instead of removing them")
	cmd.Flags.IntVar(&opts.DupCalcAccuracy, "dup-calc-accuracy", 0,
		fmt.Sprintf("accuracy level (%d~%d) of the duplicate filter. Higher levels use more memory. Defaults to %d with -dedup or -annotate, else %d",
			dedup.MinLevel, dedup.MaxLevel, fqdup.DefaultDedupAccuracy, fqdup.DefaultEvalAccuracy))
	cmd.Flags.BoolVar(&opts.DontEvalDuplication, "dont-eval-duplication", false, "don't evaluate duplication rate; saves time and memory")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", runtime.NumCPU(), "Number of worker goroutines")
	cmd.Flags.IntVar(&opts.QueueLength, "queue-length", 0, "Number of finished batches to buffer while waiting for output. Defaults to 5*parallelism")
	cmd.Flags.IntVar(&opts.BatchSize, "batch-size", fqdup.DefaultBatchSize, "Number of reads, or pairs, per batch")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("dedup takes no arguments, but got %v", argv)
		}
		if err := opts.Validate(); err != nil {
			return env.UsageErrorf("%v", err)
		}
		ctx := vcontext.Background()
		if _, err := fqdup.Run(ctx, opts); err != nil {
			log.Fatalf("%v", err)
		}
		log.Debug.Printf("exiting")
		return nil
	})
	return cmd
}

func newCmdLevels() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "levels",
		Short: "Print the memory used by each duplicate filter accuracy level",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("levels takes no arguments, but got %v", argv)
		}
		w := tsv.NewWriter(env.Stdout)
		w.WriteString("LEVEL\tBUFFER_BYTES\tBUFFER_COUNT\tTOTAL_BYTES")
		if err := w.EndLine(); err != nil {
			return err
		}
		for _, l := range dedup.Levels() {
			w.WriteUint32(uint32(l.Accuracy))
			w.WriteString(strconv.FormatUint(l.BufferBytes, 10))
			w.WriteUint32(uint32(l.BufferCount))
			w.WriteString(strconv.FormatUint(l.TotalBytes(), 10))
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return w.Flush()
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "checksum",
		Short: `Compute an order-independent checksum of FASTQ files.
The checksum is a JSON string summarizing the IDs, sequences and qualities of the reads`,
		ArgsName: "fastq...",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return env.UsageErrorf("checksum needs at least one FASTQ path")
		}
		ctx := vcontext.Background()
		for _, path := range argv {
			csum, err := fqdup.ChecksumFile(ctx, path)
			if err != nil {
				return err
			}
			js, err := json.MarshalIndent(struct {
				Path string
				fqdup.Checksum
			}{path, csum}, "", "  ")
			if err != nil {
				log.Panic(err)
			}
			fmt.Fprintln(env.Stdout, string(js))
		}
		return nil
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-fqdup",
			Short:    "Probabilistic duplicate detection for FASTQ reads",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdDedup(),
				newCmdLevels(),
				newCmdChecksum(),
			},
		})
}
