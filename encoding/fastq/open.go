package fastq

import (
	"bufio"
	"context"
	"io"
	"io/ioutil"
	"strings"

	"github.com/golang/snappy"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

const writeBufferSize = 1 << 20

// Codec identifies the compression of a FASTQ file.
type Codec int

const (
	// Plain is uncompressed FASTQ.
	Plain Codec = iota
	// Gzip is gzip (.gz) compressed FASTQ.
	Gzip
	// Zstd is zstandard (.zst) compressed FASTQ.
	Zstd
	// Snappy is snappy framed (.sz) FASTQ.
	Snappy
	// LZ4 is lz4 framed (.lz4) FASTQ.
	LZ4
)

var codecSuffixes = []struct {
	suffix string
	codec  Codec
}{
	{".gz", Gzip},
	{".zst", Zstd},
	{".sz", Snappy},
	{".lz4", LZ4},
}

func (c Codec) String() string {
	switch c {
	case Plain:
		return "plain"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	}
	return "unknown"
}

// CodecForPath returns the codec implied by the file name suffix of path.
func CodecForPath(path string) Codec {
	for _, s := range codecSuffixes {
		if strings.HasSuffix(path, s.suffix) {
			return s.codec
		}
	}
	return Plain
}

type fileReader struct {
	io.Reader
	ctx     context.Context
	f       file.File
	closers []func() error
}

func (r *fileReader) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	if e := r.f.Close(r.ctx); e != nil && err == nil {
		err = e
	}
	return err
}

// Open opens the FASTQ file at path for reading.  Zstd, snappy and lz4 input
// is recognized by its suffix; any other compressed content (e.g. gzip) is
// detected from its header and decompressed transparently.  Any path scheme
// registered with grailbio/base/file is accepted.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	r := &fileReader{ctx: ctx, f: f}
	in := f.Reader(ctx)
	switch CodecForPath(path) {
	case Zstd:
		d, err := zstd.NewReader(in)
		if err != nil {
			f.Close(ctx) // nolint: errcheck
			return nil, errors.Wrapf(err, "open %s", path)
		}
		r.Reader = d
		r.closers = append(r.closers, func() error { d.Close(); return nil })
	case Snappy:
		r.Reader = snappy.NewReader(in)
	case LZ4:
		r.Reader = lz4.NewReader(in)
	default:
		rc, _ := compress.NewReader(in)
		r.Reader = rc
		r.closers = append(r.closers, rc.Close)
	}
	return r, nil
}

type fileWriter struct {
	ctx  context.Context
	path string
	f    file.File
	buf  *bufio.Writer
	// enc compresses into buf; nil for plain output.
	enc io.WriteCloser
}

func (w *fileWriter) Write(p []byte) (int, error) {
	if w.enc != nil {
		return w.enc.Write(p)
	}
	return w.buf.Write(p)
}

func (w *fileWriter) Close() error {
	var err error
	setErr := func(e error) {
		if e != nil && err == nil {
			err = e
		}
	}
	if w.enc != nil {
		setErr(w.enc.Close())
	}
	setErr(w.buf.Flush())
	setErr(w.f.Close(w.ctx))
	return errors.Wrapf(err, "close %s", w.path)
}

func newEncoder(c Codec, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, nil
}

// Create creates a FASTQ file at path.  The output is compressed according
// to the path suffix: ".gz" (gzip), ".zst" (zstd), ".sz" (snappy) or ".lz4".
// The caller must Close the returned writer.
func Create(ctx context.Context, path string) (io.WriteCloser, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	w := &fileWriter{
		ctx:  ctx,
		path: path,
		f:    f,
		buf:  bufio.NewWriterSize(f.Writer(ctx), writeBufferSize),
	}
	if w.enc, err = newEncoder(CodecForPath(path), w.buf); err != nil {
		f.Close(ctx) // nolint: errcheck
		return nil, errors.Wrapf(err, "create %s", path)
	}
	return w, nil
}

// ReadAll returns the decompressed contents of path.
func ReadAll(ctx context.Context, path string) ([]byte, error) {
	r, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadAll(r)
	if e := r.Close(); e != nil && err == nil {
		err = e
	}
	return data, err
}
