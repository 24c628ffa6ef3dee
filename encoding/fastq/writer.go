package fastq

import "io"

var newline = []byte{'\n'}

// Writer is a FASTQ file writer.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the read r in FASTQ format.
// An error is returned if the write failed.
func (w *Writer) Write(r *Read) error {
	return w.WriteWithSuffix(r, "")
}

// WriteWithSuffix writes r with suffix appended to its ID line.
func (w *Writer) WriteWithSuffix(r *Read, suffix string) error {
	if suffix == "" {
		w.writeln(r.ID)
	} else {
		w.write(r.ID)
		w.writeln(suffix)
	}
	w.writeln(r.Seq)
	w.writeln(unkLine(r.Unk))
	w.writeln(r.Qual)
	return w.err
}

// unkLine returns line 3, defaulting to "+" for reads scanned without Unk.
func unkLine(unk string) string {
	if unk == "" {
		return "+"
	}
	return unk
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *Writer) writeln(line string) {
	w.write(line)
	if w.err == nil {
		_, w.err = w.w.Write(newline)
	}
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}
