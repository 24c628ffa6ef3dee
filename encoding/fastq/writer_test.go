package fastq

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteWithSuffix(t *testing.T) {
	var b bytes.Buffer
	w := NewWriter(&b)
	r := Read{ID: "@r1 1:N:0:ATCACG", Seq: "ACGT", Unk: "+", Qual: "IIII"}
	if err := w.WriteWithSuffix(&r, " DUP"); err != nil {
		t.Fatal(err)
	}
	// Reads scanned without the Unk field get a bare "+".
	r.Unk = ""
	if err := w.Write(&r); err != nil {
		t.Fatal(err)
	}
	want := "@r1 1:N:0:ATCACG DUP\nACGT\n+\nIIII\n" +
		"@r1 1:N:0:ATCACG\nACGT\n+\nIIII\n"
	if got := b.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type failWriter struct{ n int }

var errFail = errors.New("fail")

func (f *failWriter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errFail
	}
	f.n--
	return len(p), nil
}

func TestWriterStickyError(t *testing.T) {
	w := NewWriter(&failWriter{n: 3})
	r := Read{ID: "@r", Seq: "A", Unk: "+", Qual: "I"}
	if got, want := w.Write(&r), errFail; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := w.Write(&r), errFail; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := w.Err(), errFail; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
