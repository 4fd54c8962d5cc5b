package bgzfio

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func buildMultiBlockStream(t *testing.T, blockSize int, payloads ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriterWithBlockSize(&buf, -1, blockSize)
	for _, p := range payloads {
		if _, err := w.Write([]byte(p)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestParallelReaderMatchesSequentialOutput(t *testing.T) {
	data := buildMultiBlockStream(t, 1024, "alpha ", "bravo ", "charlie ", "delta ", "echo ")

	sequential, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	want, err := io.ReadAll(sequential)
	if err != nil {
		t.Fatalf("sequential read: %v", err)
	}

	for _, workers := range []int{1, 2, 4} {
		pr := NewParallelReader(bytes.NewReader(data), workers)
		got, err := io.ReadAll(pr)
		if err != nil {
			t.Fatalf("workers=%d: parallel read: %v", workers, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("workers=%d: got %q, want %q", workers, got, want)
		}
		pr.Close()
	}
}

func TestParallelReaderPoisonsOnError(t *testing.T) {
	data := buildMultiBlockStream(t, 1024, "one", "two")
	corrupt := append([]byte{}, data...)
	// Flip a byte inside the first block's compressed payload.
	corrupt[20] ^= 0xff

	pr := NewParallelReader(bytes.NewReader(corrupt), 2)
	defer pr.Close()

	_, err := io.ReadAll(pr)
	if err == nil {
		t.Fatal("expected an error reading a corrupted stream")
	}

	// The poisoned reader must keep returning an error, not hang or panic.
	if _, err2 := pr.Read(make([]byte, 1)); err2 == nil {
		t.Fatal("expected poisoned reader to keep returning an error")
	}
}

func TestParallelReaderEmptyStream(t *testing.T) {
	data := buildMultiBlockStream(t, 1024)
	pr := NewParallelReader(bytes.NewReader(data), 2)
	defer pr.Close()

	got, err := io.ReadAll(pr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d bytes, want 0", len(got))
	}
}

func TestReadRawFrameReportsEOF(t *testing.T) {
	_, err := readRawFrame(bytes.NewReader(nil))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("readRawFrame(empty) error = %v, want io.EOF", err)
	}
}
