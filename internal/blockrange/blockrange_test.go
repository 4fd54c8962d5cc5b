package blockrange

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	"github.com/cschin/go-bgzip/internal/bgzfio"
)

// buildBlocks writes each of lines as its own BGZF block (by flushing after
// every write) and returns the stream plus the virtual offset just before
// and just after each line.
func buildBlocks(t *testing.T, lines []string) ([]byte, []bgzfio.Address) {
	t.Helper()
	var buf bytes.Buffer
	w := bgzfio.NewWriterWithBlockSize(&buf, -1, bgzfio.DefaultCompressBlockUnit)

	offsets := []bgzfio.Address{w.VOffset()}
	for _, line := range lines {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
		offsets = append(offsets, w.VOffset())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes(), offsets
}

func rangeReaderFor(data []byte) RangeReader {
	return func(start, length int64) (io.ReadCloser, error) {
		end := start + length
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		return ioutil.NopCloser(bytes.NewReader(data[start:end])), nil
	}
}

func TestExtractSingleBlock(t *testing.T) {
	lines := []string{"first\n", "second\n", "third\n"}
	data, offsets := buildBlocks(t, lines)

	chunk := bgzfio.Chunk{Start: offsets[0], End: offsets[1]}
	rc, err := Extract(rangeReaderFor(data), chunk)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer rc.Close()

	r, err := bgzfio.NewReader(rc)
	if err != nil {
		t.Fatalf("NewReader on extracted block: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading extracted block: %v", err)
	}
	if string(got) != lines[0] {
		t.Errorf("Extract() decoded to %q, want %q", got, lines[0])
	}
}

func TestExtractSpanningMultipleBlocks(t *testing.T) {
	lines := []string{"first\n", "second\n", "third\n"}
	data, offsets := buildBlocks(t, lines)

	chunk := bgzfio.Chunk{Start: offsets[0], End: offsets[2]}
	rc, err := Extract(rangeReaderFor(data), chunk)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	defer rc.Close()

	r, err := bgzfio.NewReader(rc)
	if err != nil {
		t.Fatalf("NewReader on extracted range: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading extracted range: %v", err)
	}
	if want := lines[0] + lines[1]; string(got) != want {
		t.Errorf("Extract() decoded to %q, want %q", got, want)
	}
}
