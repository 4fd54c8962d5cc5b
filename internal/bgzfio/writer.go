package bgzfio

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DefaultCompressBlockUnit is the default uncompressed byte threshold at
// which Writer emits a block; it is 256 bytes below MaximumBlockSize
// (65536), matching the value used by both htslib
// and the reference bgzip-rs implementation this module's Tabix support is
// modeled on.
const DefaultCompressBlockUnit = 65280

// Writer buffers uncompressed bytes and emits them as BGZF blocks of at
// most compressBlockUnit uncompressed bytes each. Close flushes any
// buffered bytes and appends the canonical EOF marker exactly once.
type Writer struct {
	w                io.Writer
	level            int
	compressBlockUnit int
	buffer           []byte
	coffset          uint64
	closed           bool
}

// NewWriter returns a Writer using DefaultCompressBlockUnit and the given
// DEFLATE compression level (flate.DefaultCompression if level is outside
// flate.HuffmanOnly through flate.BestCompression).
func NewWriter(w io.Writer, level int) *Writer {
	return NewWriterWithBlockSize(w, level, DefaultCompressBlockUnit)
}

// NewWriterWithBlockSize returns a Writer that emits a block every time the
// buffered byte count exceeds blockSize (must be in [1, 65280]).
func NewWriterWithBlockSize(w io.Writer, level int, blockSize int) *Writer {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		level = flate.DefaultCompression
	}
	if blockSize <= 0 || blockSize > DefaultCompressBlockUnit {
		blockSize = DefaultCompressBlockUnit
	}
	return &Writer{w: w, level: level, compressBlockUnit: blockSize}
}

// Write appends buf to the pending payload, flushing complete blocks as
// the buffered byte count crosses compressBlockUnit.
func (w *Writer) Write(buf []byte) (int, error) {
	w.buffer = append(w.buffer, buf...)
	for len(w.buffer) > w.compressBlockUnit {
		if err := w.writeBlock(w.compressBlockUnit); err != nil {
			return 0, err
		}
	}
	return len(buf), nil
}

// writeBlock compresses and emits the first n bytes of the pending buffer.
func (w *Writer) writeBlock(n int) error {
	if n > len(w.buffer) {
		n = len(w.buffer)
	}
	encoded, err := encodeBlock(w.buffer[:n], w.level)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(encoded); err != nil {
		return fmt.Errorf("bgzfio: writing block: %v", err)
	}
	w.coffset += uint64(len(encoded))
	w.buffer = w.buffer[n:]
	return nil
}

// Flush drains the pending buffer into blocks without closing the stream.
func (w *Writer) Flush() error {
	for len(w.buffer) > 0 {
		if err := w.writeBlock(w.compressBlockUnit); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes any buffered bytes and appends the canonical BGZF EOF
// marker exactly once. Any I/O error is surfaced; Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if _, err := w.w.Write(EOFMarker); err != nil {
		return fmt.Errorf("bgzfio: writing EOF marker: %v", err)
	}
	w.coffset += eofMarkerLength
	w.closed = true
	return nil
}

// VOffset returns the virtual file offset of the next byte that will be
// written.
func (w *Writer) VOffset() Address {
	return NewAddress(w.coffset, uint16(len(w.buffer)))
}
