package bgzfio

import (
	"fmt"
	"io"
)

// Reader is a sequential BGZF decompressor. At any point after a
// successful operation it holds exactly one decoded block resident; Tell
// names the current position as a virtual file offset and Seek jumps to
// one directly, re-reading the block at its target coffset.
type Reader struct {
	r io.ReadSeeker

	coffset uint64 // file offset of the currently resident block
	csize   int    // on-disk length of the currently resident block
	data    []byte // decoded payload of the currently resident block
	pos     int    // cursor into data
	atEOF   bool
}

// NewReader returns a Reader that decodes BGZF blocks from r. r must
// support Seek so that Seek(Address) can reposition to any block.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	reader := &Reader{r: r}
	if err := reader.fill(); err != nil {
		return nil, err
	}
	return reader, nil
}

// fill decodes the block starting at the stream's current position and
// becomes the new resident block.
func (r *Reader) fill() error {
	offset, err := r.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("bgzfio: locating current offset: %v", err)
	}
	b, err := readBlock(r.r)
	if err == io.EOF {
		r.data = nil
		r.pos = 0
		r.atEOF = true
		return nil
	}
	if err != nil {
		return err
	}
	r.coffset = uint64(offset)
	r.csize = b.compressedSize
	r.data = b.data
	r.pos = 0
	r.atEOF = len(b.data) == 0
	return nil
}

// Read implements io.Reader, advancing the virtual file offset as bytes are
// consumed. It returns 0, io.EOF once the canonical BGZF EOF marker (an
// empty block) has been decoded.
func (r *Reader) Read(p []byte) (int, error) {
	if r.atEOF && r.pos >= len(r.data) {
		return 0, io.EOF
	}
	for r.pos >= len(r.data) {
		if err := r.fill(); err != nil {
			return 0, err
		}
		if r.atEOF && len(r.data) == 0 {
			return 0, io.EOF
		}
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// ReadByte implements io.ByteReader, advancing the virtual file offset by
// one. It is the primitive callers scanning for a delimiter (e.g. a
// tabix scanner reading up to '\n') should use instead of Read, since it
// avoids requesting bytes the current chunk boundary check hasn't yet
// cleared.
func (r *Reader) ReadByte() (byte, error) {
	for r.pos >= len(r.data) {
		if r.atEOF {
			return 0, io.EOF
		}
		if err := r.fill(); err != nil {
			return 0, err
		}
		if r.atEOF && len(r.data) == 0 {
			return 0, io.EOF
		}
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Tell returns the virtual file offset of the next byte Read will return.
// Once the resident block's payload is fully consumed, that is offset 0 of
// the block that follows it.
func (r *Reader) Tell() Address {
	if len(r.data) > 0 && r.pos >= len(r.data) {
		return NewAddress(r.coffset+uint64(r.csize), 0)
	}
	return NewAddress(r.coffset, uint16(r.pos))
}

// Seek decodes the block at v's block offset and positions the read
// cursor at v's data offset. It returns ErrInvalidVFO if the data offset is
// at or past that block's decoded size.
func (r *Reader) Seek(v Address) error {
	if _, err := r.r.Seek(int64(v.BlockOffset()), io.SeekStart); err != nil {
		return fmt.Errorf("bgzfio: seeking to block offset %d: %v", v.BlockOffset(), err)
	}
	if err := r.fill(); err != nil {
		return err
	}
	u := int(v.DataOffset())
	if u >= len(r.data) {
		return fmt.Errorf("%w: data offset %d >= block size %d", ErrInvalidVFO, u, len(r.data))
	}
	r.pos = u
	return nil
}
