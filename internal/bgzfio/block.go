package bgzfio

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// gzip / BGZF framing constants: magic bytes, deflate method, and the "BC"
// subfield identifying a BGZF extra block.
const (
	gzipMagic1 = 0x1f
	gzipMagic2 = 0x8b
	gzipDeflate = 8

	flagText    = 1 << 0
	flagHdrCrc  = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4

	bgzfSubfieldID1 = 0x42 // 'B'
	bgzfSubfieldID2 = 0x43 // 'C'

	eofMarkerLength = 28
)

// EOFMarker is the canonical 28-byte BGZF end-of-file marker: an empty
// BGZF block with ISIZE=0. Writers append it exactly once on Close.
var EOFMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// block is one decoded BGZF member: its compressed on-disk length (BSIZE+1)
// and its uncompressed payload.
type block struct {
	compressedSize int
	data           []byte
}

// readBlock reads and decodes one BGZF block from r, which must be
// positioned at the start of a gzip member. It returns ErrMalformedBlock
// (wrapped with context) if the magic, method, EXTRA framing, or trailing
// CRC32/ISIZE do not match.
func readBlock(r io.Reader) (*block, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReaderWrapper{r}
	}

	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("%w: reading gzip header: %v", ErrMalformedBlock, err)
	}
	if hdr[0] != gzipMagic1 || hdr[1] != gzipMagic2 || hdr[2] != gzipDeflate {
		return nil, fmt.Errorf("%w: bad gzip magic %x", ErrMalformedBlock, hdr[0:3])
	}
	flg := hdr[3]
	if flg&flagExtra == 0 {
		return nil, fmt.Errorf("%w: FEXTRA flag not set", ErrMalformedBlock)
	}

	xlen, err := readUint16(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading XLEN: %v", ErrMalformedBlock, err)
	}
	extra := make([]byte, xlen)
	if _, err := io.ReadFull(r, extra); err != nil {
		return nil, fmt.Errorf("%w: reading EXTRA: %v", ErrMalformedBlock, err)
	}

	bsize, ok := findBSIZE(extra)
	if !ok {
		return nil, fmt.Errorf("%w: no BC subfield in EXTRA", ErrMalformedBlock)
	}

	headerLength := 12 + len(extra)
	if flg&flagName != 0 {
		n, err := skipCString(br)
		if err != nil {
			return nil, fmt.Errorf("%w: reading FNAME: %v", ErrMalformedBlock, err)
		}
		headerLength += n
	}
	if flg&flagComment != 0 {
		n, err := skipCString(br)
		if err != nil {
			return nil, fmt.Errorf("%w: reading FCOMMENT: %v", ErrMalformedBlock, err)
		}
		headerLength += n
	}
	if flg&flagHdrCrc != 0 {
		if _, err := readUint16(r); err != nil {
			return nil, fmt.Errorf("%w: reading FHCRC: %v", ErrMalformedBlock, err)
		}
		headerLength += 2
	}

	compressedLength := int(bsize) + 1 - headerLength - 8
	if compressedLength < 0 {
		return nil, fmt.Errorf("%w: BSIZE too small for header", ErrMalformedBlock)
	}
	payload := make([]byte, compressedLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: reading DEFLATE payload: %v", ErrMalformedBlock, err)
	}

	fr := flate.NewReader(&noEOFReader{payload})
	defer fr.Close()
	data, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("%w: inflating: %v", ErrMalformedBlock, err)
	}

	var trailer [8]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, fmt.Errorf("%w: reading CRC32/ISIZE trailer: %v", ErrMalformedBlock, err)
	}
	wantCRC := binary.LittleEndian.Uint32(trailer[0:4])
	wantISIZE := binary.LittleEndian.Uint32(trailer[4:8])
	if gotCRC := crc32.ChecksumIEEE(data); gotCRC != wantCRC {
		return nil, fmt.Errorf("%w: CRC32 mismatch: got %x, want %x", ErrMalformedBlock, gotCRC, wantCRC)
	}
	if uint32(len(data)) != wantISIZE {
		return nil, fmt.Errorf("%w: ISIZE mismatch: got %d, want %d", ErrMalformedBlock, len(data), wantISIZE)
	}
	if wantISIZE > MaximumBlockSize {
		return nil, fmt.Errorf("%w: ISIZE %d exceeds maximum block size", ErrMalformedBlock, wantISIZE)
	}

	return &block{compressedSize: int(bsize) + 1, data: data}, nil
}

// encodeBlock compresses up to MaximumBlockSize bytes of data into a single
// BGZF block using raw DEFLATE (no zlib wrapper). It fails if the encoded
// block, header and trailer included, would exceed MaximumBlockSize bytes.
func encodeBlock(data []byte, level int) ([]byte, error) {
	if len(data) > MaximumBlockSize {
		return nil, fmt.Errorf("bgzfio: %d bytes exceeds maximum block size", len(data))
	}

	var compressed bufferWriter
	fw, err := flate.NewWriter(&compressed, level)
	if err != nil {
		return nil, fmt.Errorf("bgzfio: creating DEFLATE writer: %v", err)
	}
	if len(data) > 0 {
		if _, err := fw.Write(data); err != nil {
			return nil, fmt.Errorf("bgzfio: compressing block: %v", err)
		}
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("bgzfio: closing DEFLATE writer: %v", err)
	}

	headerLength := 18 // 12 fixed bytes + "BC",len(2),BSIZE(2)
	total := headerLength + len(compressed) + 8
	if total > MaximumBlockSize {
		return nil, fmt.Errorf("bgzfio: compressed block of %d bytes exceeds maximum block size", total)
	}

	out := make([]byte, 0, total)
	out = append(out,
		gzipMagic1, gzipMagic2, gzipDeflate, flagExtra,
		0, 0, 0, 0, // MTIME
		0,    // XFL
		0xff, // OS, unknown
		6, 0, // XLEN
		bgzfSubfieldID1, bgzfSubfieldID2,
		2, 0, // SLEN
	)
	bsize := total - 1
	out = append(out, byte(bsize), byte(bsize>>8))
	out = append(out, compressed...)

	sum := crc32.ChecksumIEEE(data)
	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], sum)
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(data)))
	out = append(out, trailer[:]...)

	return out, nil
}

// DecodeBlock reads and inflates one BGZF block from r, returning its
// uncompressed payload and on-disk compressed length in bytes. It is the
// exported entry point for callers that need one block at a time, such as
// HTTP range-based chunk extraction, rather than a streaming Reader.
func DecodeBlock(r io.Reader) ([]byte, uint16, error) {
	b, err := readBlock(r)
	if err != nil {
		return nil, 0, err
	}
	return b.data, uint16(b.compressedSize), nil
}

// EncodeBlock compresses data into a single self-contained BGZF block.
func EncodeBlock(data []byte) ([]byte, error) {
	return encodeBlock(data, -1)
}

func findBSIZE(extra []byte) (uint16, bool) {
	for i := 0; i+4 <= len(extra); {
		id1, id2 := extra[i], extra[i+1]
		slen := int(extra[i+2]) | int(extra[i+3])<<8
		start := i + 4
		if start+slen > len(extra) {
			return 0, false
		}
		if id1 == bgzfSubfieldID1 && id2 == bgzfSubfieldID2 && slen == 2 {
			return binary.LittleEndian.Uint16(extra[start : start+2]), true
		}
		i = start + slen
	}
	return 0, false
}

func readUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func skipCString(r io.ByteReader) (int, error) {
	n := 0
	for {
		b, err := r.ReadByte()
		if err != nil {
			return n, err
		}
		n++
		if b == 0 {
			return n, nil
		}
	}
}

type byteReaderWrapper struct {
	io.Reader
}

func (b *byteReaderWrapper) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.Reader, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// noEOFReader adapts a fixed byte slice into an io.Reader usable by
// flate.NewReader without it attempting to read past the known payload.
type noEOFReader struct {
	b []byte
}

func (r *noEOFReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.b)
	r.b = r.b[n:]
	return n, nil
}

// bufferWriter is a minimal growable []byte sink, avoiding a bytes.Buffer
// import purely for Write.
type bufferWriter []byte

func (b *bufferWriter) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}
