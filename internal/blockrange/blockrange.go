// Package blockrange extracts the exact compressed bytes of a chunk from a
// BGZF file without fully decompressing and re-encoding it, by splicing
// together whole blocks with recompressed prefix/suffix blocks at the
// chunk's boundaries. This lets an HTTP server answer a region query with
// a byte range into the original file instead of streaming every matching
// record through the decompress/scan/recompress path that
// internal/scanner's text-record model uses. internal/server does not use
// this package; it streams scanner records.
package blockrange

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/cschin/go-bgzip/internal/bgzfio"
)

// RangeReader opens a byte range [start, start+length) of the underlying
// BGZF file, the way an *os.File.ReadAt or an object-storage range GET
// would.
type RangeReader func(start int64, length int64) (io.ReadCloser, error)

// readCloser pairs an assembled Reader with a Closer that releases every
// underlying range read that fed it.
type readCloser struct {
	io.Reader
	io.Closer
}

type multiCloser struct {
	closers []io.Closer
}

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing underlying range readers: %v", errs)
	}
	return nil
}

// Extract returns a ReadCloser yielding a valid BGZF stream covering
// exactly chunk's byte range: whole blocks in the middle are passed
// through unmodified, while the block straddling chunk.Start and the block
// straddling chunk.End are decoded and re-encoded so the returned stream
// starts and ends precisely at chunk's virtual file offsets.
func Extract(file RangeReader, chunk bgzfio.Chunk) (io.ReadCloser, error) {
	start, end := chunk.Start, chunk.End
	head, tail := int64(start.BlockOffset()), int64(end.BlockOffset())

	if head == tail {
		block, err := file(head, bgzfio.MaximumBlockSize)
		if err != nil {
			return nil, fmt.Errorf("opening single-block range: %v", err)
		}
		defer block.Close()

		decoded, _, err := bgzfio.DecodeBlock(block)
		if err != nil {
			return nil, fmt.Errorf("decoding block: %v", err)
		}
		decoded = decoded[start.DataOffset():end.DataOffset()]

		encoded, err := bgzfio.EncodeBlock(decoded)
		if err != nil {
			return nil, fmt.Errorf("encoding single block: %v", err)
		}
		return ioutil.NopCloser(bytes.NewReader(encoded)), nil
	}

	var readers []io.Reader
	var closers []io.Closer

	if start.DataOffset() != 0 {
		first, err := file(head, tail-head)
		if err != nil {
			return nil, fmt.Errorf("opening prefix range: %v", err)
		}

		decoded, length, err := bgzfio.DecodeBlock(first)
		if err != nil {
			first.Close()
			return nil, fmt.Errorf("decoding prefix block: %v", err)
		}
		first.Close()
		head += int64(length)

		encoded, err := bgzfio.EncodeBlock(decoded[start.DataOffset():])
		if err != nil {
			return nil, fmt.Errorf("encoding prefix block: %v", err)
		}
		readers = append(readers, bytes.NewReader(encoded))
	}

	if tail-head > 0 {
		r, err := file(head, tail-head)
		if err != nil {
			return nil, fmt.Errorf("opening middle range: %v", err)
		}
		readers = append(readers, r)
		closers = append(closers, r)
	}

	if end.DataOffset() != 0 {
		last, err := file(tail, bgzfio.MaximumBlockSize)
		if err != nil {
			return nil, fmt.Errorf("opening suffix range: %v", err)
		}

		decoded, _, err := bgzfio.DecodeBlock(last)
		last.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding suffix block: %v", err)
		}

		encoded, err := bgzfio.EncodeBlock(decoded[:end.DataOffset()])
		if err != nil {
			return nil, fmt.Errorf("encoding suffix block: %v", err)
		}
		readers = append(readers, bytes.NewReader(encoded))
	}

	return &readCloser{
		Reader: io.MultiReader(readers...),
		Closer: multiCloser{closers},
	}, nil
}
