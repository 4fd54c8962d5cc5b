package bgzfio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// pipelineDepthFactor bounds outstanding in-flight blocks to
// workers*pipelineDepthFactor, giving the dispatcher some run-ahead
// without unbounded memory growth.
const pipelineDepthFactor = 2

// ParallelReader decompresses a BGZF stream using a dispatcher goroutine
// plus a pool of decode workers, releasing decoded blocks to the consumer
// in submission order - byte-for-byte identical to Reader's sequential
// output. It does not support Seek; construct a Reader instead when random
// access is required.
type ParallelReader struct {
	group   *errgroup.Group
	cancel  context.CancelFunc
	order   chan chan blockResult

	current []byte
	pos     int
	err     error
}

type frameJob struct {
	raw    []byte
	result chan blockResult
}

type blockResult struct {
	data []byte
	err  error
}

// NewParallelReader starts a dispatcher and workers decompression workers
// reading BGZF blocks from r. workers is clamped to at least 1.
func NewParallelReader(r io.Reader, workers int) *ParallelReader {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	depth := workers * pipelineDepthFactor
	jobs := make(chan frameJob, depth)
	order := make(chan chan blockResult, depth)

	group.Go(func() error {
		defer close(jobs)
		defer close(order)
		for {
			raw, err := readRawFrame(r)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			result := make(chan blockResult, 1)
			select {
			case jobs <- frameJob{raw, result}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case order <- result:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for job := range jobs {
				b, err := readBlock(bytes.NewReader(job.raw))
				if err != nil {
					job.result <- blockResult{err: err}
					continue
				}
				job.result <- blockResult{data: b.data}
			}
			return nil
		})
	}

	return &ParallelReader{group: group, cancel: cancel, order: order}
}

// Read implements io.Reader. Once any worker or the dispatcher reports an
// error, the reader is poisoned: that same error is returned on every
// subsequent call.
func (p *ParallelReader) Read(buf []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	for p.pos >= len(p.current) {
		result, ok := <-p.order
		if !ok {
			// The dispatcher has finished; Wait reports its error, if any.
			if err := p.group.Wait(); err != nil {
				p.err = fmt.Errorf("bgzfio: parallel decompression: %v", err)
				return 0, p.err
			}
			p.err = io.EOF
			return 0, io.EOF
		}
		br := <-result
		if br.err != nil {
			p.err = br.err
			p.cancel()
			return 0, p.err
		}
		p.current = br.data
		p.pos = 0
	}
	n := copy(buf, p.current[p.pos:])
	p.pos += n
	return n, nil
}

// Close cancels any outstanding decode work and releases the worker pool.
// Partially enqueued work is discarded without error propagation.
func (p *ParallelReader) Close() error {
	p.cancel()
	_ = p.group.Wait()
	return nil
}

// readRawFrame reads exactly one BGZF block's raw bytes (header through
// trailer) from r without inflating the payload, so the expensive
// DEFLATE/CRC work can happen on a worker goroutine.
func readRawFrame(r io.Reader) ([]byte, error) {
	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
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

	prefix := make([]byte, 0, 12+len(extra))
	prefix = append(prefix, hdr[:]...)
	prefix = append(prefix, byte(xlen), byte(xlen>>8))
	prefix = append(prefix, extra...)

	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReaderWrapper{r}
	}
	if flg&flagName != 0 {
		b, err := readCString(br)
		if err != nil {
			return nil, fmt.Errorf("%w: reading FNAME: %v", ErrMalformedBlock, err)
		}
		prefix = append(prefix, b...)
	}
	if flg&flagComment != 0 {
		b, err := readCString(br)
		if err != nil {
			return nil, fmt.Errorf("%w: reading FCOMMENT: %v", ErrMalformedBlock, err)
		}
		prefix = append(prefix, b...)
	}
	if flg&flagHdrCrc != 0 {
		var hcrc [2]byte
		if _, err := io.ReadFull(r, hcrc[:]); err != nil {
			return nil, fmt.Errorf("%w: reading FHCRC: %v", ErrMalformedBlock, err)
		}
		prefix = append(prefix, hcrc[:]...)
	}

	rest := make([]byte, int(bsize)+1-len(prefix))
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("%w: reading block body: %v", ErrMalformedBlock, err)
	}

	return append(prefix, rest...), nil
}

// readCString reads bytes up to and including a terminating NUL.
func readCString(r io.ByteReader) ([]byte, error) {
	var out []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		if b == 0 {
			return out, nil
		}
	}
}
