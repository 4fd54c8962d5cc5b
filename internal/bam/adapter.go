package bam

import (
	"bytes"
	"fmt"

	"github.com/cschin/go-bgzip/internal/bgzfio"
	"github.com/cschin/go-bgzip/internal/genomics"
)

// Adapter answers the same region and start-in-window queries as
// internal/tabix.Index, but against a BAI index paired with the reference
// names from its BAM header (see GetReferenceNames). It structurally
// satisfies scanner.Index and scanner.LinearIndex, supplying chunk and name
// lookups; scanner.Read parses tab-delimited text and does not decode the
// binary BAM alignment records those chunks contain.
type Adapter struct {
	bai       []byte
	names     []string
	nameToRID map[string]int32
}

// NewAdapter builds an Adapter from raw BAI index bytes and the reference
// names in BAM header order.
func NewAdapter(bai []byte, names []string) *Adapter {
	nameToRID := make(map[string]int32, len(names))
	for i, name := range names {
		nameToRID[name] = int32(i)
	}
	return &Adapter{bai: bai, names: names, nameToRID: nameToRID}
}

// Names returns the reference names in reference-ID order.
func (a *Adapter) Names() []string {
	return a.names
}

// Name2RID looks up a reference's ID by name.
func (a *Adapter) Name2RID(name string) (int32, bool) {
	rid, ok := a.nameToRID[name]
	return rid, ok
}

// RID2Name looks up a reference's name by ID.
func (a *Adapter) RID2Name(rid int32) (string, bool) {
	if rid < 0 || int(rid) >= len(a.names) {
		return "", false
	}
	return a.names[rid], true
}

// RegionChunks re-reads the BAI index for the given reference and region.
// Unlike internal/tabix, which parses its index once into a reusable
// in-memory structure, BAI's Read already couples the binning lookup and
// the linear-index floor into one pass, so each query re-scans the raw
// index bytes rather than maintaining separate state.
func (a *Adapter) RegionChunks(rid int32, begin, end uint64) ([]bgzfio.Chunk, error) {
	chunks, err := Read(bytes.NewReader(a.bai), genomics.Region{
		ReferenceID: rid,
		Start:       uint32(begin),
		End:         uint32(end),
	})
	if err != nil {
		return nil, fmt.Errorf("reading BAI index: %v", err)
	}
	out := make([]bgzfio.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = *c
	}
	return out, nil
}

// StartChunks answers a start-in-window query by reusing the overlap chunk
// list: BAI has no separate linear-only index path the way Tabix does, so
// the widest covering chunk is returned and the scanner's own start-mode
// record filter does the narrowing.
func (a *Adapter) StartChunks(rid int32, startBegin, startEnd uint64) (bgzfio.Chunk, error) {
	chunks, err := a.RegionChunks(rid, startBegin, startEnd)
	if err != nil {
		return bgzfio.Chunk{}, err
	}
	if len(chunks) == 0 {
		return bgzfio.Chunk{Start: bgzfio.LastAddress, End: bgzfio.LastAddress}, nil
	}
	chunk := chunks[0]
	for _, c := range chunks[1:] {
		if c.Start < chunk.Start {
			chunk.Start = c.Start
		}
		if c.End > chunk.End {
			chunk.End = c.End
		}
	}
	return chunk, nil
}
