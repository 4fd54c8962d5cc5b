package csi

import (
	"bytes"
	"fmt"

	"github.com/cschin/go-bgzip/internal/bgzfio"
	"github.com/cschin/go-bgzip/internal/genomics"
)

// Adapter answers the same region and start-in-window queries as
// internal/tabix.Index, but against a gzip-compressed CSI index paired
// with the reference names from its VCF/BCF header (see
// internal/bcf.GetReferenceNames). It structurally satisfies
// scanner.Index and scanner.LinearIndex, the same way internal/bam.Adapter
// does for BAI.
type Adapter struct {
	csi       []byte
	names     []string
	nameToRID map[string]int32
}

// NewAdapter builds an Adapter from gzip-compressed CSI index bytes and the
// reference names in header order.
func NewAdapter(csi []byte, names []string) *Adapter {
	nameToRID := make(map[string]int32, len(names))
	for i, name := range names {
		nameToRID[name] = int32(i)
	}
	return &Adapter{csi: csi, names: names, nameToRID: nameToRID}
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

// RegionChunks re-decompresses and re-scans the CSI index for the given
// reference and region, the same way internal/bam.Adapter re-scans BAI.
func (a *Adapter) RegionChunks(rid int32, begin, end uint64) ([]bgzfio.Chunk, error) {
	chunks, err := Read(bytes.NewReader(a.csi), genomics.Region{
		ReferenceID: rid,
		Start:       uint32(begin),
		End:         uint32(end),
	})
	if err != nil {
		return nil, fmt.Errorf("reading CSI index: %v", err)
	}
	out := make([]bgzfio.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = *c
	}
	return out, nil
}

// StartChunks answers a start-in-window query by reusing the overlap chunk
// list and taking its covering span, since CSI has no separate linear-only
// index path the way Tabix does.
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
