// Package tabix parses the TBI binary index format and answers binning and
// linear-index queries against it. Wire layout and query arithmetic are
// grounded on original_source/src/index/tbi.rs's TabixIndex::new,
// region_chunks and start_chunks; the read loop and little-endian helpers
// follow the internal/index and internal/binary packages' conventions.
package tabix

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/cschin/go-bgzip/internal/bgzfio"
	"github.com/cschin/go-bgzip/internal/binary"
	"github.com/cschin/go-bgzip/internal/binning"
	"github.com/cschin/go-bgzip/internal/region"
)

const magic = "TBI\x01"

// LinearInterval is the granularity, in reference-sequence base pairs, of
// the linear index used to bound start_chunks queries.
const LinearInterval = 16 * 1024

// chunk is a single (begin, end) virtual-file-offset pair as stored in a bin.
type chunk struct {
	begin, end uint64
}

// bin holds every chunk recorded under one binning-tree bin id.
type bin struct {
	id     uint32
	chunks []chunk
}

// sequence is the per-reference portion of the index: its bins, keyed by
// bin id, and its linear index of block offsets.
type sequence struct {
	bins     map[uint32]*bin
	interval []uint64
}

// Index is a parsed TBI index. It implements both the Index and
// LinearIndex capability interfaces used by internal/scanner.
type Index struct {
	Format uint32
	ColSeq uint32
	ColBeg uint32
	ColEnd uint32
	Meta   uint32
	Skip   uint32

	ZeroBased bool
	VCFMode   bool
	SAMMode   bool

	names      []string
	nameToRID  map[string]int32
	sequences  []sequence
}

// MaxColumn returns the highest 1-based column index this index's records
// need parsed (the largest of ColSeq, ColBeg, ColEnd).
func (idx *Index) MaxColumn() int {
	max := idx.ColSeq
	if idx.ColBeg > max {
		max = idx.ColBeg
	}
	if idx.ColEnd > max {
		max = idx.ColEnd
	}
	return int(max)
}

// Read parses TBI index data from r. The stream is itself BGZF/gzip
// compressed, like the file it indexes.
func Read(r io.Reader) (*Index, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("tabix: initializing gzip reader: %v", err)
	}
	defer gz.Close()

	if err := binary.CheckMagic(gz, []byte(magic)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTabix, err)
	}

	var header struct {
		NRef   int32
		Format int32
		ColSeq int32
		ColBeg int32
		ColEnd int32
		Meta   int32
		Skip   int32
		LNM    int32
	}
	if err := binary.Read(gz, &header); err != nil {
		return nil, fmt.Errorf("tabix: reading header: %v", err)
	}

	nameBytes := make([]byte, header.LNM)
	if _, err := io.ReadFull(gz, nameBytes); err != nil {
		return nil, fmt.Errorf("tabix: reading reference names: %v", err)
	}
	var names []string
	for _, part := range bytes.Split(bytes.TrimRight(nameBytes, "\x00"), []byte{0}) {
		names = append(names, string(part))
	}

	nameToRID := make(map[string]int32, len(names))
	sequences := make([]sequence, header.NRef)
	for i := int32(0); i < header.NRef; i++ {
		if int(i) < len(names) {
			nameToRID[names[i]] = i
		}

		var nBin int32
		if err := binary.Read(gz, &nBin); err != nil {
			return nil, fmt.Errorf("tabix: reading bin count for reference %d: %v", i, err)
		}

		bins := make(map[uint32]*bin, nBin)
		for b := int32(0); b < nBin; b++ {
			var binHeader struct {
				ID     uint32
				NChunk int32
			}
			if err := binary.Read(gz, &binHeader); err != nil {
				return nil, fmt.Errorf("tabix: reading bin header: %v", err)
			}
			chunks := make([]chunk, binHeader.NChunk)
			for c := int32(0); c < binHeader.NChunk; c++ {
				var raw struct {
					Begin, End uint64
				}
				if err := binary.Read(gz, &raw); err != nil {
					return nil, fmt.Errorf("tabix: reading chunk: %v", err)
				}
				chunks[c] = chunk{begin: raw.Begin, end: raw.End}
			}
			bins[binHeader.ID] = &bin{id: binHeader.ID, chunks: chunks}
		}

		var nIntv int32
		if err := binary.Read(gz, &nIntv); err != nil {
			return nil, fmt.Errorf("tabix: reading linear index size: %v", err)
		}
		interval := make([]uint64, nIntv)
		for v := int32(0); v < nIntv; v++ {
			if err := binary.Read(gz, &interval[v]); err != nil {
				return nil, fmt.Errorf("tabix: reading linear index entry: %v", err)
			}
		}

		sequences[i] = sequence{bins: bins, interval: interval}
	}

	format := uint32(header.Format)
	colEnd := uint32(header.ColEnd)
	vcfMode := format == 2
	if vcfMode {
		colEnd = 5
	}

	return &Index{
		Format:    format,
		ColSeq:    uint32(header.ColSeq),
		ColBeg:    uint32(header.ColBeg),
		ColEnd:    colEnd,
		Meta:      uint32(header.Meta),
		Skip:      uint32(header.Skip),
		ZeroBased: format&0x10000 != 0,
		VCFMode:   vcfMode,
		SAMMode:   format == 1,
		names:     names,
		nameToRID: nameToRID,
		sequences: sequences,
	}, nil
}

// Names returns the reference sequence names in index order.
func (idx *Index) Names() []string {
	return idx.names
}

// Name2RID returns the reference id for name, if present.
func (idx *Index) Name2RID(name string) (int32, bool) {
	rid, ok := idx.nameToRID[name]
	return rid, ok
}

// RID2Name returns the reference name for rid, if it is in range.
func (idx *Index) RID2Name(rid int32) (string, bool) {
	if rid < 0 || int(rid) >= len(idx.names) {
		return "", false
	}
	return idx.names[rid], true
}

// RegionChunks computes every bin that could overlap [begin, end) on rid,
// collects the chunks recorded under those bins, and merges them with the
// region simplifier.
func (idx *Index) RegionChunks(rid int32, begin, end uint64) ([]bgzfio.Chunk, error) {
	if rid < 0 || int(rid) >= len(idx.sequences) {
		return nil, fmt.Errorf("%w: reference id %d", ErrOutOfIndex, rid)
	}
	seq := idx.sequences[rid]

	ids := binning.Bins(begin, end, nil)
	var input []bgzfio.Chunk
	for _, id := range ids {
		b, ok := seq.bins[id]
		if !ok {
			continue
		}
		for _, c := range b.chunks {
			input = append(input, bgzfio.Chunk{
				Start: bgzfio.Address(c.begin),
				End:   bgzfio.Address(c.end),
			})
		}
	}
	return region.Simplify(input), nil
}

// StartChunks returns the virtual-file-offset span the linear index
// guarantees covers every record whose start position falls in
// [startBegin, startEnd]. The span is conservative: it may extend past the
// last matching record, per the off-by-one in the linear bucket
// arithmetic this is grounded on.
func (idx *Index) StartChunks(rid int32, startBegin, startEnd uint64) (bgzfio.Chunk, error) {
	if rid < 0 || int(rid) >= len(idx.sequences) {
		return bgzfio.Chunk{}, fmt.Errorf("%w: reference id %d", ErrOutOfIndex, rid)
	}
	seq := idx.sequences[rid]
	if len(seq.interval) == 0 {
		return bgzfio.Chunk{}, fmt.Errorf("%w: reference %d has no linear index", ErrOutOfIndex, rid)
	}

	beginIndex := int(startBegin / LinearInterval)
	endIndex := int((startEnd+1)/LinearInterval) + 1
	if beginIndex >= len(seq.interval) {
		return bgzfio.Chunk{}, fmt.Errorf("%w: start position %d past end of linear index", ErrOutOfIndex, startBegin)
	}
	if endIndex >= len(seq.interval) {
		endIndex = len(seq.interval) - 1
	}

	return bgzfio.Chunk{
		Start: bgzfio.Address(seq.interval[beginIndex]),
		End:   bgzfio.Address(seq.interval[endIndex]),
	}, nil
}
