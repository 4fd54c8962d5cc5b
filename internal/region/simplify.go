// Package region merges the chunk lists produced by binning-index lookups.
//
// A query interval typically touches several bins, and each bin's chunks
// can overlap those of its neighbours; reading every chunk separately would
// re-read the same compressed blocks repeatedly. Simplify folds a stream of
// (begin, end) virtual-offset pairs into a sorted, non-overlapping list
// whose union covers exactly the union of the inputs.
//
// This drops the compressed-size limit some chunk mergers apply: here,
// touching or overlapping chunks are always merged regardless of the
// resulting span.
package region

import (
	"sort"

	"github.com/cschin/go-bgzip/internal/bgzfio"
)

// Simplifier accumulates chunks and produces the merged result on demand.
type Simplifier struct {
	chunks []bgzfio.Chunk
}

// NewSimplifier returns an empty Simplifier.
func NewSimplifier() *Simplifier {
	return &Simplifier{}
}

// Insert adds one (begin, end) chunk to the pending set.
func (s *Simplifier) Insert(begin, end bgzfio.Address) {
	s.chunks = append(s.chunks, bgzfio.Chunk{Start: begin, End: end})
}

// Regions returns the merged, sorted, non-overlapping chunk list.
func (s *Simplifier) Regions() []bgzfio.Chunk {
	return Simplify(s.chunks)
}

// Simplify merges overlapping or adjacent chunks in input and returns a
// sorted, non-overlapping list. Two chunks are merged when, after sorting
// by Start, the later one's Start is no greater than the earlier one's End.
func Simplify(input []bgzfio.Chunk) []bgzfio.Chunk {
	if len(input) == 0 {
		return nil
	}

	sorted := make([]bgzfio.Chunk, len(input))
	copy(sorted, input)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := []bgzfio.Chunk{sorted[0]}
	last := &merged[0]
	for _, c := range sorted[1:] {
		if c.Start <= last.End {
			if c.End > last.End {
				last.End = c.End
			}
			continue
		}
		merged = append(merged, c)
		last = &merged[len(merged)-1]
	}
	return merged
}
