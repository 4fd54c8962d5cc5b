// Package binning implements the UCSC hierarchical binning scheme used by
// Tabix, BAI and CSI indices: reg2bin finds the smallest bin containing a
// genomic interval; reg2bins enumerates every bin any interval could fall
// in. Adapted from the CSI binsForRange bin-walking arithmetic, generalized
// to also answer the single-bin question and widened to the standard
// MinShift=14, Depth=5 scheme shared by BAI, CSI and Tabix.
package binning

// MinShift and Depth fix the binning tree's shape: level k covers regions
// of size 2^(MinShift+3*k), for k = 0..Depth.
const (
	MinShift = 14
	Depth    = 5
)

// MaxSpan is the largest half-open interval the tree can address, i.e. the
// span of a single bin at the shallowest level.
const MaxSpan = uint64(1) << (MinShift + 3*Depth)

// levelOffset is the bin-id of the first bin at a given level; level 0 is
// the single root bin covering [0, MaxSpan).
func levelOffset(level uint) uint32 {
	return uint32((1<<(3*level) - 1) / 7)
}

// Bin returns the smallest bin that fully contains the half-open interval
// [beg, end). It walks levels from deepest (finest) to shallowest, and
// returns the first level at which beg and end-1 fall in the same bin.
func Bin(beg, end uint64) uint32 {
	if end > 0 {
		end--
	}
	for level, shift := Depth, uint(MinShift); ; level-- {
		if beg>>shift == end>>shift {
			return levelOffset(uint(level)) + uint32(beg>>shift)
		}
		if level == 0 {
			return 0
		}
		shift += 3
	}
}

// Bins appends to out every bin id, at every level, that intersects the
// half-open interval [beg, end), and returns the extended slice. Order is
// by level shallowest first, then ascending bin id within a level,
// matching the order callers use to fetch chunks from the binning index.
func Bins(beg, end uint64, out []uint32) []uint32 {
	if end == 0 {
		end = MaxSpan
	}
	if end > MaxSpan {
		end = MaxSpan
	}
	if end <= beg {
		return out
	}
	end--

	for level, shift := uint(0), uint(MinShift+3*Depth); level <= Depth; level++ {
		first := levelOffset(level) + uint32(beg>>shift)
		last := levelOffset(level) + uint32(end>>shift)
		for id := first; id <= last; id++ {
			out = append(out, id)
		}
		shift -= 3
	}
	return out
}
