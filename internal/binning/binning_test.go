package binning

import (
	"math"
	"reflect"
	"testing"
)

func TestBins(t *testing.T) {
	allBins := Bins(0, math.MaxUint32, nil)

	testCases := []struct {
		name       string
		beg, end   uint64
		bins       []uint32
	}{
		{"end clamping", 0, math.MaxUint32, allBins},
		{"end past maximum", 0, MaxSpan + 1, allBins},
		{"narrow region", 0, 1, []uint32{0, 1, 9, 73, 585, 4681}},
		{"swapped endpoints", 2, 1, nil},
		{"zero-width region", 1, 1, nil},
		{"zero end treated as unbounded", 1, 0, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := Bins(tc.beg, tc.end, nil), tc.bins; !reflect.DeepEqual(got, want) {
				t.Fatalf("Bins(%d, %d) = %+v, want %+v", tc.beg, tc.end, got, want)
			}
		})
	}
}

func TestBinMembership(t *testing.T) {
	testCases := []struct {
		beg, end uint64
	}{
		{0, 1},
		{100, 5000},
		{1 << 14, 1<<14 + 1},
		{0, MaxSpan - 1},
		{12345, 6789012},
	}
	for _, tc := range testCases {
		bin := Bin(tc.beg, tc.end)
		bins := Bins(tc.beg, tc.end, nil)
		found := false
		for _, b := range bins {
			if b == bin {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("Bin(%d, %d) = %d not found in Bins(%d, %d) = %v", tc.beg, tc.end, bin, tc.beg, tc.end, bins)
		}
	}
}

func TestBinNarrowRegionIsDeepest(t *testing.T) {
	if got, want := Bin(0, 1), levelOffset(Depth); got != want {
		t.Fatalf("Bin(0, 1) = %d, want %d", got, want)
	}
}
