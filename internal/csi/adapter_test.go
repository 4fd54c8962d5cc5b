package csi

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/cschin/go-bgzip/internal/bgzfio"
)

// minimalCSI gzip-compresses a one-reference CSI index with no bins, so
// Read() returns just the synthetic header chunk.
func minimalCSI(t *testing.T) []byte {
	t.Helper()
	raw := []byte{
		'C', 'S', 'I', 1, // magic
		14, 0, 0, 0, // MinimumWidth
		5, 0, 0, 0, // Depth
		0, 0, 0, 0, // AuxilaryLength
		1, 0, 0, 0, // references = 1
		0, 0, 0, 0, // bin count = 0
	}
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		t.Fatalf("compressing fixture: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestAdapterNameLookup(t *testing.T) {
	a := NewAdapter(minimalCSI(t), []string{"1"})

	if got, want := a.Names(), []string{"1"}; len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if rid, ok := a.Name2RID("1"); !ok || rid != 0 {
		t.Fatalf("Name2RID(%q) = (%d, %v), want (0, true)", "1", rid, ok)
	}
	if name, ok := a.RID2Name(0); !ok || name != "1" {
		t.Fatalf("RID2Name(0) = (%q, %v), want (1, true)", name, ok)
	}
	if _, ok := a.RID2Name(7); ok {
		t.Fatalf("RID2Name(7) unexpectedly found")
	}
}

func TestAdapterRegionAndStartChunks(t *testing.T) {
	a := NewAdapter(minimalCSI(t), []string{"1"})

	chunks, err := a.RegionChunks(0, 0, 0)
	if err != nil {
		t.Fatalf("RegionChunks() returned error: %v", err)
	}
	if len(chunks) != 1 || chunks[0].End != bgzfio.LastAddress {
		t.Fatalf("RegionChunks() = %v, want a single header chunk ending at %s", chunks, bgzfio.LastAddress)
	}

	chunk, err := a.StartChunks(0, 0, 0)
	if err != nil {
		t.Fatalf("StartChunks() returned error: %v", err)
	}
	if chunk.End != bgzfio.LastAddress {
		t.Fatalf("StartChunks().End = %s, want %s", chunk.End, bgzfio.LastAddress)
	}
}
