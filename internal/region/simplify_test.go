package region

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/cschin/go-bgzip/internal/bgzfio"
)

func TestSimplify(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		merged string
	}{
		{"three chunks, all overlapping", "0-10,10-40,40-80", "0-80"},
		{"three chunks, one not overlapping", "0-10,20-40,40-80", "0-10,20-80"},
		{"unsorted but mergeable", "40-80,10-40,0-10", "0-80"},
		{"non-overlapping, different blocks", "00000000-00008000,00018000-00020000", "00000000-00008000,00018000-00020000"},
		{"touching exactly at boundary merges", "0-8000,8000-9000", "0-9000"},
		{"single chunk", "0-10", "0-10"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input, err := parseChunks(tc.input)
			if err != nil {
				t.Fatalf("bad chunk string: %v", err)
			}
			want, err := parseChunks(tc.merged)
			if err != nil {
				t.Fatalf("bad chunk string: %v", err)
			}
			if got := Simplify(input); !reflect.DeepEqual(got, want) {
				t.Errorf("Simplify(%s) = %s, want %s", tc.input, formatChunks(got), tc.merged)
			}
		})
	}
}

func TestSimplifyEmpty(t *testing.T) {
	if got := Simplify(nil); got != nil {
		t.Errorf("Simplify(nil) = %v, want nil", got)
	}
}

func TestSimplifierAccumulates(t *testing.T) {
	s := NewSimplifier()
	s.Insert(0, 10)
	s.Insert(10, 40)
	s.Insert(100, 200)

	got := s.Regions()
	want := []bgzfio.Chunk{{Start: 0, End: 40}, {Start: 100, End: 200}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Regions() = %v, want %v", got, want)
	}
}

func parseChunks(input string) ([]bgzfio.Chunk, error) {
	var chunks []bgzfio.Chunk
	for _, s := range strings.Split(input, ",") {
		parts := strings.Split(s, "-")
		start, err := bgzfio.ParseAddress(parts[0])
		if err != nil {
			return nil, fmt.Errorf("parsing chunk start: %v", err)
		}
		end, err := bgzfio.ParseAddress(parts[1])
		if err != nil {
			return nil, fmt.Errorf("parsing chunk end: %v", err)
		}
		chunks = append(chunks, bgzfio.Chunk{Start: start, End: end})
	}
	return chunks, nil
}

func formatChunks(chunks []bgzfio.Chunk) string {
	var parts []string
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("%s-%s", c.Start, c.End))
	}
	return strings.Join(parts, ",")
}
