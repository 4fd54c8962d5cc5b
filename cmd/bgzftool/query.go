package main

import (
	"fmt"
	"os"

	"github.com/cschin/go-bgzip/internal/bgzfio"
	"github.com/cschin/go-bgzip/internal/scanner"
	"github.com/cschin/go-bgzip/internal/tabix"
)

// runQuery implements "bgzftool query <file> -ref <name> -start N -end N [-by-start]",
// driving internal/scanner directly and printing matching records to
// stdout. It exercises the Tabix + scanner path from the CLI.
func runQuery(args []string) error {
	fs := newFlagSet("query")
	reference := fs.String("ref", "", "reference sequence name (required)")
	start := fs.Uint64("start", 0, "interval start, 0-based")
	end := fs.Uint64("end", 0, "interval end, exclusive")
	byStart := fs.Bool("by-start", false, "match on record start position falling in the window, instead of overlap")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("query: exactly one data file is required")
	}
	if *reference == "" {
		return fmt.Errorf("query: -ref is required")
	}

	dataPath := fs.Arg(0)
	dataFile, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("opening data file: %v", err)
	}
	defer dataFile.Close()

	indexFile, err := os.Open(dataPath + ".tbi")
	if err != nil {
		return fmt.Errorf("opening index file: %v", err)
	}
	defer indexFile.Close()

	idx, err := tabix.Read(indexFile)
	if err != nil {
		return fmt.Errorf("parsing index: %v", err)
	}

	rid, ok := idx.Name2RID(*reference)
	if !ok {
		return fmt.Errorf("unknown reference %q", *reference)
	}

	reader, err := bgzfio.NewReader(dataFile)
	if err != nil {
		return fmt.Errorf("opening BGZF stream: %v", err)
	}

	sc := scanner.NewScanner(reader, idx, idx, scanner.Format{
		ColSeq:    idx.ColSeq,
		ColBeg:    idx.ColBeg,
		ColEnd:    idx.ColEnd,
		Meta:      byte(idx.Meta),
		ZeroBased: idx.ZeroBased,
		VCFMode:   idx.VCFMode,
		SAMMode:   idx.SAMMode,
	})

	if *byStart {
		err = sc.FetchStart(rid, *start, *end)
	} else {
		err = sc.Fetch(rid, *start, *end)
	}
	if err != nil {
		return fmt.Errorf("fetching region: %v", err)
	}

	for {
		record, ok, err := sc.Read()
		if err != nil {
			return fmt.Errorf("scanning: %v", err)
		}
		if !ok {
			break
		}
		os.Stdout.Write(record.Line)
	}
	return nil
}
