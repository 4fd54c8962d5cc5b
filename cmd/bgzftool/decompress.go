package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"

	"github.com/cschin/go-bgzip/internal/bgzfio"
)

// runDecompress implements "bgzftool decompress <input> -o <output> [-@ threads] [-profile cpu|mem]".
// Grounded on the reference decompress CLI's -@/--thread flag
// (original_source/examples/decompress.rs): a thread count of 0 or 1
// selects the sequential bgzfio.Reader, anything higher selects
// bgzfio.ParallelReader.
func runDecompress(args []string) error {
	fs := newFlagSet("decompress")
	output := fs.String("o", "", "output file (required)")
	threads := fs.Int("@", 1, "number of decompression worker goroutines")
	profileMode := fs.String("profile", "", "enable profiling: cpu or mem")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("decompress: exactly one input file is required")
	}
	if *output == "" {
		return fmt.Errorf("decompress: -o is required")
	}

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	default:
		return fmt.Errorf("decompress: unknown -profile mode %q", *profileMode)
	}

	in, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("opening input: %v", err)
	}
	defer in.Close()

	out, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating output: %v", err)
	}
	defer out.Close()

	var reader io.Reader
	if *threads <= 1 {
		reader, err = bgzfio.NewReader(in)
		if err != nil {
			return fmt.Errorf("opening BGZF stream: %v", err)
		}
	} else {
		pr := bgzfio.NewParallelReader(in, *threads)
		defer pr.Close()
		reader = pr
	}

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("decompressing: %v", err)
	}
	return nil
}
