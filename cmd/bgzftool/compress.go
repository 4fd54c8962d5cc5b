package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cschin/go-bgzip/internal/bgzfio"
)

// runCompress implements "bgzftool compress <input> -o <output> [-block-size N] [-level N]".
func runCompress(args []string) error {
	fs := newFlagSet("compress")
	output := fs.String("o", "", "output file (required)")
	blockSize := fs.Int("block-size", bgzfio.DefaultCompressBlockUnit, "uncompressed bytes per block")
	level := fs.Int("level", -1, "DEFLATE compression level (-1 for default)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("compress: exactly one input file is required")
	}
	if *output == "" {
		return fmt.Errorf("compress: -o is required")
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

	w := bgzfio.NewWriterWithBlockSize(out, *level, *blockSize)
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("compressing: %v", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing output: %v", err)
	}
	return nil
}
