package main

import (
	"fmt"

	"github.com/cschin/go-bgzip/internal/server"
)

// runServe implements "bgzftool serve -addr :8080 -dir <path>".
func runServe(args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", ":8080", "HTTP listen address")
	dir := fs.String("dir", ".", "directory containing BGZF files and their .tbi indices")
	fs.Parse(args)

	if err := server.Serve(*addr, *dir); err != nil {
		return fmt.Errorf("serve: %v", err)
	}
	return nil
}
