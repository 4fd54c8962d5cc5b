// Command bgzftool drives the BGZF/Tabix library from the command line:
// decompressing and compressing BGZF streams, running indexed region
// queries, and serving them over HTTP.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("bgzftool: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "decompress":
		err = runDecompress(os.Args[2:])
	case "compress":
		err = runCompress(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "bgzftool: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bgzftool <command> [arguments]

commands:
  decompress <input> -o <output> [-@ threads] [-profile cpu|mem]
  compress   <input> -o <output> [-block-size N] [-level N]
  query      <file> -ref <name> -start N -end N [-by-start]
  serve      -addr :8080 -dir <path>`)
}

// newFlagSet returns a FlagSet for the named subcommand that exits on parse
// errors and uses the flag package's default usage output.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs
}
