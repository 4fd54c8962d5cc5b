package tabix

import "errors"

// ErrNotTabix is returned when the index data does not start with the
// "TBI\x01" magic.
var ErrNotTabix = errors.New("tabix: not a tabix index")

// ErrOutOfIndex is returned when a requested reference id, or a linear
// index bucket derived from a start position, falls outside the index.
var ErrOutOfIndex = errors.New("tabix: out of index")

// ErrUnsupported names index formats this package does not implement
// decoding for (currently: SAM mode). Read does not return it: a SAM-mode
// index is parsed and reported through Index.SAMMode, and internal/scanner
// rejects SAM-mode records with its own scanner.ErrUnsupported.
var ErrUnsupported = errors.New("tabix: unsupported format")
