package scanner

import "errors"

// ErrParseRecord is returned when a tab-delimited record's position
// columns cannot be parsed as expected (too few fields, non-numeric
// coordinate text).
var ErrParseRecord = errors.New("scanner: malformed record")

// ErrUnsupported is returned when an index describes a format this
// scanner cannot interpret coordinates for (currently: SAM mode, whose
// CIGAR-derived end position this package does not compute).
var ErrUnsupported = errors.New("scanner: unsupported index format")
