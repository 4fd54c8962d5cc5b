package bgzfio

import "errors"

// ErrMalformedBlock is returned when a BGZF block's framing is invalid: bad
// magic, a missing "BC" extra subfield, a truncated frame, or a CRC/ISIZE
// mismatch against the decoded payload.
var ErrMalformedBlock = errors.New("bgzfio: malformed block")

// ErrInvalidVFO is returned by Seek when the data offset of a virtual file
// offset is at or past the ISIZE of the block it names.
var ErrInvalidVFO = errors.New("bgzfio: invalid virtual file offset")
