// Copyright 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bgzfio provides support for reading and writing BGZF (Blocked
// GZip Format) files: virtual file offsets, the per-block framing, and
// sequential, parallel, and buffered-writer I/O on top of it.
package bgzfio

import (
	"fmt"
	"strconv"
)

// LastAddress is the maximum valid BGZF virtual file offset.
const LastAddress = Address(0xffffffffffffffff)

// MaximumBlockSize is the maximum size of a single BGZF block, compressed
// or uncompressed.
const MaximumBlockSize = 65536

// Address stores a BGZF virtual file offset. The lower 16 bits store the
// data offset inside the block's uncompressed payload and the upper 48
// bits store the byte offset of the block within the compressed stream.
type Address uint64

// BlockOffset returns the offset to the start of the compressed block.
func (v Address) BlockOffset() uint64 {
	return uint64(v >> 16)
}

// DataOffset returns the offset to the data in the uncompressed block.
func (v Address) DataOffset() uint16 {
	return uint16(v & 0xffff)
}

// String returns a representation of v that can be parsed with ParseAddress.
func (v Address) String() string {
	return strconv.FormatUint(uint64(v), 16)
}

// ParseAddress attempts to parse input into an Address.
func ParseAddress(input string) (Address, error) {
	v, err := strconv.ParseUint(input, 16, 64)
	return Address(v), err
}

// NewAddress packs a block offset and an in-block data offset into a
// virtual file offset. This is the vfo_pack operation; BlockOffset and
// DataOffset together are its inverse.
func NewAddress(blockOffset uint64, dataOffset uint16) Address {
	return Address(blockOffset<<16 | uint64(dataOffset))
}

// Chunk specifies a half-open-by-convention region from Start to End inside
// a BGZF file, expressed as virtual file offsets. Chunks compare and sort
// numerically, which matches lexicographic order on (block offset, data
// offset).
type Chunk struct {
	Start, End Address
}

// String returns a human readable description of the receiver.
func (c Chunk) String() string {
	return fmt.Sprintf("[%s-%s]", c.Start, c.End)
}
