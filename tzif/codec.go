package tzif

import (
	"fmt"
	"io"
)

// Block pairs one Header with the data block decoded using it.
type Block struct {
	Header Header
	Data   DataBlock
}

// ReadBlock reads one header and its data block from r, selecting the
// time value width from the version the header itself announces. Either
// failure aborts the pair; no partial Block is returned.
func ReadBlock(r io.Reader) (Block, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Block{}, fmt.Errorf("read header: %w", err)
	}
	d, err := ReadDataBlock(r, h)
	if err != nil {
		return Block{}, fmt.Errorf("read data block: %w", err)
	}
	return Block{Header: h, Data: d}, nil
}

// File represents a decoded TZif file.
type File struct {
	// V1 is the version 1 block every file starts with. Its header
	// always carries version V1, regardless of what the file announced.
	V1 Block

	// V2 is the version 2+ block, or nil if the file does not carry one
	// that decodes cleanly.
	V2 *Block

	// Footer is the TZ string footer following the version 2+ block, or
	// nil if none could be read.
	Footer *Footer
}

// Decode reads a TZif file from r.
//
// The first block's data is always read with four-octet time values, no
// matter which version its header announces: files in the wild keep the
// legacy block in the 32-bit layout even though the header octet carries
// the file's overall version, so that octet cannot be trusted for the
// first data block. Failure to read the first block is fatal.
//
// A second block is then attempted using its own header's version. If
// anything about it fails - missing signature, short read - the decode
// still succeeds with V2 left nil. A footer is attached the same way,
// best effort, after a successful second block.
func Decode(r io.Reader) (File, error) {
	var f File
	h, err := ReadHeader(r)
	if err != nil {
		return f, fmt.Errorf("read v1 header: %w", err)
	}
	h.Version = V1
	d, err := ReadDataBlock(r, h)
	if err != nil {
		return f, fmt.Errorf("read v1 data block: %w", err)
	}
	f.V1 = Block{Header: h, Data: d}

	if b, err := ReadBlock(r); err == nil {
		f.V2 = &b
		if ft, err := ReadFooter(r); err == nil {
			f.Footer = &ft
		}
	}
	return f, nil
}
