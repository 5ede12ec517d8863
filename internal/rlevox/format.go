package rlevox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Wire constants for RLEVOX version 1. The header is little-endian with 44
// meaningful bytes, zero-padded to HeaderSize so later versions can grow
// the header without breaking readers that honor header_size.
const (
	Magic    = "STVX"
	Version  = 1
	Encoding = "RLE1"

	// HeaderSize is the payload offset written by this implementation.
	HeaderSize = 64

	fixedHeaderLen = 44
	runRecordLen   = 4
	maxRunLen      = math.MaxUint16
)

// Decode error taxonomy. Decode wraps these with position detail.
var (
	ErrBadMagic            = errors.New("rlevox: bad magic")
	ErrUnsupportedVersion  = errors.New("rlevox: unsupported version")
	ErrUnsupportedEncoding = errors.New("rlevox: unsupported encoding")
	ErrUnexpectedEOF       = errors.New("rlevox: unexpected end of stream")
	ErrInvalidRun          = errors.New("rlevox: invalid zero-length run")
	ErrRowLengthMismatch   = errors.New("rlevox: row length mismatch")
	ErrInvalidDimensions   = errors.New("rlevox: invalid dimensions")
)

// header is the decoded fixed portion of an RLEVOX header.
type header struct {
	Version    uint16
	HeaderSize uint16
	DimX       uint32
	DimY       uint32
	DimZ       uint32
	VoxelSize  float32
	Origin     [3]float32
}

// encodeHeader writes the version-1 header for the field into a fresh
// HeaderSize-byte buffer.
func encodeHeader(f *Field) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], Version)
	binary.LittleEndian.PutUint16(buf[6:8], HeaderSize)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(f.Grid.DimX))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(f.Grid.DimY))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(f.Grid.DimZ))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(f.VoxelSize))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(f.Origin[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(f.Origin[1]))
	binary.LittleEndian.PutUint32(buf[32:36], math.Float32bits(f.Origin[2]))
	copy(buf[36:40], Encoding)
	// buf[40:44] reserved, buf[44:] padding; both already zero.
	return buf
}

// decodeHeader validates magic, version, and encoding tag and returns the
// parsed header. The payload begins at header.HeaderSize, which may exceed
// fixedHeaderLen when a newer writer carried extra header fields.
func decodeHeader(data []byte) (header, error) {
	var h header
	if len(data) < fixedHeaderLen {
		return h, fmt.Errorf("%w: %d-byte input shorter than %d-byte header", ErrUnexpectedEOF, len(data), fixedHeaderLen)
	}
	if string(data[0:4]) != Magic {
		return h, fmt.Errorf("%w: got %q, expected %q", ErrBadMagic, data[0:4], Magic)
	}
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	if h.Version != Version {
		return h, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, h.Version, Version)
	}
	h.HeaderSize = binary.LittleEndian.Uint16(data[6:8])
	if int(h.HeaderSize) < fixedHeaderLen {
		return h, fmt.Errorf("%w: header_size %d smaller than fixed header", ErrUnexpectedEOF, h.HeaderSize)
	}
	if int(h.HeaderSize) > len(data) {
		return h, fmt.Errorf("%w: header_size %d beyond %d-byte input", ErrUnexpectedEOF, h.HeaderSize, len(data))
	}
	h.DimX = binary.LittleEndian.Uint32(data[8:12])
	h.DimY = binary.LittleEndian.Uint32(data[12:16])
	h.DimZ = binary.LittleEndian.Uint32(data[16:20])
	h.VoxelSize = math.Float32frombits(binary.LittleEndian.Uint32(data[20:24]))
	h.Origin[0] = math.Float32frombits(binary.LittleEndian.Uint32(data[24:28]))
	h.Origin[1] = math.Float32frombits(binary.LittleEndian.Uint32(data[28:32]))
	h.Origin[2] = math.Float32frombits(binary.LittleEndian.Uint32(data[32:36]))
	if string(data[36:40]) != Encoding {
		return h, fmt.Errorf("%w: got %q, expected %q", ErrUnsupportedEncoding, data[36:40], Encoding)
	}
	// data[40:44] is reserved and ignored on read.
	return h, nil
}
