package rlevox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Encode serializes a field to RLEVOX bytes. It fails only on a nil or
// malformed field; for any valid field the output is deterministic.
//
// Rows are emitted for z in [0,DimZ), then y in [0,DimY), each encoded as
// maximal runs along x. A run longer than 65535 cells is split into
// consecutive records of the same value whose lengths sum to the true run.
func Encode(f *Field) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the RLEVOX encoding of the field to w.
func EncodeTo(w io.Writer, f *Field) error {
	if f == nil || f.Grid == nil {
		return errors.New("rlevox: nil field")
	}
	g := f.Grid
	if g.DimX < 1 || g.DimY < 1 || g.DimZ < 1 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, g.DimX, g.DimY, g.DimZ)
	}
	if uint64(g.DimX) > math.MaxUint32 || uint64(g.DimY) > math.MaxUint32 || uint64(g.DimZ) > math.MaxUint32 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, g.DimX, g.DimY, g.DimZ)
	}
	if _, err := w.Write(encodeHeader(f)); err != nil {
		return err
	}
	var rec [runRecordLen]byte
	for z := 0; z < g.DimZ; z++ {
		for y := 0; y < g.DimY; y++ {
			x := 0
			for x < g.DimX {
				value := g.At(x, y, z)
				runLen := 1
				for x+runLen < g.DimX && g.At(x+runLen, y, z) == value {
					runLen++
				}
				x += runLen
				for runLen > 0 {
					chunk := runLen
					if chunk > maxRunLen {
						chunk = maxRunLen
					}
					binary.LittleEndian.PutUint16(rec[0:2], uint16(chunk))
					rec[2] = 0
					if value {
						rec[2] = 1
					}
					rec[3] = 0 // flags
					if _, err := w.Write(rec[:]); err != nil {
						return err
					}
					runLen -= chunk
				}
			}
		}
	}
	return nil
}

// Decode parses RLEVOX bytes into a field. The payload is read from the
// offset declared by header_size, not from a hard-coded header length, so
// streams from writers with extended headers still decode.
//
// Errors: ErrBadMagic, ErrUnsupportedVersion, ErrUnsupportedEncoding for a
// foreign or newer stream; ErrUnexpectedEOF for truncation; ErrInvalidRun
// for a zero-length run; ErrRowLengthMismatch when a row's runs do not sum
// to exactly dim_x.
func Decode(data []byte) (*Field, error) {
	h, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	dimX, dimY, dimZ := int(h.DimX), int(h.DimY), int(h.DimZ)
	if dimX < 1 || dimY < 1 || dimZ < 1 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, dimX, dimY, dimZ)
	}
	payload := data[h.HeaderSize:]

	// Bound allocation by what the payload could possibly describe: each
	// run record covers at most maxRunLen cells. A declared grid larger
	// than that is truncated input, caught before allocating cells.
	maxCells := uint64(len(payload)/runRecordLen) * maxRunLen
	planes := uint64(dimX) * uint64(dimY)
	if planes > maxCells/uint64(dimZ) {
		return nil, fmt.Errorf("%w: payload too short for %dx%dx%d grid", ErrUnexpectedEOF, dimX, dimY, dimZ)
	}

	grid, err := NewGrid(dimX, dimY, dimZ)
	if err != nil {
		return nil, err
	}
	pos := 0
	for z := 0; z < dimZ; z++ {
		for y := 0; y < dimY; y++ {
			x := 0
			for x < dimX {
				if pos+runRecordLen > len(payload) {
					return nil, fmt.Errorf("%w: at z=%d y=%d x=%d", ErrUnexpectedEOF, z, y, x)
				}
				runLen := int(binary.LittleEndian.Uint16(payload[pos : pos+2]))
				value := payload[pos+2]
				pos += runRecordLen // byte 3 is flags, ignored
				if runLen == 0 {
					return nil, fmt.Errorf("%w: at z=%d y=%d", ErrInvalidRun, z, y)
				}
				if x+runLen > dimX {
					return nil, fmt.Errorf("%w: at z=%d y=%d: got %d, expected %d", ErrRowLengthMismatch, z, y, x+runLen, dimX)
				}
				if value == 1 {
					for i := x; i < x+runLen; i++ {
						grid.Set(i, y, z, true)
					}
				}
				x += runLen
			}
		}
	}
	return &Field{Grid: grid, VoxelSize: h.VoxelSize, Origin: h.Origin}, nil
}

// DecodeFrom reads the full stream from r and decodes it.
func DecodeFrom(r io.Reader) (*Field, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
