// Package pica interprets PICA200 command streams embedded in BCH
// mesh records. A stream is a register-write program; running it
// produces a register-file snapshot whose side effects describe the
// mesh's vertex layout, scaling uniforms, and index buffer.
package pica

import (
	"errors"
	"fmt"
	"math"

	"github.com/deepteams/bch/internal/binio"
)

// Command ids with decoder side effects. Every other id is a plain
// register write.
const (
	cmdBlockEnd      = 0x23D
	cmdUniformConfig = 0x2C0 // vertex shader float uniform config
	cmdUniformData   = 0x2C1 // vertex shader float uniform data
	cmdLUTData       = 0x1C8 // fragment shader lookup table data
)

// Registers the layout accessors read back.
const (
	regAttrFormatLow  = 0x201
	regAttrFormatHigh = 0x202
	regAttrArrayBase  = 0x203 // +3n: offset, permutation low, config
	regIndexConfig    = 0x227
	regIndexCount     = 0x228
	regVSHPermLow     = 0x2BB
	regVSHPermHigh    = 0x2BC
)

// permutationSlots is how many 4-bit slots the permutation and format
// accessors unpack. The hardware exposes 23 attribute slots, but the
// two 32-bit permutation registers carry 16 and observed files never
// index past that.
const permutationSlots = 16

// Errors returned by the decoder.
var (
	// ErrUndefinedUniform reports uniform data arriving before any
	// uniform config selected a bank.
	ErrUndefinedUniform = errors.New("pica: uniform data before uniform config")

	// ErrUnimplementedLUT reports a fragment-shader lookup-table
	// write, which the vertex pipeline does not decode.
	ErrUnimplementedLUT = errors.New("pica: fragment shader lookup table data not implemented")
)

// Snapshot is the decoded output of one command stream: the full
// register file, the fragment-shader LUT, and the per-index float
// uniform banks. Uniform values append in stream order; consumers pop
// from the tail (the metadata is laid out last-declared first).
type Snapshot struct {
	Regs         [0x10000]uint32
	LUT          [256]float32
	FloatUniform [96][]float32
}

// Decode interprets wordCount little-endian u32 words at the cursor.
// Decoding stops early at a BlockEnd command. After every command
// packet the stream realigns to an 8-byte boundary by discarding
// filler words; filler does not count toward wordCount.
func Decode(r *binio.Reader, wordCount uint32) (*Snapshot, error) {
	s := &Snapshot{}
	var (
		wordsRead      uint32
		currentUniform = -1
		uniform        []float32
	)

decode:
	for wordsRead < wordCount {
		data, err := r.U32("command parameter")
		if err != nil {
			return nil, fmt.Errorf("pica: %w", err)
		}
		header, err := r.U32("command header")
		if err != nil {
			return nil, fmt.Errorf("pica: %w", err)
		}
		wordsRead += 2

		id := uint16(header & 0xFFFF)
		mask := header >> 16 & 0xF
		extra := header >> 20 & 0x7FF
		consecutive := header&0x80000000 != 0

		// The retained portion masks only the low nibble. This is the
		// observed behavior of converted files and is pinned by tests;
		// PICA documentation describes a per-nibble mask over the full
		// word instead.
		s.Regs[id] = s.Regs[id]&(^mask&0xF) | data&(0xFFFFFFF0|mask)

		switch id {
		case cmdBlockEnd:
			break decode
		case cmdUniformConfig:
			currentUniform = int(data & 0x7FFFFFFF)
		case cmdUniformData:
			uniform = append(uniform, math.Float32frombits(s.Regs[id]))
		case cmdLUTData:
			return nil, ErrUnimplementedLUT
		}

		for i := uint32(0); i < extra; i++ {
			if consecutive {
				id++
			}
			data, err := r.U32("burst parameter")
			if err != nil {
				return nil, fmt.Errorf("pica: %w", err)
			}
			wordsRead++
			s.Regs[id] = s.Regs[id]&(^mask&0xF) | data&(0xFFFFFFF0|mask)

			if id > cmdUniformConfig && id < cmdUniformData+8 {
				uniform = append(uniform, math.Float32frombits(s.Regs[id]))
			} else if id == cmdLUTData {
				return nil, ErrUnimplementedLUT
			}
		}

		if len(uniform) > 0 {
			if currentUniform < 0 {
				return nil, ErrUndefinedUniform
			}
			if currentUniform >= len(s.FloatUniform) {
				return nil, fmt.Errorf("pica: uniform bank %d out of range", currentUniform)
			}
			s.FloatUniform[currentUniform] = append(s.FloatUniform[currentUniform], uniform...)
			uniform = uniform[:0]
		}

		for r.Pos()&7 != 0 {
			if _, err := r.U32("alignment filler"); err != nil {
				return nil, fmt.Errorf("pica: %w", err)
			}
		}
	}

	return s, nil
}

// IndexBufferAddress returns the index buffer's position. After
// relocation this is an absolute file offset; the high bit (the
// 16-bit-index marker the relocator plants) is stripped.
func (s *Snapshot) IndexBufferAddress() uint32 {
	return s.Regs[regIndexConfig] & 0x7FFFFFFF
}

// IndexBufferFormat returns the index element width, taken from the
// relocation marker in the high bit of the index config register.
func (s *Snapshot) IndexBufferFormat() IndexFormat {
	if s.Regs[regIndexConfig]>>31 != 0 {
		return Index16
	}
	return Index8
}

// IndexBufferTotal returns the number of indices to walk.
func (s *Snapshot) IndexBufferTotal() uint32 {
	return s.Regs[regIndexCount]
}

// AttrBufferOffset returns attribute array n's base offset.
func (s *Snapshot) AttrBufferOffset(n int) uint32 {
	return s.Regs[regAttrArrayBase+3*n]
}

// AttrBufferStride returns attribute array n's per-vertex stride in
// bytes.
func (s *Snapshot) AttrBufferStride(n int) uint8 {
	return uint8(s.Regs[regAttrArrayBase+2+3*n] >> 16 & 0xFF)
}

// AttrTotal returns how many attribute slots array n carries.
func (s *Snapshot) AttrTotal(n int) uint32 {
	return s.Regs[regAttrArrayBase+2+3*n] >> 28
}

// AttrPermutation returns attribute array n's slot permutation: for
// each of the 16 slots, an index into the main permutation.
func (s *Snapshot) AttrPermutation(n int) []uint8 {
	perm := uint64(s.Regs[regAttrArrayBase+1+3*n])
	perm |= uint64(s.Regs[regAttrArrayBase+2+3*n]&0xFFFF) << 32
	return unpackNibbles(perm)
}

// MainPermutation returns the vertex shader's input semantics, one
// per slot. A slot value outside the defined attribute range is an
// UnknownAttributeError.
func (s *Snapshot) MainPermutation() ([]Attribute, error) {
	perm := uint64(s.Regs[regVSHPermLow]) | uint64(s.Regs[regVSHPermHigh])<<32
	attrs := make([]Attribute, 0, permutationSlots)
	for _, nib := range unpackNibbles(perm) {
		a, err := attributeOf(nib)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// AttributeFormats returns the per-slot storage formats: element type
// in the low two bits of each nibble, declared length in the high two.
func (s *Snapshot) AttributeFormats() []Format {
	perm := uint64(s.Regs[regAttrFormatLow]) | uint64(s.Regs[regAttrFormatHigh])<<32
	formats := make([]Format, 0, permutationSlots)
	for _, nib := range unpackNibbles(perm) {
		formats = append(formats, Format{
			Type:   FormatType(nib & 0b11),
			Length: uint32(nib >> 2),
		})
	}
	return formats
}

func unpackNibbles(v uint64) []uint8 {
	out := make([]uint8, permutationSlots)
	for i := range out {
		out[i] = uint8(v >> (i * 4) & 0xF)
	}
	return out
}
