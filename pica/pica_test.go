package pica

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/bch/internal/binio"
)

// words encodes a command stream as little-endian u32s.
func words(ws ...uint32) *binio.Reader {
	buf := make([]byte, 4*len(ws))
	for i, w := range ws {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return binio.NewReader(buf)
}

// hdr builds a packet header word.
func hdr(id uint16, mask, extra uint32, consecutive bool) uint32 {
	h := uint32(id) | mask<<16 | extra<<20
	if consecutive {
		h |= 1 << 31
	}
	return h
}

const blockEnd = 0x23D

func f32(v float32) uint32 { return math.Float32bits(v) }

func TestSingleWrite(t *testing.T) {
	// S3: one full-mask write, then BlockEnd.
	s, err := Decode(words(
		0x12345678, hdr(0x1, 0xF, 0, false),
		0, hdr(blockEnd, 0xF, 0, false),
	), 4)
	require.NoError(t, err)
	require.Equal(t, uint32(0x12345678), s.Regs[0x1])
}

func TestMaskedWriteFormula(t *testing.T) {
	// The retained portion masks only the low nibble; sequences of
	// partial writes must match the cumulative formula exactly.
	writes := []struct {
		mask, data uint32
	}{
		{0xF, 0xDEADBEEF},
		{0x3, 0x00000051},
		{0x0, 0xFFFFFFFF},
		{0x5, 0x12345678},
	}
	var stream []uint32
	var want uint32
	for _, w := range writes {
		stream = append(stream, w.data, hdr(0x42, w.mask, 0, false))
		want = want&(^w.mask&0xF) | w.data&(0xFFFFFFF0|w.mask)
	}
	stream = append(stream, 0, hdr(blockEnd, 0xF, 0, false))

	s, err := Decode(words(stream...), uint32(len(stream)))
	require.NoError(t, err)
	require.Equal(t, want, s.Regs[0x42])
}

func TestBlockEndFirst(t *testing.T) {
	// A stream whose first packet is BlockEnd writes that register
	// and nothing else.
	s, err := Decode(words(0xABCD0000, hdr(blockEnd, 0xF, 0, false)), 2)
	require.NoError(t, err)
	require.Equal(t, uint32(0xABCD0000), s.Regs[blockEnd])
	for i, bank := range s.FloatUniform {
		require.Empty(t, bank, "uniform bank %d", i)
	}
}

func TestWordCountTermination(t *testing.T) {
	// No BlockEnd: decoding stops once wordCount words are consumed,
	// leaving trailing data unread.
	r := words(
		7, hdr(0x10, 0xF, 0, false),
		0xEEEEEEEE, 0xEEEEEEEE,
	)
	s, err := Decode(r, 2)
	require.NoError(t, err)
	require.Equal(t, uint32(7), s.Regs[0x10])
	require.Equal(t, int64(8), r.Pos())
}

func TestUniformAppendOrder(t *testing.T) {
	// S4: config(6) then four data packets; the bank preserves
	// stream order, consumers pop from the tail.
	s, err := Decode(words(
		6, hdr(0x2C0, 0xF, 0, false),
		f32(1.0), hdr(0x2C1, 0xF, 0, false),
		f32(2.0), hdr(0x2C1, 0xF, 0, false),
		f32(3.0), hdr(0x2C1, 0xF, 0, false),
		f32(4.0), hdr(0x2C1, 0xF, 0, false),
		0, hdr(blockEnd, 0xF, 0, false),
	), 12)
	require.NoError(t, err)
	require.Equal(t, []float32{1.0, 2.0, 3.0, 4.0}, s.FloatUniform[6])
}

func TestUniformBurst(t *testing.T) {
	// A single packet with extra parameters streams into the uniform
	// buffer; without the consecutive bit the id stays put.
	s, err := Decode(words(
		6, hdr(0x2C0, 0xF, 0, false),
		f32(1.0), hdr(0x2C1, 0xF, 3, false),
		f32(2.0), f32(3.0), f32(4.0),
		// The burst left the cursor 4-aligned only; one filler word
		// realigns to 8.
		0xEEEEEEEE,
		0, hdr(blockEnd, 0xF, 0, false),
	), 8)
	require.NoError(t, err)
	require.Equal(t, []float32{1.0, 2.0, 3.0, 4.0}, s.FloatUniform[6])
}

func TestConsecutiveWriting(t *testing.T) {
	s, err := Decode(words(
		0x11, hdr(0x100, 0xF, 2, true),
		0x22, 0x33,
		0, hdr(blockEnd, 0xF, 0, false),
	), 6)
	require.NoError(t, err)
	require.Equal(t, uint32(0x11), s.Regs[0x100])
	require.Equal(t, uint32(0x22), s.Regs[0x101])
	require.Equal(t, uint32(0x33), s.Regs[0x102])
}

func TestAlignmentAfterPacket(t *testing.T) {
	// After every packet the cursor must sit on an 8-byte boundary.
	r := words(
		0x11, hdr(0x100, 0xF, 1, true), 0x22, // 3 words
		0xEEEEEEEE, // filler
		0x55, hdr(0x200, 0xF, 0, false),
	)
	s, err := Decode(r, 5)
	require.NoError(t, err)
	require.Zero(t, r.Pos()&7)
	require.Equal(t, uint32(0x55), s.Regs[0x200])
}

func TestUndefinedUniform(t *testing.T) {
	_, err := Decode(words(f32(1.0), hdr(0x2C1, 0xF, 0, false)), 2)
	require.ErrorIs(t, err, ErrUndefinedUniform)
}

func TestUnimplementedLUT(t *testing.T) {
	_, err := Decode(words(0, hdr(0x1C8, 0xF, 0, false)), 2)
	require.ErrorIs(t, err, ErrUnimplementedLUT)

	// Also reached through a consecutive burst.
	_, err = Decode(words(0, hdr(0x1C7, 0xF, 1, true), 0), 3)
	require.ErrorIs(t, err, ErrUnimplementedLUT)
}

func TestTruncatedStream(t *testing.T) {
	_, err := Decode(words(0x11), 4)
	require.Error(t, err)
}

func TestIndexBufferAccessors(t *testing.T) {
	var s Snapshot
	s.Regs[regIndexConfig] = 0x80001234
	s.Regs[regIndexCount] = 33
	require.Equal(t, uint32(0x1234), s.IndexBufferAddress())
	require.Equal(t, Index16, s.IndexBufferFormat())
	require.Equal(t, uint32(33), s.IndexBufferTotal())

	s.Regs[regIndexConfig] = 0x00005678
	require.Equal(t, uint32(0x5678), s.IndexBufferAddress())
	require.Equal(t, Index8, s.IndexBufferFormat())
}

func TestAttrBufferAccessors(t *testing.T) {
	var s Snapshot
	s.Regs[0x203] = 0x8000                       // array 0 offset
	s.Regs[0x205] = 2<<28 | 12<<16 | 0x0010      // array 0: total 2, stride 12, perm high
	s.Regs[0x204] = 0x00000021                   // array 0 perm low
	s.Regs[0x206] = 0x9000                       // array 1 offset
	s.Regs[0x208] = 1<<28 | 20<<16               // array 1: total 1, stride 20
	require.Equal(t, uint32(0x8000), s.AttrBufferOffset(0))
	require.Equal(t, uint8(12), s.AttrBufferStride(0))
	require.Equal(t, uint32(2), s.AttrTotal(0))
	require.Equal(t, uint32(0x9000), s.AttrBufferOffset(1))
	require.Equal(t, uint8(20), s.AttrBufferStride(1))
	require.Equal(t, uint32(1), s.AttrTotal(1))

	perm := s.AttrPermutation(0)
	require.Len(t, perm, permutationSlots)
	require.Equal(t, uint8(1), perm[0])
	require.Equal(t, uint8(2), perm[1])
	require.Equal(t, uint8(1), perm[9]) // second nibble of the 0x205 low half
}

func TestMainPermutation(t *testing.T) {
	var s Snapshot
	s.Regs[regVSHPermLow] = 0x00004210
	attrs, err := s.MainPermutation()
	require.NoError(t, err)
	require.Len(t, attrs, permutationSlots)
	require.Equal(t, Position, attrs[0])
	require.Equal(t, Normal, attrs[1])
	require.Equal(t, Tangent, attrs[2])
	require.Equal(t, TextureCoordinate0, attrs[3])
	require.Equal(t, Position, attrs[4])
}

func TestAttributeFormats(t *testing.T) {
	var s Snapshot
	// nibble 0: Single with length 2 -> 0b1011; nibble 1: s16 length 1 -> 0b0110.
	s.Regs[regAttrFormatLow] = 0x6B
	formats := s.AttributeFormats()
	require.Len(t, formats, permutationSlots)
	require.Equal(t, Format{Type: Single, Length: 2}, formats[0])
	require.Equal(t, Format{Type: SignedShort, Length: 1}, formats[1])
	require.Equal(t, Format{Type: SignedByte, Length: 0}, formats[2])
}
