package bch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/deepteams/bch/internal/binio"
)

// writeHeader encodes h in file layout, the inverse of parseHeader.
func writeHeader(h *Header) []byte {
	var buf bytes.Buffer
	buf.WriteString("BCH\x00")
	buf.WriteByte(h.BackwardCompat)
	buf.WriteByte(h.ForwardCompat)
	le := binary.LittleEndian
	binary.Write(&buf, le, h.ConverterVersion)
	for _, v := range []int32{
		h.ContentsAddress, h.StringsAddress, h.CommandsAddress,
		h.RawDataAddress, h.RawExtAddress, h.RelocationAddress,
		h.ContentsLength, h.StringsLength, h.CommandsLength,
		h.RawDataLength, h.RawExtLength, h.RelocationLength,
		h.UninitDataLength, h.UninitCommandsLength,
	} {
		binary.Write(&buf, le, v)
	}
	buf.WriteByte(h.Flags)
	buf.WriteByte(0) // alignment pad before address count
	binary.Write(&buf, le, h.AddressCount)
	return buf.Bytes()
}

func TestHeaderRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		want := Header{
			BackwardCompat:       uint8(rng.Intn(256)),
			ForwardCompat:        uint8(rng.Intn(256)),
			ConverterVersion:     uint16(rng.Intn(1 << 16)),
			ContentsAddress:      rng.Int31(),
			StringsAddress:       rng.Int31(),
			CommandsAddress:      rng.Int31(),
			RawDataAddress:       rng.Int31(),
			RawExtAddress:        rng.Int31(),
			RelocationAddress:    rng.Int31(),
			ContentsLength:       rng.Int31(),
			StringsLength:        rng.Int31(),
			CommandsLength:       rng.Int31(),
			RawDataLength:        rng.Int31(),
			RawExtLength:         rng.Int31(),
			RelocationLength:     rng.Int31(),
			UninitDataLength:     rng.Int31(),
			UninitCommandsLength: rng.Int31(),
			Flags:                uint8(rng.Intn(256)),
			AddressCount:         uint16(rng.Intn(1 << 16)),
		}
		got, err := parseHeader(binio.NewReader(writeHeader(&want)))
		if err != nil {
			t.Fatal(err)
		}
		if *got != want {
			t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", *got, want)
		}
	}
}

func TestHeaderInvalidMagic(t *testing.T) {
	data := writeHeader(&Header{})
	for _, b := range []byte{'X', 'b', 0x01, 0xFF} {
		corrupt := append([]byte(nil), data...)
		corrupt[0] = b
		_, err := parseHeader(binio.NewReader(corrupt))
		var magicErr InvalidMagicError
		if !errors.As(err, &magicErr) {
			t.Fatalf("byte %#x: got %v, want InvalidMagicError", b, err)
		}
	}
}

func TestHeaderTruncated(t *testing.T) {
	data := writeHeader(&Header{ConverterVersion: 42})
	for _, n := range []int{0, 1, 3, 4, 7, 20, len(data) - 1} {
		_, err := parseHeader(binio.NewReader(data[:n]))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("truncated at %d: got %v, want unexpected EOF", n, err)
		}
	}
}

func TestHeaderVersion(t *testing.T) {
	h := Header{BackwardCompat: 33}
	if h.Version() != 33 {
		t.Fatalf("Version = %d", h.Version())
	}
}
