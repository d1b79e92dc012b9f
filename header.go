package bch

import (
	"fmt"

	"github.com/deepteams/bch/internal/binio"
)

// headerMagic is the NUL-terminated signature at offset 0.
const headerMagic = "BCH"

// InvalidMagicError reports a file whose signature is not "BCH".
// The value is the string actually found.
type InvalidMagicError string

func (e InvalidMagicError) Error() string {
	return fmt.Sprintf("bch: invalid magic %q", string(e))
}

// Header is the fixed-layout record at the start of every BCH file.
// The six section addresses partition the file; the relocation section
// drives the pointer rewrite pass.
type Header struct {
	BackwardCompat   uint8
	ForwardCompat    uint8
	ConverterVersion uint16

	ContentsAddress   int32
	StringsAddress    int32
	CommandsAddress   int32
	RawDataAddress    int32
	RawExtAddress     int32
	RelocationAddress int32

	ContentsLength   int32
	StringsLength    int32
	CommandsLength   int32
	RawDataLength    int32
	RawExtLength     int32
	RelocationLength int32

	UninitDataLength     int32
	UninitCommandsLength int32

	Flags        uint8
	AddressCount uint16
}

// Version returns the format version byte.
func (h *Header) Version() uint8 { return h.BackwardCompat }

// parseHeader reads the file header at the cursor.
func parseHeader(r *binio.Reader) (*Header, error) {
	magic, err := r.CString("magic")
	if err != nil {
		return nil, err
	}
	if magic != headerMagic {
		return nil, InvalidMagicError(magic)
	}

	var h Header
	if h.BackwardCompat, err = r.U8("backward compatibility"); err != nil {
		return nil, err
	}
	if h.ForwardCompat, err = r.U8("forward compatibility"); err != nil {
		return nil, err
	}
	if h.ConverterVersion, err = r.U16("converter version"); err != nil {
		return nil, err
	}

	addrs := []*int32{
		&h.ContentsAddress, &h.StringsAddress, &h.CommandsAddress,
		&h.RawDataAddress, &h.RawExtAddress, &h.RelocationAddress,
		&h.ContentsLength, &h.StringsLength, &h.CommandsLength,
		&h.RawDataLength, &h.RawExtLength, &h.RelocationLength,
		&h.UninitDataLength, &h.UninitCommandsLength,
	}
	for _, p := range addrs {
		if *p, err = r.I32("section address"); err != nil {
			return nil, err
		}
	}

	if h.Flags, err = r.U8("flags"); err != nil {
		return nil, err
	}
	r.PadTo(2)
	if h.AddressCount, err = r.U16("address count"); err != nil {
		return nil, err
	}
	return &h, nil
}
