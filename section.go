package bch

import "fmt"

// section identifies which file section a relocated pointer lives in
// or resolves into. The relocation table stores these as 4-bit codes.
type section uint8

const (
	sectionContents section = iota
	sectionStrings
	sectionCommands
	sectionCommandsSrc
	sectionRawData
	sectionRawDataTexture
	sectionRawDataVertex
	sectionRawDataIndex16
	sectionRawDataIndex8
	sectionRawExt
	sectionRawExtTexture
	sectionRawExtVertex
	sectionRawExtIndex16
	sectionRawExtIndex8
	sectionBaseAddress
)

// UnknownSectionError reports a section code outside the 15 defined
// values.
type UnknownSectionError uint8

func (e UnknownSectionError) Error() string {
	return fmt.Sprintf("bch: unknown section code %d", uint8(e))
}

// sectionOf decodes a 4-bit section code.
func sectionOf(v uint8) (section, error) {
	if v > uint8(sectionBaseAddress) {
		return 0, UnknownSectionError(v)
	}
	return section(v), nil
}

func (s section) String() string {
	switch s {
	case sectionContents:
		return "contents"
	case sectionStrings:
		return "strings"
	case sectionCommands:
		return "commands"
	case sectionCommandsSrc:
		return "commands source"
	case sectionRawData:
		return "raw data"
	case sectionRawDataTexture:
		return "raw data texture"
	case sectionRawDataVertex:
		return "raw data vertex"
	case sectionRawDataIndex16:
		return "raw data index16"
	case sectionRawDataIndex8:
		return "raw data index8"
	case sectionRawExt:
		return "raw ext"
	case sectionRawExtTexture:
		return "raw ext texture"
	case sectionRawExtVertex:
		return "raw ext vertex"
	case sectionRawExtIndex16:
		return "raw ext index16"
	case sectionRawExtIndex8:
		return "raw ext index8"
	case sectionBaseAddress:
		return "base address"
	default:
		return "unknown"
	}
}

// base maps a section to its start address in the blob. The commands
// and raw-data families share their section's base; the 16-bit index
// variants carry a marker in the high bit that survives into the
// relocated pointer.
func (s section) base(h *Header) uint32 {
	switch s {
	case sectionContents:
		return uint32(h.ContentsAddress)
	case sectionStrings:
		return uint32(h.StringsAddress)
	case sectionCommands, sectionCommandsSrc:
		return uint32(h.CommandsAddress)
	case sectionRawData, sectionRawDataTexture, sectionRawDataVertex, sectionRawDataIndex8:
		return uint32(h.RawDataAddress)
	case sectionRawDataIndex16:
		return uint32(h.RawDataAddress) | 1<<31
	case sectionRawExt, sectionRawExtTexture, sectionRawExtVertex, sectionRawExtIndex8:
		return uint32(h.RawExtAddress)
	case sectionRawExtIndex16:
		return uint32(h.RawExtAddress) | 1<<31
	default: // sectionBaseAddress
		return 0
	}
}
