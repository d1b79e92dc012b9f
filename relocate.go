package bch

import (
	"encoding/binary"
	"errors"
)

// ErrRelocationBounds reports a relocation table or pointer rewrite
// that reaches past the end of the file.
var ErrRelocationBounds = errors.New("bch: relocation points outside file")

// Relocation entry bit layout.
const (
	relocPtrMask    = 0x1FFFFFF // bits [24:0]: pointer address
	relocTargetBits = 25        // bits [28:25]: target section
	relocSourceBits = 29        // bits [31:29]: source section
)

// relocate rewrites every section-relative pointer named by the
// relocation table into an absolute file offset, in place. BCH stores
// pointers relative to their destination section; after this pass
// downstream readers treat every pointer as an absolute position.
func relocate(h *Header, blob []byte) error {
	tableBase := int64(h.RelocationAddress)
	for i := int64(0); i < int64(h.RelocationLength)/4; i++ {
		pos := tableBase + i*4
		if pos < 0 || pos+4 > int64(len(blob)) {
			return ErrRelocationBounds
		}
		entry := binary.LittleEndian.Uint32(blob[pos:])

		ptr := entry & relocPtrMask
		target, err := sectionOf(uint8(entry >> relocTargetBits & 0xF))
		if err != nil {
			return err
		}
		source, err := sectionOf(uint8(entry >> relocSourceBits & 0xF))
		if err != nil {
			return err
		}

		// Pointers into the string section are byte offsets; all
		// others are stored in u32 units.
		if target != sectionStrings {
			ptr <<= 2
		}

		if err := accumulate32(blob, source.base(h)+ptr, target.base(h)); err != nil {
			return err
		}
	}
	return nil
}

// accumulate32 adds delta to the little-endian u32 at addr.
func accumulate32(blob []byte, addr, delta uint32) error {
	a := int64(addr)
	if a+4 > int64(len(blob)) {
		return ErrRelocationBounds
	}
	v := binary.LittleEndian.Uint32(blob[a:])
	binary.LittleEndian.PutUint32(blob[a:], v+delta)
	return nil
}
