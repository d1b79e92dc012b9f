package pica

import "fmt"

// Attribute is a vertex-shader input semantic, as encoded in the
// 4-bit slots of the main attribute permutation registers.
type Attribute uint8

const (
	Position Attribute = iota
	Normal
	Tangent
	Color
	TextureCoordinate0
	TextureCoordinate1
	TextureCoordinate2
	BoneIndex
	BoneWeight
	UserAttribute0
	UserAttribute1
	UserAttribute2
	UserAttribute3
	UserAttribute4
	UserAttribute5
	UserAttribute6
	UserAttribute7
	UserAttribute8
	UserAttribute9
	UserAttribute10
	UserAttribute11
	Interleave
	Quantity
)

// UnknownAttributeError reports a permutation slot value outside the
// defined attribute range.
type UnknownAttributeError uint8

func (e UnknownAttributeError) Error() string {
	return fmt.Sprintf("pica: unknown vertex attribute %d", uint8(e))
}

// attributeOf decodes a permutation slot value.
func attributeOf(v uint8) (Attribute, error) {
	if v > uint8(Quantity) {
		return 0, UnknownAttributeError(v)
	}
	return Attribute(v), nil
}

func (a Attribute) String() string {
	switch {
	case a == Position:
		return "position"
	case a == Normal:
		return "normal"
	case a == Tangent:
		return "tangent"
	case a == Color:
		return "color"
	case a >= TextureCoordinate0 && a <= TextureCoordinate2:
		return fmt.Sprintf("texture coordinate %d", a-TextureCoordinate0)
	case a == BoneIndex:
		return "bone index"
	case a == BoneWeight:
		return "bone weight"
	case a >= UserAttribute0 && a <= UserAttribute11:
		return fmt.Sprintf("user attribute %d", a-UserAttribute0)
	case a == Interleave:
		return "interleave"
	case a == Quantity:
		return "quantity"
	default:
		return fmt.Sprintf("attribute(%d)", uint8(a))
	}
}

// FormatType is the scalar element type of an attribute vector.
type FormatType uint8

const (
	SignedByte FormatType = iota
	UnsignedByte
	SignedShort
	Single
)

func (t FormatType) String() string {
	switch t {
	case SignedByte:
		return "s8"
	case UnsignedByte:
		return "u8"
	case SignedShort:
		return "s16"
	case Single:
		return "f32"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Format describes one attribute's storage: element type and declared
// component count. A declared length of 0 still reads four scalars;
// see Snapshot.AttributeFormats.
type Format struct {
	Type   FormatType
	Length uint32
}

// IndexFormat is the element width of an index buffer.
type IndexFormat uint8

const (
	Index8 IndexFormat = iota
	Index16
)

func (f IndexFormat) String() string {
	if f == Index16 {
		return "u16"
	}
	return "u8"
}
