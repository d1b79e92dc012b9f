package bch

import "fmt"

// Vertex is one decoded vertex. Position is scaled and offset, and
// normal and tangent are scaled, per the mesh's shader uniforms. UV
// and color attributes are not decoded: UV0-UV2 stay zero and
// DiffuseColor stays 0xFFFFFFFF. Nodes and Weights come from the face
// group's node list, not from the attribute layout.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Tangent  [3]float32
	UV0      [2]float32
	UV1      [2]float32
	UV2      [2]float32
	Nodes    []int32
	Weights  []float32

	// DiffuseColor is packed RGBA, 0xFFFFFFFF when absent.
	DiffuseColor uint32
}

// Object is one mesh: a named ordered vertex sequence plus the
// attribute availability its layout declared.
type Object struct {
	Name           string
	Vertices       []Vertex
	MaterialID     uint16
	RenderPriority uint16
	Visible        bool

	HasNormal  bool
	HasTangent bool
	HasColor   bool
	HasNodes   bool
	HasWeights bool
	UVCount    int
}

// Model is an ordered sequence of meshes sharing one world transform.
type Model struct {
	Name           string
	Meshes         []Object
	WorldTransform [4][3]float32
}

// SkinningMode is a face group's vertex skinning scheme.
type SkinningMode uint16

const (
	SkinningNone SkinningMode = iota
	SkinningSmooth
	SkinningRigid
)

// InvalidSkinningError reports a face group with an unknown skinning
// mode value.
type InvalidSkinningError uint16

func (e InvalidSkinningError) Error() string {
	return fmt.Sprintf("bch: invalid skinning mode %d", uint16(e))
}

func skinningModeOf(v uint16) (SkinningMode, error) {
	if v > uint16(SkinningRigid) {
		return 0, InvalidSkinningError(v)
	}
	return SkinningMode(v), nil
}

func (m SkinningMode) String() string {
	switch m {
	case SkinningNone:
		return "none"
	case SkinningSmooth:
		return "smooth"
	case SkinningRigid:
		return "rigid"
	default:
		return fmt.Sprintf("skinning(%d)", uint16(m))
	}
}
