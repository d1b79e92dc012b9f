package bch

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/deepteams/bch/internal/binio"
	"github.com/deepteams/bch/pica"
)

// ErrNoFaces reports a mesh descriptor with zero face groups. Such
// files exist in principle but no converter output with one has been
// observed, so the walk refuses them instead of guessing a layout.
var ErrNoFaces = errors.New("bch: object has no face groups")

// UniformUnderflowError reports a float uniform bank with fewer
// values than the vertex pipeline needs.
type UniformUnderflowError string

func (e UniformUnderflowError) Error() string {
	return fmt.Sprintf("bch: uniform bank too short for %s", string(e))
}

// Face-group records in the faces header are 0x34 bytes apart; the
// inner command stream reference sits at +0x2C.
const (
	faceRecordSize      = 0x34
	faceCommandsAt      = 0x2C
	uniformPositionBank = 6
	uniformScaleBank    = 7
)

// objectEntry is one per-mesh descriptor from the model's vertices
// dict.
type objectEntry struct {
	MaterialID     uint16
	Flags          uint16
	NodeID         uint16
	RenderPriority uint16

	CommandsOffset    uint32
	CommandsWordCount uint32

	FacesHeaderOffset  uint32
	FacesHeaderEntries uint32

	ExtraCommandsOffset     uint32
	ExtraCommandsWordCounts uint32

	CenterVector [3]float32

	FlagsOffset       uint32
	BoundingBoxOffset uint32
}

func parseObjectEntry(r *binio.Reader) (*objectEntry, error) {
	var e objectEntry
	var err error
	if e.MaterialID, err = r.U16("material id"); err != nil {
		return nil, err
	}
	if e.Flags, err = r.U16("object flags"); err != nil {
		return nil, err
	}
	if e.NodeID, err = r.U16("node id"); err != nil {
		return nil, err
	}
	if e.RenderPriority, err = r.U16("render priority"); err != nil {
		return nil, err
	}
	if e.CommandsOffset, err = r.U32("attributes commands offset"); err != nil {
		return nil, err
	}
	if e.CommandsWordCount, err = r.U32("attributes commands word count"); err != nil {
		return nil, err
	}
	if e.FacesHeaderOffset, err = r.U32("faces header offset"); err != nil {
		return nil, err
	}
	if e.FacesHeaderEntries, err = r.U32("faces header entries"); err != nil {
		return nil, err
	}
	if e.ExtraCommandsOffset, err = r.U32("extra attributes commands offset"); err != nil {
		return nil, err
	}
	if e.ExtraCommandsWordCounts, err = r.U32("extra attributes commands word counts"); err != nil {
		return nil, err
	}
	for i := range e.CenterVector {
		if e.CenterVector[i], err = r.F32("center vector"); err != nil {
			return nil, err
		}
	}
	if e.FlagsOffset, err = r.U32("object flags offset"); err != nil {
		return nil, err
	}
	magic, err := r.U32("object null magic")
	if err != nil {
		return nil, err
	}
	if magic != 0 {
		return nil, NullMagicError(magic)
	}
	if e.BoundingBoxOffset, err = r.U32("bounding box offset"); err != nil {
		return nil, err
	}
	return &e, nil
}

// popUniform takes the last value off a bank slice, reversing the
// stream append order: BCH metadata is laid out so consumers pull the
// last-declared value first.
func popUniform(bank *[]float32, what string) (float32, error) {
	b := *bank
	if len(b) == 0 {
		return 0, UniformUnderflowError(what)
	}
	v := b[len(b)-1]
	*bank = b[:len(b)-1]
	return v, nil
}

// attrScales is the bank-7 uniform set, in pop order.
type attrScales struct {
	texture0   float32
	texture1   float32
	texture2   float32
	boneWeight float32
	position   float32
	normal     float32
	tangent    float32
	color      float32
}

func popScales(bank []float32) (attrScales, error) {
	var s attrScales
	for _, p := range []struct {
		dst  *float32
		what string
	}{
		{&s.texture0, "texture 0 scale"},
		{&s.texture1, "texture 1 scale"},
		{&s.texture2, "texture 2 scale"},
		{&s.boneWeight, "bone weight scale"},
		{&s.position, "position scale"},
		{&s.normal, "normal scale"},
		{&s.tangent, "tangent scale"},
		{&s.color, "color scale"},
	} {
		v, err := popUniform(&bank, p.what)
		if err != nil {
			return s, err
		}
		*p.dst = v
	}
	return s, nil
}

// readAttrVector decodes one typed attribute vector at the cursor:
// always four scalars, whatever the declared length (max(length, 3)+1,
// and a declared length is at most 3). Every scalar read is kept;
// components past the declared width are not zeroed.
func readAttrVector(r *binio.Reader, format pica.Format) ([4]float32, error) {
	var out [4]float32
	n := format.Length
	if n < 3 {
		n = 3
	}
	for i := uint32(0); i <= n && i < 4; i++ {
		var v float32
		var err error
		switch format.Type {
		case pica.SignedByte:
			var b int8
			b, err = r.I8("s8 vector member")
			v = float32(b)
		case pica.UnsignedByte:
			var b uint8
			b, err = r.U8("u8 vector member")
			v = float32(b)
		case pica.SignedShort:
			var b int16
			b, err = r.I16("s16 vector member")
			v = float32(b)
		case pica.Single:
			v, err = r.F32("f32 vector member")
		}
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

// faceGroup is one decoded faces-header record: skinning, the node
// list, and the index buffer parameters from the inner command
// stream.
type faceGroup struct {
	skinning   SkinningMode
	nodes      []uint16
	idxAddress uint32
	idxFormat  pica.IndexFormat
	idxTotal   uint32
}

func readFaceGroup(r *binio.Reader, ent *objectEntry, n uint32) (faceGroup, error) {
	var fg faceGroup
	base := int64(ent.FacesHeaderOffset) + int64(n)*faceRecordSize
	r.Seek(base)

	rawMode, err := r.U16("skinning mode")
	if err != nil {
		return fg, err
	}
	if fg.skinning, err = skinningModeOf(rawMode); err != nil {
		return fg, err
	}
	nodeEntries, err := r.U16("node id entries")
	if err != nil {
		return fg, err
	}
	for i := uint16(0); i < nodeEntries; i++ {
		id, err := r.U16("node entry")
		if err != nil {
			return fg, err
		}
		fg.nodes = append(fg.nodes, id)
	}

	r.Seek(base + faceCommandsAt)
	cmdOffset, err := r.U32("face commands offset")
	if err != nil {
		return fg, err
	}
	cmdWords, err := r.U32("face commands word count")
	if err != nil {
		return fg, err
	}

	r.Seek(int64(cmdOffset))
	idx, err := pica.Decode(r, cmdWords)
	if err != nil {
		return fg, fmt.Errorf("bch: face commands: %w", err)
	}
	fg.idxAddress = idx.IndexBufferAddress()
	fg.idxFormat = idx.IndexBufferFormat()
	fg.idxTotal = idx.IndexBufferTotal()
	return fg, nil
}

// readObject materializes one mesh: decode the layout command stream,
// pop the scaling uniforms, then walk each face group's index buffer
// through the attribute arrays.
func readObject(r *binio.Reader, ent *objectEntry, names []string) (Object, error) {
	obj := Object{
		MaterialID:     ent.MaterialID,
		RenderPriority: ent.RenderPriority,
		Visible:        true,
	}
	if int(ent.NodeID) < len(names) {
		obj.Name = names[ent.NodeID]
	} else {
		obj.Name = "mesh" + strconv.Itoa(int(ent.NodeID))
	}

	r.Seek(int64(ent.CommandsOffset))
	layout, err := pica.Decode(r, ent.CommandsWordCount)
	if err != nil {
		return obj, fmt.Errorf("bch: attributes commands: %w", err)
	}

	posBank := layout.FloatUniform[uniformPositionBank]
	var positionOffset [4]float32
	for i := range positionOffset {
		if positionOffset[i], err = popUniform(&posBank, "position offset"); err != nil {
			return obj, err
		}
	}
	scales, err := popScales(layout.FloatUniform[uniformScaleBank])
	if err != nil {
		return obj, err
	}

	if ent.FacesHeaderEntries == 0 {
		return obj, ErrNoFaces
	}

	bufferOffset := layout.AttrBufferOffset(0)
	bufferStride := layout.AttrBufferStride(0)
	totalAttrs := layout.AttrTotal(0)
	mainPermutation, err := layout.MainPermutation()
	if err != nil {
		return obj, fmt.Errorf("bch: attribute permutation: %w", err)
	}
	permutation := layout.AttrPermutation(0)
	formats := layout.AttributeFormats()

	for f := uint32(0); f < ent.FacesHeaderEntries; f++ {
		fg, err := readFaceGroup(r, ent, f)
		if err != nil {
			return obj, err
		}

		// Availability scan. The break at the first texture
		// coordinate reproduces observed converter behavior; slots
		// past it are still decoded per-vertex below.
	scan:
		for slot := uint32(0); slot < totalAttrs; slot++ {
			switch mainPermutation[permutation[slot]] {
			case pica.Normal:
				obj.HasNormal = true
			case pica.Tangent:
				obj.HasTangent = true
			case pica.Color:
				obj.HasColor = true
			case pica.TextureCoordinate0:
				obj.UVCount = max(obj.UVCount, 1)
				break scan
			case pica.TextureCoordinate1:
				obj.UVCount = max(obj.UVCount, 2)
				break scan
			case pica.TextureCoordinate2:
				obj.UVCount = max(obj.UVCount, 3)
				break scan
			}
		}
		if len(fg.nodes) > 0 {
			obj.HasNodes = true
			obj.HasWeights = true
		}

		r.Seek(int64(fg.idxAddress))
		for i := uint32(0); i < fg.idxTotal; i++ {
			var index uint16
			switch fg.idxFormat {
			case pica.Index8:
				b, err := r.U8("vertex index")
				if err != nil {
					return obj, err
				}
				index = uint16(b)
			case pica.Index16:
				if index, err = r.U16("vertex index"); err != nil {
					return obj, err
				}
			}

			after := r.Pos()
			r.Seek(int64(bufferOffset) + int64(index)*int64(bufferStride))

			vertex := Vertex{DiffuseColor: 0xFFFFFFFF}
			for slot := uint32(0); slot < totalAttrs; slot++ {
				attr := mainPermutation[permutation[slot]]
				format := formats[permutation[slot]]
				if attr == pica.BoneWeight {
					format.Type = pica.UnsignedByte
				}

				vec, err := readAttrVector(r, format)
				if err != nil {
					return obj, err
				}

				switch attr {
				case pica.Position:
					vertex.Position = [3]float32{
						vec[0]*scales.position + positionOffset[0],
						vec[1]*scales.position + positionOffset[1],
						vec[2]*scales.position + positionOffset[2],
					}
				case pica.Normal:
					vertex.Normal = [3]float32{
						vec[0] * scales.normal,
						vec[1] * scales.normal,
						vec[2] * scales.normal,
					}
				case pica.Tangent:
					vertex.Tangent = [3]float32{
						vec[0] * scales.tangent,
						vec[1] * scales.tangent,
						vec[2] * scales.tangent,
					}
				}
			}

			if len(vertex.Nodes) == 0 && len(fg.nodes) <= 4 {
				for _, n := range fg.nodes {
					vertex.Nodes = append(vertex.Nodes, int32(n))
				}
				if len(vertex.Weights) == 0 {
					vertex.Weights = append(vertex.Weights, 1.0)
				}
			}
			if fg.skinning != SkinningSmooth && len(vertex.Nodes) > 0 && len(vertex.Weights) == 0 {
				vertex.Weights = append(vertex.Weights, 1.0)
			}

			obj.Vertices = append(obj.Vertices, vertex)
			r.Seek(after)
		}
	}

	return obj, nil
}
