package bch

import (
	"fmt"

	"github.com/deepteams/bch/internal/binio"
)

// NullMagicError reports a non-zero value where the format requires a
// zero word.
type NullMagicError uint32

func (e NullMagicError) Error() string {
	return fmt.Sprintf("bch: null magic holds %#x", uint32(e))
}

// NullNameError reports a required name reference that was null.
type NullNameError string

func (e NullNameError) Error() string {
	return fmt.Sprintf("bch: null pointer to %s name", string(e))
}

// modelHeader is the per-model metadata record. The materials and
// skeletons dicts are parsed for position but not walked; only the
// vertices dict feeds the mesh pipeline.
type modelHeader struct {
	Flags                      uint8
	SkeletonScalingType        uint8
	SilhouetteMaterialEntries  uint16
	WorldTransform             [4][3]float32
	Materials                  referenceDict
	Vertices                   referenceDict
	Skeletons                  referenceDict
	ObjectNodeVisibilityOffset uint32
	ObjectNodeCount            uint32
	Name                       string
	ObjectNodeNameEntries      uint32
	ObjectNodeNameOffsets      uint32
	MetaDataPointerOffset      uint32
}

func parseModelHeader(r *binio.Reader) (*modelHeader, error) {
	var h modelHeader
	var err error
	if h.Flags, err = r.U8("model flags"); err != nil {
		return nil, err
	}
	if h.SkeletonScalingType, err = r.U8("skeleton scaling type"); err != nil {
		return nil, err
	}
	if h.SilhouetteMaterialEntries, err = r.U16("silhouette material entries"); err != nil {
		return nil, err
	}
	for col := range h.WorldTransform {
		for row := 0; row < 3; row++ {
			if h.WorldTransform[col][row], err = r.F32("world transform"); err != nil {
				return nil, err
			}
		}
	}
	if h.Materials, err = parseReferenceDict(r, "materials"); err != nil {
		return nil, err
	}
	if h.Vertices, err = parseReferenceDict(r, "vertices"); err != nil {
		return nil, err
	}
	r.Skip(0x24) // unknown
	if h.Skeletons, err = parseReferenceDict(r, "skeletons"); err != nil {
		return nil, err
	}
	if h.ObjectNodeVisibilityOffset, err = r.U32("object node visibility offset"); err != nil {
		return nil, err
	}
	if h.ObjectNodeCount, err = r.U32("object node count"); err != nil {
		return nil, err
	}
	name, ok, err := r.RefCString("model name")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NullNameError("model")
	}
	h.Name = name
	if h.ObjectNodeNameEntries, err = r.U32("object node name entries"); err != nil {
		return nil, err
	}
	if h.ObjectNodeNameOffsets, err = r.U32("object node name offsets"); err != nil {
		return nil, err
	}
	magic, err := r.U32("model null magic")
	if err != nil {
		return nil, err
	}
	if magic != 0 {
		return nil, NullMagicError(magic)
	}
	if h.MetaDataPointerOffset, err = r.U32("meta data pointer offset"); err != nil {
		return nil, err
	}
	return &h, nil
}

// parseModel reads one model record at the cursor: header, object
// name table, object entries, then the per-mesh vertex walk.
func parseModel(r *binio.Reader) (Model, error) {
	header, err := parseModelHeader(r)
	if err != nil {
		return Model{}, fmt.Errorf("bch: model header: %w", err)
	}

	// Object-node name table: a 12-byte header, then 12-byte entries
	// whose last word references the name string.
	r.Seek(int64(header.ObjectNodeNameOffsets))
	r.Skip(12)
	names := make([]string, 0, min(header.ObjectNodeNameEntries, 4096))
	for i := uint32(0); i < header.ObjectNodeNameEntries; i++ {
		r.Skip(8)
		name, ok, err := r.RefCString("object name")
		if err != nil {
			return Model{}, fmt.Errorf("bch: object name: %w", err)
		}
		if !ok {
			return Model{}, NullNameError("object")
		}
		names = append(names, name)
	}

	r.Seek(int64(header.Vertices.PointerTableOffset))
	entries, err := binio.Vector(r, header.Vertices.PointerTableEntries, parseObjectEntry)
	if err != nil {
		return Model{}, fmt.Errorf("bch: object entries: %w", err)
	}

	meshes := make([]Object, 0, len(entries))
	for _, ent := range entries {
		obj, err := readObject(r, ent, names)
		if err != nil {
			return Model{}, err
		}
		meshes = append(meshes, obj)
	}

	// Model metadata and skeletons live past MetaDataPointerOffset and
	// the skeletons dict; neither feeds the vertex pipeline.

	return Model{
		Name:           header.Name,
		Meshes:         meshes,
		WorldTransform: header.WorldTransform,
	}, nil
}
