package bch

import (
	"fmt"

	"github.com/deepteams/bch/internal/binio"
)

// referenceDict is one table-of-contents entry: an array of N items
// addressed through a pointer table at PointerTableOffset, with a
// parallel name structure at NameOffset.
type referenceDict struct {
	PointerTableOffset  uint32
	PointerTableEntries uint32
	NameOffset          uint32
}

func parseReferenceDict(r *binio.Reader, category string) (referenceDict, error) {
	var d referenceDict
	var err error
	if d.PointerTableOffset, err = r.U32("pointer table offset"); err != nil {
		return d, fmt.Errorf("bch: %s dict: %w", category, err)
	}
	if d.PointerTableEntries, err = r.U32("pointer table entries"); err != nil {
		return d, fmt.Errorf("bch: %s dict: %w", category, err)
	}
	if d.NameOffset, err = r.U32("name offset"); err != nil {
		return d, fmt.Errorf("bch: %s dict: %w", category, err)
	}
	return d, nil
}

// contentHeader is the 15-entry table of contents at ContentsAddress,
// one referenceDict per asset category. Only models is consumed by
// the vertex pipeline.
type contentHeader struct {
	Models               referenceDict
	Materials            referenceDict
	Shaders              referenceDict
	Textures             referenceDict
	MaterialsLUT         referenceDict
	Lights               referenceDict
	Cameras              referenceDict
	Fogs                 referenceDict
	SkeletalAnimations   referenceDict
	MaterialAnimations   referenceDict
	VisibilityAnimations referenceDict
	LightAnimation       referenceDict
	CameraAnimation      referenceDict
	FogAnimation         referenceDict
	Scene                referenceDict
}

func parseContentHeader(r *binio.Reader) (*contentHeader, error) {
	var c contentHeader
	for _, e := range []struct {
		dst      *referenceDict
		category string
	}{
		{&c.Models, "models"},
		{&c.Materials, "materials"},
		{&c.Shaders, "shaders"},
		{&c.Textures, "textures"},
		{&c.MaterialsLUT, "materials lut"},
		{&c.Lights, "lights"},
		{&c.Cameras, "cameras"},
		{&c.Fogs, "fogs"},
		{&c.SkeletalAnimations, "skeletal animations"},
		{&c.MaterialAnimations, "material animations"},
		{&c.VisibilityAnimations, "visibility animations"},
		{&c.LightAnimation, "light animation"},
		{&c.CameraAnimation, "camera animation"},
		{&c.FogAnimation, "fog animation"},
		{&c.Scene, "scene"},
	} {
		d, err := parseReferenceDict(r, e.category)
		if err != nil {
			return nil, err
		}
		*e.dst = d
	}
	return &c, nil
}
