// Package bch provides a pure Go reader for the BCH container format,
// the "H3D" binary asset package used by 3DS-era games.
//
// A BCH file stores its pointers relative to the section they resolve
// into. Decoding runs in three layers: a relocation pass rewrites
// every listed pointer into an absolute offset, a structured traversal
// walks the content directory and model records over the relocated
// blob, and a PICA200 command-stream interpreter (package pica)
// recovers each mesh's vertex layout, scaling uniforms, and index
// buffer from the embedded GPU register-write programs.
//
// The package surfaces geometry: meshes of typed vertices with
// position, normal, and tangent decoded and scaled. Materials,
// textures, skeletons, and animations are located but not decoded.
//
// Basic usage:
//
//	f, err := bch.Decode(reader)
//	for _, model := range f.Models {
//		for _, mesh := range model.Meshes {
//			// mesh.Vertices, grouped in consecutive triples
//		}
//	}
//
// Package export writes decoded models as Wavefront OBJ or DXF.
package bch
