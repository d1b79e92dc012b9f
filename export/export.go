// Package export writes decoded BCH models to interchange formats.
//
// The OBJ emitter produces Wavefront OBJ with one named group per
// mesh. The DXF emitter produces a wireframe drawing. Both treat each
// mesh's vertex sequence as consecutive triangle triples, which is
// how the index walk in package bch flattens geometry.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/yofu/dxf"

	"github.com/deepteams/bch"
)

// OBJ writes f's models as Wavefront OBJ. Vertex positions are always
// emitted; normals and the first UV channel follow the mesh's
// availability flags. Indices in the output are global and 1-based,
// as OBJ requires.
func OBJ(w io.Writer, f *bch.File) error {
	bw := bufio.NewWriter(w)
	base := 1 // OBJ indices are 1-based and file-global
	for _, model := range f.Models {
		for _, mesh := range model.Meshes {
			fmt.Fprintf(bw, "o %s\n", mesh.Name)
			for _, v := range mesh.Vertices {
				fmt.Fprintf(bw, "v %s %s %s\n",
					ftoa(v.Position[0]), ftoa(v.Position[1]), ftoa(v.Position[2]))
			}
			if mesh.HasNormal {
				for _, v := range mesh.Vertices {
					fmt.Fprintf(bw, "vn %s %s %s\n",
						ftoa(v.Normal[0]), ftoa(v.Normal[1]), ftoa(v.Normal[2]))
				}
			}
			if mesh.UVCount > 0 {
				for _, v := range mesh.Vertices {
					fmt.Fprintf(bw, "vt %s %s\n", ftoa(v.UV0[0]), ftoa(v.UV0[1]))
				}
			}
			for t := 0; t+2 < len(mesh.Vertices); t += 3 {
				writeFace(bw, mesh, base+t)
			}
			base += len(mesh.Vertices)
		}
	}
	return bw.Flush()
}

func writeFace(w io.Writer, mesh bch.Object, i int) {
	ref := func(n int) string {
		s := strconv.Itoa(n)
		switch {
		case mesh.UVCount > 0 && mesh.HasNormal:
			return s + "/" + s + "/" + s
		case mesh.UVCount > 0:
			return s + "/" + s
		case mesh.HasNormal:
			return s + "//" + s
		default:
			return s
		}
	}
	fmt.Fprintf(w, "f %s %s %s\n", ref(i), ref(i+1), ref(i+2))
}

// ftoa formats a float the way OBJ consumers expect: shortest
// round-trip decimal, never locale-dependent.
func ftoa(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// DXF writes f's models to path as an ASCII DXF wireframe: each
// triangle's three edges as LINE entities. DXF viewers without mesh
// support still render the shape.
func DXF(path string, f *bch.File) error {
	dwg := dxf.NewDrawing()
	for _, model := range f.Models {
		for _, mesh := range model.Meshes {
			for t := 0; t+2 < len(mesh.Vertices); t += 3 {
				a := mesh.Vertices[t].Position
				b := mesh.Vertices[t+1].Position
				c := mesh.Vertices[t+2].Position
				dwg.Line(float64(a[0]), float64(a[1]), float64(a[2]),
					float64(b[0]), float64(b[1]), float64(b[2]))
				dwg.Line(float64(b[0]), float64(b[1]), float64(b[2]),
					float64(c[0]), float64(c[1]), float64(c[2]))
				dwg.Line(float64(c[0]), float64(c[1]), float64(c[2]),
					float64(a[0]), float64(a[1]), float64(a[2]))
			}
		}
	}
	if err := dwg.SaveAs(path); err != nil {
		return fmt.Errorf("export: saving dxf: %w", err)
	}
	return nil
}
