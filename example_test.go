package bch

import (
	"bytes"
	"fmt"
)

func ExampleDecode() {
	f, err := Decode(bytes.NewReader(buildSingleMesh()))
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, model := range f.Models {
		for _, mesh := range model.Meshes {
			fmt.Printf("%s/%s: %d vertices\n", model.Name, mesh.Name, len(mesh.Vertices))
		}
	}
	// Output: scene/tri: 3 vertices
}

func ExampleGetInfo() {
	info, err := GetInfo(bytes.NewReader(buildSingleMesh()))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("models=%d meshes=%d vertices=%d\n",
		info.ModelCount, info.MeshCount, info.VertexCount)
	// Output: models=1 meshes=1 vertices=3
}
