package geometry

import (
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func (m *Mesh) ExportGLTFDefault(name string) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	attributes := make(map[string]uint32)

	positions := make([][3]float32, m.VertexCount)
	for i := range positions {
		copy(positions[i][:], m.Vertices[i*3:i*3+3])
	}
	attributes["POSITION"] = modeler.WritePosition(doc, positions)

	indicesAccessor := modeler.WriteIndices(doc, m.Indices)

	if m.Normals != nil {
		normals := make([][3]float32, m.VertexCount)
		for i := range normals {
			copy(normals[i][:], m.Normals[i*3:i*3+3])
		}
		attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
	}

	for iLayer := range m.UVMaps {
		uvs := make([][2]float32, m.VertexCount)
		for i := range uvs {
			copy(uvs[i][:], m.UVMaps[iLayer].UVs[i*2:i*2+2])
		}
		attributes[fmt.Sprintf("TEXCOORD_%d", iLayer)] = modeler.WriteTextureCoord(doc, uvs)
	}

	doc.Materials = append(doc.Materials, &gltf.Material{
		Name:        "default",
		DoubleSided: true,
	})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{
			{
				Indices:    gltf.Index(indicesAccessor),
				Attributes: attributes,
				Material:   gltf.Index(0),
			},
		},
	})

	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})

	return doc, nil
}

func ExportGLTFBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
