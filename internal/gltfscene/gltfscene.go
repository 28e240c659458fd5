// Package gltfscene imports glTF 2.0 assets as export scenes. glTF shares
// X-Plane's Y-up right-handed convention, so imported geometry passes
// through the inverse of the export mapping to land in scene space and
// round-trips exactly.
//
// The importer carries geometry, hierarchy and basic material state.
// Lights, animations and the file header have no portable glTF encoding
// here; authors set those through a scene file instead.
package gltfscene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/justinwol/xplane-obj8/pkg/coords"
	"github.com/justinwol/xplane-obj8/pkg/obj8"
)

// Load reads a .gltf or .glb file and converts its default scene.
func Load(path string) (*obj8.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	return Convert(doc)
}

// Convert maps a parsed glTF document to an export scene.
func Convert(doc *gltf.Document) (*obj8.Scene, error) {
	name := "scene"
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = int(*doc.Scene)
	}
	if sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("document has no scene %d", sceneIdx)
	}
	src := doc.Scenes[sceneIdx]
	if src.Name != "" {
		name = src.Name
	}

	root := obj8.NewNode(name)
	visited := make(map[int]bool)
	for _, ni := range src.Nodes {
		child, err := convertNode(doc, int(ni), visited)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}
	return &obj8.Scene{Name: name, Root: root}, nil
}

func convertNode(doc *gltf.Document, idx int, visited map[int]bool) (*obj8.SceneNode, error) {
	if idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	// The node graph must be a tree; a repeat means a cycle or shared
	// subtree, either of which would recurse forever.
	if visited[idx] {
		return nil, fmt.Errorf("node %d appears more than once in the hierarchy", idx)
	}
	visited[idx] = true
	src := doc.Nodes[idx]

	name := src.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", idx)
	}
	out := obj8.NewNode(name)
	out.Translation = coords.FromExport(mgl32.Vec3{
		src.Translation[0], src.Translation[1], src.Translation[2],
	})
	out.Rotation = fromExportQuat(src.Rotation)
	// Axis permutation between the spaces carries |scale| through unchanged.
	out.Scale = mgl32.Vec3{src.Scale[0], src.Scale[2], src.Scale[1]}

	if src.Mesh != nil {
		mesh, mat, err := convertMesh(doc, int(*src.Mesh))
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		out.Kind = obj8.NodeMesh
		out.Mesh = mesh
		out.Material = mat
	}

	for _, ci := range src.Children {
		child, err := convertNode(doc, int(ci), visited)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

// convertMesh flattens all primitives of a glTF mesh into one triangle
// soup. Per-primitive materials collapse to the first primitive's; OBJ8
// attribute state is per draw call, not per primitive, so a split would
// need separate nodes anyway.
func convertMesh(doc *gltf.Document, idx int) (*obj8.Mesh, *obj8.Material, error) {
	if idx >= len(doc.Meshes) {
		return nil, nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	src := doc.Meshes[idx]

	mesh := &obj8.Mesh{Kind: obj8.PrimitiveTris}
	var mat *obj8.Material

	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return nil, nil, fmt.Errorf("primitive %d: only triangle meshes are supported", pi)
		}
		posAcc, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return nil, nil, fmt.Errorf("primitive %d has no POSITION attribute", pi)
		}

		positions, err := modeler.ReadPosition(doc, doc.Accessors[posAcc], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("primitive %d positions: %w", pi, err)
		}

		var normals [][3]float32
		if nAcc, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[nAcc], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("primitive %d normals: %w", pi, err)
			}
		}
		var uvs [][2]float32
		if tAcc, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[tAcc], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("primitive %d uvs: %w", pi, err)
			}
		}

		base := len(mesh.Vertices)
		for vi, p := range positions {
			v := obj8.MeshVertex{
				Position: coords.FromExport(mgl32.Vec3{p[0], p[1], p[2]}),
			}
			if vi < len(normals) {
				n := normals[vi]
				v.Normal = coords.FromExport(mgl32.Vec3{n[0], n[1], n[2]})
			}
			if vi < len(uvs) {
				// glTF UV origin is top-left, OBJ8's is bottom-left.
				v.UV = mgl32.Vec2{uvs[vi][0], 1 - uvs[vi][1]}
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		if prim.Indices == nil {
			for i := 0; i < len(positions); i++ {
				mesh.Indices = append(mesh.Indices, base+i)
			}
		} else {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
			for _, i := range indices {
				mesh.Indices = append(mesh.Indices, base+int(i))
			}
		}

		if mat == nil && prim.Material != nil {
			mat = convertMaterial(doc, int(*prim.Material))
		}
	}

	if len(mesh.Indices)%3 != 0 {
		return nil, nil, fmt.Errorf("index count %d is not a multiple of 3", len(mesh.Indices))
	}
	return mesh, mat, nil
}

func convertMaterial(doc *gltf.Document, idx int) *obj8.Material {
	if idx >= len(doc.Materials) {
		return nil
	}
	src := doc.Materials[idx]

	mat := &obj8.Material{TwoSided: src.DoubleSided}
	switch src.AlphaMode {
	case gltf.AlphaOpaque:
		mat.Blend = obj8.BlendOff
		mat.BlendRatio = 0.5
	case gltf.AlphaMask:
		mat.Blend = obj8.BlendOff
		mat.BlendRatio = float32(src.AlphaCutoffOrDefault())
	default:
		mat.Blend = obj8.BlendOn
	}
	return mat
}

// fromExportQuat remaps a glTF rotation quaternion into scene space. The
// basis change is the inverse export rotation applied to the vector part;
// w is invariant under pure rotations.
func fromExportQuat(q [4]float32) mgl32.Quat {
	v := coords.FromExport(mgl32.Vec3{q[0], q[1], q[2]})
	return mgl32.Quat{W: q[3], V: v}
}
