package gltfscene

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/justinwol/xplane-obj8/pkg/obj8"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestConvertHierarchy(t *testing.T) {
	doc := &gltf.Document{
		Scenes: []*gltf.Scene{{Name: "fuselage", Nodes: []uint32{0}}},
		Nodes: []*gltf.Node{
			{
				Name:        "body",
				Translation: [3]float32{1, 2, 3},
				Rotation:    [4]float32{0, 0, 0, 1},
				Scale:       [3]float32{1, 1, 1},
				Children:    []uint32{1},
			},
			{
				Name:     "tail",
				Rotation: [4]float32{0, 0, 0, 1},
				Scale:    [3]float32{1, 1, 1},
			},
		},
	}

	scene, err := Convert(doc)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if scene.Name != "fuselage" {
		t.Errorf("scene name = %q", scene.Name)
	}
	if len(scene.Root.Children) != 1 {
		t.Fatalf("expected 1 root child, got %d", len(scene.Root.Children))
	}

	body := scene.Root.Children[0]
	if body.Name != "body" {
		t.Errorf("node name = %q", body.Name)
	}
	// A glTF translation (x, y, z) lands at scene (x, -z, y).
	if want := (mgl32.Vec3{1, -3, 2}); body.Translation != want {
		t.Errorf("translation = %v, want %v", body.Translation, want)
	}
	if len(body.Children) != 1 || body.Children[0].Name != "tail" {
		t.Errorf("children not carried through: %+v", body.Children)
	}
	if body.Kind != obj8.NodeGroup {
		t.Errorf("meshless node should be a group, got %v", body.Kind)
	}
}

func TestConvertRotationAxisRemap(t *testing.T) {
	// 90 degrees about the glTF up axis must become 90 degrees about the
	// scene up axis (Z).
	s := float32(math.Sqrt2 / 2)
	doc := &gltf.Document{
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
		Nodes: []*gltf.Node{
			{
				Name:     "spinner",
				Rotation: [4]float32{0, s, 0, s},
				Scale:    [3]float32{1, 1, 1},
			},
		},
	}

	scene, err := Convert(doc)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	q := scene.Root.Children[0].Rotation
	if !approx(q.W, s) || !approx(q.V.X(), 0) || !approx(q.V.Y(), 0) || !approx(q.V.Z(), s) {
		t.Errorf("rotation = %v, want axis Z with w=%v", q, s)
	}
}

func TestConvertScaleAxisSwap(t *testing.T) {
	doc := &gltf.Document{
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
		Nodes: []*gltf.Node{
			{
				Name:     "box",
				Rotation: [4]float32{0, 0, 0, 1},
				Scale:    [3]float32{2, 3, 4},
			},
		},
	}

	scene, err := Convert(doc)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if want := (mgl32.Vec3{2, 4, 3}); scene.Root.Children[0].Scale != want {
		t.Errorf("scale = %v, want %v", scene.Root.Children[0].Scale, want)
	}
}

func TestConvertNodeCycleRejected(t *testing.T) {
	doc := &gltf.Document{
		Scenes: []*gltf.Scene{{Nodes: []uint32{0}}},
		Nodes: []*gltf.Node{
			{Name: "a", Children: []uint32{1}},
			{Name: "b", Children: []uint32{0}},
		},
	}

	if _, err := Convert(doc); err == nil {
		t.Fatal("cyclic node hierarchy must be rejected")
	} else if !strings.Contains(err.Error(), "more than once") {
		t.Errorf("unexpected error: %v", err)
	}
}
