package obj8

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAddVertexDedup(t *testing.T) {
	vt := NewVertexTable()

	pos := mgl32.Vec3{1, 2, 3}
	nrm := mgl32.Vec3{0, 1, 0}
	uv := mgl32.Vec2{0.5, 0.5}

	i1, err := vt.AddVertex(pos, nrm, uv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i2, err := vt.AddVertex(pos, nrm, uv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i1 != i2 {
		t.Errorf("identical vertices got indices %d and %d", i1, i2)
	}

	// A difference below output precision still dedups.
	i3, err := vt.AddVertex(mgl32.Vec3{1.0000001, 2, 3}, nrm, uv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i3 != i1 {
		t.Errorf("sub-precision difference created a new entry: %d vs %d", i3, i1)
	}

	// A visible difference does not.
	i4, err := vt.AddVertex(mgl32.Vec3{1.001, 2, 3}, nrm, uv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i4 == i1 {
		t.Error("distinct vertices collapsed to one entry")
	}

	tris, _, _, _ := vt.Counts()
	if tris != 2 {
		t.Errorf("expected 2 VT entries, got %d", tris)
	}
}

func TestAddVertexNormalSplits(t *testing.T) {
	// Same position with different normals stays distinct.
	vt := NewVertexTable()
	pos := mgl32.Vec3{0, 0, 0}
	uv := mgl32.Vec2{}

	i1, _ := vt.AddVertex(pos, mgl32.Vec3{1, 0, 0}, uv)
	i2, _ := vt.AddVertex(pos, mgl32.Vec3{0, 1, 0}, uv)
	if i1 == i2 {
		t.Error("vertices with different normals must not dedup")
	}
}

func TestFinalizeFreezes(t *testing.T) {
	vt := NewVertexTable()
	vt.Finalize()

	if _, err := vt.AddVertex(mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec2{}); !errors.Is(err, ErrState) {
		t.Errorf("AddVertex after Finalize: got %v, want ErrState", err)
	}
	if _, err := vt.AddLineVertex(mgl32.Vec3{}, mgl32.Vec3{}); !errors.Is(err, ErrState) {
		t.Errorf("AddLineVertex after Finalize: got %v, want ErrState", err)
	}
	if _, err := vt.AddLightVertex(mgl32.Vec3{}, mgl32.Vec3{}); !errors.Is(err, ErrState) {
		t.Errorf("AddLightVertex after Finalize: got %v, want ErrState", err)
	}
	if _, _, err := vt.AddIndices([]int{0}); !errors.Is(err, ErrState) {
		t.Errorf("AddIndices after Finalize: got %v, want ErrState", err)
	}
}

func TestAddIndicesRanges(t *testing.T) {
	vt := NewVertexTable()

	s1, e1, err := vt.AddIndices([]int{0, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s1 != 0 || e1 != 3 {
		t.Errorf("first range = [%d, %d), want [0, 3)", s1, e1)
	}

	s2, e2, err := vt.AddIndices([]int{2, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s2 != 3 || e2 != 6 {
		t.Errorf("second range = [%d, %d), want [3, 6)", s2, e2)
	}
}

func TestLightVertexNoDedup(t *testing.T) {
	vt := NewVertexTable()
	i1, _ := vt.AddLightVertex(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 0, 0})
	i2, _ := vt.AddLightVertex(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 0, 0})
	if i1 == i2 {
		t.Error("VLIGHT pool must preserve duplicates")
	}
}

func TestWriteToIndexLayout(t *testing.T) {
	vt := NewVertexTable()
	if _, err := vt.AddVertex(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 1, 0}, mgl32.Vec2{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idx := make([]int, 12)
	if _, _, err := vt.AddIndices(idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vt.Finalize()

	var b strings.Builder
	vt.WriteTo(&b)
	out := b.String()

	wantVT := "VT\t1.000000\t2.000000\t3.000000\t0.000000\t1.000000\t0.000000\t0.000000\t1.000000\n"
	if !strings.Contains(out, wantVT) {
		t.Errorf("output missing VT line %q:\n%s", wantVT, out)
	}

	// 12 indices: one full IDX10 row and a two-entry IDX tail.
	if strings.Count(out, "IDX10\t") != 1 {
		t.Errorf("expected exactly 1 IDX10 row:\n%s", out)
	}
	if strings.Count(out, "\nIDX\t") != 2 {
		t.Errorf("expected exactly 2 IDX tail rows:\n%s", out)
	}
}

func TestCounts(t *testing.T) {
	vt := NewVertexTable()
	vt.AddVertex(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec2{})
	vt.AddLineVertex(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	vt.AddLineVertex(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 1, 1})
	vt.AddLightVertex(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	vt.AddIndices([]int{0, 0, 0})

	tris, lines, lites, indices := vt.Counts()
	if tris != 1 || lines != 2 || lites != 1 || indices != 3 {
		t.Errorf("Counts = (%d, %d, %d, %d), want (1, 2, 1, 3)", tris, lines, lites, indices)
	}
}
