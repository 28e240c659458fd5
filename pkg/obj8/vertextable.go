package obj8

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/justinwol/xplane-obj8/pkg/coords"
)

// VertexTable owns the deduplicated vertex pools of one export: VT entries
// (position, normal, UV), VLINE entries (position, RGB) and VLIGHT entries
// (position, RGB), each with its own index space, plus the global IDX
// stream shared by triangle and line primitives.
//
// Indices are assigned in insertion order and never renumbered. Finalize
// freezes the pools; a later insert is a caller-contract violation and
// returns ErrState.
type VertexTable struct {
	vt     [][8]float32
	vline  [][6]float32
	vlight [][6]float32

	vtIndex    map[[8]float64]int
	vlineIndex map[[6]float64]int

	indices []int

	finalized bool
}

// NewVertexTable returns an empty table ready for inserts.
func NewVertexTable() *VertexTable {
	return &VertexTable{
		vtIndex:    make(map[[8]float64]int),
		vlineIndex: make(map[[6]float64]int),
	}
}

// AddVertex inserts a VT entry (already in export space) and returns its
// index. An entry equal within export precision to an existing one returns
// the existing index.
func (t *VertexTable) AddVertex(pos, normal mgl32.Vec3, uv mgl32.Vec2) (int, error) {
	if t.finalized {
		return 0, fmt.Errorf("%w: AddVertex after Finalize", ErrState)
	}
	entry := [8]float32{
		pos.X(), pos.Y(), pos.Z(),
		normal.X(), normal.Y(), normal.Z(),
		uv.X(), uv.Y(),
	}
	var key [8]float64
	for i, c := range entry {
		key[i] = coords.RoundKey(c)
	}
	if idx, ok := t.vtIndex[key]; ok {
		return idx, nil
	}
	idx := len(t.vt)
	t.vt = append(t.vt, entry)
	t.vtIndex[key] = idx
	return idx, nil
}

// AddLineVertex inserts a VLINE entry and returns its index, deduplicating
// like AddVertex.
func (t *VertexTable) AddLineVertex(pos, color mgl32.Vec3) (int, error) {
	if t.finalized {
		return 0, fmt.Errorf("%w: AddLineVertex after Finalize", ErrState)
	}
	entry := [6]float32{
		pos.X(), pos.Y(), pos.Z(),
		color.X(), color.Y(), color.Z(),
	}
	var key [6]float64
	for i, c := range entry {
		key[i] = coords.RoundKey(c)
	}
	if idx, ok := t.vlineIndex[key]; ok {
		return idx, nil
	}
	idx := len(t.vline)
	t.vline = append(t.vline, entry)
	t.vlineIndex[key] = idx
	return idx, nil
}

// AddLightVertex appends a legacy VLIGHT entry. The old LIGHTS pool is not
// deduplicated; order is the light draw order.
func (t *VertexTable) AddLightVertex(pos, color mgl32.Vec3) (int, error) {
	if t.finalized {
		return 0, fmt.Errorf("%w: AddLightVertex after Finalize", ErrState)
	}
	idx := len(t.vlight)
	t.vlight = append(t.vlight, [6]float32{
		pos.X(), pos.Y(), pos.Z(),
		color.X(), color.Y(), color.Z(),
	})
	return idx, nil
}

// AddIndices appends pool indices to the global IDX stream and returns the
// [start, end) range they occupy.
func (t *VertexTable) AddIndices(idx []int) (start, end int, err error) {
	if t.finalized {
		return 0, 0, fmt.Errorf("%w: AddIndices after Finalize", ErrState)
	}
	start = len(t.indices)
	t.indices = append(t.indices, idx...)
	return start, len(t.indices), nil
}

// Finalize freezes the table. Inserting afterwards fails with ErrState.
func (t *VertexTable) Finalize() {
	t.finalized = true
}

// Counts returns the POINT_COUNTS quadruple: VT entries, VLINE entries,
// VLIGHT entries and total IDX entries.
func (t *VertexTable) Counts() (tris, lines, lites, indices int) {
	return len(t.vt), len(t.vline), len(t.vlight), len(t.indices)
}

// WriteTo renders the VT/VLINE/VLIGHT pools and the IDX10/IDX stream in
// insertion order.
func (t *VertexTable) WriteTo(b *strings.Builder) {
	for _, v := range t.vt {
		b.WriteString("VT")
		for _, c := range v {
			b.WriteByte('\t')
			b.WriteString(coords.FormatFloat(c))
		}
		b.WriteByte('\n')
	}
	for _, v := range t.vline {
		b.WriteString("VLINE")
		for _, c := range v {
			b.WriteByte('\t')
			b.WriteString(coords.FormatFloat(c))
		}
		b.WriteByte('\n')
	}
	for _, v := range t.vlight {
		b.WriteString("VLIGHT")
		for _, c := range v {
			b.WriteByte('\t')
			b.WriteString(coords.FormatFloat(c))
		}
		b.WriteByte('\n')
	}
	if len(t.vt)+len(t.vline)+len(t.vlight) > 0 {
		b.WriteByte('\n')
	}

	// Indices pack ten to an IDX10 row with an IDX tail, matching the
	// OBJ8 index table layout.
	full := len(t.indices) - len(t.indices)%10
	for i := 0; i < full; i += 10 {
		b.WriteString("IDX10")
		for _, idx := range t.indices[i : i+10] {
			fmt.Fprintf(b, "\t%d", idx)
		}
		b.WriteByte('\n')
	}
	for _, idx := range t.indices[full:] {
		fmt.Fprintf(b, "IDX\t%d\n", idx)
	}
}
