package obj8

import (
	"strings"
	"testing"
)

func newTestStream(v Version, t ExportType, r *Report) *stream {
	return &stream{gate: Gate{Version: v, Type: t}, report: r}
}

func directives(s *stream) []string {
	out := make([]string, len(s.cmds))
	for i, c := range s.cmds {
		out[i] = c.Directive
	}
	return out
}

func TestApplyMaterialDefaultEmitsNothing(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportAircraft, report)

	m.applyMaterial(s, "mesh", &Material{})
	if len(s.cmds) != 0 {
		t.Errorf("default material emitted %v", directives(s))
	}

	m.applyMaterial(s, "mesh", nil)
	if len(s.cmds) != 0 {
		t.Errorf("nil material emitted %v", directives(s))
	}
}

func TestApplyMaterialMinimalTransitions(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportAircraft, report)

	twoSided := &Material{TwoSided: true}
	m.applyMaterial(s, "a", twoSided)
	if len(s.cmds) != 1 || s.cmds[0].Directive != "ATTR_no_cull" {
		t.Fatalf("expected single ATTR_no_cull, got %v", directives(s))
	}

	// Same state again: no re-emission.
	m.applyMaterial(s, "b", twoSided)
	if len(s.cmds) != 1 {
		t.Errorf("unchanged state re-emitted: %v", directives(s))
	}

	// Back to default restores culling.
	m.applyMaterial(s, "c", &Material{})
	if len(s.cmds) != 2 || s.cmds[1].Directive != "ATTR_cull" {
		t.Errorf("expected ATTR_cull, got %v", directives(s))
	}
}

func TestApplyBlendModes(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportAircraft, report)

	m.applyMaterial(s, "a", &Material{Blend: BlendOff, BlendRatio: 0.5})
	if len(s.cmds) != 1 || s.cmds[0].String() != "ATTR_no_blend\t0.500000" {
		t.Fatalf("got %q", s.cmds[0].String())
	}

	m.applyMaterial(s, "b", &Material{Blend: BlendShadow, BlendRatio: 0.25})
	if s.cmds[len(s.cmds)-1].String() != "ATTR_shadow_blend\t0.250000" {
		t.Errorf("got %q", s.cmds[len(s.cmds)-1].String())
	}

	m.applyMaterial(s, "c", &Material{})
	if s.cmds[len(s.cmds)-1].Directive != "ATTR_blend" {
		t.Errorf("expected return to ATTR_blend, got %v", directives(s))
	}
}

func TestApplySpecularOutOfRange(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportAircraft, report)

	m.applyMaterial(s, "shiny", &Material{SpecularRatio: 5})
	if len(s.cmds) != 0 {
		t.Errorf("out-of-range specular emitted %v", directives(s))
	}
	if !report.HasErrors() {
		t.Error("expected a validation error")
	}
}

func TestApplyHardSurfaces(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportAircraft, report)

	m.applyMaterial(s, "deck", &Material{Hard: true, HardDeck: true, SurfaceType: "asphalt"})
	if len(s.cmds) != 1 || s.cmds[0].String() != "ATTR_hard_deck\tasphalt" {
		t.Fatalf("got %v", directives(s))
	}

	m.applyMaterial(s, "soft", &Material{})
	if s.cmds[len(s.cmds)-1].Directive != "ATTR_no_hard" {
		t.Errorf("expected ATTR_no_hard, got %v", directives(s))
	}

	// Unknown surface vocabulary is rejected.
	m.applyMaterial(s, "bad", &Material{Hard: true, SurfaceType: "lava"})
	if !report.HasErrors() {
		t.Error("expected a validation error for unknown surface")
	}
	for _, c := range s.cmds {
		if strings.Contains(c.String(), "lava") {
			t.Errorf("invalid surface emitted: %q", c.String())
		}
	}
}

func TestApplyDrapedTypeGate(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportScenery, report)

	m.applyMaterial(s, "pad", &Material{Draped: true})
	if len(s.cmds) != 1 || s.cmds[0].Directive != "ATTR_draped" {
		t.Fatalf("expected single ATTR_draped, got %v", directives(s))
	}

	m.applyMaterial(s, "tower", &Material{})
	if s.cmds[len(s.cmds)-1].Directive != "ATTR_no_draped" {
		t.Errorf("expected ATTR_no_draped, got %v", directives(s))
	}

	// Draped geometry is a scenery concept; aircraft exports reject it.
	report2 := &Report{}
	m2 := newStateMachine(false, report2)
	s2 := newTestStream(Version1210, ExportAircraft, report2)
	m2.applyMaterial(s2, "pad", &Material{Draped: true})
	for _, d := range directives(s2) {
		if d == "ATTR_draped" {
			t.Error("ATTR_draped emitted for an aircraft export")
		}
	}
	if !report2.HasErrors() {
		t.Error("expected a configuration error")
	}
}

func TestApplyCockpitTypeGate(t *testing.T) {
	// ATTR_cockpit is illegal for scenery exports.
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportScenery, report)

	m.applyMaterial(s, "panel", &Material{Cockpit: CockpitPanel})
	for _, d := range directives(s) {
		if d == "ATTR_cockpit" {
			t.Error("ATTR_cockpit emitted for scenery export")
		}
	}
	if !report.HasErrors() {
		t.Error("expected a configuration error")
	}
}

func TestApplyCockpitLitOnlyDelta(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportCockpit, report)

	m.applyMaterial(s, "panel", &Material{Cockpit: CockpitPanel})
	m.applyMaterial(s, "screen", &Material{Cockpit: CockpitPanel, CockpitLitOnly: true})

	// The mode is unchanged between the two meshes, so only the lit-only
	// delta may be emitted.
	want := []string{"ATTR_cockpit", "ATTR_cockpit_lit_only"}
	got := directives(s)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
	if report.HasErrors() {
		t.Errorf("unexpected errors: %v", report.Errors())
	}
}

func TestApplyLightLevel(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)
	s := newTestStream(Version1210, ExportAircraft, report)

	ll := &LightLevel{V1: 0, V2: 1, Dataref: "sim/cockpit/electrical/instrument_brightness"}
	m.applyMaterial(s, "gauge", &Material{LightLevel: ll})
	want := "ATTR_light_level\t0.000000\t1.000000\tsim/cockpit/electrical/instrument_brightness"
	if len(s.cmds) != 1 || s.cmds[0].String() != want {
		t.Fatalf("got %v", directives(s))
	}

	m.applyMaterial(s, "plain", &Material{})
	if s.cmds[len(s.cmds)-1].Directive != "ATTR_light_level_reset" {
		t.Errorf("expected reset, got %v", directives(s))
	}

	m.applyMaterial(s, "bad", &Material{LightLevel: &LightLevel{Dataref: "no spaces allowed"}})
	if !report.HasErrors() {
		t.Error("expected an error for a malformed dataref")
	}
}

func TestAlphaModeExclusionLenient(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)

	if !m.applyAlphaMode("hdr", "NO_ALPHA") {
		t.Fatal("first alpha mode should apply")
	}
	if !m.applyAlphaMode("hdr", "DITHER_ALPHA") {
		t.Error("lenient mode should let the last mode win")
	}
	if report.HasErrors() {
		t.Error("lenient conflict should warn, not error")
	}
	if len(report.Warnings()) == 0 {
		t.Error("expected a conflict warning")
	}
	if m.alphaMode != "DITHER_ALPHA" {
		t.Errorf("active mode = %s, want DITHER_ALPHA", m.alphaMode)
	}
}

func TestAlphaModeExclusionStrict(t *testing.T) {
	report := &Report{}
	m := newStateMachine(true, report)

	m.applyAlphaMode("hdr", "DITHER_ALPHA")
	if m.applyAlphaMode("hdr", "NO_ALPHA") {
		t.Error("strict mode must reject the second alpha mode")
	}
	if !report.HasErrors() {
		t.Error("expected a configuration error")
	}
	if m.alphaMode != "DITHER_ALPHA" {
		t.Errorf("active mode = %s, want DITHER_ALPHA", m.alphaMode)
	}

	// Re-applying the same mode stays fine.
	if !m.applyAlphaMode("hdr", "DITHER_ALPHA") {
		t.Error("re-applying the active mode should succeed")
	}
}

func TestDecalTileExclusion(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)

	if !m.applyDecal("hdr") {
		t.Fatal("first decal should apply")
	}
	if m.applyTextureTile("hdr") {
		t.Error("TEXTURE_TILE after a decal must be rejected")
	}
	if !report.HasErrors() {
		t.Error("expected a configuration error")
	}

	// Opposite order.
	report2 := &Report{}
	m2 := newStateMachine(false, report2)
	if !m2.applyTextureTile("hdr") {
		t.Fatal("tile alone should apply")
	}
	if m2.applyDecal("hdr") {
		t.Error("decal after TEXTURE_TILE must be rejected")
	}
}

func TestApplyLuminanceClamp(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)

	nts, ok := m.applyLuminance("hdr", 70000)
	if !ok || nts != 65530 {
		t.Errorf("got (%d, %v), want (65530, true)", nts, ok)
	}

	// Second set is rejected.
	if _, ok := m.applyLuminance("hdr", 100); ok {
		t.Error("second luminance set must be rejected")
	}
	if !report.HasErrors() {
		t.Error("expected a configuration error")
	}

	report2 := &Report{}
	m2 := newStateMachine(false, report2)
	if nts, _ := m2.applyLuminance("hdr", -5); nts != 0 {
		t.Errorf("negative luminance clamped to %d, want 0", nts)
	}
}

func TestApplyTintClamp(t *testing.T) {
	report := &Report{}
	m := newStateMachine(false, report)

	tint, ok := m.applyTint("obj", Tint{Albedo: 1.5, Emissive: -0.5})
	if !ok {
		t.Fatal("first tint should apply")
	}
	if tint.Albedo != 1 || tint.Emissive != 0 {
		t.Errorf("clamped tint = %v, want {1 0}", tint)
	}

	if _, ok := m.applyTint("obj", Tint{}); ok {
		t.Error("second tint set must be rejected")
	}
}
