package obj8

import (
	"fmt"
	"strings"
)

// Weather system limits.
const (
	rainScaleMin      = 0.1
	rainScaleMax      = 1.0
	rainFrictionMax   = 2.0
	thermalDefrostMax = 3600.0
	maxThermalSources = 4
	maxWipers         = 4
	maxCockpitRegions = 4
	maxDecals         = 2
	maxLuminance      = 65530
)

// writeHeader emits the OBJ8 preamble, all file-scope directives in spec
// order and the POINT_COUNTS line. File-scope state passes through the
// same gate and state machine as the body so exclusion and version rules
// hold everywhere.
func writeHeader(b *strings.Builder, scene *Scene, cfg Config, vt *VertexTable, m *stateMachine, report *Report) {
	hs := &stream{gate: Gate{Version: cfg.Version, Type: cfg.Type}, report: report}
	h := &scene.Header
	node := scene.Name

	// Texture references.
	if h.Texture != "" && checkTexturePath(report, node, "TEXTURE", h.Texture) {
		hs.add(Command{Kind: CmdAttribute, Directive: "TEXTURE", Args: []string{h.Texture}})
	}
	if h.TextureLit != "" && checkTexturePath(report, node, "TEXTURE_LIT", h.TextureLit) {
		hs.add(Command{Kind: CmdAttribute, Directive: "TEXTURE_LIT", Args: []string{h.TextureLit}})
	}
	if h.TextureNormal != "" && checkTexturePath(report, node, "TEXTURE_NORMAL", h.TextureNormal) {
		hs.add(Command{Kind: CmdAttribute, Directive: "TEXTURE_NORMAL", Args: []string{h.TextureNormal}})
	}

	maps := []struct {
		usage, path string
	}{
		{"normal", h.TextureMapNormal},
		{"material_gloss", h.TextureMapMaterialGloss},
		{"gloss", h.TextureMapGloss},
		{"metallic", h.TextureMapMetallic},
		{"roughness", h.TextureMapRoughness},
	}
	for _, tm := range maps {
		if tm.path == "" {
			continue
		}
		if checkTexturePath(report, node, "TEXTURE_MAP", tm.path) {
			hs.add(Command{Kind: CmdAttribute, Directive: "TEXTURE_MAP",
				Args: []string{tm.usage, tm.path}, MinVersion: Version1200})
		}
	}

	if h.NormalMetalness {
		if h.TextureNormal == "" && h.TextureMapNormal == "" {
			report.Warnf(ErrConfiguration, node, "NORMAL_METALNESS",
				"no normal texture set; normal metalness ignored")
		} else {
			hs.add(Command{Kind: CmdAttribute, Directive: "NORMAL_METALNESS", MinVersion: Version1100})
		}
	}

	if h.BlendGlass {
		hs.add(Command{Kind: CmdAttribute, Directive: "BLEND_GLASS",
			MinVersion: Version1100, Types: MaskAirplane})
	}

	// Global render state.
	if h.GlobalSpecular != nil {
		v := *h.GlobalSpecular
		if v < 0 || v > 2 {
			report.Errorf(ErrValidation, node, "GLOBAL_specular",
				"specular ratio %s out of range [0, 2]; directive dropped", fargs(v)[0])
		} else {
			hs.add(Command{Kind: CmdAttribute, Directive: "GLOBAL_specular", Args: fargs(v)})
		}
	}
	if h.Luminance != nil {
		if nts, ok := m.applyLuminance(node, *h.Luminance); ok {
			if nts != *h.Luminance {
				report.Infof(node, "GLOBAL_luminance",
					"luminance clamped from %d to %d nts", *h.Luminance, nts)
			}
			hs.add(Command{Kind: CmdAttribute, Directive: "GLOBAL_luminance",
				Args: []string{itoa(nts)}, MinVersion: Version1200})
		}
	}
	if h.GlobalNoBlend != nil && h.GlobalShadowBlend != nil {
		report.Errorf(ErrConfiguration, node, "GLOBAL_no_blend",
			"GLOBAL_no_blend and GLOBAL_shadow_blend are mutually exclusive; both dropped")
	} else {
		if h.GlobalNoBlend != nil {
			if v := *h.GlobalNoBlend; v < 0 || v > 1 {
				report.Errorf(ErrValidation, node, "GLOBAL_no_blend",
					"alpha cutoff %s out of range [0, 1]; directive dropped", fargs(v)[0])
			} else if m.applyAlphaMode(node, "GLOBAL_no_blend") {
				hs.add(Command{Kind: CmdAttribute, Directive: "GLOBAL_no_blend", Args: fargs(v)})
			}
		}
		if h.GlobalShadowBlend != nil {
			if v := *h.GlobalShadowBlend; v < 0 || v > 1 {
				report.Errorf(ErrValidation, node, "GLOBAL_shadow_blend",
					"alpha cutoff %s out of range [0, 1]; directive dropped", fargs(v)[0])
			} else {
				hs.add(Command{Kind: CmdAttribute, Directive: "GLOBAL_shadow_blend", Args: fargs(v)})
			}
		}
	}
	if h.NoShadow {
		hs.add(Command{Kind: CmdAttribute, Directive: "GLOBAL_no_shadow", Types: MaskGround})
	}
	if h.Tint != nil {
		if t, ok := m.applyTint(node, *h.Tint); ok {
			hs.add(Command{Kind: CmdAttribute, Directive: "GLOBAL_tint",
				Args: fargs(t.Albedo, t.Emissive), Types: MaskInstancedScenery})
		}
	}
	if h.CockpitLit {
		hs.add(Command{Kind: CmdAttribute, Directive: "GLOBAL_cockpit_lit", Types: MaskAirplane})
	}

	// Scenery placement attributes.
	if h.LayerGroup != "" {
		hs.add(Command{Kind: CmdAttribute, Directive: "ATTR_layer_group",
			Args: []string{h.LayerGroup, itoa(h.LayerGroupOffset)}})
	}
	if h.SlopeLimit != nil {
		sl := *h.SlopeLimit
		hs.add(Command{Kind: CmdAttribute, Directive: "SLOPE_LIMIT",
			Args: fargs(sl[0], sl[1], sl[2], sl[3]), Types: MaskGround})
	}
	if h.Tilted {
		hs.add(Command{Kind: CmdAttribute, Directive: "TILTED", Types: MaskGround})
	}
	switch h.RequireSurface {
	case "":
	case "wet":
		hs.add(Command{Kind: CmdAttribute, Directive: "REQUIRE_WET"})
	case "dry":
		hs.add(Command{Kind: CmdAttribute, Directive: "REQUIRE_DRY"})
	default:
		report.Errorf(ErrValidation, node, "REQUIRE_WET",
			"unknown surface requirement %q", h.RequireSurface)
	}
	if h.SlungLoadWeight > 0 {
		hs.add(Command{Kind: CmdAttribute, Directive: "slung_load_weight",
			Args: fargs(h.SlungLoadWeight), Types: MaskAircraft})
	}

	// Cockpit panel regions: left/bottom plus power-of-two extents.
	if len(h.CockpitRegions) > maxCockpitRegions {
		report.Errorf(ErrValidation, node, "COCKPIT_REGION",
			"%d cockpit regions given, at most %d allowed", len(h.CockpitRegions), maxCockpitRegions)
	} else {
		for _, r := range h.CockpitRegions {
			hs.add(Command{Kind: CmdAttribute, Directive: "COCKPIT_REGION",
				Args: []string{itoa(r[0]), itoa(r[1]), itoa(r[0] + 1<<r[2]), itoa(r[1] + 1<<r[3])},
				Types: MaskAirplane})
		}
	}

	if h.ParticleSystem != "" {
		if !strings.HasSuffix(h.ParticleSystem, ".pss") {
			report.Errorf(ErrValidation, node, "PARTICLE_SYSTEM",
				"particle system file %q must be a .pss file", h.ParticleSystem)
		} else {
			hs.add(Command{Kind: CmdAttribute, Directive: "PARTICLE_SYSTEM",
				Args: []string{h.ParticleSystem}, MinVersion: Version1130})
		}
	}

	writeRain(hs, node, h.Rain, report)
	writeShading(hs, node, h, m, report)

	for _, p := range h.ExportPaths {
		if p = strings.TrimSpace(p); p != "" {
			hs.add(Command{Kind: CmdAttribute, Directive: "EXPORT", Args: []string{p}})
		}
	}

	// Preamble, header directives, then POINT_COUNTS closing the header.
	b.WriteString("I\n800\nOBJ\n\n")
	hs.write(b)
	tris, lines, lites, indices := vt.Counts()
	fmt.Fprintf(b, "POINT_COUNTS\t%d %d %d %d\n\n", tris, lines, lites, indices)
}

// writeRain emits the X-Plane 12 weather block: rain scale and friction,
// thermal sources and wipers, with their co-occurrence rules.
func writeRain(hs *stream, node string, r *Rain, report *Report) {
	if r == nil {
		return
	}

	// Exactly 1.0 is the engine default and is omitted without comment.
	if r.Scale != 0 && r.Scale != rainScaleMax {
		if r.Scale < rainScaleMin || r.Scale > rainScaleMax {
			report.Errorf(ErrValidation, node, "RAIN_scale",
				"rain scale %s out of range [0.1, 1.0]; directive dropped", fargs(r.Scale)[0])
		} else {
			hs.add(Command{Kind: CmdAttribute, Directive: "RAIN_scale",
				Args: fargs(r.Scale), MinVersion: Version1200, Types: MaskAirplane, Node: node})
		}
	}

	if r.FrictionDataref != "" {
		switch {
		case !ValidDataref(r.FrictionDataref):
			report.Errorf(ErrValidation, node, "RAIN_friction",
				"malformed dataref %q; directive dropped", r.FrictionDataref)
		case r.FrictionDry < 0 || r.FrictionDry > rainFrictionMax ||
			r.FrictionWet < 0 || r.FrictionWet > rainFrictionMax:
			report.Errorf(ErrValidation, node, "RAIN_friction",
				"friction coefficients out of range [0, 2]; directive dropped")
		default:
			hs.add(Command{Kind: CmdAttribute, Directive: "RAIN_friction",
				Args:       append([]string{r.FrictionDataref}, fargs(r.FrictionDry, r.FrictionWet)...),
				MinVersion: Version1210, Types: MaskAirplane, Node: node})
		}
	}

	hasSources := len(r.ThermalSources) > 0
	switch {
	case hasSources && r.ThermalTexture == "":
		report.Errorf(ErrConfiguration, node, "THERMAL_source",
			"thermal sources require a thermal texture")
	case !hasSources && r.ThermalTexture != "":
		report.Errorf(ErrConfiguration, node, "THERMAL_texture",
			"thermal texture set but no thermal sources enabled")
	case hasSources:
		if len(r.ThermalSources) > maxThermalSources {
			report.Errorf(ErrValidation, node, "THERMAL_source",
				"%d thermal sources given, at most %d allowed", len(r.ThermalSources), maxThermalSources)
			break
		}
		if checkTexturePath(report, node, "THERMAL_texture", r.ThermalTexture) {
			hs.add(Command{Kind: CmdAttribute, Directive: "THERMAL_texture",
				Args: []string{r.ThermalTexture}, MinVersion: Version1200, Types: MaskAirplane, Node: node})
		}
		for i, src := range r.ThermalSources {
			if src.DefrostTime <= 0 || src.DefrostTime > thermalDefrostMax {
				report.Errorf(ErrValidation, node, "THERMAL_source",
					"thermal source #%d defrost time %s out of range (0, 3600]; dropped",
					i+1, fargs(src.DefrostTime)[0])
				continue
			}
			if !ValidDataref(src.OnOffDataref) {
				report.Errorf(ErrValidation, node, "THERMAL_source",
					"thermal source #%d has a malformed on/off dataref %q; dropped",
					i+1, src.OnOffDataref)
				continue
			}
			// THERMAL_source2 is 12.1+; the documented downgrade needs
			// the source's temperature dataref.
			var fallback *Command
			if src.TemperatureDataref != "" {
				fallback = &Command{Kind: CmdAttribute, Directive: "THERMAL_source",
					Args:       []string{src.TemperatureDataref, src.OnOffDataref},
					MinVersion: Version1200, Types: MaskAirplane, Node: node}
			}
			hs.add(Command{Kind: CmdAttribute, Directive: "THERMAL_source2",
				Args:       append([]string{itoa(i)}, append(fargs(src.DefrostTime), src.OnOffDataref)...),
				MinVersion: Version1210, Types: MaskAirplane, Fallback: fallback, Node: node})
		}
	}

	hasWipers := len(r.Wipers) > 0
	switch {
	case hasWipers && r.WiperTexture == "":
		report.Errorf(ErrConfiguration, node, "WIPER_param",
			"wipers require a wiper texture")
	case !hasWipers && r.WiperTexture != "":
		report.Errorf(ErrConfiguration, node, "WIPER_texture",
			"wiper texture set but no wipers enabled")
	case hasWipers:
		if len(r.Wipers) > maxWipers {
			report.Errorf(ErrValidation, node, "WIPER_param",
				"%d wipers given, at most %d allowed", len(r.Wipers), maxWipers)
			break
		}
		if checkTexturePath(report, node, "WIPER_texture", r.WiperTexture) {
			hs.add(Command{Kind: CmdAttribute, Directive: "WIPER_texture",
				Args: []string{r.WiperTexture}, MinVersion: Version1200, Types: MaskAirplane, Node: node})
		}
		for i, w := range r.Wipers {
			if !ValidDataref(w.Dataref) {
				report.Errorf(ErrValidation, node, "WIPER_param",
					"wiper #%d has a malformed dataref %q; dropped", i+1, w.Dataref)
				continue
			}
			if w.Start >= w.End {
				report.Errorf(ErrValidation, node, "WIPER_param",
					"wiper #%d start %s is not below end %s; dropped",
					i+1, fargs(w.Start)[0], fargs(w.End)[0])
				continue
			}
			hs.add(Command{Kind: CmdAttribute, Directive: "WIPER_param",
				Args:       append([]string{w.Dataref}, fargs(w.Start, w.End, w.NominalWidth)...),
				MinVersion: Version1200, Types: MaskAirplane, Node: node})
		}
	}
}

// writeShading emits the standard-shading block: decals, texture tiling
// and alpha handling, with their mutual exclusions.
func writeShading(hs *stream, node string, h *Header, m *stateMachine, report *Report) {
	if len(h.Decals) > maxDecals {
		report.Errorf(ErrValidation, node, "DECAL",
			"%d decals given, at most %d allowed", len(h.Decals), maxDecals)
	} else {
		for _, d := range h.Decals {
			if d.Scale <= 0 || d.Scale > 10 {
				report.Errorf(ErrValidation, node, "DECAL",
					"decal scale %s out of range (0, 10]; decal dropped", fargs(d.Scale)[0])
				continue
			}
			if !checkTexturePath(report, node, "DECAL", d.Texture) {
				continue
			}
			if !m.applyDecal(node) {
				continue
			}
			switch d.Mode {
			case DecalKeyed:
				hs.add(Command{Kind: CmdAttribute, Directive: "DECAL_KEYED",
					Args: append(fargs(d.Scale, d.RGBA[0], d.RGBA[1], d.RGBA[2], d.RGBA[3], d.Alpha),
						d.Texture),
					MinVersion: Version1200, Node: node})
			case DecalRGBA:
				hs.add(Command{Kind: CmdAttribute, Directive: "DECAL_RGBA",
					Args:       append(fargs(d.Scale), d.Texture),
					MinVersion: Version1200, Node: node})
			default:
				hs.add(Command{Kind: CmdAttribute, Directive: "DECAL",
					Args:       append(fargs(d.Scale), d.Texture),
					MinVersion: Version1200, Node: node})
			}
		}
	}

	if len(h.NormalDecals) > maxDecals {
		report.Errorf(ErrValidation, node, "NORMAL_DECAL",
			"%d normal decals given, at most %d allowed", len(h.NormalDecals), maxDecals)
	} else {
		for _, d := range h.NormalDecals {
			if d.Scale <= 0 || d.Scale > 10 {
				report.Errorf(ErrValidation, node, "NORMAL_DECAL",
					"decal scale %s out of range (0, 10]; decal dropped", fargs(d.Scale)[0])
				continue
			}
			if !checkTexturePath(report, node, "NORMAL_DECAL", d.Texture) {
				continue
			}
			if !m.applyDecal(node) {
				continue
			}
			hs.add(Command{Kind: CmdAttribute, Directive: "NORMAL_DECAL",
				Args:       append(fargs(d.Scale), d.Texture, fargs(d.GlossKey)[0]),
				MinVersion: Version1200, Node: node})
		}
	}

	if tt := h.TextureTile; tt != nil {
		switch {
		case tt.XTiles <= 0 || tt.YTiles <= 0 || tt.XPages <= 0 || tt.YPages <= 0:
			report.Errorf(ErrValidation, node, "TEXTURE_TILE",
				"tile and page counts must be positive; directive dropped")
		case !checkTexturePath(report, node, "TEXTURE_TILE", tt.Texture):
		case m.applyTextureTile(node):
			hs.add(Command{Kind: CmdAttribute, Directive: "TEXTURE_TILE",
				Args: []string{itoa(tt.XTiles), itoa(tt.YTiles), itoa(tt.XPages), itoa(tt.YPages), tt.Texture},
				MinVersion: Version1200, Node: node})
		}
	}

	if da := h.DitherAlpha; da != nil {
		switch {
		case da.Softness < 0 || da.Softness > 1 || da.Bleed < 0 || da.Bleed > 1:
			report.Errorf(ErrValidation, node, "DITHER_ALPHA",
				"softness and bleed must be in [0, 1]; directive dropped")
		case m.applyAlphaMode(node, "DITHER_ALPHA"):
			hs.add(Command{Kind: CmdAttribute, Directive: "DITHER_ALPHA",
				Args: fargs(da.Softness, da.Bleed), MinVersion: Version1200, Node: node})
		}
	}
	if h.NoAlpha && m.applyAlphaMode(node, "NO_ALPHA") {
		hs.add(Command{Kind: CmdAttribute, Directive: "NO_ALPHA",
			MinVersion: Version1200, Node: node})
	}
}
