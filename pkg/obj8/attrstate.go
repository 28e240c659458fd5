package obj8

import "strconv"

// The attribute state machine tracks the render state geometry commands
// implicitly inherit and emits a directive only when the requested value
// differs from the current one. File-scope settings (decals, tiling, alpha
// handling, GLOBALs) additionally enforce mutual exclusion and
// set-at-most-once rules.

// surfaceTypes is the ATTR_hard surface vocabulary.
var surfaceTypes = map[string]bool{
	"water": true, "concrete": true, "asphalt": true, "grass": true,
	"dirt": true, "gravel": true, "lakebed": true, "snow": true,
	"shoulder": true, "blastpad": true, "smooth": true,
}

// attrState is the current per-mesh render state. Zero value is the OBJ8
// default state at the top of a file.
type attrState struct {
	blend       BlendMode
	blendRatio  float32
	specular    float32
	hard        bool
	hardDeck    bool
	surface     string
	twoSided    bool
	drawDisable bool
	solidCamera bool
	draped      bool
	lightLevel  *LightLevel
	hudGlass    bool
	cockpit     CockpitFeature
	cockpitReg  int
	device      *DeviceBinding
	litOnly     bool
}

// stateMachine diffs requested material state against the current state
// and emits minimal transitions. One machine exists per export context.
type stateMachine struct {
	strict bool
	report *Report
	cur    attrState

	// File-scope one-shot state.
	decalCount   int
	tileActive   bool
	alphaMode    string // "", "NO_ALPHA", "DITHER_ALPHA"
	luminanceSet bool
	tintSet      bool
}

func newStateMachine(strict bool, report *Report) *stateMachine {
	return &stateMachine{strict: strict, report: report}
}

// applyMaterial emits the attribute transitions needed before a primitive
// rendered with mat, then records mat as current.
func (m *stateMachine) applyMaterial(s *stream, node string, mat *Material) {
	if mat == nil {
		mat = &Material{}
	}

	m.applyBlend(s, node, mat)
	m.applySpecular(s, node, mat)
	m.applyHard(s, node, mat)

	if mat.TwoSided != m.cur.twoSided {
		if mat.TwoSided {
			s.add(Command{Kind: CmdAttribute, Directive: "ATTR_no_cull", Node: node})
		} else {
			s.add(Command{Kind: CmdAttribute, Directive: "ATTR_cull", Node: node})
		}
		m.cur.twoSided = mat.TwoSided
	}

	if mat.DrawDisable != m.cur.drawDisable {
		if mat.DrawDisable {
			s.add(Command{Kind: CmdAttribute, Directive: "ATTR_draw_disable", Node: node})
		} else {
			s.add(Command{Kind: CmdAttribute, Directive: "ATTR_draw_enable", Node: node})
		}
		m.cur.drawDisable = mat.DrawDisable
	}

	if mat.SolidCamera != m.cur.solidCamera {
		d := "ATTR_no_solid_camera"
		if mat.SolidCamera {
			d = "ATTR_solid_camera"
		}
		if s.add(Command{Kind: CmdAttribute, Directive: d, Types: MaskAirplane, Node: node}) == GateAllowed {
			m.cur.solidCamera = mat.SolidCamera
		}
	}

	if mat.Draped != m.cur.draped {
		d := "ATTR_no_draped"
		if mat.Draped {
			d = "ATTR_draped"
		}
		if s.add(Command{Kind: CmdAttribute, Directive: d, Types: MaskGround, Node: node}) == GateAllowed {
			m.cur.draped = mat.Draped
		}
	}

	m.applyLightLevel(s, node, mat)
	m.applyCockpit(s, node, mat)

	if mat.HudGlass != m.cur.hudGlass {
		d := "ATTR_hud_reset"
		if mat.HudGlass {
			d = "ATTR_hud_glass"
		}
		if s.add(Command{Kind: CmdAttribute, Directive: d,
			MinVersion: Version1200, Types: MaskAirplane, Node: node}) == GateAllowed {
			m.cur.hudGlass = mat.HudGlass
		}
	}
}

func (m *stateMachine) applyBlend(s *stream, node string, mat *Material) {
	if mat.Blend == m.cur.blend && (mat.Blend == BlendOn || mat.BlendRatio == m.cur.blendRatio) {
		return
	}
	switch mat.Blend {
	case BlendOff:
		s.add(Command{Kind: CmdAttribute, Directive: "ATTR_no_blend",
			Args: fargs(mat.BlendRatio), Node: node})
	case BlendShadow:
		s.add(Command{Kind: CmdAttribute, Directive: "ATTR_shadow_blend",
			Args: fargs(mat.BlendRatio), Node: node})
	default:
		s.add(Command{Kind: CmdAttribute, Directive: "ATTR_blend", Node: node})
	}
	m.cur.blend = mat.Blend
	m.cur.blendRatio = mat.BlendRatio
}

func (m *stateMachine) applySpecular(s *stream, node string, mat *Material) {
	if mat.SpecularRatio < 0 || mat.SpecularRatio > 2 {
		m.report.Errorf(ErrValidation, node, "ATTR_shiny_rat",
			"specular ratio %s out of range [0, 2]; directive dropped",
			fargs(mat.SpecularRatio)[0])
		return
	}
	if mat.SpecularRatio != m.cur.specular {
		s.add(Command{Kind: CmdAttribute, Directive: "ATTR_shiny_rat",
			Args: fargs(mat.SpecularRatio), Node: node})
		m.cur.specular = mat.SpecularRatio
	}
}

func (m *stateMachine) applyHard(s *stream, node string, mat *Material) {
	surface := mat.SurfaceType
	if mat.Hard && surface != "" && !surfaceTypes[surface] {
		m.report.Errorf(ErrValidation, node, "ATTR_hard",
			"unknown surface type %q; directive dropped", surface)
		return
	}
	if mat.Hard == m.cur.hard && mat.HardDeck == m.cur.hardDeck && surface == m.cur.surface {
		return
	}
	if mat.Hard {
		d := "ATTR_hard"
		if mat.HardDeck {
			d = "ATTR_hard_deck"
		}
		var args []string
		if surface != "" {
			args = []string{surface}
		}
		s.add(Command{Kind: CmdAttribute, Directive: d, Args: args, Node: node})
	} else {
		s.add(Command{Kind: CmdAttribute, Directive: "ATTR_no_hard", Node: node})
	}
	m.cur.hard = mat.Hard
	m.cur.hardDeck = mat.HardDeck
	m.cur.surface = surface
}

func (m *stateMachine) applyLightLevel(s *stream, node string, mat *Material) {
	ll := mat.LightLevel
	cur := m.cur.lightLevel
	if ll == nil && cur == nil {
		return
	}
	if ll != nil && cur != nil && *ll == *cur {
		return
	}
	if ll == nil {
		s.add(Command{Kind: CmdAttribute, Directive: "ATTR_light_level_reset", Node: node})
		m.cur.lightLevel = nil
		return
	}
	if !ValidDataref(ll.Dataref) {
		m.report.Errorf(ErrValidation, node, "ATTR_light_level",
			"malformed dataref %q; directive dropped", ll.Dataref)
		return
	}
	args := append(fargs(ll.V1, ll.V2), ll.Dataref)
	min := Version(0)
	if ll.Photometric {
		args = append(args, fargs(float32(ll.Brightness))[0])
		min = Version1200
	}
	if s.add(Command{Kind: CmdAttribute, Directive: "ATTR_light_level",
		Args: args, MinVersion: min, Node: node}) == GateAllowed {
		cp := *ll
		m.cur.lightLevel = &cp
	}
}

func (m *stateMachine) applyCockpit(s *stream, node string, mat *Material) {
	sameDevice := (mat.Device == nil && m.cur.device == nil) ||
		(mat.Device != nil && m.cur.device != nil && *mat.Device == *m.cur.device)

	// The mode directive is re-emitted only when the mode itself changes;
	// the lit-only flag rides along as an independent delta below.
	if mat.Cockpit != m.cur.cockpit || mat.CockpitRegion != m.cur.cockpitReg || !sameDevice {
		switch mat.Cockpit {
		case CockpitNone:
			if m.cur.cockpit != CockpitNone {
				s.add(Command{Kind: CmdAttribute, Directive: "ATTR_no_cockpit",
					Types: MaskAirplane, Node: node})
			}
		case CockpitPanel:
			s.add(Command{Kind: CmdAttribute, Directive: "ATTR_cockpit",
				Types: MaskAirplane, Node: node})
		case CockpitRegion:
			s.add(Command{Kind: CmdAttribute, Directive: "ATTR_cockpit_region",
				Args: []string{itoa(mat.CockpitRegion)}, Types: MaskAirplane, Node: node})
		case CockpitDevice:
			dev := mat.Device
			if dev == nil || dev.Name == "" {
				m.report.Errorf(ErrConfiguration, node, "ATTR_cockpit_device",
					"device binding missing a device name; directive dropped")
				return
			}
			auto := "0"
			if dev.AutoAdjust {
				auto = "1"
			}
			if s.add(Command{Kind: CmdAttribute, Directive: "ATTR_cockpit_device",
				Args:       []string{dev.Name, itoa(dev.Bus), itoa(dev.LightingChannel), auto},
				MinVersion: Version1200, Types: MaskAirplane, Node: node}) != GateAllowed {
				return
			}
		}
		m.cur.cockpit = mat.Cockpit
		m.cur.cockpitReg = mat.CockpitRegion
		if mat.Device != nil {
			cp := *mat.Device
			m.cur.device = &cp
		} else {
			m.cur.device = nil
		}
	}

	if mat.CockpitLitOnly != m.cur.litOnly {
		if mat.CockpitLitOnly {
			if s.add(Command{Kind: CmdAttribute, Directive: "ATTR_cockpit_lit_only",
				MinVersion: Version1210, Types: MaskAirplane, Node: node}) != GateAllowed {
				return
			}
		}
		m.cur.litOnly = mat.CockpitLitOnly
	}
}

// applyDecal registers a decal layer. Decals and TEXTURE_TILE are mutually
// exclusive; whichever is applied first wins and the second is dropped.
func (m *stateMachine) applyDecal(node string) bool {
	if m.tileActive {
		m.report.Errorf(ErrConfiguration, node, "DECAL",
			"decals cannot be combined with TEXTURE_TILE; decal dropped")
		return false
	}
	m.decalCount++
	return true
}

// applyTextureTile registers TEXTURE_TILE, enforcing the decal exclusion.
func (m *stateMachine) applyTextureTile(node string) bool {
	if m.decalCount > 0 {
		m.report.Errorf(ErrConfiguration, node, "TEXTURE_TILE",
			"TEXTURE_TILE cannot be combined with decals; directive dropped")
		return false
	}
	m.tileActive = true
	return true
}

// applyAlphaMode arbitrates the mutually-exclusive alpha-handling
// directives. Only one of NO_ALPHA / DITHER_ALPHA may be active; a second
// differing set is a hard error in strict mode and last-applied-wins with
// a warning otherwise.
func (m *stateMachine) applyAlphaMode(node, directive string) bool {
	if m.alphaMode == "" || m.alphaMode == directive {
		m.alphaMode = directive
		return true
	}
	if m.strict {
		m.report.Errorf(ErrConfiguration, node, directive,
			"conflicts with already-active %s", m.alphaMode)
		return false
	}
	m.report.Warnf(ErrConfiguration, node, directive,
		"overrides previously set %s; last applied wins", m.alphaMode)
	m.alphaMode = directive
	return true
}

// applyLuminance clamps and registers GLOBAL_luminance. Global state is
// set at most once per file; a second differing set is rejected.
func (m *stateMachine) applyLuminance(node string, nts int) (int, bool) {
	if m.luminanceSet {
		m.report.Errorf(ErrConfiguration, node, "GLOBAL_luminance",
			"global luminance already set; file-scope state cannot vary within one export")
		return 0, false
	}
	m.luminanceSet = true
	if nts < 0 {
		nts = 0
	}
	if nts > 65530 {
		nts = 65530
	}
	return nts, true
}

// applyTint clamps and registers GLOBAL_tint (once per file).
func (m *stateMachine) applyTint(node string, t Tint) (Tint, bool) {
	if m.tintSet {
		m.report.Errorf(ErrConfiguration, node, "GLOBAL_tint",
			"global tint already set; file-scope state cannot vary within one export")
		return t, false
	}
	m.tintSet = true
	t.Albedo = clamp01(t.Albedo)
	t.Emissive = clamp01(t.Emissive)
	return t, true
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
