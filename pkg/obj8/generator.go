package obj8

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/justinwol/xplane-obj8/pkg/coords"
)

// idxRange is the [start, end) slice of the global IDX stream one
// primitive occupies.
type idxRange struct {
	start, end int
}

// generator walks the scene twice in the same depth-first, authored order:
// once to populate the vertex table, once to emit the command stream. The
// split exists because every VT/VLINE line must precede the first command
// referencing it.
type generator struct {
	cfg     Config
	report  *Report
	table   *VertexTable
	machine *stateMachine

	ranges      map[*SceneNode]idxRange
	lightRanges map[*SceneNode]idxRange

	// hasParticleSystem mirrors the header; EMITTER is useless without a
	// PARTICLE_SYSTEM definition to draw from.
	hasParticleSystem bool

	animDepth int
}

func newGenerator(cfg Config, report *Report) *generator {
	return &generator{
		cfg:         cfg,
		report:      report,
		table:       NewVertexTable(),
		machine:     newStateMachine(cfg.Strict, report),
		ranges:      make(map[*SceneNode]idxRange),
		lightRanges: make(map[*SceneNode]idxRange),
	}
}

// collect fills the vertex table from all geometry under n.
func (g *generator) collect(n *SceneNode, parent mgl32.Mat4, path string) error {
	world := parent.Mul4(coords.Compose(n.Translation, n.Rotation, n.Scale))
	path = childPath(path, n.Name)

	if n.Kind == NodeMesh && n.Mesh != nil {
		if err := g.collectMesh(n, world); err != nil {
			return err
		}
	}
	if n.Kind == NodeLight && n.Light != nil && n.Light.Kind == LightDefault {
		pos := coords.ToExport(coords.TransformPoint(world, mgl32.Vec3{}))
		start, err := g.table.AddLightVertex(pos, n.Light.Color)
		if err != nil {
			return err
		}
		g.lightRanges[n] = idxRange{start, start + 1}
	}

	for _, c := range n.Children {
		if err := g.collect(c, world, path); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) collectMesh(n *SceneNode, world mgl32.Mat4) error {
	mesh := n.Mesh
	if mesh.Kind.IsLine() {
		if len(mesh.LineIndices) == 0 {
			return nil // empty contribution is valid
		}
		pool := make([]int, 0, len(mesh.LineIndices))
		for _, li := range mesh.LineIndices {
			v := mesh.LineVertices[li]
			pos := coords.ToExport(coords.TransformPoint(world, v.Position))
			idx, err := g.table.AddLineVertex(pos, v.Color)
			if err != nil {
				return err
			}
			pool = append(pool, idx)
		}
		start, end, err := g.table.AddIndices(pool)
		if err != nil {
			return err
		}
		g.ranges[n] = idxRange{start, end}
		return nil
	}

	if len(mesh.Indices) == 0 {
		return nil
	}
	pool := make([]int, 0, len(mesh.Indices))
	add := func(vi int) error {
		v := mesh.Vertices[vi]
		pos := coords.ToExport(coords.TransformPoint(world, v.Position))
		nrm := coords.ToExport(coords.TransformDirection(world, v.Normal))
		idx, err := g.table.AddVertex(pos, nrm, v.UV)
		if err != nil {
			return err
		}
		pool = append(pool, idx)
		return nil
	}
	if mesh.Kind == PrimitiveTris {
		// Triangles are wound counter-clockwise in scene space; X-Plane
		// wants clockwise, so each triangle's corners flip.
		for tri := 0; tri+2 < len(mesh.Indices); tri += 3 {
			for i := 2; i >= 0; i-- {
				if err := add(mesh.Indices[tri+i]); err != nil {
					return err
				}
			}
		}
	} else {
		// Strip and fan orders are positional and stay as authored.
		for _, vi := range mesh.Indices {
			if err := add(vi); err != nil {
				return err
			}
		}
	}
	start, end, err := g.table.AddIndices(pool)
	if err != nil {
		return err
	}
	g.ranges[n] = idxRange{start, end}
	return nil
}

// emit walks the scene a second time, producing the command stream.
func (g *generator) emit(s *stream, n *SceneNode, parent mgl32.Mat4, path string) {
	world := parent.Mul4(coords.Compose(n.Translation, n.Rotation, n.Scale))
	path = childPath(path, n.Name)

	animated := len(n.Animations) > 0
	if animated {
		s.add(Command{Kind: CmdAnimation, Directive: "ANIM_begin", Node: path})
		s.indent++
		g.animDepth++
		for _, a := range n.Animations {
			g.emitAnimation(s, path, a)
		}
	}

	switch n.Kind {
	case NodeMesh:
		g.emitMesh(s, n, path)
	case NodeLight:
		g.emitLight(s, n, world, path)
	case NodeSpecial:
		g.emitSpecial(s, n, world, path)
	}

	for _, c := range n.Children {
		g.emit(s, c, world, path)
	}

	if animated {
		g.animDepth--
		s.indent--
		s.add(Command{Kind: CmdAnimation, Directive: "ANIM_end", Node: path})
	}
}

func (g *generator) emitAnimation(s *stream, path string, a Animation) {
	if a.Kind == AnimShow || a.Kind == AnimHide {
		if !ValidDataref(a.Dataref) {
			g.report.Errorf(ErrValidation, path, "ANIM_show",
				"malformed dataref %q; animation dropped", a.Dataref)
			return
		}
		d := "ANIM_show"
		if a.Kind == AnimHide {
			d = "ANIM_hide"
		}
		s.add(Command{Kind: CmdAnimation, Directive: d,
			Args: append(fargs(a.ShowHideRange[0], a.ShowHideRange[1]), a.Dataref), Node: path})
		return
	}

	if !ValidDataref(a.Dataref) {
		g.report.Errorf(ErrValidation, path, "ANIM_begin",
			"malformed dataref %q; animation dropped", a.Dataref)
		return
	}
	if len(a.Keyframes) < 2 {
		g.report.Errorf(ErrValidation, path, "ANIM_begin",
			"animation on %q needs at least 2 keyframes, got %d; dropped",
			a.Dataref, len(a.Keyframes))
		return
	}
	for i := 1; i < len(a.Keyframes); i++ {
		if a.Keyframes[i].Value < a.Keyframes[i-1].Value {
			g.report.Errorf(ErrValidation, path, "ANIM_begin",
				"keyframe values for %q must be non-decreasing; animation dropped", a.Dataref)
			return
		}
	}

	// The short two-keyframe forms cannot carry ANIM_keyframe_loop, so a
	// looping animation always uses the table form.
	short := len(a.Keyframes) == 2 && a.Loop == 0

	switch a.Kind {
	case AnimTranslate:
		if short {
			p1 := coords.ToExport(a.Keyframes[0].Position)
			p2 := coords.ToExport(a.Keyframes[1].Position)
			args := append(vecArgs(p1), vecArgs(p2)...)
			args = append(args, fargs(a.Keyframes[0].Value, a.Keyframes[1].Value)...)
			args = append(args, a.Dataref)
			s.add(Command{Kind: CmdAnimation, Directive: "ANIM_trans", Args: args, Node: path})
		} else {
			s.add(Command{Kind: CmdAnimation, Directive: "ANIM_trans_begin",
				Args: []string{a.Dataref}, Node: path})
			for _, k := range a.Keyframes {
				p := coords.ToExport(k.Position)
				s.add(Command{Kind: CmdAnimation, Directive: "ANIM_trans_key",
					Args: append(fargs(k.Value), vecArgs(p)...), Node: path})
			}
			g.emitLoop(s, path, a)
			s.add(Command{Kind: CmdAnimation, Directive: "ANIM_trans_end", Node: path})
		}
	case AnimRotate:
		axis := coords.ToExport(a.Axis)
		if axis.Len() < 1e-6 {
			g.report.Errorf(ErrValidation, path, "ANIM_rotate",
				"rotation axis is zero; animation dropped")
			return
		}
		axis = axis.Normalize()
		if short {
			args := append(vecArgs(axis),
				fargs(a.Keyframes[0].Angle, a.Keyframes[1].Angle,
					a.Keyframes[0].Value, a.Keyframes[1].Value)...)
			args = append(args, a.Dataref)
			s.add(Command{Kind: CmdAnimation, Directive: "ANIM_rotate", Args: args, Node: path})
		} else {
			s.add(Command{Kind: CmdAnimation, Directive: "ANIM_rotate_begin",
				Args: append(vecArgs(axis), a.Dataref), Node: path})
			for _, k := range a.Keyframes {
				s.add(Command{Kind: CmdAnimation, Directive: "ANIM_rotate_key",
					Args: fargs(k.Value, k.Angle), Node: path})
			}
			g.emitLoop(s, path, a)
			s.add(Command{Kind: CmdAnimation, Directive: "ANIM_rotate_end", Node: path})
		}
	}
}

func (g *generator) emitLoop(s *stream, path string, a Animation) {
	if a.Loop > 0 {
		s.add(Command{Kind: CmdAnimation, Directive: "ANIM_keyframe_loop",
			Args: fargs(a.Loop), Node: path})
	}
}

func (g *generator) emitMesh(s *stream, n *SceneNode, path string) {
	r, ok := g.ranges[n]
	if !ok || r.end <= r.start {
		return // zero-vertex meshes contribute nothing
	}

	g.machine.applyMaterial(s, path, n.Material)

	mesh := n.Mesh
	geo := Command{Kind: CmdGeometry, Directive: mesh.Kind.Directive(),
		Args: []string{itoa(r.start), itoa(r.end - r.start)}, Node: path}

	if mesh.RainCannotEscape && !mesh.Kind.IsLine() {
		s.add(Command{Kind: CmdGeometry, Directive: "TRIS_break",
			MinVersion: Version1200, Types: MaskAirplane, Node: path})
		s.add(geo)
		s.add(Command{Kind: CmdGeometry, Directive: "TRIS_break",
			MinVersion: Version1200, Types: MaskAirplane, Node: path})
		return
	}
	s.add(geo)
}

func (g *generator) emitLight(s *stream, n *SceneNode, world mgl32.Mat4, path string) {
	l := n.Light
	if l == nil {
		return
	}
	pos := coords.ToExport(coords.TransformPoint(world, mgl32.Vec3{}))

	switch l.Kind {
	case LightNamed:
		if l.Name == "" {
			g.report.Errorf(ErrValidation, path, "LIGHT_NAMED", "light name is empty")
			return
		}
		s.add(Command{Kind: CmdGeometry, Directive: "LIGHT_NAMED",
			Args: append([]string{l.Name}, vecArgs(pos)...), Node: path})
	case LightParam:
		if l.Name == "" {
			g.report.Errorf(ErrValidation, path, "LIGHT_PARAM", "light name is empty")
			return
		}
		if len(l.Params) == 0 {
			g.report.Errorf(ErrValidation, path, "LIGHT_PARAM",
				"parameterized light %q has no parameters", l.Name)
			return
		}
		s.add(Command{Kind: CmdGeometry, Directive: "LIGHT_PARAM",
			Args: append(append([]string{l.Name}, vecArgs(pos)...), fargs(l.Params...)...),
			Node: path})
	case LightCustom:
		if l.Dataref != "" && !ValidDataref(l.Dataref) {
			g.report.Errorf(ErrValidation, path, "LIGHT_CUSTOM",
				"malformed dataref %q; light dropped", l.Dataref)
			return
		}
		args := append(vecArgs(pos), fargs(l.RGBA[0], l.RGBA[1], l.RGBA[2], l.RGBA[3], l.Size,
			l.UV[0], l.UV[1], l.UV[2], l.UV[3])...)
		args = append(args, orNone(l.Dataref))
		s.add(Command{Kind: CmdGeometry, Directive: "LIGHT_CUSTOM", Args: args, Node: path})
	case LightSpillCustom:
		dir := coords.ToExport(coords.TransformDirection(world, l.Direction))
		args := append(vecArgs(pos), fargs(l.RGBA[0], l.RGBA[1], l.RGBA[2], l.RGBA[3], l.Size)...)
		args = append(args, vecArgs(dir)...)
		args = append(args, fargs(l.Semi)...)
		args = append(args, orNone(l.Dataref))
		s.add(Command{Kind: CmdGeometry, Directive: "LIGHT_SPILL_CUSTOM", Args: args, Node: path})
	case LightDefault:
		if r, ok := g.lightRanges[n]; ok {
			s.add(Command{Kind: CmdGeometry, Directive: "LIGHTS",
				Args: []string{itoa(r.start), itoa(r.end - r.start)}, Node: path})
		}
	}
}

func (g *generator) emitSpecial(s *stream, n *SceneNode, world mgl32.Mat4, path string) {
	sp := n.Special
	if sp == nil {
		return
	}
	pos := coords.ToExport(coords.TransformPoint(world, mgl32.Vec3{}))
	phi, theta, psi := coords.ExportAngles(world)

	switch sp.Kind {
	case SpecialEmitter:
		if sp.Name == "" {
			g.report.Errorf(ErrValidation, path, "EMITTER", "particle name is empty")
			return
		}
		if !g.hasParticleSystem {
			g.report.Errorf(ErrConfiguration, path, "EMITTER",
				"emitters require a PARTICLE_SYSTEM definition in the header")
			return
		}
		args := append([]string{sp.Name}, vecArgs(pos)...)
		args = append(args, fargs(phi, theta, psi)...)
		if sp.Index >= 0 {
			args = append(args, itoa(sp.Index))
		}
		if sp.Advanced {
			args = append(args, fargs(sp.Intensity, sp.Duration)...)
		}
		s.add(Command{Kind: CmdGeometry, Directive: "EMITTER", Args: args,
			MinVersion: Version1130, Node: path})
	case SpecialMagnet:
		if sp.Name == "" {
			g.report.Errorf(ErrValidation, path, "MAGNET", "magnet needs a non-blank debug name")
			return
		}
		magnetType := ""
		if sp.MagnetXPad {
			magnetType = "xpad"
		}
		if sp.MagnetFlashlight {
			if magnetType != "" {
				magnetType += "|"
			}
			magnetType += "flashlight"
		}
		if magnetType == "" {
			g.report.Errorf(ErrValidation, path, "MAGNET",
				"magnet %q must be 'xpad' and/or 'flashlight'", sp.Name)
			return
		}
		args := append([]string{sp.Name, magnetType}, vecArgs(pos)...)
		args = append(args, fargs(phi, theta, psi)...)
		s.add(Command{Kind: CmdGeometry, Directive: "MAGNET", Args: args,
			MinVersion: Version1130, Types: MaskCockpit, Node: path})
	case SpecialSmokeBlack, SpecialSmokeWhite:
		d := "SMOKE_WHITE"
		if sp.Kind == SpecialSmokeBlack {
			d = "SMOKE_BLACK"
		}
		if sp.SmokeSize <= 0 {
			g.report.Errorf(ErrValidation, path, d, "smoke puff size must be positive")
			return
		}
		s.add(Command{Kind: CmdGeometry, Directive: d,
			Args: append(vecArgs(pos), fargs(sp.SmokeSize)...), Node: path})
	case SpecialWheel:
		if sp.GearIndex < 0 || sp.GearIndex > MaxGearIndex {
			g.report.Errorf(ErrValidation, path, "ATTR_landing_gear",
				"gear index %d out of range [0, %d]", sp.GearIndex, MaxGearIndex)
			return
		}
		if sp.WheelIndex < 0 || sp.WheelIndex > MaxWheelIndex {
			g.report.Errorf(ErrValidation, path, "ATTR_landing_gear",
				"wheel index %d out of range [0, %d]", sp.WheelIndex, MaxWheelIndex)
			return
		}
		args := append(vecArgs(pos), fargs(phi, theta, psi)...)
		args = append(args, itoa(sp.GearIndex), itoa(sp.WheelIndex))
		s.add(Command{Kind: CmdGeometry, Directive: "ATTR_landing_gear", Args: args,
			MinVersion: Version1210, Types: MaskAircraft, Node: path})
	}
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
