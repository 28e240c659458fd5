// Package scenefile loads export scenes from YAML descriptions. The format
// mirrors the engine's scene model one to one: a header block plus a node
// tree with meshes, lights, special empties and animations.
package scenefile

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/justinwol/xplane-obj8/pkg/obj8"
)

// File is the top-level YAML document.
type File struct {
	Name   string  `yaml:"name"`
	Header Header  `yaml:"header"`
	Root   []*Node `yaml:"root"`
}

// Header mirrors the file-scope directives.
type Header struct {
	Texture       string `yaml:"texture"`
	TextureLit    string `yaml:"texture_lit"`
	TextureNormal string `yaml:"texture_normal"`

	TextureMaps map[string]string `yaml:"texture_maps"` // usage -> path

	NormalMetalness bool `yaml:"normal_metalness"`
	BlendGlass      bool `yaml:"blend_glass"`

	Specular   *float32 `yaml:"specular"`
	Luminance  *int     `yaml:"luminance"`
	Tint       *Tint    `yaml:"tint"`
	NoShadow   bool     `yaml:"no_shadow"`
	CockpitLit bool     `yaml:"cockpit_lit"`

	GlobalNoBlend     *float32 `yaml:"global_no_blend"`
	GlobalShadowBlend *float32 `yaml:"global_shadow_blend"`

	LayerGroup       string      `yaml:"layer_group"`
	LayerGroupOffset int         `yaml:"layer_group_offset"`
	SlopeLimit       *[4]float32 `yaml:"slope_limit"`
	Tilted           bool        `yaml:"tilted"`
	RequireSurface   string      `yaml:"require_surface"`
	SlungLoadWeight  float32     `yaml:"slung_load_weight"`

	CockpitRegions [][4]int `yaml:"cockpit_regions"`

	ParticleSystem string `yaml:"particle_system"`

	Rain *Rain `yaml:"rain"`

	Decals       []Decal       `yaml:"decals"`
	NormalDecals []NormalDecal `yaml:"normal_decals"`
	TextureTile  *TextureTile  `yaml:"texture_tile"`
	DitherAlpha *DitherAlpha `yaml:"dither_alpha"`
	NoAlpha     bool         `yaml:"no_alpha"`

	Exports []string `yaml:"exports"`
}

// Tint is the instanced-scenery albedo/emissive darkening pair.
type Tint struct {
	Albedo   float32 `yaml:"albedo"`
	Emissive float32 `yaml:"emissive"`
}

// Rain mirrors the weather system block.
type Rain struct {
	Scale float32 `yaml:"scale"`

	FrictionDataref string  `yaml:"friction_dataref"`
	FrictionDry     float32 `yaml:"friction_dry"`
	FrictionWet     float32 `yaml:"friction_wet"`

	ThermalTexture string          `yaml:"thermal_texture"`
	ThermalSources []ThermalSource `yaml:"thermal_sources"`

	WiperTexture string  `yaml:"wiper_texture"`
	Wipers       []Wiper `yaml:"wipers"`
}

// ThermalSource is one windshield heat source.
type ThermalSource struct {
	DefrostTime        float32 `yaml:"defrost_time"`
	OnOffDataref       string  `yaml:"onoff_dataref"`
	TemperatureDataref string  `yaml:"temperature_dataref"`
}

// Wiper is one wiper sweep.
type Wiper struct {
	Dataref      string  `yaml:"dataref"`
	Start        float32 `yaml:"start"`
	End          float32 `yaml:"end"`
	NominalWidth float32 `yaml:"nominal_width"`
}

// Decal is one secondary texture layer.
type Decal struct {
	Mode    string     `yaml:"mode"` // "", "rgba", "keyed"
	Scale   float32    `yaml:"scale"`
	RGBA    [4]float32 `yaml:"rgba"`
	Alpha   float32    `yaml:"alpha"`
	Texture string     `yaml:"texture"`
}

// NormalDecal mirrors NORMAL_DECAL.
type NormalDecal struct {
	Scale    float32 `yaml:"scale"`
	Texture  string  `yaml:"texture"`
	GlossKey float32 `yaml:"gloss_key"`
}

// TextureTile mirrors TEXTURE_TILE.
type TextureTile struct {
	XTiles  int    `yaml:"x_tiles"`
	YTiles  int    `yaml:"y_tiles"`
	XPages  int    `yaml:"x_pages"`
	YPages  int    `yaml:"y_pages"`
	Texture string `yaml:"texture"`
}

// DitherAlpha mirrors DITHER_ALPHA.
type DitherAlpha struct {
	Softness float32 `yaml:"softness"`
	Bleed    float32 `yaml:"bleed"`
}

// Node is one tree node. Rotation is authored as XYZ Euler degrees.
type Node struct {
	Name        string      `yaml:"name"`
	Translation [3]float32  `yaml:"translation"`
	Rotation    [3]float32  `yaml:"rotation"` // degrees, XYZ order
	Scale       *[3]float32 `yaml:"scale"`

	Mesh     *Mesh     `yaml:"mesh"`
	Material *Material `yaml:"material"`
	Light    *Light    `yaml:"light"`
	Special  *Special  `yaml:"special"`

	Animations []Animation `yaml:"animations"`

	Children []*Node `yaml:"children"`
}

// Mesh holds inline geometry.
type Mesh struct {
	Primitive string `yaml:"primitive"` // tris, lines, line_strip, quad_strip, fan

	Vertices []Vertex `yaml:"vertices"`
	Indices  []int    `yaml:"indices"`

	LineVertices []LineVertex `yaml:"line_vertices"`
	LineIndices  []int        `yaml:"line_indices"`

	RainCannotEscape bool `yaml:"rain_cannot_escape"`
}

// Vertex is one mesh corner.
type Vertex struct {
	Pos    [3]float32 `yaml:"pos"`
	Normal [3]float32 `yaml:"normal"`
	UV     [2]float32 `yaml:"uv"`
}

// LineVertex is one line point.
type LineVertex struct {
	Pos   [3]float32 `yaml:"pos"`
	Color [3]float32 `yaml:"color"`
}

// Material mirrors the per-mesh render state.
type Material struct {
	Blend      string  `yaml:"blend"` // "", "off", "shadow"
	BlendRatio float32 `yaml:"blend_ratio"`

	Specular float32 `yaml:"specular"`

	Hard     bool   `yaml:"hard"`
	HardDeck bool   `yaml:"hard_deck"`
	Surface  string `yaml:"surface"`

	TwoSided    bool `yaml:"two_sided"`
	DrawDisable bool `yaml:"draw_disable"`
	SolidCamera bool `yaml:"solid_camera"`
	Draped      bool `yaml:"draped"`

	LightLevel *LightLevel `yaml:"light_level"`

	Cockpit        string         `yaml:"cockpit"` // "", "panel", "region", "device"
	CockpitRegion  int            `yaml:"cockpit_region"`
	Device         *DeviceBinding `yaml:"device"`
	CockpitLitOnly bool           `yaml:"cockpit_lit_only"`

	HudGlass bool `yaml:"hud_glass"`
}

// LightLevel mirrors ATTR_light_level.
type LightLevel struct {
	V1          float32 `yaml:"v1"`
	V2          float32 `yaml:"v2"`
	Dataref     string  `yaml:"dataref"`
	Photometric bool    `yaml:"photometric"`
	Brightness  int     `yaml:"brightness"`
}

// DeviceBinding mirrors ATTR_cockpit_device.
type DeviceBinding struct {
	Name            string `yaml:"name"`
	Bus             int    `yaml:"bus"`
	LightingChannel int    `yaml:"lighting_channel"`
	AutoAdjust      bool   `yaml:"auto_adjust"`
}

// Light is a light node payload.
type Light struct {
	Kind   string    `yaml:"kind"` // named, param, custom, spill_custom, default
	Name   string    `yaml:"light_name"`
	Params []float32 `yaml:"params"`

	RGBA      [4]float32 `yaml:"rgba"`
	Size      float32    `yaml:"size"`
	UV        [4]float32 `yaml:"uv"`
	Dataref   string     `yaml:"dataref"`
	Direction [3]float32 `yaml:"direction"`
	Semi      float32    `yaml:"semi"`

	Color [3]float32 `yaml:"color"`
}

// Special is a special-empty payload.
type Special struct {
	Kind string `yaml:"kind"` // emitter, magnet, smoke_black, smoke_white, wheel

	Name      string  `yaml:"particle_name"`
	Index     *int    `yaml:"index"`
	Advanced  bool    `yaml:"advanced"`
	Intensity float32 `yaml:"intensity"`
	Duration  float32 `yaml:"duration"`

	MagnetXPad       bool `yaml:"magnet_xpad"`
	MagnetFlashlight bool `yaml:"magnet_flashlight"`

	SmokeSize float32 `yaml:"smoke_size"`

	GearIndex  int `yaml:"gear_index"`
	WheelIndex int `yaml:"wheel_index"`
}

// Animation is one dataref-driven directive set.
type Animation struct {
	Kind    string `yaml:"kind"` // translate, rotate, show, hide
	Dataref string `yaml:"dataref"`

	Axis      [3]float32 `yaml:"axis"`
	Keyframes []Keyframe `yaml:"keyframes"`

	Range [2]float32 `yaml:"range"` // show/hide interval
	Loop  float32    `yaml:"loop"`
}

// Keyframe maps a dataref value to a transform sample.
type Keyframe struct {
	Value float32    `yaml:"value"`
	Pos   [3]float32 `yaml:"pos"`
	Angle float32    `yaml:"angle"`
}

// Load reads and converts a scene file.
func Load(path string) (*obj8.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene file %s: %w", path, err)
	}
	return f.Convert()
}

// Convert maps the YAML document to an engine scene.
func (f *File) Convert() (*obj8.Scene, error) {
	scene := &obj8.Scene{Name: f.Name}
	if scene.Name == "" {
		scene.Name = "scene"
	}

	h, err := f.Header.convert()
	if err != nil {
		return nil, err
	}
	scene.Header = h

	root := obj8.NewNode(scene.Name)
	for _, n := range f.Root {
		child, err := n.convert()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}
	scene.Root = root
	return scene, nil
}

func (h *Header) convert() (obj8.Header, error) {
	out := obj8.Header{
		Texture:           h.Texture,
		TextureLit:        h.TextureLit,
		TextureNormal:     h.TextureNormal,
		NormalMetalness:   h.NormalMetalness,
		BlendGlass:        h.BlendGlass,
		GlobalSpecular:    h.Specular,
		Luminance:         h.Luminance,
		NoShadow:          h.NoShadow,
		CockpitLit:        h.CockpitLit,
		GlobalNoBlend:     h.GlobalNoBlend,
		GlobalShadowBlend: h.GlobalShadowBlend,
		LayerGroup:        h.LayerGroup,
		LayerGroupOffset:  h.LayerGroupOffset,
		SlopeLimit:        h.SlopeLimit,
		Tilted:            h.Tilted,
		RequireSurface:    h.RequireSurface,
		SlungLoadWeight:   h.SlungLoadWeight,
		CockpitRegions:    h.CockpitRegions,
		ParticleSystem:    h.ParticleSystem,
		NoAlpha:           h.NoAlpha,
		ExportPaths:       h.Exports,
	}

	for usage, path := range h.TextureMaps {
		switch usage {
		case "normal":
			out.TextureMapNormal = path
		case "material_gloss":
			out.TextureMapMaterialGloss = path
		case "gloss":
			out.TextureMapGloss = path
		case "metallic":
			out.TextureMapMetallic = path
		case "roughness":
			out.TextureMapRoughness = path
		default:
			return out, fmt.Errorf("unknown texture map usage %q", usage)
		}
	}

	if h.Tint != nil {
		out.Tint = &obj8.Tint{Albedo: h.Tint.Albedo, Emissive: h.Tint.Emissive}
	}

	if h.Rain != nil {
		r := &obj8.Rain{
			Scale:           h.Rain.Scale,
			FrictionDataref: h.Rain.FrictionDataref,
			FrictionDry:     h.Rain.FrictionDry,
			FrictionWet:     h.Rain.FrictionWet,
			ThermalTexture:  h.Rain.ThermalTexture,
			WiperTexture:    h.Rain.WiperTexture,
		}
		for _, s := range h.Rain.ThermalSources {
			r.ThermalSources = append(r.ThermalSources, obj8.ThermalSource{
				DefrostTime:        s.DefrostTime,
				OnOffDataref:       s.OnOffDataref,
				TemperatureDataref: s.TemperatureDataref,
			})
		}
		for _, w := range h.Rain.Wipers {
			r.Wipers = append(r.Wipers, obj8.Wiper{
				Dataref: w.Dataref, Start: w.Start, End: w.End, NominalWidth: w.NominalWidth,
			})
		}
		out.Rain = r
	}

	for _, d := range h.Decals {
		mode := obj8.DecalSimple
		switch d.Mode {
		case "", "simple":
		case "rgba":
			mode = obj8.DecalRGBA
		case "keyed":
			mode = obj8.DecalKeyed
		default:
			return out, fmt.Errorf("unknown decal mode %q", d.Mode)
		}
		out.Decals = append(out.Decals, obj8.Decal{
			Mode: mode, Scale: d.Scale, RGBA: d.RGBA, Alpha: d.Alpha, Texture: d.Texture,
		})
	}

	for _, d := range h.NormalDecals {
		out.NormalDecals = append(out.NormalDecals, obj8.NormalDecal{
			Scale: d.Scale, Texture: d.Texture, GlossKey: d.GlossKey,
		})
	}

	if h.TextureTile != nil {
		out.TextureTile = &obj8.TextureTile{
			XTiles: h.TextureTile.XTiles, YTiles: h.TextureTile.YTiles,
			XPages: h.TextureTile.XPages, YPages: h.TextureTile.YPages,
			Texture: h.TextureTile.Texture,
		}
	}
	if h.DitherAlpha != nil {
		out.DitherAlpha = &obj8.DitherAlpha{
			Softness: h.DitherAlpha.Softness, Bleed: h.DitherAlpha.Bleed,
		}
	}
	return out, nil
}

func (n *Node) convert() (*obj8.SceneNode, error) {
	out := obj8.NewNode(n.Name)
	out.Translation = mgl32.Vec3{n.Translation[0], n.Translation[1], n.Translation[2]}
	out.Rotation = eulerQuat(n.Rotation)
	if n.Scale != nil {
		out.Scale = mgl32.Vec3{n.Scale[0], n.Scale[1], n.Scale[2]}
	}

	payloads := 0
	if n.Mesh != nil {
		payloads++
		m, err := n.Mesh.convert()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		out.Kind = obj8.NodeMesh
		out.Mesh = m
		if n.Material != nil {
			mat, err := n.Material.convert()
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", n.Name, err)
			}
			out.Material = mat
		}
	}
	if n.Light != nil {
		payloads++
		l, err := n.Light.convert()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		out.Kind = obj8.NodeLight
		out.Light = l
	}
	if n.Special != nil {
		payloads++
		sp, err := n.Special.convert()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		out.Kind = obj8.NodeSpecial
		out.Special = sp
	}
	if payloads > 1 {
		return nil, fmt.Errorf("node %q: at most one of mesh, light, special allowed", n.Name)
	}

	for _, a := range n.Animations {
		conv, err := a.convert()
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		out.Animations = append(out.Animations, conv)
	}

	for _, c := range n.Children {
		child, err := c.convert()
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, child)
	}
	return out, nil
}

func (m *Mesh) convert() (*obj8.Mesh, error) {
	out := &obj8.Mesh{RainCannotEscape: m.RainCannotEscape}
	switch m.Primitive {
	case "", "tris":
		out.Kind = obj8.PrimitiveTris
	case "lines":
		out.Kind = obj8.PrimitiveLines
	case "line_strip":
		out.Kind = obj8.PrimitiveLineStrip
	case "quad_strip":
		out.Kind = obj8.PrimitiveQuadStrip
	case "fan":
		out.Kind = obj8.PrimitiveFan
	default:
		return nil, fmt.Errorf("unknown primitive %q", m.Primitive)
	}

	if out.Kind.IsLine() {
		for _, v := range m.LineVertices {
			out.LineVertices = append(out.LineVertices, obj8.LineVertex{
				Position: mgl32.Vec3{v.Pos[0], v.Pos[1], v.Pos[2]},
				Color:    mgl32.Vec3{v.Color[0], v.Color[1], v.Color[2]},
			})
		}
		for _, i := range m.LineIndices {
			if i < 0 || i >= len(out.LineVertices) {
				return nil, fmt.Errorf("line index %d out of range", i)
			}
		}
		out.LineIndices = m.LineIndices
		return out, nil
	}

	for _, v := range m.Vertices {
		out.Vertices = append(out.Vertices, obj8.MeshVertex{
			Position: mgl32.Vec3{v.Pos[0], v.Pos[1], v.Pos[2]},
			Normal:   mgl32.Vec3{v.Normal[0], v.Normal[1], v.Normal[2]},
			UV:       mgl32.Vec2{v.UV[0], v.UV[1]},
		})
	}
	if len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("triangle index count %d is not a multiple of 3", len(m.Indices))
	}
	for _, i := range m.Indices {
		if i < 0 || i >= len(out.Vertices) {
			return nil, fmt.Errorf("vertex index %d out of range", i)
		}
	}
	out.Indices = m.Indices
	return out, nil
}

func (m *Material) convert() (*obj8.Material, error) {
	out := &obj8.Material{
		BlendRatio:     m.BlendRatio,
		SpecularRatio:  m.Specular,
		Hard:           m.Hard,
		HardDeck:       m.HardDeck,
		SurfaceType:    m.Surface,
		TwoSided:       m.TwoSided,
		DrawDisable:    m.DrawDisable,
		SolidCamera:    m.SolidCamera,
		Draped:         m.Draped,
		CockpitRegion:  m.CockpitRegion,
		CockpitLitOnly: m.CockpitLitOnly,
		HudGlass:       m.HudGlass,
	}

	switch m.Blend {
	case "", "on":
		out.Blend = obj8.BlendOn
	case "off":
		out.Blend = obj8.BlendOff
	case "shadow":
		out.Blend = obj8.BlendShadow
	default:
		return nil, fmt.Errorf("unknown blend mode %q", m.Blend)
	}

	switch m.Cockpit {
	case "":
		out.Cockpit = obj8.CockpitNone
	case "panel":
		out.Cockpit = obj8.CockpitPanel
	case "region":
		out.Cockpit = obj8.CockpitRegion
	case "device":
		out.Cockpit = obj8.CockpitDevice
	default:
		return nil, fmt.Errorf("unknown cockpit feature %q", m.Cockpit)
	}

	if m.LightLevel != nil {
		out.LightLevel = &obj8.LightLevel{
			V1: m.LightLevel.V1, V2: m.LightLevel.V2,
			Dataref:     m.LightLevel.Dataref,
			Photometric: m.LightLevel.Photometric,
			Brightness:  m.LightLevel.Brightness,
		}
	}
	if m.Device != nil {
		out.Device = &obj8.DeviceBinding{
			Name: m.Device.Name, Bus: m.Device.Bus,
			LightingChannel: m.Device.LightingChannel,
			AutoAdjust:      m.Device.AutoAdjust,
		}
	}
	return out, nil
}

func (l *Light) convert() (*obj8.Light, error) {
	out := &obj8.Light{
		Name:      l.Name,
		Params:    l.Params,
		RGBA:      l.RGBA,
		Size:      l.Size,
		UV:        l.UV,
		Dataref:   l.Dataref,
		Direction: mgl32.Vec3{l.Direction[0], l.Direction[1], l.Direction[2]},
		Semi:      l.Semi,
		Color:     mgl32.Vec3{l.Color[0], l.Color[1], l.Color[2]},
	}
	switch l.Kind {
	case "named":
		out.Kind = obj8.LightNamed
	case "param":
		out.Kind = obj8.LightParam
	case "custom":
		out.Kind = obj8.LightCustom
	case "spill_custom":
		out.Kind = obj8.LightSpillCustom
	case "", "default":
		out.Kind = obj8.LightDefault
	default:
		return nil, fmt.Errorf("unknown light kind %q", l.Kind)
	}
	return out, nil
}

func (s *Special) convert() (*obj8.SpecialEmpty, error) {
	out := &obj8.SpecialEmpty{
		Name:             s.Name,
		Index:            -1,
		Advanced:         s.Advanced,
		Intensity:        s.Intensity,
		Duration:         s.Duration,
		MagnetXPad:       s.MagnetXPad,
		MagnetFlashlight: s.MagnetFlashlight,
		SmokeSize:        s.SmokeSize,
		GearIndex:        s.GearIndex,
		WheelIndex:       s.WheelIndex,
	}
	if s.Index != nil {
		out.Index = *s.Index
	}
	switch s.Kind {
	case "emitter":
		out.Kind = obj8.SpecialEmitter
	case "magnet":
		out.Kind = obj8.SpecialMagnet
	case "smoke_black":
		out.Kind = obj8.SpecialSmokeBlack
	case "smoke_white":
		out.Kind = obj8.SpecialSmokeWhite
	case "wheel":
		out.Kind = obj8.SpecialWheel
	default:
		return nil, fmt.Errorf("unknown special kind %q", s.Kind)
	}
	return out, nil
}

func (a *Animation) convert() (obj8.Animation, error) {
	out := obj8.Animation{
		Dataref:       a.Dataref,
		Axis:          mgl32.Vec3{a.Axis[0], a.Axis[1], a.Axis[2]},
		ShowHideRange: a.Range,
		Loop:          a.Loop,
	}
	switch a.Kind {
	case "translate":
		out.Kind = obj8.AnimTranslate
	case "rotate":
		out.Kind = obj8.AnimRotate
	case "show":
		out.Kind = obj8.AnimShow
	case "hide":
		out.Kind = obj8.AnimHide
	default:
		return out, fmt.Errorf("unknown animation kind %q", a.Kind)
	}
	for _, k := range a.Keyframes {
		out.Keyframes = append(out.Keyframes, obj8.Keyframe{
			Value:    k.Value,
			Position: mgl32.Vec3{k.Pos[0], k.Pos[1], k.Pos[2]},
			Angle:    k.Angle,
		})
	}
	return out, nil
}

// eulerQuat builds a rotation quaternion from XYZ Euler degrees, applied
// X then Y then Z.
func eulerQuat(deg [3]float32) mgl32.Quat {
	const toRad = math.Pi / 180
	qx := mgl32.QuatRotate(deg[0]*toRad, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(deg[1]*toRad, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(deg[2]*toRad, mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx)
}
