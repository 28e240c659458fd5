package obj8

import "github.com/go-gl/mathgl/mgl32"

// NodeKind discriminates what a scene node contributes to the export.
type NodeKind int

const (
	NodeGroup NodeKind = iota // transform only, no payload
	NodeMesh
	NodeLight
	NodeSpecial // emitter, magnet, smoke, landing gear
)

// SceneNode is one node of the export hierarchy. Constructed once per
// export by the host; the engine never mutates it.
type SceneNode struct {
	Name        string
	Kind        NodeKind
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	Mesh     *Mesh
	Material *Material // resolved flat material for mesh nodes
	Light    *Light
	Special  *SpecialEmpty

	// Animations wrap this node's subtree in an ANIM_begin/ANIM_end
	// bracket, one directive set per entry, in authored order.
	Animations []Animation

	// Children are emitted in authored order. Order is significant:
	// attribute-state deltas depend on it.
	Children []*SceneNode
}

// NewNode returns a group node with an identity transform.
func NewNode(name string) *SceneNode {
	return &SceneNode{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// PrimitiveKind selects the geometry command a mesh is emitted as.
type PrimitiveKind int

const (
	PrimitiveTris PrimitiveKind = iota
	PrimitiveLines
	PrimitiveLineStrip
	PrimitiveQuadStrip
	PrimitiveFan
)

// Directive returns the OBJ directive name for the primitive kind.
func (k PrimitiveKind) Directive() string {
	switch k {
	case PrimitiveTris:
		return "TRIS"
	case PrimitiveLines:
		return "LINES"
	case PrimitiveLineStrip:
		return "LINE_STRIP"
	case PrimitiveQuadStrip:
		return "QUAD_STRIP"
	case PrimitiveFan:
		return "FAN"
	default:
		return "TRIS"
	}
}

// IsLine reports whether the kind indexes the VLINE pool rather than VT.
func (k PrimitiveKind) IsLine() bool {
	return k == PrimitiveLines || k == PrimitiveLineStrip
}

// MeshVertex is one corner of a triangle-based mesh in scene space.
type MeshVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// LineVertex is one point of a line primitive: position plus RGB color.
type LineVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Mesh is the geometry payload of a mesh node. Triangle-based kinds use
// Vertices/Indices; line kinds use LineVertices/LineIndices.
type Mesh struct {
	Kind     PrimitiveKind
	Vertices []MeshVertex
	Indices  []int

	LineVertices []LineVertex
	LineIndices  []int

	// RainCannotEscape brackets the geometry in TRIS_break so rain
	// droplets stay inside closed geometry (v1200+).
	RainCannotEscape bool
}

// BlendMode is the alpha blending state of a material.
type BlendMode int

const (
	BlendOn BlendMode = iota
	BlendOff
	BlendShadow
)

// CockpitFeature selects the panel texture mode of a mesh.
type CockpitFeature int

const (
	CockpitNone CockpitFeature = iota
	CockpitPanel
	CockpitRegion
	CockpitDevice
)

// LightLevel overrides the lit-texture brightness of a mesh over a
// dataref-driven range (ATTR_light_level).
type LightLevel struct {
	V1, V2  float32
	Dataref string

	// Photometric switches V2 to a brightness in nts (v1200+).
	Photometric bool
	Brightness  int
}

// DeviceBinding binds a mesh to a cockpit device screen
// (ATTR_cockpit_device, v1200+).
type DeviceBinding struct {
	Name            string
	Bus             int
	LightingChannel int
	AutoAdjust      bool
}

// Material is the flat, already-resolved render state of a mesh node. The
// host resolves inheritance before the engine runs; the engine only diffs
// these against the current attribute state.
type Material struct {
	Blend      BlendMode
	BlendRatio float32 // alpha cutoff for BlendOff / BlendShadow

	SpecularRatio float32 // ATTR_shiny_rat, [0, 2]

	Hard        bool
	HardDeck    bool
	SurfaceType string // "", "asphalt", "grass", ...

	TwoSided    bool
	DrawDisable bool
	SolidCamera bool

	// Draped conforms the geometry to the terrain (scenery types only).
	Draped bool

	LightLevel *LightLevel

	Cockpit        CockpitFeature
	CockpitRegion  int
	Device         *DeviceBinding
	CockpitLitOnly bool

	HudGlass bool // v1200+, aircraft/cockpit
}

// LightKind selects the light directive family.
type LightKind int

const (
	LightNamed LightKind = iota
	LightParam
	LightCustom
	LightSpillCustom
	LightDefault // legacy VLIGHT/LIGHTS pool entry
)

// Light is the payload of a light node. Position comes from the node
// transform; Direction is in scene space and converted on export.
type Light struct {
	Kind   LightKind
	Name   string    // named/param light name
	Params []float32 // LIGHT_PARAM parameter list, in directive order

	// Custom billboard/spill fields.
	RGBA      [4]float32
	Size      float32
	UV        [4]float32 // s1 t1 s2 t2
	Dataref   string
	Direction mgl32.Vec3
	Semi      float32

	// Legacy pool color.
	Color mgl32.Vec3
}

// SpecialKind selects the special-empty directive.
type SpecialKind int

const (
	SpecialEmitter SpecialKind = iota
	SpecialMagnet
	SpecialSmokeBlack
	SpecialSmokeWhite
	SpecialWheel
)

// SpecialEmpty is the payload of a special node: particle emitters, VR
// magnets, smoke puffs and landing gear locations.
type SpecialEmpty struct {
	Kind SpecialKind

	// Emitter fields.
	Name      string // particle name; magnet debug name
	Index     int    // emitter index, -1 when unset
	Advanced  bool
	Intensity float32
	Duration  float32

	// Magnet fields.
	MagnetXPad       bool
	MagnetFlashlight bool

	// Smoke puff size.
	SmokeSize float32

	// Landing gear fields (v1210+).
	GearIndex  int
	WheelIndex int
}

// Gear and wheel index limits for ATTR_landing_gear.
const (
	MaxGearIndex  = 15
	MaxWheelIndex = 7
)

// DecalMode selects the decal keying rule.
type DecalMode int

const (
	DecalSimple DecalMode = iota // DECAL scale texture
	DecalRGBA                    // DECAL_RGBA scale texture
	DecalKeyed                   // DECAL_KEYED scale r g b a alpha texture
)

// Decal is one of the up-to-two secondary texture layers of an export.
type Decal struct {
	Mode    DecalMode
	Scale   float32 // (0, 10]
	RGBA    [4]float32
	Alpha   float32
	Texture string
}

// NormalDecal is a decal applied to the normal/material channel
// (NORMAL_DECAL). It occupies a decal slot and follows the decal exclusions.
type NormalDecal struct {
	Scale    float32
	Texture  string
	GlossKey float32
}

// TextureTile randomizes albedo tiling (TEXTURE_TILE). Mutually exclusive
// with decals.
type TextureTile struct {
	XTiles, YTiles int
	XPages, YPages int
	Texture        string
}

// DitherAlpha enables stochastic alpha (DITHER_ALPHA softness bleed).
type DitherAlpha struct {
	Softness float32 // [0, 1]
	Bleed    float32 // [0, 1]
}

// Tint is the instanced-scenery GLOBAL_tint pair. Components outside
// [0, 1] are clamped on emission.
type Tint struct {
	Albedo   float32
	Emissive float32
}

// ThermalSource is one windshield heat source. TemperatureDataref is
// required below 12.1 where THERMAL_source2 is unavailable.
type ThermalSource struct {
	DefrostTime        float32 // seconds, [0, 3600]
	OnOffDataref       string
	TemperatureDataref string
}

// Wiper is one windshield wiper sweep (WIPER_param).
type Wiper struct {
	Dataref      string
	Start, End   float32
	NominalWidth float32
}

// Rain bundles the X-Plane 12 weather system settings.
type Rain struct {
	// Scale in [0.1, 1.0]; exactly 1.0 is the default and not written.
	Scale float32

	FrictionDataref string
	FrictionDry     float32 // [0, 2]
	FrictionWet     float32 // [0, 2]

	ThermalTexture string
	ThermalSources []ThermalSource

	WiperTexture string
	Wipers       []Wiper
}

// Header is the file-scope state of an export: textures, global render
// settings and the weather system. Everything here is set at most once per
// file; the state machine rejects conflicting re-sets.
type Header struct {
	Texture       string
	TextureLit    string
	TextureNormal string

	// TEXTURE_MAP slots (v1200+).
	TextureMapNormal        string
	TextureMapMaterialGloss string
	TextureMapGloss         string
	TextureMapMetallic      string
	TextureMapRoughness     string

	NormalMetalness bool
	BlendGlass      bool // aircraft/cockpit only

	GlobalSpecular *float32
	Luminance      *int  // clamped to [0, 65530]
	Tint           *Tint // instanced scenery only
	NoShadow       bool
	CockpitLit     bool

	// File-scope blending, for export types without per-mesh attributes.
	GlobalNoBlend     *float32 // alpha cutoff
	GlobalShadowBlend *float32 // alpha cutoff

	LayerGroup       string
	LayerGroupOffset int
	SlopeLimit       *[4]float32 // min/max pitch, min/max roll
	Tilted           bool
	RequireSurface   string // "", "wet", "dry"
	SlungLoadWeight  float32

	// CockpitRegions are left/bottom plus power-of-two width/height
	// exponents, at most four.
	CockpitRegions [][4]int

	ParticleSystem string // .pss path, v1130+

	Rain *Rain

	Decals       []Decal // slots 0-1
	NormalDecals []NormalDecal
	TextureTile  *TextureTile
	DitherAlpha  *DitherAlpha
	NoAlpha      bool

	// ExportPaths become EXPORT directives for library objects.
	ExportPaths []string
}

// Scene is the complete read-only input of one export.
type Scene struct {
	Name   string
	Root   *SceneNode
	Header Header
}
