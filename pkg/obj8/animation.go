package obj8

import "github.com/go-gl/mathgl/mgl32"

// AnimKind discriminates the animation directive family a node carries.
type AnimKind int

const (
	AnimTranslate AnimKind = iota
	AnimRotate
	AnimShow
	AnimHide
)

// Keyframe maps one dataref value to a transform sample. Position is in
// scene space for translations; Angle is degrees about the rotation axis.
type Keyframe struct {
	Value    float32
	Position mgl32.Vec3
	Angle    float32
}

// Animation is one dataref-driven directive set on a node. Keyframe values
// must be non-decreasing; translations and rotations need at least two
// keyframes. Two keyframes use the short directive form, more use the
// _begin/_key/_end form.
type Animation struct {
	Kind    AnimKind
	Dataref string

	Keyframes []Keyframe

	// Axis is the rotation axis in scene space.
	Axis mgl32.Vec3

	// ShowHideRange is the [v1, v2] dataref interval for show/hide.
	ShowHideRange [2]float32

	// Loop, when positive, emits ANIM_keyframe_loop with this period.
	Loop float32
}
