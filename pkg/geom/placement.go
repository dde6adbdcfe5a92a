package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"honnef.co/go/curve"
)

// Placement is a rigid transform from a panel's plane (z = 0) into world
// space: world = Rotation * p + Translation.
type Placement struct {
	Translation v3.Vec
	Rotation    sdf.M44
}

// Identity returns the placement that leaves points where they are.
func Identity() Placement {
	return Placement{Rotation: sdf.Identity3d()}
}

// Apply maps a 3D point through the placement.
func (p Placement) Apply(pt v3.Vec) v3.Vec {
	return p.Rotation.MulPosition(pt).Add(p.Translation)
}

// ApplyPlanar maps a panel-local 2D point into world space.
func (p Placement) ApplyPlanar(pt curve.Point) v3.Vec {
	return p.Apply(v3.Vec{X: pt.X, Y: pt.Y})
}

// TranslateBy shifts the placement in world space.
func (p *Placement) TranslateBy(d v3.Vec) {
	p.Translation = p.Translation.Add(d)
}

// RotateBy composes r after the current rotation. The translation is not
// affected, so the object turns about its own origin.
func (p *Placement) RotateBy(r sdf.M44) {
	p.Rotation = r.Mul(p.Rotation)
}

// Then returns the placement equivalent to applying p first and parent
// second.
func (p Placement) Then(parent Placement) Placement {
	return Placement{
		Rotation:    parent.Rotation.Mul(p.Rotation),
		Translation: parent.Apply(p.Translation),
	}
}

// MirrorX conjugates the placement by the reflection x -> -x, which is what
// mirroring the panel geometry across the YZ plane requires.
func (p *Placement) MirrorX() {
	s := sdf.Scale3d(v3.Vec{X: -1, Y: 1, Z: 1})
	p.Rotation = s.Mul(p.Rotation).Mul(s)
	p.Translation = v3.Vec{X: -p.Translation.X, Y: p.Translation.Y, Z: p.Translation.Z}
}

// Matrix returns the rotation as a row-major 3x3 matrix.
func (p Placement) Matrix() [3][3]float64 {
	return RotationMatrix(p.Rotation)
}

// RotationMatrix extracts the linear part of m by mapping the basis vectors.
func RotationMatrix(m sdf.M44) [3][3]float64 {
	origin := m.MulPosition(v3.Vec{})
	cols := [3]v3.Vec{
		m.MulPosition(v3.Vec{X: 1}).Sub(origin),
		m.MulPosition(v3.Vec{Y: 1}).Sub(origin),
		m.MulPosition(v3.Vec{Z: 1}).Sub(origin),
	}
	var r [3][3]float64
	for j, c := range cols {
		r[0][j] = c.X
		r[1][j] = c.Y
		r[2][j] = c.Z
	}
	return r
}

// Euler returns the rotation as intrinsic XYZ Euler angles in degrees, the
// convention used by cloth simulators consuming the serialized pattern.
func (p Placement) Euler() [3]float64 {
	r := p.Matrix()
	var a, b, c float64
	sb := clamp(r[0][2], -1, 1)
	b = math.Asin(sb)
	if math.Abs(sb) < 1-1e-9 {
		a = math.Atan2(-r[1][2], r[2][2])
		c = math.Atan2(-r[0][1], r[0][0])
	} else {
		// gimbal lock: fold the z rotation into x
		a = math.Atan2(r[2][1], r[1][1])
		c = 0
	}
	return [3]float64{Degrees(a), Degrees(b), Degrees(c)}
}

// FromEuler builds the rotation Rx(a) * Ry(b) * Rz(c) from degrees.
func FromEuler(deg [3]float64) sdf.M44 {
	return sdf.RotateX(Radians(deg[0])).Mul(sdf.RotateY(Radians(deg[1]))).Mul(sdf.RotateZ(Radians(deg[2])))
}

// RotationY returns a rotation about the world Y axis by deg degrees.
func RotationY(deg float64) sdf.M44 {
	return sdf.RotateY(Radians(deg))
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
