package geom

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"honnef.co/go/curve"
)

const eps = 1e-9

func nearVec(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

// ---------------------------------------------------------------------------
// Local frames
// ---------------------------------------------------------------------------

func TestRelToAbs(t *testing.T) {
	start, end := curve.Pt(1, 1), curve.Pt(3, 1)
	tests := []struct {
		name string
		rel  curve.Point
		want curve.Point
	}{
		{"origin", curve.Pt(0, 0), curve.Pt(1, 1)},
		{"end", curve.Pt(1, 0), curve.Pt(3, 1)},
		{"midpoint", curve.Pt(0.5, 0), curve.Pt(2, 1)},
		{"left of direction", curve.Pt(0.5, 0.5), curve.Pt(2, 2)},
		{"right of direction", curve.Pt(0, -1), curve.Pt(1, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelToAbs(start, end, tt.rel)
			if !Near(got, tt.want, eps) {
				t.Errorf("RelToAbs(%v) = %v, want %v", tt.rel, got, tt.want)
			}
			back := AbsToRel(start, end, got)
			if !Near(back, tt.rel, eps) {
				t.Errorf("AbsToRel(%v) = %v, want %v", got, back, tt.rel)
			}
		})
	}
}

func TestAbsToRelDegenerate(t *testing.T) {
	p := curve.Pt(2, 2)
	if got := AbsToRel(p, p, curve.Pt(5, 5)); got != curve.Pt(0, 0) {
		t.Errorf("AbsToRel on a zero segment = %v, want origin", got)
	}
}

// ---------------------------------------------------------------------------
// Placement
// ---------------------------------------------------------------------------

func TestEulerRoundTrip(t *testing.T) {
	for _, deg := range [][3]float64{
		{0, 0, 0},
		{30, 0, 0},
		{0, 45, 0},
		{0, 0, -60},
		{10, 20, 30},
		{-70, 15, 100},
	} {
		p := Placement{Rotation: FromEuler(deg)}
		got := p.Euler()
		for i := range got {
			if !NearlyEqual(got[i], deg[i], 1e-6) {
				t.Errorf("Euler(FromEuler(%v)) = %v", deg, got)
				break
			}
		}
	}
}

func TestPlacementApply(t *testing.T) {
	p := Identity()
	p.RotateBy(RotationY(90))
	p.TranslateBy(v3.Vec{X: 1, Y: 2, Z: 3})

	got := p.ApplyPlanar(curve.Pt(1, 0))
	want := v3.Vec{X: 1, Y: 2, Z: 2}
	if !nearVec(got, want, eps) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func TestPlacementThen(t *testing.T) {
	child := Identity()
	child.TranslateBy(v3.Vec{X: 5})
	parent := Identity()
	parent.RotateBy(RotationY(180))
	parent.TranslateBy(v3.Vec{Z: 1})

	world := child.Then(parent)
	pt := v3.Vec{X: 1, Y: 1}
	want := parent.Apply(child.Apply(pt))
	if got := world.Apply(pt); !nearVec(got, want, eps) {
		t.Errorf("composed Apply = %v, want %v", got, want)
	}
}

func TestMirrorX(t *testing.T) {
	p := Identity()
	p.RotateBy(FromEuler([3]float64{0, 30, 10}))
	p.TranslateBy(v3.Vec{X: 4, Y: -1, Z: 2})

	local := v3.Vec{X: 2, Y: 3}
	before := p.Apply(local)

	m := p
	m.MirrorX()
	after := m.Apply(v3.Vec{X: -local.X, Y: local.Y})

	want := v3.Vec{X: -before.X, Y: before.Y, Z: before.Z}
	if !nearVec(after, want, eps) {
		t.Errorf("mirrored point = %v, want %v", after, want)
	}
}

func TestBox(t *testing.T) {
	b := EmptyBox()
	if !IsEmpty(b) {
		t.Fatal("EmptyBox is not empty")
	}
	b = Include(b, v3.Vec{X: 1, Y: 2, Z: 3})
	b = Include(b, v3.Vec{X: -1, Y: 5, Z: 0})
	if IsEmpty(b) {
		t.Fatal("box with points is empty")
	}
	if b.Min != (v3.Vec{X: -1, Y: 2, Z: 0}) || b.Max != (v3.Vec{X: 1, Y: 5, Z: 3}) {
		t.Errorf("box = %v..%v", b.Min, b.Max)
	}
	if math.IsInf(b.Min.X, 0) {
		t.Error("infinite bound leaked")
	}
}
