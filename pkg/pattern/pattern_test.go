package pattern

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/go-cmp/cmp"
	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/geom"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// rect returns a w by h panel with one interface per side.
func rect(name string, w, h float64) *Panel {
	p := NewPanel(name, edge.SimpleLoop(curve.Pt(w, 0), curve.Pt(w, h), curve.Pt(0, h)))
	p.SetInterface("bottom", p.Edges[0])
	p.SetInterface("right", p.Edges[1])
	p.SetInterface("top", p.Edges[2])
	p.SetInterface("left", p.Edges[3])
	return p
}

func worldPoints(p *Panel, pl geom.Placement) []v3.Vec {
	var out []v3.Vec
	for _, pt := range p.Edges.Points() {
		out = append(out, pl.ApplyPlanar(pt))
	}
	sort.Slice(out, func(i, j int) bool {
		if !near(out[i].X, out[j].X, 1e-9) {
			return out[i].X < out[j].X
		}
		if !near(out[i].Y, out[j].Y, 1e-9) {
			return out[i].Y < out[j].Y
		}
		return out[i].Z < out[j].Z
	})
	return out
}

var approxVec = cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) <= 1e-9 })

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

func TestFromMultipleLength(t *testing.T) {
	a, b := rect("a", 3, 4), rect("b", 5, 6)
	merged := FromMultiple(a.Interface("top"), b.Interface("right"), a.Interface("left"))
	if merged.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", merged.Len())
	}
	if got := merged.Length(); !near(got, 3+6+4, 1e-12) {
		t.Errorf("Length() = %g, want 13", got)
	}
	if got := len(merged.Panels()); got != 2 {
		t.Errorf("Panels() has %d entries, want 2", got)
	}
}

func TestReverseLeavesGeometry(t *testing.T) {
	a := rect("a", 3, 4)
	top := FromMultiple(a.Interface("right"), a.Interface("top"))
	before := a.Edges.Points()

	rev := top.Reverse()
	if d := cmp.Diff(before, a.Edges.Points()); d != "" {
		t.Errorf("Reverse moved vertices:\n%s", d)
	}
	parts := rev.Parts()
	if parts[0].Edge != a.Edges[2] || !parts[0].Reversed {
		t.Errorf("first reversed part = %+v, want top edge reversed", parts[0])
	}

	back := rev.Reverse()
	if d := cmp.Diff(top.Parts(), back.Parts(), cmp.Comparer(func(x, y *Panel) bool { return x == y }),
		cmp.Comparer(func(x, y *edge.Edge) bool { return x == y })); d != "" {
		t.Errorf("double reverse differs:\n%s", d)
	}
}

func TestProjectedLength(t *testing.T) {
	a := rect("a", 12, 1)
	top := a.Interface("top")
	if got := top.ProjectedLength(); got != 12 {
		t.Errorf("ProjectedLength() = %g, want 12", got)
	}
	top.SetRuffle(1.5)
	if got := top.ProjectedLength(); !near(got, 18, 1e-12) {
		t.Errorf("ProjectedLength() with ruffle = %g, want 18", got)
	}
	if got := top.Length(); got != 12 {
		t.Errorf("Length() changed with ruffle: %g", got)
	}
}

// ---------------------------------------------------------------------------
// Stitching
// ---------------------------------------------------------------------------

func TestStitchLengths(t *testing.T) {
	tests := []struct {
		name    string
		wa, wb  float64
		ruffle  float64
		wantErr bool
	}{
		{"equal", 12, 12, 1, false},
		{"mismatch", 12, 15, 1, true},
		{"ruffled to match", 12, 15, 15.0 / 12.0, false},
		{"too much ruffle", 12, 15, 1.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := rect("a", tt.wa, 5), rect("b", tt.wb, 5)
			a.Interface("top").SetRuffle(tt.ruffle)
			c := NewComponent("c", a, b)
			c.Stitch(a.Interface("top"), b.Interface("top"))

			spec, err := c.Assemble()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a length mismatch")
				}
				var se *StitchError
				if !errors.As(err, &se) {
					t.Fatalf("error %v is not a *StitchError", err)
				}
				if se.Owner != "c" || se.Index != 0 {
					t.Errorf("StitchError = %+v", se)
				}
				return
			}
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if len(spec.Stitches) != 1 {
				t.Fatalf("got %d stitches, want 1", len(spec.Stitches))
			}
			side := spec.Stitches[0].Sides[0]
			if !near(side.Ruffle, tt.ruffle, 1e-12) {
				t.Errorf("side ruffle = %g, want %g", side.Ruffle, tt.ruffle)
			}
			want := []EdgeRef{{Panel: "a", Edge: 2}}
			if d := cmp.Diff(want, side.Edges); d != "" {
				t.Errorf("side edges:\n%s", d)
			}
		})
	}
}

func TestAssembleReportsEveryMismatch(t *testing.T) {
	a, b := rect("a", 10, 5), rect("b", 11, 6)
	c := NewComponent("c", a, b)
	c.Stitch(a.Interface("top"), b.Interface("top"))
	c.Stitch(a.Interface("left"), b.Interface("left"))
	c.Stitch(a.Interface("right"), a.Interface("left"))

	_, err := c.Assemble()
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not an *AssemblyError", err)
	}
	if len(ae.Problems) != 2 {
		t.Errorf("got %d problems, want 2: %v", len(ae.Problems), ae.Problems)
	}
}

func TestStitchOutsideTree(t *testing.T) {
	a, stray := rect("a", 4, 4), rect("stray", 4, 4)
	c := NewComponent("c", a)
	c.Stitch(a.Interface("top"), stray.Interface("top"))
	if _, err := c.Assemble(); err == nil {
		t.Fatal("stitch to a panel outside the tree assembled")
	}
}

func TestStitchOutsideOwnerSubtree(t *testing.T) {
	a, b := rect("a", 4, 4), rect("b", 4, 4)
	left, right := NewComponent("left", a), NewComponent("right", b)
	left.Stitch(a.Interface("top"), b.Interface("top"))
	root := NewComponent("root", left, right)
	_, err := root.Assemble()
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want an AssemblyError", err)
	}
	if !strings.Contains(ae.Error(), `outside the subtree of "left"`) {
		t.Errorf("error does not name the owner: %v", ae)
	}

	// the same rule declared on the common parent is fine
	ok := NewComponent("ok", NewComponent("l", a), NewComponent("r", b))
	ok.Stitch(a.Interface("top"), b.Interface("top"))
	if _, err := ok.Assemble(); err != nil {
		t.Errorf("stitch on the common parent: %v", err)
	}
}

func TestStitchOrderAndPanelOrder(t *testing.T) {
	p1, p2, p3 := rect("p1", 4, 4), rect("p2", 4, 4), rect("p3", 4, 4)
	p1.Stitches.Append(p1.Interface("left"), p1.Interface("right"))
	sub := NewComponent("sub", p1, p2)
	sub.Stitch(p1.Interface("top"), p2.Interface("top"))
	root := NewComponent("root", sub, p3)
	root.Stitch(p2.Interface("bottom"), p3.Interface("bottom"))

	spec, err := root.Assemble()
	if err != nil {
		t.Fatal(err)
	}
	var names, owners []string
	for _, p := range spec.Panels {
		names = append(names, p.Name)
	}
	for _, s := range spec.Stitches {
		owners = append(owners, s.Owner)
	}
	if d := cmp.Diff([]string{"p1", "p2", "p3"}, names); d != "" {
		t.Errorf("panel order:\n%s", d)
	}
	if d := cmp.Diff([]string{"p1", "sub", "root"}, owners); d != "" {
		t.Errorf("stitch order:\n%s", d)
	}
}

// ---------------------------------------------------------------------------
// Assembly output
// ---------------------------------------------------------------------------

func TestAssemblePanelSpec(t *testing.T) {
	p := rect("front", 10, 20)
	p.Edges[1].Curve = edge.NewBezier(curve.Pt(0.5, 0.2))
	p.TranslateBy(v3.Vec{Z: 5})
	p.RotateBy(geom.RotationY(30))
	c := NewComponent("body", p)
	c.TranslateBy(v3.Vec{X: 1})

	spec, err := c.Assemble()
	if err != nil {
		t.Fatal(err)
	}
	ps, ok := spec.Panel("front")
	if !ok {
		t.Fatal("panel missing from spec")
	}
	if d := cmp.Diff([3]float64{1, 0, 5}, ps.Translation, approxVec); d != "" {
		t.Errorf("translation:\n%s", d)
	}
	if d := cmp.Diff([3]float64{0, 30, 0}, ps.Rotation, cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-6 })); d != "" {
		t.Errorf("rotation:\n%s", d)
	}
	wantVerts := [][2]float64{{0, 0}, {10, 0}, {10, 20}, {0, 20}}
	if d := cmp.Diff(wantVerts, ps.Vertices); d != "" {
		t.Errorf("vertices:\n%s", d)
	}
	for j, e := range ps.Edges {
		if e.Endpoints != [2]int{j, (j + 1) % 4} {
			t.Errorf("edge %d endpoints = %v", j, e.Endpoints)
		}
		if p.Edges[j].GeometricID != j {
			t.Errorf("edge %d GeometricID = %d", j, p.Edges[j].GeometricID)
		}
	}
	if ps.Edges[0].Curvature != nil {
		t.Error("straight edge has curvature")
	}
	want := &CurvatureSpec{Type: "quadratic", Params: [][2]float64{{0.5, 0.2}}}
	if d := cmp.Diff(want, ps.Edges[1].Curvature); d != "" {
		t.Errorf("curvature:\n%s", d)
	}
}

func TestAssembleArcSpec(t *testing.T) {
	p := rect("p", 2, 2)
	arc, err := edge.ArcFromPointsAngle(math.Pi, true)
	if err != nil {
		t.Fatal(err)
	}
	p.Edges[0].Curve = arc
	spec, err := p.Assemble()
	if err != nil {
		t.Fatal(err)
	}
	cs := spec.Panels[0].Edges[0].Curvature
	if cs == nil || cs.Type != "circle" || !near(cs.Radius, 1, 1e-12) || !cs.Right || cs.LargeArc {
		t.Errorf("arc curvature = %+v", cs)
	}
}

func TestAssembleRejectsOpenBoundary(t *testing.T) {
	p := NewPanel("open", edge.FromVerts(curve.Pt(0, 0), curve.Pt(1, 0), curve.Pt(1, 1)))
	if _, err := p.Assemble(); err == nil {
		t.Fatal("open boundary assembled")
	}
}

func TestDuplicateNamesFailAssembly(t *testing.T) {
	c := NewComponent("c", rect("x", 1, 1), rect("x", 2, 2))
	if _, err := c.Assemble(); err == nil {
		t.Fatal("duplicate panel names assembled")
	}
}

// ---------------------------------------------------------------------------
// Placement and editing
// ---------------------------------------------------------------------------

func TestTopCenterPivot(t *testing.T) {
	p := rect("p", 10, 4)
	p.TranslateBy(v3.Vec{X: 3})
	p.TopCenterPivot()
	box := p.BBox()
	if !near(box.Center().X, 0, 1e-12) || !near(box.MaxY(), 0, 1e-12) {
		t.Errorf("box after pivot = %+v, want top center at origin", box)
	}
	if p.Translation() != (v3.Vec{X: 3}) {
		t.Errorf("translation changed to %v", p.Translation())
	}
}

func TestSetPivotReplicatesPlacement(t *testing.T) {
	p := rect("p", 10, 4)
	p.RotateBy(geom.RotationY(45))
	p.TranslateBy(v3.Vec{Y: 2})
	before := worldPoints(p, p.Placement)
	p.SetPivot(curve.Pt(5, 4), true)
	if d := cmp.Diff(before, worldPoints(p, p.Placement), approxVec); d != "" {
		t.Errorf("world outline moved:\n%s", d)
	}
}

func TestBBox3D(t *testing.T) {
	p := rect("p", 2, 3)
	c := NewComponent("c", p)
	c.TranslateBy(v3.Vec{Z: 7})
	box := c.BBox3D()
	if box.Min != (v3.Vec{X: 0, Y: 0, Z: 7}) || box.Max != (v3.Vec{X: 2, Y: 3, Z: 7}) {
		t.Errorf("BBox3D = %v..%v", box.Min, box.Max)
	}
}

func TestBBox3DCurvedRotated(t *testing.T) {
	p := NewPanel("p", edge.SimpleLoop(curve.Pt(2, 0), curve.Pt(2, 2), curve.Pt(0, 2)))
	p.Edges[1].Curve = edge.ArcFromSweep(math.Pi)
	p.SetRotation(geom.FromEuler([3]float64{0, 0, 30}))
	box := p.BBox3D()
	cos, sin := math.Cos(math.Pi/6), math.Sin(math.Pi/6)
	if want := 2*cos - sin + 1; !near(box.Max.X, want, 1e-9) {
		t.Errorf("max x = %g, want %g", box.Max.X, want)
	}
	if want := 2 + cos; !near(box.Max.Y, want, 1e-9) {
		t.Errorf("max y = %g, want %g", box.Max.Y, want)
	}
	if want := -2 * sin; !near(box.Min.X, want, 1e-9) {
		t.Errorf("min x = %g, want %g", box.Min.X, want)
	}
}

func TestReplaceEdgesRepairsInterfaces(t *testing.T) {
	p := rect("p", 10, 4)
	bottom := p.Interface("bottom")
	rev := bottom.Reverse()
	run := edge.FromVerts(curve.Pt(0, 0), curve.Pt(4, 0), curve.Pt(10, 0))
	if err := p.ReplaceEdges(0, 1, run); err != nil {
		t.Fatal(err)
	}
	if len(p.Edges) != 5 {
		t.Fatalf("boundary has %d edges, want 5", len(p.Edges))
	}
	if bottom.Len() != 2 || bottom.Edges()[0] != run[0] || bottom.Edges()[1] != run[1] {
		t.Errorf("bottom interface not rebuilt: %v", bottom.Edges())
	}
	if rev.Len() != 2 || rev.Edges()[0] != run[1] || !rev.Parts()[0].Reversed {
		t.Errorf("reversed view not rebuilt in order: %+v", rev.Parts())
	}
	if !near(bottom.Length(), 10, 1e-12) {
		t.Errorf("bottom length = %g, want 10", bottom.Length())
	}
	if p.Interface("top").Edges()[0] != p.Edges[3] {
		t.Error("untouched interface lost its edge")
	}
}

func TestReplaceEdgesMappedKeepsViewsDisjoint(t *testing.T) {
	p := rect("p", 10, 4)
	bottom, right := p.Interface("bottom"), p.Interface("right")
	both := FromMultiple(bottom, right)
	back := right.Reverse()
	run := edge.FromVerts(curve.Pt(0, 0), curve.Pt(6, 0), curve.Pt(10, 3), curve.Pt(10, 4))
	if err := p.ReplaceEdgesMapped(0, 2, run, [][2]int{{0, 1}, {2, 3}}); err != nil {
		t.Fatal(err)
	}
	if len(p.Edges) != 5 {
		t.Fatalf("boundary has %d edges, want 5", len(p.Edges))
	}
	if bottom.Len() != 1 || bottom.Edges()[0] != run[0] {
		t.Errorf("bottom views %v, want only %v", bottom.Edges(), run[0])
	}
	if right.Len() != 1 || right.Edges()[0] != run[2] {
		t.Errorf("right views %v, want only %v", right.Edges(), run[2])
	}
	if back.Len() != 1 || back.Edges()[0] != run[2] || !back.Parts()[0].Reversed {
		t.Errorf("reversed right view = %+v", back.Parts())
	}
	if got := both.Edges(); len(got) != len(run) || got[0] != run[0] || got[1] != run[1] || got[2] != run[2] {
		t.Errorf("view over both edges = %v, want the whole run %v", got, run)
	}
}

func TestReplaceEdgesMappedRejectsSpans(t *testing.T) {
	run := edge.FromVerts(curve.Pt(0, 0), curve.Pt(6, 0), curve.Pt(10, 3), curve.Pt(10, 4))
	for _, spans := range [][][2]int{
		{{0, 1}},
		{{0, 2}, {1, 3}},
		{{0, 1}, {2, 4}},
		{{1, 0}, {2, 3}},
	} {
		p := rect("p", 10, 4)
		var se *edge.ShapeError
		if err := p.ReplaceEdgesMapped(0, 2, run, spans); !errors.As(err, &se) {
			t.Errorf("spans %v: err = %v, want a ShapeError", spans, err)
		}
		if len(p.Edges) != 4 {
			t.Errorf("spans %v: panel modified on error", spans)
		}
	}
}

func TestMirror(t *testing.T) {
	p := rect("p", 6, 3)
	p.Edges[2].Curve = edge.NewBezier(curve.Pt(0.3, 0.2), curve.Pt(0.7, -0.1))
	p.RotateBy(geom.FromEuler([3]float64{10, 20, 0}))
	p.TranslateBy(v3.Vec{X: 4, Z: 1})
	c := NewComponent("c", p)
	c.TranslateBy(v3.Vec{X: 2})

	world := p.Placement.Then(c.Placement)
	before := worldPoints(p, world)
	topLen := p.Interface("top").Length()
	mid := world.ApplyPlanar(p.Edges[2].Eval(0.5))

	c.Mirror()

	if !p.Edges.IsLooped() {
		t.Fatal("mirrored boundary is not looped")
	}
	world = p.Placement.Then(c.Placement)
	var want []v3.Vec
	for _, v := range before {
		want = append(want, v3.Vec{X: -v.X, Y: v.Y, Z: v.Z})
	}
	got := worldPoints(p, world)
	sort.Slice(want, func(i, j int) bool {
		if !near(want[i].X, want[j].X, 1e-9) {
			return want[i].X < want[j].X
		}
		if !near(want[i].Y, want[j].Y, 1e-9) {
			return want[i].Y < want[j].Y
		}
		return want[i].Z < want[j].Z
	})
	if d := cmp.Diff(want, got, approxVec); d != "" {
		t.Errorf("mirrored outline:\n%s", d)
	}

	top := p.Interface("top")
	if !near(top.Length(), topLen, 1e-9) {
		t.Errorf("top length = %g, want %g", top.Length(), topLen)
	}
	part := top.Parts()[0]
	if !part.Reversed {
		t.Error("mirrored interface does not trace the flipped edge backwards")
	}
	gotMid := world.ApplyPlanar(part.Edge.Eval(0.5))
	if d := cmp.Diff(v3.Vec{X: -mid.X, Y: mid.Y, Z: mid.Z}, gotMid, approxVec); d != "" {
		t.Errorf("mirrored curve midpoint:\n%s", d)
	}
}

func TestCloneComponent(t *testing.T) {
	a, b := rect("a", 4, 2), rect("b", 4, 3)
	c := NewComponent("half", a, b)
	c.Stitch(a.Interface("top"), b.Interface("bottom"))
	c.Expose("waist", b.Interface("top"))

	cp := c.Clone("_1")
	if cp.Name() != "half_1" {
		t.Errorf("Name() = %q", cp.Name())
	}
	panels := cp.Panels()
	if len(panels) != 2 || panels[0].Name() != "a_1" || panels[1].Name() != "b_1" {
		t.Fatalf("cloned panels = %v", panels)
	}
	if panels[0] == a || panels[0].Edges[0] == a.Edges[0] {
		t.Error("clone shares geometry with the original")
	}
	st := cp.Stitches[0]
	if st.A.Parts()[0].Panel != panels[0] || st.B.Parts()[0].Panel != panels[1] {
		t.Error("stitch not rebound to the cloned panels")
	}
	if cp.Interface("waist").Edges()[0] != panels[1].Edges[2] {
		t.Error("exposed interface not rebound")
	}

	panels[0].Edges.Shift(curve.Vec(100, 0))
	if a.Edges[0].Start.X != 0 {
		t.Error("editing the clone moved the original")
	}

	if _, err := NewComponent("both", c, cp).Assemble(); err != nil {
		t.Errorf("original and clone do not assemble together: %v", err)
	}
}

func TestCloneRepairsStayLocal(t *testing.T) {
	p := rect("p", 10, 4)
	cp := p.Clone("_2")
	run := edge.FromVerts(curve.Pt(0, 0), curve.Pt(5, 0), curve.Pt(10, 0))
	if err := cp.ReplaceEdges(0, 1, run); err != nil {
		t.Fatal(err)
	}
	if p.Interface("bottom").Len() != 1 {
		t.Error("editing the clone changed the original's interface")
	}
	if cp.Interface("bottom").Len() != 2 {
		t.Error("clone's interface not repaired")
	}
}

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	l := slog.Default()
	SetLogger(l)
	if Logger() != l {
		t.Error("Logger() did not return the installed logger")
	}
	SetLogger(nil)
	if Logger() == nil || Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("nil did not restore the silent logger")
	}
}

func TestGeometricIDFollowsBoundary(t *testing.T) {
	ids := func(p *Panel) []int {
		var out []int
		for _, e := range p.Edges {
			out = append(out, e.GeometricID)
		}
		return out
	}
	p := rect("p", 10, 4)
	if d := cmp.Diff([]int{0, 1, 2, 3}, ids(p)); d != "" {
		t.Errorf("new panel ids:\n%s", d)
	}
	run := edge.FromVerts(curve.Pt(10, 0), curve.Pt(12, 2), curve.Pt(10, 4))
	if err := p.ReplaceEdges(1, 1, run); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]int{0, 1, 2, 3, 4}, ids(p)); d != "" {
		t.Errorf("ids after replace:\n%s", d)
	}
	if p.Edges[2] != run[1] {
		t.Fatal("replacement landed in the wrong place")
	}
}
