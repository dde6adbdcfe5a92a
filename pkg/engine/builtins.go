package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/edge"
	"github.com/chazu/stitchwork/pkg/geom"
	"github.com/chazu/stitchwork/pkg/ops"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms pattern script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: cut-corner -> cut_corner
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}


// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a 2D point.
type sexpPoint struct {
	p curve.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.p.X, p.p.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a 3D vector: a translation or a set of Euler angles.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps an edge sequence. Builtins that consume a shape copy it
// when they need to.
type sexpShape struct {
	seq edge.EdgeSequence
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %d edges)", len(s.seq))
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpIface wraps an interface.
type sexpIface struct {
	iface *pattern.Interface
}

func (i *sexpIface) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(iface %d edges)", i.iface.Len())
}
func (i *sexpIface) Type() *zygo.RegisteredType { return nil }

// sexpNode references a panel or component by value.
type sexpNode struct {
	node pattern.Assemblable
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	if _, ok := n.node.(*pattern.Panel); ok {
		return fmt.Sprintf("(panel %q)", n.node.Name())
	}
	return fmt.Sprintf("(component %q)", n.node.Name())
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// need checks that at least n positional arguments were given.
func (a kwArgs) need(n int, usage string) error {
	if len(a.positional) < n {
		return fmt.Errorf("expected %s, got %d argument(s)", usage, len(a.positional))
	}
	return nil
}

// flag reports a boolean keyword. A trailing keyword with no value is true.
func (a kwArgs) flag(name string) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return false, nil
	}
	switch b := v.(type) {
	case *zygo.SexpBool:
		return b.Val, nil
	case *zygo.SexpSentinel:
		if b == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("%s: expected true or false, got %s", name, v.SexpString(nil))
}

// float returns a numeric keyword, or def when it is absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer index or count.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toPoint(s zygo.Sexp) (curve.Point, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return curve.Point{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toShape(s zygo.Sexp) (edge.EdgeSequence, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.seq, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toIface(s zygo.Sexp) (*pattern.Interface, error) {
	if i, ok := s.(*sexpIface); ok {
		return i.iface, nil
	}
	return nil, fmt.Errorf("expected interface, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands list and array arguments in place, so that builtins taking
// a variable number of values also accept them collected in a list.
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// dslName turns a registered builtin name back into the kebab-case users
// write.
func dslName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// ---------------------------------------------------------------------------
// Name resolution
// ---------------------------------------------------------------------------

// toNode resolves a node reference or a name defined earlier in the script.
func toNode(d *Design, s zygo.Sexp) (pattern.Assemblable, error) {
	if n, ok := s.(*sexpNode); ok {
		return n.node, nil
	}
	name, err := toString(s)
	if err != nil {
		return nil, fmt.Errorf("expected panel, component or name: %w", err)
	}
	n, ok := d.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no panel or component named %q", name)
	}
	return n, nil
}

func toPanel(d *Design, s zygo.Sexp) (*pattern.Panel, error) {
	n, err := toNode(d, s)
	if err != nil {
		return nil, err
	}
	p, ok := n.(*pattern.Panel)
	if !ok {
		return nil, fmt.Errorf("%q is a component, not a panel", n.Name())
	}
	return p, nil
}

func toComponent(d *Design, s zygo.Sexp) (*pattern.Component, error) {
	n, err := toNode(d, s)
	if err != nil {
		return nil, err
	}
	c, ok := n.(*pattern.Component)
	if !ok {
		return nil, fmt.Errorf("%q is a panel, not a component", n.Name())
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinContext carries what builtins need beyond the design itself.
type builtinContext struct {
	params config.Design
	fitter *ops.Fitter
}

// registerBuiltins installs the pattern DSL builtins into a zygomys
// environment. The builtins populate d during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *Design, bc *builtinContext) {
	add := func(name string, fn func(pa kwArgs) (zygo.Sexp, error)) {
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			out, err := fn(parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", dslName(name), err)
			}
			return out, nil
		})
	}

	// -----------------------------------------------------------------------
	// (pt 1 2), (vec3 1 2 3)
	// -----------------------------------------------------------------------
	add("pt", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("requires exactly 2 arguments, got %d", len(pa.positional))
		}
		x, err := toFloat64(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("x: %w", err)
		}
		y, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("y: %w", err)
		}
		return &sexpPoint{p: curve.Pt(x, y)}, nil
	})

	add("vec3", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 3 {
			return nil, fmt.Errorf("requires exactly 3 arguments, got %d", len(pa.positional))
		}
		var c [3]float64
		for i, a := range pa.positional {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (param "pants.length")
	// -----------------------------------------------------------------------
	add("param", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(1, "a parameter path"); err != nil {
			return nil, err
		}
		path, err := toString(pa.positional[0])
		if err != nil {
			return nil, err
		}
		v, err := bc.params.Lookup(path)
		if err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case float64:
			return &zygo.SexpFloat{Val: v}, nil
		case bool:
			return &zygo.SexpBool{Val: v}, nil
		case string:
			return &zygo.SexpStr{S: v}, nil
		}
		return nil, fmt.Errorf("%s: unsupported value %v", path, v)
	})

	// -----------------------------------------------------------------------
	// Shapes
	// -----------------------------------------------------------------------

	// (from-verts (pt 0 0) (pt 10 0) (pt 10 10) :loop)
	add("from_verts", func(pa kwArgs) (zygo.Sexp, error) {
		args, err := flatten(pa.positional)
		if err != nil {
			return nil, err
		}
		pts := make([]curve.Point, len(args))
		for i, a := range args {
			if pts[i], err = toPoint(a); err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
		}
		loop, err := pa.flag("loop")
		if err != nil {
			return nil, err
		}
		if len(pts) < 2 {
			return nil, fmt.Errorf("needs at least 2 vertices, got %d", len(pts))
		}
		if loop {
			return &sexpShape{seq: edge.Loop(pts...)}, nil
		}
		return &sexpShape{seq: edge.FromVerts(pts...)}, nil
	})

	// (curve-edge start end (pt 0.5 0.3) ...): controls in the edge frame
	add("curve_edge", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(3, "start, end and 1 or 2 control points"); err != nil {
			return nil, err
		}
		pts := make([]curve.Point, len(pa.positional))
		for i, a := range pa.positional {
			p, err := toPoint(a)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			pts[i] = p
		}
		if len(pts) > 4 {
			return nil, fmt.Errorf("at most 2 control points, got %d", len(pts)-2)
		}
		return &sexpShape{seq: edge.EdgeSequence{edge.CurveEdge(pts[0], pts[1], pts[2:]...)}}, nil
	})

	// (circle-edge start end :angle 90 :right) or (circle-edge start end :through p)
	add("circle_edge", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "start and end points"); err != nil {
			return nil, err
		}
		start, err := toPoint(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		end, err := toPoint(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
		var arc edge.Arc
		if v, ok := pa.kw["through"]; ok {
			mid, err := toPoint(v)
			if err != nil {
				return nil, fmt.Errorf("through: %w", err)
			}
			if arc, err = edge.ArcFromThreePoints(start, end, mid); err != nil {
				return nil, err
			}
		} else {
			v, ok := pa.kw["angle"]
			if !ok {
				return nil, fmt.Errorf("requires :angle or :through")
			}
			deg, err := toFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("angle: %w", err)
			}
			right, err := pa.flag("right")
			if err != nil {
				return nil, err
			}
			if arc, err = edge.ArcFromPointsAngle(geom.Radians(deg), right); err != nil {
				return nil, err
			}
		}
		return &sexpShape{seq: edge.EdgeSequence{edge.CircleEdge(start, end, arc)}}, nil
	})

	// (side-with-cut start end :start-cut 2 :end-cut 3)
	add("side_with_cut", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "start and end points"); err != nil {
			return nil, err
		}
		start, err := toPoint(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		end, err := toPoint(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
		sc, err := pa.float("start-cut", 0)
		if err != nil {
			return nil, err
		}
		ec, err := pa.float("end-cut", 0)
		if err != nil {
			return nil, err
		}
		return &sexpShape{seq: edge.SideWithCut(start, end, sc, ec)}, nil
	})

	// (join shape ...): concatenate chained shapes
	add("join", func(pa kwArgs) (zygo.Sexp, error) {
		seqs := make([]edge.EdgeSequence, len(pa.positional))
		for i, a := range pa.positional {
			seq, err := toShape(a)
			if err != nil {
				return nil, fmt.Errorf("shape %d: %w", i, err)
			}
			seqs[i] = seq
		}
		out, err := edge.Join(seqs...)
		if err != nil {
			return nil, err
		}
		return &sexpShape{seq: out}, nil
	})

	// (dart-shape 2 6)
	add("dart_shape", func(pa kwArgs) (zygo.Sexp, error) {
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("requires width and depth")
		}
		w, err := toFloat64(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("width: %w", err)
		}
		dp, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("depth: %w", err)
		}
		seq, err := edge.DartShape(w, dp)
		if err != nil {
			return nil, err
		}
		return &sexpShape{seq: seq}, nil
	})

	// (sub-shape shape from to): edges [from, to) as a detached copy
	add("sub_shape", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(3, "a shape and an edge range"); err != nil {
			return nil, err
		}
		seq, err := toShape(pa.positional[0])
		if err != nil {
			return nil, err
		}
		from, err := toInt(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		to, err := toInt(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		if from < 0 || to > len(seq) || from >= to {
			return nil, fmt.Errorf("range [%d, %d) invalid for %d edges", from, to, len(seq))
		}
		return &sexpShape{seq: seq[from:to].Clone()}, nil
	})

	// -----------------------------------------------------------------------
	// Panels and interfaces
	// -----------------------------------------------------------------------

	// (panel "front" shape)
	add("panel", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "a name and a boundary shape"); err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		seq, err := toShape(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("boundary: %w", err)
		}
		boundary, err := edge.Join(seq)
		if err != nil {
			return nil, fmt.Errorf("boundary: %w", err)
		}
		p := pattern.NewPanel(name, boundary)
		if err := d.addPanel(p); err != nil {
			return nil, err
		}
		return &sexpNode{node: p}, nil
	})

	// (edge-count "front")
	add("edge_count", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(1, "a panel"); err != nil {
			return nil, err
		}
		p, err := toPanel(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		return &zygo.SexpInt{Val: int64(len(p.Edges))}, nil
	})

	// (defiface "front" "waist" 2 4 :ruffle 1.5): boundary edges [2, 4)
	add("defiface", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(3, "a panel, a name and an edge index"); err != nil {
			return nil, err
		}
		p, err := toPanel(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		from, err := toInt(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		to := from + 1
		if len(pa.positional) > 3 {
			if to, err = toInt(pa.positional[3]); err != nil {
				return nil, fmt.Errorf("to: %w", err)
			}
		}
		if from < 0 || to > len(p.Edges) || from >= to {
			return nil, fmt.Errorf("edges [%d, %d) out of range for panel %q with %d edges", from, to, p.Name(), len(p.Edges))
		}
		i := p.SetInterface(name, p.Edges[from:to]...)
		rate, err := pa.float("ruffle", 1)
		if err != nil {
			return nil, err
		}
		i.SetRuffle(rate)
		return &sexpIface{iface: i}, nil
	})

	// (iface "owner" "name")
	add("iface", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "an owner and an interface name"); err != nil {
			return nil, err
		}
		n, err := toNode(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		i := n.Interface(name)
		if i == nil {
			return nil, fmt.Errorf("%q has no interface %q (have %q)", n.Name(), name, n.InterfaceNames())
		}
		return &sexpIface{iface: i}, nil
	})

	// (merge-ifaces a b ...)
	add("merge_ifaces", func(pa kwArgs) (zygo.Sexp, error) {
		args, err := flatten(pa.positional)
		if err != nil {
			return nil, err
		}
		var parts []*pattern.Interface
		for k, a := range args {
			i, err := toIface(a)
			if err != nil {
				return nil, fmt.Errorf("interface %d: %w", k, err)
			}
			parts = append(parts, i)
		}
		if len(parts) == 0 {
			return nil, fmt.Errorf("requires at least one interface")
		}
		return &sexpIface{iface: pattern.FromMultiple(parts...)}, nil
	})

	// (reverse-iface i)
	add("reverse_iface", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(1, "an interface"); err != nil {
			return nil, err
		}
		i, err := toIface(pa.positional[0])
		if err != nil {
			return nil, err
		}
		return &sexpIface{iface: i.Reverse()}, nil
	})

	// (ruffle i 1.5)
	add("ruffle", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "an interface and a rate"); err != nil {
			return nil, err
		}
		i, err := toIface(pa.positional[0])
		if err != nil {
			return nil, err
		}
		rate, err := toFloat64(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("rate: %w", err)
		}
		return &sexpIface{iface: i.SetRuffle(rate)}, nil
	})

	// -----------------------------------------------------------------------
	// Placement
	// -----------------------------------------------------------------------

	// (translate-by "front" (vec3 0 0 10))
	add("translate_by", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "a node and a vec3"); err != nil {
			return nil, err
		}
		n, err := toNode(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		v, err := toVec3(pa.positional[1])
		if err != nil {
			return nil, err
		}
		n.TranslateBy(v)
		return &sexpNode{node: n}, nil
	})

	// (rotate-by "front" (vec3 0 90 0)): XYZ Euler angles in degrees
	add("rotate_by", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "a node and a vec3 of angles"); err != nil {
			return nil, err
		}
		n, err := toNode(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		v, err := toVec3(pa.positional[1])
		if err != nil {
			return nil, err
		}
		n.RotateBy(geom.FromEuler([3]float64{v.X, v.Y, v.Z}))
		return &sexpNode{node: n}, nil
	})

	// (top-center-pivot "front")
	add("top_center_pivot", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(1, "a panel"); err != nil {
			return nil, err
		}
		p, err := toPanel(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		p.TopCenterPivot()
		return &sexpNode{node: p}, nil
	})

	// (mirror "front")
	add("mirror", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(1, "a node"); err != nil {
			return nil, err
		}
		n, err := toNode(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		n.Mirror()
		return &sexpNode{node: n}, nil
	})

	// -----------------------------------------------------------------------
	// Components and stitches
	// -----------------------------------------------------------------------

	// (component "skirt" "front" "back" ...)
	add("component", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(1, "a name"); err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		args, err := flatten(pa.positional[1:])
		if err != nil {
			return nil, err
		}
		c := pattern.NewComponent(name)
		for k, a := range args {
			n, err := toNode(d, a)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", k, err)
			}
			c.Add(n)
		}
		if err := d.addComponent(c); err != nil {
			return nil, err
		}
		return &sexpNode{node: c}, nil
	})

	// (expose "skirt" "waist" i)
	add("expose", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(3, "a component, a name and an interface"); err != nil {
			return nil, err
		}
		c, err := toComponent(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		name, err := toString(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		i, err := toIface(pa.positional[2])
		if err != nil {
			return nil, err
		}
		c.Expose(name, i)
		return &sexpIface{iface: i}, nil
	})

	// (stitch "owner" a b)
	add("stitch", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(3, "an owner and two interfaces"); err != nil {
			return nil, err
		}
		n, err := toNode(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		a, err := toIface(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("side a: %w", err)
		}
		b, err := toIface(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("side b: %w", err)
		}
		switch n := n.(type) {
		case *pattern.Panel:
			n.Stitches.Append(a, b)
		case *pattern.Component:
			n.Stitch(a, b)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// Operators
	// -----------------------------------------------------------------------

	// (cut-corner shape "front" 0 1)
	add("cut_corner", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(4, "a shape, a panel and two edge indices"); err != nil {
			return nil, err
		}
		shape, p, err := shapeAndPanel(d, pa)
		if err != nil {
			return nil, err
		}
		e1, err := toInt(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("first edge: %w", err)
		}
		e2, err := toInt(pa.positional[3])
		if err != nil {
			return nil, fmt.Errorf("second edge: %w", err)
		}
		res, err := bc.fitter.CutCorner(shape, p, e1, e2)
		if err != nil {
			return nil, err
		}
		return &sexpShape{seq: res.Run}, nil
	})

	// (project-shape shape "front" 2)
	add("project_shape", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(3, "a shape, a panel and an edge index"); err != nil {
			return nil, err
		}
		shape, p, err := shapeAndPanel(d, pa)
		if err != nil {
			return nil, err
		}
		eid, err := toInt(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("edge: %w", err)
		}
		run, err := ops.Project(shape, p, eid)
		if err != nil {
			return nil, err
		}
		return &sexpShape{seq: run}, nil
	})

	// (cut-into-edge shape "front" 0 12 :right true :flip false)
	// returns the placed shape so that its flanks can become interfaces
	add("cut_into_edge", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(4, "a shape, a panel, an edge index and an offset"); err != nil {
			return nil, err
		}
		shape, p, err := shapeAndPanel(d, pa)
		if err != nil {
			return nil, err
		}
		eid, err := toInt(pa.positional[2])
		if err != nil {
			return nil, fmt.Errorf("edge: %w", err)
		}
		if eid < 0 || eid >= len(p.Edges) {
			return nil, fmt.Errorf("edge %d out of range for panel %q", eid, p.Name())
		}
		offset, err := toFloat64(pa.positional[3])
		if err != nil {
			return nil, fmt.Errorf("offset: %w", err)
		}
		right, err := pa.flag("right")
		if err != nil {
			return nil, err
		}
		flip, err := pa.flag("flip")
		if err != nil {
			return nil, err
		}
		cut, err := ops.CutIntoEdge(shape, p.Edges[eid], offset, right, flip)
		if err != nil {
			return nil, err
		}
		if err := p.ReplaceEdges(eid, 1, cut.Edges); err != nil {
			return nil, err
		}
		return &sexpShape{seq: cut.Shape}, nil
	})

	// (subdivide "front" 1 0.3 0.7): split an edge by arc length fractions
	add("subdivide", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(3, "a panel, an edge index and fractions"); err != nil {
			return nil, err
		}
		p, err := toPanel(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		eid, err := toInt(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("edge: %w", err)
		}
		if eid < 0 || eid >= len(p.Edges) {
			return nil, fmt.Errorf("edge %d out of range for panel %q", eid, p.Name())
		}
		args, err := flatten(pa.positional[2:])
		if err != nil {
			return nil, err
		}
		fractions := make([]float64, len(args))
		for k, a := range args {
			if fractions[k], err = toFloat64(a); err != nil {
				return nil, fmt.Errorf("fraction %d: %w", k, err)
			}
		}
		parts, err := p.Edges[eid].SubdivideLen(fractions)
		if err != nil {
			return nil, err
		}
		if err := p.ReplaceEdges(eid, 1, parts); err != nil {
			return nil, err
		}
		return &sexpShape{seq: parts}, nil
	})

	// (distribute-y "gore" 6 :name "skirt"): a group of the rotated copies
	add("distribute_y", func(pa kwArgs) (zygo.Sexp, error) {
		if err := pa.need(2, "a component and a copy count"); err != nil {
			return nil, err
		}
		c, err := toComponent(d, pa.positional[0])
		if err != nil {
			return nil, err
		}
		n, err := toInt(pa.positional[1])
		if err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
		name := c.Name() + "_ring"
		if v, ok := pa.kw["name"]; ok {
			if name, err = toString(v); err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
		}
		copies, err := ops.DistributeY(c, n)
		if err != nil {
			return nil, err
		}
		group := pattern.NewComponent(name)
		for _, cp := range copies[1:] {
			if err := d.addComponent(cp); err != nil {
				return nil, err
			}
		}
		for _, cp := range copies {
			group.Add(cp)
		}
		if err := d.addComponent(group); err != nil {
			return nil, err
		}
		return &sexpNode{node: group}, nil
	})
}

func shapeAndPanel(d *Design, pa kwArgs) (edge.EdgeSequence, *pattern.Panel, error) {
	shape, err := toShape(pa.positional[0])
	if err != nil {
		return nil, nil, err
	}
	p, err := toPanel(d, pa.positional[1])
	if err != nil {
		return nil, nil, err
	}
	return shape, p, nil
}
