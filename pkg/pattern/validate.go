package pattern

import (
	"fmt"
	"math"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/edge"
)

// Severity indicates whether a finding blocks assembly or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks assembly
	SeverityWarning                 // advisory
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding is one validation result.
type Finding struct {
	Where    string // panel or component name, empty for tree-level findings
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Where == "" {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Where, f.Message)
}

// ValidationResult separates blocking findings from advisory ones.
type ValidationResult struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether there are no blocking findings.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks on the tree rooted at root: an
// acyclic tree, unique panel names, closed boundaries and interfaces that
// view boundary edges of panels inside the tree. It never mutates the tree.
func Validate(root Assemblable) []Finding {
	fs := validateTree(root)
	if len(fs) > 0 {
		// later checks walk the tree and need it acyclic
		return fs
	}
	fs = append(fs, validateNames(root)...)
	fs = append(fs, validateBoundaries(root)...)
	fs = append(fs, validateInterfaces(root)...)
	return fs
}

// ValidateAll runs the structural checks followed by the geometric ones.
func ValidateAll(root Assemblable, tol config.Tolerance) ValidationResult {
	var result ValidationResult
	tier1 := Validate(root)
	for _, f := range tier1 {
		result.add(f)
	}
	if !result.OK() {
		return result
	}
	for _, f := range validateGeometry(root, tol) {
		result.add(f)
	}
	return result
}

func (r *ValidationResult) add(f Finding) {
	if f.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, f)
	} else {
		r.Errors = append(r.Errors, f)
	}
}

func errorf(where, format string, args ...any) Finding {
	return Finding{Where: where, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(where, format string, args ...any) Finding {
	return Finding{Where: where, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// validateTree checks that no node is its own ancestor and that no node is
// reachable twice, using DFS with 3-color marking.
func validateTree(root Assemblable) []Finding {
	const (
		white = iota
		gray
		black
	)
	color := make(map[Assemblable]int)
	var fs []Finding

	var visit func(n Assemblable) bool
	visit = func(n Assemblable) bool {
		switch color[n] {
		case gray:
			fs = append(fs, errorf(n.Name(), "node is its own ancestor"))
			return true
		case black:
			fs = append(fs, errorf(n.Name(), "node appears more than once in the tree"))
			return false
		}
		color[n] = gray
		if c, ok := n.(*Component); ok {
			for _, ch := range c.children {
				if visit(ch) {
					return true
				}
			}
		}
		color[n] = black
		return false
	}
	visit(root)
	return fs
}

func validateNames(root Assemblable) []Finding {
	var fs []Finding
	seen := make(map[string]bool)
	for _, p := range panelsOf(root) {
		switch {
		case p.name == "":
			fs = append(fs, errorf("", "panel has an empty name"))
		case seen[p.name]:
			fs = append(fs, errorf(p.name, "duplicate panel name"))
		}
		seen[p.name] = true
	}
	return fs
}

func validateBoundaries(root Assemblable) []Finding {
	var fs []Finding
	for _, p := range panelsOf(root) {
		switch {
		case len(p.Edges) == 0:
			fs = append(fs, errorf(p.name, "boundary has no edges"))
		case !p.Edges.IsChained():
			fs = append(fs, errorf(p.name, "boundary edges are not chained"))
		case !p.Edges.IsLooped():
			fs = append(fs, errorf(p.name, "boundary is not a closed loop"))
		}
	}
	return fs
}

// validateInterfaces checks every named interface and every stitch side.
// A stitch may only view panels of its owner's own subtree.
func validateInterfaces(root Assemblable) []Finding {
	var fs []Finding
	inTree := panelSet(root)

	check := func(where, what string, i *Interface, scope map[*Panel]bool) {
		if i == nil || i.Len() == 0 {
			fs = append(fs, errorf(where, "%s is empty", what))
			return
		}
		for _, part := range i.parts {
			if !part.Panel.onBoundary(part.Edge) {
				fs = append(fs, errorf(where, "%s views an edge that is not on the boundary of panel %q", what, part.Panel.name))
			}
			switch {
			case scope == nil:
			case !inTree[part.Panel]:
				fs = append(fs, errorf(where, "%s references panel %q outside the tree", what, part.Panel.name))
			case !scope[part.Panel]:
				fs = append(fs, errorf(where, "%s references panel %q outside the subtree of %q", what, part.Panel.name, where))
			}
		}
	}

	eachNode(root, func(n Assemblable) {
		for _, name := range n.InterfaceNames() {
			check(n.Name(), fmt.Sprintf("interface %q", name), n.Interface(name), nil)
		}
		stitches := stitchesOf(n)
		if len(stitches) == 0 {
			return
		}
		scope := panelSet(n)
		for k, s := range stitches {
			check(n.Name(), fmt.Sprintf("stitch %d side A", k), s.A, scope)
			check(n.Name(), fmt.Sprintf("stitch %d side B", k), s.B, scope)
		}
	})
	return fs
}

func panelSet(root Assemblable) map[*Panel]bool {
	set := make(map[*Panel]bool)
	for _, p := range panelsOf(root) {
		set[p] = true
	}
	return set
}

// validateGeometry reports degenerate or suspicious geometry.
func validateGeometry(root Assemblable, tol config.Tolerance) []Finding {
	var fs []Finding
	for _, p := range panelsOf(root) {
		for j, e := range p.Edges {
			if e.Length() < tol.EdgeLength {
				fs = append(fs, warnf(p.name, "edge %d is degenerate (length %.3g)", j, e.Length()))
			}
		}
		if c := p.Edges.Closure(); c.Hypot() > tol.EdgeLength {
			fs = append(fs, errorf(p.name, "boundary does not close: chords sum to %v", c))
		}
	}

	stitched := make(map[*edge.Edge]int)
	eachNode(root, func(n Assemblable) {
		for k, s := range stitchesOf(n) {
			la, lb := s.A.ProjectedLength(), s.B.ProjectedLength()
			if math.Abs(la-lb) > tol.StitchLength {
				fs = append(fs, errorf(n.Name(), "stitch %d: projected lengths %.4g and %.4g differ by more than %g",
					k, la, lb, tol.StitchLength))
			}
			for _, side := range []*Interface{s.A, s.B} {
				for _, part := range side.parts {
					if part.Ruffle < 1 {
						fs = append(fs, warnf(n.Name(), "stitch %d: ruffle rate %g on panel %q is below 1", k, part.Ruffle, part.Panel.name))
					}
					stitched[part.Edge]++
				}
			}
		}
	})
	for _, p := range panelsOf(root) {
		for j, e := range p.Edges {
			if stitched[e] > 1 {
				fs = append(fs, warnf(p.name, "edge %d is stitched %d times", j, stitched[e]))
			}
		}
	}
	return fs
}

// ---------------------------------------------------------------------------
// Tree helpers
// ---------------------------------------------------------------------------

// eachNode visits root and its descendants in post-order.
func eachNode(root Assemblable, fn func(Assemblable)) {
	if c, ok := root.(*Component); ok {
		for _, ch := range c.children {
			eachNode(ch, fn)
		}
	}
	fn(root)
}

func panelsOf(root Assemblable) []*Panel {
	var out []*Panel
	eachNode(root, func(n Assemblable) {
		if p, ok := n.(*Panel); ok {
			out = append(out, p)
		}
	})
	return out
}

func stitchesOf(n Assemblable) Stitches {
	switch n := n.(type) {
	case *Panel:
		return n.Stitches
	case *Component:
		return n.Stitches
	}
	return nil
}
