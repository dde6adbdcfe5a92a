package pattern

import (
	"strings"
	"testing"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/config"
	"github.com/chazu/stitchwork/pkg/edge"
)

func messages(fs []Finding) string {
	var b strings.Builder
	for _, f := range fs {
		b.WriteString(f.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityError, "error"},
		{SeverityWarning, "warning"},
		{Severity(7), "Severity(7)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFindingError(t *testing.T) {
	f := Finding{Where: "front", Message: "bad", Severity: SeverityWarning}
	if got := f.Error(); got != "[warning] front: bad" {
		t.Errorf("Error() = %q", got)
	}
	f.Where = ""
	if got := f.Error(); got != "[warning] bad" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidateClean(t *testing.T) {
	a, b := rect("a", 4, 2), rect("b", 4, 2)
	c := NewComponent("c", a, b)
	c.Stitch(a.Interface("top"), b.Interface("bottom"))

	res := ValidateAll(c, config.DefaultTolerance())
	if !res.OK() || len(res.Warnings) != 0 {
		t.Errorf("unexpected findings:\n%s%s", messages(res.Errors), messages(res.Warnings))
	}
}

func TestValidateStructural(t *testing.T) {
	tests := []struct {
		name  string
		build func() Assemblable
		want  string
	}{
		{
			name: "cycle",
			build: func() Assemblable {
				c := NewComponent("loop")
				c.Add(c)
				return c
			},
			want: "own ancestor",
		},
		{
			name: "shared child",
			build: func() Assemblable {
				p := rect("p", 1, 1)
				return NewComponent("c", p, p)
			},
			want: "more than once",
		},
		{
			name: "duplicate name",
			build: func() Assemblable {
				return NewComponent("c", rect("x", 1, 1), rect("x", 1, 1))
			},
			want: "duplicate panel name",
		},
		{
			name: "open boundary",
			build: func() Assemblable {
				return NewPanel("open", edge.FromVerts(curve.Pt(0, 0), curve.Pt(1, 0), curve.Pt(1, 1)))
			},
			want: "not a closed loop",
		},
		{
			name: "interface off boundary",
			build: func() Assemblable {
				p := rect("p", 1, 1)
				p.SetInterface("ghost", edge.Line(curve.Pt(0, 0), curve.Pt(1, 1)))
				return p
			},
			want: "not on the boundary",
		},
		{
			name: "stitch outside tree",
			build: func() Assemblable {
				a, stray := rect("a", 1, 1), rect("stray", 1, 1)
				c := NewComponent("c", a)
				c.Stitch(a.Interface("top"), stray.Interface("top"))
				return c
			},
			want: "outside the tree",
		},
		{
			name: "stitch outside owner subtree",
			build: func() Assemblable {
				a, b := rect("a", 1, 1), rect("b", 1, 1)
				left, right := NewComponent("left", a), NewComponent("right", b)
				left.Stitch(a.Interface("top"), b.Interface("top"))
				return NewComponent("root", left, right)
			},
			want: `outside the subtree of "left"`,
		},
		{
			name: "panel stitch onto another panel",
			build: func() Assemblable {
				a, b := rect("a", 1, 1), rect("b", 1, 1)
				a.Stitches.Append(a.Interface("top"), b.Interface("top"))
				return NewComponent("root", a, b)
			},
			want: `outside the subtree of "a"`,
		},
		{
			name: "empty stitch side",
			build: func() Assemblable {
				a := rect("a", 1, 1)
				c := NewComponent("c", a)
				c.Stitch(a.Interface("top"), nil)
				return c
			},
			want: "is empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := Validate(tt.build())
			if len(fs) == 0 {
				t.Fatal("no findings")
			}
			if got := messages(fs); !strings.Contains(got, tt.want) {
				t.Errorf("findings do not mention %q:\n%s", tt.want, got)
			}
		})
	}
}

func TestValidateGeometry(t *testing.T) {
	tol := config.DefaultTolerance()

	t.Run("length mismatch is an error", func(t *testing.T) {
		a, b := rect("a", 12, 1), rect("b", 15, 1)
		c := NewComponent("c", a, b)
		c.Stitch(a.Interface("top"), b.Interface("top"))
		res := ValidateAll(c, tol)
		if res.OK() {
			t.Fatal("mismatch not reported")
		}
		if got := messages(res.Errors); !strings.Contains(got, "differ") {
			t.Errorf("errors = %s", got)
		}
	})

	t.Run("low ruffle is a warning", func(t *testing.T) {
		a, b := rect("a", 12, 1), rect("b", 6, 1)
		a.Interface("top").SetRuffle(0.5)
		c := NewComponent("c", a, b)
		c.Stitch(a.Interface("top"), b.Interface("top"))
		res := ValidateAll(c, tol)
		if !res.OK() {
			t.Fatalf("errors: %s", messages(res.Errors))
		}
		if got := messages(res.Warnings); !strings.Contains(got, "below 1") {
			t.Errorf("warnings = %s", got)
		}
	})

	t.Run("degenerate edge is a warning", func(t *testing.T) {
		p := NewPanel("p", edge.SimpleLoop(curve.Pt(1, 0), curve.Pt(1, 0), curve.Pt(1, 1), curve.Pt(0, 1)))
		res := ValidateAll(p, tol)
		if got := messages(res.Warnings); !strings.Contains(got, "degenerate") {
			t.Errorf("warnings = %s", got)
		}
	})

	t.Run("edge stitched twice is a warning", func(t *testing.T) {
		a, b := rect("a", 2, 2), rect("b", 2, 2)
		c := NewComponent("c", a, b)
		c.Stitch(a.Interface("top"), b.Interface("top"))
		c.Stitch(a.Interface("top"), b.Interface("bottom"))
		res := ValidateAll(c, tol)
		if got := messages(res.Warnings); !strings.Contains(got, "stitched 2 times") {
			t.Errorf("warnings = %s", got)
		}
	})
}
