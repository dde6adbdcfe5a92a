package pattern

import (
	"fmt"
	"strings"
)

// StitchError reports a stitch whose sides have different projected lengths.
type StitchError struct {
	Owner            string
	Index            int // position among the owner's stitches
	LengthA, LengthB float64
	Tolerance        float64
}

func (e *StitchError) Error() string {
	return fmt.Sprintf("stitch %d of %q: projected lengths %.4g and %.4g differ by more than %g",
		e.Index, e.Owner, e.LengthA, e.LengthB, e.Tolerance)
}

// AssemblyError collects every problem found while assembling a tree.
type AssemblyError struct {
	Root     string
	Problems []error
}

func (e *AssemblyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "assemble %q: %d problem(s)", e.Root, len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n\t")
		b.WriteString(p.Error())
	}
	return b.String()
}

func (e *AssemblyError) Unwrap() []error {
	return e.Problems
}
