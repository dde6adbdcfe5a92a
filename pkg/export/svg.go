package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"

	"honnef.co/go/curve"

	"github.com/chazu/stitchwork/pkg/pattern"
)

// SVGOptions controls WriteSVG.
type SVGOptions struct {
	// Margin separates panels from each other and from the sheet border.
	Margin float64
	// Tolerance is the flattening accuracy for circular arcs.
	Tolerance float64
	// Precision is the maximum number of decimals in coordinates; 0 writes
	// as many as needed.
	Precision int
	// Stitches labels every stitched edge with the index of its stitch.
	Stitches bool
}

// DefaultSVGOptions returns the options the CLI uses.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Margin: 5, Tolerance: 1e-2, Precision: 3, Stitches: true}
}

// WriteSVG draws the flat panels of s side by side, in panel-local
// orientation, one group per panel.
func WriteSVG(w io.Writer, s *pattern.Spec, opts SVGOptions) error {
	sh, err := layout(s, opts.Margin)
	if err != nil {
		return fmt.Errorf("export svg: %w", err)
	}
	// SVG is y-down
	flip := func(aff curve.Affine) curve.Affine {
		return aff.ThenScale(1, -1).ThenTranslate(curve.Vec(0, sh.bounds.Y1))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n",
		sh.bounds.Width(), sh.bounds.Height(), sh.bounds.Width(), sh.bounds.Height())
	for _, p := range sh.panels {
		aff := flip(p.toSheet)
		path := p.outline.Path(opts.Tolerance).Transform(aff)
		fmt.Fprintf(bw, "  <g id=%q>\n", html.EscapeString(p.name))
		fmt.Fprintf(bw, "    <path d=%q fill=\"none\" stroke=\"black\" stroke-width=\"0.2\"/>\n",
			curve.SVG(path.Elements(), curve.SVGOptions{MaxPrecision: opts.Precision}))
		c := path.BoundingBox().Center()
		fmt.Fprintf(bw, "    <text x=\"%g\" y=\"%g\" font-size=\"2\" text-anchor=\"middle\">%s</text>\n",
			c.X, c.Y, html.EscapeString(p.name))
		bw.WriteString("  </g>\n")
	}
	if opts.Stitches {
		for i, st := range s.Stitches {
			for _, side := range st.Sides {
				for _, ref := range side.Edges {
					p, ok := sh.panel(ref.Panel)
					if !ok || ref.Edge < 0 || ref.Edge >= len(p.outline) {
						return fmt.Errorf("export svg: stitch %d references %s edge %d", i, ref.Panel, ref.Edge)
					}
					m := p.outline[ref.Edge].Eval(0.5).Transform(flip(p.toSheet))
					fmt.Fprintf(bw, "  <text x=\"%g\" y=\"%g\" font-size=\"1.5\" fill=\"red\">%d</text>\n", m.X, m.Y, i)
				}
			}
		}
	}
	bw.WriteString("</svg>\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export svg: %w", err)
	}
	return nil
}

// SaveSVG writes the drawing of s to path.
func SaveSVG(path string, s *pattern.Spec, opts SVGOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export svg: %w", err)
	}
	if err := WriteSVG(f, s, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
