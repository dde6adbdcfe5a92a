package ops

import (
	"fmt"

	"github.com/chazu/stitchwork/pkg/geom"
	"github.com/chazu/stitchwork/pkg/pattern"
)

// DistributeY returns n copies of c spaced evenly about the world Y axis.
// Copy 0 is c itself. Copy i is a clone rotated by i*360/n degrees, with
// its translation rotated by the same amount; its name and the names of its
// panels carry the suffix "_i".
func DistributeY(c *pattern.Component, n int) ([]*pattern.Component, error) {
	if n < 1 {
		return nil, fmt.Errorf("distribute %q: need at least one copy, got %d", c.Name(), n)
	}
	out := make([]*pattern.Component, n)
	out[0] = c
	step := 360.0 / float64(n)
	for i := 1; i < n; i++ {
		cp := c.Clone(fmt.Sprintf("_%d", i))
		r := geom.RotationY(float64(i) * step)
		cp.RotateBy(r)
		cp.SetTranslation(r.MulPosition(cp.Translation()))
		out[i] = cp
	}
	pattern.Logger().Debug("distributed component", "component", c.Name(), "copies", n)
	return out, nil
}
