package edge

import "math"

// SplitAtVertical cuts a closed outline along the vertical line through the
// center of its bounding box. The outline must cross the line exactly twice,
// at vertices or inside straight edges. It returns the runs left and right
// of the line; both run from a crossing to the other in the outline's
// traversal order. The input is not modified.
func SplitAtVertical(s EdgeSequence) (left, right EdgeSequence, err error) {
	if !s.IsLooped() {
		return nil, nil, shapeErrorf("split", "outline is not closed")
	}
	box := s.BoundingBox()
	cx := box.Center().X

	var work EdgeSequence
	for _, e := range s.Clone() {
		a, b := e.Start.X-cx, e.End.X-cx
		if e.Curve != nil {
			for _, p := range (EdgeSequence{e}).Sample(16) {
				if (p.X-cx)*a < 0 || (p.X-cx)*b < 0 {
					return nil, nil, shapeErrorf("split", "curved edge %v crosses the split line", e)
				}
			}
			work = append(work, e)
			continue
		}
		if a*b >= 0 {
			work = append(work, e)
			continue
		}
		t := a / (a - b)
		parts, err := e.SubdivideLen([]float64{t, 1 - t})
		if err != nil {
			return nil, nil, err
		}
		parts[0].End.X = cx
		work = append(work, parts...)
	}

	var cuts []int
	for i, e := range work {
		if math.Abs(e.Start.X-cx) <= chainTol {
			cuts = append(cuts, i)
		}
	}
	if len(cuts) != 2 {
		return nil, nil, shapeErrorf("split", "outline meets the split line %d times, want 2", len(cuts))
	}

	a := append(EdgeSequence(nil), work[cuts[0]:cuts[1]]...)
	b := append(append(EdgeSequence(nil), work[cuts[1]:]...), work[:cuts[0]]...)
	if meanX(a) < meanX(b) {
		return a, b, nil
	}
	return b, a, nil
}

func meanX(s EdgeSequence) float64 {
	pts := s.Sample(4)
	sum := 0.0
	for _, p := range pts {
		sum += p.X
	}
	return sum / float64(len(pts))
}
