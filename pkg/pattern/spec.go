package pattern

// Spec is the assembled pattern: every panel of the tree with its world
// placement, and every stitch resolved to panel edge indices.
type Spec struct {
	Name     string       `json:"name"`
	Panels   []PanelSpec  `json:"panels"`
	Stitches []StitchSpec `json:"stitches"`
}

// PanelSpec describes one panel. Vertices are panel-local; edge j runs from
// vertex j to vertex (j+1) mod n.
type PanelSpec struct {
	Name string `json:"name"`
	// Translation is the world position of the panel origin.
	Translation [3]float64 `json:"translation"`
	// Rotation holds intrinsic XYZ Euler angles in degrees.
	Rotation [3]float64  `json:"rotation"`
	Vertices [][2]float64 `json:"vertices"`
	Edges    []EdgeSpec   `json:"edges"`
}

type EdgeSpec struct {
	Endpoints [2]int         `json:"endpoints"`
	Curvature *CurvatureSpec `json:"curvature,omitempty"`
}

// CurvatureSpec carries the curve parameters of a non-straight edge. Params
// are points relative to the edge frame: the Bezier control points, or the
// arc center.
type CurvatureSpec struct {
	Type     string       `json:"type"`
	Params   [][2]float64 `json:"params"`
	Radius   float64      `json:"radius,omitempty"`
	LargeArc bool         `json:"large_arc,omitempty"`
	Right    bool         `json:"right,omitempty"`
}

// EdgeRef names one panel edge.
type EdgeRef struct {
	Panel    string `json:"panel"`
	Edge     int    `json:"edge"`
	Reversed bool   `json:"reversed,omitempty"`
}

// StitchSide is one interface of a stitch. Ruffle is the side's effective
// rate, its projected length over its plain length.
type StitchSide struct {
	Edges  []EdgeRef `json:"edges"`
	Ruffle float64   `json:"ruffle"`
}

type StitchSpec struct {
	// Owner is the panel or component that declared the stitch.
	Owner string        `json:"owner"`
	Sides [2]StitchSide `json:"sides"`
}

// Panel returns the panel spec with the given name.
func (s *Spec) Panel(name string) (*PanelSpec, bool) {
	for i := range s.Panels {
		if s.Panels[i].Name == name {
			return &s.Panels[i], true
		}
	}
	return nil, false
}
