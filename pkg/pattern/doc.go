// Package pattern assembles sewing patterns from flat panels.
//
// A Panel is a closed 2D outline placed rigidly in 3D. Named Interfaces
// expose runs of boundary edges for sewing; a Component groups panels and
// sub-components, re-exports their interfaces and records which of them are
// stitched together. Assemble flattens a component tree into a Spec, the
// serializable description handed to simulators and exporters.
package pattern
