// Package export writes assembled patterns: the JSON hand-off consumed by
// simulators, an SVG sheet for review, and DXF cut files.
//
// Every writer works from a pattern.Spec, so a pattern decoded from JSON can
// be drawn without the builder that produced it.
package export
