// Package ops holds the geometric operators that reshape panel boundaries
// and replicate components: fitting a shape into a corner, projecting a
// shape onto an edge, cutting a shape into an edge, and radial replication
// about the vertical axis.
//
// Operators edit panels in place and repair the interfaces viewing the
// edges they replace.
package ops
