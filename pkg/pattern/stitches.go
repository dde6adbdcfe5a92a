package pattern

// Stitch joins two interfaces.
type Stitch struct {
	A, B *Interface
}

// Stitches is an ordered list of stitch declarations.
type Stitches []Stitch

// Append adds the pair (a, b).
func (s *Stitches) Append(a, b *Interface) {
	*s = append(*s, Stitch{A: a, B: b})
}
