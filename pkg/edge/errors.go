package edge

import "fmt"

// ShapeError reports input geometry an operation cannot work with.
type ShapeError struct {
	Op      string
	Message string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func shapeErrorf(op, format string, args ...any) error {
	return &ShapeError{Op: op, Message: fmt.Sprintf(format, args...)}
}
