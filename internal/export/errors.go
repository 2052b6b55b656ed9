package export

import "fmt"

// Error reports an export that produced no artifact.
type Error struct {
	Row    int
	Column string
	Err    error
}

func (e *Error) Error() string {
	if len(e.Column) > 0 {
		return fmt.Sprintf("export failed at row %d column %s: %s", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("export failed: %s", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
