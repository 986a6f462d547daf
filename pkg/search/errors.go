package search

import "fmt"

// BadPatternError reports a pattern that cannot be compiled into a
// search.
type BadPatternError struct {
	Reason string
}

func (e *BadPatternError) Error() string {
	return fmt.Sprintf("bad pattern: %s", e.Reason)
}
