package merge

import "fmt"

// SourceError attributes a failure to one input source by its position
// in the Merge call.
type SourceError struct {
	Index int
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("merge source %d: %v", e.Index, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ConflictError reports an overlap rejected by the Strict policy.
// Index names the later of the two colliding sources.
type ConflictError struct {
	Address uint32
	Index   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict at address 0x%08X: source %d overlaps earlier data", e.Address, e.Index)
}
