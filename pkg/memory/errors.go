package memory

import "fmt"

// AddressOverflowError reports an operation that computed an address
// outside the 32-bit domain. The failing operation leaves its inputs
// untouched; no partial result is produced.
type AddressOverflowError struct {
	Attempted int64  // the out-of-domain address that was computed
	Limit     uint32 // highest valid address
}

func (e *AddressOverflowError) Error() string {
	if e.Attempted < 0 {
		return fmt.Sprintf("address overflow: attempted address %d is below 0", e.Attempted)
	}
	return fmt.Sprintf("address overflow: attempted address %#x exceeds limit %#x", e.Attempted, e.Limit)
}
