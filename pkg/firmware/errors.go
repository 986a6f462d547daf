package firmware

import "fmt"

// UnsupportedFormatError reports an encoding the loader recognizes but
// cannot decode, or does not recognize at all.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported image format %q", e.Format)
}
