// Package rawbin converts between dense binary blobs and the sparse
// address space in pkg/memory.
package rawbin

import (
	"github.com/fwtools/hexforge/pkg/memory"
)

// DefaultFill is the gap byte drivers substitute for unrepresented
// addresses unless configured otherwise. 0xFF matches erased flash.
const DefaultFill byte = 0xFF

// EmptyRangeError reports a dump with no addresses to describe: the
// space is empty and no explicit range was supplied, or the range is
// inverted.
type EmptyRangeError struct{}

func (e *EmptyRangeError) Error() string {
	return "empty range: no addresses to dump"
}

// ErrEmptyRange is the error returned by Dump when there is nothing to
// describe.
var ErrEmptyRange = &EmptyRangeError{}

// Load builds a Space holding data at consecutive addresses starting at
// base. It fails with an AddressOverflowError if the bytes would extend
// past the domain ceiling.
func Load(base uint32, data []byte) (*memory.Space, error) {
	s := memory.NewSpace()
	if err := s.SetRange(base, data); err != nil {
		return nil, err
	}
	return s, nil
}

// Dump produces the dense byte sequence covering r, substituting fill
// for unrepresented addresses. A nil range means the space's own
// AddressRange; for an empty space that fails with ErrEmptyRange.
// Stored bytes outside the range are ignored.
func Dump(s *memory.Space, r *memory.Range, fill byte) ([]byte, error) {
	if r == nil {
		min, max, ok := s.AddressRange()
		if !ok {
			return nil, ErrEmptyRange
		}
		r = &memory.Range{First: min, Last: max}
	}
	if r.Last < r.First {
		return nil, ErrEmptyRange
	}

	out := make([]byte, uint64(r.Last)-uint64(r.First)+1)
	for i := range out {
		out[i] = fill
	}
	for it := s.Iter(); it.Next(); {
		addr := it.Address()
		if addr < r.First || addr > r.Last {
			continue
		}
		out[addr-r.First] = it.Value()
	}
	return out, nil
}
