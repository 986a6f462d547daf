// Package memory implements a sparse byte store over the full 32-bit
// address space. Storage is proportional to the bytes actually present,
// never to the addressable range.
package memory

import (
	"bytes"
	"sort"
)

// MaxAddress is the highest valid address in the domain.
const MaxAddress uint32 = 0xFFFFFFFF

// domainSize is the number of addressable cells (exclusive upper bound).
const domainSize uint64 = 1 << 32

// run is a maximal stretch of consecutive stored bytes. Runs are kept
// sorted by start, non-overlapping and non-adjacent.
type run struct {
	start uint32
	data  []byte
}

// end returns the exclusive end address of the run as a uint64 so that a
// run touching MaxAddress does not wrap.
func (r run) end() uint64 {
	return uint64(r.start) + uint64(len(r.data))
}

// Segment is a read-only view of one maximal run of consecutive bytes.
// The data is a copy; holding a Segment across later mutations is safe.
type Segment struct {
	Start uint32
	Data  []byte
}

// End returns the address of the last byte in the segment.
func (g Segment) End() uint32 {
	return g.Start + uint32(len(g.Data)) - 1
}

// Range is an inclusive address interval.
type Range struct {
	First uint32
	Last  uint32
}

// Space is a sparse ordered mapping from 32-bit addresses to bytes.
// A Space is owned by a single goroutine; independent instances share
// no state.
type Space struct {
	runs []run
	size int
}

// NewSpace returns an empty Space.
func NewSpace() *Space {
	return &Space{}
}

// locate finds the run containing addr. It returns the run index, the
// offset of addr within that run, and whether the address is present.
func (s *Space) locate(addr uint32) (int, uint64, bool) {
	i := sort.Search(len(s.runs), func(i int) bool { return s.runs[i].start > addr }) - 1
	if i < 0 {
		return 0, 0, false
	}
	off := uint64(addr) - uint64(s.runs[i].start)
	if off >= uint64(len(s.runs[i].data)) {
		return i + 1, 0, false
	}
	return i, off, true
}

// Get returns the byte stored at addr.
func (s *Space) Get(addr uint32) (byte, bool) {
	i, off, ok := s.locate(addr)
	if !ok {
		return 0, false
	}
	return s.runs[i].data[off], true
}

// Set stores b at addr, inserting or overwriting. It returns the prior
// value if one was present.
func (s *Space) Set(addr uint32, b byte) (byte, bool) {
	if i, off, ok := s.locate(addr); ok {
		prior := s.runs[i].data[off]
		s.runs[i].data[off] = b
		return prior, true
	}
	// Cannot overflow: a single byte at any valid address fits the domain.
	_ = s.SetRange(addr, []byte{b})
	return 0, false
}

// SetRange stores data at consecutive addresses starting at addr. If the
// range would extend past MaxAddress the Space is left untouched and an
// AddressOverflowError is returned.
func (s *Space) SetRange(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	lo := uint64(addr)
	hi := lo + uint64(len(data))
	if hi > domainSize {
		return &AddressOverflowError{Attempted: int64(hi - 1), Limit: MaxAddress}
	}

	// Runs in [i, j) overlap or touch the incoming range and collapse
	// into a single replacement run.
	i := sort.Search(len(s.runs), func(i int) bool { return s.runs[i].end() >= lo })
	j := sort.Search(len(s.runs), func(i int) bool { return uint64(s.runs[i].start) > hi })

	newStart := addr
	var buf []byte
	if i < j && uint64(s.runs[i].start) < lo {
		newStart = s.runs[i].start
		buf = append(buf, s.runs[i].data[:lo-uint64(s.runs[i].start)]...)
	}
	buf = append(buf, data...)
	if i < j {
		if last := s.runs[j-1]; last.end() > hi {
			buf = append(buf, last.data[hi-uint64(last.start):]...)
		}
	}

	removed := 0
	for k := i; k < j; k++ {
		removed += len(s.runs[k].data)
	}
	s.size += len(buf) - removed

	tail := append([]run{{start: newStart, data: buf}}, s.runs[j:]...)
	s.runs = append(s.runs[:i], tail...)
	return nil
}

// Remove deletes the byte at addr and returns it if it was present.
func (s *Space) Remove(addr uint32) (byte, bool) {
	i, off, ok := s.locate(addr)
	if !ok {
		return 0, false
	}
	r := s.runs[i]
	prior := r.data[off]
	switch {
	case len(r.data) == 1:
		s.runs = append(s.runs[:i], s.runs[i+1:]...)
	case off == 0:
		s.runs[i].start = addr + 1
		s.runs[i].data = r.data[1:]
	case off == uint64(len(r.data))-1:
		s.runs[i].data = r.data[:off]
	default:
		after := make([]byte, uint64(len(r.data))-off-1)
		copy(after, r.data[off+1:])
		s.runs[i].data = r.data[:off]
		rest := append([]run{{start: addr + 1, data: after}}, s.runs[i+1:]...)
		s.runs = append(s.runs[:i+1], rest...)
	}
	s.size--
	return prior, true
}

// RemoveRange deletes length consecutive addresses starting at start.
// Ranges extending past MaxAddress are clamped; nothing exists beyond
// the domain, so clamping loses no information.
func (s *Space) RemoveRange(start uint32, length uint64) {
	if length == 0 || len(s.runs) == 0 {
		return
	}
	lo := uint64(start)
	hi := lo + length
	if hi > domainSize || hi < lo {
		hi = domainSize
	}

	i := sort.Search(len(s.runs), func(i int) bool { return s.runs[i].end() > lo })
	j := sort.Search(len(s.runs), func(i int) bool { return uint64(s.runs[i].start) >= hi })
	if i >= j {
		return
	}

	var keep []run
	if first := s.runs[i]; uint64(first.start) < lo {
		head := make([]byte, lo-uint64(first.start))
		copy(head, first.data)
		keep = append(keep, run{start: first.start, data: head})
	}
	if last := s.runs[j-1]; last.end() > hi {
		tail := make([]byte, last.end()-hi)
		copy(tail, last.data[hi-uint64(last.start):])
		keep = append(keep, run{start: uint32(hi), data: tail})
	}

	removed := 0
	for k := i; k < j; k++ {
		removed += len(s.runs[k].data)
	}
	kept := 0
	for _, r := range keep {
		kept += len(r.data)
	}
	s.size -= removed - kept

	rest := append(keep, s.runs[j:]...)
	s.runs = append(s.runs[:i], rest...)
}

// Len returns the number of stored bytes.
func (s *Space) Len() int {
	return s.size
}

// IsEmpty reports whether the Space holds no bytes.
func (s *Space) IsEmpty() bool {
	return s.size == 0
}

// AddressRange returns the lowest and highest stored addresses. ok is
// false for an empty Space.
func (s *Space) AddressRange() (min, max uint32, ok bool) {
	if len(s.runs) == 0 {
		return 0, 0, false
	}
	first := s.runs[0]
	last := s.runs[len(s.runs)-1]
	return first.start, uint32(last.end() - 1), true
}

// Segments returns the maximal runs of consecutive stored bytes in
// ascending address order. Data slices are copies.
func (s *Space) Segments() []Segment {
	segs := make([]Segment, len(s.runs))
	for i, r := range s.runs {
		d := make([]byte, len(r.data))
		copy(d, r.data)
		segs[i] = Segment{Start: r.start, Data: d}
	}
	return segs
}

// Iter returns a fresh ascending iterator over (address, byte) pairs.
// Mutating the Space while iterating is undefined; use Segments for a
// stable snapshot.
func (s *Space) Iter() *PointIterator {
	return &PointIterator{runs: s.runs}
}

// Clone returns a deep copy of the Space.
func (s *Space) Clone() *Space {
	out := &Space{runs: make([]run, len(s.runs)), size: s.size}
	for i, r := range s.runs {
		d := make([]byte, len(r.data))
		copy(d, r.data)
		out.runs[i] = run{start: r.start, data: d}
	}
	return out
}

// Equal reports whether two Spaces hold identical bytes at identical
// addresses.
func (s *Space) Equal(o *Space) bool {
	if s.size != o.size || len(s.runs) != len(o.runs) {
		return false
	}
	for i, r := range s.runs {
		if r.start != o.runs[i].start || !bytes.Equal(r.data, o.runs[i].data) {
			return false
		}
	}
	return true
}

// PointIterator streams (address, byte) pairs in ascending order.
type PointIterator struct {
	runs []run
	ri   int
	off  int
	addr uint32
	val  byte
}

// Next advances the iterator. It returns false when exhausted.
func (it *PointIterator) Next() bool {
	for it.ri < len(it.runs) {
		r := it.runs[it.ri]
		if it.off < len(r.data) {
			it.addr = r.start + uint32(it.off)
			it.val = r.data[it.off]
			it.off++
			return true
		}
		it.ri++
		it.off = 0
	}
	return false
}

// Address returns the address of the current pair.
func (it *PointIterator) Address() uint32 {
	return it.addr
}

// Value returns the byte of the current pair.
func (it *PointIterator) Value() byte {
	return it.val
}
