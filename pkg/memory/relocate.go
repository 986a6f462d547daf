package memory

// Relocate returns a new Space with every address shifted by delta. The
// receiver is not modified. If any shifted address would leave the
// 32-bit domain the whole operation fails with an AddressOverflowError
// and no result is returned.
func (s *Space) Relocate(delta int64) (*Space, error) {
	out := &Space{runs: make([]run, 0, len(s.runs)), size: s.size}
	for _, r := range s.runs {
		lo := int64(r.start) + delta
		if lo < 0 || lo > int64(MaxAddress) {
			return nil, &AddressOverflowError{Attempted: lo, Limit: MaxAddress}
		}
		hi := lo + int64(len(r.data)) - 1
		if hi > int64(MaxAddress) {
			return nil, &AddressOverflowError{Attempted: hi, Limit: MaxAddress}
		}
		d := make([]byte, len(r.data))
		copy(d, r.data)
		out.runs = append(out.runs, run{start: uint32(lo), data: d})
	}
	return out, nil
}
