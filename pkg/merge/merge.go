// Package merge combines several sparse spaces into one, with a
// configurable collision policy.
package merge

import (
	"fmt"

	"github.com/fwtools/hexforge/pkg/memory"
)

// Policy decides what happens when two sources hold data for the same
// address.
type Policy int

const (
	// LastWins keeps the byte from the source that appears later in the
	// input order.
	LastWins Policy = iota
	// FirstWins keeps the byte from the source that appeared first.
	FirstWins
	// Strict rejects the merge on any overlap, even when both sources
	// agree on the byte value.
	Strict
)

func (p Policy) String() string {
	switch p {
	case LastWins:
		return "last-wins"
	case FirstWins:
		return "first-wins"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a policy name, as accepted on the command line and
// in config files, to its Policy value.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "last", "last-wins":
		return LastWins, nil
	case "first", "first-wins":
		return FirstWins, nil
	case "strict":
		return Strict, nil
	default:
		return 0, fmt.Errorf("unknown merge policy %q (want last-wins, first-wins or strict)", s)
	}
}

// Source is one input to a merge. Offset is added to every address
// before the source's bytes are considered.
type Source struct {
	Space  *memory.Space
	Offset int64
}

type config struct {
	policy Policy
}

// Option adjusts merge behavior.
type Option func(*config)

// WithPolicy selects the collision policy. The default is LastWins.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// Merge combines sources into a fresh Space, processing them strictly
// in input order. A nil source space contributes nothing. If a source's
// offset pushes any address outside the 32-bit domain the whole merge
// fails with a SourceError naming that source; no partial result is
// returned.
func Merge(sources []Source, opts ...Option) (*memory.Space, error) {
	cfg := config{policy: LastWins}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := memory.NewSpace()
	for i, src := range sources {
		if src.Space == nil {
			continue
		}
		shifted := src.Space
		if src.Offset != 0 {
			var err error
			shifted, err = src.Space.Relocate(src.Offset)
			if err != nil {
				return nil, &SourceError{Index: i, Err: err}
			}
		}
		if err := apply(out, shifted, i, cfg.policy); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func apply(out, src *memory.Space, index int, policy Policy) error {
	switch policy {
	case FirstWins:
		for it := src.Iter(); it.Next(); {
			if _, taken := out.Get(it.Address()); taken {
				continue
			}
			out.Set(it.Address(), it.Value())
		}
	case Strict:
		for it := src.Iter(); it.Next(); {
			if _, taken := out.Get(it.Address()); taken {
				return &ConflictError{Address: it.Address(), Index: index}
			}
		}
		fallthrough
	default: // LastWins
		for _, seg := range src.Segments() {
			if err := out.SetRange(seg.Start, seg.Data); err != nil {
				return &SourceError{Index: index, Err: err}
			}
		}
	}
	return nil
}
