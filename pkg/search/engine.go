package search

import (
	"bytes"

	"github.com/fwtools/hexforge/pkg/memory"
)

// Iterator streams matches in ascending address order.
type Iterator struct {
	matches []Match
	index   int
}

// Next advances the iterator. It returns false once all matches have
// been consumed.
func (it *Iterator) Next() bool {
	if it.index < len(it.matches) {
		it.index++
		return true
	}
	return false
}

// Match returns the match Next advanced to.
func (it *Iterator) Match() Match {
	if it.index > 0 && it.index <= len(it.matches) {
		return it.matches[it.index-1]
	}
	return Match{}
}

func (it *Iterator) Close() error {
	return nil
}

// Run executes q against every segment of s. Matches never span the
// gaps between segments, and occurrences do not overlap: scanning
// resumes after the end of each hit.
func Run(s *memory.Space, q Query) (*Iterator, error) {
	m, err := q.compile()
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, seg := range s.Segments() {
		if m.re != nil {
			for _, loc := range m.re.FindAllIndex(seg.Data, -1) {
				matches = append(matches, Match{
					Address: seg.Start + uint32(loc[0]),
					Length:  loc[1] - loc[0],
					Bytes:   append([]byte(nil), seg.Data[loc[0]:loc[1]]...),
				})
			}
			continue
		}
		for off := 0; ; {
			i := bytes.Index(seg.Data[off:], m.literal)
			if i < 0 {
				break
			}
			at := off + i
			matches = append(matches, Match{
				Address: seg.Start + uint32(at),
				Length:  len(m.literal),
				Bytes:   append([]byte(nil), m.literal...),
			})
			off = at + len(m.literal)
		}
	}
	return &Iterator{matches: matches}, nil
}
