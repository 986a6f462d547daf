// Package search finds byte patterns inside a sparse address space.
package search

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Kind selects how a Query's pattern is interpreted.
type Kind int

const (
	// KindHex matches the byte sequence written as hex digits. Spaces
	// between bytes are tolerated ("DE AD BE EF").
	KindHex Kind = iota
	// KindASCII matches the pattern's bytes literally.
	KindASCII
	// KindRegex compiles the pattern with regexp and runs it over each
	// segment's raw bytes.
	KindRegex
)

func (k Kind) String() string {
	switch k {
	case KindHex:
		return "hex"
	case KindASCII:
		return "ascii"
	case KindRegex:
		return "regex"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a kind name, as accepted on the command line and in
// API requests, to its Kind value.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "hex":
		return KindHex, nil
	case "ascii":
		return KindASCII, nil
	case "regex":
		return KindRegex, nil
	default:
		return 0, fmt.Errorf("unknown search kind %q (want hex, ascii or regex)", s)
	}
}

// Query describes one search.
type Query struct {
	Kind    Kind
	Pattern string
}

// Validate checks that the pattern is usable before a search runs.
func (q Query) Validate() error {
	_, err := q.compile()
	return err
}

// matcher is a compiled query: exactly one of literal or re is set.
type matcher struct {
	literal []byte
	re      *regexp.Regexp
}

func (q Query) compile() (*matcher, error) {
	switch q.Kind {
	case KindHex:
		clean := strings.Map(dropSpace, q.Pattern)
		b, err := hex.DecodeString(clean)
		if err != nil {
			return nil, &BadPatternError{Reason: fmt.Sprintf("invalid hex pattern: %v", err)}
		}
		if len(b) == 0 {
			return nil, &BadPatternError{Reason: "empty pattern"}
		}
		return &matcher{literal: b}, nil
	case KindASCII:
		if q.Pattern == "" {
			return nil, &BadPatternError{Reason: "empty pattern"}
		}
		return &matcher{literal: []byte(q.Pattern)}, nil
	case KindRegex:
		re, err := regexp.Compile(q.Pattern)
		if err != nil {
			return nil, &BadPatternError{Reason: err.Error()}
		}
		if re.MatchString("") {
			return nil, &BadPatternError{Reason: "pattern matches the empty string"}
		}
		return &matcher{re: re}, nil
	default:
		return nil, &BadPatternError{Reason: fmt.Sprintf("unknown kind %d", int(q.Kind))}
	}
}

func dropSpace(r rune) rune {
	if r == ' ' || r == '\t' {
		return -1
	}
	return r
}

// Match is one hit. Bytes is a copy of the matched data.
type Match struct {
	Address uint32 `json:"address"`
	Length  int    `json:"length"`
	Bytes   []byte `json:"bytes"`
}
