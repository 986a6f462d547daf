package ihex

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/fwtools/hexforge/pkg/memory"
)

// Parse reads record text from r and returns the decoded address space
// plus any start-address metadata. Blank lines are skipped (line numbers
// still advance) and CRLF line endings are accepted. Parsing stops at
// the end-of-file record; trailing lines are ignored. On any error no
// partial result is returned.
func Parse(r io.Reader) (*memory.Space, *Start, error) {
	scanner := bufio.NewScanner(r)
	space := memory.NewSpace()

	var start *Start
	base := uint32(0)
	lineNo := 0
	sawEOF := false

scan:
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := ParseRecord(line, lineNo)
		if err != nil {
			return nil, nil, err
		}

		switch rec.Type {
		case TypeData:
			if rec.Length == 0 {
				continue
			}
			if err := space.SetRange(base+uint32(rec.Address), rec.Payload); err != nil {
				return nil, nil, err
			}
		case TypeEndOfFile:
			sawEOF = true
			break scan
		case TypeExtendedSegmentAddress:
			base = uint32(binary.BigEndian.Uint16(rec.Payload)) << 4
		case TypeExtendedLinearAddress:
			base = uint32(binary.BigEndian.Uint16(rec.Payload)) << 16
		case TypeStartSegmentAddress, TypeStartLinearAddress:
			if start != nil {
				return nil, nil, &MalformedRecordError{Line: lineNo, Reason: "duplicate start address record"}
			}
			start = &Start{Kind: rec.Type, Value: binary.BigEndian.Uint32(rec.Payload)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}
	if !sawEOF {
		return nil, nil, ErrMissingEOF
	}
	return space, start, nil
}
