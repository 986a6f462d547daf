package ihex

import (
	"bufio"
	"io"

	"github.com/fwtools/hexforge/pkg/memory"
)

// DefaultRecordLength is the payload size used for data records unless
// overridden with WithRecordLength.
const DefaultRecordLength = 16

// maxRecordLength is the largest payload the length byte can describe.
const maxRecordLength = 255

type formatConfig struct {
	recordLength int
	start        *Start
}

// Option adjusts Format behavior.
type Option func(*formatConfig)

// WithRecordLength sets the maximum payload bytes per data record.
// Valid lengths are 1 through 255.
func WithRecordLength(n int) Option {
	return func(c *formatConfig) { c.recordLength = n }
}

// WithStart attaches start-address metadata, emitted as a start record
// before the end-of-file record. A nil start is ignored.
func WithStart(st *Start) Option {
	return func(c *formatConfig) { c.start = st }
}

// Format writes the address space to w as record text. Data records are
// emitted per contiguous run in ascending order, split at the record
// length and never crossing a 64KiB window; an extended linear address
// record precedes the first data record of each window past the initial
// one. Output always terminates with the end-of-file record.
func Format(w io.Writer, s *memory.Space, opts ...Option) error {
	cfg := formatConfig{recordLength: DefaultRecordLength}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.recordLength < 1 || cfg.recordLength > maxRecordLength {
		return &RecordLengthError{Length: cfg.recordLength}
	}

	bw := bufio.NewWriter(w)
	writeRecord := func(r Record) error {
		if _, err := bw.WriteString(r.Marshal()); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	}

	window := uint32(0)
	for _, seg := range s.Segments() {
		addr := seg.Start
		data := seg.Data
		for len(data) > 0 {
			n := cfg.recordLength
			if n > len(data) {
				n = len(data)
			}
			if room := 0x10000 - int(addr&0xFFFF); n > room {
				n = room
			}
			if win := addr >> 16; win != window {
				if err := writeRecord(MakeExtendedLinear(uint16(win))); err != nil {
					return err
				}
				window = win
			}
			if err := writeRecord(MakeData(uint16(addr&0xFFFF), data[:n])); err != nil {
				return err
			}
			addr += uint32(n)
			data = data[n:]
		}
	}

	if cfg.start != nil {
		if err := writeRecord(MakeStart(*cfg.start)); err != nil {
			return err
		}
	}
	if err := writeRecord(MakeEOF()); err != nil {
		return err
	}
	return bw.Flush()
}
