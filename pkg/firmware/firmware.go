// Package firmware loads, converts and inspects firmware images in the
// encodings the tool understands. It is the façade the CLI and the API
// share: detection, decoding into a sparse space, re-encoding and
// summary statistics.
package firmware

import (
	"bytes"
	"fmt"

	"github.com/fwtools/hexforge/pkg/ihex"
	"github.com/fwtools/hexforge/pkg/memory"
	"github.com/fwtools/hexforge/pkg/rawbin"
)

// Format identifies an on-disk image encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatIntelHex
	FormatRawBinary
	FormatELF
)

func (f Format) String() string {
	switch f {
	case FormatIntelHex:
		return "hex"
	case FormatRawBinary:
		return "bin"
	case FormatELF:
		return "elf"
	default:
		return "unknown"
	}
}

// ParseFormat maps a format name from flags or requests to its Format.
// "auto" (or the empty string) requests detection.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "auto", "":
		return FormatUnknown, nil
	case "hex", "ihex":
		return FormatIntelHex, nil
	case "bin", "binary", "raw":
		return FormatRawBinary, nil
	case "elf":
		return FormatELF, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want auto, hex or bin)", s)
	}
}

var elfMagic = []byte{0x7F, 'E', 'L', 'F'}

// DetectFormat sniffs an image encoding. ELF is recognized by its
// magic; input whose first non-whitespace byte is ':' is Intel HEX;
// everything else is treated as raw binary.
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, elfMagic) {
		return FormatELF
	}
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case ':':
			return FormatIntelHex
		default:
			return FormatRawBinary
		}
	}
	return FormatRawBinary
}

// Image is a loaded firmware image: its data, optional entry-point
// metadata and the encoding it came from.
type Image struct {
	Space  *memory.Space
	Start  *ihex.Start
	Format Format
}

// Load decodes data into an Image. FormatUnknown sniffs the encoding
// first. base places raw binary input; Intel HEX records carry their
// own addresses, so base is ignored for them. ELF is recognized but
// not loadable.
func Load(data []byte, format Format, base uint32) (*Image, error) {
	if format == FormatUnknown {
		format = DetectFormat(data)
	}
	switch format {
	case FormatIntelHex:
		space, start, err := ihex.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return &Image{Space: space, Start: start, Format: FormatIntelHex}, nil
	case FormatRawBinary:
		space, err := rawbin.Load(base, data)
		if err != nil {
			return nil, err
		}
		return &Image{Space: space, Format: FormatRawBinary}, nil
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

// EncodeHex renders the image as Intel HEX text. recordLength 0 selects
// the default payload size. Start metadata, when present, is re-emitted
// before the end-of-file record.
func (im *Image) EncodeHex(recordLength int) ([]byte, error) {
	var opts []ihex.Option
	if recordLength > 0 {
		opts = append(opts, ihex.WithRecordLength(recordLength))
	}
	if im.Start != nil {
		opts = append(opts, ihex.WithStart(im.Start))
	}
	var buf bytes.Buffer
	if err := ihex.Format(&buf, im.Space, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeBinary renders the image as a dense blob, substituting fill for
// gaps. A nil range means the image's own extent.
func (im *Image) EncodeBinary(r *memory.Range, fill byte) ([]byte, error) {
	return rawbin.Dump(im.Space, r, fill)
}

// RelocateToBase shifts a space so its lowest address lands on base.
// An empty space relocates to an empty copy.
func RelocateToBase(s *memory.Space, base uint32) (*memory.Space, error) {
	min, _, ok := s.AddressRange()
	if !ok {
		return s.Clone(), nil
	}
	return s.Relocate(int64(base) - int64(min))
}
