package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwtools/hexforge/pkg/firmware"
	"github.com/fwtools/hexforge/pkg/memory"
)

// parseAddress parses a 32-bit address given as decimal or 0x hex
func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(v), nil
}

// parseDelta parses a signed relocation distance, decimal or 0x hex
func parseDelta(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid delta %q", s)
	}
	return v, nil
}

// parseFill parses a gap byte given as decimal or 0x hex
func parseFill(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid fill byte %q", s)
	}
	return byte(v), nil
}

// parseFillRange parses an inclusive first:last address pair. An empty
// string means no explicit range.
func parseFillRange(s string) (*memory.Range, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range %q (want first:last)", s)
	}
	first, err := parseAddress(parts[0])
	if err != nil {
		return nil, err
	}
	last, err := parseAddress(parts[1])
	if err != nil {
		return nil, err
	}
	return &memory.Range{First: first, Last: last}, nil
}

// parseSourceArg splits a merge input of the form path[:offset]. The
// text after the last colon counts as a signed offset only when it
// parses as one, so paths containing colons still work.
func parseSourceArg(arg string) (string, int64) {
	i := strings.LastIndex(arg, ":")
	if i < 0 {
		return arg, 0
	}
	off, err := strconv.ParseInt(arg[i+1:], 0, 64)
	if err != nil {
		return arg, 0
	}
	return arg[:i], off
}

// loadImage reads and decodes one image file. formatName "auto" or ""
// sniffs the encoding; base places raw binary input.
func loadImage(path, formatName string, base uint32) (*firmware.Image, error) {
	format, err := firmware.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	im, err := firmware.Load(data, format, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return im, nil
}

// outputFormat resolves the encoding for an output file: an explicit
// name wins, otherwise the file extension decides, and Intel HEX is
// the fallback.
func outputFormat(path, formatName string) (firmware.Format, error) {
	if formatName != "" && formatName != "auto" {
		return firmware.ParseFormat(formatName)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bin", ".img", ".raw", ".dat":
		return firmware.FormatRawBinary, nil
	default:
		return firmware.FormatIntelHex, nil
	}
}

// saveImage encodes an image and writes it to path. recordLength 0
// keeps the encoder default; rng bounds binary output when non-nil.
func saveImage(path string, im *firmware.Image, format firmware.Format, recordLength int, fill byte, rng *memory.Range) error {
	var (
		out []byte
		err error
	)
	switch format {
	case firmware.FormatIntelHex:
		out, err = im.EncodeHex(recordLength)
	case firmware.FormatRawBinary:
		out, err = im.EncodeBinary(rng, fill)
	default:
		err = &firmware.UnsupportedFormatError{Format: format}
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
