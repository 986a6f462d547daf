// Package ihex implements the Intel HEX record format for hexforge.
//
// The package translates between record text and the sparse address
// space in pkg/memory. Parsing and formatting are all-or-nothing: any
// error returns no partial result, and the package never logs or
// retries. Failure presentation belongs to the caller.
//
// # Record Format
//
// Each record is one text line:
//
//	:LLAAAATT[DD...]CC
//
// Fields:
//   - LL: 2 hex digits, payload length (typically <= 16)
//   - AAAA: 4 hex digits, 16-bit address within the active base window
//   - TT: 2 hex digits, record type
//   - DD: LL payload bytes, 2 hex digits each
//   - CC: 2 hex digits, checksum
//
// Record types:
//   - 00 data
//   - 01 end of file (always the literal ":00000001FF")
//   - 02 extended segment address: base = value * 16
//   - 03 start segment address (CS:IP entry point metadata)
//   - 04 extended linear address: base = value << 16
//   - 05 start linear address (32-bit entry point metadata)
//
// A data record is placed at base + address, where base comes from the
// most recent extension record of either kind. The two extension kinds
// are mutually exclusive: whichever was seen last fully replaces the
// active base.
//
// # Checksum
//
// The checksum byte is the two's complement (mod 256) of the sum of the
// length byte, both address bytes, the type byte and the payload bytes.
// Summing every byte of a well-formed record, checksum included, yields
// 0 mod 256.
//
// # Usage
//
// Parsing:
//
//	space, start, err := ihex.Parse(file)
//	if err != nil {
//	    return err
//	}
//
// Formatting:
//
//	err := ihex.Format(out, space, ihex.WithRecordLength(32), ihex.WithStart(start))
//
// # Error Handling
//
// Parse failures carry 1-based line numbers and classify as
// MalformedRecordError (structure), ChecksumError (corruption),
// UnsupportedTypeError (unknown type byte) or ErrMissingEOF (input
// ended without the terminal record). Use errors.As to branch on the
// kind.
package ihex
