package ihex

import "fmt"

// MalformedRecordError reports a structurally invalid record line.
// Line numbers are 1-based.
type MalformedRecordError struct {
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed record: %s", e.Line, e.Reason)
}

// ChecksumError reports a record whose stored checksum byte does not
// match the value recomputed over the record's bytes.
type ChecksumError struct {
	Line     int
	Expected byte // recomputed value
	Actual   byte // value stored in the record
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("line %d: checksum mismatch: expected %02X, got %02X", e.Line, e.Expected, e.Actual)
}

// UnsupportedTypeError reports a type byte outside the six known record
// kinds.
type UnsupportedTypeError struct {
	Line int
	Code byte
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("line %d: unsupported record type %#02x", e.Line, e.Code)
}

// MissingEOFError reports input that ended before an end-of-file record.
type MissingEOFError struct{}

func (e *MissingEOFError) Error() string {
	return "missing end-of-file record"
}

// ErrMissingEOF is the error returned by Parse for input with no
// end-of-file record.
var ErrMissingEOF = &MissingEOFError{}

// RecordLengthError reports a configured payload length outside [1, 255].
type RecordLengthError struct {
	Length int
}

func (e *RecordLengthError) Error() string {
	return fmt.Sprintf("record length %d outside [1, 255]", e.Length)
}
