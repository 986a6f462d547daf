package ihex

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// RecordType identifies one of the six record kinds.
type RecordType byte

const (
	TypeData                   RecordType = 0x00
	TypeEndOfFile              RecordType = 0x01
	TypeExtendedSegmentAddress RecordType = 0x02
	TypeStartSegmentAddress    RecordType = 0x03
	TypeExtendedLinearAddress  RecordType = 0x04
	TypeStartLinearAddress     RecordType = 0x05
)

func (t RecordType) String() string {
	switch t {
	case TypeData:
		return "data"
	case TypeEndOfFile:
		return "end-of-file"
	case TypeExtendedSegmentAddress:
		return "extended segment address"
	case TypeStartSegmentAddress:
		return "start segment address"
	case TypeExtendedLinearAddress:
		return "extended linear address"
	case TypeStartLinearAddress:
		return "start linear address"
	}
	return fmt.Sprintf("unknown(%#02x)", byte(t))
}

// Record is one decoded line of the format:
//
//	:LLAAAATT[DD...]CC
type Record struct {
	Length   byte       // payload byte count (LL)
	Address  uint16     // 16-bit address field (AAAA)
	Type     RecordType // record type (TT)
	Payload  []byte     // payload bytes (DD)
	Checksum byte       // checksum byte (CC)
}

// Start carries entry-point metadata from a start-address record. Kind
// is TypeStartSegmentAddress (Value packs CS in the high 16 bits, IP in
// the low 16) or TypeStartLinearAddress (Value is the 32-bit EIP).
type Start struct {
	Kind  RecordType
	Value uint32
}

// StartLinear builds start metadata for a 32-bit entry point.
func StartLinear(eip uint32) *Start {
	return &Start{Kind: TypeStartLinearAddress, Value: eip}
}

// StartSegment builds start metadata for a CS:IP entry point.
func StartSegment(cs, ip uint16) *Start {
	return &Start{Kind: TypeStartSegmentAddress, Value: uint32(cs)<<16 | uint32(ip)}
}

// recordChecksum is the two's complement (mod 256) of the sum of the
// length byte, both address bytes, the type byte and the payload.
func recordChecksum(length byte, addr uint16, typ RecordType, payload []byte) byte {
	sum := uint32(length) + uint32(addr>>8) + uint32(addr&0xFF) + uint32(typ)
	for _, b := range payload {
		sum += uint32(b)
	}
	return byte(0x100 - sum&0xFF)
}

func makeRecord(addr uint16, typ RecordType, payload []byte) Record {
	return Record{
		Length:   byte(len(payload)),
		Address:  addr,
		Type:     typ,
		Payload:  payload,
		Checksum: recordChecksum(byte(len(payload)), addr, typ, payload),
	}
}

// MakeData builds a data record for payload at the given 16-bit address.
func MakeData(addr uint16, payload []byte) Record {
	return makeRecord(addr, TypeData, payload)
}

// MakeEOF builds the terminal record. Its marshaled form is the literal
// ":00000001FF".
func MakeEOF() Record {
	return makeRecord(0, TypeEndOfFile, nil)
}

// MakeExtendedSegment builds a type-02 record establishing base =
// segment * 16.
func MakeExtendedSegment(segment uint16) Record {
	p := make([]byte, 2)
	binary.BigEndian.PutUint16(p, segment)
	return makeRecord(0, TypeExtendedSegmentAddress, p)
}

// MakeExtendedLinear builds a type-04 record establishing base =
// window << 16.
func MakeExtendedLinear(window uint16) Record {
	p := make([]byte, 2)
	binary.BigEndian.PutUint16(p, window)
	return makeRecord(0, TypeExtendedLinearAddress, p)
}

// MakeStart builds a start-address record from metadata.
func MakeStart(st Start) Record {
	p := make([]byte, 4)
	binary.BigEndian.PutUint32(p, st.Value)
	return makeRecord(0, st.Kind, p)
}

// Marshal renders the record as one text line without a terminator.
func (r Record) Marshal() string {
	return fmt.Sprintf(":%02X%04X%02X%s%02X",
		r.Length, r.Address, byte(r.Type),
		strings.ToUpper(hex.EncodeToString(r.Payload)), r.Checksum)
}

// ParseRecord decodes a single trimmed line. lineNo is the 1-based line
// number reported in errors.
func ParseRecord(line string, lineNo int) (Record, error) {
	if len(line) == 0 || line[0] != ':' {
		return Record{}, &MalformedRecordError{Line: lineNo, Reason: "missing record marker"}
	}
	body := line[1:]
	if len(body)%2 != 0 {
		return Record{}, &MalformedRecordError{Line: lineNo, Reason: "odd number of hex digits"}
	}
	raw, err := hex.DecodeString(body)
	if err != nil {
		return Record{}, &MalformedRecordError{Line: lineNo, Reason: "invalid hex digit"}
	}
	if len(raw) < 5 {
		return Record{}, &MalformedRecordError{Line: lineNo, Reason: "record too short"}
	}

	r := Record{
		Length:   raw[0],
		Address:  binary.BigEndian.Uint16(raw[1:3]),
		Type:     RecordType(raw[3]),
		Payload:  raw[4 : len(raw)-1],
		Checksum: raw[len(raw)-1],
	}
	if int(r.Length) != len(r.Payload) {
		return Record{}, &MalformedRecordError{Line: lineNo, Reason: "length field does not match payload size"}
	}

	// Checksum is verified before the type byte is interpreted: a
	// corrupted type byte shows up as corruption, not as an unknown kind.
	if want := recordChecksum(r.Length, r.Address, r.Type, r.Payload); want != r.Checksum {
		return Record{}, &ChecksumError{Line: lineNo, Expected: want, Actual: r.Checksum}
	}
	if r.Type > TypeStartLinearAddress {
		return Record{}, &UnsupportedTypeError{Line: lineNo, Code: byte(r.Type)}
	}

	switch r.Type {
	case TypeEndOfFile:
		if r.Length != 0 {
			return Record{}, &MalformedRecordError{Line: lineNo, Reason: "end-of-file record carries a payload"}
		}
	case TypeExtendedSegmentAddress, TypeExtendedLinearAddress:
		if r.Length != 2 {
			return Record{}, &MalformedRecordError{Line: lineNo, Reason: "extension record payload must be 2 bytes"}
		}
		if r.Address != 0 {
			return Record{}, &MalformedRecordError{Line: lineNo, Reason: "extension record address field must be zero"}
		}
	case TypeStartSegmentAddress, TypeStartLinearAddress:
		if r.Length != 4 {
			return Record{}, &MalformedRecordError{Line: lineNo, Reason: "start record payload must be 4 bytes"}
		}
		if r.Address != 0 {
			return Record{}, &MalformedRecordError{Line: lineNo, Reason: "start record address field must be zero"}
		}
	}
	return r, nil
}
