package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwtools/hexforge/pkg/ihex"
	"github.com/fwtools/hexforge/pkg/memory"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"elf magic", []byte{0x7F, 'E', 'L', 'F', 0x02, 0x01, 0x01, 0x00}, FormatELF},
		{"hex", []byte(":00000001FF\n"), FormatIntelHex},
		{"hex leading whitespace", []byte("\r\n  :01001000AA45\n"), FormatIntelHex},
		{"binary", []byte{0x00, 0x01, 0x02}, FormatRawBinary},
		{"binary starting with 0x7F", []byte{0x7F, 'E', 'L'}, FormatRawBinary},
		{"text without colon", []byte("hello"), FormatRawBinary},
		{"colon after data", []byte{0x41, ':'}, FormatRawBinary},
		{"empty", nil, FormatRawBinary},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectFormat(tc.data))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"auto": FormatUnknown,
		"":     FormatUnknown,
		"hex":  FormatIntelHex,
		"ihex": FormatIntelHex,
		"bin":  FormatRawBinary,
		"raw":  FormatRawBinary,
		"elf":  FormatELF,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseFormat("srec")
	assert.Error(t, err)
}

func TestLoad_IntelHex(t *testing.T) {
	im, err := Load([]byte(":01001000AA45\n:00000001FF\n"), FormatUnknown, 0)
	require.NoError(t, err)

	assert.Equal(t, FormatIntelHex, im.Format)
	b, ok := im.Space.Get(0x10)
	require.True(t, ok)
	assert.Equal(t, byte(0xAA), b)
	assert.Nil(t, im.Start)
}

func TestLoad_IntelHexIgnoresBase(t *testing.T) {
	im, err := Load([]byte(":01001000AA45\n:00000001FF\n"), FormatIntelHex, 0x8000)
	require.NoError(t, err)

	_, ok := im.Space.Get(0x8010)
	assert.False(t, ok)
	_, ok = im.Space.Get(0x10)
	assert.True(t, ok)
}

func TestLoad_RawBinaryAtBase(t *testing.T) {
	im, err := Load([]byte{0xDE, 0xAD}, FormatUnknown, 0x4000)
	require.NoError(t, err)

	assert.Equal(t, FormatRawBinary, im.Format)
	b, ok := im.Space.Get(0x4001)
	require.True(t, ok)
	assert.Equal(t, byte(0xAD), b)
}

func TestLoad_ELFUnsupported(t *testing.T) {
	data := []byte{0x7F, 'E', 'L', 'F', 0x02, 0x01, 0x01, 0x00}

	_, err := Load(data, FormatUnknown, 0)

	var ue *UnsupportedFormatError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, FormatELF, ue.Format)
}

func TestLoad_HexParseErrorPropagates(t *testing.T) {
	_, err := Load([]byte(":01001000AA46\n:00000001FF\n"), FormatIntelHex, 0)

	var ce *ihex.ChecksumError
	assert.ErrorAs(t, err, &ce)
}

func TestEncodeHex_RoundTrip(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0x10, 0xAA)
	im := &Image{Space: s, Format: FormatRawBinary}

	out, err := im.EncodeHex(0)
	require.NoError(t, err)
	assert.Equal(t, ":01001000AA45\n:00000001FF\n", string(out))
}

func TestEncodeHex_EmitsStart(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0x10, 0xAA)
	im := &Image{Space: s, Start: ihex.StartLinear(0xCD), Format: FormatIntelHex}

	out, err := im.EncodeHex(0)
	require.NoError(t, err)
	assert.Equal(t, ":01001000AA45\n:04000005000000CD2A\n:00000001FF\n", string(out))
}

func TestEncodeHex_BadRecordLength(t *testing.T) {
	im := &Image{Space: memory.NewSpace()}

	_, err := im.EncodeHex(300)

	var le *ihex.RecordLengthError
	assert.ErrorAs(t, err, &le)
}

func TestEncodeBinary_FillsGaps(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0x0, 0x01)
	s.Set(0x3, 0x02)
	im := &Image{Space: s}

	out, err := im.EncodeBinary(nil, 0xFF)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xFF, 0xFF, 0x02}, out)
}

func TestRelocateToBase(t *testing.T) {
	s := memory.NewSpace()
	require.NoError(t, s.SetRange(0x100, []byte{0x01, 0x02}))

	moved, err := RelocateToBase(s, 0x8000)
	require.NoError(t, err)

	b, ok := moved.Get(0x8001)
	require.True(t, ok)
	assert.Equal(t, byte(0x02), b)

	// Moving down works too.
	back, err := RelocateToBase(moved, 0x0)
	require.NoError(t, err)
	b, ok = back.Get(0x1)
	require.True(t, ok)
	assert.Equal(t, byte(0x02), b)
}

func TestRelocateToBase_Empty(t *testing.T) {
	moved, err := RelocateToBase(memory.NewSpace(), 0x8000)
	require.NoError(t, err)
	assert.True(t, moved.IsEmpty())
}

func TestRelocateToBase_Overflow(t *testing.T) {
	s := memory.NewSpace()
	require.NoError(t, s.SetRange(0x0, make([]byte, 0x20)))

	_, err := RelocateToBase(s, 0xFFFFFFF0)

	var oe *memory.AddressOverflowError
	assert.ErrorAs(t, err, &oe)
}
