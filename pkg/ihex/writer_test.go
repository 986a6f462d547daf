package ihex

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwtools/hexforge/pkg/memory"
)

func formatToString(t *testing.T, s *memory.Space, opts ...Option) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Format(&buf, s, opts...))
	return buf.String()
}

func TestFormat_EmptySpace(t *testing.T) {
	out := formatToString(t, memory.NewSpace())
	assert.Equal(t, ":00000001FF\n", out)
}

func TestFormat_SingleByte(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0x10, 0xAA)
	out := formatToString(t, s)
	assert.Equal(t, ":01001000AA45\n:00000001FF\n", out)
}

func TestFormat_SplitsAtRecordLength(t *testing.T) {
	s := memory.NewSpace()
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, s.SetRange(0, data))

	out := formatToString(t, s)
	want := ":10000000000102030405060708090A0B0C0D0E0F78\n" +
		":0400100010111213A6\n" +
		":00000001FF\n"
	assert.Equal(t, want, out)
}

func TestFormat_CustomRecordLength(t *testing.T) {
	s := memory.NewSpace()
	require.NoError(t, s.SetRange(0, []byte{1, 2, 3}))

	out := formatToString(t, s, WithRecordLength(1))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4) // three data records plus EOF
	assert.Equal(t, ":0100000001FE", lines[0])
	assert.Equal(t, ":00000001FF", lines[3])
}

func TestFormat_RecordLengthValidation(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0, 1)

	for _, n := range []int{0, -1, 256} {
		err := Format(&bytes.Buffer{}, s, WithRecordLength(n))
		var lenErr *RecordLengthError
		require.True(t, errors.As(err, &lenErr), "length %d should be rejected", n)
		assert.Equal(t, n, lenErr.Length)
	}

	require.NoError(t, Format(&bytes.Buffer{}, s, WithRecordLength(255)))
}

func TestFormat_NoELAForInitialWindow(t *testing.T) {
	s := memory.NewSpace()
	require.NoError(t, s.SetRange(0xFF00, []byte{1, 2}))

	out := formatToString(t, s)
	assert.NotContains(t, out, ":02000004", "window 0 must not emit an extension record")
}

func TestFormat_ELAOnWindowCrossing(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0xFFFF, 0xAA)
	s.Set(0x10000, 0xBB)

	out := formatToString(t, s)
	want := ":01FFFF00AA57\n" +
		":020000040001F9\n" +
		":01000000BB44\n" +
		":00000001FF\n"
	assert.Equal(t, want, out)
}

func TestFormat_HighWindowSegment(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0x000A0000, 0x42)

	out := formatToString(t, s)
	want := ":02000004000AF0\n" +
		":0100000042BD\n" +
		":00000001FF\n"
	assert.Equal(t, want, out)
}

func TestFormat_RecordNeverCrossesWindow(t *testing.T) {
	s := memory.NewSpace()
	require.NoError(t, s.SetRange(0xFFF8, make([]byte, 16)))

	out := formatToString(t, s)
	want := ":08FFF800000000000000000001\n" +
		":020000040001F9\n" +
		":080000000000000000000000F8\n" +
		":00000001FF\n"
	assert.Equal(t, want, out)
}

func TestFormat_StartRecordBeforeEOF(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0x10, 0xAA)

	out := formatToString(t, s, WithStart(StartLinear(0xCD)))
	want := ":01001000AA45\n" +
		":04000005000000CD2A\n" +
		":00000001FF\n"
	assert.Equal(t, want, out)
}

func TestFormat_NilStartIgnored(t *testing.T) {
	s := memory.NewSpace()
	out := formatToString(t, s, WithStart(nil))
	assert.Equal(t, ":00000001FF\n", out)
}

func TestFormat_GapsStayAbsent(t *testing.T) {
	s := memory.NewSpace()
	s.Set(0x00, 0x01)
	s.Set(0x10, 0x02)

	out := formatToString(t, s)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3, "two data records and EOF; no fill between runs")
}
