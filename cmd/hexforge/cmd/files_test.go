package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwtools/hexforge/pkg/firmware"
	"github.com/fwtools/hexforge/pkg/memory"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0", 0, false},
		{"4096", 4096, false},
		{"0x1000", 0x1000, false},
		{"0xFFFFFFFF", 0xFFFFFFFF, false},
		{"0x100000000", 0, true},
		{"-1", 0, true},
		{"nope", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAddress(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseDelta(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"16", 16, false},
		{"-16", -16, false},
		{"0x1000", 0x1000, false},
		{"-0x1000", -0x1000, false},
		{"+32", 32, false},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDelta(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseFill(t *testing.T) {
	got, err := parseFill("0xFF")
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), got)

	got, err = parseFill("0")
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), got)

	_, err = parseFill("256")
	assert.Error(t, err)
	_, err = parseFill("xx")
	assert.Error(t, err)
}

func TestParseFillRange(t *testing.T) {
	rng, err := parseFillRange("")
	require.NoError(t, err)
	assert.Nil(t, rng)

	rng, err = parseFillRange("0x100:0x1FF")
	require.NoError(t, err)
	require.NotNil(t, rng)
	assert.Equal(t, uint32(0x100), rng.First)
	assert.Equal(t, uint32(0x1FF), rng.Last)

	_, err = parseFillRange("0x100")
	assert.Error(t, err)
	_, err = parseFillRange("a:b")
	assert.Error(t, err)
}

func TestParseSourceArg(t *testing.T) {
	tests := []struct {
		in         string
		wantPath   string
		wantOffset int64
	}{
		{"boot.hex", "boot.hex", 0},
		{"app.hex:0x8000", "app.hex", 0x8000},
		{"app.hex:-16", "app.hex", -16},
		{"app.hex:256", "app.hex", 256},
		// A trailing piece that is not a number stays part of the path.
		{"weird:name.hex", "weird:name.hex", 0},
	}

	for _, tt := range tests {
		path, offset := parseSourceArg(tt.in)
		assert.Equal(t, tt.wantPath, path, "input %q", tt.in)
		assert.Equal(t, tt.wantOffset, offset, "input %q", tt.in)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path       string
		formatName string
		want       firmware.Format
	}{
		{"out.hex", "auto", firmware.FormatIntelHex},
		{"out.ihex", "", firmware.FormatIntelHex},
		{"out.bin", "auto", firmware.FormatRawBinary},
		{"out.img", "auto", firmware.FormatRawBinary},
		{"out.raw", "", firmware.FormatRawBinary},
		{"out", "auto", firmware.FormatIntelHex},
		// An explicit name beats the extension.
		{"out.bin", "hex", firmware.FormatIntelHex},
		{"out.hex", "bin", firmware.FormatRawBinary},
	}

	for _, tt := range tests {
		got, err := outputFormat(tt.path, tt.formatName)
		require.NoError(t, err, "path %q format %q", tt.path, tt.formatName)
		assert.Equal(t, tt.want, got, "path %q format %q", tt.path, tt.formatName)
	}

	_, err := outputFormat("out.hex", "srec")
	assert.Error(t, err)
}

func TestLoadAndSaveImage(t *testing.T) {
	tmpDir := t.TempDir()

	hexPath := filepath.Join(tmpDir, "in.hex")
	require.NoError(t, os.WriteFile(hexPath, []byte(":0400100001020304E2\n:00000001FF\n"), 0644))

	t.Run("hex round trip through binary", func(t *testing.T) {
		im, err := loadImage(hexPath, "auto", 0)
		require.NoError(t, err)
		assert.Equal(t, firmware.FormatIntelHex, im.Format)
		assert.Equal(t, 4, im.Space.Len())

		binPath := filepath.Join(tmpDir, "out.bin")
		err = saveImage(binPath, im, firmware.FormatRawBinary, 0, 0xFF, nil)
		require.NoError(t, err)

		data, err := os.ReadFile(binPath)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 4}, data)
	})

	t.Run("binary loads at base", func(t *testing.T) {
		binPath := filepath.Join(tmpDir, "in.bin")
		require.NoError(t, os.WriteFile(binPath, []byte{0xAA, 0xBB}, 0644))

		im, err := loadImage(binPath, "bin", 0x2000)
		require.NoError(t, err)
		min, max, ok := im.Space.AddressRange()
		require.True(t, ok)
		assert.Equal(t, uint32(0x2000), min)
		assert.Equal(t, uint32(0x2001), max)
	})

	t.Run("explicit range pads binary output", func(t *testing.T) {
		im, err := loadImage(hexPath, "auto", 0)
		require.NoError(t, err)

		outPath := filepath.Join(tmpDir, "padded.bin")
		rng := &memory.Range{First: 0x0E, Last: 0x15}
		err = saveImage(outPath, im, firmware.FormatRawBinary, 0, 0x00, rng)
		require.NoError(t, err)

		data, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 1, 2, 3, 4, 0, 0}, data)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadImage(filepath.Join(tmpDir, "absent.hex"), "auto", 0)
		assert.Error(t, err)
	})

	t.Run("corrupt hex names the file", func(t *testing.T) {
		badPath := filepath.Join(tmpDir, "bad.hex")
		require.NoError(t, os.WriteFile(badPath, []byte(":01001000AA46\n:00000001FF\n"), 0644))

		_, err := loadImage(badPath, "hex", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.hex")
	})
}
