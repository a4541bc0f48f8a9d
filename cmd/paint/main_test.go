package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/paintkit/pkg/config"
	"github.com/ha1tch/paintkit/pkg/imageio"
	"github.com/ha1tch/paintkit/pkg/raster"
)

func newTestApp() (*app, *bytes.Buffer) {
	var out bytes.Buffer
	return &app{cfg: config.Default(), out: &out}, &out
}

func TestStripVerbose(t *testing.T) {
	args, v := stripVerbose([]string{"-v", "info", "x.png"})
	assert.True(t, v)
	assert.Equal(t, []string{"info", "x.png"}, args)

	args, v = stripVerbose([]string{"info"})
	assert.False(t, v)
	assert.Equal(t, []string{"info"}, args)
}

func TestSplitArgs(t *testing.T) {
	pos, opts, err := splitArgs([]string{"in.png", "-5", "3", "#fff", "-o", "out.png", "--tolerance", "12"})
	require.NoError(t, err)
	assert.Equal(t, []string{"in.png", "-5", "3", "#fff"}, pos)
	assert.Equal(t, map[string]string{"o": "out.png", "tolerance": "12"}, opts)

	_, _, err = splitArgs([]string{"-o"})
	assert.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	a, _ := newTestApp()
	err := a.run("paintbrush", nil)
	assert.True(t, errors.Is(err, errUsage))
}

func TestHelp(t *testing.T) {
	a, out := newTestApp()
	require.NoError(t, a.run("help", nil))
	assert.Contains(t, out.String(), "replay")
}

func TestNewFillPick(t *testing.T) {
	dir := t.TempDir()
	blank := filepath.Join(dir, "blank.png")
	filled := filepath.Join(dir, "filled.png")

	a, out := newTestApp()
	require.NoError(t, a.run("new", []string{"-o", blank, "-w", "6", "-h", "4", "--bg", "#ffffff"}))
	assert.Contains(t, out.String(), "(6x4)")

	out.Reset()
	require.NoError(t, a.run("fill", []string{blank, "0", "0", "#00ff00", "-o", filled, "--expand", "0"}))
	assert.Contains(t, out.String(), "Filled 24 pixels")

	out.Reset()
	require.NoError(t, a.run("pick", []string{filled, "5", "3"}))
	assert.Equal(t, "#00ff00\n", out.String())

	out.Reset()
	require.NoError(t, a.run("pick", []string{blank, "5", "3"}))
	assert.Equal(t, "#ffffff\n", out.String(), "input untouched when -o given")

	err := a.run("pick", []string{filled, "6", "0"})
	assert.ErrorContains(t, err, "outside")
}

func TestFillRejectsBadArguments(t *testing.T) {
	a, _ := newTestApp()
	tests := [][]string{
		{"only.png"},
		{"in.png", "x", "0", "#fff"},
		{"in.png", "0", "0", "red"},
		{"in.png", "0", "0", "#fff", "--tolerance", "400"},
	}
	for _, args := range tests {
		assert.Error(t, a.run("fill", args), strings.Join(args, " "))
	}
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	a, out := newTestApp()
	require.NoError(t, a.run("new", []string{"-o", path, "-w", "3", "-h", "2"}))

	out.Reset()
	require.NoError(t, a.run("info", []string{path}))
	assert.Contains(t, out.String(), "Format:      png")
	assert.Contains(t, out.String(), "Size:        3x2")
}

func TestInfoNotImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text, nothing to see"), 0644))
	a, _ := newTestApp()
	err := a.run("info", []string{path})
	assert.True(t, errors.Is(err, imageio.ErrNotImage))
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "big.png")
	a, _ := newTestApp()
	require.NoError(t, a.run("new", []string{"-o", src, "-w", "2", "-h", "2"}))

	require.NoError(t, a.run("convert", []string{src, "-o", dst, "--scale", "3", "--bg", "#000"}))
	buf, _, err := imageio.Load(dst)
	require.NoError(t, err)
	assert.Equal(t, 6, buf.Width())
	assert.Equal(t, raster.Black, buf.Get(5, 5))

	err = a.run("convert", []string{src})
	assert.True(t, errors.Is(err, errUsage), "png input needs -o")

	err = a.run("convert", []string{src, "-o", dst, "--scale", "99"})
	assert.Error(t, err)
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "draw.txt")
	out := filepath.Join(dir, "draw.png")
	require.NoError(t, os.WriteFile(script, []byte("color #ff0000\nbrush 1\ndown 0 0\nmove 3 0\nup\n"), 0644))

	a, stdout := newTestApp()
	require.NoError(t, a.run("replay", []string{script, "-o", out, "-w", "4", "-h", "2", "--bg", "#fff"}))
	assert.Contains(t, stdout.String(), "Replayed 5 operations")
	assert.Contains(t, stdout.String(), "undo 1, redo 0")

	buf, _, err := imageio.Load(out)
	require.NoError(t, err)
	assert.Equal(t, raster.Color{R: 255, A: 255}, buf.Get(3, 0))
	assert.Equal(t, raster.White, buf.Get(3, 1))

	err = a.run("replay", []string{script})
	assert.True(t, errors.Is(err, errUsage))
}

func TestReplayRejectsBadScale(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "draw.txt")
	out := filepath.Join(dir, "draw.png")
	require.NoError(t, os.WriteFile(script, []byte("down 0 0\nup\n"), 0644))

	a, _ := newTestApp()
	for _, scale := range []string{"0", "-2", "17", "99"} {
		err := a.run("replay", []string{script, "-o", out, "--scale", scale})
		assert.ErrorContains(t, err, "--scale", scale)
	}
	assert.NoFileExists(t, out)

	require.NoError(t, a.run("replay", []string{script, "-o", out, "-w", "2", "-h", "2", "--scale", "16"}))
	buf, _, err := imageio.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 32, buf.Width())
}
