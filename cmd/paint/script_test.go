package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/paintkit/pkg/canvas"
	"github.com/ha1tch/paintkit/pkg/raster"
	"github.com/ha1tch/paintkit/pkg/tools"
)

func newTestSession(t *testing.T, w, h int) *canvas.Session {
	t.Helper()
	opts := canvas.DefaultOptions()
	opts.Width, opts.Height = w, h
	opts.Background = raster.White
	s, err := canvas.New(opts)
	require.NoError(t, err)
	return s
}

func TestParseScript(t *testing.T) {
	src := `# a comment
// another comment

color #ff0000
BRUSH 1
down 1 1
move 5 1
up
`
	ops, err := ParseScript(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, ops, 5)
	assert.Equal(t, Op{Line: 4, Name: "color", Args: []string{"#ff0000"}}, ops[0])
	assert.Equal(t, "brush", ops[1].Name)
	assert.Equal(t, "move 5 1", ops[3].String())
	assert.Equal(t, 8, ops[4].Line)
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown", "spray 1 2", `line 1: unknown command "spray"`},
		{"too few", "\ndown 1", "line 2: down takes 2 argument(s), got 1"},
		{"too many", "undo now", "line 1: undo takes 0 argument(s), got 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestReplayDrawsAndUndoes(t *testing.T) {
	src := `color #ff0000
brush 1
down 0 0
move 4 0
up
color #0000ff
down 0 2
up
undo
`
	ops, err := ParseScript(strings.NewReader(src))
	require.NoError(t, err)

	s := newTestSession(t, 5, 3)
	require.NoError(t, Replay(s, ops))

	red := raster.Color{R: 255, A: 255}
	assert.Equal(t, red, s.Buffer().Get(4, 0))
	assert.Equal(t, raster.White, s.Buffer().Get(0, 2), "blue dot undone")
	assert.True(t, s.CanRedo())
}

func TestReplayFillAndTools(t *testing.T) {
	src := `tool fill
color #00ff00
tolerance 0
expand 0
down 2 2
tool brush
size 8 8
`
	ops, err := ParseScript(strings.NewReader(src))
	require.NoError(t, err)

	s := newTestSession(t, 4, 4)
	require.NoError(t, Replay(s, ops))
	assert.Equal(t, raster.Color{G: 255, A: 255}, s.Buffer().Get(0, 0))
	assert.Equal(t, 8, s.Buffer().Width())
	assert.Equal(t, tools.KindBrush, s.Tool())
	assert.Equal(t, 0, s.FillOptions().Tolerance)
}

func TestReplayClosesOpenStroke(t *testing.T) {
	ops, err := ParseScript(strings.NewReader("brush 1\ndown 1 1\n"))
	require.NoError(t, err)
	s := newTestSession(t, 3, 3)
	require.NoError(t, Replay(s, ops))
	assert.False(t, s.Drawing())
	assert.True(t, s.CanUndo())
}

func TestReplayReportsLine(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"color purple", "line 1 (color purple)"},
		{"brush 1\ndown x 1", "line 2 (down x 1): bad number \"x\""},
		{"tool lasso", "unknown tool"},
	}
	for _, tt := range tests {
		ops, err := ParseScript(strings.NewReader(tt.src))
		require.NoError(t, err)
		err = Replay(newTestSession(t, 3, 3), ops)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want)
	}
}
