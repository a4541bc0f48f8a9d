// Package canvas ties the drawing tools, the pixel buffer and the undo
// history into one drawing session.
//
// A Session is driven by a host (terminal UI, CLI script, test) through
// discrete, synchronous calls: pointer down/move/up, tool and colour
// changes, clear, undo and redo. Coordinates are buffer pixels. Every
// completed mutation records a snapshot, so undo always steps back exactly
// one stroke, fill or clear.
//
// A Session is not safe for concurrent use.
package canvas

import (
	"fmt"
	"image"

	"github.com/ha1tch/paintkit/internal/logging"
	"github.com/ha1tch/paintkit/pkg/floodfill"
	"github.com/ha1tch/paintkit/pkg/history"
	"github.com/ha1tch/paintkit/pkg/raster"
	"github.com/ha1tch/paintkit/pkg/tools"
)

// Options configures a new session.
type Options struct {
	Width, Height      int
	Background         raster.Color // canvas colour after Clear, painted by the eraser
	Color              raster.Color
	BrushSize          int
	Tool               tools.Kind
	Fill               floodfill.Options
	HistoryLimit       int
	Encoding           history.Encoding
	PickReturnsToBrush bool
}

// DefaultOptions returns a 640x480 transparent canvas with a purple brush
// of size 5, fill tolerance 30 with a 3 pixel seam margin and
// 50 undo levels.
func DefaultOptions() Options {
	return Options{
		Width:      640,
		Height:     480,
		Background: raster.Transparent,
		Color:      raster.Color{R: 0xc8, G: 0x1f, B: 0xd8, A: 0xff},
		BrushSize:  tools.DefaultBrushSize,
		Tool:       tools.KindBrush,
		Fill: floodfill.Options{
			Tolerance: floodfill.DefaultTolerance,
			Expansion: 3,
			Policy:    floodfill.Expand,
		},
		HistoryLimit:       history.DefaultLimit,
		Encoding:           history.EncodingRaw,
		PickReturnsToBrush: true,
	}
}

// Session is one canvas with its tool state and history.
type Session struct {
	buf     *raster.Buffer
	hist    *history.Manager[history.Snapshot]
	opts    Options
	tool    tools.Kind
	color   raster.Color
	size    int
	fill    floodfill.Options
	stroke  tools.Stroke
	drawing bool
	dirty   image.Rectangle // area touched by the gesture in progress
	rev     int             // bumped whenever the canvas content is replaced or recorded
}

// New creates a session with a cleared canvas and records it as the
// baseline snapshot.
func New(opts Options) (*Session, error) {
	if err := opts.Fill.Validate(); err != nil {
		return nil, err
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	s := &Session{
		buf:   raster.NewBuffer(opts.Width, opts.Height),
		hist:  history.New[history.Snapshot](opts.HistoryLimit),
		opts:  opts,
		tool:  opts.Tool,
		color: opts.Color,
		size:  tools.ClampBrushSize(opts.BrushSize),
		fill:  opts.Fill,
	}
	s.buf.Fill(opts.Background)
	if err := s.baseline(); err != nil {
		return nil, err
	}
	logging.Logger().Info("canvas session created",
		"width", opts.Width, "height", opts.Height, "history", s.hist.Limit())
	return s, nil
}

// Buffer returns the live buffer for display. Callers must not modify it.
func (s *Session) Buffer() *raster.Buffer { return s.buf }

// Image returns a copy of the current canvas.
func (s *Session) Image() image.Image { return s.buf.Clone() }

// Tool returns the active tool.
func (s *Session) Tool() tools.Kind { return s.tool }

// Color returns the current drawing colour.
func (s *Session) Color() raster.Color { return s.color }

// BrushSize returns the brush and eraser diameter.
func (s *Session) BrushSize() int { return s.size }

// FillOptions returns the options used by the fill tool.
func (s *Session) FillOptions() floodfill.Options { return s.fill }

// Background returns the canvas background colour.
func (s *Session) Background() raster.Color { return s.opts.Background }

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool { return s.drawing }

// CanUndo reports whether Undo would change the canvas.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether Redo would change the canvas.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// Revision changes every time an edit is recorded or the canvas content is
// replaced by undo, redo, clear or load. Hosts compare revisions to tell
// whether a call changed anything.
func (s *Session) Revision() int { return s.rev }

// History exposes the snapshot history for inspection.
func (s *Session) History() *history.Manager[history.Snapshot] { return s.hist }

// SelectTool switches the active tool. A stroke in progress is finished
// first.
func (s *Session) SelectTool(k tools.Kind) error {
	var err error
	if s.drawing {
		err = s.PointerUp()
	}
	s.tool = k
	return err
}

// SetColor sets the colour used by brush and fill.
func (s *Session) SetColor(c raster.Color) { s.color = c }

// SetBrushSize sets the brush diameter, clamped to the tool limits.
func (s *Session) SetBrushSize(n int) { s.size = tools.ClampBrushSize(n) }

// SetTolerance sets the fill tolerance, clamped to [0, 255].
func (s *Session) SetTolerance(n int) {
	s.fill.Tolerance = min(max(n, 0), floodfill.MaxTolerance)
}

// SetExpansion sets the fill seam margin. Zero selects the direct policy.
func (s *Session) SetExpansion(n int) {
	s.fill.Expansion = min(max(n, 0), floodfill.MaxExpansion)
	if s.fill.Expansion > 0 {
		s.fill.Policy = floodfill.Expand
	} else {
		s.fill.Policy = floodfill.Direct
	}
}

func (s *Session) activeTool() tools.Tool {
	switch s.tool {
	case tools.KindEraser:
		return tools.Eraser{Size: s.size, Background: s.opts.Background}
	case tools.KindFill:
		return tools.Fill{Color: s.color, Options: s.fill}
	case tools.KindPick:
		return tools.ColorPick{}
	default:
		return tools.Brush{Color: s.color, Size: s.size}
	}
}

// PointerDown starts a gesture at (x, y). Fill and pick complete
// immediately; brush and eraser start a stroke that PointerUp finishes.
func (s *Session) PointerDown(x, y int) error {
	if s.drawing {
		if err := s.PointerUp(); err != nil {
			return err
		}
	}
	eff, st := s.activeTool().Draw(s.buf, tools.Stroke{}, image.Pt(x, y))

	if eff.HasPick {
		s.color = eff.Picked
		logging.Logger().Debug("colour picked", "color", eff.Picked.Hex())
		if s.opts.PickReturnsToBrush {
			s.tool = tools.KindBrush
		}
	}
	if eff.Done {
		if eff.Changed {
			return s.commit("fill")
		}
		return nil
	}

	s.stroke = st
	s.drawing = true
	s.dirty = eff.Bounds
	return nil
}

// PointerMove extends the stroke in progress. Without one it does nothing.
func (s *Session) PointerMove(x, y int) {
	if !s.drawing {
		return
	}
	eff, st := s.activeTool().Draw(s.buf, s.stroke, image.Pt(x, y))
	s.stroke = st
	s.dirty = s.dirty.Union(eff.Bounds)
}

// PointerUp ends the stroke in progress and records it.
func (s *Session) PointerUp() error {
	if !s.drawing {
		return nil
	}
	s.drawing = false
	s.stroke = tools.Stroke{}
	touched := !s.dirty.Empty()
	s.dirty = image.Rectangle{}
	if !touched {
		return nil
	}
	return s.commit(s.tool.String())
}

// Clear paints the background over the whole canvas and restarts the
// history from that blank baseline.
func (s *Session) Clear() error {
	s.drawing = false
	s.stroke = tools.Stroke{}
	s.buf.Fill(s.opts.Background)
	s.hist.Clear()
	logging.Logger().Info("canvas cleared")
	return s.baseline()
}

// Undo restores the previous snapshot. It reports whether anything changed.
func (s *Session) Undo() (bool, error) {
	if s.drawing {
		if err := s.PointerUp(); err != nil {
			return false, err
		}
	}
	snap, ok := s.hist.Undo()
	if !ok {
		return false, nil
	}
	return true, s.restore(snap)
}

// Redo restores the most recently undone snapshot. It reports whether
// anything changed. A stroke in progress is finished first; if it drew
// anything it becomes a new edit and the redo entries are dropped.
func (s *Session) Redo() (bool, error) {
	if s.drawing {
		if err := s.PointerUp(); err != nil {
			return false, err
		}
	}
	snap, ok := s.hist.Redo()
	if !ok {
		return false, nil
	}
	return true, s.restore(snap)
}

// Resize grows the canvas to at least width × height, keeping the drawing.
// New area is painted with the background. The canvas never shrinks.
func (s *Session) Resize(width, height int) error {
	if !s.grow(width, height) {
		return nil
	}
	logging.Logger().Info("canvas resized", "width", s.buf.Width(), "height", s.buf.Height())
	return s.commit("resize")
}

// grow enlarges the buffer and paints the new area with the background.
func (s *Session) grow(width, height int) bool {
	oldW, oldH := s.buf.Width(), s.buf.Height()
	if !s.buf.Grow(width, height) {
		return false
	}
	if s.opts.Background != raster.Transparent {
		s.buf.FillRect(image.Rect(oldW, 0, s.buf.Width(), s.buf.Height()), s.opts.Background)
		s.buf.FillRect(image.Rect(0, oldH, oldW, s.buf.Height()), s.opts.Background)
	}
	return true
}

// Load replaces the canvas with img and restarts the history with it as
// the baseline.
func (s *Session) Load(img image.Image) error {
	return s.LoadFit(img, 0, 0)
}

// LoadFit is Load with the canvas grown to at least width × height before
// the baseline is recorded, so the padding is not an undoable step.
func (s *Session) LoadFit(img image.Image, width, height int) error {
	s.drawing = false
	s.stroke = tools.Stroke{}
	s.buf.Replace(raster.FromImage(img))
	s.grow(width, height)
	s.hist.Clear()
	logging.Logger().Info("canvas loaded", "width", s.buf.Width(), "height", s.buf.Height())
	return s.baseline()
}

func (s *Session) baseline() error {
	snap, err := history.Capture(s.buf, s.opts.Encoding)
	if err != nil {
		return fmt.Errorf("capturing baseline: %w", err)
	}
	s.hist.Push(snap)
	s.rev++
	return nil
}

// commit records the current buffer. A snapshot identical to the current
// one is dropped, so gestures that left the canvas unchanged do not create
// empty undo steps.
func (s *Session) commit(action string) error {
	snap, err := history.Capture(s.buf, s.opts.Encoding)
	if err != nil {
		return fmt.Errorf("recording %s: %w", action, err)
	}
	if top, ok := s.hist.Current(); ok && top.Equal(snap) {
		logging.Logger().Debug("commit skipped, canvas unchanged", "action", action)
		return nil
	}
	s.hist.Push(snap)
	s.rev++
	logging.Logger().Debug("commit", "action", action, "undo", s.hist.Len(), "bytes", snap.Bytes())
	return nil
}

func (s *Session) restore(snap history.Snapshot) error {
	buf, err := snap.Restore()
	if err != nil {
		return err
	}
	s.buf.Replace(buf)
	s.rev++
	return nil
}
