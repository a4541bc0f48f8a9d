// Command paintedit is a terminal paint program.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/paintkit/internal/logging"
	"github.com/ha1tch/paintkit/pkg/canvas"
	"github.com/ha1tch/paintkit/pkg/config"
	"github.com/ha1tch/paintkit/pkg/imageio"
	"github.com/ha1tch/paintkit/pkg/palette"
	"github.com/ha1tch/paintkit/pkg/tools"
)

// Editor holds all editor state
type Editor struct {
	screen   tcell.Screen
	session  *canvas.Session
	cfg      config.Config
	cfgPath  string
	swatches palette.Palette
	filename string
	modified bool
	mode     Mode

	message           string
	messageType       MessageType
	messageFlashStart atomic.Int64 // Unix milliseconds when message was shown

	// Viewport offset in canvas pixels
	offsetX int
	offsetY int

	// Left-button tracking
	leftMouseDown bool

	// Set by the first q with unsaved changes
	quitArmed bool

	// Input state
	inputBuffer string
	inputPrompt string
	inputAction func(string)
}

// Mode represents editor mode
type Mode int

const (
	ModeCanvas Mode = iota
	ModeInput
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

// nowMillis is the clock used for message flashing.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// Screen rows used outside the canvas: toolbar on top, help and status at
// the bottom.
const (
	canvasTop     = 1
	reservedLines = 3
)

func main() {
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logging.SetLogger(logging.NewTextLogger(f, slog.LevelDebug))
	}

	// Initialize screen
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	ed, err := newEditor(screen, cfg, cfgPath)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Check command line
	if len(os.Args) > 1 {
		if err := ed.loadFile(os.Args[1]); err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
	}

	// Main loop
	ed.run()

	screen.Fini()
}

// newEditor creates an editor whose canvas covers at least the visible
// screen area.
func newEditor(screen tcell.Screen, cfg config.Config, cfgPath string) (*Editor, error) {
	opts := cfg.SessionOptions()
	w, h := screen.Size()
	opts.Width = max(opts.Width, w)
	opts.Height = max(opts.Height, 2*max(h-reservedLines, 0))

	sess, err := canvas.New(opts)
	if err != nil {
		return nil, err
	}
	ed := &Editor{
		screen:   screen,
		session:  sess,
		cfg:      cfg,
		cfgPath:  cfgPath,
		swatches: cfg.Swatches(),
		mode:     ModeCanvas,
	}
	ed.showMessage("Ready", MsgInfo)
	return ed, nil
}

func (ed *Editor) run() {
	// Use a goroutine to send periodic refresh events during message flash
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			start := ed.messageFlashStart.Load()
			if start == 0 {
				continue
			}
			elapsed := nowMillis() - start
			if elapsed >= 0 && elapsed < 700 {
				ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
			ed.fitCanvas()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			// Refresh event for flash animation - just redraw
		case nil:
			return
		}
	}
}

// viewSize returns the canvas area in cells.
func (ed *Editor) viewSize() (int, int) {
	w, h := ed.screen.Size()
	return w, max(h-reservedLines, 0)
}

// fitCanvas grows the canvas to cover the visible area.
func (ed *Editor) fitCanvas() {
	w, rows := ed.viewSize()
	buf := ed.session.Buffer()
	if ed.offsetX+w <= buf.Width() && ed.offsetY+2*rows <= buf.Height() {
		return
	}
	if err := ed.session.Resize(ed.offsetX+w, ed.offsetY+2*rows); err != nil {
		ed.showMessage("Resize failed: "+err.Error(), MsgError)
		return
	}
	ed.modified = true
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	if ed.mode == ModeInput {
		return ed.handleInputKey(ev)
	}

	// Global shortcuts (Ctrl or Cmd on macOS)
	mod := ev.Modifiers()
	isCtrlOrCmd := func(key tcell.Key, r rune) bool {
		if ev.Key() == key {
			return true
		}
		// Cmd+key is reported as Meta+rune or Alt+rune on some terminals
		if mod&(tcell.ModMeta|tcell.ModAlt) != 0 && ev.Rune() == r {
			return true
		}
		return false
	}

	if isCtrlOrCmd(tcell.KeyCtrlS, 's') {
		ed.save()
		return false
	}
	if isCtrlOrCmd(tcell.KeyCtrlZ, 'z') {
		ed.undo()
		return false
	}
	if isCtrlOrCmd(tcell.KeyCtrlY, 'y') {
		ed.redo()
		return false
	}
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}

	return ed.handleCanvasKey(ev)
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	armed := ed.quitArmed
	ed.quitArmed = false

	switch ev.Key() {
	case tcell.KeyEscape:
		return ed.requestQuit(armed)
	case tcell.KeyUp:
		ed.panViewport(0, -1)
	case tcell.KeyDown:
		ed.panViewport(0, 1)
	case tcell.KeyLeft:
		ed.panViewport(-1, 0)
	case tcell.KeyRight:
		ed.panViewport(1, 0)
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r == 'q' || r == 'Q':
			return ed.requestQuit(armed)
		case r == 'b' || r == 'B':
			ed.selectTool(tools.KindBrush)
		case r == 'e' || r == 'E':
			ed.selectTool(tools.KindEraser)
		case r == 'f' || r == 'F':
			ed.selectTool(tools.KindFill)
		case r == 'p' || r == 'P':
			ed.selectTool(tools.KindPick)
		case r == '[':
			ed.setBrushSize(ed.session.BrushSize() - 1)
		case r == ']':
			ed.setBrushSize(ed.session.BrushSize() + 1)
		case r == '-':
			ed.session.SetTolerance(ed.session.FillOptions().Tolerance - 5)
			ed.showMessage(fmt.Sprintf("Tolerance %d", ed.session.FillOptions().Tolerance), MsgInfo)
		case r == '=' || r == '+':
			ed.session.SetTolerance(ed.session.FillOptions().Tolerance + 5)
			ed.showMessage(fmt.Sprintf("Tolerance %d", ed.session.FillOptions().Tolerance), MsgInfo)
		case r >= '1' && r <= '9':
			ed.selectSwatch(int(r - '1'))
		case r == '0':
			ed.selectSwatch(9)
		case r == 'c' || r == 'C':
			ed.clear()
		}
	}
	return false
}

// requestQuit reports whether the editor should exit. With unsaved changes
// the first request only warns; armed is set when the previous key was one.
func (ed *Editor) requestQuit(armed bool) bool {
	if !ed.modified || armed {
		return true
	}
	ed.quitArmed = true
	ed.showMessage("Unsaved changes - press q again to quit", MsgWarning)
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
		ed.inputBuffer = ""
		ed.showMessage("Cancelled", MsgInfo)
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		action, text := ed.inputAction, ed.inputBuffer
		ed.inputBuffer = ""
		if action != nil {
			action(text)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(ed.inputBuffer); len(r) > 0 {
			ed.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
	return false
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()

	if buttons&tcell.Button1 == 0 {
		if ed.leftMouseDown {
			ed.leftMouseDown = false
			rev := ed.session.Revision()
			ed.commit(rev, ed.session.PointerUp())
		}
		return
	}

	if ed.leftMouseDown {
		px, py := ed.cellToPixel(x, y)
		ed.session.PointerMove(px, py)
		return
	}

	if y < canvasTop {
		ed.clickToolbar(x)
		return
	}
	_, rows := ed.viewSize()
	if y >= canvasTop+rows || ed.mode != ModeCanvas {
		return
	}

	ed.leftMouseDown = true
	ed.quitArmed = false
	px, py := ed.cellToPixel(x, y)
	before, rev := ed.session.Tool(), ed.session.Revision()
	ed.commit(rev, ed.session.PointerDown(px, py))
	if !ed.session.Drawing() {
		// fill and pick finish on press
		ed.leftMouseDown = false
		if before == tools.KindPick {
			ed.showMessage("Picked "+ed.session.Color().Hex(), MsgInfo)
		}
	}
}

// cellToPixel maps a screen cell to the canvas pixel in its upper half.
func (ed *Editor) cellToPixel(x, y int) (int, int) {
	return x + ed.offsetX, (y-canvasTop)*2 + ed.offsetY
}

// commit records the outcome of a session edit. The file is only marked
// modified when the session moved past revision rev.
func (ed *Editor) commit(rev int, err error) {
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	if ed.session.Revision() != rev {
		ed.modified = true
	}
}

func (ed *Editor) panViewport(dx, dy int) {
	w, rows := ed.viewSize()
	buf := ed.session.Buffer()
	ed.offsetX = min(max(ed.offsetX+dx, 0), max(buf.Width()-w, 0))
	ed.offsetY = min(max(ed.offsetY+2*dy, 0), max(buf.Height()-2*rows, 0))
}

func (ed *Editor) selectTool(k tools.Kind) {
	if err := ed.session.SelectTool(k); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.leftMouseDown = false
	ed.showMessage("Tool: "+k.String(), MsgInfo)
}

func (ed *Editor) setBrushSize(n int) {
	ed.session.SetBrushSize(n)
	ed.showMessage(fmt.Sprintf("Size %d", ed.session.BrushSize()), MsgInfo)
}

func (ed *Editor) selectSwatch(i int) {
	if i < 0 || i >= len(ed.swatches) {
		return
	}
	c := ed.swatches[i]
	ed.session.SetColor(c)
	ed.showMessage("Colour "+c.Hex(), MsgInfo)
}

func (ed *Editor) clear() {
	if err := ed.session.Clear(); err != nil {
		ed.showMessage(err.Error(), MsgError)
		return
	}
	ed.leftMouseDown = false
	ed.modified = true
	ed.showMessage("Canvas cleared", MsgSuccess)
}

func (ed *Editor) undo() {
	rev := ed.session.Revision()
	ok, err := ed.session.Undo()
	ed.leftMouseDown = false
	ed.commit(rev, err)
	if err != nil {
		return
	}
	if !ok {
		ed.showMessage("Nothing to undo", MsgInfo)
		return
	}
	ed.showMessage("Undo", MsgInfo)
}

func (ed *Editor) redo() {
	rev := ed.session.Revision()
	ok, err := ed.session.Redo()
	ed.leftMouseDown = false
	ed.commit(rev, err)
	if err != nil {
		return
	}
	if !ok {
		ed.showMessage("Nothing to redo", MsgInfo)
		return
	}
	ed.showMessage("Redo", MsgInfo)
}

func (ed *Editor) save() {
	if ed.filename != "" {
		ed.saveFile(ed.filename)
		return
	}
	ed.inputPrompt = "Save as: "
	ed.inputBuffer = filepath.Join(ed.cfg.LastDir, "untitled.png")
	ed.inputAction = func(path string) {
		if path == "" {
			ed.showMessage("No file name", MsgError)
			return
		}
		ed.saveFile(path)
	}
	ed.mode = ModeInput
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart.Store(nowMillis())
	// Trigger immediate refresh for flash animation
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// File operations

func (ed *Editor) loadFile(path string) error {
	buf, _, err := imageio.Load(path)
	if err != nil {
		return err
	}
	w, rows := ed.viewSize()
	if err := ed.session.LoadFit(buf, w, 2*rows); err != nil {
		return err
	}
	ed.filename = path
	ed.modified = false
	ed.offsetX, ed.offsetY = 0, 0
	ed.showMessage("Opened "+filepath.Base(path), MsgInfo)
	return nil
}

func (ed *Editor) saveFile(path string) {
	if err := imageio.Save(path, ed.session.Buffer(), ed.cfg.SaveOptions()); err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	ed.filename = path
	ed.modified = false

	if dir, err := filepath.Abs(filepath.Dir(path)); err == nil {
		ed.cfg.LastDir = dir
	}
	if ed.cfgPath != "" {
		if err := config.Save(ed.cfgPath, ed.cfg); err != nil {
			ed.showMessage("Failed to save config: "+err.Error(), MsgError)
			return
		}
	}
	ed.showMessage("Saved "+filepath.Base(path), MsgSuccess)
}
