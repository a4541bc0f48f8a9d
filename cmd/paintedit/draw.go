package main

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ha1tch/paintkit/pkg/raster"
	"github.com/ha1tch/paintkit/pkg/tools"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleToolbar    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	styleToolSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray) // Help bar on default background
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// colorOutside fills the part of the view beyond the canvas edge.
var colorOutside = tcell.NewRGBColor(40, 40, 48)

// halfBlock draws the upper pixel in the foreground colour and the lower
// pixel in the background colour of one cell.
const halfBlock = '▀'

// Flash timing for error, success and warning messages
const (
	flashPhaseMs = 125
	flashTotalMs = 500
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()
	_, rows := ed.viewSize()

	ed.drawToolbar(w)
	ed.drawCanvas(w, rows)

	if ed.mode == ModeInput {
		ed.drawInputBox(w, h)
	}

	ed.drawStatusBar(w, h)
}

// toolbarItem is a clickable region of the top row, covering [x0, x1).
type toolbarItem struct {
	x0, x1 int
	label  string
	tool   tools.Kind
	swatch int // -1 for tool buttons
}

// toolbarLayout places the tool buttons followed by the first ten swatches.
func (ed *Editor) toolbarLayout() []toolbarItem {
	var items []toolbarItem
	x := 0
	for _, k := range tools.Kinds() {
		label := " " + k.String() + " "
		items = append(items, toolbarItem{x0: x, x1: x + len(label), label: label, tool: k, swatch: -1})
		x += len(label)
	}
	x++
	for i := 0; i < min(len(ed.swatches), 10); i++ {
		key := (i + 1) % 10
		items = append(items, toolbarItem{x0: x, x1: x + 3, label: fmt.Sprintf(" %d ", key), swatch: i})
		x += 3
	}
	return items
}

func (ed *Editor) drawToolbar(w int) {
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, 0, ' ', nil, styleToolbar)
	}
	for _, it := range ed.toolbarLayout() {
		style := styleToolbar
		if it.swatch >= 0 {
			c := ed.swatches[it.swatch]
			style = tcell.StyleDefault.Background(tcellColor(c)).Foreground(contrastColor(c))
			if c == ed.session.Color() {
				style = style.Underline(true).Bold(true)
			}
		} else if it.tool == ed.session.Tool() {
			style = styleToolSel
		}
		ed.drawString(it.x0, 0, it.label, style)
	}
}

func (ed *Editor) clickToolbar(x int) {
	for _, it := range ed.toolbarLayout() {
		if x < it.x0 || x >= it.x1 {
			continue
		}
		if it.swatch >= 0 {
			ed.selectSwatch(it.swatch)
		} else {
			ed.selectTool(it.tool)
		}
		return
	}
}

// drawCanvas renders two canvas pixels per cell. Transparent pixels are
// shown over the canvas background, or over white when that is itself
// transparent.
func (ed *Editor) drawCanvas(w, rows int) {
	buf := ed.session.Buffer()
	bg := ed.session.Background().Over(raster.White)
	pixel := func(x, y int) tcell.Color {
		if !buf.InBounds(x, y) {
			return colorOutside
		}
		return tcellColor(buf.Get(x, y).Over(bg))
	}

	for cy := 0; cy < rows; cy++ {
		py := 2*cy + ed.offsetY
		for cx := 0; cx < w; cx++ {
			px := cx + ed.offsetX
			style := tcell.StyleDefault.Foreground(pixel(px, py)).Background(pixel(px, py+1))
			ed.screen.SetContent(cx, canvasTop+cy, halfBlock, nil, style)
		}
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	// Current colour sample
	c := ed.session.Color()
	sample := tcell.StyleDefault.Background(tcellColor(c.Over(raster.White)))
	ed.screen.SetContent(1, y, ' ', nil, sample)
	ed.screen.SetContent(2, y, ' ', nil, sample)

	hist := ed.session.History()
	info := fmt.Sprintf("%s %s %s size %d tol %d undo %d redo %d",
		ed.fileLabel(), ed.session.Tool(), c.Hex(), ed.session.BrushSize(),
		ed.session.FillOptions().Tolerance, hist.Len()-1, hist.RedoLen())
	info = runewidth.Truncate(info, max(w-4, 0), "…")
	ed.drawString(4, y, info, styleStatus)

	// Message
	room := w - 4 - runewidth.StringWidth(info) - 3
	if ed.message != "" && room > 0 {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		case MsgWarning:
			style = styleMsgWarning
		}
		if messageFlashes(ed.messageType) {
			start := ed.messageFlashStart.Load()
			if flashInverted(nowMillis() - start) {
				style = style.Reverse(true)
			}
		}
		msg := runewidth.Truncate(ed.message, room, "…")
		ed.drawString(w-runewidth.StringWidth(msg)-1, y, msg, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, runewidth.Truncate(ed.helpString(), max(w-2, 0), "…"), styleHelp)
}

func (ed *Editor) fileLabel() string {
	label := "[New]"
	if ed.filename != "" {
		label = filepath.Base(ed.filename)
	}
	if ed.modified {
		label += " *"
	}
	return label
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := min(60, w)
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)

	// Keep the end of long input visible
	room := boxW - 4 - runewidth.StringWidth(ed.inputPrompt) - 1
	text := ed.inputBuffer
	for room > 0 && runewidth.StringWidth(text) > room {
		_, size := utf8.DecodeRuneInString(text)
		text = text[size:]
	}
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+runewidth.StringWidth(ed.inputPrompt), boxY+1, text+"_", styleInput)
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	// Corners
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	// Horizontal borders
	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}

	// Vertical borders
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}

	// Fill
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

// drawString draws s from column x, advancing by each rune's display width.
func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		ed.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	default:
		return "B:Brush E:Eraser F:Fill P:Pick  [ ]:Size  -/+:Tolerance  1-0:Colour  C:Clear  ^Z:Undo ^Y:Redo  ^S:Save  Arrows:Pan  Q:Quit"
	}
}

// flashInverted reports whether a flashing message is drawn inverted after
// elapsed milliseconds: normal, inverted, normal, inverted, then steady.
func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashTotalMs {
		return false
	}
	phase := elapsed / flashPhaseMs
	return phase == 1 || phase == 3
}

// messageFlashes reports whether messages of type t flash.
func messageFlashes(t MessageType) bool {
	switch t {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	default:
		return false
	}
}

func tcellColor(c raster.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// contrastColor picks black or white text for a swatch of colour c.
func contrastColor(c raster.Color) tcell.Color {
	if int(c.R)*299+int(c.G)*587+int(c.B)*114 > 128000 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}
