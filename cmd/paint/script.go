package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ha1tch/paintkit/pkg/canvas"
	"github.com/ha1tch/paintkit/pkg/raster"
	"github.com/ha1tch/paintkit/pkg/tools"
)

// Op is one line of a replay script.
type Op struct {
	Line int
	Name string
	Args []string
}

func (op Op) String() string {
	return strings.TrimSpace(op.Name + " " + strings.Join(op.Args, " "))
}

// arity is the number of arguments each script command takes.
var arity = map[string]int{
	"size":      2,
	"tool":      1,
	"color":     1,
	"brush":     1,
	"tolerance": 1,
	"expand":    1,
	"down":      2,
	"move":      2,
	"up":        0,
	"undo":      0,
	"redo":      0,
	"clear":     0,
}

// ParseScript reads a replay script. Blank lines and comment lines, which
// start with "# " or "//", are skipped. Commands are checked for name and
// argument count here; argument values are checked when run.
func ParseScript(r io.Reader) ([]Op, error) {
	var ops []Op
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "//") || fields[0] == "#" {
			continue
		}
		name := strings.ToLower(fields[0])
		n, ok := arity[name]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown command %q", line, fields[0])
		}
		if len(fields)-1 != n {
			return nil, fmt.Errorf("line %d: %s takes %d argument(s), got %d", line, name, n, len(fields)-1)
		}
		ops = append(ops, Op{Line: line, Name: name, Args: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

// Replay runs ops against s in order and stops at the first error.
func Replay(s *canvas.Session, ops []Op) error {
	for _, op := range ops {
		if err := apply(s, op); err != nil {
			return fmt.Errorf("line %d (%s): %w", op.Line, op, err)
		}
	}
	return s.PointerUp()
}

func apply(s *canvas.Session, op Op) error {
	ints := func() ([]int, error) {
		out := make([]int, len(op.Args))
		for i, a := range op.Args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", a)
			}
			out[i] = n
		}
		return out, nil
	}

	switch op.Name {
	case "size":
		n, err := ints()
		if err != nil {
			return err
		}
		return s.Resize(n[0], n[1])
	case "tool":
		k, err := tools.ParseKind(op.Args[0])
		if err != nil {
			return err
		}
		return s.SelectTool(k)
	case "color":
		c, err := raster.ParseHex(op.Args[0])
		if err != nil {
			return err
		}
		s.SetColor(c)
	case "brush":
		n, err := ints()
		if err != nil {
			return err
		}
		s.SetBrushSize(n[0])
	case "tolerance":
		n, err := ints()
		if err != nil {
			return err
		}
		s.SetTolerance(n[0])
	case "expand":
		n, err := ints()
		if err != nil {
			return err
		}
		s.SetExpansion(n[0])
	case "down":
		n, err := ints()
		if err != nil {
			return err
		}
		return s.PointerDown(n[0], n[1])
	case "move":
		n, err := ints()
		if err != nil {
			return err
		}
		s.PointerMove(n[0], n[1])
	case "up":
		return s.PointerUp()
	case "undo":
		_, err := s.Undo()
		return err
	case "redo":
		_, err := s.Redo()
		return err
	case "clear":
		return s.Clear()
	}
	return nil
}
