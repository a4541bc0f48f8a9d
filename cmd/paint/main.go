// Command paint is a CLI tool for creating and editing raster images.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ha1tch/paintkit/internal/logging"
	"github.com/ha1tch/paintkit/pkg/canvas"
	"github.com/ha1tch/paintkit/pkg/config"
	"github.com/ha1tch/paintkit/pkg/floodfill"
	"github.com/ha1tch/paintkit/pkg/imageio"
	"github.com/ha1tch/paintkit/pkg/raster"
)

const usage = `paint - raster canvas toolkit

Usage:
  paint [-v] <command> [options]

Commands:
  new        Create a blank image
  fill       Flood fill a region
  pick       Print the colour of a pixel
  info       Show image information
  convert    Convert an image to PNG
  replay     Draw a script of canvas operations

Examples:
  paint new -o blank.png -w 320 -h 200 --bg #ffffff
  paint fill drawing.png 10 20 #ff0000 -o filled.png --tolerance 40
  paint pick drawing.png 10 20
  paint convert photo.jpg -o photo.png --scale 2
  paint replay strokes.txt -o strokes.png

Defaults come from ~/.paintkit.toml. -v writes debug logs to stderr.
`

var errUsage = errors.New("usage")

// app carries what every command needs.
type app struct {
	cfg config.Config
	out io.Writer
}

func main() {
	args, verbose := stripVerbose(os.Args[1:])
	if verbose {
		logging.SetLogger(logging.NewTextLogger(os.Stderr, slog.LevelDebug))
	}
	if len(args) < 1 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	a := &app{cfg: cfg, out: os.Stdout}
	if err := a.run(args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, strings.TrimPrefix(err.Error(), "usage: "))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func stripVerbose(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	verbose := false
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			verbose = true
			continue
		}
		out = append(out, a)
	}
	return out, verbose
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "new":
		return a.cmdNew(args)
	case "fill":
		return a.cmdFill(args)
	case "pick":
		return a.cmdPick(args)
	case "info":
		return a.cmdInfo(args)
	case "convert":
		return a.cmdConvert(args)
	case "replay":
		return a.cmdReplay(args)
	case "-h", "--help", "help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q\n\n%s", errUsage, cmd, usage)
	}
}

// splitArgs separates positional arguments from "-x value" options.
// Every option takes a value.
func splitArgs(args []string) (pos []string, opts map[string]string, err error) {
	opts = make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) > 1 && arg[0] == '-' && !isNumber(arg) {
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("option %s needs a value", arg)
			}
			opts[strings.TrimLeft(arg, "-")] = args[i+1]
			i++
			continue
		}
		pos = append(pos, arg)
	}
	return pos, opts, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// option returns the first of names present in opts.
func option(opts map[string]string, names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := opts[n]; ok {
			return v, true
		}
	}
	return "", false
}

func intOption(opts map[string]string, def int, names ...string) (int, error) {
	v, ok := option(opts, names...)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("--%s: bad number %q", names[len(names)-1], v)
	}
	return n, nil
}

// scaleOption reads --scale and checks it against the export limit.
func scaleOption(opts map[string]string, def int) (int, error) {
	n, err := intOption(opts, def, "scale")
	if err != nil {
		return 0, err
	}
	if n < 1 || n > imageio.MaxScale {
		return 0, fmt.Errorf("--scale: %d not in [1, %d]", n, imageio.MaxScale)
	}
	return n, nil
}

func colorOption(opts map[string]string, def string, names ...string) (raster.Color, error) {
	v, ok := option(opts, names...)
	if !ok {
		v = def
	}
	return raster.ParseHex(v)
}

func point(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("bad x coordinate %q", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("bad y coordinate %q", ys)
	}
	return x, y, nil
}

func (a *app) cmdNew(args []string) error {
	const use = "usage: paint new -o <output> [-w width] [-h height] [--bg #hex]"
	_, opts, err := splitArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %v\n%s", errUsage, err, use)
	}
	output, ok := option(opts, "o", "output")
	if !ok {
		return fmt.Errorf("%w: %s", errUsage, use)
	}
	w, err := intOption(opts, a.cfg.Width, "w", "width")
	if err != nil {
		return err
	}
	h, err := intOption(opts, a.cfg.Height, "h", "height")
	if err != nil {
		return err
	}
	if w < 1 || h < 1 {
		return fmt.Errorf("invalid size %dx%d", w, h)
	}
	bg, err := colorOption(opts, a.cfg.Background, "bg")
	if err != nil {
		return err
	}

	buf := raster.NewBuffer(w, h)
	buf.Fill(bg)
	if err := imageio.Save(output, buf, imageio.SaveOptions{}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Written: %s (%dx%d)\n", output, w, h)
	return nil
}

func (a *app) cmdFill(args []string) error {
	const use = "usage: paint fill <input> <x> <y> <#hex> [-o output] [--tolerance n] [--expand n]"
	pos, opts, err := splitArgs(args)
	if err != nil || len(pos) != 4 {
		return fmt.Errorf("%w: %s", errUsage, use)
	}
	input := pos[0]
	x, y, err := point(pos[1], pos[2])
	if err != nil {
		return err
	}
	c, err := raster.ParseHex(pos[3])
	if err != nil {
		return err
	}
	fopts := floodfill.Options{}
	if fopts.Tolerance, err = intOption(opts, a.cfg.Tolerance, "tolerance"); err != nil {
		return err
	}
	if fopts.Expansion, err = intOption(opts, a.cfg.Expansion, "expand"); err != nil {
		return err
	}
	if fopts.Expansion > 0 {
		fopts.Policy = floodfill.Expand
	}
	if err := fopts.Validate(); err != nil {
		return err
	}

	buf, _, err := imageio.Load(input)
	if err != nil {
		return err
	}
	res := floodfill.Fill(buf, x, y, c, fopts)

	output, ok := option(opts, "o", "output")
	if !ok {
		output = input
	}
	if err := imageio.Save(output, buf, imageio.SaveOptions{}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Filled %d pixels (%d painted): %s\n", res.Pixels, res.Painted, output)
	return nil
}

func (a *app) cmdPick(args []string) error {
	const use = "usage: paint pick <input> <x> <y>"
	pos, _, err := splitArgs(args)
	if err != nil || len(pos) != 3 {
		return fmt.Errorf("%w: %s", errUsage, use)
	}
	x, y, err := point(pos[1], pos[2])
	if err != nil {
		return err
	}
	buf, _, err := imageio.Load(pos[0])
	if err != nil {
		return err
	}
	if !buf.InBounds(x, y) {
		return fmt.Errorf("(%d, %d) is outside the %dx%d image", x, y, buf.Width(), buf.Height())
	}
	fmt.Fprintln(a.out, buf.Get(x, y).Hex())
	return nil
}

func (a *app) cmdInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: paint info <input>", errUsage)
	}
	info, err := imageio.Inspect(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Format:      %s\n", info.Format)
	fmt.Fprintf(a.out, "MIME:        %s\n", info.MIME)
	fmt.Fprintf(a.out, "Size:        %dx%d\n", info.Width, info.Height)
	fmt.Fprintf(a.out, "Pixels:      %d\n", info.Width*info.Height)
	return nil
}

func (a *app) cmdConvert(args []string) error {
	const use = "usage: paint convert <input> [-o output.png] [--scale n] [--bg #hex]"
	pos, opts, err := splitArgs(args)
	if err != nil || len(pos) != 1 {
		return fmt.Errorf("%w: %s", errUsage, use)
	}
	input := pos[0]

	output, ok := option(opts, "o", "output")
	if !ok {
		// Default: change extension
		ext := filepath.Ext(input)
		if strings.EqualFold(ext, ".png") {
			return fmt.Errorf("%w: input is already PNG, give -o\n%s", errUsage, use)
		}
		output = strings.TrimSuffix(input, ext) + ".png"
	}
	save := a.cfg.SaveOptions()
	if save.Scale, err = scaleOption(opts, save.Scale); err != nil {
		return err
	}
	if v, ok := option(opts, "bg"); ok {
		if save.Background, err = raster.ParseHex(v); err != nil {
			return err
		}
	}

	buf, info, err := imageio.Load(input)
	if err != nil {
		return err
	}
	if err := imageio.Save(output, buf, save); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Written: %s (%s %dx%d, scale %d)\n", output, info.Format, info.Width, info.Height, save.Scale)
	return nil
}

func (a *app) cmdReplay(args []string) error {
	const use = "usage: paint replay <script|-> -o <output> [-w width] [-h height] [--bg #hex] [--scale n]"
	pos, opts, err := splitArgs(args)
	if err != nil || len(pos) != 1 {
		return fmt.Errorf("%w: %s", errUsage, use)
	}
	output, ok := option(opts, "o", "output")
	if !ok {
		return fmt.Errorf("%w: %s", errUsage, use)
	}

	sopts := a.cfg.SessionOptions()
	if sopts.Width, err = intOption(opts, sopts.Width, "w", "width"); err != nil {
		return err
	}
	if sopts.Height, err = intOption(opts, sopts.Height, "h", "height"); err != nil {
		return err
	}
	if sopts.Background, err = colorOption(opts, sopts.Background.Hex(), "bg"); err != nil {
		return err
	}
	save := a.cfg.SaveOptions()
	if save.Scale, err = scaleOption(opts, save.Scale); err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if pos[0] != "-" {
		f, err := os.Open(pos[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	ops, err := ParseScript(r)
	if err != nil {
		return err
	}

	s, err := canvas.New(sopts)
	if err != nil {
		return err
	}
	if err := Replay(s, ops); err != nil {
		return err
	}
	if err := imageio.Save(output, s.Buffer(), save); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Replayed %d operations: %s (undo %d, redo %d)\n",
		len(ops), output, s.History().Len()-1, s.History().RedoLen())
	return nil
}
