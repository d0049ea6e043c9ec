package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/filter-playground/dsp/polezero"
	"github.com/cwbudde/filter-playground/internal/audio"
	"github.com/cwbudde/filter-playground/internal/editor"
)

var (
	// ErrQuit is returned by Execute for the quit command.
	ErrQuit = errors.New("quit")
	// ErrUnknownCommand is returned for unrecognized command names.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command has the wrong arguments.
	ErrUsage = errors.New("usage")
)

// Commander executes text commands against a running editor loop:
//
//	add pole|zero          add-real pole|zero     remove pole|zero <index>
//	down <x> <y>           move <x> <y>           up
//	load-demo              clear                  list
//	coeffs                 status                 quit
//
// Coordinates are canvas pixels, as delivered by a pointer.
type Commander struct {
	loop   *editor.Loop
	engine *audio.Engine
	out    io.Writer
}

// NewCommander returns a Commander writing replies to out. engine may be
// nil, in which case status omits audio levels.
func NewCommander(loop *editor.Loop, engine *audio.Engine, out io.Writer) *Commander {
	return &Commander{loop: loop, engine: engine, out: out}
}

// Execute runs one command line. Blank lines and lines starting with '#'
// are ignored.
func (c *Commander) Execute(ctx context.Context, line string) error {
	args := parseCommand(line)
	if len(args) == 0 {
		return nil
	}
	name, args := args[0], args[1:]

	var reply string
	var err error
	switch name {
	case "add", "add-real":
		reply, err = c.add(ctx, name == "add-real", args)
	case "down":
		reply, err = c.down(ctx, args)
	case "move":
		reply, err = c.move(ctx, args)
	case "up":
		reply, err = c.simple(ctx, args, func(s *editor.Session) error {
			s.PointerUp()
			return nil
		})
	case "remove":
		reply, err = c.remove(ctx, args)
	case "load-demo":
		reply, err = c.simple(ctx, args, (*editor.Session).LoadDemo)
	case "clear":
		reply, err = c.simple(ctx, args, func(s *editor.Session) error {
			s.Clear()
			return nil
		})
	case "list":
		reply, err = c.list(ctx, args)
	case "coeffs":
		reply, err = c.coeffs(ctx, args)
	case "status":
		reply, err = c.status(ctx, args)
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, reply)
	return err
}

func parseCommand(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	return strings.Fields(line)
}

func (c *Commander) simple(ctx context.Context, args []string, fn func(*editor.Session) error) (string, error) {
	if len(args) != 0 {
		return "", fmt.Errorf("%w: command takes no arguments", ErrUsage)
	}
	if err := c.loop.Do(ctx, fn); err != nil {
		return "", err
	}
	return "ok", nil
}

func (c *Commander) add(ctx context.Context, realAxis bool, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: add pole|zero", ErrUsage)
	}
	kind, err := polezero.ParseKind(args[0])
	if err != nil {
		return "", err
	}
	var ref polezero.Ref
	err = c.loop.Do(ctx, func(s *editor.Session) error {
		var err error
		if realAxis {
			ref, err = s.AddReal(kind)
		} else {
			ref, err = s.Add(kind)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return ref.String(), nil
}

func (c *Commander) down(ctx context.Context, args []string) (string, error) {
	x, y, err := parseXY(args)
	if err != nil {
		return "", err
	}
	var ref polezero.Ref
	var ok bool
	err = c.loop.Do(ctx, func(s *editor.Session) error {
		ref, ok = s.PointerDown(x, y)
		return nil
	})
	if err != nil {
		return "", err
	}
	if !ok {
		return "none", nil
	}
	return ref.String(), nil
}

func (c *Commander) move(ctx context.Context, args []string) (string, error) {
	x, y, err := parseXY(args)
	if err != nil {
		return "", err
	}
	err = c.loop.Do(ctx, func(s *editor.Session) error {
		return s.PointerMove(x, y)
	})
	if err != nil {
		return "", err
	}
	return "ok", nil
}

func (c *Commander) remove(ctx context.Context, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("%w: remove pole|zero <index>", ErrUsage)
	}
	kind, err := polezero.ParseKind(args[0])
	if err != nil {
		return "", err
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("%w: index %q: %v", ErrUsage, args[1], err)
	}
	ref := polezero.Ref{Kind: kind, Index: idx}
	if err := c.loop.Do(ctx, func(s *editor.Session) error { return s.Remove(ref) }); err != nil {
		return "", err
	}
	return "ok", nil
}

func (c *Commander) list(ctx context.Context, args []string) (string, error) {
	if len(args) != 0 {
		return "", fmt.Errorf("%w: list", ErrUsage)
	}
	var b strings.Builder
	err := c.loop.Do(ctx, func(s *editor.Session) error {
		m := s.Model()
		for _, k := range []polezero.Kind{polezero.Pole, polezero.Zero} {
			for i, p := range m.Points(k) {
				ref := polezero.Ref{Kind: k, Index: i}
				fmt.Fprintf(&b, "%s %s", ref, p)
				if partner, ok := m.Partner(ref); ok {
					fmt.Fprintf(&b, " ~%s", partner)
				}
				b.WriteByte('\n')
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "empty", nil
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func (c *Commander) coeffs(ctx context.Context, args []string) (string, error) {
	if len(args) != 0 {
		return "", fmt.Errorf("%w: coeffs", ErrUsage)
	}
	var ff, fb []float64
	var syncErr error
	err := c.loop.Do(ctx, func(s *editor.Session) error {
		syncErr = s.Sync()
		co := s.Coefficients()
		ff, fb = co.Feedforward, co.Feedback
		return nil
	})
	if err != nil {
		return "", err
	}
	reply := fmt.Sprintf("b=%s\na=%s", formatVector(ff), formatVector(fb))
	if syncErr != nil {
		reply += "\nstale: " + syncErr.Error()
	}
	return reply, nil
}

func (c *Commander) status(ctx context.Context, args []string) (string, error) {
	if len(args) != 0 {
		return "", fmt.Errorf("%w: status", ErrUsage)
	}
	var f editor.Frame
	if err := c.loop.Do(ctx, func(s *editor.Session) error {
		f = s.Frame()
		return nil
	}); err != nil {
		return "", err
	}

	engaged := "none"
	if f.Engaging {
		engaged = f.Engaged.String()
	}
	reply := fmt.Sprintf("version=%d poles=%d zeros=%d engaged=%s order=%d",
		f.Version, len(f.Poles), len(f.Zeros), engaged, f.Coefficients.Order())
	if c.engine != nil {
		lv := c.engine.Levels()
		reply += fmt.Sprintf(" left=%.3f right=%.3f", lv.Left, lv.Right)
	}
	if f.Err != nil {
		reply += " error=" + strconv.Quote(f.Err.Error())
	}
	return reply, nil
}

func parseXY(args []string) (x, y float64, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%w: expected <x> <y>", ErrUsage)
	}
	if x, err = strconv.ParseFloat(args[0], 64); err != nil {
		return 0, 0, fmt.Errorf("%w: x %q: %v", ErrUsage, args[0], err)
	}
	if y, err = strconv.ParseFloat(args[1], 64); err != nil {
		return 0, 0, fmt.Errorf("%w: y %q: %v", ErrUsage, args[1], err)
	}
	return x, y, nil
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', 10, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
