package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/muesli/termenv"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/color"
	"github.com/martinwickman/tavs/internal/theme"
)

const colorUsage = `usage: tavs color <op> [args]

  hex-to-rgb HEX              print "R G B"
  rgb-to-hex R G B            print #RRGGBB
  rgb-to-hsl R G B            print "H S L" (H in millidegrees, S and L in thousandths)
  hsl-to-rgb H S L            print "R G B"
  normalize HEX               print canonical #RRGGBB
  is-dark HEX                 print true or false
  shift-hue HEX DEGREES       rotate the hue
  interpolate A B T           blend in RGB, T from 0 to 1000
  interpolate-hsl A B T       blend in HSL along the shorter hue arc
  lightness HEX DELTA         adjust lightness by DELTA thousandths
  saturation HEX DELTA        adjust saturation by DELTA thousandths
  state-colors BASE           derive the five state colors from BASE
  preview [BASE]              show swatches for every state
  test                        run the conversion self test
`

var errArgs = errors.New("wrong arguments")

// runColor executes one color operation. Malformed input prints the
// fallback result and exits 1. palette supplies the configured colors for
// preview without a base.
func runColor(args []string, stdout, stderr io.Writer, palette func() theme.Palette) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, colorUsage)
		return 2
	}
	op, args := args[0], args[1:]

	out, err := colorOp(op, args, stdout, palette)
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errArgs):
		fmt.Fprintf(stderr, "tavs color %s: %v\n\n%s", op, err, colorUsage)
		return 2
	default:
		fmt.Fprintf(stderr, "tavs color %s: %v\n", op, err)
		return 1
	}
}

func colorOp(op string, args []string, stdout io.Writer, palette func() theme.Palette) (string, error) {
	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d, got %d", errArgs, op, n, len(args))
		}
		return nil
	}

	switch op {
	case "hex-to-rgb":
		if err := want(1); err != nil {
			return "", err
		}
		c, err := color.HexToRGB(args[0])
		return fmt.Sprintf("%d %d %d", c.R, c.G, c.B), err
	case "rgb-to-hex":
		if err := want(3); err != nil {
			return "", err
		}
		v, err := ints(args)
		if err != nil {
			return "", err
		}
		return color.RGBToHex(v[0], v[1], v[2]), nil
	case "rgb-to-hsl":
		if err := want(3); err != nil {
			return "", err
		}
		v, err := ints(args)
		if err != nil {
			return "", err
		}
		h := color.RGBToHSL(v[0], v[1], v[2])
		return fmt.Sprintf("%d %d %d", h.H, h.S, h.L), nil
	case "hsl-to-rgb":
		if err := want(3); err != nil {
			return "", err
		}
		v, err := ints(args)
		if err != nil {
			return "", err
		}
		c := color.HSLToRGB(v[0], v[1], v[2])
		return fmt.Sprintf("%d %d %d", c.R, c.G, c.B), nil
	case "normalize":
		if err := want(1); err != nil {
			return "", err
		}
		return color.Normalize(args[0])
	case "is-dark":
		if err := want(1); err != nil {
			return "", err
		}
		_, err := color.HexToRGB(args[0])
		return strconv.FormatBool(color.IsDarkColor(args[0])), err
	case "shift-hue", "lightness", "saturation":
		if err := want(2); err != nil {
			return "", err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an integer", errArgs, args[1])
		}
		switch op {
		case "shift-hue":
			return color.ShiftHue(args[0], n)
		case "lightness":
			return color.AdjustLightness(args[0], n)
		default:
			return color.AdjustSaturation(args[0], n)
		}
	case "interpolate", "interpolate-hsl":
		if err := want(3); err != nil {
			return "", err
		}
		t, err := strconv.Atoi(args[2])
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an integer", errArgs, args[2])
		}
		if op == "interpolate" {
			return color.InterpolateColor(args[0], args[1], t)
		}
		return color.InterpolateHSL(args[0], args[1], t)
	case "state-colors":
		if err := want(1); err != nil {
			return "", err
		}
		set, err := color.CalculateStateColors(args[0])
		s := set.Slice()
		return fmt.Sprintf("processing %s\npermission %s\ncomplete   %s\nidle       %s\ncompacting %s", s[0], s[1], s[2], s[3], s[4]), err
	case "preview":
		if len(args) > 1 {
			return "", want(1)
		}
		var p theme.Palette
		if len(args) == 1 {
			set, err := color.CalculateStateColors(args[0])
			if err != nil {
				return "", err
			}
			p = theme.Palette{Colors: set, Dynamic: true, Base: args[0]}
		} else {
			p = palette()
		}
		preview(stdout, p)
		return "", nil
	case "test":
		if err := want(0); err != nil {
			return "", err
		}
		if err := color.SelfTest(); err != nil {
			return "", err
		}
		return "ok", nil
	case "help":
		fmt.Fprint(stdout, colorUsage)
		return "", nil
	default:
		return "", fmt.Errorf("%w: unknown op %q", errArgs, op)
	}
}

func ints(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", errArgs, a)
		}
		out[i] = n
	}
	return out, nil
}

// preview prints a swatch per state at the output's color profile.
func preview(w io.Writer, p theme.Palette) {
	out := termenv.NewOutput(w)
	if p.Dynamic {
		fmt.Fprintf(w, "base %s\n", p.Base)
	}
	states := []activity.State{
		activity.Of(activity.Processing),
		activity.Of(activity.Permission),
		activity.Of(activity.Compacting),
		activity.Of(activity.Complete),
	}
	for i := 1; i <= activity.MaxIdleStage; i++ {
		states = append(states, activity.IdleAt(i))
	}
	for _, st := range states {
		hex := p.For(st)
		swatch := out.String("      ").Background(out.Color(hex))
		fmt.Fprintf(w, "%s %-11s %s\n", swatch, st, hex)
	}
}
