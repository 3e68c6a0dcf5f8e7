package color

import (
	"errors"
	"fmt"
)

// StageColorSet holds one background tint per core activity state.
type StageColorSet struct {
	Processing string
	Permission string
	Complete   string
	Idle       string
	Compacting string
}

// Slice returns the tints in the canonical order processing, permission,
// complete, idle, compacting.
func (s StageColorSet) Slice() [5]string {
	return [5]string{s.Processing, s.Permission, s.Complete, s.Idle, s.Compacting}
}

type stateOffset struct {
	hue       int // target hue in degrees
	lightness int // thousandths, applied away from the base's own extreme
}

var stateOffsets = [5]stateOffset{
	{hue: 30, lightness: 40},  // processing: amber
	{hue: 0, lightness: 50},   // permission: red
	{hue: 120, lightness: 30}, // complete: green
	{hue: 270, lightness: 20}, // idle: violet
	{hue: 180, lightness: 30}, // compacting: teal
}

const (
	minStateSaturation = 250
	maxStateSaturation = 600
)

// CalculateStateColors derives the five state tints from a single base color.
// Each tint takes a fixed hue, at least a quarter saturation, and the base's
// lightness nudged toward the middle: lighter on dark bases, darker on light
// ones. Malformed input yields a set of black tints and ErrFormat.
func CalculateStateColors(base string) (StageColorSet, error) {
	c, err := HexToRGB(base)
	if err != nil {
		return StageColorSet{black, black, black, black, black}, err
	}
	hsl := c.HSL()
	sign := 1
	if !c.IsDark() {
		sign = -1
	}

	var out [5]string
	for i, off := range stateOffsets {
		out[i] = HSL{
			H: off.hue * 1000,
			S: clamp(hsl.S, minStateSaturation, maxStateSaturation),
			L: clamp(hsl.L+sign*off.lightness, 0, unitScale),
		}.RGB().Hex()
	}
	return StageColorSet{out[0], out[1], out[2], out[3], out[4]}, nil
}

// SelfTest checks the documented conversion properties and returns every
// violation found, joined, or nil.
func SelfTest() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	for _, hex := range []string{"#000000", "#FFFFFF", "#FF0000", "#00FF00", "#0000FF", "#473D2F", "#2E3440"} {
		c, err := HexToRGB(hex)
		check(err == nil && c.Hex() == hex, "hex round trip of %s gave %s", hex, c.Hex())
	}
	for r := 0; r < 256; r += 51 {
		for g := 0; g < 256; g += 51 {
			for b := 0; b < 256; b += 51 {
				back := RGBToHSL(r, g, b).RGB()
				d := sq(back.R-r) + sq(back.G-g) + sq(back.B-b)
				check(d < 30, "hsl round trip of (%d,%d,%d) drifted by %d", r, g, b, d)
			}
		}
	}
	check(RGBToHSL(255, 0, 0) == HSL{0, 1000, 500}, "red is not (0,1000,500)")
	check(RGBToHSL(0, 255, 0).H == 120000, "green hue is not 120000")
	check(RGBToHSL(0, 0, 255).H == 240000, "blue hue is not 240000")
	check(IsDarkColor("#000000") && IsDarkColor("#FF0000"), "black and red must be dark")
	check(!IsDarkColor("#FFFFFF") && !IsDarkColor("#00FF00"), "white and green must be light")
	mid, _ := InterpolateColor("#000000", "#FFFFFF", 500)
	c, _ := HexToRGB(mid)
	check(c.R >= 126 && c.R <= 128, "black/white midpoint is %s", mid)

	return errors.Join(errs...)
}

func sq(v int) int { return v * v }
