package color

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"
)

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want RGB
	}{
		{"six digits with hash", "#FF8000", RGB{255, 128, 0}},
		{"six digits without hash", "00ff80", RGB{0, 255, 128}},
		{"lowercase", "#abcdef", RGB{0xAB, 0xCD, 0xEF}},
		{"three digits expand by duplication", "#fff", RGB{255, 255, 255}},
		{"three digits without hash", "000", RGB{0, 0, 0}},
		{"mixed short form", "#1a2", RGB{0x11, 0xAA, 0x22}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HexToRGB(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHexToRGBMalformed(t *testing.T) {
	for _, in := range []string{"", "#", "#12", "#1234", "#GGGGGG", "zzz", "#12345", "#1234567", "+12345"} {
		t.Run("input "+in+" should return black with a format error", func(t *testing.T) {
			got, err := HexToRGB(in)
			require.True(t, errors.Is(err, ErrFormat))
			require.Equal(t, RGB{}, got)
		})
	}
}

func TestRGBToHex(t *testing.T) {
	require.Equal(t, "#FF8000", RGBToHex(255, 128, 0))
	require.Equal(t, "#000000", RGBToHex(0, 0, 0))
	require.Equal(t, "#00FF80", RGBToHex(-10, 300, 128), "channels should be clamped")
}

func TestHexRoundTrip(t *testing.T) {
	for _, hex := range []string{"#000000", "#ffffff", "#FF0000", "#473d2f", "#4A2021", "#2B4532", "#3B2D4A", "#2b4645"} {
		c, err := HexToRGB(hex)
		require.NoError(t, err)
		require.Equal(t, strings.ToUpper(hex), c.Hex())
	}
}

func TestRGBToHSLPrimaries(t *testing.T) {
	require.Equal(t, HSL{0, 1000, 500}, RGBToHSL(255, 0, 0))
	require.Equal(t, 120000, RGBToHSL(0, 255, 0).H)
	require.Equal(t, 240000, RGBToHSL(0, 0, 255).H)

	t.Run("achromatic colors have zero saturation", func(t *testing.T) {
		require.Equal(t, HSL{0, 0, 0}, RGBToHSL(0, 0, 0))
		require.Equal(t, HSL{0, 0, 1000}, RGBToHSL(255, 255, 255))
		gray := RGBToHSL(128, 128, 128)
		require.Zero(t, gray.S)
		require.InDelta(t, 500, gray.L, 10)
	})
}

func TestHSLToRGB(t *testing.T) {
	require.Equal(t, RGB{0, 0, 0}, HSLToRGB(0, 0, 0))
	require.Equal(t, RGB{255, 255, 255}, HSLToRGB(0, 0, 1000))
	require.Equal(t, RGB{255, 0, 0}, HSLToRGB(0, 1000, 500))
	require.Equal(t, RGB{0, 255, 0}, HSLToRGB(120000, 1000, 500))
	require.Equal(t, RGB{0, 0, 255}, HSLToRGB(240000, 1000, 500))
	require.Equal(t, HSLToRGB(30000, 500, 400), HSLToRGB(390000, 500, 400), "hue should wrap")
}

func TestHSLRoundTripBound(t *testing.T) {
	for r := 0; r < 256; r += 15 {
		for g := 0; g < 256; g += 15 {
			for b := 0; b < 256; b += 15 {
				back := RGBToHSL(r, g, b).RGB()
				d := sq(back.R-r) + sq(back.G-g) + sq(back.B-b)
				if d >= 30 {
					t.Fatalf("(%d,%d,%d) -> %v drifted by %d", r, g, b, back, d)
				}
			}
		}
	}
}

// The float conversion in go-colorful is the reference the fixed-point
// version is held against.
func TestRGBToHSLMatchesFloatReference(t *testing.T) {
	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 17 {
			for b := 0; b < 256; b += 17 {
				got := RGBToHSL(r, g, b)
				h, s, l := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsl()

				require.InDelta(t, l*1000, float64(got.L), 1.5, "lightness of (%d,%d,%d)", r, g, b)
				require.InDelta(t, s*1000, float64(got.S), 1.5, "saturation of (%d,%d,%d)", r, g, b)
				if got.S == 0 {
					continue
				}
				dh := math.Abs(h*1000 - float64(got.H))
				dh = math.Min(dh, 360000-dh)
				require.LessOrEqual(t, dh, 1.0, "hue of (%d,%d,%d)", r, g, b)
			}
		}
	}
}

func TestIsDarkColor(t *testing.T) {
	tests := []struct {
		hex  string
		want bool
	}{
		{"#000000", true},
		{"#FFFFFF", false},
		{"#FF0000", true},
		{"#00FF00", false},
		{"#0000FF", true},
		{"#808080", false},
		{"#473D2F", true},
		{"not a color", true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, IsDarkColor(tt.hex), tt.hex)
	}
}

func TestShiftHue(t *testing.T) {
	t.Run("red shifted by 120 becomes green", func(t *testing.T) {
		got, err := ShiftHue("#FF0000", 120)
		require.NoError(t, err)
		require.Equal(t, "#00FF00", got)
	})

	t.Run("negative shifts wrap around", func(t *testing.T) {
		got, err := ShiftHue("#00FF00", -480)
		require.NoError(t, err)
		require.Equal(t, "#FF0000", got)
	})

	t.Run("lightness is preserved", func(t *testing.T) {
		base, _ := HexToRGB("#473D2F")
		got, err := ShiftHue("#473D2F", 200)
		require.NoError(t, err)
		shifted, _ := HexToRGB(got)
		require.InDelta(t, base.HSL().L, shifted.HSL().L, 5)
		require.InDelta(t, base.HSL().S, shifted.HSL().S, 15)
	})

	t.Run("malformed input returns black", func(t *testing.T) {
		got, err := ShiftHue("#XYZ", 10)
		require.ErrorIs(t, err, ErrFormat)
		require.Equal(t, "#000000", got)
	})
}

func TestInterpolateColor(t *testing.T) {
	a, b := "#102030", "#F0E0D0"

	got, err := InterpolateColor(a, b, 0)
	require.NoError(t, err)
	require.Equal(t, a, got)

	got, err = InterpolateColor(a, b, 1000)
	require.NoError(t, err)
	require.Equal(t, b, got)

	mid, err := InterpolateColor("#000000", "#FFFFFF", 500)
	require.NoError(t, err)
	c, _ := HexToRGB(mid)
	for _, ch := range []int{c.R, c.G, c.B} {
		require.GreaterOrEqual(t, ch, 126)
		require.LessOrEqual(t, ch, 128)
	}

	t.Run("out of range t is clamped", func(t *testing.T) {
		got, _ := InterpolateColor(a, b, 5000)
		require.Equal(t, b, got)
		got, _ = InterpolateColor(a, b, -5)
		require.Equal(t, a, got)
	})
}

func TestInterpolateHSL(t *testing.T) {
	t.Run("endpoints are returned unchanged", func(t *testing.T) {
		got, err := InterpolateHSL("#FF0000", "#0000FF", 0)
		require.NoError(t, err)
		require.Equal(t, "#FF0000", got)
		got, err = InterpolateHSL("#FF0000", "#0000FF", 1000)
		require.NoError(t, err)
		require.Equal(t, "#0000FF", got)
	})

	t.Run("hue takes the shorter arc", func(t *testing.T) {
		// red (0) to blue (240) should pass through magenta (300), not green.
		got, err := InterpolateHSL("#FF0000", "#0000FF", 500)
		require.NoError(t, err)
		c, _ := HexToRGB(got)
		require.Equal(t, 300000, c.HSL().H)
	})

	t.Run("gray endpoint borrows the other hue", func(t *testing.T) {
		got, err := InterpolateHSL("#808080", "#FF0000", 500)
		require.NoError(t, err)
		c, _ := HexToRGB(got)
		require.Equal(t, 0, c.HSL().H)
		require.Greater(t, c.R, c.G)
	})
}

func TestAdjustLightnessAndSaturation(t *testing.T) {
	got, err := AdjustLightness("#FF0000", 1000)
	require.NoError(t, err)
	require.Equal(t, "#FFFFFF", got)

	got, err = AdjustLightness("#FF0000", -1000)
	require.NoError(t, err)
	require.Equal(t, "#000000", got)

	got, err = AdjustSaturation("#FF0000", -1000)
	require.NoError(t, err)
	c, _ := HexToRGB(got)
	require.Equal(t, c.R, c.G)
	require.Equal(t, c.G, c.B)

	_, err = AdjustSaturation("bogus", 10)
	require.ErrorIs(t, err, ErrFormat)
}

func TestCalculateStateColors(t *testing.T) {
	t.Run("dark base produces dark tints with the state hues", func(t *testing.T) {
		set, err := CalculateStateColors("#2E3440")
		require.NoError(t, err)
		wantHues := []int{30000, 0, 120000, 270000, 180000}
		for i, hex := range set.Slice() {
			c, err := HexToRGB(hex)
			require.NoError(t, err)
			require.True(t, c.IsDark(), "tint %d (%s) should stay dark", i, hex)
			require.InDelta(t, wantHues[i], c.HSL().H, 3000, "tint %d (%s)", i, hex)
		}
	})

	t.Run("light base produces light tints", func(t *testing.T) {
		set, err := CalculateStateColors("#ECEFF4")
		require.NoError(t, err)
		for _, hex := range set.Slice() {
			require.False(t, IsDarkColor(hex), hex)
		}
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		a, _ := CalculateStateColors("#1E1E2E")
		b, _ := CalculateStateColors("#1e1e2e")
		require.Equal(t, a, b)
	})

	t.Run("malformed base reports a format error", func(t *testing.T) {
		set, err := CalculateStateColors("nope")
		require.ErrorIs(t, err, ErrFormat)
		require.Equal(t, "#000000", set.Processing)
	})
}

func TestSelfTest(t *testing.T) {
	require.NoError(t, SelfTest())
}
