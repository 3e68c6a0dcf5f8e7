package spinner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martinwickman/tavs/internal/faces"
)

func positions(st State, ticks int) [][2]int {
	var out [][2]int
	for range ticks {
		st = st.Advance()
		out = append(out, [2]int{st.Left, st.Right})
	}
	return out
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name string
		mode EyeMode
		want [][2]int
	}{
		{"sync moves both eyes together", Sync, [][2]int{{1, 1}, {2, 2}, {3, 3}, {0, 0}}},
		{"opposite moves the right eye backwards", Opposite, [][2]int{{1, 3}, {2, 2}, {3, 1}, {0, 0}}},
		{"stagger keeps half a cycle apart", Stagger, [][2]int{{1, 3}, {2, 0}, {3, 1}, {0, 2}}},
		{"clockwise alternates eyes forward", Clockwise, [][2]int{{1, 0}, {1, 1}, {2, 1}, {2, 2}}},
		{"counter alternates eyes backward", Counter, [][2]int{{3, 0}, {3, 3}, {2, 3}, {2, 2}}},
		{"mirror reflects around zero", Mirror, [][2]int{{1, 3}, {2, 2}, {3, 1}, {0, 0}}},
		{"mirror_inv reflects around the end", MirrorInv, [][2]int{{1, 2}, {2, 1}, {3, 0}, {0, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, positions(New(Circle, tt.mode), 4))
		})
	}
}

func TestAdvanceCountsTicks(t *testing.T) {
	st := New(Braille, Sync)
	for range 12 {
		st = st.Advance()
	}
	require.Equal(t, 12, st.Tick)
	require.Equal(t, 2, st.Left)
}

func TestEyes(t *testing.T) {
	t.Run("none falls back to the face", func(t *testing.T) {
		_, _, ok := New(None, Sync).Eyes()
		require.False(t, ok)
	})

	t.Run("braille yields braille glyphs", func(t *testing.T) {
		st := New(Braille, Stagger)
		l, r, ok := st.Eyes()
		require.True(t, ok)
		require.Equal(t, "⠋", l)
		require.Equal(t, "⠴", r)
	})

	t.Run("out of range indices wrap", func(t *testing.T) {
		l, r, ok := State{Style: Block, Left: 5, Right: -1}.Eyes()
		require.True(t, ok)
		require.Equal(t, "▘", l)
		require.Equal(t, "▗", r)
	})
}

func TestParse(t *testing.T) {
	require.Equal(t, Braille, ParseStyle(" Braille "))
	require.Equal(t, EyeAnimate, ParseStyle("eye-animate"))
	require.Equal(t, None, ParseStyle("sparkles"))
	require.Equal(t, MirrorInv, ParseEyeMode("mirror_inv"))
	require.Equal(t, Sync, ParseEyeMode(""))
}

func TestIdentity(t *testing.T) {
	s1, m1 := Identity("a1b2c3d4")
	s2, m2 := Identity("a1b2c3d4")
	require.Equal(t, s1, s2)
	require.Equal(t, m1, m2)
	require.NotEqual(t, None, s1)

	styles := map[Style]bool{}
	for _, id := range []string{"00000001", "00000002", "00000003", "00000004", "0000000a", "0000000b", "deadbeef", "cafebabe"} {
		s, _ := Identity(id)
		styles[s] = true
	}
	require.Greater(t, len(styles), 1, "different sessions should not all share one style")
}

func TestConfigure(t *testing.T) {
	require.Equal(t, New(Circle, Mirror), Configure("circle", "mirror", false, "a1b2c3d4"))
	s, m := Identity("a1b2c3d4")
	require.Equal(t, New(s, m), Configure("none", "sync", true, "a1b2c3d4"))
}

func TestConfigureRandom(t *testing.T) {
	t.Run("random picks a style and a mode", func(t *testing.T) {
		last := func(n int) int { return n - 1 }
		require.Equal(t, New(EyeAnimate, MirrorInv), configure("random", "Random", false, "", last))
	})

	t.Run("random always animates", func(t *testing.T) {
		for range 20 {
			st := Configure("random", "random", false, "abcd1234").Advance()
			require.Contains(t, Styles, st.Style)
			require.Contains(t, EyeModes, st.EyeMode)
			_, _, ok := st.Eyes()
			require.True(t, ok)
		}
	})

	t.Run("identity wins over random", func(t *testing.T) {
		s, m := Identity("a1b2c3d4")
		require.Equal(t, New(s, m), Configure("random", "random", true, "a1b2c3d4"))
	})
}

func TestFace(t *testing.T) {
	tbl, err := faces.Builtin()
	require.NoError(t, err)

	require.Equal(t, "ʕ◐ᴥ◐ʔ", New(Circle, Sync).Face(tbl, "gemini"))
	require.Equal(t, "Ǝ[◓ ◓]E", New(Circle, Sync).Advance().Face(tbl, "claude"))
	require.Equal(t, "(◐‿◐)", New(Circle, Sync).Face(tbl, "no-such-agent"))
	require.Empty(t, New(None, Sync).Face(tbl, "claude"))
	require.Empty(t, New(Circle, Sync).Face(nil, "claude"))
}

func TestStore(t *testing.T) {
	store := Store{Dir: t.TempDir()}

	t.Run("missing state is not ok", func(t *testing.T) {
		_, ok, err := store.Load("k")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("round trip", func(t *testing.T) {
		want := State{Style: Braille, EyeMode: Opposite, Left: 3, Right: 7, Tick: 11, Stage: 2}
		require.NoError(t, store.Save("k", want))
		got, ok, err := store.Load("k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, got)
	})

	t.Run("corrupt indices read as zero", func(t *testing.T) {
		require.NoError(t, os.WriteFile(store.Path("bad"), []byte("STYLE=circle\nLEFT_INDEX=-4\nRIGHT_INDEX=abc\n"), 0600))
		got, ok, err := store.Load("bad")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, State{Style: Circle, EyeMode: Sync}, got)
	})

	t.Run("reset removes the file", func(t *testing.T) {
		require.NoError(t, store.Reset("k"))
		_, ok, _ := store.Load("k")
		require.False(t, ok)
		require.NoError(t, store.Reset("k"))
	})
}
