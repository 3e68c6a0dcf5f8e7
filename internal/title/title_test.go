package title

import (
	"regexp"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/config"
	"github.com/martinwickman/tavs/internal/faces"
)

func composer(t *testing.T, overrides map[string]string) Composer {
	t.Helper()
	s, err := config.Load(config.Options{Env: map[string]string{}, Home: t.TempDir(), Overrides: overrides})
	require.NoError(t, err)
	tbl, err := faces.Builtin()
	require.NoError(t, err)
	return Composer{Settings: s, Faces: tbl}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		state     activity.State
		base      string
		want      string
	}{
		{
			name:  "face before icon by default",
			state: activity.Of(activity.Processing),
			base:  "proj",
			want:  "Ǝ[•-•]E 🟠 proj",
		},
		{
			name:      "after puts the icon first",
			overrides: map[string]string{"FACE_POSITION": "after"},
			state:     activity.Of(activity.Permission),
			base:      "proj",
			want:      "🔴 Ǝ[°□°]E proj",
		},
		{
			name:      "after leaves a template without an icon alone",
			overrides: map[string]string{"FACE_POSITION": "after", "TAVS_TITLE_FORMAT": "{FACE} {BASE}"},
			state:     activity.Of(activity.Complete),
			base:      "proj",
			want:      "Ǝ[^‿^]E proj",
		},
		{
			name:      "after leaves a template without a face alone",
			overrides: map[string]string{"FACE_POSITION": "after", "TAVS_TITLE_FORMAT": "{STATUS_ICON} {BASE}"},
			state:     activity.Of(activity.Complete),
			base:      "proj",
			want:      "🟢 proj",
		},
		{
			name:      "unknown agent uses fallback faces",
			overrides: map[string]string{"TAVS_AGENT": "mystery"},
			state:     activity.Of(activity.Complete),
			base:      "x",
			want:      "(^‿^) 🟢 x",
		},
		{
			name:      "disabled anthropomorphising drops the face",
			overrides: map[string]string{"ENABLE_ANTHROPOMORPHISING": "false"},
			state:     activity.Of(activity.Complete),
			base:      "x",
			want:      "🟢 x",
		},
		{
			name:  "no state means no face and no icon",
			state: activity.State{},
			base:  "x",
			want:  "x",
		},
		{
			name:      "empty icon still shows the face",
			overrides: map[string]string{"STATUS_ICON_COMPLETE": " "},
			state:     activity.Of(activity.Complete),
			base:      "x",
			want:      "Ǝ[^‿^]E x",
		},
		{
			name:  "idle stages use their own face and the idle icon",
			state: activity.IdleAt(4),
			base:  "x",
			want:  "Ǝ[-.-]Ezzᶻ 🟣 x",
		},
		{
			name:  "reset has a face but no icon",
			state: activity.Of(activity.Reset),
			base:  "x",
			want:  "Ǝ[-_-]E x",
		},
		{
			name:      "base is never expanded",
			overrides: map[string]string{"TAVS_AGENT": "gemini"},
			state:     activity.Of(activity.Compacting),
			base:      "{FACE} literal",
			want:      "ʕ@ᴥ@ʔ 🔄 {FACE} literal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := composer(t, tt.overrides)
			require.Equal(t, tt.want, c.Compose(tt.state, tt.base, Extras{}))
		})
	}
}

func TestComposeExtras(t *testing.T) {
	t.Run("spinner face replaces the table face", func(t *testing.T) {
		c := composer(t, nil)
		got := c.Compose(activity.Of(activity.Processing), "x", Extras{Face: "Ǝ[⠋ ⠙]E"})
		require.Equal(t, "Ǝ[⠋ ⠙]E 🟠 x", got)
	})

	t.Run("agent overrides the configured agent", func(t *testing.T) {
		c := composer(t, nil)
		got := c.Compose(activity.Of(activity.Complete), "x", Extras{Agent: "gemini"})
		require.Equal(t, "ʕ^ᴥ^ʔ 🟢 x", got)
	})

	t.Run("agent count shows only for more than one", func(t *testing.T) {
		c := composer(t, nil)
		require.Equal(t, "Ǝ[•-•]E 🟠 ×3 x", c.Compose(activity.Of(activity.Processing), "x", Extras{Agents: 3}))
		require.Equal(t, "Ǝ[•-•]E 🟠 x", c.Compose(activity.Of(activity.Processing), "x", Extras{Agents: 1}))
	})

	t.Run("session icon needs the setting", func(t *testing.T) {
		off := composer(t, nil)
		on := composer(t, map[string]string{"TAVS_SESSION_ICONS": "true"})
		x := Extras{SessionID: "a1b2c3d4"}
		require.NotContains(t, off.Compose(activity.Of(activity.Complete), "x", x), SessionIcon("a1b2c3d4"))
		require.Contains(t, on.Compose(activity.Of(activity.Complete), "x", x), SessionIcon("a1b2c3d4"))
	})
}

func TestComposeIsIdempotent(t *testing.T) {
	c := composer(t, nil)
	c.Pick = func(n int) int { t.Fatal("pick must not be used for static faces"); return 0 }
	first := c.Compose(activity.Of(activity.Processing), "x", Extras{})
	for range 5 {
		require.Equal(t, first, c.Compose(activity.Of(activity.Processing), "x", Extras{}))
	}
}

func TestComposeRandomFaces(t *testing.T) {
	c := composer(t, map[string]string{"TAVS_FACE_MODE": "random"})
	c.Pick = func(n int) int { return n - 1 }
	require.Equal(t, "Ǝ[•ᴗ•]E 🟠 x", c.Compose(activity.Of(activity.Processing), "x", Extras{}))
}

func TestComposeTruncates(t *testing.T) {
	c := composer(t, map[string]string{"TAVS_TITLE_MAX_WIDTH": "12"})
	got := c.Compose(activity.Of(activity.Processing), "a very long project title", Extras{})
	require.LessOrEqual(t, runewidth.StringWidth(got), 12)
	require.True(t, strings.HasSuffix(got, "…"), got)
}

func TestComposeNormalizesNFC(t *testing.T) {
	c := composer(t, map[string]string{"ENABLE_ANTHROPOMORPHISING": "false"})
	got := c.Compose(activity.State{}, "cafe\u0301", Extras{})
	require.Equal(t, "caf\u00e9", got)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		values map[string]string
		want   string
	}{
		{"all present", "{A} {B}", map[string]string{"A": "1", "B": "2"}, "1 2"},
		{"empty placeholder collapses", "{A}  {B}   {C}", map[string]string{"A": "1", "C": "3"}, "1 3"},
		{"unknown placeholder vanishes", "{NOPE} x", nil, "x"},
		{"leading and trailing space trimmed", "  {A}  ", map[string]string{"A": "1"}, "1"},
		{"values keep their own spacing", "{A}", map[string]string{"A": "a  b"}, "a  b"},
		{"values are not rescanned", "{A}", map[string]string{"A": "{B}", "B": "no"}, "{B}"},
		{"stray brace is literal", "a { b", nil, "a { b"},
		{"non-name braces are literal", "{a b}", nil, "{a b}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Render(tt.tmpl, tt.values))
		})
	}
}

func TestFallback(t *testing.T) {
	home := "/home/u"
	id := "a1b2c3d4"
	tests := []struct {
		name string
		mode string
		cwd  string
		want string
	}{
		{"path", "path", "/home/u/src/app", "~/src/app"},
		{"session", "session", "/home/u", id},
		{"path then session", "path-session", "/tmp", "/tmp " + id},
		{"session then path", "session-path", "/home/u", id + " ~"},
		{"no cwd", "path", "", DefaultTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Fallback(tt.mode, tt.cwd, home, id))
		})
	}

	t.Run("never empty", func(t *testing.T) {
		for _, mode := range []string{"path", "session", "path-session", "session-path", "bogus"} {
			require.NotEmpty(t, Fallback(mode, "", "", ""))
		}
	})

	t.Run("session-path carries the id", func(t *testing.T) {
		got := Fallback("session-path", "/srv", "", id)
		require.Regexp(t, regexp.MustCompile(`[0-9a-f]{8}`), got)
	})
}

func TestBase(t *testing.T) {
	require.Equal(t, "mine", Base("mine", "path", "/tmp", "", ""))
	require.Equal(t, "/tmp", Base("", "path", "/tmp", "", ""))
}

func TestShortCwd(t *testing.T) {
	tests := []struct {
		cwd, want string
	}{
		{"/home/u", "~"},
		{"/home/u/a", "~/a"},
		{"/home/u/a/b/c", "~/a/b/c"},
		{"/home/u/a/b/c/d", "~/…/c/d"},
		{"/home/user2/x", "/home/user2/x"},
		{"/usr/local/share/doc/x", "/…/doc/x"},
		{"/", "/"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortCwd(tt.cwd, "/home/u"); got != tt.want {
			t.Errorf("ShortCwd(%q) = %q, want %q", tt.cwd, got, tt.want)
		}
	}
}

func TestSessionIcon(t *testing.T) {
	require.Empty(t, SessionIcon(""))
	require.Equal(t, SessionIcon("a1b2c3d4"), SessionIcon("a1b2c3d4"))
	require.NotEmpty(t, SessionIcon("deadbeef"))
}
