// Package title composes decorated window titles from a format template.
package title

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"github.com/martinwickman/tavs/internal/activity"
	"github.com/martinwickman/tavs/internal/config"
	"github.com/martinwickman/tavs/internal/faces"
)

// Placeholders understood by the template. {EMOJI} is an older spelling of
// {STATUS_ICON}.
const (
	PhFace        = "FACE"
	PhStatusIcon  = "STATUS_ICON"
	PhEmoji       = "EMOJI"
	PhAgents      = "AGENTS"
	PhSessionIcon = "SESSION_ICON"
	PhBase        = "BASE"
)

// Extras carries per-call inputs that are not part of the settings.
type Extras struct {
	// Face replaces the table face, e.g. with an animated spinner frame.
	Face      string
	// Agent overrides the configured agent when choosing a face.
	Agent     string
	Agents    int
	SessionID string
}

// Composer builds titles. Pick chooses among several candidate faces when
// random faces are enabled; it is never consulted otherwise.
type Composer struct {
	Settings *config.Settings
	Faces    *faces.Table
	Pick     func(n int) int
}

// Face resolves the face for a state, or "" when faces are off or the state
// is not a real one.
func (c Composer) Face(st activity.State) string {
	return c.faceFor(c.Settings.Agent, st)
}

func (c Composer) faceFor(agent string, st activity.State) string {
	if !c.Settings.Anthropomorphise || !st.Valid() || c.Faces == nil {
		return ""
	}
	var pick func(int) int
	if c.Settings.RandomFaces {
		pick = c.Pick
	}
	return c.Faces.Face(agent, st.FaceKey(), pick)
}

// Compose renders the configured template for st around base.
func (c Composer) Compose(st activity.State, base string, x Extras) string {
	agent := x.Agent
	if agent == "" {
		agent = c.Settings.Agent
	}
	face := x.Face
	if face == "" {
		face = c.faceFor(agent, st)
	} else if !c.Settings.Anthropomorphise || !st.Valid() {
		face = ""
	}

	icon := ""
	if st.Valid() {
		icon = strings.TrimSpace(c.Settings.StatusIcon(st))
	}

	agents := ""
	if x.Agents > 1 {
		agents = fmt.Sprintf("×%d", x.Agents)
	}
	sessionIcon := ""
	if c.Settings.SessionIcons {
		sessionIcon = SessionIcon(x.SessionID)
	}

	values := map[string]string{
		PhFace:        face,
		PhStatusIcon:  icon,
		PhEmoji:       icon,
		PhAgents:      agents,
		PhSessionIcon: sessionIcon,
		PhBase:        base,
	}
	tmpl := c.Settings.TitleFormat
	if first, both := faceFirst(tmpl); both && first != (c.Settings.FacePosition == "before") {
		values[PhFace], values[PhStatusIcon], values[PhEmoji] = icon, face, face
	}

	out := norm.NFC.String(Render(tmpl, values))
	if w := c.Settings.TitleMaxWidth; w > 0 && runewidth.StringWidth(out) > w {
		out = runewidth.Truncate(out, w, "…")
	}
	return out
}

// faceFirst reports whether the template places {FACE} ahead of the status
// icon. both is false when the template lacks either placeholder, in which
// case there is nothing to reorder.
func faceFirst(tmpl string) (first, both bool) {
	f := strings.Index(tmpl, "{"+PhFace+"}")
	i := strings.Index(tmpl, "{"+PhStatusIcon+"}")
	if i < 0 {
		i = strings.Index(tmpl, "{"+PhEmoji+"}")
	}
	if f < 0 || i < 0 {
		return false, false
	}
	return f < i, true
}

// Render substitutes {NAME} placeholders in one pass. Unknown or empty
// placeholders vanish along with the whitespace that separated them, runs
// of literal whitespace collapse to one space, and values are inserted
// verbatim and never rescanned.
func Render(tmpl string, values map[string]string) string {
	var b strings.Builder
	space := false
	flush := func() {
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
	}

	for i := 0; i < len(tmpl); {
		if tmpl[i] == '{' {
			if end := strings.IndexByte(tmpl[i+1:], '}'); end >= 0 && isName(tmpl[i+1:i+1+end]) {
				if v := values[tmpl[i+1:i+1+end]]; v != "" {
					flush()
					b.WriteString(v)
				}
				i += end + 2
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(tmpl[i:])
		if unicode.IsSpace(r) {
			space = true
		} else {
			flush()
			b.WriteString(tmpl[i : i+size])
		}
		i += size
	}
	return b.String()
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
			return false
		}
	}
	return true
}

var sessionIcons = []string{
	"🦊", "🐙", "🦉", "🐝", "🦋", "🐢", "🦔", "🐳",
	"🦜", "🐞", "🦀", "🐧", "🦩", "🐌", "🦦", "🐿",
}

// SessionIcon maps a session id to a stable emoji. An empty id has none.
func SessionIcon(id string) string {
	if id == "" {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return sessionIcons[h.Sum32()%uint32(len(sessionIcons))]
}
