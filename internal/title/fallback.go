package title

import (
	"path/filepath"
	"strings"
)

// DefaultTitle is used when nothing better is known.
const DefaultTitle = "Terminal"

// Base returns the title to decorate: the remembered user title, or the
// fallback built from mode.
func Base(userTitle, mode, cwd, home, sessionID string) string {
	if userTitle != "" {
		return userTitle
	}
	return Fallback(mode, cwd, home, sessionID)
}

// Fallback builds a title from the working directory and session id.
// It never returns "".
func Fallback(mode, cwd, home, sessionID string) string {
	path := ShortCwd(cwd, home)
	var parts []string
	switch mode {
	case "session":
		parts = []string{sessionID}
	case "path-session":
		parts = []string{path, sessionID}
	case "session-path":
		parts = []string{sessionID, path}
	default:
		parts = []string{path}
	}

	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return DefaultTitle
	}
	return strings.Join(kept, " ")
}

// ShortCwd abbreviates the home directory to ~ and elides the middle of
// paths deeper than three components: ~/…/b/c.
func ShortCwd(cwd, home string) string {
	if cwd == "" {
		return ""
	}
	p := filepath.Clean(cwd)
	if home != "" {
		home = filepath.Clean(home)
		if p == home {
			return "~"
		}
		if rest, ok := strings.CutPrefix(p, home+"/"); ok {
			p = "~/" + rest
		}
	}
	parts := strings.Split(p, "/")
	if len(parts) <= 4 {
		return p
	}
	return parts[0] + "/…/" + strings.Join(parts[len(parts)-2:], "/")
}
