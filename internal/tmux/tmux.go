// Package tmux handles running inside a tmux pane: detecting it and
// forwarding color sequences to the outer terminal.
package tmux

import "strings"

// Available reports whether the environment belongs to a tmux client.
func Available(env map[string]string) bool {
	return env["TMUX"] != "" || env["TMUX_PANE"] != ""
}

// Wrap encloses seq in a DCS passthrough so tmux forwards it to the outer
// terminal untouched. Every ESC inside seq is doubled. Passthrough requires
// "set -g allow-passthrough on" in tmux 3.3 and later.
func Wrap(seq string) string {
	return "\x1bPtmux;" + strings.ReplaceAll(seq, "\x1b", "\x1b\x1b") + "\x1b\\"
}
