package tmux

import "testing"

func TestAvailable(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"empty env", map[string]string{}, false},
		{"TMUX socket set", map[string]string{"TMUX": "/tmp/tmux-1000/default,123,0"}, true},
		{"pane id only", map[string]string{"TMUX_PANE": "%3"}, true},
		{"empty values", map[string]string{"TMUX": "", "TMUX_PANE": ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Available(tt.env); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	got := Wrap("\x1b]11;#112233\x1b\\")
	want := "\x1bPtmux;\x1b\x1b]11;#112233\x1b\x1b\\\x1b\\"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
