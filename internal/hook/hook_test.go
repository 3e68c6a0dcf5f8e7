package hook

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/martinwickman/tavs/internal/trigger"
)

func TestMapEvent(t *testing.T) {
	tests := []struct {
		name       string
		event      string
		toolDetail string
		notifType  string
		title      string
		message    string
		wantState  string
		wantDetail string
	}{
		{"SessionStart", "SessionStart", "", "", "", "", "reset", "Session started"},
		{"UserPromptSubmit", "UserPromptSubmit", "", "", "", "", "processing", "Processing prompt..."},
		{"PreToolUse", "PreToolUse", "Edit main.go", "", "", "", "processing", "Edit main.go"},
		{"PostToolUse", "PostToolUse", "Finished Bash, continuing...", "", "", "", "processing", "Finished Bash, continuing..."},
		{"Notification with title", "Notification", "", "permission_prompt", "Allow Edit?", "", "permission", "Allow Edit?"},
		{"Notification with message only", "Notification", "", "permission_prompt", "", "Claude wants to edit", "permission", "Claude wants to edit"},
		{"Notification no title or message", "Notification", "", "permission_prompt", "", "", "permission", "Awaiting response"},
		{"Notification elicitation_dialog", "Notification", "", "elicitation_dialog", "Pick an option", "", "permission", "Pick an option"},
		{"Notification idle_prompt is ignored", "Notification", "", "idle_prompt", "", "waiting", "", ""},
		{"PreCompact", "PreCompact", "", "", "", "", "compacting", "Compacting context"},
		{"Stop", "Stop", "", "", "", "", "complete", "Finished responding"},
		{"UnknownEvent", "UnknownEvent", "", "", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, detail := mapEvent(tt.event, tt.toolDetail, tt.notifType, tt.title, tt.message)
			if state != tt.wantState {
				t.Errorf("state = %q, want %q", state, tt.wantState)
			}
			if detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", detail, tt.wantDetail)
			}
		})
	}
}

func TestBuildToolDetail(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		toolName string
		input    any
		want     string
	}{
		{
			name:  "empty tool name",
			event: "PreToolUse", toolName: "", input: nil,
			want: "",
		},
		{
			name:  "PostToolUse returns finished message",
			event: "PostToolUse", toolName: "Bash", input: nil,
			want: "Finished Bash, continuing...",
		},
		{
			name:  "Bash with command",
			event: "PreToolUse", toolName: "Bash",
			input: map[string]any{"command": "npm test"},
			want:  "Bash: npm test",
		},
		{
			name:  "Bash command truncated at 80 chars",
			event: "PreToolUse", toolName: "Bash",
			input: map[string]any{"command": strings.Repeat("x", 100)},
			want:  "Bash: " + strings.Repeat("x", 80),
		},
		{
			name:  "Bash command truncation keeps whole characters",
			event: "PreToolUse", toolName: "Bash",
			input: map[string]any{"command": "echo " + strings.Repeat("é", 100)},
			want:  "Bash: echo " + strings.Repeat("é", 75),
		},
		{
			name:  "Bash command truncation counts wide characters twice",
			event: "PreToolUse", toolName: "Bash",
			input: map[string]any{"command": strings.Repeat("漢", 50)},
			want:  "Bash: " + strings.Repeat("漢", 40),
		},
		{
			name:  "Edit with file_path",
			event: "PreToolUse", toolName: "Edit",
			input: map[string]any{"file_path": "/home/user/project/src/main.go"},
			want:  "Edit main.go",
		},
		{
			name:  "Write without file_path",
			event: "PreToolUse", toolName: "Write",
			input: map[string]any{},
			want:  "Write",
		},
		{
			name:  "Grep with pattern",
			event: "PreToolUse", toolName: "Grep",
			input: map[string]any{"pattern": "func main"},
			want:  "Grep func main",
		},
		{
			name:  "Task with description",
			event: "PreToolUse", toolName: "Task",
			input: map[string]any{"description": "search for errors"},
			want:  "Task: search for errors",
		},
		{
			name:  "non-string input is ignored",
			event: "PreToolUse", toolName: "Read",
			input: map[string]any{"file_path": 42},
			want:  "Read",
		},
		{
			name:  "unknown tool returns tool name",
			event: "PreToolUse", toolName: "CustomTool",
			input: nil,
			want:  "CustomTool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.input != nil {
				raw, _ = json.Marshal(tt.input)
			}
			got := buildToolDetail(tt.event, tt.toolName, raw)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("detail %q is not valid UTF-8", got)
			}
		})
	}
}

func TestNotificationDetail(t *testing.T) {
	tests := []struct {
		name      string
		notifType string
		title     string
		message   string
		want      string
	}{
		{"title takes precedence", "permission_prompt", "Allow Edit?", "some message", "Allow Edit?"},
		{"message used when no title", "permission_prompt", "", "Claude wants to edit", "Claude wants to edit"},
		{"fallback when no title or message", "permission_prompt", "", "", "Awaiting response"},
		{"elicitation fallback", "elicitation_dialog", "", "", "Awaiting answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notificationDetail(tt.notifType, tt.title, tt.message); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

type call struct {
	state string
	opts  trigger.Options
}

type fakeTrigger struct {
	calls     []call
	teardowns int
	err       error
}

func (f *fakeTrigger) Run(_ context.Context, name string, opts trigger.Options) error {
	f.calls = append(f.calls, call{name, opts})
	return f.err
}

func (f *fakeTrigger) Teardown(context.Context) { f.teardowns++ }

func TestRun(t *testing.T) {
	run := func(t *testing.T, input string) (*fakeTrigger, int, error) {
		t.Helper()
		ft := &fakeTrigger{}
		cleanups := 0
		err := Run(context.Background(), strings.NewReader(input), Deps{
			Trigger: ft,
			Cleanup: func() { cleanups++ },
		})
		return ft, cleanups, err
	}

	t.Run("PreToolUse triggers processing with detail and cwd", func(t *testing.T) {
		ft, _, err := run(t, `{"session_id":"s1","cwd":"/tmp/proj","hook_event_name":"PreToolUse","tool_name":"Bash","tool_input":{"command":"ls -la"}}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ft.calls) != 1 {
			t.Fatalf("got %d calls, want 1", len(ft.calls))
		}
		c := ft.calls[0]
		if c.state != "processing" || c.opts.Detail != "Bash: ls -la" || c.opts.Cwd != "/tmp/proj" {
			t.Errorf("unexpected call %+v", c)
		}
	})

	t.Run("SessionStart cleans up then resets", func(t *testing.T) {
		ft, cleanups, err := run(t, `{"session_id":"s2","cwd":"/tmp","hook_event_name":"SessionStart","source":"startup"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cleanups != 1 {
			t.Errorf("cleanups = %d, want 1", cleanups)
		}
		if len(ft.calls) != 1 || ft.calls[0].state != "reset" {
			t.Errorf("calls = %+v", ft.calls)
		}
	})

	t.Run("SessionEnd tears down without a trigger", func(t *testing.T) {
		ft, cleanups, err := run(t, `{"session_id":"s3","hook_event_name":"SessionEnd"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ft.teardowns != 1 || len(ft.calls) != 0 || cleanups != 0 {
			t.Errorf("teardowns = %d, calls = %+v, cleanups = %d", ft.teardowns, ft.calls, cleanups)
		}
	})

	t.Run("Stop completes", func(t *testing.T) {
		ft, _, _ := run(t, `{"session_id":"s4","hook_event_name":"Stop"}`)
		if len(ft.calls) != 1 || ft.calls[0].state != "complete" {
			t.Errorf("calls = %+v", ft.calls)
		}
	})

	t.Run("idle_prompt notification is a no-op", func(t *testing.T) {
		ft, _, err := run(t, `{"session_id":"s5","hook_event_name":"Notification","notification_type":"idle_prompt"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ft.calls) != 0 {
			t.Errorf("calls = %+v, want none", ft.calls)
		}
	})

	t.Run("permission notification", func(t *testing.T) {
		ft, _, _ := run(t, `{"session_id":"s6","hook_event_name":"Notification","notification_type":"permission_prompt","title":"Allow Bash?"}`)
		if len(ft.calls) != 1 || ft.calls[0].state != "permission" || ft.calls[0].opts.Detail != "Allow Bash?" {
			t.Errorf("calls = %+v", ft.calls)
		}
	})

	t.Run("unknown event is a no-op", func(t *testing.T) {
		ft, _, err := run(t, `{"session_id":"s7","hook_event_name":"SubagentStop"}`)
		if err != nil || len(ft.calls) != 0 {
			t.Errorf("err = %v, calls = %+v", err, ft.calls)
		}
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		ft, _, err := run(t, `{bad`)
		if err == nil {
			t.Error("expected error for invalid JSON")
		}
		if len(ft.calls) != 0 {
			t.Errorf("calls = %+v, want none", ft.calls)
		}
	})

	t.Run("nil cleanup is allowed", func(t *testing.T) {
		ft := &fakeTrigger{}
		err := Run(context.Background(), strings.NewReader(`{"hook_event_name":"SessionStart"}`), Deps{Trigger: ft})
		if err != nil || len(ft.calls) != 1 {
			t.Errorf("err = %v, calls = %+v", err, ft.calls)
		}
	})
}
