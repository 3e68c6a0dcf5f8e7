// Package hook adapts agent hook events, delivered as JSON on stdin, to
// trigger states.
package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/mattn/go-runewidth"

	"github.com/martinwickman/tavs/internal/logging"
	"github.com/martinwickman/tavs/internal/trigger"
)

type hookInput struct {
	SessionID        string          `json:"session_id"`
	CWD              string          `json:"cwd"`
	HookEventName    string          `json:"hook_event_name"`
	ToolName         string          `json:"tool_name"`
	ToolInput        json.RawMessage `json:"tool_input"`
	NotificationType string          `json:"notification_type"`
	Prompt           string          `json:"prompt"`
	Message          string          `json:"message"`
	Title            string          `json:"title"`
	Source           string          `json:"source"`
	Trigger          string          `json:"trigger"`
}

// Trigger is the part of trigger.Runner a hook drives.
type Trigger interface {
	Run(ctx context.Context, name string, opts trigger.Options) error
	Teardown(ctx context.Context)
}

// Deps are the hook's collaborators. Cleanup runs on session start to drop
// records and workers left behind by closed terminals; it may be nil.
type Deps struct {
	Trigger Trigger
	Cleanup func()
	Log     *slog.Logger
}

// mapEvent returns the state an event moves to and a description for the
// dashboard. An empty state means the event changes nothing.
func mapEvent(event, toolDetail, notifType, title, message string) (state, detail string) {
	switch event {
	case "SessionStart":
		return "reset", "Session started"
	case "UserPromptSubmit":
		return "processing", "Processing prompt..."
	case "PreToolUse":
		return "processing", toolDetail
	case "PostToolUse":
		return "processing", toolDetail
	case "Notification":
		if notifType != "permission_prompt" && notifType != "elicitation_dialog" {
			return "", ""
		}
		return "permission", notificationDetail(notifType, title, message)
	case "PreCompact":
		return "compacting", "Compacting context"
	case "Stop":
		return "complete", "Finished responding"
	default:
		return "", ""
	}
}

func buildToolDetail(event, toolName string, toolInput json.RawMessage) string {
	if toolName == "" {
		return ""
	}

	if event == "PostToolUse" {
		return fmt.Sprintf("Finished %s, continuing...", toolName)
	}

	var input map[string]any
	if len(toolInput) > 0 {
		json.Unmarshal(toolInput, &input) // best-effort
	}

	getString := func(key string) string {
		s, _ := input[key].(string)
		return s
	}

	switch toolName {
	case "Bash":
		cmd := getString("command")
		cmd = runewidth.Truncate(cmd, 80, "")
		if cmd != "" {
			return "Bash: " + cmd
		}
		return "Bash"
	case "Edit", "Write", "Read":
		if fp := getString("file_path"); fp != "" {
			return toolName + " " + filepath.Base(fp)
		}
		return toolName
	case "Glob", "Grep":
		if pattern := getString("pattern"); pattern != "" {
			return toolName + " " + pattern
		}
		return toolName
	case "Task":
		if desc := getString("description"); desc != "" {
			return "Task: " + desc
		}
		return "Task"
	default:
		return toolName
	}
}

func notificationDetail(notifType, title, message string) string {
	if title != "" {
		return title
	}
	if message != "" {
		return message
	}
	if notifType == "elicitation_dialog" {
		return "Awaiting answer"
	}
	return "Awaiting response"
}

// Run reads one hook event from stdin and applies it. Errors are returned
// for logging only; callers must still exit 0 so the agent is never
// interrupted.
func Run(ctx context.Context, stdin io.Reader, deps Deps) error {
	log := logging.OrDiscard(deps.Log)

	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	var input hookInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("parsing hook input: %w", err)
	}
	log = log.With("event", input.HookEventName, "session", input.SessionID)

	switch input.HookEventName {
	case "SessionEnd":
		log.Debug("tearing down")
		deps.Trigger.Teardown(ctx)
		return nil
	case "SessionStart":
		if deps.Cleanup != nil {
			deps.Cleanup()
		}
	}

	toolDetail := buildToolDetail(input.HookEventName, input.ToolName, input.ToolInput)
	state, detail := mapEvent(input.HookEventName, toolDetail, input.NotificationType, input.Title, input.Message)
	if state == "" {
		log.Debug("event ignored", "notification_type", input.NotificationType)
		return nil
	}

	log.Debug("applying", "state", state, "detail", detail)
	return deps.Trigger.Run(ctx, state, trigger.Options{Cwd: input.CWD, Detail: detail})
}
