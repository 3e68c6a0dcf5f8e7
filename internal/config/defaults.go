package config

// Defaults returns the built-in settings layer. Every key the program reads
// has an entry here, so a missing user file never leaves a value unset.
func Defaults() map[string]string {
	return map[string]string{
		"TAVS_AGENT":                "claude",
		"ENABLE_ANTHROPOMORPHISING": "true",
		"FACE_POSITION":             "before",
		"TAVS_FACE_MODE":            "static",
		"TAVS_TITLE_FORMAT":         "{FACE} {STATUS_ICON} {AGENTS} {SESSION_ICON} {BASE}",
		"TAVS_TITLE_MODE":           string(TitleSkipProcessing),
		"TAVS_TITLE_FALLBACK":       "path",
		"TAVS_TITLE_MAX_WIDTH":      "0",
		"TAVS_RESPECT_USER_TITLE":   "true",
		"TAVS_SESSION_ICONS":        "false",

		"ENABLE_TITLE_PREFIX":      "true",
		"ENABLE_BACKGROUND_CHANGE": "true",
		"ENABLE_PROCESSING":        "true",
		"ENABLE_PERMISSION":        "true",
		"ENABLE_COMPLETE":          "true",
		"ENABLE_IDLE":              "true",
		"ENABLE_COMPACTING":        "true",

		"COLOR_PROCESSING": "#473D2F",
		"COLOR_PERMISSION": "#4A2021",
		"COLOR_COMPLETE":   "#2B4532",
		"COLOR_IDLE":       "#3B2D4A",
		"COLOR_COMPACTING": "#2B4645",

		"STATUS_ICON_PROCESSING": "🟠",
		"STATUS_ICON_PERMISSION": "🔴",
		"STATUS_ICON_COMPLETE":   "🟢",
		"STATUS_ICON_IDLE":       "🟣",
		"STATUS_ICON_COMPACTING": "🔄",

		"TAVS_THEME_MODE":        "static",
		"TAVS_FORCE_MODE":        "auto",
		"DARK_BASE":              "",
		"LIGHT_BASE":             "",
		"ENABLE_PALETTE_THEMING": "false",

		"TAVS_SPINNER_STYLE":    "none",
		"TAVS_SPINNER_EYE_MODE": "sync",
		"TAVS_SESSION_IDENTITY": "false",

		"TAVS_IDLE_STAGE_DURATIONS": "60 30 30 30 30 30",
		"TAVS_IDLE_TICK":            "1",

		"TAVS_FACES_FILE": "",
		"TAVS_STATE_DIR":  "",
		"TAVS_DEBUG":      "false",
	}
}
