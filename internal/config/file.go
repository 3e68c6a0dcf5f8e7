package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/martinwickman/tavs/internal/kvfile"
)

// ReadUserFile parses a user config file into flat settings. The file is
// read as TOML; files that are not valid TOML (older shell-style KEY=value
// files with bare words) are parsed line by line instead. Tables flatten to
// upper-cased TABLE_KEY names, so
//
//	[claude]
//	dark_base = "#1E1E2E"
//
// sets CLAUDE_DARK_BASE.
func ReadUserFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	var raw map[string]any
	if _, tomlErr := toml.Decode(string(data), &raw); tomlErr == nil {
		out := make(map[string]string)
		flatten("", raw, out)
		return out, nil
	}

	out, err := kvfile.Parse(bytes.NewReader(data))
	if err != nil {
		return out, fmt.Errorf("parsing: %w", err)
	}
	return out, nil
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := strings.ToUpper(k)
		if prefix != "" {
			name = prefix + "_" + name
		}
		if sub, ok := m[k].(map[string]any); ok {
			flatten(name, sub, out)
			continue
		}
		out[name] = scalar(m[k])
	}
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = scalar(e)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(x)
	}
}
