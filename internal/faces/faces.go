// Package faces holds the per-agent face, spinner frame and base color data.
// The built-in tables are embedded YAML; a user file can override any part.
package faces

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed faces.yaml
var builtin []byte

// Agent is one agent's face set.
type Agent struct {
	Name         string              `yaml:"name"`
	SpinnerFrame string              `yaml:"spinner_frame"`
	DarkBase     string              `yaml:"dark_base"`
	LightBase    string              `yaml:"light_base"`
	Faces        map[string][]string `yaml:"faces"`
}

// Table maps agent identities to face sets. Unknown agents use Fallback.
type Table struct {
	Fallback Agent            `yaml:"fallback"`
	Agents   map[string]Agent `yaml:"agents"`
}

// Builtin parses the embedded tables.
func Builtin() (*Table, error) {
	return Parse(builtin)
}

// Parse decodes a YAML face table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing face table: %w", err)
	}
	if t.Agents == nil {
		t.Agents = make(map[string]Agent)
	}
	return &t, nil
}

// Load returns the built-in table with the user file at path merged over it.
// An empty path skips the merge. A bad user file leaves the built-in table
// intact and is reported as the error.
func Load(path string) (*Table, error) {
	t, err := Builtin()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading face file: %w", err)
	}
	user, err := Parse(data)
	if err != nil {
		return t, err
	}
	t.Merge(user)
	return t, nil
}

// Merge overlays o onto t. Non-empty fields replace, and face lists replace
// per state key.
func (t *Table) Merge(o *Table) {
	t.Fallback = mergeAgent(t.Fallback, o.Fallback)
	for name, a := range o.Agents {
		name = strings.ToLower(name)
		t.Agents[name] = mergeAgent(t.Agents[name], a)
	}
}

func mergeAgent(base, over Agent) Agent {
	if over.Name != "" {
		base.Name = over.Name
	}
	if over.SpinnerFrame != "" {
		base.SpinnerFrame = over.SpinnerFrame
	}
	if over.DarkBase != "" {
		base.DarkBase = over.DarkBase
	}
	if over.LightBase != "" {
		base.LightBase = over.LightBase
	}
	if len(over.Faces) > 0 {
		merged := make(map[string][]string, len(base.Faces)+len(over.Faces))
		for k, v := range base.Faces {
			merged[k] = v
		}
		for k, v := range over.Faces {
			if len(v) > 0 {
				merged[k] = v
			}
		}
		base.Faces = merged
	}
	return base
}

// Agent returns the face set for name, or the fallback set.
func (t *Table) Agent(name string) Agent {
	if a, ok := t.Agents[strings.ToLower(name)]; ok {
		return a
	}
	return t.Fallback
}

// Known reports whether name has its own face set.
func (t *Table) Known(name string) bool {
	_, ok := t.Agents[strings.ToLower(name)]
	return ok
}

// Faces returns the candidate faces for a state key. An agent without an
// entry for key borrows the fallback entry; an unknown key yields nil.
func (t *Table) Faces(agent, key string) []string {
	if f := t.Agent(agent).Faces[key]; len(f) > 0 {
		return f
	}
	return t.Fallback.Faces[key]
}

// Face picks one face for the state key. pick receives the number of
// candidates and returns an index; nil always takes the first.
func (t *Table) Face(agent, key string, pick func(n int) int) string {
	f := t.Faces(agent, key)
	if len(f) == 0 {
		return ""
	}
	i := 0
	if pick != nil && len(f) > 1 {
		i = pick(len(f))
		if i < 0 || i >= len(f) {
			i = 0
		}
	}
	return f[i]
}

// Frame substitutes eye glyphs into a spinner frame template.
func Frame(template, left, right string) string {
	return strings.NewReplacer("{L}", left, "{R}", right).Replace(template)
}

// SpinnerFrame returns the agent's spinner frame template, borrowing the
// fallback's when the agent has none.
func (t *Table) SpinnerFrame(agent string) string {
	if f := t.Agent(agent).SpinnerFrame; f != "" {
		return f
	}
	return t.Fallback.SpinnerFrame
}
