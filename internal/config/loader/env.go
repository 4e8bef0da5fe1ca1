package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of piecetext environment variables.
const DefaultEnvPrefix = "PIECETEXT_"

// EnvLoader loads configuration from environment variables.
//
// PIECETEXT_EDITOR_ESTIMATED_LINE_LENGTH maps to editor.estimated_line_length:
// the first word after the prefix names the section and the rest, joined by
// underscores, names the setting. Explicit mappings take precedence.
type EnvLoader struct {
	prefix  string
	mapping map[string]string // env var -> section.setting
	environ func() []string
}

// NewEnvLoader creates an environment loader. The prefix includes the
// trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: map[string]string{prefix + "LOG_LEVEL": "logging.level"},
		environ: os.Environ,
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load reads environment variables and returns a configuration map.
// Variables set to the empty string are ignored.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, ok := l.mapping[name]
		if !ok {
			path, ok = l.envToPath(name)
			if !ok {
				continue
			}
		}
		setByPath(config, path, parseValue(value))
	}
	return config, nil
}

// envToPath converts PIECETEXT_FILES_DEFAULT_ENCODING to
// files.default_encoding. Names without a setting part are skipped.
func (l *EnvLoader) envToPath(env string) (string, bool) {
	section, setting, ok := strings.Cut(strings.TrimPrefix(env, l.prefix), "_")
	if !ok || section == "" || setting == "" {
		return "", false
	}
	return strings.ToLower(section) + "." + strings.ToLower(setting), true
}

// parseValue converts booleans and integers; anything else stays a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
