package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"

	"github.com/tidwall/gjson"
)

// JSONLoader loads configuration from JSON files.
type JSONLoader struct {
	fs   FileSystem
	path string
}

// NewJSONLoader creates a JSON loader for the given path.
func NewJSONLoader(path string) *JSONLoader {
	return NewJSONLoaderWithFS(DefaultFS(), path)
}

// NewJSONLoaderWithFS creates a JSON loader with a custom file system.
func NewJSONLoaderWithFS(fsys FileSystem, path string) *JSONLoader {
	return &JSONLoader{fs: fsys, path: path}
}

// Load reads configuration from the configured path.
func (l *JSONLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path.
func (l *JSONLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parseJSON(path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *JSONLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parseJSON("<reader>", data)
}

func parseJSON(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: source, Message: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Path: source, Message: "top level must be an object"}
	}
	return objectToMap(root), nil
}

// objectToMap converts a gjson object, turning whole numbers into int64.
func objectToMap(obj gjson.Result) map[string]any {
	m := make(map[string]any)
	obj.ForEach(func(key, value gjson.Result) bool {
		m[key.String()] = jsonValue(value)
		return true
	})
	return m
}

func jsonValue(v gjson.Result) any {
	switch {
	case v.IsObject():
		return objectToMap(v)
	case v.IsArray():
		var out []any
		for _, item := range v.Array() {
			out = append(out, jsonValue(item))
		}
		return out
	case v.Type == gjson.Number:
		if f := v.Float(); f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return v.Int()
		}
		return v.Float()
	}
	return v.Value()
}
