package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/piecetext/internal/vfs"
)

func TestTOMLLoader_Load(t *testing.T) {
	memfs := vfs.NewMemFS()
	memfs.AddFile("/config.toml", []byte(`
[editor]
estimated_line_length = 120
large_file_threshold = 4096

[files]
default_encoding = "utf-16le"
bom_for_new_files = true
`), 0644)

	got, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]any{
		"editor": map[string]any{
			"estimated_line_length": int64(120),
			"large_file_threshold":  int64(4096),
		},
		"files": map[string]any{
			"default_encoding":  "utf-16le",
			"bom_for_new_files": true,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	got, err := NewTOMLLoaderWithFS(vfs.NewMemFS(), "/nope.toml").Load()
	if err != nil || got != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", got, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := vfs.NewMemFS()
	memfs.AddFile("/bad.toml", []byte("[editor\nx = 1\n"), 0644)

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" || perr.Line == 0 {
		t.Errorf("ParseError = %+v", perr)
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	got, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[logging]\nlevel = \"debug\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"logging": map[string]any{"level": "debug"}}, got); diff != "" {
		t.Errorf("LoadFromReader (-want +got):\n%s", diff)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := vfs.NewMemFS()
	memfs.AddFile("/config.yaml", []byte(`
editor:
  estimated_line_length: 100
logging:
  level: warn
`), 0644)

	got, err := NewYAMLLoaderWithFS(memfs, "/config.yaml").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]any{
		"editor":  map[string]any{"estimated_line_length": 100},
		"logging": map[string]any{"level": "warn"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() (-want +got):\n%s", diff)
	}
}

func TestYAMLLoader_ParseError(t *testing.T) {
	memfs := vfs.NewMemFS()
	memfs.AddFile("/bad.yml", []byte("editor: [unclosed\n"), 0644)

	_, err := NewYAMLLoaderWithFS(memfs, "/bad.yml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestForPath(t *testing.T) {
	memfs := vfs.NewMemFS()
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"a.toml", false},
		{"a.TOML", false},
		{"a.yaml", false},
		{"a.yml", false},
		{"a.json", false},
		{"a.ini", true},
	}
	for _, tt := range tests {
		_, err := ForPath(memfs, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	l.environ = func() []string {
		return []string{
			"PIECETEXT_EDITOR_ESTIMATED_LINE_LENGTH=64",
			"PIECETEXT_FILES_BOM_FOR_NEW_FILES=yes",
			"PIECETEXT_FILES_DEFAULT_ENCODING=latin-1",
			"PIECETEXT_LOG_LEVEL=debug",
			"PIECETEXT_CONFIG=/etc/piecetext.toml",
			"PIECETEXT_EDITOR_LARGE_FILE_THRESHOLD=",
			"HOME=/root",
		}
	}

	got, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"editor":  map[string]any{"estimated_line_length": int64(64)},
		"files":   map[string]any{"bom_for_new_files": true, "default_encoding": "latin-1"},
		"logging": map[string]any{"level": "debug"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() (-want +got):\n%s", diff)
	}
}

func TestEnvLoader_Mapping(t *testing.T) {
	t.Setenv("PIECETEXT_LINE_GUESS", "90")
	l := NewEnvLoader(DefaultEnvPrefix)
	l.AddMapping("PIECETEXT_LINE_GUESS", "editor.estimated_line_length")

	got, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	editor, _ := got["editor"].(map[string]any)
	if editor["estimated_line_length"] != int64(90) {
		t.Errorf("editor = %v", editor)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"editor": map[string]any{"estimated_line_length": 80, "large_file_threshold": 1024},
		"files":  map[string]any{"default_encoding": "utf-8"},
	}
	src := map[string]any{
		"editor":  map[string]any{"estimated_line_length": 40},
		"logging": map[string]any{"level": "debug"},
	}
	want := map[string]any{
		"editor":  map[string]any{"estimated_line_length": 40, "large_file_threshold": 1024},
		"files":   map[string]any{"default_encoding": "utf-8"},
		"logging": map[string]any{"level": "debug"},
	}
	if diff := cmp.Diff(want, DeepMerge(dst, src)); diff != "" {
		t.Errorf("DeepMerge (-want +got):\n%s", diff)
	}
}

func TestJSONLoader_Load(t *testing.T) {
	memfs := vfs.NewMemFS()
	memfs.AddFile("/config.json", []byte(`{
  "editor": {"estimated_line_length": 72, "ratio": 1.5},
  "files": {"default_encoding": "gb18030", "bom_for_new_files": false}
}`), 0644)

	got, err := NewJSONLoaderWithFS(memfs, "/config.json").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := map[string]any{
		"editor": map[string]any{"estimated_line_length": int64(72), "ratio": 1.5},
		"files":  map[string]any{"default_encoding": "gb18030", "bom_for_new_files": false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() (-want +got):\n%s", diff)
	}
}

func TestJSONLoader_Invalid(t *testing.T) {
	tests := []string{`{"editor": `, `[1, 2]`}
	for _, input := range tests {
		_, err := NewJSONLoader("").LoadFromReader(strings.NewReader(input))
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("LoadFromReader(%q) error = %v, want *ParseError", input, err)
		}
	}
}
