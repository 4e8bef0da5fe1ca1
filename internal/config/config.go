package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/piecetext/internal/config/loader"
	"github.com/dshills/piecetext/internal/engine/charset"
	"github.com/dshills/piecetext/internal/logging"
)

// Default values.
const (
	DefaultEstimatedLineLength = 80
	DefaultLargeFileThreshold  = 1 << 20
	DefaultEncoding            = "utf-8"
	DefaultLogLevel            = "info"
)

// Config holds all piecetext settings.
type Config struct {
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Files   FilesConfig   `toml:"files" yaml:"files"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// EditorConfig holds buffer engine settings.
type EditorConfig struct {
	// EstimatedLineLength is the assumed bytes per line when line-feed
	// metadata is unavailable.
	EstimatedLineLength int `toml:"estimated_line_length" yaml:"estimated_line_length"`

	// LargeFileThreshold is the size in bytes above which files are read
	// lazily and line metadata is not computed.
	LargeFileThreshold int `toml:"large_file_threshold" yaml:"large_file_threshold"`
}

// FilesConfig holds settings for new and saved files.
type FilesConfig struct {
	// DefaultEncoding is used for new, empty buffers.
	DefaultEncoding string `toml:"default_encoding" yaml:"default_encoding"`

	// BOMForNewFiles selects the BOM variant for UTF-8 new buffers.
	BOMForNewFiles bool `toml:"bom_for_new_files" yaml:"bom_for_new_files"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			EstimatedLineLength: DefaultEstimatedLineLength,
			LargeFileThreshold:  DefaultLargeFileThreshold,
		},
		Files: FilesConfig{
			DefaultEncoding: DefaultEncoding,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	path      string
	required  bool
	envPrefix string
	env       bool
}

// WithFile loads the given file on top of the defaults. A missing file
// is an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.path = path
		o.required = true
	}
}

// WithOptionalFile loads the given file if it exists.
func WithOptionalFile(path string) Option {
	return func(o *options) {
		o.path = path
		o.required = false
	}
}

// WithFS sets the file system config files are read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv disables the environment layer.
func WithoutEnv() Option {
	return func(o *options) {
		o.env = false
	}
}

// Load builds a Config from defaults, an optional file and the
// environment, then validates it.
func Load(opts ...Option) (*Config, error) {
	o := options{
		envPrefix: loader.DefaultEnvPrefix,
		env:       true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = loader.DefaultFS()
	}

	merged, err := Default().toMap()
	if err != nil {
		return nil, err
	}

	if o.path != "" {
		l, err := loader.ForPath(o.fs, o.path)
		if err != nil {
			return nil, err
		}
		data, err := l.Load()
		if err != nil {
			return nil, err
		}
		if data == nil && o.required {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, o.path)
		}
		merged = loader.DeepMerge(merged, data)
	}

	if o.env {
		data, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every setting with an unusable value. The returned
// error matches ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	if c.Editor.EstimatedLineLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: editor.estimated_line_length must be positive, got %d",
			ErrInvalid, c.Editor.EstimatedLineLength))
	}
	if c.Editor.LargeFileThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%w: editor.large_file_threshold must be positive, got %d",
			ErrInvalid, c.Editor.LargeFileThreshold))
	}
	if _, err := charset.Parse(c.Files.DefaultEncoding); err != nil {
		errs = append(errs, fmt.Errorf("%w: files.default_encoding: %v", ErrInvalid, err))
	}
	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level))
	}
	return errors.Join(errs...)
}

// Encoding returns the parsed default encoding, falling back to UTF-8.
func (c *Config) Encoding() charset.Encoding {
	e, err := charset.Parse(c.Files.DefaultEncoding)
	if err != nil {
		return charset.UTF8
	}
	if e == charset.UTF8 && c.Files.BOMForNewFiles {
		return charset.UTF8BOM
	}
	return e
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func (c *Config) toMap() (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return m, nil
}

// fromMap decodes a merged map by round-tripping it through TOML.
func fromMap(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg := Default()
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}
