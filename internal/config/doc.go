// Package config provides the configuration for piecetext.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← PIECETEXT_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML, YAML or JSON
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Basic Usage
//
//	cfg, err := config.Load(config.WithFile("piecetext.toml"))
//	if err != nil {
//	    return err
//	}
//	buf, err := textbuf.Open(fsys, path, textbuf.WithConfig(cfg))
//
// # Settings
//
//	[editor]
//	estimated_line_length = 80      # bytes per line when line metadata is missing
//	large_file_threshold = 1048576  # files above this size load lazily
//
//	[files]
//	default_encoding = "utf-8"      # encoding for new, empty buffers
//	bom_for_new_files = false
//
//	[logging]
//	level = "info"
//
// Environment variables use the section and setting name:
// PIECETEXT_EDITOR_ESTIMATED_LINE_LENGTH, PIECETEXT_FILES_DEFAULT_ENCODING.
// PIECETEXT_LOG_LEVEL is accepted for logging.level.
package config
