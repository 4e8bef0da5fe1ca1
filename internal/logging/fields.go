package logging

// Field names for structured log key/value pairs.
const (
	FieldError     = "error"
	FieldPath      = "path"
	FieldBytes     = "bytes"
	FieldEncoding  = "encoding"
	FieldTarget    = "target"
	FieldExact     = "exact"
	FieldThreshold = "threshold"
	FieldOffset    = "offset"
	FieldLineStart = "line_start"
	FieldLineLen   = "line_length"

	// Transcoding loss counts.
	FieldReplaced        = "replaced"
	FieldUnrepresentable = "unrepresentable"
)
