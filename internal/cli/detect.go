package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/piecetext/internal/engine/charset"
	"github.com/dshills/piecetext/internal/engine/textbuf"
)

// sniffLen is how much of a file detect inspects for BOM and binary data.
const sniffLen = 8192

// report is what detect prints for a file.
type report struct {
	Path       string
	Encoding   charset.Encoding
	BOM        bool
	Binary     bool
	LineEnding charset.LineEnding
	Bytes      int
	Exact      bool
	Lines      int
	Replaced   int
}

func newDetectCommand(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect FILE...",
		Short: "Report the encoding, BOM and line endings of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				r, err := e.detect(path)
				if err != nil {
					return err
				}
				if asJSON {
					data, err := r.json()
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), string(data))
					continue
				}
				r.writeText(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per file")
	return cmd
}

func (e *env) detect(path string) (report, error) {
	buf, err := e.open(path)
	if err != nil {
		return report{}, err
	}
	defer buf.Close()

	head, err := e.head(path)
	if err != nil {
		return report{}, err
	}
	_, _, hasBOM := charset.StripBOM(head)

	r := report{
		Path:       path,
		Encoding:   buf.Encoding(),
		BOM:        hasBOM,
		Binary:     !hasBOM && charset.IsBinary(head),
		LineEnding: buf.LineEnding(),
		Bytes:      buf.Len(),
		Exact:      buf.HasExactLines(),
		Replaced:   buf.LoadReport().Replaced,
	}
	r.Lines, _ = buf.LineCount()
	return r, nil
}

// head returns up to sniffLen leading bytes of path.
func (e *env) head(path string) ([]byte, error) {
	src, err := e.fsys.OpenReaderAt(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", textbuf.ErrIO, err)
	}
	defer src.Close()

	head := make([]byte, sniffLen)
	n, err := src.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", textbuf.ErrIO, err)
	}
	return head[:n], nil
}

func (r report) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s\n", r.Path)
	fmt.Fprintf(w, "  encoding:    %s (%s)\n", r.Encoding, r.Encoding.DisplayName())
	fmt.Fprintf(w, "  bom:         %t\n", r.BOM)
	fmt.Fprintf(w, "  binary:      %t\n", r.Binary)
	fmt.Fprintf(w, "  line-ending: %s\n", r.LineEnding)
	fmt.Fprintf(w, "  bytes:       %d\n", r.Bytes)
	if r.Exact {
		fmt.Fprintf(w, "  lines:       %d\n", r.Lines)
	} else {
		fmt.Fprintf(w, "  lines:       estimated\n")
	}
	if r.Replaced > 0 {
		fmt.Fprintf(w, "  replaced:    %d\n", r.Replaced)
	}
}

func (r report) json() ([]byte, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"path", r.Path},
		{"encoding", string(r.Encoding)},
		{"display_name", r.Encoding.DisplayName()},
		{"bom", r.BOM},
		{"binary", r.Binary},
		{"line_ending", string(r.LineEnding)},
		{"bytes", r.Bytes},
		{"exact_lines", r.Exact},
		{"replaced", r.Replaced},
	}
	data := []byte(`{}`)
	for _, f := range fields {
		var err error
		if data, err = sjson.SetBytes(data, f.path, f.value); err != nil {
			return nil, err
		}
	}
	if r.Exact {
		return sjson.SetBytes(data, "lines", r.Lines)
	}
	return data, nil
}
