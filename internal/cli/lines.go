package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rivo/uniseg"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/piecetext/internal/engine/lineiter"
	"github.com/dshills/piecetext/internal/logging"
)

// offsetWidth is the width of the offset column printed by lines.
const offsetWidth = 8

func newLinesCommand(e *env) *cobra.Command {
	var (
		from     int
		reverse  bool
		estimate int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "lines FILE",
		Short: "Print lines with their byte offsets",
		Long: `Print lines with their byte offsets, starting at the line containing
--from and walking forward, or backward with --reverse. Both directions
print the line containing --from first.

On files without exact line metadata the starting point and backward steps
are estimates of --estimate bytes per line; a notice is printed to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := e.open(args[0])
			if err != nil {
				return err
			}
			defer buf.Close()

			if estimate <= 0 {
				estimate = e.cfg.Editor.EstimatedLineLength
			}
			it := lineiter.New(buf, from, estimate)
			if !it.Exact() {
				logging.FromContext(cmd.Context()).Warn("line positions are estimated",
					logging.FieldLineLen, estimate)
			}

			next := it.Next
			if reverse {
				// Step over the starting line so the first Prev returns it.
				it.Next()
				next = it.Prev
			}
			out := cmd.OutOrStdout()
			width := terminalWidth(out)
			for n := 0; limit <= 0 || n < limit; n++ {
				line, ok := next()
				if !ok {
					break
				}
				writeLine(out, line, width)
			}
			return it.Err()
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "byte offset to start at")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "walk backward, starting with the line containing --from")
	cmd.Flags().IntVar(&estimate, "estimate", 0, "estimated line length (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most this many lines")
	return cmd
}

// terminalWidth returns the column count of w if it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func writeLine(w io.Writer, line lineiter.Line, width int) {
	text := strings.TrimRight(line.Text, "\r\n")
	if width > 0 {
		text = truncate(text, width-offsetWidth-2)
	}
	fmt.Fprintf(w, "%*d  %s\n", offsetWidth, line.Start, text)
}

// truncate cuts s to at most width terminal cells without splitting a
// grapheme cluster.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if used+w > width {
			break
		}
		b.WriteString(cluster)
		used += w
	}
	return b.String()
}
