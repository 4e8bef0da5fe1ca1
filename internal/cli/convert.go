package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/piecetext/internal/engine/charset"
	"github.com/dshills/piecetext/internal/engine/textbuf"
)

func newConvertCommand(e *env) *cobra.Command {
	var to, from, output string

	cmd := &cobra.Command{
		Use:   "convert FILE --to ENCODING",
		Short: "Re-encode a file",
		Long: `Re-encode a file, in place or to --output.

Characters the target encoding cannot represent are written as '?' and
reported as a warning; the conversion still completes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := charset.Parse(to)
			if err != nil {
				return err
			}
			var opts []textbuf.Option
			if from != "" {
				source, err := charset.Parse(from)
				if err != nil {
					return err
				}
				opts = append(opts, textbuf.WithEncoding(source))
			}

			buf, err := e.open(args[0], opts...)
			if err != nil {
				return err
			}
			defer buf.Close()

			source := buf.Encoding()
			if err := buf.SetEncoding(target); err != nil {
				return err
			}
			dest := args[0]
			if output == "" {
				err = buf.Save(cmd.Context())
			} else {
				dest = output
				err = buf.SaveAs(cmd.Context(), e.fsys, output)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) -> %s (%s)\n", args[0], source, dest, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "target encoding (required)")
	cmd.Flags().StringVar(&from, "from", "", "decode the input as this encoding instead of detecting it")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of in place")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
