package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/piecetext/internal/engine/charset"
	"github.com/dshills/piecetext/internal/engine/textbuf"
)

func newCatCommand(e *env) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "cat FILE...",
		Short: "Print files decoded to UTF-8",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []textbuf.Option
			if from != "" {
				enc, err := charset.Parse(from)
				if err != nil {
					return err
				}
				opts = append(opts, textbuf.WithEncoding(enc))
			}
			for _, path := range args {
				buf, err := e.open(path, opts...)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write([]byte(buf.Text()))
				buf.Close()
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "decode as this encoding instead of detecting it")
	return cmd
}
