// Package cli provides the Cobra command structure for piecetext.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/piecetext/internal/config"
	"github.com/dshills/piecetext/internal/engine/textbuf"
	"github.com/dshills/piecetext/internal/logging"
	"github.com/dshills/piecetext/internal/vfs"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// env is the state shared by subcommands once flags are parsed.
type env struct {
	cfg  *config.Config
	fsys vfs.VFS
}

// open loads path as a text buffer configured from the environment.
func (e *env) open(path string, opts ...textbuf.Option) (*textbuf.TextBuffer, error) {
	opts = append([]textbuf.Option{textbuf.WithConfig(e.cfg)}, opts...)
	return textbuf.Open(e.fsys, path, opts...)
}

// NewRootCommand creates the root piecetext command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	e := &env{fsys: vfs.NewOSFS()}

	rootCmd := &cobra.Command{
		Use:   "piecetext",
		Short: "Inspect, convert and page through text files",
		Long: `piecetext exposes the editor's document engine on the command line.

It detects a file's encoding, byte order mark and line endings, converts
between encodings with an exact round trip, and walks lines forward or
backward the way the editor does, including on files too large for exact
line metadata.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opts := []config.Option{config.WithOptionalFile("piecetext.toml")}
			if configPath != "" {
				opts = []config.Option{config.WithFile(configPath)}
			}
			cfg, err := config.Load(opts...)
			if err != nil {
				return err
			}
			e.cfg = cfg

			level := cfg.Logging.Level
			if debug {
				level = "debug"
			}
			logger := logging.NewWithWriter(cmd.ErrOrStderr(), level)
			logging.SetDefault(logger)
			cmd.SetContext(logging.WithContext(cmd.Context(), logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       info.Version,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (TOML, YAML or JSON)")

	rootCmd.AddCommand(newDetectCommand(e))
	rootCmd.AddCommand(newConvertCommand(e))
	rootCmd.AddCommand(newLinesCommand(e))
	rootCmd.AddCommand(newCatCommand(e))

	return rootCmd
}
