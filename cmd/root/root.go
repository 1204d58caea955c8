package root

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var debug bool

// NewRootCmd creates the top-level colloquy command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "colloquy",
		Short:        "Run scripted multi-agent dialogue experiments against hosted models",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(NewRunCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
