package root

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/attractorlabs/colloquy/pkg/config"
	"github.com/attractorlabs/colloquy/pkg/experiment"
	"github.com/attractorlabs/colloquy/pkg/model/provider"
	"github.com/attractorlabs/colloquy/pkg/model/provider/anthropic"
	"github.com/attractorlabs/colloquy/pkg/model/provider/openai"
)

// NewRunCmd creates the `colloquy run` command.
func NewRunCmd() *cobra.Command {
	var (
		outputDir   string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run an experiment from a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if concurrency > 0 {
				cfg.Concurrency = concurrency
			}

			p, err := newProvider(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events := make(chan experiment.Event, 128)
			reporter := newProgressReporter(os.Stderr, cfg.NumSamples)
			go reporter.Consume(events)

			runner := experiment.NewRunner(p, cfg, experiment.WithEvents(events))
			result, err := runner.Run(ctx)
			close(events)
			reporter.Wait()
			if err != nil {
				return err
			}

			runDir, err := experiment.Save(result, outputDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Results saved to: %s\n", runDir)
			if failed := len(result.Samples) - result.Completed(); failed > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d samples did not complete\n", failed, len(result.Samples))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "logs", "Directory to write run results under")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Override the configured concurrency bound")

	return cmd
}

func newProvider(cfg *config.Experiment) (provider.Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewClient()
	case "openai":
		return openai.NewClient()
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
