package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrclmr/ttsgen/internal/audio"
	"github.com/mrclmr/ttsgen/internal/batch"
	"github.com/mrclmr/ttsgen/internal/config"
	"github.com/mrclmr/ttsgen/internal/tts"
)

func newBatchCmd(
	g *globalFlags,
	execCmdCtx tts.ExecCmdCtx,
	stdout io.Writer,
	stderr io.Writer,
) *cobra.Command {
	var graph bool
	batchCmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Synthesize all items of a batch yaml",
		Long: `Synthesize all items of a batch yaml into one output directory.

Print an annotated batch yaml with 'ttsgen example'.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: yamlCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("batch file not found: %w", err)
			}
			f, err := os.OpenFile(path, os.O_RDONLY, 0o600)
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
			}()
			cfg, err := config.Parse(f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = g.logLevel.Level
			}
			setLogger(stdout, stderr, level)

			ttsOpts := tts.Options{
				Backend:    cfg.Backend,
				Endpoint:   cfg.Endpoint,
				APIKey:     g.resolvedAPIKey(),
				Command:    cfg.Command,
				SampleRate: cfg.SampleRate,
				Channels:   cfg.Channels,
				ExecCmdCtx: execCmdCtx,
			}
			synth, err := tts.New(ttsOpts)
			if err != nil {
				return err
			}

			cacheDir, cleanup, err := g.cache()
			if err != nil {
				return err
			}
			defer cleanup()

			creator, err := audio.NewFileCreator(synth, execCmdCtx, cacheDir,
				audio.WithCacheKey(ttsOpts.CacheKey()))
			if err != nil {
				return err
			}

			runner := batch.NewRunner(creator, cfg, progressWriter(stderr, level))
			if graph {
				dot, err := runner.Graph()
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(stdout, dot)
				return err
			}

			results, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			slog.Info(fmt.Sprintf("%d audio files generated in", len(results)), "dir", cfg.OutputDir)
			return nil
		},
	}
	batchCmd.Flags().BoolVar(&graph, "graph", false, "print what would run in Graphviz dot format and exit")
	return batchCmd
}

// progressWriter returns w if it is a terminal. Debug output would break
// the progress bar.
func progressWriter(w io.Writer, level slog.Level) io.Writer {
	f, ok := w.(*os.File)
	if !ok || level <= slog.LevelDebug || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return f
}

func yamlCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"yml", "yaml"}, cobra.ShellCompDirectiveFilterFileExt
}
