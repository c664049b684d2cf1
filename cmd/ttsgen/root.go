// Package cmd is the ttsgen command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mrclmr/ttsgen/internal/audio"
	"github.com/mrclmr/ttsgen/internal/log"
	"github.com/mrclmr/ttsgen/internal/tts"
)

const defaultText = "Hello world!"

var (
	_ pflag.Value = (*tts.Backend)(nil)
	_ pflag.Value = (*audio.Format)(nil)
	_ pflag.Value = (*levelFlag)(nil)
)

func ExecuteContext(ctx context.Context, version string) error {
	return newRootCmd(version, tts.ExecCommand, os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// globalFlags are shared by the single run and the batch command.
type globalFlags struct {
	apiKey   string
	cacheDir string
	noCache  bool
	logLevel levelFlag
}

func newRootCmd(
	version string,
	execCmdCtx tts.ExecCmdCtx,
	stdout io.Writer,
	stderr io.Writer,
) *cobra.Command {
	g := &globalFlags{logLevel: levelFlag{slog.LevelInfo}}
	opts := &runOptions{
		output: "output.wav",
	}

	rootCmd := &cobra.Command{
		Version: version,
		Use:     "ttsgen [text...]",
		Short:   "Synthesize speech to audio files",
		Long: `Synthesize speech to audio files with an external text-to-speech engine.

Without arguments ttsgen speaks "` + defaultText + `" with the Coqui model
` + tts.DefaultModel + ` into output.wav.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			setLogger(stdout, stderr, g.logLevel.Level)
			opts.text = defaultText
			if len(args) > 0 {
				opts.text = strings.Join(args, " ")
			}
			if !cmd.Flags().Changed("format") {
				opts.format = audio.FormatFromPath(opts.output)
			}
			return run(cmd.Context(), g, opts, execCmdCtx)
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.SetVersionTemplate(`{{with .DisplayName}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.apiKey, "api-key", "", "API key of the openai backend (default $OPENAI_API_KEY)")
	pf.StringVar(&g.cacheDir, "cache-dir", "", "directory of synthesized WAV files (default "+defaultCacheDir()+")")
	pf.BoolVar(&g.noCache, "no-cache", false, "synthesize into a temporary directory")
	pf.Var(&g.logLevel, "log-level", "log level: debug, info, warn, error")
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", fixedCompletion("debug", "info", "warn", "error"))

	f := rootCmd.Flags()
	f.SortFlags = false
	f.VarP(&opts.backend, "backend", "b", "tts backend, see 'ttsgen backends'")
	f.StringVarP(&opts.model, "model", "m", "", "model name or path (coqui default "+tts.DefaultModel+")")
	f.StringVarP(&opts.voice, "voice", "v", "", "voice or speaker, for coqui without --model one of "+strings.Join(tts.CoquiPresets(), ", "))
	f.StringVarP(&opts.language, "language", "l", "", "language of multilingual models")
	f.StringVarP(&opts.output, "output", "o", opts.output, "output file")
	f.VarP(&opts.format, "format", "f", "output format: wav, mp3, m4a (default from output extension)")
	f.Float64Var(&opts.speed, "speed", 0, "speech rate multiplier, 0 is the engine default")
	f.StringVar(&opts.endpoint, "endpoint", "", "URL of the coqui-server and openai backends")
	f.StringVar(&opts.command, "command", "", "command line of the command and exec-json backends")
	f.IntVar(&opts.sampleRate, "sample-rate", 0, "sample rate of exec-json PCM (default 22050)")
	f.IntVar(&opts.channels, "channels", 0, "channels of exec-json PCM (default 1)")

	backendNames := make([]string, 0)
	for _, b := range tts.Backends() {
		backendNames = append(backendNames, b.String())
	}
	_ = rootCmd.RegisterFlagCompletionFunc("backend", fixedCompletion(backendNames...))
	_ = rootCmd.RegisterFlagCompletionFunc("format", fixedCompletion("wav", "mp3", "m4a"))

	rootCmd.AddCommand(
		newBatchCmd(g, execCmdCtx, stdout, stderr),
		newExampleCmd(stdout),
		newBackendsCmd(stdout),
		newManCmd(rootCmd),
	)

	return rootCmd
}

func setLogger(stdout, stderr io.Writer, level slog.Level) {
	slog.SetDefault(log.New(stdout, stderr, level))
}

func fixedCompletion(values ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ttsgen")
}

// cache returns the cache directory and a func removing it if it is temporary.
func (g *globalFlags) cache() (string, func(), error) {
	if g.noCache {
		dir, err := os.MkdirTemp("", "ttsgen-")
		if err != nil {
			return "", nil, err
		}
		return dir, func() {
			if err := os.RemoveAll(dir); err != nil {
				slog.Warn("remove temporary directory", "path", dir, "err", err)
			}
		}, nil
	}
	if g.cacheDir != "" {
		return g.cacheDir, func() {}, nil
	}
	return defaultCacheDir(), func() {}, nil
}

func (g *globalFlags) resolvedAPIKey() string {
	if g.apiKey != "" {
		return g.apiKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

type levelFlag struct {
	slog.Level
}

func (l *levelFlag) Set(s string) error {
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("unknown log level '%s'", s)
	}
	return nil
}

func (l *levelFlag) Type() string {
	return "level"
}

func (l *levelFlag) String() string {
	return strings.ToLower(l.Level.String())
}
