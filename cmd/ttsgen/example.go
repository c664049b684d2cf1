package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrclmr/ttsgen/internal/config"
	"github.com/mrclmr/ttsgen/internal/tts"
)

func newExampleCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:               "example",
		Short:             "Print example batch yaml",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(_ *cobra.Command, _ []string) error {
			example, err := config.Example()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, example)
			return err
		},
	}
}

func newBackendsCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:               "backends",
		Short:             "List tts backends and what they need",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(_ *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			for _, b := range tts.Backends() {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", b, b.Requires())
			}
			return w.Flush()
		},
	}
}
