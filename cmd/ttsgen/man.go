package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newManCmd(rootCmd *cobra.Command) *cobra.Command {
	// Section 1 is for user commands.
	return &cobra.Command{
		Use:                   "man <dir>",
		Short:                 "Generate man pages",
		SilenceUsage:          true,
		Hidden:                true,
		DisableFlagsInUseLine: true,
		Example:               "ttsgen man . && man ./ttsgen.1",
		Args:                  cobra.ExactArgs(1),
		ValidArgsFunction:     cobra.NoFileCompletions,
		RunE: func(_ *cobra.Command, args []string) error {
			return doc.GenManTree(rootCmd, &doc.GenManHeader{Title: "TTSGEN", Section: "1"}, args[0])
		},
	}
}
