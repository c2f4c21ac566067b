package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuestionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Lista las preguntas del cuestionario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := opts.loadQuestionnaire()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), opts.noColor)
			for i, item := range q.Questions() {
				fmt.Fprintf(p.out, "%2d. %s  1 <-> 6  %s\n", i+1, p.bold(item.Pair[0]), p.bold(item.Pair[1]))
				fmt.Fprintf(p.out, "    %s / %s\n", item.Descriptions[0], item.Descriptions[1])
			}
			return nil
		},
	}
}
