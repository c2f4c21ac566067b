package main

import (
	"errors"

	"github.com/spf13/cobra"

	"colors-coach/internal/domain"
)

var errNegativeScores = errors.New("los puntajes no pueden ser negativos")

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var scores domain.Scores
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Genera el reporte para puntajes ya calculados",
		Example: `  quiz analyze --a 30 --b 20 --c 35 --d 15
  quiz analyze --a 10 --c 10 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if scores.IsNegative() {
				return errNegativeScores
			}
			q, err := opts.loadQuestionnaire()
			if err != nil {
				return err
			}
			if err := q.ValidateScores(scores); err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), opts.noColor).report(scores, opts.jsonOutput)
		},
	}
	cmd.Flags().IntVar(&scores.A, "a", 0, "puntaje de extroversion")
	cmd.Flags().IntVar(&scores.B, "b", 0, "puntaje de introversion")
	cmd.Flags().IntVar(&scores.C, "c", 0, "puntaje de foco en la tarea")
	cmd.Flags().IntVar(&scores.D, "d", 0, "puntaje de foco en las personas")
	return cmd
}
