package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"colors-coach/internal/domain"
)

const maxAttempts = 3

func newTakeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "take",
		Short: "Responde el cuestionario y muestra tu perfil",
		Long: `Lee una respuesta por linea (1 a 6). Una linea vacia deja la pregunta sin responder.
Si la entrada termina antes, las preguntas restantes quedan sin responder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := opts.loadQuestionnaire()
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), opts.noColor)
			questions := q.Questions()
			answers := make(domain.Answers, len(questions))
			scanner := bufio.NewScanner(cmd.InOrStdin())

			for i, item := range questions {
				v, ok := askQuestion(p, scanner, i+1, len(questions), item)
				if !ok {
					break
				}
				if v > 0 {
					answers[item.ID] = v
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read answers: %w", err)
			}

			fmt.Fprintln(p.out)
			return p.report(q.Score(answers), opts.jsonOutput)
		},
	}
}

// askQuestion devuelve (0, true) para una pregunta omitida y ok=false cuando se acaba la entrada.
func askQuestion(p printer, scanner *bufio.Scanner, n, total int, item domain.QuestionPair) (int, bool) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "[%d/%d] %s (1) <-> (6) %s: ", n, total, item.Pair[0], item.Pair[1])
		if !scanner.Scan() {
			fmt.Fprintln(p.out)
			return 0, false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return 0, true
		}
		v, err := strconv.Atoi(line)
		if err == nil && v >= domain.AnswerMin && v <= domain.AnswerMax {
			return v, true
		}
		fmt.Fprintln(p.out, p.warn("valor invalido, usa un numero de 1 a 6"))
	}
	return 0, true
}
