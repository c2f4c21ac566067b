package main

import (
	"github.com/spf13/cobra"

	"colors-coach/internal/assessment"
)

type rootOptions struct {
	questionnairePath string
	noColor           bool
	jsonOutput        bool
}

// newRootCommand arma el CLI: cuestionario por terminal y reportes sin servidor ni base de datos.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Cuestionario de los cuatro colores en la terminal",
		Long: `quiz corre el cuestionario de los cuatro colores (rojo, amarillo, verde, azul)
y muestra el reporte de perfil sin necesidad de servidor ni base de datos.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.questionnairePath, "questionnaire", "", "archivo YAML con un cuestionario alternativo")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "desactiva los colores en la salida")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "imprime el reporte como JSON")

	cmd.AddCommand(newQuestionsCommand(opts))
	cmd.AddCommand(newTakeCommand(opts))
	cmd.AddCommand(newAnalyzeCommand(opts))
	return cmd
}

func (o *rootOptions) loadQuestionnaire() (*assessment.Questionnaire, error) {
	if o.questionnairePath == "" {
		return assessment.DefaultQuestionnaire()
	}
	return assessment.LoadQuestionnaireFile(o.questionnairePath)
}
