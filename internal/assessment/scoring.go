package assessment

import "colors-coach/internal/domain"

// ComputeScores reparte cada respuesta v entre los dos ejes de su pregunta:
// el primero recibe 6-v y el segundo v-1. Respuestas ausentes o en 0 no aportan.
func ComputeScores(answers domain.Answers, questions []domain.QuestionPair) domain.Scores {
	var scores domain.Scores
	for _, q := range questions {
		v, ok := answers[q.ID]
		if !ok || v <= 0 {
			continue
		}
		if v > domain.AnswerMax {
			v = domain.AnswerMax
		}
		scores.Add(q.Columns[0], domain.AnswerMax-v)
		scores.Add(q.Columns[1], v-domain.AnswerMin)
	}
	return scores
}

// AnsweredCount cuenta las preguntas del catalogo con respuesta valida.
func AnsweredCount(answers domain.Answers, questions []domain.QuestionPair) int {
	n := 0
	for _, q := range questions {
		if v, ok := answers[q.ID]; ok && v > 0 {
			n++
		}
	}
	return n
}
