package service

import (
	"fmt"
	"strings"

	"colors-coach/internal/assessment"
	"colors-coach/internal/domain"
)

// CoachPromptBuilder arma las instrucciones de sistema del coach a partir de la base de conocimiento.
type CoachPromptBuilder struct {
	kb *assessment.KnowledgeBase
}

func NewCoachPromptBuilder(kb *assessment.KnowledgeBase) CoachPromptBuilder {
	if kb == nil {
		kb = assessment.DefaultKnowledgeBase()
	}
	return CoachPromptBuilder{kb: kb}
}

// BuildIndividualPrompt usa el color dominante, el secundario y el complementario (el mas debil).
func (b CoachPromptBuilder) BuildIndividualPrompt(scores domain.Scores, history string) string {
	ranking := assessment.Rank(scores)
	dominant := b.kb.Profile(ranking.Dominant())
	secondary := b.kb.Profile(ranking.Secondary())
	weakest := b.kb.Profile(ranking.Weakest())

	var sb strings.Builder
	sb.WriteString("Eres un consultor organizacional y coach personal experto en el modelo de los cuatro colores.\n")
	sb.WriteString("Responde en espanol, en Markdown, con un tono breve, claro y que empodere.\n\n")

	sb.WriteString("=== PERFIL DEL USUARIO ===\n")
	fmt.Fprintf(&sb, "- Dominante: %s (%d puntos, %d%%)\n", dominant.Name, ranking.Totals.Get(ranking.Dominant()), ranking.Percentage(ranking.Dominant()))
	fmt.Fprintf(&sb, "- Secundario: %s (%d puntos, %d%%)\n", secondary.Name, ranking.Totals.Get(ranking.Secondary()), ranking.Percentage(ranking.Secondary()))
	fmt.Fprintf(&sb, "- Complementario (menos presente): %s\n\n", weakest.Name)

	if h := strings.TrimSpace(history); h != "" {
		sb.WriteString("=== CONVERSACION RECIENTE ===\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}

	sb.WriteString("=== ESTRUCTURA DE LA RESPUESTA ===\n")
	fmt.Fprintf(&sb, "Adapta la respuesta al perfil %s.\n", dominant.Name)
	sb.WriteString("1. **Reflejo**: como ve la situacion alguien con tu estilo.\n")
	sb.WriteString("2. **Consejo practico**: que conviene hacer (una accion concreta).\n")
	fmt.Fprintf(&sb, "3. **Punto para pensar**: que diria sobre esto el color complementario (%s).\n", weakest.Name)
	return sb.String()
}

// BuildTeamPrompt describe la composicion del equipo y el color que falta.
func (b CoachPromptBuilder) BuildTeamPrompt(teamName string, stats domain.TeamStats) string {
	missing := b.kb.Profile(assessment.MissingColor(stats))

	var sb strings.Builder
	sb.WriteString("Eres un consultor organizacional senior y coach de directivos, experto en la metodologia DISC (los cuatro colores).\n")
	sb.WriteString("Tu tarea es entregar un analisis de equipo profundo, agudo y practico, en espanol profesional y en Markdown.\n\n")

	title := "EQUIPO"
	if name := strings.TrimSpace(teamName); name != "" {
		title = "EQUIPO " + strings.ToUpper(name)
	}
	fmt.Fprintf(&sb, "=== %s (%d participantes) ===\n", title, stats.Total)
	for _, c := range domain.AllColors() {
		p := b.kb.Profile(c)
		fmt.Fprintf(&sb, "- %s (%s): %d\n", p.Name, p.Adjective, stats.Count(c))
	}
	fmt.Fprintf(&sb, "- Color menos representado: %s\n\n", missing.Name)

	sb.WriteString("=== ESTRUCTURA DE LA RESPUESTA ===\n")
	sb.WriteString("1. **Diagnostico**: la dinamica del equipo a la luz de su composicion y del desafio.\n")
	sb.WriteString("2. **Analisis**: por que esta composicion tiene dificultades (o ventajas) frente al desafio. Identifica el color que falta.\n")
	sb.WriteString("3. **Plan de accion**: tres pasos de liderazgo concretos.\n")
	return sb.String()
}
