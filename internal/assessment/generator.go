package assessment

import (
	"fmt"
	"math"
	"strings"

	"colors-coach/internal/domain"
)

// SecondaryThreshold es el porcentaje que debe superar el color secundario para entrar en el reporte.
const SecondaryThreshold = 20

// Ranking es el orden de los colores para unos Scores.
type Ranking struct {
	Totals domain.ColorTotals `json:"totals"`
	Order  [4]domain.Color    `json:"order"`
	Total  int                `json:"total"`
}

// Rank calcula totales por color y su orden descendente (empates: rojo, amarillo, verde, azul).
func Rank(scores domain.Scores) Ranking {
	totals := scores.ColorTotals()
	return Ranking{
		Totals: totals,
		Order:  totals.Ranked(),
		Total:  totals.Sum(),
	}
}

func (r Ranking) Dominant() domain.Color  { return r.Order[0] }
func (r Ranking) Secondary() domain.Color { return r.Order[1] }
func (r Ranking) Tertiary() domain.Color  { return r.Order[2] }
func (r Ranking) Weakest() domain.Color   { return r.Order[3] }

// Percentage redondea 100*color/total. Devuelve 0 si no hay total.
func (r Ranking) Percentage(c domain.Color) int {
	if r.Total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(r.Totals.Get(c)) / float64(r.Total)))
}

// Generator arma el reporte textual a partir de la base de conocimiento.
// Es seguro para uso concurrente: no guarda estado entre llamadas.
type Generator struct {
	kb *KnowledgeBase
}

func NewGenerator(kb *KnowledgeBase) *Generator {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	return &Generator{kb: kb}
}

// KnowledgeBase expone la base compartida (solo lectura).
func (g *Generator) KnowledgeBase() *KnowledgeBase {
	return g.kb
}

// Generate produce el reporte para scores. Nunca falla: sin puntaje devuelve el reporte indeterminado.
func (g *Generator) Generate(scores domain.Scores) domain.Analysis {
	ranking := Rank(scores)
	if ranking.Total <= 0 {
		return g.kb.Indeterminate()
	}

	r := reportInput{
		dominant:     g.kb.Profile(ranking.Dominant()),
		secondary:    g.kb.Profile(ranking.Secondary()),
		weakest:      g.kb.Profile(ranking.Weakest()),
		dominantPct:  ranking.Percentage(ranking.Dominant()),
		secondaryPct: ranking.Percentage(ranking.Secondary()),
		insight:      g.kb.Insight(ranking.Dominant(), ranking.Secondary()),
		closing:      g.kb.StrengthClosing(ranking.Dominant(), ranking.Secondary()),
	}
	r.withSecondary = r.secondaryPct > SecondaryThreshold

	return domain.Analysis{
		General:         r.general(),
		Strengths:       r.strengths(),
		Weaknesses:      r.weaknesses(),
		Recommendations: r.recommendations(),
	}
}

type reportInput struct {
	dominant      ColorProfile
	secondary     ColorProfile
	weakest       ColorProfile
	dominantPct   int
	secondaryPct  int
	withSecondary bool
	insight       string
	closing       string
}

func (r reportInput) general() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tu perfil muestra un predominio del estilo %s (%s), que representa cerca del %d%% de tu mezcla. Esto significa que tu tendencia natural va hacia %s",
		r.dominant.Name, r.dominant.Adjective, r.dominantPct, strings.ToLower(r.dominant.General))
	if r.withSecondary {
		fmt.Fprintf(&b, " Tu estilo secundario mas destacado es el %s (%s), que aporta cerca del %d%% al perfil. Esta combinacion te da un enfoque particular: %s",
			r.secondary.Name, r.secondary.Adjective, r.secondaryPct, r.insight)
	} else {
		b.WriteString(" Tu perfil esta muy enfocado, lo que vuelve tu estilo de comunicacion consistente y predecible para los demas.")
	}
	return b.String()
}

func (r reportInput) strengths() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tus fortalezas mas visibles provienen del estilo %s. Te destacas por %s y por %s.",
		r.dominant.Name, phrase(r.dominant.Strengths, 0), phrase(r.dominant.Strengths, 1))
	if r.withSecondary {
		fmt.Fprintf(&b, " El estilo %s suma %s y %s, lo que te convierte en alguien que %s",
			r.secondary.Name, phrase(r.secondary.Strengths, 0), phrase(r.secondary.Strengths, 1), r.closing)
	}
	return b.String()
}

func (r reportInput) weaknesses() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Toda fortaleza tiene su \"lado sombra\". El predominio del estilo %s puede traducirse a veces en %s o en %s.",
		r.dominant.Name, phrase(r.dominant.Weaknesses, 0), phrase(r.dominant.Weaknesses, 1))
	if r.withSecondary {
		fmt.Fprintf(&b, " La combinacion con el estilo %s puede generar un punto ciego especifico, como %s.",
			r.secondary.Name, phrase(r.secondary.Weaknesses, 0))
	}
	fmt.Fprintf(&b, " Ademas, la presencia relativamente baja del estilo %s en tu perfil indica que cualidades como %s y %s no son tu tendencia natural y requieren de ti un esfuerzo mas consciente.",
		r.weakest.Name, phrase(r.weakest.Strengths, 0), phrase(r.weakest.Strengths, 1))
	return b.String()
}

func (r reportInput) recommendations() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Para aprovechar al maximo tu potencial, enfocate en %s.", strings.ToLower(r.dominant.RecommendationFocus))
	if r.withSecondary {
		fmt.Fprintf(&b, " En paralelo, intenta adoptar herramientas del estilo %s: %s.", r.secondary.Name, strings.ToLower(r.secondary.RecommendationFocus))
	}
	fmt.Fprintf(&b, " Una recomendacion central para ti es prestar mas atencion a las cualidades del estilo %s. Por ejemplo, intenta de forma proactiva %s, aunque te resulte poco natural. Eso ampliara tu repertorio y te convertira en un comunicador mas completo y equilibrado.",
		r.weakest.Name, strings.ToLower(r.weakest.RecommendationFocus))
	return b.String()
}

func phrase(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}
