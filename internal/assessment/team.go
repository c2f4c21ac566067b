package assessment

import "colors-coach/internal/domain"

// AggregateTeam cuenta el color dominante de cada miembro con Scores.
// Los miembros sin resultados no suman ni a los colores ni a Total.
func AggregateTeam(members []domain.Member) domain.TeamStats {
	var stats domain.TeamStats
	for _, m := range members {
		if m.Scores == nil {
			continue
		}
		switch m.Scores.Dominant() {
		case domain.ColorRed:
			stats.Red++
		case domain.ColorYellow:
			stats.Yellow++
		case domain.ColorGreen:
			stats.Green++
		case domain.ColorBlue:
			stats.Blue++
		}
		stats.Total++
	}
	return stats
}

// TeamMap ubica a cada miembro con resultados en el plano de cuadrantes.
// X es el peso de a sobre a+b y Y el peso de d sobre c+d, ambos en 0-100.
func TeamMap(members []domain.Member) []domain.MapPoint {
	points := make([]domain.MapPoint, 0, len(members))
	for _, m := range members {
		if m.Scores == nil {
			continue
		}
		s := *m.Scores
		points = append(points, domain.MapPoint{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			X:           axisShare(s.A, s.A+s.B),
			Y:           axisShare(s.D, s.C+s.D),
			Dominant:    s.Dominant(),
		})
	}
	return points
}

func axisShare(part, total int) float64 {
	if total <= 0 {
		total = 1
	}
	return float64(part) / float64(total) * 100
}

// MissingColor devuelve el color menos representado del equipo. En empate gana el primero en orden de declaracion.
func MissingColor(stats domain.TeamStats) domain.Color {
	missing := domain.ColorRed
	for _, c := range domain.AllColors() {
		if stats.Count(c) < stats.Count(missing) {
			missing = c
		}
	}
	return missing
}
