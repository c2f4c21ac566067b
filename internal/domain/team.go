package domain

import "time"

type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
}

// Member es un usuario visto desde el tablero de un equipo. Scores es nil si no completo el cuestionario.
type Member struct {
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	TeamName    string     `json:"team"`
	Role        string     `json:"role"`
	Scores      *Scores    `json:"scores,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TeamStats cuenta el color dominante de cada miembro con resultados.
type TeamStats struct {
	Red    int `json:"red"`
	Yellow int `json:"yellow"`
	Green  int `json:"green"`
	Blue   int `json:"blue"`
	Total  int `json:"total"`
}

func (t TeamStats) Count(c Color) int {
	switch c {
	case ColorRed:
		return t.Red
	case ColorYellow:
		return t.Yellow
	case ColorGreen:
		return t.Green
	case ColorBlue:
		return t.Blue
	}
	return 0
}

// MapPoint ubica a un miembro en el plano (a vs b, d vs c), en porcentajes 0-100.
type MapPoint struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Dominant    Color   `json:"dominant"`
}
