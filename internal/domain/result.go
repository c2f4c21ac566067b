package domain

import "time"

// AssessmentResult son los ultimos Scores guardados de un usuario.
type AssessmentResult struct {
	UserID      string    `json:"user_id"`
	Scores      Scores    `json:"scores"`
	CompletedAt time.Time `json:"completed_at"`
}

// SimilarProfile es un usuario con una mezcla de colores cercana.
type SimilarProfile struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	TeamName    string  `json:"team"`
	Dominant    Color   `json:"dominant"`
	Distance    float64 `json:"distance"`
}
