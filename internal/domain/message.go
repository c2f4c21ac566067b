package domain

import "time"

const (
	CoachModeIndividual = "individual"
	CoachModeTeam       = "team"
)

// CoachMessage guarda un turno de conversacion con el coach.
type CoachMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Mode      string    `json:"mode"`
	Subject   string    `json:"subject,omitempty"` // equipo consultado en modo team
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
