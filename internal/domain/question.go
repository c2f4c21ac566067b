package domain

// QuestionPair es un item del cuestionario: dos rasgos opuestos sobre un slider 1-6.
// Columns[0] recibe 6-v y Columns[1] recibe v-1.
type QuestionPair struct {
	ID           string    `json:"id"`
	Pair         [2]string `json:"pair"`
	Descriptions [2]string `json:"descriptions"`
	Columns      [2]Axis   `json:"columns"`
}

// Answers mapea id de pregunta a un valor 1-6. Ausente o 0 significa sin responder.
type Answers map[string]int

const (
	AnswerMin = 1
	AnswerMax = 6
)
