package assessment

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"colors-coach/internal/domain"
)

//go:embed questions.yaml
var defaultQuestionsYAML []byte

var (
	ErrInvalidQuestionnaire = errors.New("invalid questionnaire")
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrAnswerOutOfRange     = errors.New("answer out of range")
	ErrScoreOutOfRange      = errors.New("score out of range")
)

type questionFile struct {
	Questions []questionYAML `yaml:"questions"`
}

type questionYAML struct {
	ID           string   `yaml:"id"`
	Pair         []string `yaml:"pair"`
	Descriptions []string `yaml:"descriptions"`
	Columns      []string `yaml:"columns"`
}

// Questionnaire es el catalogo ordenado de preguntas. Se construye una vez y no cambia.
type Questionnaire struct {
	questions []domain.QuestionPair
	index     map[string]int
}

// LoadQuestionnaire parsea y valida un catalogo YAML.
func LoadQuestionnaire(data []byte) (*Questionnaire, error) {
	var file questionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidQuestionnaire, err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidQuestionnaire)
	}

	q := &Questionnaire{
		questions: make([]domain.QuestionPair, 0, len(file.Questions)),
		index:     make(map[string]int, len(file.Questions)),
	}
	for i, raw := range file.Questions {
		pair, err := raw.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: question #%d: %v", ErrInvalidQuestionnaire, i+1, err)
		}
		if _, dup := q.index[pair.ID]; dup {
			return nil, fmt.Errorf("%w: duplicated id %q", ErrInvalidQuestionnaire, pair.ID)
		}
		q.index[pair.ID] = len(q.questions)
		q.questions = append(q.questions, pair)
	}
	return q, nil
}

// LoadQuestionnaireFile lee un catalogo externo (QUESTIONNAIRE_PATH).
func LoadQuestionnaireFile(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questionnaire: %w", err)
	}
	return LoadQuestionnaire(data)
}

// DefaultQuestionnaire devuelve el catalogo embebido en el binario.
func DefaultQuestionnaire() (*Questionnaire, error) {
	return LoadQuestionnaire(defaultQuestionsYAML)
}

// MustDefaultQuestionnaire entra en panico si el catalogo embebido esta mal formado.
func MustDefaultQuestionnaire() *Questionnaire {
	q, err := DefaultQuestionnaire()
	if err != nil {
		panic(err)
	}
	return q
}

func (raw questionYAML) toDomain() (domain.QuestionPair, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return domain.QuestionPair{}, errors.New("empty id")
	}
	if len(raw.Pair) != 2 || strings.TrimSpace(raw.Pair[0]) == "" || strings.TrimSpace(raw.Pair[1]) == "" {
		return domain.QuestionPair{}, fmt.Errorf("%s: pair must have two non-empty traits", id)
	}
	if len(raw.Descriptions) != 2 {
		return domain.QuestionPair{}, fmt.Errorf("%s: descriptions must have two entries", id)
	}
	if len(raw.Columns) != 2 {
		return domain.QuestionPair{}, fmt.Errorf("%s: columns must have two axes", id)
	}
	col1 := domain.Axis(strings.ToLower(strings.TrimSpace(raw.Columns[0])))
	col2 := domain.Axis(strings.ToLower(strings.TrimSpace(raw.Columns[1])))
	if !col1.Valid() || !col2.Valid() {
		return domain.QuestionPair{}, fmt.Errorf("%s: unknown axis in %v", id, raw.Columns)
	}
	if col1 == col2 {
		return domain.QuestionPair{}, fmt.Errorf("%s: columns must be distinct", id)
	}
	if col1.Family() != col2.Family() {
		return domain.QuestionPair{}, fmt.Errorf("%s: columns %s/%s mix axis families", id, col1, col2)
	}

	return domain.QuestionPair{
		ID:           id,
		Pair:         [2]string{strings.TrimSpace(raw.Pair[0]), strings.TrimSpace(raw.Pair[1])},
		Descriptions: [2]string{strings.TrimSpace(raw.Descriptions[0]), strings.TrimSpace(raw.Descriptions[1])},
		Columns:      [2]domain.Axis{col1, col2},
	}, nil
}

// Questions devuelve una copia del catalogo en su orden original.
func (q *Questionnaire) Questions() []domain.QuestionPair {
	out := make([]domain.QuestionPair, len(q.questions))
	copy(out, q.questions)
	return out
}

func (q *Questionnaire) Len() int {
	return len(q.questions)
}

func (q *Questionnaire) Get(id string) (domain.QuestionPair, bool) {
	i, ok := q.index[id]
	if !ok {
		return domain.QuestionPair{}, false
	}
	return q.questions[i], true
}

// ValidateAnswers rechaza ids desconocidos y valores fuera de 0..6 (0 = sin responder).
func (q *Questionnaire) ValidateAnswers(answers domain.Answers) error {
	for id, v := range answers {
		if _, ok := q.index[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
		}
		if v < 0 || v > domain.AnswerMax {
			return fmt.Errorf("%w: %q=%d", ErrAnswerOutOfRange, id, v)
		}
	}
	return nil
}

// MaxAxisScore es el maximo que puede acumular un eje: cada pregunta aporta a lo sumo 5.
func (q *Questionnaire) MaxAxisScore() int {
	return (domain.AnswerMax - 1) * len(q.questions)
}

// ValidateScores rechaza Scores que este catalogo no puede producir, tambien los negativos.
func (q *Questionnaire) ValidateScores(scores domain.Scores) error {
	max := q.MaxAxisScore()
	for _, axis := range []domain.Axis{domain.AxisA, domain.AxisB, domain.AxisC, domain.AxisD} {
		if v := scores.Get(axis); v < 0 || v > max {
			return fmt.Errorf("%w: %s=%d (0..%d)", ErrScoreOutOfRange, axis, v, max)
		}
	}
	return nil
}

// Score aplica el motor de puntaje sobre este catalogo.
func (q *Questionnaire) Score(answers domain.Answers) domain.Scores {
	return ComputeScores(answers, q.questions)
}
