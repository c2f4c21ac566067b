package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"colors-coach/internal/assessment"
	"colors-coach/internal/domain"
	"colors-coach/internal/email"
	"colors-coach/internal/metrics"
	"colors-coach/internal/repository"
)

var (
	ErrAssessmentNotConfigured = errors.New("assessment service not configured")
	ErrAssessmentInvalidInput  = errors.New("assessment invalid input")
	ErrResultNotFound          = errors.New("assessment result not found")
)

const (
	defaultSimilarProfiles = 5
	maxSimilarProfiles     = 20
)

// AssessmentReport es lo que ve el usuario al terminar el cuestionario.
type AssessmentReport struct {
	Scores      domain.Scores        `json:"scores"`
	Totals      domain.ColorTotals   `json:"totals"`
	Percentages map[domain.Color]int `json:"percentages"`
	Order       []domain.Color       `json:"order,omitempty"`
	Analysis    domain.Analysis      `json:"analysis"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	Saved       bool                 `json:"saved"`
}

// Dominant devuelve el color dominante, o "" si el reporte es indeterminado.
func (r AssessmentReport) Dominant() domain.Color {
	if len(r.Order) == 0 {
		return ""
	}
	return r.Order[0]
}

// AssessmentService coordina cuestionario, generador de reportes y persistencia de resultados.
type AssessmentService struct {
	questionnaire *assessment.Questionnaire
	generator     *assessment.Generator
	results       repository.ResultRepository
	users         repository.UserRepository
	emailSender   email.Sender
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

func NewAssessmentService(
	questionnaire *assessment.Questionnaire,
	generator *assessment.Generator,
	results repository.ResultRepository,
	users repository.UserRepository,
	emailSender email.Sender,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AssessmentService {
	if generator == nil {
		generator = assessment.NewGenerator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		questionnaire: questionnaire,
		generator:     generator,
		results:       results,
		users:         users,
		emailSender:   emailSender,
		metrics:       m,
		logger:        logger,
	}
}

func (s *AssessmentService) Questionnaire() []domain.QuestionPair {
	if s == nil || s.questionnaire == nil {
		return nil
	}
	return s.questionnaire.Questions()
}

// Submit puntua las respuestas, genera el reporte y guarda los Scores del usuario.
// Si la persistencia falla el reporte se devuelve igual con Saved=false.
func (s *AssessmentService) Submit(ctx context.Context, userID string, answers domain.Answers) (AssessmentReport, error) {
	if s == nil || s.questionnaire == nil {
		return AssessmentReport{}, ErrAssessmentNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AssessmentReport{}, ErrAssessmentInvalidInput
	}
	if err := s.questionnaire.ValidateAnswers(answers); err != nil {
		return AssessmentReport{}, fmt.Errorf("%w: %w", ErrAssessmentInvalidInput, err)
	}

	scores := s.questionnaire.Score(answers)
	report := s.buildReport(scores)
	completedAt := time.Now().UTC()
	report.CompletedAt = &completedAt
	s.metrics.IncAssessment(dominantLabel(report))

	if s.results == nil {
		return report, nil
	}
	err := s.results.Save(ctx, domain.AssessmentResult{
		UserID:      userID,
		Scores:      scores,
		CompletedAt: completedAt,
	})
	if err != nil {
		s.metrics.IncPersistFailure()
		s.logger.Error("save assessment result failed", zap.Error(err), zap.String("user_id", userID))
		return report, nil
	}
	report.Saved = true
	return report, nil
}

// AnalyzeAnswers es el modo personal: puntua y genera el reporte sin guardar nada.
func (s *AssessmentService) AnalyzeAnswers(answers domain.Answers) (AssessmentReport, error) {
	if s == nil || s.questionnaire == nil {
		return AssessmentReport{}, ErrAssessmentNotConfigured
	}
	if err := s.questionnaire.ValidateAnswers(answers); err != nil {
		return AssessmentReport{}, fmt.Errorf("%w: %w", ErrAssessmentInvalidInput, err)
	}
	return s.buildReport(s.questionnaire.Score(answers)), nil
}

// Analyze genera el reporte para Scores ya calculados. Solo acepta Scores que el catalogo puede producir.
func (s *AssessmentService) Analyze(scores domain.Scores) (AssessmentReport, error) {
	if s == nil || s.questionnaire == nil {
		return AssessmentReport{}, ErrAssessmentNotConfigured
	}
	if err := s.questionnaire.ValidateScores(scores); err != nil {
		return AssessmentReport{}, fmt.Errorf("%w: %w", ErrAssessmentInvalidInput, err)
	}
	return s.buildReport(scores), nil
}

// GetResult devuelve los ultimos Scores guardados con el reporte regenerado.
func (s *AssessmentService) GetResult(ctx context.Context, userID string) (AssessmentReport, error) {
	result, err := s.loadResult(ctx, userID)
	if err != nil {
		return AssessmentReport{}, err
	}
	report := s.buildReport(result.Scores)
	report.CompletedAt = &result.CompletedAt
	report.Saved = true
	return report, nil
}

// Scores devuelve solo los Scores guardados (para el coach individual).
func (s *AssessmentService) Scores(ctx context.Context, userID string) (domain.Scores, error) {
	result, err := s.loadResult(ctx, userID)
	if err != nil {
		return domain.Scores{}, err
	}
	return result.Scores, nil
}

// Similar busca los usuarios con la mezcla de colores mas parecida.
func (s *AssessmentService) Similar(ctx context.Context, userID string, k int) ([]domain.SimilarProfile, error) {
	result, err := s.loadResult(ctx, userID)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = defaultSimilarProfiles
	}
	if k > maxSimilarProfiles {
		k = maxSimilarProfiles
	}
	profiles, err := s.results.FindSimilar(ctx, userID, repository.ColorMix(result.Scores), k)
	if err != nil {
		return nil, fmt.Errorf("find similar profiles: %w", err)
	}
	return profiles, nil
}

// EmailReport envia el reporte regenerado al email del usuario.
func (s *AssessmentService) EmailReport(ctx context.Context, userID string) error {
	if s == nil || s.users == nil {
		return ErrAssessmentNotConfigured
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	result, err := s.loadResult(ctx, userID)
	if err != nil {
		return err
	}
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	analysis := s.generator.Generate(result.Scores)
	if err := s.emailSender.SendProfileReport(ctx, user.Email, user.DisplayName, analysis); err != nil {
		s.logger.Warn("send profile report failed", zap.Error(err), zap.String("user_id", userID))
		return ErrEmailSendFailure
	}
	return nil
}

func (s *AssessmentService) loadResult(ctx context.Context, userID string) (domain.AssessmentResult, error) {
	if s == nil || s.results == nil {
		return domain.AssessmentResult{}, ErrAssessmentNotConfigured
	}
	result, err := s.results.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AssessmentResult{}, ErrResultNotFound
		}
		return domain.AssessmentResult{}, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}

func (s *AssessmentService) buildReport(scores domain.Scores) AssessmentReport {
	ranking := assessment.Rank(scores)
	report := AssessmentReport{
		Scores:      scores,
		Totals:      ranking.Totals,
		Percentages: make(map[domain.Color]int, 4),
		Analysis:    s.generator.Generate(scores),
	}
	for _, c := range domain.AllColors() {
		report.Percentages[c] = ranking.Percentage(c)
	}
	if ranking.Total > 0 {
		report.Order = ranking.Order[:]
	}
	return report
}

func dominantLabel(r AssessmentReport) string {
	if d := r.Dominant(); d != "" {
		return string(d)
	}
	return "indeterminate"
}
