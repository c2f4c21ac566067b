package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"colors-coach/internal/assessment"
	"colors-coach/internal/domain"
	"colors-coach/internal/metrics"
)

type assessmentFixture struct {
	svc     *AssessmentService
	results *mockResultRepo
	users   *mockUserRepo
	sender  *mockEmailSender
	reg     *prometheus.Registry
}

func newAssessmentFixture(t *testing.T) assessmentFixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	f := assessmentFixture{
		results: newMockResultRepo(),
		users:   newMockUserRepo(),
		sender:  &mockEmailSender{},
		reg:     reg,
	}
	f.svc = NewAssessmentService(
		assessment.MustDefaultQuestionnaire(),
		assessment.NewGenerator(nil),
		f.results,
		f.users,
		f.sender,
		metrics.MustNewMetrics(reg),
		zap.NewNop(),
	)
	return f
}

func TestAssessmentService_SubmitSavesScores(t *testing.T) {
	f := newAssessmentFixture(t)

	// q1 = [Reservado, Expresivo] sobre columnas b/a: 6 suma todo a Expresivo.
	report, err := f.svc.Submit(context.Background(), "u1", domain.Answers{"q1": 6})
	require.NoError(t, err)

	assert.True(t, report.Saved)
	assert.Equal(t, domain.Scores{A: 5}, report.Scores)
	assert.Equal(t, domain.ColorRed, report.Dominant())
	assert.Equal(t, 50, report.Percentages[domain.ColorRed])
	assert.Equal(t, 50, report.Percentages[domain.ColorYellow])
	require.NotNil(t, report.CompletedAt)
	assert.NotEmpty(t, report.Analysis.General)

	saved, ok := f.results.results["u1"]
	require.True(t, ok)
	assert.Equal(t, report.Scores, saved.Scores)
	assert.Equal(t, *report.CompletedAt, saved.CompletedAt)

	n, err := testutil.GatherAndCount(f.reg, "colors_coach_assessment_submitted_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAssessmentService_SubmitPersistFailureStillReturnsReport(t *testing.T) {
	f := newAssessmentFixture(t)
	f.results.saveErr = errors.New("db down")

	report, err := f.svc.Submit(context.Background(), "u1", domain.Answers{"q1": 1})
	require.NoError(t, err)
	assert.False(t, report.Saved)
	assert.Equal(t, domain.ColorGreen, report.Dominant())
	assert.Equal(t, 1, f.results.saveCalls)

	expected := `
# HELP colors_coach_assessment_persist_failures_total Results that could not be persisted.
# TYPE colors_coach_assessment_persist_failures_total counter
colors_coach_assessment_persist_failures_total 1
`
	require.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "colors_coach_assessment_persist_failures_total"))
}

func TestAssessmentService_SubmitRejectsInvalidAnswers(t *testing.T) {
	f := newAssessmentFixture(t)

	_, err := f.svc.Submit(context.Background(), "u1", domain.Answers{"q999": 3})
	assert.ErrorIs(t, err, ErrAssessmentInvalidInput)
	assert.ErrorIs(t, err, assessment.ErrUnknownQuestion)

	_, err = f.svc.Submit(context.Background(), "u1", domain.Answers{"q1": 7})
	assert.ErrorIs(t, err, ErrAssessmentInvalidInput)

	_, err = f.svc.Submit(context.Background(), "  ", domain.Answers{"q1": 3})
	assert.ErrorIs(t, err, ErrAssessmentInvalidInput)

	assert.Zero(t, f.results.saveCalls)
}

func TestAssessmentService_EmptyAnswersAreIndeterminate(t *testing.T) {
	f := newAssessmentFixture(t)

	report, err := f.svc.AnalyzeAnswers(domain.Answers{})
	require.NoError(t, err)
	assert.Empty(t, report.Order)
	assert.Equal(t, domain.Color(""), report.Dominant())
	assert.Equal(t, assessment.DefaultKnowledgeBase().Indeterminate(), report.Analysis)
	assert.False(t, report.Saved)
}

func TestAssessmentService_Analyze(t *testing.T) {
	f := newAssessmentFixture(t)

	report, err := f.svc.Analyze(domain.Scores{A: 10, C: 10})
	require.NoError(t, err)
	assert.Equal(t, []domain.Color{domain.ColorRed, domain.ColorYellow, domain.ColorBlue, domain.ColorGreen}, report.Order)
	assert.Equal(t, 50, report.Percentages[domain.ColorRed])
	assert.Equal(t, 0, report.Percentages[domain.ColorGreen])

	_, err = f.svc.Analyze(domain.Scores{A: -1})
	assert.ErrorIs(t, err, ErrAssessmentInvalidInput)
}

func TestAssessmentService_AnalyzeRejectsImpossibleScores(t *testing.T) {
	f := newAssessmentFixture(t)

	// Con 20 preguntas cada eje llega a 100 como maximo.
	_, err := f.svc.Analyze(domain.Scores{A: 100, B: 100, C: 100, D: 100})
	require.NoError(t, err)

	for _, scores := range []domain.Scores{
		{A: 101},
		{A: math.MaxInt64, C: 1},
		{D: math.MaxInt32},
	} {
		_, err := f.svc.Analyze(scores)
		assert.ErrorIs(t, err, ErrAssessmentInvalidInput, "scores %+v", scores)
		assert.ErrorIs(t, err, assessment.ErrScoreOutOfRange, "scores %+v", scores)
	}
}

func TestAssessmentService_GetResult(t *testing.T) {
	f := newAssessmentFixture(t)

	_, err := f.svc.GetResult(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrResultNotFound)

	completed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	f.results.results["u1"] = domain.AssessmentResult{UserID: "u1", Scores: domain.Scores{B: 30, D: 20, A: 5, C: 10}, CompletedAt: completed}

	report, err := f.svc.GetResult(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, report.Saved)
	assert.Equal(t, domain.ColorGreen, report.Dominant())
	require.NotNil(t, report.CompletedAt)
	assert.Equal(t, completed, *report.CompletedAt)

	scores, err := f.svc.Scores(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, scores.B)

	f.results.getErr = errors.New("db down")
	_, err = f.svc.GetResult(context.Background(), "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrResultNotFound)
}

func TestAssessmentService_SimilarClampsK(t *testing.T) {
	f := newAssessmentFixture(t)
	f.results.results["u1"] = domain.AssessmentResult{UserID: "u1", Scores: domain.Scores{A: 10, C: 10}}
	f.results.similar = []domain.SimilarProfile{{UserID: "u2", Dominant: domain.ColorRed, Distance: 0.1}}

	profiles, err := f.svc.Similar(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, defaultSimilarProfiles, f.results.lastK)
	assert.Len(t, f.results.lastMix.Slice(), 4)

	_, err = f.svc.Similar(context.Background(), "u1", 500)
	require.NoError(t, err)
	assert.Equal(t, maxSimilarProfiles, f.results.lastK)

	_, err = f.svc.Similar(context.Background(), "nobody", 3)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestAssessmentService_EmailReport(t *testing.T) {
	f := newAssessmentFixture(t)

	assert.ErrorIs(t, f.svc.EmailReport(context.Background(), "u1"), ErrUserNotFound)

	require.NoError(t, f.users.Create(context.Background(), domain.User{ID: "u1", Email: "ana@example.com", DisplayName: "Ana"}))
	assert.ErrorIs(t, f.svc.EmailReport(context.Background(), "u1"), ErrResultNotFound)

	f.results.results["u1"] = domain.AssessmentResult{UserID: "u1", Scores: domain.Scores{A: 10, C: 10}}
	require.NoError(t, f.svc.EmailReport(context.Background(), "u1"))
	assert.Equal(t, "ana@example.com", f.sender.reportTo)
	assert.Equal(t, "Ana", f.sender.reportName)
	assert.Contains(t, f.sender.reportAnalysis.General, "Rojo")

	f.sender.err = errors.New("smtp down")
	assert.ErrorIs(t, f.svc.EmailReport(context.Background(), "u1"), ErrEmailSendFailure)
}

func TestAssessmentService_NotConfigured(t *testing.T) {
	var svc *AssessmentService
	_, err := svc.Submit(context.Background(), "u1", nil)
	assert.ErrorIs(t, err, ErrAssessmentNotConfigured)
	assert.Nil(t, svc.Questionnaire())
}
