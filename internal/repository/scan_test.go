package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"colors-coach/internal/domain"
)

type fakeRows struct {
	data   [][]any
	pos    int
	err    error
	closed bool
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.data) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...interface{}) error {
	row := f.data[f.pos-1]
	if len(row) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case **int:
			if v == nil {
				*d = nil
			} else {
				n := v.(int)
				*d = &n
			}
		case **time.Time:
			if v == nil {
				*d = nil
			} else {
				ts := v.(time.Time)
				*d = &ts
			}
		case *float64:
			*d = v.(float64)
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }
func (f *fakeRows) Close()     { f.closed = true }

func TestScanMembers_WithAndWithoutScores(t *testing.T) {
	done := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := &fakeRows{data: [][]any{
		{"u1", "ana@example.com", "Ana", "Ventas", "user", 10, 0, 10, 0, done},
		{"u2", "beto@example.com", "Beto", "Ventas", "admin", nil, nil, nil, nil, nil},
	}}

	members, err := scanMembers(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Scores == nil || *members[0].Scores != (domain.Scores{A: 10, C: 10}) {
		t.Fatalf("unexpected scores: %+v", members[0].Scores)
	}
	if members[0].CompletedAt == nil || !members[0].CompletedAt.Equal(done) {
		t.Fatalf("expected completed_at")
	}
	if members[1].Scores != nil || members[1].CompletedAt != nil {
		t.Fatalf("member without result should have nil scores")
	}
}

func TestScanMembers_PropagatesRowsError(t *testing.T) {
	rows := &fakeRows{err: errors.New("boom")}
	if _, err := scanMembers(rows); err == nil {
		t.Fatalf("expected rows error")
	}
}

func TestScanSimilar_ComputesDominant(t *testing.T) {
	rows := &fakeRows{data: [][]any{
		{"u2", "Caro", "General", 1, 9, 1, 9, 0.12},
	}}

	profiles, err := scanSimilar(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Dominant != domain.ColorGreen {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}
	if profiles[0].Distance != 0.12 {
		t.Fatalf("unexpected distance: %v", profiles[0].Distance)
	}
}

func TestColorMix_Shares(t *testing.T) {
	mix := ColorMix(domain.Scores{A: 10, C: 10}).Slice()
	want := []float32{0.5, 0.25, 0, 0.25}
	if len(mix) != len(want) {
		t.Fatalf("expected %d dimensions, got %d", len(want), len(mix))
	}
	for i := range want {
		if mix[i] != want[i] {
			t.Fatalf("dimension %d: expected %v, got %v", i, want[i], mix[i])
		}
	}
}

func TestPgErrorHelpers(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	fk := &pgconn.PgError{Code: "23503"}

	if !IsUniqueViolation(unique) || IsUniqueViolation(fk) {
		t.Fatalf("unique violation detection failed")
	}
	if !IsForeignKeyViolation(fk) || IsForeignKeyViolation(pgx.ErrNoRows) {
		t.Fatalf("foreign key violation detection failed")
	}
}
