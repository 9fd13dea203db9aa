package attendance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/database/mock"
)

// seedMarks records one mark per (student, date) pair through the ledger.
func seedMarks(t *testing.T, ledger *Ledger, sessionID string, marks map[string][]string) {
	t.Helper()
	for studentID, dates := range marks {
		for _, date := range dates {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				t.Fatalf("bad date %s: %v", date, err)
			}
			ledger.now = fixedClock(day.Add(10 * time.Hour))
			if _, err := ledger.Mark(context.Background(), studentID, sessionID); err != nil {
				t.Fatalf("seeding mark %s/%s: %v", studentID, date, err)
			}
		}
	}
}

func TestSessionStats(t *testing.T) {
	repo := mock.NewRepository()
	seedSession(t, repo, "c1", "CS101", "Algorithms")
	seedStudent(t, repo, "s1", "Alice", "R001")
	seedStudent(t, repo, "s2", "Bob", "R002")
	seedStudent(t, repo, "s3", "Carol", "R003")

	ledger := NewLedger(repo, repo)
	seedMarks(t, ledger, "c1", map[string][]string{
		"s1": {"2026-03-09", "2026-03-10", "2026-03-11"},
		"s2": {"2026-03-09", "2026-03-11"},
	})

	reporter := NewReporter(repo, repo, repo)
	stats, err := reporter.SessionStats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.SessionCode != "CS101" {
		t.Errorf("unexpected session code %s", stats.SessionCode)
	}
	if stats.Days != 3 {
		t.Fatalf("expected 3 class days, got %d", stats.Days)
	}
	if len(stats.Students) != 3 {
		t.Fatalf("expected 3 students, got %d", len(stats.Students))
	}

	byID := make(map[string]StudentStat)
	for _, s := range stats.Students {
		byID[s.StudentID] = s
	}
	if s := byID["s1"]; s.Present != 3 || math.Abs(s.Percentage-100) > 1e-9 {
		t.Errorf("unexpected stat for s1: %+v", s)
	}
	if s := byID["s2"]; s.Present != 2 || math.Abs(s.Percentage-200.0/3) > 1e-9 {
		t.Errorf("unexpected stat for s2: %+v", s)
	}
	if s := byID["s3"]; s.Present != 0 || s.Percentage != 0 {
		t.Errorf("unexpected stat for s3: %+v", s)
	}
}

func TestSessionStatsNoClassesHeld(t *testing.T) {
	repo := mock.NewRepository()
	seedSession(t, repo, "c1", "CS101", "Algorithms")
	seedStudent(t, repo, "s1", "Alice", "R001")

	reporter := NewReporter(repo, repo, repo)
	stats, err := reporter.SessionStats(context.Background(), "c1")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Days != 0 {
		t.Errorf("expected 0 days, got %d", stats.Days)
	}
	if stats.Students[0].Percentage != 0 {
		t.Errorf("expected 0%% with no classes held, got %f", stats.Students[0].Percentage)
	}
}

func TestSessionStatsUnknownSession(t *testing.T) {
	reporter := NewReporter(mock.NewRepository(), mock.NewRepository(), mock.NewRepository())
	_, err := reporter.SessionStats(context.Background(), "nope")
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDailyReport(t *testing.T) {
	repo := mock.NewRepository()
	seedSession(t, repo, "c1", "CS101", "Algorithms")
	seedSession(t, repo, "c2", "MA201", "Calculus")
	seedStudent(t, repo, "s1", "Alice", "R001")

	ledger := NewLedger(repo, repo)
	seedMarks(t, ledger, "c1", map[string][]string{"s1": {"2026-03-09"}})
	seedMarks(t, ledger, "c2", map[string][]string{"s1": {"2026-03-09"}})

	reporter := NewReporter(repo, repo, repo)
	ctx := context.Background()

	all, err := reporter.DailyReport(ctx, "2026-03-09", "")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 rows across sessions, got %d", len(all))
	}

	one, err := reporter.DailyReport(ctx, "2026-03-09", "c1")
	if err != nil {
		t.Fatalf("filtered report failed: %v", err)
	}
	if len(one) != 1 || one[0].SessionCode != "CS101" {
		t.Errorf("unexpected filtered rows: %+v", one)
	}
	if one[0].StudentName != "Alice" || one[0].RollNumber != "R001" {
		t.Errorf("row missing joined student fields: %+v", one[0])
	}

	empty, err := reporter.DailyReport(ctx, "2026-03-10", "")
	if err != nil {
		t.Fatalf("empty-day report failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no rows, got %d", len(empty))
	}
}

func TestStudentHistory(t *testing.T) {
	repo := mock.NewRepository()
	seedSession(t, repo, "c1", "CS101", "Algorithms")
	seedStudent(t, repo, "s1", "Alice", "R001")

	ledger := NewLedger(repo, repo)
	seedMarks(t, ledger, "c1", map[string][]string{"s1": {"2026-03-09", "2026-03-10"}})

	reporter := NewReporter(repo, repo, repo)
	rows, err := reporter.StudentHistory(context.Background(), "s1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}

	if _, err := reporter.StudentHistory(context.Background(), "nope"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown student, got %v", err)
	}
}

func TestDaySummary(t *testing.T) {
	repo := mock.NewRepository()
	seedSession(t, repo, "c1", "CS101", "Algorithms")
	seedStudent(t, repo, "s1", "Alice", "R001")
	seedStudent(t, repo, "s2", "Bob", "R002")

	ledger := NewLedger(repo, repo)
	seedMarks(t, ledger, "c1", map[string][]string{"s1": {"2026-03-09"}})

	reporter := NewReporter(repo, repo, repo)
	summary, err := reporter.DaySummary(context.Background(), "2026-03-09")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Present != 1 || summary.Enrolled != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}
