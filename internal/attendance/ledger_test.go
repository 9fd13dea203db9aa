package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/database/mock"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedStudent(t *testing.T, repo *mock.Repository, id, name, roll string) {
	t.Helper()
	st := &database.Student{ID: id, Name: name, RollNumber: roll, Embedding: []float32{0, 0, 0}}
	if err := repo.CreateStudent(context.Background(), st); err != nil {
		t.Fatalf("seeding student: %v", err)
	}
}

func seedSession(t *testing.T, repo *mock.Repository, id, code, name string) {
	t.Helper()
	s := &database.Session{ID: id, Code: code, Name: name}
	if err := repo.CreateSession(context.Background(), s); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
}

func TestLedgerMark(t *testing.T) {
	repo := mock.NewRepository()
	seedStudent(t, repo, "s1", "Alice", "R001")
	seedSession(t, repo, "c1", "CS101", "Algorithms")

	ledger := NewLedger(repo, repo)
	ledger.now = fixedClock(time.Date(2026, 3, 9, 10, 30, 15, 0, time.UTC))

	rec, err := ledger.Mark(context.Background(), "s1", "c1")
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if rec.Date != "2026-03-09" {
		t.Errorf("expected date 2026-03-09, got %s", rec.Date)
	}
	if rec.Time != "10:30:15" {
		t.Errorf("expected time 10:30:15, got %s", rec.Time)
	}
	if rec.Status != database.StatusPresent {
		t.Errorf("expected status present, got %s", rec.Status)
	}
	if repo.RecordCount() != 1 {
		t.Errorf("expected 1 record, got %d", repo.RecordCount())
	}
}

func TestLedgerMarkDuplicateSameDay(t *testing.T) {
	repo := mock.NewRepository()
	seedStudent(t, repo, "s1", "Alice", "R001")
	seedSession(t, repo, "c1", "CS101", "Algorithms")

	ledger := NewLedger(repo, repo)
	ledger.now = fixedClock(time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC))

	if _, err := ledger.Mark(context.Background(), "s1", "c1"); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}

	// Same day, later time.
	ledger.now = fixedClock(time.Date(2026, 3, 9, 11, 45, 0, 0, time.UTC))
	_, err := ledger.Mark(context.Background(), "s1", "c1")
	var dup *DuplicateAttendanceError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateAttendanceError, got %v", err)
	}
	if dup.StudentName != "Alice" {
		t.Errorf("expected student name in error, got %q", dup.StudentName)
	}
	if dup.Date != "2026-03-09" {
		t.Errorf("expected date in error, got %q", dup.Date)
	}
	if repo.RecordCount() != 1 {
		t.Errorf("duplicate mark changed the ledger: %d records", repo.RecordCount())
	}
}

func TestLedgerMarkNextDaySucceeds(t *testing.T) {
	repo := mock.NewRepository()
	seedStudent(t, repo, "s1", "Alice", "R001")
	seedSession(t, repo, "c1", "CS101", "Algorithms")

	ledger := NewLedger(repo, repo)
	ledger.now = fixedClock(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC))
	if _, err := ledger.Mark(context.Background(), "s1", "c1"); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}

	ledger.now = fixedClock(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC))
	if _, err := ledger.Mark(context.Background(), "s1", "c1"); err != nil {
		t.Fatalf("next-day mark failed: %v", err)
	}
	if repo.RecordCount() != 2 {
		t.Errorf("expected 2 records, got %d", repo.RecordCount())
	}
}

func TestLedgerDuplicateNameFallsBackToID(t *testing.T) {
	repo := mock.NewRepository()
	seedStudent(t, repo, "s1", "Alice", "R001")
	seedSession(t, repo, "c1", "CS101", "Algorithms")

	ledger := NewLedger(repo, repo)
	ledger.now = fixedClock(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC))
	if _, err := ledger.Mark(context.Background(), "s1", "c1"); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}

	repo.GetStudentError = errors.New("connection lost")
	_, err := ledger.Mark(context.Background(), "s1", "c1")
	var dup *DuplicateAttendanceError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateAttendanceError, got %v", err)
	}
	if dup.StudentName != "s1" {
		t.Errorf("expected id fallback, got %q", dup.StudentName)
	}
}

func TestLedgerStorageFault(t *testing.T) {
	repo := mock.NewRepository()
	repo.InsertAttendanceError = errors.New("disk full")

	ledger := NewLedger(repo, repo)
	_, err := ledger.Mark(context.Background(), "s1", "c1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.As(err, new(*DuplicateAttendanceError)) {
		t.Error("storage fault misreported as duplicate")
	}
}

func TestLedgerConcurrentMarks(t *testing.T) {
	repo := mock.NewRepository()
	seedStudent(t, repo, "s1", "Alice", "R001")
	seedSession(t, repo, "c1", "CS101", "Algorithms")

	ledger := NewLedger(repo, repo)
	ledger.now = fixedClock(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC))

	const workers = 10
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Mark(context.Background(), "s1", "c1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, duplicates := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.As(err, new(*DuplicateAttendanceError)):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 successful mark, got %d", successes)
	}
	if duplicates != workers-1 {
		t.Errorf("expected %d duplicates, got %d", workers-1, duplicates)
	}
	if repo.RecordCount() != 1 {
		t.Errorf("expected exactly 1 stored record, got %d", repo.RecordCount())
	}
}
