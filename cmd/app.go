package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/rollcall/internal/attendance"
	"github.com/kozaktomas/rollcall/internal/config"
	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/database/postgres"
	"github.com/kozaktomas/rollcall/internal/database/sqlite"
	"github.com/kozaktomas/rollcall/internal/faceapi"
	"github.com/kozaktomas/rollcall/internal/recognition"
	"github.com/kozaktomas/rollcall/internal/roster"
)

// app is the fully wired application the commands run against.
type app struct {
	cfg      *config.Config
	repo     database.Repository
	store    *roster.Store
	enroller *roster.Enroller
	index    *roster.SimilarityIndex
	service  *attendance.Service
	reporter *attendance.Reporter
	client   *faceapi.Client
}

// openRepository selects the storage backend. DATABASE_URL picks PostgreSQL;
// without it the embedded SQLite database is used.
func openRepository(cfg *config.Config) (database.Repository, error) {
	dim := cfg.EmbeddingDim()
	if cfg.Database.URL != "" {
		fmt.Println("Using PostgreSQL backend")
		repo, err := postgres.Open(&postgres.Config{
			URL:          cfg.Database.URL,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
		}, dim)
		if err != nil {
			return nil, fmt.Errorf("opening PostgreSQL: %w", err)
		}
		return repo, nil
	}

	fmt.Printf("Using SQLite backend (%s)\n", cfg.Database.SQLitePath)
	repo, err := sqlite.Open(cfg.Database.SQLitePath, dim)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite: %w", err)
	}
	return repo, nil
}

// newApp opens the storage backend, loads the roster and wires the services.
// The caller owns the repository and must Close it.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()

	repo, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}

	dim := cfg.EmbeddingDim()
	store := roster.NewStore(dim)
	if err := store.Load(ctx, repo); err != nil {
		repo.Close()
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	fmt.Printf("Roster loaded: %d students\n", store.Count())

	client := faceapi.NewClient(cfg.FaceAPI.URL)
	matcher := recognition.NewMatcher(cfg.MatchThreshold())
	matcher.FirstHit = cfg.Matching.FirstHit
	ledger := attendance.NewLedger(repo, repo)

	return &app{
		cfg:      cfg,
		repo:     repo,
		store:    store,
		enroller: roster.NewEnroller(client, repo, store, dim),
		index:    roster.NewSimilarityIndex(store),
		service:  attendance.NewService(client, matcher, store, ledger, repo),
		reporter: attendance.NewReporter(repo, repo, repo),
		client:   client,
	}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		fmt.Printf("Warning: closing repository: %v\n", err)
	}
}

// findStudent resolves a student by id or name so commands accept either.
// Name lookup ignores case and diacritics.
func (a *app) findStudent(ref string) (database.Student, error) {
	if st, ok := a.store.Get(ref); ok {
		return st, nil
	}
	matches := a.store.FindByName(ref)
	switch len(matches) {
	case 0:
		return database.Student{}, fmt.Errorf("student %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return database.Student{}, fmt.Errorf("student name %q is ambiguous (%d matches), use the id", ref, len(matches))
	}
}

// findSession resolves a session by id or code so commands accept either.
func (a *app) findSession(ctx context.Context, ref string) (*database.Session, error) {
	if s, err := a.repo.GetSession(ctx, ref); err == nil {
		return s, nil
	}
	sessions, err := a.repo.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	for i := range sessions {
		if sessions[i].Code == ref {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("session %q not found", ref)
}
