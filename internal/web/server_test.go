package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/rollcall/internal/attendance"
	"github.com/kozaktomas/rollcall/internal/database/mock"
	"github.com/kozaktomas/rollcall/internal/recognition"
	"github.com/kozaktomas/rollcall/internal/roster"
)

func testServer() *Server {
	repo := mock.NewRepository()
	store := roster.NewStore(3)
	ledger := attendance.NewLedger(repo, repo)
	return NewServer(Deps{
		Repository: repo,
		Store:      store,
		Enroller:   roster.NewEnroller(nil, repo, store, 3),
		Index:      roster.NewSimilarityIndex(store),
		Service:    attendance.NewService(nil, recognition.NewMatcher(0.6), store, ledger, repo),
		Reporter:   attendance.NewReporter(repo, repo, repo),
	}, "localhost", 0)
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}

func TestRoutesRegistered(t *testing.T) {
	s := testServer()

	// A GET against each read route must not 404 or 405; handlers over the
	// empty repository answer 200.
	for _, path := range []string{
		"/api/v1/students",
		"/api/v1/sessions",
		"/api/v1/attendance/report",
	} {
		req := httptest.NewRequest("GET", path, nil)
		recorder := httptest.NewRecorder()
		s.Router().ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, recorder.Code)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", recorder.Code)
	}
}
