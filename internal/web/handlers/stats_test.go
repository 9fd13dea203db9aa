package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatsHandler_Session(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t, "c1", "CS101", "Algorithms")
	f.seedStudent(t, "s1", "Alice", "R001", []float32{0, 0, 0})
	f.seedStudent(t, "s2", "Bob", "R002", []float32{1, 1, 1})
	f.seedMark(t, "s1", "c1", "2026-03-09")
	f.seedMark(t, "s1", "c1", "2026-03-10")
	f.seedMark(t, "s2", "c1", "2026-03-09")

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/stats/sessions/c1", nil), map[string]string{"id": "c1"})
	recorder := httptest.NewRecorder()
	f.stats.Session(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp struct {
		SessionCode string `json:"session_code"`
		Days        int    `json:"days"`
		Students    []struct {
			StudentID  string  `json:"student_id"`
			Present    int     `json:"present"`
			Percentage float64 `json:"percentage"`
		} `json:"students"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Days != 2 || resp.SessionCode != "CS101" {
		t.Errorf("unexpected stats: %+v", resp)
	}
	for _, s := range resp.Students {
		switch s.StudentID {
		case "s1":
			if s.Present != 2 || s.Percentage != 100 {
				t.Errorf("unexpected stat for s1: %+v", s)
			}
		case "s2":
			if s.Present != 1 || s.Percentage != 50 {
				t.Errorf("unexpected stat for s2: %+v", s)
			}
		}
	}
}

func TestStatsHandler_SessionNotFound(t *testing.T) {
	f := newFixture(t)

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/stats/sessions/nope", nil), map[string]string{"id": "nope"})
	recorder := httptest.NewRecorder()
	f.stats.Session(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestStatsHandler_Day(t *testing.T) {
	f := newFixture(t)
	f.seedSession(t, "c1", "CS101", "Algorithms")
	f.seedStudent(t, "s1", "Alice", "R001", []float32{0, 0, 0})
	f.seedStudent(t, "s2", "Bob", "R002", []float32{1, 1, 1})
	f.seedMark(t, "s1", "c1", "2026-03-09")

	req := requestWithChiParams(httptest.NewRequest("GET", "/api/v1/stats/days/2026-03-09", nil), map[string]string{"date": "2026-03-09"})
	recorder := httptest.NewRecorder()
	f.stats.Day(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp struct {
		Date     string `json:"date"`
		Present  int    `json:"present"`
		Enrolled int    `json:"enrolled"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Present != 1 || resp.Enrolled != 2 {
		t.Errorf("unexpected summary: %+v", resp)
	}

	// Bad date.
	req = requestWithChiParams(httptest.NewRequest("GET", "/api/v1/stats/days/bad", nil), map[string]string{"date": "bad"})
	recorder = httptest.NewRecorder()
	f.stats.Day(recorder, req)
	assertStatusCode(t, recorder, http.StatusBadRequest)
}
