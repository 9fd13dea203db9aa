package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/rollcall/internal/attendance"
	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/database/mock"
	"github.com/kozaktomas/rollcall/internal/faceapi"
	"github.com/kozaktomas/rollcall/internal/recognition"
	"github.com/kozaktomas/rollcall/internal/roster"
)

const testDim = 3

// stubDetector returns canned faces without a running detection service.
type stubDetector struct {
	faces []faceapi.Face
	err   error
}

func (d *stubDetector) DetectFaces(ctx context.Context, imageData []byte) (*faceapi.DetectResponse, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &faceapi.DetectResponse{FacesCount: len(d.faces), Faces: d.faces, Model: "stub"}, nil
}

// fixture wires the full handler dependency graph over in-memory fakes.
type fixture struct {
	repo     *mock.Repository
	store    *roster.Store
	detector *stubDetector

	students   *StudentsHandler
	sessions   *SessionsHandler
	attendance *AttendanceHandler
	stats      *StatsHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := mock.NewRepository()
	store := roster.NewStore(testDim)
	detector := &stubDetector{}
	enroller := roster.NewEnroller(detector, repo, store, testDim)
	index := roster.NewSimilarityIndex(store)
	ledger := attendance.NewLedger(repo, repo)
	service := attendance.NewService(detector, recognition.NewMatcher(0.6), store, ledger, repo)
	reporter := attendance.NewReporter(repo, repo, repo)

	return &fixture{
		repo:       repo,
		store:      store,
		detector:   detector,
		students:   NewStudentsHandler(enroller, store, repo, index, reporter),
		sessions:   NewSessionsHandler(repo),
		attendance: NewAttendanceHandler(service, reporter),
		stats:      NewStatsHandler(reporter),
	}
}

func (f *fixture) seedStudent(t *testing.T, id, name, roll string, emb []float32) {
	t.Helper()
	st := &database.Student{ID: id, Name: name, RollNumber: roll, Embedding: emb}
	if err := f.repo.CreateStudent(context.Background(), st); err != nil {
		t.Fatalf("seeding student: %v", err)
	}
	if err := f.store.Insert(*st); err != nil {
		t.Fatalf("seeding roster: %v", err)
	}
}

func (f *fixture) seedSession(t *testing.T, id, code, name string) {
	t.Helper()
	s := &database.Session{ID: id, Code: code, Name: name}
	if err := f.repo.CreateSession(context.Background(), s); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
}

func (f *fixture) seedMark(t *testing.T, studentID, sessionID, date string) {
	t.Helper()
	rec := &database.AttendanceRecord{
		ID:        studentID + "-" + sessionID + "-" + date,
		StudentID: studentID,
		SessionID: sessionID,
		Date:      date,
		Time:      "10:00:00",
		Status:    database.StatusPresent,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.repo.InsertAttendance(context.Background(), rec); err != nil {
		t.Fatalf("seeding attendance: %v", err)
	}
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// multipartRequest builds a request with an image file and form fields.
func multipartRequest(t *testing.T, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("writing field %s: %v", key, err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "capture.jpg")
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
			t.Fatalf("writing image: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d (body: %s)", expected, recorder.Code, recorder.Body.String())
	}
}

func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), v); err != nil {
		t.Fatalf("parsing response %q: %v", recorder.Body.String(), err)
	}
}
