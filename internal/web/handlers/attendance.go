package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/rollcall/internal/attendance"
	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/faceapi"
	"github.com/kozaktomas/rollcall/internal/recognition"
)

// AttendanceHandler handles attendance capture and report endpoints.
type AttendanceHandler struct {
	service  *attendance.Service
	reporter *attendance.Reporter
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(service *attendance.Service, reporter *attendance.Reporter) *AttendanceHandler {
	return &AttendanceHandler{
		service:  service,
		reporter: reporter,
	}
}

type matchOutcomeResponse struct {
	StudentID     string  `json:"student_id"`
	Name          string  `json:"name"`
	RollNumber    string  `json:"roll_number"`
	Distance      float64 `json:"distance"`
	Date          string  `json:"date"`
	Time          string  `json:"time,omitempty"`
	AlreadyMarked bool    `json:"already_marked"`
}

func toOutcomeResponse(o *attendance.Outcome) matchOutcomeResponse {
	resp := matchOutcomeResponse{
		StudentID:     o.Match.StudentID,
		Name:          o.Match.Name,
		RollNumber:    o.Match.RollNumber,
		Distance:      o.Match.Distance,
		Date:          o.Date,
		AlreadyMarked: o.AlreadyMarked,
	}
	if o.Record != nil {
		resp.Time = o.Record.Time
	}
	return resp
}

// captureImage reads and downscales the uploaded capture photo.
func captureImage(r *http.Request) ([]byte, error) {
	data, err := readImageUpload(r)
	if err != nil {
		return nil, err
	}
	// Large phone captures slow the detection service down; scale them to a
	// size detection quality does not suffer at.
	resized, err := faceapi.ResizeImage(data, maxImageDimension)
	if err != nil {
		// Not a decodable image; let the detection service be the judge.
		return data, nil
	}
	return resized, nil
}

// Mark identifies the face in the uploaded photo and marks the matched
// student present in the session.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	imageData, err := captureImage(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	outcome, err := h.service.MatchAndRecord(r.Context(), sessionID, imageData)
	if err != nil {
		h.respondCaptureError(w, sessionID, err)
		return
	}
	respondJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

// MarkAll identifies every face in the uploaded photo and marks each matched
// student, returning a per-face outcome.
func (h *AttendanceHandler) MarkAll(w http.ResponseWriter, r *http.Request) {
	imageData, err := captureImage(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	outcomes, err := h.service.MatchAndRecordAll(r.Context(), sessionID, imageData)
	if err != nil {
		h.respondCaptureError(w, sessionID, err)
		return
	}

	type faceResponse struct {
		FaceIndex int                   `json:"face_index"`
		Matched   bool                  `json:"matched"`
		Outcome   *matchOutcomeResponse `json:"outcome,omitempty"`
		Error     string                `json:"error,omitempty"`
	}
	faces := make([]faceResponse, 0, len(outcomes))
	marked := 0
	for _, o := range outcomes {
		fr := faceResponse{FaceIndex: o.FaceIndex}
		if o.Err != nil {
			fr.Error = o.Err.Error()
		} else {
			fr.Matched = true
			resp := toOutcomeResponse(o.Outcome)
			fr.Outcome = &resp
			if !o.Outcome.AlreadyMarked {
				marked++
			}
		}
		faces = append(faces, fr)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"faces":  faces,
		"marked": marked,
	})
}

func (h *AttendanceHandler) respondCaptureError(w http.ResponseWriter, sessionID string, err error) {
	var noMatch *recognition.NoMatchError
	var dup *attendance.DuplicateAttendanceError
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "session not found")
	case errors.As(err, &dup):
		respondError(w, http.StatusConflict, dup.Error())
	case errors.Is(err, attendance.ErrNoFaceDetected):
		respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
	case errors.Is(err, recognition.ErrEmptyRoster):
		respondError(w, http.StatusUnprocessableEntity, "no students enrolled")
	case errors.As(err, &noMatch):
		respondError(w, http.StatusUnprocessableEntity, noMatch.Error())
	default:
		log.Printf("attendance capture for session %s: %v", sanitizeForLog(sessionID), err)
		respondError(w, http.StatusInternalServerError, "attendance capture failed")
	}
}

type rowResponse struct {
	RecordID    string `json:"record_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	RollNumber  string `json:"roll_number"`
	SessionID   string `json:"session_id"`
	SessionCode string `json:"session_code"`
	SessionName string `json:"session_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
}

func toRowResponses(rows []database.AttendanceRow) []rowResponse {
	resp := make([]rowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, rowResponse(row))
	}
	return resp
}

// Report returns the attendance rows for a date, optionally filtered by
// session. The date defaults to today.
func (h *AttendanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	sessionID := r.URL.Query().Get("session_id")

	rows, err := h.reporter.DailyReport(r.Context(), date, sessionID)
	if err != nil {
		log.Printf("attendance report for %s: %v", sanitizeForLog(date), err)
		respondError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":    date,
		"records": toRowResponses(rows),
		"count":   len(rows),
	})
}
