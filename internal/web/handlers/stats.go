package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/rollcall/internal/attendance"
	"github.com/kozaktomas/rollcall/internal/database"
)

// StatsHandler handles attendance statistics endpoints.
type StatsHandler struct {
	reporter *attendance.Reporter
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(reporter *attendance.Reporter) *StatsHandler {
	return &StatsHandler{reporter: reporter}
}

// Session returns per-student attendance percentages for one session.
func (h *StatsHandler) Session(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.reporter.SessionStats(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		log.Printf("session stats for %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}

	type studentStat struct {
		StudentID   string  `json:"student_id"`
		StudentName string  `json:"student_name"`
		RollNumber  string  `json:"roll_number"`
		Present     int     `json:"present"`
		Percentage  float64 `json:"percentage"`
	}
	students := make([]studentStat, 0, len(stats.Students))
	for _, s := range stats.Students {
		students = append(students, studentStat(s))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id":   stats.SessionID,
		"session_code": stats.SessionCode,
		"session_name": stats.SessionName,
		"days":         stats.Days,
		"students":     students,
	})
}

// Day returns the headcount for one date across all sessions. The date
// defaults to today.
func (h *StatsHandler) Day(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	summary, err := h.reporter.DaySummary(r.Context(), date)
	if err != nil {
		log.Printf("day summary for %s: %v", sanitizeForLog(date), err)
		respondError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"date":     summary.Date,
		"present":  summary.Present,
		"enrolled": summary.Enrolled,
	})
}
