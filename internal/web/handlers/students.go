package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/rollcall/internal/attendance"
	"github.com/kozaktomas/rollcall/internal/database"
	"github.com/kozaktomas/rollcall/internal/roster"
)

// StudentsHandler handles student enrollment endpoints.
type StudentsHandler struct {
	enroller *roster.Enroller
	store    *roster.Store
	students database.StudentRepository
	index    *roster.SimilarityIndex
	reporter *attendance.Reporter
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(enroller *roster.Enroller, store *roster.Store, students database.StudentRepository, index *roster.SimilarityIndex, reporter *attendance.Reporter) *StudentsHandler {
	return &StudentsHandler{
		enroller: enroller,
		store:    store,
		students: students,
		index:    index,
		reporter: reporter,
	}
}

type studentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	ImagePath  string `json:"image_path,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func toStudentResponse(st *database.Student) studentResponse {
	resp := studentResponse{
		ID:         st.ID,
		Name:       st.Name,
		RollNumber: st.RollNumber,
		ImagePath:  st.ImagePath,
	}
	if !st.CreatedAt.IsZero() {
		resp.CreatedAt = st.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// List returns all enrolled students, without embeddings.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.ListStudents(r.Context())
	if err != nil {
		log.Printf("listing students: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	resp := make([]studentResponse, 0, len(students))
	for i := range students {
		resp = append(resp, toStudentResponse(&students[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"students": resp,
		"count":    len(resp),
	})
}

// Create enrolls a new student from a multipart form with name, roll_number
// and a photo containing exactly one face.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	imageData, err := readImageUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}

	name := r.FormValue("name")
	rollNumber := r.FormValue("roll_number")
	if name == "" || rollNumber == "" {
		respondError(w, http.StatusBadRequest, "name and roll_number are required")
		return
	}

	student, err := h.enroller.Enroll(r.Context(), name, rollNumber, imageData, "")
	if err != nil {
		var dup *roster.DuplicateRollNumberError
		switch {
		case errors.Is(err, roster.ErrNoFaceDetected):
			respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
		case errors.Is(err, roster.ErrAmbiguousEnrollment):
			respondError(w, http.StatusUnprocessableEntity, "image must contain exactly one face")
		case errors.As(err, &dup):
			respondError(w, http.StatusConflict, dup.Error())
		default:
			log.Printf("enrolling %s: %v", sanitizeForLog(name), err)
			respondError(w, http.StatusInternalServerError, "enrollment failed")
		}
		return
	}

	respondJSON(w, http.StatusCreated, toStudentResponse(student))
}

// Delete withdraws a student, cascading to their attendance records.
func (h *StudentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.enroller.Withdraw(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		log.Printf("deleting student %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete student")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Similar returns the students whose enrollment photos look closest to the
// given student's. Useful for spotting enrollments likely to confuse the
// matcher.
func (h *StudentsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	student, ok := h.store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	k := 5
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = n
	}

	// Ask for one extra neighbor; the student themselves is the nearest.
	neighbors, err := h.index.Search(student.Embedding, k+1)
	if err != nil {
		log.Printf("similarity search for %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	type neighborResponse struct {
		StudentID string  `json:"student_id"`
		Name      string  `json:"name"`
		Distance  float64 `json:"distance"`
	}
	resp := make([]neighborResponse, 0, k)
	for _, n := range neighbors {
		if n.StudentID == id {
			continue
		}
		resp = append(resp, neighborResponse(n))
		if len(resp) == k {
			break
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"similar": resp})
}

// History returns every attendance row for a student.
func (h *StudentsHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rows, err := h.reporter.StudentHistory(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		log.Printf("attendance history for %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"records": toRowResponses(rows),
		"count":   len(rows),
	})
}
