package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/rollcall/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	studentsHandler := handlers.NewStudentsHandler(s.deps.Enroller, s.deps.Store, s.deps.Repository, s.deps.Index, s.deps.Reporter)
	sessionsHandler := handlers.NewSessionsHandler(s.deps.Repository)
	attendanceHandler := handlers.NewAttendanceHandler(s.deps.Service, s.deps.Reporter)
	statsHandler := handlers.NewStatsHandler(s.deps.Reporter)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Students
		r.Get("/students", studentsHandler.List)
		r.Post("/students", studentsHandler.Create)
		r.Delete("/students/{id}", studentsHandler.Delete)
		r.Get("/students/{id}/similar", studentsHandler.Similar)
		r.Get("/students/{id}/attendance", studentsHandler.History)

		// Sessions
		r.Get("/sessions", sessionsHandler.List)
		r.Post("/sessions", sessionsHandler.Create)
		r.Delete("/sessions/{id}", sessionsHandler.Delete)

		// Attendance
		r.Post("/attendance/mark", attendanceHandler.Mark)
		r.Post("/attendance/mark-all", attendanceHandler.MarkAll)
		r.Get("/attendance/report", attendanceHandler.Report)

		// Statistics
		r.Get("/stats/sessions/{id}", statsHandler.Session)
		r.Get("/stats/days/{date}", statsHandler.Day)
	})
}
