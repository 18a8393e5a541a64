package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	enrollHandler := handlers.NewEnrollHandler(s.config, deps.Model, deps.Store)
	recognizeHandler := handlers.NewRecognizeHandler(s.config, deps.Model, deps.Pipeline)
	identitiesHandler := handlers.NewIdentitiesHandler(deps.Store)
	zonesHandler := handlers.NewZonesHandler(deps.Zones)
	attendanceHandler := handlers.NewAttendanceHandler(deps.Audit)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Faces
		r.Post("/enroll", enrollHandler.Enroll)
		r.Post("/recognize", recognizeHandler.Recognize)

		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Post("/identities/reset", identitiesHandler.Reset)

		// Geofence zones
		r.Get("/zones/{code}", zonesHandler.Get)
		r.Put("/zones/{code}", zonesHandler.Set)

		// Attendance log
		r.Get("/attendance.csv", attendanceHandler.Export)
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("OK - use /api/v1/enroll and /api/v1/recognize\n"))
	})
}
