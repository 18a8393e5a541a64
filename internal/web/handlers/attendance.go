package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/audit"
)

// AttendanceHandler serves the attendance log.
type AttendanceHandler struct {
	log *audit.Log
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(auditLog *audit.Log) *AttendanceHandler {
	return &AttendanceHandler{log: auditLog}
}

// Export streams the full attendance log as a CSV download.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.log.Export()
	if err != nil {
		log.Printf("attendance: export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to export attendance log")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
