package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/geofence"
	"github.com/kozaktomas/face-attendance/internal/identity"
)

// ZonesHandler handles per-identity geofence configuration.
type ZonesHandler struct {
	zones *geofence.Registry
}

// NewZonesHandler creates a new zones handler.
func NewZonesHandler(zones *geofence.Registry) *ZonesHandler {
	return &ZonesHandler{zones: zones}
}

// ZonesRequest carries zones as [lat, lng, radius_m] triples, the same shape
// the registry persists.
type ZonesRequest struct {
	Zones [][]float64 `json:"zones"`
}

// ZonesResponse echoes the zones configured for a code.
type ZonesResponse struct {
	OK    bool         `json:"ok"`
	Code  string       `json:"code"`
	Zones [][3]float64 `json:"zones"`
}

// Get returns the zones for a code, falling back to the default entry when
// the code has none of its own.
func (h *ZonesHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := identity.NormalizeCode(chi.URLParam(r, "code"))
	if code == "" {
		respondError(w, http.StatusBadRequest, errMissingInput)
		return
	}

	zones := h.zones.Zones(code)
	triples := make([][3]float64, 0, len(zones))
	for _, z := range zones {
		triples = append(triples, [3]float64{z.Lat, z.Lng, z.RadiusM})
	}

	respondJSON(w, http.StatusOK, ZonesResponse{OK: true, Code: code, Zones: triples})
}

// Set replaces the zone list for a code.
func (h *ZonesHandler) Set(w http.ResponseWriter, r *http.Request) {
	code := identity.NormalizeCode(chi.URLParam(r, "code"))
	if code == "" {
		respondError(w, http.StatusBadRequest, errMissingInput)
		return
	}

	var req ZonesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Zones) == 0 {
		respondError(w, http.StatusBadRequest, errEmptyZoneList)
		return
	}

	zones := make([]geofence.Zone, 0, len(req.Zones))
	for _, t := range req.Zones {
		if len(t) != 3 {
			respondError(w, http.StatusBadRequest, errInvalidZoneShape)
			return
		}
		z := geofence.Zone{Lat: t[0], Lng: t[1], RadiusM: t[2]}
		if err := z.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidZoneShape)
			return
		}
		zones = append(zones, z)
	}

	if err := h.zones.SetZones(code, zones); err != nil {
		log.Printf("zones: saving zones for %s failed: %v", sanitizeForLog(code), err)
		respondError(w, http.StatusInternalServerError, errPersistFailed)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(zones)})
}
