package apihttp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"grid-atlas/internal/observability/metrics"
)

// Handlers binds the service to the REST endpoints.
type Handlers struct {
	service *Service
	logger  *zap.SugaredLogger
}

// NewHandlers constructs the handler set.
func NewHandlers(service *Service, logger *zap.SugaredLogger) *Handlers {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handlers{service: service, logger: logger}
}

func (h *Handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) districtCapacity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.DistrictCapacity(r.Context()))
}

func (h *Handlers) gridLoad(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GridLoad(r.Context()))
}

func (h *Handlers) plants(w http.ResponseWriter, _ *http.Request) {
	plants := h.service.Plants()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(plants),
		"plants": plants,
	})
}

func (h *Handlers) windparks(w http.ResponseWriter, _ *http.Request) {
	parks := h.service.WindParks()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(parks),
		"windparks": parks,
	})
}

func (h *Handlers) stations(w http.ResponseWriter, _ *http.Request) {
	stations := h.service.Stations()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(stations),
		"stations": stations,
	})
}

func (h *Handlers) sitingCheck(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r.URL.Query().Get("lat"), -90, 90)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lat")
		return
	}
	lon, err := parseCoord(r.URL.Query().Get("lon"), -180, 180)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lon")
		return
	}
	writeJSON(w, http.StatusOK, h.service.CheckSiting(lat, lon))
}

func (h *Handlers) exportDistrictsXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := h.service.DistrictCapacity(r.Context())
	payload, err := BuildDistrictsXLSX(result)
	metrics.ObserveExport("xlsx", err, time.Since(start))
	if err != nil {
		h.logger.Errorw("xlsx export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="district_capacity.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handlers) exportDistrictsPDF(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result := h.service.DistrictCapacity(r.Context())
	payload, err := BuildDistrictsPDF(result)
	metrics.ObserveExport("pdf", err, time.Since(start))
	if err != nil {
		h.logger.Errorw("pdf export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="district_capacity.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	runs, err := h.service.ListRuns(r.Context(), r.URL.Query().Get("endpoint"), limit)
	if err != nil {
		h.logger.Errorw("run listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "archive unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

func (h *Handlers) invalidateCache(w http.ResponseWriter, _ *http.Request) {
	h.service.InvalidateCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func parseCoord(raw string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
