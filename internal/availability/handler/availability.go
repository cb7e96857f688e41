package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"fixwell/internal/availability/service"
	"fixwell/pkg/config"
	apperrors "fixwell/pkg/errors"
	httputil "fixwell/pkg/http"
	"fixwell/pkg/logger"
	"fixwell/pkg/timeutil"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	cfg     *config.Config
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, cfg *config.Config) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	duration, err := extractDuration(query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "error", writeErr)
		}
		return
	}

	slots, err := h.service.GetAvailableSlots(r.Context(), query.Get("date"), query.Get("service_type_id"), duration)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlots", "error", err)
	}
}

func (h *AvailabilityHandler) GetSlotsRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	duration, err := extractDuration(query)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlotsRange", "error", writeErr)
		}
		return
	}

	days, err := h.service.GetSlotsRange(r.Context(), query.Get("start"), query.Get("end"), query.Get("service_type_id"), duration)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlotsRange", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, days); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlotsRange", "error", err)
	}
}

func (h *AvailabilityHandler) GetNextSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, err := h.extractFrom(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetNextSlot", "error", writeErr)
		}
		return
	}

	slot, err := h.service.NextAvailable(r.Context(), r.URL.Query().Get("service_type_id"), from)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetNextSlot", "error", writeErr)
		}
		return
	}
	if slot == nil {
		if writeErr := httputil.WriteError(w, apperrors.NotFound("Available slot")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetNextSlot", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetNextSlot", "error", err)
	}
}

// extractDuration parses the optional duration parameter. It only
// matters for typeless queries; with a service_type_id the catalog
// duration is used and the parameter is ignored.
func extractDuration(query url.Values) (int, error) {
	raw := query.Get("duration")
	if raw == "" {
		return 0, nil
	}
	duration, err := strconv.Atoi(raw)
	if err != nil || duration <= 0 {
		return 0, apperrors.InvalidInput("invalid duration parameter: " + raw)
	}
	return duration, nil
}

// extractFrom builds the scan origin from the optional from/from_time
// parameters, defaulting to the current instant.
func (h *AvailabilityHandler) extractFrom(r *http.Request) (time.Time, error) {
	query := r.URL.Query()
	loc := h.cfg.Location()

	dateParam := query.Get("from")
	if dateParam == "" {
		return time.Now().In(loc), nil
	}

	day, err := time.ParseInLocation(httputil.DateLayout, dateParam, loc)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid from parameter: " + dateParam)
	}

	if timeParam := query.Get("from_time"); timeParam != "" {
		minutes, err := timeutil.TimeToMinutes(timeParam)
		if err != nil {
			return time.Time{}, apperrors.InvalidInput("invalid from_time parameter: " + timeParam)
		}
		return timeutil.AtMinutes(day, minutes, loc), nil
	}

	return day, nil
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/slots", h.GetSlots)
	router.GET("/api/v1/availability/slots/range", h.GetSlotsRange)
	router.GET("/api/v1/availability/next", h.GetNextSlot)
}
