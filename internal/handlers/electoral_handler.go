package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/prudhvinik1/electoralsync/internal/services"
	"github.com/prudhvinik1/electoralsync/internal/utils"
	"go.uber.org/zap"
)

const (
	msgNoCurrentElection = "No current municipal election found"
	msgUnhealthy         = "Service unhealthy"
)

// ElectoralReader is the read path served by ElectoralHandler. *services.ElectoralService satisfies it.
type ElectoralReader interface {
	GetElectoralEventTypes(ctx context.Context) ([]*models.ElectoralEventType, error)
	GetMunicipalElectionTypes(ctx context.Context) ([]*models.ElectoralEventType, error)
	GetElectoralEventsByType(ctx context.Context, eventTypeID int) ([]*models.ElectoralEvent, error)
	GetActiveMunicipalElections(ctx context.Context) ([]*models.ElectoralEvent, error)
	GetCurrentMunicipalElection(ctx context.Context) (*models.ElectoralEvent, error)
	GetMunicipalElectionHistory(ctx context.Context) ([]*models.ElectoralEvent, error)
	GetStatistics(ctx context.Context) (*models.ElectoralStatistics, error)
}

type ElectoralHandler struct {
	svc    ElectoralReader
	logger *zap.Logger
}

func NewElectoralHandler(svc ElectoralReader, logger *zap.Logger) *ElectoralHandler {
	return &ElectoralHandler{svc: svc, logger: logger}
}

func (h *ElectoralHandler) Routes(r chi.Router) {
	r.Get("/types", h.listTypes)
	r.Get("/types/municipal", h.listMunicipalTypes)
	r.Get("/events/{eventTypeId}", h.listEventsByType)
	r.Get("/municipal/active", h.listActiveMunicipal)
	r.Get("/municipal/current", h.currentMunicipal)
	r.Get("/municipal/history", h.municipalHistory)
	r.Get("/health", h.health)
}

func (h *ElectoralHandler) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.GetElectoralEventTypes(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, h.logger, "Electoral event types retrieved", types)
}

func (h *ElectoralHandler) listMunicipalTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.GetMunicipalElectionTypes(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, h.logger, "Municipal election types retrieved", types)
}

func (h *ElectoralHandler) listEventsByType(w http.ResponseWriter, r *http.Request) {
	eventTypeID, err := utils.ParsePositiveInt(chi.URLParam(r, "eventTypeId"))
	if err != nil {
		writeError(w, r, h.logger, services.ErrInvalidEventTypeID)
		return
	}

	events, err := h.svc.GetElectoralEventsByType(r.Context(), eventTypeID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, h.logger, "Electoral events retrieved", events)
}

func (h *ElectoralHandler) listActiveMunicipal(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.GetActiveMunicipalElections(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, h.logger, "Active municipal elections retrieved", events)
}

func (h *ElectoralHandler) currentMunicipal(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetCurrentMunicipalElection(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if event == nil {
		writeFailure(w, h.logger, http.StatusNotFound, msgNoCurrentElection)
		return
	}
	writeData(w, h.logger, "Current municipal election retrieved", event)
}

func (h *ElectoralHandler) municipalHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.GetMunicipalElectionHistory(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, h.logger, "Municipal election history retrieved", events)
}

type healthData struct {
	Status     string                      `json:"status"`
	Statistics *models.ElectoralStatistics `json:"statistics,omitempty"`
}

func (h *ElectoralHandler) health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStatistics(r.Context())
	if err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		writeJSON(w, h.logger, http.StatusServiceUnavailable, Response{
			Success: false,
			Message: msgUnhealthy,
			Data:    healthData{Status: "unhealthy"},
		})
		return
	}
	writeData(w, h.logger, "Service healthy", healthData{Status: "healthy", Statistics: stats})
}
