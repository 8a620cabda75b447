package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prudhvinik1/electoralsync/internal/models"
	"github.com/prudhvinik1/electoralsync/internal/services"
	"github.com/prudhvinik1/electoralsync/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultSyncLogLimit = 20
	maxSyncRequestBody  = 1 << 12
)

// SyncRunner triggers syncs. *services.SyncEngine satisfies it.
type SyncRunner interface {
	SyncElectoralEventTypes(ctx context.Context) services.SyncResult
	SyncElectoralEventsForType(ctx context.Context, eventTypeID int) (services.SyncResult, error)
	SyncFull(ctx context.Context) services.SyncResult
}

// SyncLogReader lists audit entries. *services.SyncAuditLog satisfies it.
type SyncLogReader interface {
	GetRecentSyncLogs(ctx context.Context, limit int) ([]*models.SyncLogEntry, error)
}

type SyncHandler struct {
	engine SyncRunner
	logs   SyncLogReader
	logger *zap.Logger
}

func NewSyncHandler(engine SyncRunner, logs SyncLogReader, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{engine: engine, logs: logs, logger: logger}
}

// Routes registers the audit log route on r and the sync triggers on protected.
func (h *SyncHandler) Routes(r chi.Router, protected chi.Router) {
	r.Get("/sync/logs", h.listLogs)
	protected.Post("/sync/types", h.syncTypes)
	protected.Post("/sync/events", h.syncEvents)
	protected.Post("/sync/full", h.syncFull)
}

type syncData struct {
	RecordsProcessed int   `json:"records_processed"`
	DurationMs       int64 `json:"duration_ms"`
}

type syncEventsRequest struct {
	EventTypeID json.RawMessage `json:"eventTypeId"`
}

func (h *SyncHandler) listLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.ParseLimit(r.URL.Query().Get("limit"), defaultSyncLogLimit,
		services.MinSyncLogLimit, services.MaxSyncLogLimit)
	if err != nil {
		writeError(w, r, h.logger, services.ErrInvalidLimit)
		return
	}

	entries, err := h.logs.GetRecentSyncLogs(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, h.logger, "Sync logs retrieved", entries)
}

func (h *SyncHandler) syncTypes(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, "Electoral event types", h.engine.SyncElectoralEventTypes(r.Context()))
}

func (h *SyncHandler) syncEvents(w http.ResponseWriter, r *http.Request) {
	var req syncEventsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSyncRequestBody)).Decode(&req); err != nil {
		writeError(w, r, h.logger, services.ErrInvalidEventTypeID)
		return
	}

	eventTypeID, err := parseEventTypeID(req.EventTypeID)
	if err != nil {
		writeError(w, r, h.logger, services.ErrInvalidEventTypeID)
		return
	}

	result, err := h.engine.SyncElectoralEventsForType(r.Context(), eventTypeID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeResult(w, "Electoral events", result)
}

func (h *SyncHandler) syncFull(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, "Full", h.engine.SyncFull(r.Context()))
}

// writeResult reports sync failures as success:false with the failure reason. They
// are expected outcomes of talking to the commission, not server errors.
func (h *SyncHandler) writeResult(w http.ResponseWriter, what string, result services.SyncResult) {
	resp := Response{
		Success: result.Success,
		Message: what + " sync completed",
		Data: syncData{
			RecordsProcessed: result.RecordsProcessed,
			DurationMs:       result.DurationMs,
		},
	}
	if !result.Success {
		resp.Message = what + " sync failed: " + result.Error
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// parseEventTypeID accepts a JSON integer or a string holding one.
func parseEventTypeID(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return utils.ParsePositiveInt(s)
	}
	return utils.ParsePositiveInt(string(raw))
}
