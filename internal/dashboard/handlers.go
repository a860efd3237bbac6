package dashboard

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/afroash/aqi-monitor/internal/models"
)

// SnapshotSource provides the latest dashboard snapshot. Refresher
// implements this.
type SnapshotSource interface {
	Latest() (models.Snapshot, bool)
	Interval() time.Duration
}

// Handler serves the dashboard pages and data
type Handler struct {
	snapshots SnapshotSource
	history   *HistoryBuffer
	hub       *Hub
	logger    zerolog.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(snapshots SnapshotSource, history *HistoryBuffer, hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		snapshots: snapshots,
		history:   history,
		hub:       hub,
		logger:    logger.With().Str("component", "dashboard").Logger(),
	}
}

// Register adds the dashboard routes to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("GET /partials/panel", h.HandlePanel)
	mux.HandleFunc("GET /api/dashboard-data", h.HandleDashboardData)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.Handle("GET /dashboard-stream", h.hub)
}

func (h *Handler) panelData() *PanelData {
	snap, ok := h.snapshots.Latest()
	if !ok {
		return &PanelData{RefreshSeconds: int(h.snapshots.Interval().Seconds())}
	}
	data := NewPanelData(snap, h.snapshots.Interval())
	return &data
}

// HandleIndex renders the full dashboard page
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, RenderDashboard)
}

// HandlePanel renders only the refreshable panel
func (h *Handler) HandlePanel(w http.ResponseWriter, r *http.Request) {
	h.render(w, RenderPanel)
}

// render buffers the output so a template failure still yields a clean 500
func (h *Handler) render(w http.ResponseWriter, fn func(io.Writer, *PanelData) error) {
	var buf bytes.Buffer
	if err := fn(&buf, h.panelData()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render dashboard")
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// DashboardData contains all data for the dashboard
type DashboardData struct {
	Current    *models.LivePrediction `json:"current"`
	History    []models.HistoryEntry  `json:"history"`
	Stats      HistoryStats           `json:"stats"`
	Sample     bool                   `json:"sample"`
	LastUpdate *time.Time             `json:"last_update"`
}

// HandleDashboardData returns the current prediction and trend as JSON
func (h *Handler) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	data := DashboardData{
		History: h.history.Entries(),
		Stats:   h.history.Stats(),
	}
	if snap, ok := h.snapshots.Latest(); ok {
		data.Current = &snap.Current
		data.Sample = snap.Sample
		data.LastUpdate = &snap.FetchedAt
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// HandleHealth reports dashboard liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_, ready := h.snapshots.Latest()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"ready":   ready,
		"clients": h.hub.ClientCount(),
	})
}
