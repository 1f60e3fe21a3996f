// README: Episode lifecycle handlers (§4.10), grounded on
// internal/http/handlers/order_handler.go's bind-validate-call-map shape,
// generalized from one order's CRUD-ish lifecycle to reset/step/close over
// a registry of live simulations.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"deliverysim/internal/agentenv"
	"deliverysim/internal/httpapi/episodes"
	"deliverysim/internal/metrics"
	"deliverysim/internal/scenario"
	"deliverysim/internal/types"
)

// EpisodeHandler wraps the in-process episode registry and an optional
// metrics store: a nil store means metrics are computed on demand and
// never persisted, the same optional-dependency shape matching.Store uses
// for its Redis backing.
type EpisodeHandler struct {
	registry *episodes.Registry
	metrics  *metrics.Store
}

func NewEpisodeHandler(registry *episodes.Registry, metricsStore *metrics.Store) *EpisodeHandler {
	return &EpisodeHandler{registry: registry, metrics: metricsStore}
}

// Create decodes a scenario body, validates it, and resets a fresh episode
// (§4.9 scenario validation + §4.8 "reset").
func (h *EpisodeHandler) Create(c *gin.Context) {
	var raw scenario.Raw
	if err := c.ShouldBindJSON(&raw); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	cfg, err := scenario.Validate(raw)
	if err != nil {
		writeSimError(c, err)
		return
	}

	id, env := h.registry.Create()
	obs, info, err := env.Reset(cfg)
	if err != nil {
		h.registry.Close(id)
		writeSimError(c, err)
		return
	}

	writeJSON(c, http.StatusCreated, gin.H{
		"episode_id":  id,
		"observation": obs,
		"info":        info,
	})
}

type stepReq struct {
	Action int `json:"action"`
}

// Step applies one agent action (§4.8 "step").
func (h *EpisodeHandler) Step(c *gin.Context) {
	env, ok := h.registry.Get(types.ID(c.Param("id")))
	if !ok {
		writeError(c, http.StatusNotFound, "episode not found")
		return
	}

	var req stepReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	obs, reward, terminated, truncated, info, err := env.Step(req.Action)
	if err != nil {
		writeSimError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, gin.H{
		"observation": obs,
		"reward":      reward,
		"terminated":  terminated,
		"truncated":   truncated,
		"info":        info,
	})
}

// Close releases an episode's kernel resources and, if a metrics store is
// wired, persists its final per-driver summary (§4.11).
func (h *EpisodeHandler) Close(c *gin.Context) {
	id := types.ID(c.Param("id"))
	env, ok := h.registry.Get(id)
	if !ok {
		writeError(c, http.StatusNotFound, "episode not found")
		return
	}

	if h.metrics != nil {
		drivers, delivered := env.Summary()
		ctx := c.Request.Context()
		h.persistSummary(ctx, id, drivers, delivered)
	}

	h.registry.Close(id)
	writeJSON(c, http.StatusOK, gin.H{"closed": true})
}

// Metrics returns the persisted, aggregated metrics for a closed episode.
func (h *EpisodeHandler) Metrics(c *gin.Context) {
	if h.metrics == nil {
		writeError(c, http.StatusServiceUnavailable, "metrics store not configured")
		return
	}
	id := types.ID(c.Param("id"))
	agg, err := h.metrics.Aggregate(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, agg)
}

func (h *EpisodeHandler) persistSummary(ctx context.Context, id types.ID, drivers []agentenv.DriverMetric, delivered int) {
	_ = h.metrics.Record(ctx, id, metrics.EntityEpisode, id, "orders_delivered", float64(delivered))
	for _, d := range drivers {
		_ = h.metrics.Record(ctx, id, metrics.EntityDriver, d.ID, "distance_travelled", d.DistanceTravelled)
		_ = h.metrics.Record(ctx, id, metrics.EntityDriver, d.ID, "time_spent_on_delivery", float64(d.TimeSpentOnDelivery))
		_ = h.metrics.Record(ctx, id, metrics.EntityDriver, d.ID, "orders_delivered", float64(d.OrdersDelivered))
	}
}
