package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"podopt/internal/api"
	"podopt/internal/logging"
	"podopt/internal/optimize"
	"podopt/internal/services"
	"podopt/internal/webhook"
)

const queuedMessage = "Optimization queued."

type callbackRequest struct {
	UUID         string `form:"uuid" json:"uuid" binding:"required"`
	Status       *int   `form:"status" json:"status" binding:"required"`
	StatusString string `form:"status_string" json:"status_string" binding:"required"`
}

func (h *handlers) auphonicCallback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusUnprocessableEntity, "invalid callback: "+err.Error(), services.KindValidation)
		return
	}
	cb := webhook.Callback{
		UUID:         strings.TrimSpace(req.UUID),
		Status:       *req.Status,
		StatusString: req.StatusString,
	}
	if err := h.deps.Webhook.Handle(c.Request.Context(), cb); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) optimizeAudio(c *gin.Context) {
	id, ok := episodeID(c)
	if !ok {
		return
	}
	ctx := services.WithEpisodeID(c.Request.Context(), id)
	episode, err := h.deps.Episodes.GetEpisode(ctx, id)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	if err := optimize.CheckSubmittable(episode); err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	settings, err := h.deps.Settings()
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	if err := h.deps.Dispatcher.Submit(ctx, id, settings); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, h.logger), "optimization not queued", "optimization_rejected",
			logging.Error(err),
			logging.String(logging.FieldImpact, "episode was not submitted to Auphonic"),
			logging.String(logging.FieldErrorHint, "retry once the queue drains"),
		)
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusAccepted, api.MessageResponse{Message: queuedMessage})
}

func (h *handlers) getEpisode(c *gin.Context) {
	id, ok := episodeID(c)
	if !ok {
		return
	}
	episode, err := h.deps.Episodes.GetEpisode(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	if episode == nil {
		writeError(c, http.StatusNotFound, "episode not found", services.KindNotFound)
		return
	}
	c.JSON(http.StatusOK, api.EpisodeResponse{Episode: api.FromEpisode(episode)})
}

func (h *handlers) status(c *gin.Context) {
	payload := api.ServiceStatus{
		Status:     "ok",
		Dispatcher: api.FromDispatcherStats(h.deps.Dispatcher.Stats()),
	}
	counts, err := h.deps.Episodes.StatusCounts(c.Request.Context())
	if err != nil {
		payload.Status = "degraded"
		logging.WarnWithContext(logging.WithContext(c.Request.Context(), h.logger), "status counts unavailable", "catalog_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "status response omits episode counts"),
		)
	} else {
		payload.StatusCounts = api.FromStatusCounts(counts)
	}
	if h.deps.Quota != nil {
		if quota, ok := h.deps.Quota.Last(); ok {
			payload.Quota = api.FromQuota(quota)
		}
	}
	c.JSON(http.StatusOK, payload)
}

func episodeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "invalid episode id", services.KindValidation)
		return 0, false
	}
	return id, true
}
