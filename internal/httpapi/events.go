package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"podopt/internal/notifications"
	"podopt/internal/services"
)

const heartbeatEvent = "heartbeat"

// streamEvents sends the episode's current status, then every status change
// until the client disconnects.
func (h *handlers) streamEvents(c *gin.Context) {
	id, ok := episodeID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	episode, err := h.deps.Episodes.GetEpisode(ctx, id)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	if episode == nil {
		writeError(c, http.StatusNotFound, "episode not found", services.KindNotFound)
		return
	}

	events, cancel := h.deps.Events.Subscribe(id)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	var seq int
	send := func(name string, data any) {
		seq++
		c.Render(-1, sse.Event{Event: name, Id: strconv.Itoa(seq), Data: data})
	}
	send(notifications.EventStatusUpdated, notifications.StatusEvent(episode))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, open := <-events:
			if !open {
				return false
			}
			send(event.Name, event)
			return true
		case <-ticker.C:
			send(heartbeatEvent, gin.H{"ts": time.Now().UTC().Format(time.RFC3339)})
			return true
		}
	})
}
