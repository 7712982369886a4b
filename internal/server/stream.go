package server

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/reeldeck/internal/session"
)

// heartbeat keeps idle event streams alive through proxies
const heartbeat = 15 * time.Second

// streamHub relays a session's messages as server-sent events until the
// client leaves or the session ends. first, when set, is sent before
// anything queued.
func streamHub(c *gin.Context, hub *session.Hub, first *session.Message) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	msgs, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()

	if first != nil {
		writeEvent(c, *first)
	}

	c.Stream(func(w io.Writer) bool {
		// queued messages go out before a disconnect is noticed
		select {
		case m, ok := <-msgs:
			if !ok {
				return false
			}
			writeEvent(c, m)
			return true
		default:
		}

		select {
		case m, ok := <-msgs:
			if !ok {
				return false
			}
			writeEvent(c, m)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func writeEvent(c *gin.Context, m session.Message) {
	data, err := json.Marshal(m.Data)
	if err != nil {
		c.SSEvent("error", gin.H{"error": err.Error()})
		return
	}
	c.SSEvent(m.Type, string(data))
}
