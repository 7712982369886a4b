package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/reeldeck/internal/player"
	"github.com/ngenohkevin/reeldeck/internal/session"
)

type playerResponse struct {
	ID    string          `json:"id"`
	State player.Snapshot `json:"state"`
}

// CreatePlayer handles POST /api/player
func (h *Handlers) CreatePlayer(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: path is required"})
		return
	}

	p, err := h.sessions.NewPlayer(req.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, playerResponse{ID: p.ID, State: p.Controller.Snapshot()})
}

// GetPlayer handles GET /api/player/:id
func (h *Handlers) GetPlayer(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, playerResponse{ID: p.ID, State: p.Controller.Snapshot()})
}

// PlayerAction handles POST /api/player/:id/action. The close action tears
// the whole session down.
func (h *Handlers) PlayerAction(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: action is required"})
		return
	}

	if req.Action == "close" {
		if err := h.sessions.ClosePlayer(p.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, playerResponse{ID: p.ID, State: p.Controller.Snapshot()})
		return
	}

	ev, err := req.event()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dispatch(c, p, ev)
}

// PlayerGesture handles POST /api/player/:id/gesture
func (h *Handlers) PlayerGesture(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}

	var req gestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: phase is required"})
		return
	}

	ev, err := req.event()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dispatch(c, p, ev)
}

// PlayerMedia handles POST /api/player/:id/media, the video element's
// duration, position and ended callbacks
func (h *Handlers) PlayerMedia(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}

	var req mediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: event is required"})
		return
	}

	ev, err := req.event()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dispatch(c, p, ev)
}

// PlayerFullscreen handles POST /api/player/:id/fullscreen
func (h *Handlers) PlayerFullscreen(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}

	var req fullscreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	h.dispatch(c, p, req.event())
}

// PlayerEvents handles GET /api/player/:id/events (SSE)
func (h *Handlers) PlayerEvents(c *gin.Context) {
	p, ok := h.player(c)
	if !ok {
		return
	}
	first := session.Message{Type: session.TypeState, Data: p.Controller.Snapshot()}
	streamHub(c, p.Hub, &first)
}

// ClosePlayer handles DELETE /api/player/:id
func (h *Handlers) ClosePlayer(c *gin.Context) {
	if err := h.sessions.ClosePlayer(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session closed"})
}

func (h *Handlers) player(c *gin.Context) (*session.Player, bool) {
	p, err := h.sessions.Player(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return p, true
}

func (h *Handlers) dispatch(c *gin.Context, p *session.Player, ev player.Event) {
	c.JSON(http.StatusOK, playerResponse{ID: p.ID, State: p.Controller.Dispatch(ev)})
}
