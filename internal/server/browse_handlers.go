package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/reeldeck/internal/files"
	"github.com/ngenohkevin/reeldeck/internal/session"
)

// browseResponse is the view of a gallery session. Listing failures are
// carried in the view's error field with a 200 status.
type browseResponse struct {
	ID string `json:"id"`
	files.View
	Chosen string `json:"chosen,omitempty"`
}

// CreateBrowse handles POST /api/browse
func (h *Handlers) CreateBrowse(c *gin.Context) {
	b, _ := h.sessions.NewBrowse(c.Request.Context())
	c.JSON(http.StatusCreated, browseResponse{ID: b.ID, View: h.settle(c, b)})
}

// GetBrowse handles GET /api/browse/:id
func (h *Handlers) GetBrowse(c *gin.Context) {
	b, ok := h.browse(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, browseResponse{ID: b.ID, View: b.Navigator.View()})
}

// OpenEntry handles POST /api/browse/:id/open. Opening a folder navigates
// into it; opening a video reports it as chosen and leaves the view alone.
func (h *Handlers) OpenEntry(c *gin.Context) {
	b, ok := h.browse(c)
	if !ok {
		return
	}

	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: path is required"})
		return
	}

	entry, isFile, err := b.Navigator.Open(req.Path)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := browseResponse{ID: b.ID, View: h.settle(c, b)}
	if isFile {
		resp.Chosen = entry.Path
	}
	c.JSON(http.StatusOK, resp)
}

// NavigateBack handles POST /api/browse/:id/back
func (h *Handlers) NavigateBack(c *gin.Context) {
	b, ok := h.browse(c)
	if !ok {
		return
	}
	b.Navigator.NavigateBack()
	c.JSON(http.StatusOK, browseResponse{ID: b.ID, View: h.settle(c, b)})
}

// NavigateRoot handles POST /api/browse/:id/root
func (h *Handlers) NavigateRoot(c *gin.Context) {
	b, ok := h.browse(c)
	if !ok {
		return
	}
	b.Navigator.NavigateToRoot()
	c.JSON(http.StatusOK, browseResponse{ID: b.ID, View: h.settle(c, b)})
}

// NavigateCrumb handles POST /api/browse/:id/crumb/:index
func (h *Handlers) NavigateCrumb(c *gin.Context) {
	b, ok := h.browse(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid breadcrumb index"})
		return
	}

	if err := b.Navigator.NavigateToCrumb(index); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, browseResponse{ID: b.ID, View: h.settle(c, b)})
}

// RefreshBrowse handles POST /api/browse/:id/refresh
func (h *Handlers) RefreshBrowse(c *gin.Context) {
	b, ok := h.browse(c)
	if !ok {
		return
	}
	b.Navigator.Refresh()
	c.JSON(http.StatusOK, browseResponse{ID: b.ID, View: h.settle(c, b)})
}

// BrowseEvents handles GET /api/browse/:id/events (SSE)
func (h *Handlers) BrowseEvents(c *gin.Context) {
	b, ok := h.browse(c)
	if !ok {
		return
	}
	first := session.Message{Type: session.TypeListing, Data: b.Navigator.View()}
	streamHub(c, b.Hub, &first)
}

// CloseBrowse handles DELETE /api/browse/:id
func (h *Handlers) CloseBrowse(c *gin.Context) {
	if err := h.sessions.CloseBrowse(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session closed"})
}

func (h *Handlers) browse(c *gin.Context) (*session.Browse, bool) {
	b, err := h.sessions.Browse(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return b, true
}

// settle waits for outstanding listings, bounded by waitTimeout. On timeout
// the view still shows loading and the listing follows on the event stream.
func (h *Handlers) settle(c *gin.Context, b *session.Browse) files.View {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.waitTimeout)
	defer cancel()

	_ = b.Navigator.Wait(ctx)
	return b.Navigator.View()
}
