package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/mcastellanos/cursoadmin-api/pkg/errors"
	"github.com/mcastellanos/cursoadmin-api/pkg/response"
)

// ScreenService is the surface every entity screen exposes: a resolved
// record list, a dual-mode submit, an edit session, and a delete.
type ScreenService[F, V any] interface {
	Records(ctx context.Context) ([]V, error)
	Refresh(ctx context.Context) error
	Submit(ctx context.Context, form F) (*V, error)
	StartEdit(ctx context.Context, id int64) (*F, error)
	Cancel()
	Delete(ctx context.Context, id int64) error
}

// ScreenHandler maps one screen service onto its route group. All screens
// share the same shape, so one handler covers them.
type ScreenHandler[F, V any] struct {
	name    string
	service ScreenService[F, V]
}

// NewScreenHandler constructs a handler for the named screen.
func NewScreenHandler[F, V any](name string, svc ScreenService[F, V]) *ScreenHandler[F, V] {
	return &ScreenHandler[F, V]{name: name, service: svc}
}

// Register mounts the screen routes under the given group.
func (h *ScreenHandler[F, V]) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.name)
	g.GET("", h.Records)
	g.POST("/refresh", h.Refresh)
	g.POST("/submit", h.Submit)
	g.POST("/:id/edit", h.StartEdit)
	g.POST("/cancel", h.Cancel)
	g.DELETE("/:id", h.Delete)
}

// Records returns the screen's resolved record list.
func (h *ScreenHandler[F, V]) Records(c *gin.Context) {
	records, err := h.service.Records(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Refresh discards the mirrored records and reloads from the remote
// collections, then returns the fresh list.
func (h *ScreenHandler[F, V]) Refresh(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.Records(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Submit creates a record, or updates the edit target when a session is
// active.
func (h *ScreenHandler[F, V]) Submit(c *gin.Context) {
	var form F
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Submit(c.Request.Context(), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// StartEdit opens an edit session and returns the pre-populated form.
func (h *ScreenHandler[F, V]) StartEdit(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	form, err := h.service.StartEdit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form)
}

// Cancel abandons the edit session.
func (h *ScreenHandler[F, V]) Cancel(c *gin.Context) {
	h.service.Cancel()
	response.NoContent(c)
}

// Delete removes a record.
func (h *ScreenHandler[F, V]) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid record id")
	}
	return id, nil
}
