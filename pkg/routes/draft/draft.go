package draft

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/starsandeep/sfsync/internal/repositories/draft"
	"github.com/starsandeep/sfsync/pkg/routes/base"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/starsandeep/sfsync/pkg/tracing"
)

type Service interface {
	SaveDraft(ctx context.Context, userID, sessionID string) (draft.Draft, error)
	ListDrafts(ctx context.Context, userID string) ([]draft.Draft, error)
	ResumeDraft(ctx context.Context, userID, draftID string) (session.Snapshot, error)
	DeleteDraft(ctx context.Context, userID, draftID string) error
}

type Handler struct {
	service Service
	logger  ectologger.Logger
}

func NewHandler(service Service, logger ectologger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/sessions/:id/draft", h.Save)
	g.GET("/drafts", h.List)
	g.POST("/drafts/:id/resume", h.Resume)
	g.DELETE("/drafts/:id", h.Delete)
}

type listResponse struct {
	Drafts []draft.Draft `json:"drafts"`
	Count  int           `json:"count"`
}

// Save stores the session as a draft.
// POST /api/v1/sessions/:id/draft
func (h *Handler) Save(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.draft.Save")
	defer span.End()

	userID, err := base.RequireUserID(c)
	if err != nil {
		return err
	}
	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	saved, err := h.service.SaveDraft(ctx, userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

// GET /api/v1/drafts
func (h *Handler) List(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.draft.List")
	defer span.End()

	userID, err := base.RequireUserID(c)
	if err != nil {
		return err
	}

	drafts, err := h.service.ListDrafts(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{Drafts: drafts, Count: len(drafts)})
}

// Resume opens a new session from a draft.
// POST /api/v1/drafts/:id/resume
func (h *Handler) Resume(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.draft.Resume")
	defer span.End()

	userID, err := base.RequireUserID(c)
	if err != nil {
		return err
	}
	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	snap, err := h.service.ResumeDraft(ctx, userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, snap)
}

// DELETE /api/v1/drafts/:id
func (h *Handler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.draft.Delete")
	defer span.End()

	userID, err := base.RequireUserID(c)
	if err != nil {
		return err
	}
	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteDraft(ctx, userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
