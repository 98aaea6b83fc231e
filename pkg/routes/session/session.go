package session

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/routes/base"
	"github.com/starsandeep/sfsync/pkg/session"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"github.com/starsandeep/sfsync/pkg/utils"
)

type Service interface {
	CreateSession(ctx context.Context, userID string, selection session.Selection) session.Snapshot
	GetSession(ctx context.Context, userID, id string) (session.Snapshot, error)
	SelectObjects(ctx context.Context, userID, id string, selection session.Selection) (session.Snapshot, error)
	Load(ctx context.Context, userID, id string) (session.Snapshot, error)
	UpdateRow(ctx context.Context, userID, id, sourceField string, update mapping.RowUpdate) (session.Snapshot, error)
	Resolve(ctx context.Context, userID, id string, key mapping.ResolutionKey) (session.Snapshot, error)
	Complete(ctx context.Context, userID, id string) (models.MappingUpdate, error)
	DeleteSession(ctx context.Context, userID, id string) error
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
	sessions := g.Group("/sessions")
	sessions.POST("", h.Create)
	sessions.GET("/:id", h.Get)
	sessions.PUT("/:id/objects", h.SelectObjects)
	sessions.POST("/:id/load", h.Load)
	sessions.PATCH("/:id/rows/:source_field", h.UpdateRow)
	sessions.POST("/:id/resolutions", h.Resolve)
	sessions.POST("/:id/complete", h.Complete)
	sessions.DELETE("/:id", h.Delete)
}

// Create starts a wizard session for an object pair.
// POST /api/v1/sessions
func (h *Handler) Create(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.Create")
	defer span.End()

	selection, err := utils.BindRequest[session.Selection](c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, h.service.CreateSession(ctx, base.UserID(c), selection))
}

// GET /api/v1/sessions/:id
func (h *Handler) Get(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.Get")
	defer span.End()

	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	snap, err := h.service.GetSession(ctx, base.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// SelectObjects changes the session's object pair.
// PUT /api/v1/sessions/:id/objects
func (h *Handler) SelectObjects(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.SelectObjects")
	defer span.End()

	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}
	selection, err := utils.BindRequest[session.Selection](c)
	if err != nil {
		return err
	}

	snap, err := h.service.SelectObjects(ctx, base.UserID(c), id, selection)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Load fetches and evaluates the mapping for the current pair.
// POST /api/v1/sessions/:id/load
func (h *Handler) Load(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.Load")
	defer span.End()

	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	snap, err := h.service.Load(ctx, base.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// UpdateRow edits one row's target or flags.
// PATCH /api/v1/sessions/:id/rows/:source_field
func (h *Handler) UpdateRow(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.UpdateRow")
	defer span.End()

	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}
	update, err := utils.BindRequest[mapping.RowUpdate](c)
	if err != nil {
		return err
	}

	snap, err := h.service.UpdateRow(ctx, base.UserID(c), id, c.Param("source_field"), update)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Resolve marks a reported mismatch as resolved.
// POST /api/v1/sessions/:id/resolutions
func (h *Handler) Resolve(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.Resolve")
	defer span.End()

	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}
	key, err := utils.BindRequest[mapping.ResolutionKey](c)
	if err != nil {
		return err
	}

	snap, err := h.service.Resolve(ctx, base.UserID(c), id, key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Complete returns the onUpdateMappings payload, or 422 with the gate failures.
// POST /api/v1/sessions/:id/complete
func (h *Handler) Complete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.Complete")
	defer span.End()

	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	update, err := h.service.Complete(ctx, base.UserID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, update)
}

// DELETE /api/v1/sessions/:id
func (h *Handler) Delete(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.session.Delete")
	defer span.End()

	id, err := base.ParseUUID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteSession(ctx, base.UserID(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
