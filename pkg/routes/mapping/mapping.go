package mapping

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/starsandeep/sfsync/pkg/mapping"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"github.com/starsandeep/sfsync/pkg/utils"
)

type Evaluator interface {
	Evaluate(ctx context.Context, req mapping.EvaluationRequest) models.Evaluation
}

type Handler struct {
	evaluator Evaluator
	logger    ectologger.Logger
}

func NewHandler(evaluator Evaluator, logger ectologger.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/mappings/evaluate", h.Evaluate)
}

// Evaluate scores and gates a posted row set.
// POST /api/v1/mappings/evaluate
func (h *Handler) Evaluate(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.mapping.Evaluate")
	defer span.End()

	req, err := utils.BindRequest[mapping.EvaluationRequest](c)
	if err != nil {
		return err
	}

	eval := h.evaluator.Evaluate(ctx, req)
	h.logger.WithContext(ctx).WithFields(map[string]any{
		"rows":        len(req.Rows),
		"can_proceed": eval.CanProceed,
	}).Debug("evaluated posted rows")

	return c.JSON(http.StatusOK, eval)
}
