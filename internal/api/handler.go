package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/halfer53/sepsis3-mimic/internal/lods"
	"github.com/halfer53/sepsis3-mimic/pkg/pagination"
)

// Handler serves computed scores over HTTP. It is read-only: scores are
// produced by the batch pipeline, never through the API.
type Handler struct {
	scores lods.ScoreRepository
}

func NewHandler(scores lods.ScoreRepository) *Handler {
	return &Handler{scores: scores}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/scores", h.ListScores)
	api.GET("/scores/:stay_id", h.GetScore)
	api.GET("/runs", h.ListRuns)
}

func (h *Handler) ListScores(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.scores.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetScore(c echo.Context) error {
	stayID, err := strconv.ParseInt(c.Param("stay_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid stay id")
	}
	score, err := h.scores.GetByStayID(c.Request().Context(), stayID)
	if err != nil {
		if errors.Is(err, lods.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "score not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, score)
}

func (h *Handler) ListRuns(c echo.Context) error {
	pg := pagination.FromContext(c)
	runs, err := h.scores.ListRuns(c.Request().Context(), pg.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, runs)
}
