package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/usecase"
)

type Handler struct {
	recommendUsecase usecase.RecommendUsecase
	similarUsecase   usecase.SimilarUsecase
}

func NewHandler(
	recommendUsecase usecase.RecommendUsecase,
	similarUsecase usecase.SimilarUsecase,
) *Handler {
	return &Handler{
		recommendUsecase: recommendUsecase,
		similarUsecase:   similarUsecase,
	}
}

// Ranked recommendations for a free-text query
// (GET /v1/recommendations/search?query=...)
func (h *Handler) SearchRecommendations(c echo.Context) error {
	requesterID, ok := RequesterID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	}

	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	recs, err := h.recommendUsecase.Execute(c.Request().Context(), usecase.RecommendInput{
		Query:       query,
		RequesterID: requesterID,
	})
	if err != nil {
		return recommendationError(c, err)
	}
	return c.JSON(http.StatusOK, recs)
}

// Ranked recommendations from the precomputed similarity index
// (GET /v1/recommendations)
func (h *Handler) Recommendations(c echo.Context) error {
	requesterID, ok := RequesterID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	}

	recs, err := h.similarUsecase.Execute(c.Request().Context(), usecase.SimilarInput{
		RequesterID: requesterID,
	})
	if err != nil {
		return recommendationError(c, err)
	}
	return c.JSON(http.StatusOK, recs)
}

func recommendationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "tenant not found"})
	case errors.Is(err, domain.ErrStorage):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error occurred"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
