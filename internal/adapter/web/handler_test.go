package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"match-orchestrator/internal/domain"
	"match-orchestrator/internal/usecase"
)

type mockRecommendUsecase struct {
	mock.Mock
}

func (m *mockRecommendUsecase) Execute(ctx context.Context, input usecase.RecommendInput) ([]domain.Recommendation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Recommendation), args.Error(1)
}

type mockSimilarUsecase struct {
	mock.Mock
}

func (m *mockSimilarUsecase) Execute(ctx context.Context, input usecase.SimilarInput) ([]domain.Recommendation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Recommendation), args.Error(1)
}

func requestContext(t *testing.T, target string, requester uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if requester != uuid.Nil {
		c.Set(requesterContextKey, requester)
	}
	return c, rec
}

func TestSearchRecommendations_OK(t *testing.T) {
	requester := uuid.New()
	recommend := new(mockRecommendUsecase)
	h := NewHandler(recommend, new(mockSimilarUsecase))

	recommend.On("Execute", mock.Anything, usecase.RecommendInput{
		Query:       "hiking",
		RequesterID: requester,
	}).Return([]domain.Recommendation{
		{Tenant: domain.Tenant{ID: uuid.New()}, Score: 0.9, Insight: "great match"},
	}, nil)

	c, rec := requestContext(t, "/v1/recommendations/search?query=hiking", requester)
	err := h.SearchRecommendations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"score":0.9`)
	assert.Contains(t, rec.Body.String(), `"ai_insight":"great match"`)
}

func TestSearchRecommendations_MissingQuery(t *testing.T) {
	recommend := new(mockRecommendUsecase)
	h := NewHandler(recommend, new(mockSimilarUsecase))

	c, rec := requestContext(t, "/v1/recommendations/search", uuid.New())
	err := h.SearchRecommendations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	recommend.AssertNotCalled(t, "Execute")
}

func TestSearchRecommendations_Unauthenticated(t *testing.T) {
	h := NewHandler(new(mockRecommendUsecase), new(mockSimilarUsecase))

	c, rec := requestContext(t, "/v1/recommendations/search?query=hiking", uuid.Nil)
	err := h.SearchRecommendations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchRecommendations_StorageError(t *testing.T) {
	requester := uuid.New()
	recommend := new(mockRecommendUsecase)
	h := NewHandler(recommend, new(mockSimilarUsecase))

	recommend.On("Execute", mock.Anything, mock.Anything).
		Return(nil, domain.ErrStorage)

	c, rec := requestContext(t, "/v1/recommendations/search?query=hiking", requester)
	err := h.SearchRecommendations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database error occurred")
}

func TestRecommendations_OK(t *testing.T) {
	requester := uuid.New()
	similar := new(mockSimilarUsecase)
	h := NewHandler(new(mockRecommendUsecase), similar)

	similar.On("Execute", mock.Anything, usecase.SimilarInput{RequesterID: requester}).
		Return([]domain.Recommendation{}, nil)

	c, rec := requestContext(t, "/v1/recommendations", requester)
	err := h.Recommendations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestRecommendations_RequesterNotFound(t *testing.T) {
	requester := uuid.New()
	similar := new(mockSimilarUsecase)
	h := NewHandler(new(mockRecommendUsecase), similar)

	similar.On("Execute", mock.Anything, mock.Anything).
		Return(nil, domain.ErrTenantNotFound)

	c, rec := requestContext(t, "/v1/recommendations", requester)
	err := h.Recommendations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendations_GenericErrorIs500(t *testing.T) {
	requester := uuid.New()
	similar := new(mockSimilarUsecase)
	h := NewHandler(new(mockRecommendUsecase), similar)

	similar.On("Execute", mock.Anything, mock.Anything).
		Return(nil, errors.New("search gateway timed out"))

	c, rec := requestContext(t, "/v1/recommendations", requester)
	err := h.Recommendations(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "search gateway timed out")
}
