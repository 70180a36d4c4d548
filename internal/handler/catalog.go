package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// Catalog is the question bank used by the handlers
type Catalog interface {
	ListCategories(ctx context.Context) (map[int]string, error)
	ListQuestions(ctx context.Context, page int) (*service.QuestionPage, error)
	CreateQuestion(ctx context.Context, req service.CreateQuestionRequest) (*domain.Question, error)
	DeleteQuestion(ctx context.Context, id int) error
	SearchQuestions(ctx context.Context, req service.SearchRequest) (*service.QuestionList, error)
	ListQuestionsByCategory(ctx context.Context, categoryID int) (*service.QuestionList, error)
	NextQuizQuestion(ctx context.Context, req service.NextQuizRequest) (*domain.Question, error)
}

// CatalogHandler handles question and category HTTP requests
type CatalogHandler struct {
	catalog Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
	}
}

// Register registers the catalog routes
func (h *CatalogHandler) Register(e *echo.Echo) {
	e.GET("/categories", h.ListCategories)
	e.GET("/categories/", h.ListCategories)
	e.GET("/categories/:id/questions", h.ListQuestionsByCategory)
	e.GET("/questions", h.ListQuestions)
	e.GET("/questions/", h.ListQuestions)
	e.POST("/questions", h.CreateQuestion)
	e.DELETE("/questions/:id", h.DeleteQuestion)
	e.POST("/search", h.SearchQuestions)
	e.POST("/quizzes", h.NextQuizQuestion)
}

type successResponse struct {
	Success bool `json:"success"`
}

type categoriesResponse struct {
	Success    bool           `json:"success"`
	Categories map[int]string `json:"categories"`
}

type questionPageResponse struct {
	Success         bool               `json:"success"`
	Questions       []*domain.Question `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	Categories      map[int]string     `json:"categories"`
	CurrentCategory *string            `json:"current_category"`
}

type questionListResponse struct {
	Success         bool               `json:"success"`
	Questions       []*domain.Question `json:"questions"`
	TotalQuestions  int                `json:"total_questions"`
	CurrentCategory *string            `json:"current_category"`
}

type quizResponse struct {
	Success  bool             `json:"success"`
	Question *domain.Question `json:"question"`
}

// ListCategories godoc
// @Summary List categories
// @Description Get every category as an id to type mapping
// @Tags categories
// @Produce json
// @Success 200 {object} categoriesResponse
// @Failure 404 {object} ErrorResponse
// @Router /categories/ [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categoriesResponse{
		Success:    true,
		Categories: categories,
	})
}

// ListQuestions godoc
// @Summary List questions
// @Description Get a page of ten questions with the total count and all categories
// @Tags questions
// @Produce json
// @Param page query int false "Page number, starting at 1"
// @Success 200 {object} questionPageResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/ [get]
func (h *CatalogHandler) ListQuestions(c echo.Context) error {
	page, err := queryPage(c.QueryParam("page"))
	if err != nil {
		page = 1
	}

	result, err := h.catalog.ListQuestions(c.Request().Context(), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, questionPageResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  result.TotalQuestions,
		Categories:      result.Categories,
		CurrentCategory: result.CurrentCategory,
	})
}

// CreateQuestion godoc
// @Summary Create a question
// @Description Store a new question; question, answer, difficulty and category are required
// @Tags questions
// @Accept json
// @Produce json
// @Param question body service.CreateQuestionRequest true "Question data"
// @Success 200 {object} successResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /questions [post]
func (h *CatalogHandler) CreateQuestion(c echo.Context) error {
	var req service.CreateQuestionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.catalog.CreateQuestion(c.Request().Context(), req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} successResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *CatalogHandler) DeleteQuestion(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.catalog.DeleteQuestion(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// SearchQuestions godoc
// @Summary Search questions
// @Description Find questions whose text contains searchTerm, ignoring case
// @Tags questions
// @Accept json
// @Produce json
// @Param search body service.SearchRequest true "Search term"
// @Success 200 {object} questionListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /search [post]
func (h *CatalogHandler) SearchQuestions(c echo.Context) error {
	var req service.SearchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.catalog.SearchQuestions(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, questionListResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  result.TotalQuestions,
		CurrentCategory: result.CurrentCategory,
	})
}

// ListQuestionsByCategory godoc
// @Summary List questions of a category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} questionListResponse
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id}/questions [get]
func (h *CatalogHandler) ListQuestionsByCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	result, err := h.catalog.ListQuestionsByCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, questionListResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  result.TotalQuestions,
		CurrentCategory: result.CurrentCategory,
	})
}

// NextQuizQuestion godoc
// @Summary Next quiz question
// @Description Get a question of quiz_category that is not in previous_questions
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body service.NextQuizRequest true "Quiz state"
// @Success 200 {object} quizResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes [post]
func (h *CatalogHandler) NextQuizQuestion(c echo.Context) error {
	var req service.NextQuizRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	question, err := h.catalog.NextQuizQuestion(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, quizResponse{
		Success:  true,
		Question: question,
	})
}

// queryPage parses the page query parameter. Numbers outside the int range
// are clamped so they still reach the range checks of the catalog.
func queryPage(raw string) (int, error) {
	page, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return math.MinInt, nil
		}
		return math.MaxInt, nil
	}
	return page, err
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return c.Validate(req)
}

// pathID parses the :id segment. Routes only match integer ids, so
// anything else is reported as not found.
func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
	}
	return id, nil
}
