package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/repository/memory"
	"github.com/zizouhuweidi/trivia/internal/service"
)

func newTestServer(t *testing.T, categories []domain.Category, questions []domain.Question) (*echo.Echo, *memory.Store) {
	t.Helper()
	store := memory.NewStore(categories...)
	for i := range questions {
		require.NoError(t, store.Questions().Create(context.Background(), &questions[i]))
	}

	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	Setup(e, []string{"*"})
	NewCatalogHandler(service.NewCatalogService(store.Questions(), store.Categories())).Register(e)
	NewHealthHandler(store).Register(e)
	return e, store
}

func defaultServer(t *testing.T) (*echo.Echo, *memory.Store) {
	categories := []domain.Category{
		{ID: 1, Type: "Science"},
		{ID: 3, Type: "Geography"},
		{ID: 4, Type: "History"},
	}
	questions := []domain.Question{
		{Question: "What is the heaviest organ in the human body?", Answer: "The Liver", Category: 1, Difficulty: 4},
		{Question: "Which City is the capital of Australia?", Answer: "Canberra", Category: 3, Difficulty: 2},
		{Question: "What is the largest lake in Africa?", Answer: "Lake Victoria", Category: 3, Difficulty: 2},
	}
	return newTestServer(t, categories, questions)
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	assert.Equal(t, code, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(code), body["error"])
	assert.Equal(t, message, body["message"])
}

func TestListCategories(t *testing.T) {
	e, _ := defaultServer(t)

	for _, path := range []string{"/categories/", "/categories"} {
		rec := do(e, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, map[string]interface{}{"1": "Science", "3": "Geography", "4": "History"}, body["categories"])
	}
}

func TestListCategories_Empty(t *testing.T) {
	e, _ := newTestServer(t, nil, nil)

	rec := do(e, http.MethodGet, "/categories/", "")
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")
}

func TestListQuestions(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodGet, "/questions/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["questions"], 3)
	assert.Equal(t, float64(3), body["total_questions"])
	assert.Len(t, body["categories"], 3)
	assert.Contains(t, body, "current_category")
	assert.Nil(t, body["current_category"])

	first := body["questions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{
		"id":         float64(1),
		"question":   "What is the heaviest organ in the human body?",
		"answer":     "The Liver",
		"category":   float64(1),
		"difficulty": float64(4),
	}, first)
}

func TestListQuestions_Pages(t *testing.T) {
	questions := make([]domain.Question, 20)
	for i := range questions {
		questions[i] = domain.Question{Question: fmt.Sprintf("q%d", i), Answer: "a", Category: 1, Difficulty: 1}
	}
	e, _ := newTestServer(t, []domain.Category{{ID: 1, Type: "Science"}}, questions)

	tests := []struct {
		target  string
		code    int
		wantLen int
	}{
		{"/questions/?page=2", http.StatusOK, 10},
		{"/questions/?page=3", http.StatusOK, 0},
		{"/questions/?page=abc", http.StatusOK, 10},
		{"/questions?page=1", http.StatusOK, 10},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(e, http.MethodGet, tt.target, "")
			require.Equal(t, tt.code, rec.Code)
			body := decode(t, rec)
			assert.Len(t, body["questions"], tt.wantLen)
			assert.Equal(t, float64(20), body["total_questions"])
		})
	}
}

func TestListQuestions_PageOutOfRange(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodGet, "/questions/?page=1000", "")
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")
}

func TestListQuestions_HugePage(t *testing.T) {
	e, _ := defaultServer(t)

	tests := []struct {
		page string
		code int
		msg  string
	}{
		{"9223372036854775807", http.StatusNotFound, "Requested resource not found"},
		{"1000000000000000000", http.StatusNotFound, "Requested resource not found"},
		{"99999999999999999999999", http.StatusNotFound, "Requested resource not found"},
		{"-99999999999999999999999", http.StatusBadRequest, "Invalid request"},
	}
	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/questions/?page="+tt.page, "")
			assertError(t, rec, tt.code, tt.msg)
		})
	}
}

func TestQueryPage(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"0", 0, false},
		{"99999999999999999999", math.MaxInt, false},
		{"-99999999999999999999", math.MinInt, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := queryPage(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListQuestions_PageZero(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodGet, "/questions/?page=0", "")
	assertError(t, rec, http.StatusBadRequest, "Invalid request")
}

func TestCreateQuestion(t *testing.T) {
	e, store := defaultServer(t)

	rec := do(e, http.MethodPost, "/questions", `{"question":"question","answer":"answer","difficulty":1,"category":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"success": true}, decode(t, rec))

	count, err := store.Questions().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	rec = do(e, http.MethodGet, "/categories/1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["total_questions"])
}

func TestCreateQuestion_StringCategory(t *testing.T) {
	e, store := defaultServer(t)

	rec := do(e, http.MethodPost, "/questions", `{"question":"q","answer":"a","difficulty":"2","category":"4"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	q, err := store.Questions().GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, q.Category)
	assert.Equal(t, 2, q.Difficulty)
}

func TestCreateQuestion_InvalidPayload(t *testing.T) {
	tests := map[string]string{
		"empty object":     `{}`,
		"missing answer":   `{"question":"q","difficulty":1,"category":1}`,
		"null category":    `{"question":"q","answer":"a","difficulty":1,"category":null}`,
		"malformed json":   `{"question":`,
		"non-numeric enum": `{"question":"q","answer":"a","difficulty":"hard","category":1}`,
	}

	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			e, store := defaultServer(t)

			rec := do(e, http.MethodPost, "/questions", payload)
			assertError(t, rec, http.StatusBadRequest, "Invalid request")

			count, err := store.Questions().Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, count)
		})
	}
}

func TestCreateQuestion_NoBody(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodPost, "/questions", "")
	assertError(t, rec, http.StatusBadRequest, "Invalid request")
}

func TestDeleteQuestion(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodDelete, "/questions/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"success": true}, decode(t, rec))

	rec = do(e, http.MethodPost, "/search", `{"searchTerm":"city"}`)
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")

	rec = do(e, http.MethodDelete, "/questions/2", "")
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")
}

func TestDeleteQuestion_NotFound(t *testing.T) {
	e, _ := defaultServer(t)

	for _, target := range []string{"/questions/1000", "/questions/abc"} {
		rec := do(e, http.MethodDelete, target, "")
		assertError(t, rec, http.StatusNotFound, "Requested resource not found")
	}
}

func TestSearchQuestions(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodPost, "/search", `{"searchTerm":"city"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["total_questions"])
	assert.Nil(t, body["current_category"])
	q := body["questions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Canberra", q["answer"])
}

func TestSearchQuestions_Failures(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodPost, "/search", `{"searchTerm":"no such thing"}`)
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")

	rec = do(e, http.MethodPost, "/search", `{}`)
	assertError(t, rec, http.StatusBadRequest, "Invalid request")
}

func TestListQuestionsByCategory(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodGet, "/categories/3/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["questions"], 2)
	assert.Equal(t, float64(2), body["total_questions"])
	assert.Equal(t, "Geography", body["current_category"])
}

func TestListQuestionsByCategory_EmptyCategory(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodGet, "/categories/4/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, []interface{}{}, body["questions"])
	assert.Equal(t, float64(0), body["total_questions"])
	assert.Equal(t, "History", body["current_category"])
}

func TestListQuestionsByCategory_NotFound(t *testing.T) {
	e, store := defaultServer(t)

	rec := do(e, http.MethodGet, "/categories/1000/questions", "")
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")

	// questions that reference a missing category row
	require.NoError(t, store.Questions().Create(context.Background(), &domain.Question{Question: "q", Answer: "a", Category: 9, Difficulty: 1}))
	rec = do(e, http.MethodGet, "/categories/9/questions", "")
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")
}

func TestNextQuizQuestion(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodPost, "/quizzes", `{"previous_questions":[],"quiz_category":{"id":3,"type":"Geography"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	q := body["question"].(map[string]interface{})
	assert.Equal(t, float64(3), q["category"])
	assert.Equal(t, float64(2), q["id"])

	rec = do(e, http.MethodPost, "/quizzes", `{"previous_questions":[2],"quiz_category":{"id":"3","type":"Geography"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["question"].(map[string]interface{})["id"])
}

func TestNextQuizQuestion_Failures(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodPost, "/quizzes", `{"previous_questions":[2,3],"quiz_category":{"id":3}}`)
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")

	rec = do(e, http.MethodPost, "/quizzes", `{}`)
	assertError(t, rec, http.StatusBadRequest, "Invalid request")

	rec = do(e, http.MethodPost, "/quizzes", `{"quiz_category":{"type":"Geography"}}`)
	assertError(t, rec, http.StatusBadRequest, "Invalid request")
}

func TestUnknownRouteAndMethod(t *testing.T) {
	e, _ := defaultServer(t)

	rec := do(e, http.MethodGet, "/nowhere", "")
	assertError(t, rec, http.StatusNotFound, "Requested resource not found")

	rec = do(e, http.MethodPut, "/search", `{}`)
	assertError(t, rec, http.StatusMethodNotAllowed, "Method not allowed")
}

func TestHTTPErrorHandler_Unprocessable(t *testing.T) {
	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	e.HTTPErrorHandler = HTTPErrorHandler
	e.GET("/boom", func(c echo.Context) error {
		return &service.Error{
			Op:    "create question",
			Class: service.ErrUnprocessable,
			Cause: domain.CauseConstraint,
			Err:   errors.New("duplicate key"),
		}
	})
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("unexpected")
	})

	rec := do(e, http.MethodGet, "/boom", "")
	assertError(t, rec, http.StatusUnprocessableEntity, "Sorry, could not process your request")

	rec = do(e, http.MethodGet, "/fail", "")
	assertError(t, rec, http.StatusInternalServerError, "Server error")
}

func TestRecoverRendersServerError(t *testing.T) {
	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	Setup(e, []string{"*"})
	e.GET("/panic", func(c echo.Context) error {
		panic("boom")
	})

	rec := do(e, http.MethodGet, "/panic", "")
	assertError(t, rec, http.StatusInternalServerError, "Server error")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestCORSPreflight(t *testing.T) {
	e, _ := defaultServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/questions", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), echo.HeaderContentType)
}
