package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/middleware"
	"github.com/yourusername/examprep-api/internal/questionbank"
	"github.com/yourusername/examprep-api/internal/service"
)

const testUserHeader = "X-Test-User"

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore - банк вопросов в памяти
type memStore struct {
	questions []entity.Question
}

func (m *memStore) Questions() []entity.Question { return m.questions }

func (m *memStore) Get(id string) (*entity.Question, bool) {
	for i := range m.questions {
		if m.questions[i].ID == id {
			return &m.questions[i], true
		}
	}
	return nil, false
}

func (m *memStore) Len() int { return len(m.questions) }

func (m *memStore) Load(ctx context.Context) questionbank.LoadResult {
	return questionbank.LoadResult{Source: questionbank.SourceStatic, Count: len(m.questions), LoadedAt: time.Now()}
}

func (m *memStore) Source() string { return questionbank.SourceStatic }

func (m *memStore) LoadedAt() time.Time { return time.Time{} }

// memProgress - журнал ответов в памяти
type memProgress struct {
	records []entity.UserProgress
}

func (m *memProgress) Save(ctx context.Context, p *entity.UserProgress) error {
	m.records = append([]entity.UserProgress{*p}, m.records...)
	return nil
}

func (m *memProgress) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]entity.UserProgress, error) {
	var out []entity.UserProgress
	for _, r := range m.records {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memProgress) CountByUser(ctx context.Context, userID string) (int64, error) {
	records, _ := m.ListByUserSince(ctx, userID, time.Time{})
	return int64(len(records)), nil
}

func testQuestions() []entity.Question {
	return []entity.Question{
		{
			ID: "q1", Number: 1, Type: entity.TypeMultipleChoice, ExamArea: entity.AreaArchitecture, Difficulty: 2,
			Text: "Pick A", Options: entity.Options{{ID: "a", Text: "A", IsCorrect: true}, {ID: "b", Text: "B"}},
			Explanation: entity.RawJSON(`"because"`),
		},
		{
			ID: "q2", Number: 2, Type: entity.TypeYesNo, ExamArea: entity.AreaImplementation, Difficulty: 3,
			Text: "Yes?", Options: entity.Options{{ID: "yes", Text: "Yes"}, {ID: "no", Text: "No"}}, CorrectAnswer: entity.StringArray{"yes"},
		},
	}
}

// fakeAuth подставляет пользователя из заголовка вместо проверки токена
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := c.GetHeader(testUserHeader); user != "" {
			c.Set(middleware.ContextUserID, user)
		}
		c.Next()
	}
}

type testServer struct {
	router   *gin.Engine
	study    *service.StudyService
	progress *memProgress
}

func newTestServer(cfg service.StudyConfig) *testServer {
	store := &memStore{questions: testQuestions()}
	progress := &memProgress{}

	studyService := service.NewStudyService(store, nil, nil, nil, cfg)
	progressService := service.NewProgressService(progress, nil, store, service.ProgressConfig{
		WeakThreshold: 70, StrongThreshold: 85, MinAttempts: 5, ReadinessMinAnswers: 50, RecentLimit: 10,
	})
	questionService := service.NewQuestionService(store, progressService)

	studyHandler := NewStudyHandler(studyService)
	questionHandler := NewQuestionHandler(questionService)
	progressHandler := NewProgressHandler(progressService)

	router := gin.New()
	api := router.Group("/api", fakeAuth())
	api.GET("/questions", questionHandler.ListQuestions)
	api.GET("/questions/stats", questionHandler.GetQuestionStats)
	api.GET("/questions/:id", questionHandler.GetQuestion)
	api.POST("/admin/questions/reload", questionHandler.ReloadQuestions)

	api.POST("/study/sessions", studyHandler.StartSession)
	session := api.Group("/study/sessions/:id", middleware.SessionParam("id"))
	session.GET("", studyHandler.GetSession)
	session.PUT("/filters", studyHandler.UpdateFilters)
	session.DELETE("/filters", studyHandler.ResetFilters)
	session.POST("/next", studyHandler.Next)
	session.POST("/previous", studyHandler.Previous)
	session.POST("/jump", studyHandler.Jump)
	session.POST("/answer", studyHandler.SubmitAnswer)
	session.DELETE("", studyHandler.EndSession)

	api.GET("/progress/dashboard", progressHandler.GetDashboard)
	api.GET("/progress/export", progressHandler.ExportProgress)

	return &testServer{router: router, study: studyService, progress: progress}
}

func (s *testServer) do(method, path, user string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}
