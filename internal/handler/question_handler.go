package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/examprep-api/internal/handler/dto"
	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
	"github.com/yourusername/examprep-api/internal/service"
	"github.com/yourusername/examprep-api/internal/service/studysession"
)

// QuestionHandler обрабатывает запросы к банку вопросов
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

// ListQuestions возвращает страницу вопросов с фильтрами
// GET /api/questions?exam_area=&type=&difficulty=&topic=&page=&page_size=
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}

	criteria := studysession.Criteria{
		ExamArea:     c.Query("exam_area"),
		QuestionType: c.Query("type"),
		Difficulty:   c.Query("difficulty"),
		Topic:        c.Query("topic"),
	}

	result := h.questionService.List(criteria, page, pageSize)
	c.JSON(http.StatusOK, dto.NewQuestionListResponse(result))
}

// GetQuestion возвращает вопрос без правильного ответа
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	q, err := h.questionService.Get(c.Param("id"))
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(q, false))
}

// GetQuestionStats возвращает состав банка вопросов
func (h *QuestionHandler) GetQuestionStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.questionService.Stats())
}

// ReloadQuestions перезагружает банк вопросов (только для администраторов)
// POST /api/admin/questions/reload
func (h *QuestionHandler) ReloadQuestions(c *gin.Context) {
	result := h.questionService.Reload(c.Request.Context())
	if result.Stale {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Reload superseded by a newer load",
			"result": result,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Question bank reloaded",
		"result":  result,
	})
}

func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
