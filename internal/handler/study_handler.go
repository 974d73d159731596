package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/examprep-api/internal/handler/dto"
	"github.com/yourusername/examprep-api/internal/middleware"
	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
	"github.com/yourusername/examprep-api/internal/service"
	"github.com/yourusername/examprep-api/internal/service/studysession"
)

// StudyHandler обрабатывает запросы учебных сессий
type StudyHandler struct {
	studyService *service.StudyService
}

// NewStudyHandler создает новый обработчик сессий
func NewStudyHandler(studyService *service.StudyService) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
	}
}

// StartSession создает сессию. Без авторизации сессия анонимная, ответы не сохраняются.
// POST /api/study/sessions
func (h *StudyHandler) StartSession(c *gin.Context) {
	var req dto.StartSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	view, err := h.studyService.Start(middleware.UserIDFromContext(c), req.SessionType, req.Filters.Criteria())
	if err != nil {
		handleStudyError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionResponse(view))
}

// GetSession возвращает текущее состояние сессии
func (h *StudyHandler) GetSession(c *gin.Context) {
	sessionID, _ := middleware.SessionIDFromContext(c)

	view, err := h.studyService.Get(middleware.UserIDFromContext(c), sessionID)
	if err != nil {
		handleStudyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// UpdateFilters применяет новые фильтры
// PUT /api/study/sessions/:id/filters
func (h *StudyHandler) UpdateFilters(c *gin.Context) {
	sessionID, _ := middleware.SessionIDFromContext(c)

	var req dto.FiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.studyService.UpdateFilters(middleware.UserIDFromContext(c), sessionID, req.Criteria())
	if err != nil {
		handleStudyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// ResetFilters снимает все фильтры
// DELETE /api/study/sessions/:id/filters
func (h *StudyHandler) ResetFilters(c *gin.Context) {
	sessionID, _ := middleware.SessionIDFromContext(c)

	view, err := h.studyService.ResetFilters(middleware.UserIDFromContext(c), sessionID)
	if err != nil {
		handleStudyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// Next переходит к следующему вопросу
func (h *StudyHandler) Next(c *gin.Context) {
	h.navigate(c, service.NavNext, 0)
}

// Previous переходит к предыдущему вопросу
func (h *StudyHandler) Previous(c *gin.Context) {
	h.navigate(c, service.NavPrevious, 0)
}

// Jump переходит к вопросу по индексу
func (h *StudyHandler) Jump(c *gin.Context) {
	var req dto.JumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.navigate(c, service.NavJump, *req.Index)
}

func (h *StudyHandler) navigate(c *gin.Context, action service.NavAction, index int) {
	sessionID, _ := middleware.SessionIDFromContext(c)

	view, err := h.studyService.Navigate(middleware.UserIDFromContext(c), sessionID, action, index)
	if err != nil {
		handleStudyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(view))
}

// SubmitAnswer оценивает ответ на текущий вопрос
// POST /api/study/sessions/:id/answer
func (h *StudyHandler) SubmitAnswer(c *gin.Context) {
	sessionID, _ := middleware.SessionIDFromContext(c)

	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.studyService.Answer(middleware.UserIDFromContext(c), sessionID, req.QuestionID, req.Answer(), req.TimeSpent)
	if err != nil {
		handleStudyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAnswerResponse(result))
}

// EndSession завершает сессию и возвращает итог
// DELETE /api/study/sessions/:id
func (h *StudyHandler) EndSession(c *gin.Context) {
	sessionID, _ := middleware.SessionIDFromContext(c)

	summary, err := h.studyService.End(c.Request.Context(), middleware.UserIDFromContext(c), sessionID)
	if err != nil {
		handleStudyError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionSummaryResponse(summary))
}

func handleStudyError(c *gin.Context, err error) {
	if errors.Is(err, studysession.ErrNoQuestion) {
		c.JSON(http.StatusOK, gin.H{
			"empty":   true,
			"actions": []string{dto.ActionResetFilters},
			"error":   err.Error(),
		})
	} else if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, studysession.ErrAlreadyAnswered) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, studysession.ErrInvalidAnswer) || errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in StudyHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
