package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/examprep-api/internal/middleware"
	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
	"github.com/yourusername/examprep-api/internal/service"
)

var exportHeaders = []string{"Дата", "Вопрос", "Тип", "Область", "Тема", "Верно", "Время (сек)", "Попытка"}

// ProgressHandler обрабатывает запросы аналитики прогресса
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler создает новый обработчик прогресса
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// GetDashboard возвращает сводку прогресса пользователя
// GET /api/progress/dashboard?range=7d|30d|all
func (h *ProgressHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.progressService.Dashboard(c.Request.Context(), middleware.UserIDFromContext(c), c.Query("range"))
	if err != nil {
		h.handleProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ExportProgress выгружает журнал ответов в CSV или Excel
// GET /api/progress/export?format=csv|xlsx&range=
func (h *ProgressHandler) ExportProgress(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}
	rangeKey := c.DefaultQuery("range", service.RangeAll)

	rows, err := h.progressService.ExportRows(c.Request.Context(), middleware.UserIDFromContext(c), rangeKey)
	if err != nil {
		h.handleProgressError(c, err)
		return
	}

	filename := fmt.Sprintf("progress_%s_%s", rangeKey, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

func exportRecord(r service.ExportRow) []string {
	correct := "Нет"
	if r.IsCorrect {
		correct = "Да"
	}
	return []string{
		r.AnsweredAt.Format(time.RFC3339),
		sanitizeForExcel(r.QuestionID),
		r.QuestionType,
		r.ExamArea,
		sanitizeForExcel(r.Topic),
		correct,
		strconv.Itoa(r.TimeSpent),
		strconv.Itoa(r.Attempt),
	}
}

// exportCSV пишет журнал в CSV с BOM для корректного UTF-8 в Excel
func (h *ProgressHandler) exportCSV(c *gin.Context, rows []service.ExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write(exportRecord(r))
	}
}

// exportXLSX пишет журнал в Excel через StreamWriter
func (h *ProgressHandler) exportXLSX(c *gin.Context, rows []service.ExportRow, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Прогресс"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ProgressHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, hdr := range exportHeaders {
		headers[i] = hdr
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ProgressHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2
		correct := "Нет"
		if r.IsCorrect {
			correct = "Да"
		}
		row := []interface{}{
			r.AnsweredAt.Format("2006-01-02 15:04:05"),
			sanitizeForExcel(r.QuestionID),
			r.QuestionType,
			r.ExamArea,
			sanitizeForExcel(r.Topic),
			correct,
			r.TimeSpent,
			r.Attempt,
		}
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
			log.Printf("[ProgressHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ProgressHandler] Ошибка при Flush: %v", err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ProgressHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

func (h *ProgressHandler) handleProgressError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in ProgressHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
