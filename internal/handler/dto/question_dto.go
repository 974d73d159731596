package dto

import (
	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/handler/helper"
	"github.com/yourusername/examprep-api/internal/service"
)

// QuestionResponse представляет вопрос для клиента. Правильные ответы не передаются.
type QuestionResponse struct {
	ID            string                   `json:"id"`
	Number        int                      `json:"question_number"`
	Type          string                   `json:"type"`
	ExamArea      string                   `json:"exam_area,omitempty"`
	Difficulty    string                   `json:"difficulty"`
	Topic         string                   `json:"topic,omitempty"`
	Tags          []string                 `json:"tags,omitempty"`
	Text          string                   `json:"text"`
	Options       []helper.OptionView      `json:"options,omitempty"`
	MultiSelect   bool                     `json:"multi_select"`
	MaxSelections int                      `json:"max_selections,omitempty"`
	Items         []string                 `json:"items,omitempty"`
	Hotspots      []helper.HotspotView     `json:"hotspots,omitempty"`
	ImageURL      string                   `json:"image_url,omitempty"`
	SubQuestions  []helper.SubQuestionView `json:"sub_questions,omitempty"`
	EstimatedTime int                      `json:"estimated_time,omitempty"`
	// Пояснение и ссылка показываются только после ответа
	Explanation entity.RawJSON `json:"explanation,omitempty"`
	LearnURL    string         `json:"learn_url,omitempty"`
}

// NewQuestionResponse создает DTO вопроса. reveal добавляет пояснение и ссылку на материалы.
func NewQuestionResponse(q *entity.Question, reveal bool) *QuestionResponse {
	if q == nil {
		return nil
	}
	resp := &QuestionResponse{
		ID:            q.ID,
		Number:        q.Number,
		Type:          q.TypeKey(),
		ExamArea:      q.ExamArea,
		Difficulty:    q.DifficultyLabel(),
		Topic:         q.Topic,
		Tags:          q.Tags,
		Text:          q.Text,
		MultiSelect:   q.IsMultiSelect(),
		MaxSelections: q.MaxSelections,
		Items:         helper.ShuffleItems(q.ID, q.Items, q.CorrectOrder),
		Hotspots:      helper.ConvertHotspots(q.Hotspots),
		ImageURL:      q.ImageURL,
		SubQuestions:  helper.ConvertSubQuestions(q.SubQuestions),
		EstimatedTime: q.EstimatedTime,
	}
	if len(q.Options) > 0 {
		resp.Options = helper.ConvertOptions(q.Options)
	}
	if reveal {
		resp.Explanation = q.Explanation
		resp.LearnURL = q.LearnURL
	}
	return resp
}

// QuestionListResponse - страница вопросов
type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int                 `json:"total"`
	Page      int                 `json:"page"`
	PageSize  int                 `json:"page_size"`
}

// NewQuestionListResponse создает DTO страницы вопросов
func NewQuestionListResponse(page *service.QuestionPage) *QuestionListResponse {
	questions := make([]*QuestionResponse, 0, len(page.Items))
	for i := range page.Items {
		questions = append(questions, NewQuestionResponse(&page.Items[i], false))
	}
	return &QuestionListResponse{
		Questions: questions,
		Total:     page.Total,
		Page:      page.Page,
		PageSize:  page.PageSize,
	}
}
