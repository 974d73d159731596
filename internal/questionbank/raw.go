package questionbank

import (
	"bytes"
	"encoding/json"
	"strings"
)

// flexString принимает строку или число
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	*f = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
	}
	// прочие формы считаются отсутствующим значением
	return nil
}

// flexStrings принимает строку, число или массив из них
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	*f = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '[' {
		var items []flexString
		if err := json.Unmarshal(data, &items); err != nil {
			return nil
		}
		for _, it := range items {
			if it != "" {
				*f = append(*f, string(it))
			}
		}
		return nil
	}
	var one flexString
	_ = one.UnmarshalJSON(data)
	if one != "" {
		*f = flexStrings{string(one)}
	}
	return nil
}

// rawOption - вариант ответа в одной из встречающихся форм
type rawOption struct {
	ID          flexString `json:"id"`
	Text        flexString `json:"text"`
	Label       flexString `json:"label"`
	IsCorrect   bool       `json:"isCorrect"`
	IsCorrectSn bool       `json:"is_correct"`
	Correct     bool       `json:"correct"`
}

// flexOptions принимает массив объектов или массив строк
type flexOptions []rawOption

func (f *flexOptions) UnmarshalJSON(data []byte) error {
	*f = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	for _, el := range elems {
		el = bytes.TrimSpace(el)
		if len(el) > 0 && el[0] == '{' {
			var o rawOption
			if err := json.Unmarshal(el, &o); err == nil {
				*f = append(*f, o)
			}
			continue
		}
		var text flexString
		_ = text.UnmarshalJSON(el)
		if text != "" {
			*f = append(*f, rawOption{Text: text})
		}
	}
	return nil
}

// rawSubQuestion - подвопрос кейса
type rawSubQuestion struct {
	ID            flexString  `json:"id"`
	Question      flexString  `json:"question"`
	Text          flexString  `json:"text"`
	Options       flexOptions `json:"options"`
	CorrectAnswer flexString  `json:"correct_answer"`
}

// rawHotspot - область hotspot-вопроса
type rawHotspot struct {
	ID        flexString `json:"id"`
	Label     flexString `json:"label"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	IsCorrect bool       `json:"isCorrect"`
}

// RawQuestion - запись вопроса в том виде, в каком она пришла из документа.
// Поля с альтернативными именами сводятся в Normalize.
type RawQuestion struct {
	ID                flexString       `json:"id"`
	QuestionNumber    flexString       `json:"question_number"`
	QuestionText      flexString       `json:"question_text"`
	Question          flexString       `json:"question"`
	Text              flexString       `json:"text"`
	Type              flexString       `json:"type"`
	QuestionType      flexString       `json:"question_type"`
	ExamArea          flexString       `json:"examArea"`
	ExamAreaSnake     flexString       `json:"exam_area"`
	Difficulty        flexString       `json:"difficulty"`
	DifficultyLevel   flexString       `json:"difficultyLevel"`
	Topic             flexString       `json:"topic"`
	Tags              flexStrings      `json:"tags"`
	Options           flexOptions      `json:"options"`
	Answers           flexOptions      `json:"answers"`
	CorrectAnswer     flexStrings      `json:"correct_answer"`
	CorrectAnswerCml  flexStrings      `json:"correctAnswer"`
	Items             flexStrings      `json:"items"`
	CorrectOrder      flexStrings      `json:"correct_order"`
	Hotspots          []rawHotspot     `json:"hotspots"`
	CorrectSpots      flexStrings      `json:"correct_spots"`
	MaxSelections     flexString       `json:"max_selections"`
	ImageURL          flexString       `json:"image_url"`
	SubQuestions      []rawSubQuestion `json:"sub_questions"`
	Explanation       json.RawMessage  `json:"explanation"`
	LearnURL          flexString       `json:"microsoft_learn_url"`
	LearnURLCml       flexString       `json:"learnUrl"`
	EstimatedTime     flexString       `json:"estimated_time"`
	EstimatedTimeCml  flexString       `json:"estimatedTime"`
	TimeLimit         flexString       `json:"time_limit"`
	IsActive          *bool            `json:"is_active"`
}

// Document - файл с вопросами. Помимо массива questions может содержать метаданные экзамена.
type Document struct {
	Version        string        `json:"version,omitempty"`
	TotalQuestions int           `json:"totalQuestions,omitempty"`
	Questions      []RawQuestion `json:"questions"`
}

// ParseDocument разбирает документ. Допускается как объект с полем questions, так и голый массив.
func ParseDocument(data []byte) ([]RawQuestion, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []RawQuestion
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Questions, nil
}
