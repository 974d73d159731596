package questionbank

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// Normalize сводит запись документа к каноническому вопросу.
// position - порядковый номер записи с единицы; из него строится идентификатор q_N,
// если у записи нет ни id, ни question_number. Отсутствующие поля получают значения по умолчанию.
func Normalize(raw RawQuestion, position int) entity.Question {
	id := firstNonEmpty(raw.ID, raw.QuestionNumber)
	if id == "" {
		id = fmt.Sprintf("q_%d", position)
	}

	q := entity.Question{
		ID:            id,
		Number:        questionNumber(raw, position),
		Type:          entity.CanonicalType(firstNonEmpty(raw.Type, raw.QuestionType)),
		ExamArea:      entity.CanonicalExamArea(firstNonEmpty(raw.ExamArea, raw.ExamAreaSnake)),
		Topic:         string(raw.Topic),
		Tags:          cleanList(raw.Tags),
		Text:          firstNonEmpty(raw.QuestionText, raw.Question, raw.Text),
		Items:         entity.StringArray(cleanList(raw.Items)),
		CorrectOrder:  entity.StringArray(cleanList(raw.CorrectOrder)),
		CorrectSpots:  entity.StringArray(cleanList(raw.CorrectSpots)),
		ImageURL:      string(raw.ImageURL),
		LearnURL:      firstNonEmpty(raw.LearnURL, raw.LearnURLCml),
		EstimatedTime: atoi(firstNonEmpty(raw.EstimatedTime, raw.EstimatedTimeCml, raw.TimeLimit)),
		MaxSelections: atoi(string(raw.MaxSelections)),
		IsActive:      raw.IsActive == nil || *raw.IsActive,
	}

	setDifficulty(&q, firstNonEmpty(raw.Difficulty, raw.DifficultyLevel))

	options := raw.Options
	if len(options) == 0 {
		options = raw.Answers
	}
	q.Options = normalizeOptions(options)
	if len(q.Options) == 0 && q.Type == entity.TypeYesNo {
		q.Options = entity.Options{{ID: "yes", Text: "Yes"}, {ID: "no", Text: "No"}}
	}

	answer := raw.CorrectAnswer
	if len(answer) == 0 {
		answer = raw.CorrectAnswerCml
	}
	q.CorrectAnswer = resolveAnswer(q.Options, cleanList(answer))
	markCorrect(q.Options, q.CorrectAnswer)

	for _, h := range raw.Hotspots {
		q.Hotspots = append(q.Hotspots, entity.Hotspot{
			ID:        string(h.ID),
			Label:     string(h.Label),
			X:         h.X,
			Y:         h.Y,
			Width:     h.Width,
			Height:    h.Height,
			IsCorrect: h.IsCorrect,
		})
	}
	if q.Type == entity.TypeHotspot && q.MaxSelections == 0 {
		q.MaxSelections = len(q.CorrectSpotIDs())
	}

	for i, sub := range raw.SubQuestions {
		sq := entity.SubQuestion{
			ID:      string(sub.ID),
			Text:    firstNonEmpty(sub.Question, sub.Text),
			Options: normalizeOptions(sub.Options),
		}
		if sq.ID == "" {
			sq.ID = fmt.Sprintf("%s-%d", q.ID, i+1)
		}
		if resolved := resolveAnswer(sq.Options, cleanList([]string{string(sub.CorrectAnswer)})); len(resolved) > 0 {
			sq.CorrectAnswer = resolved[0]
		}
		q.SubQuestions = append(q.SubQuestions, sq)
	}

	if exp := bytes.TrimSpace(raw.Explanation); len(exp) > 0 && string(exp) != "null" {
		q.Explanation = entity.RawJSON(append([]byte(nil), exp...))
	}

	return q
}

// Canonicalize приводит к каноническому виду вопрос, пришедший из таблицы questions:
// тип, область и сложность записаны там так же разнородно, как в документах.
// Для уже нормализованного вопроса ничего не меняет.
func Canonicalize(q entity.Question) entity.Question {
	q.Type = entity.CanonicalType(string(q.Type))
	q.ExamArea = entity.CanonicalExamArea(q.ExamArea)
	if entity.DifficultyBand(q.Difficulty) == "" {
		q.Difficulty = 0
		setDifficulty(&q, q.DifficultyName)
	} else {
		q.DifficultyName = strings.ToLower(strings.TrimSpace(q.DifficultyName))
	}
	return q
}

// setDifficulty разбирает сложность: число 1-5 или название полосы
func setDifficulty(q *entity.Question, difficulty string) {
	difficulty = strings.TrimSpace(difficulty)
	if n, err := strconv.Atoi(difficulty); err == nil && entity.DifficultyBand(n) != "" {
		q.Difficulty = n
		q.DifficultyName = ""
	} else {
		q.DifficultyName = strings.ToLower(difficulty)
	}
}

// NormalizeAll нормализует записи в порядке следования.
// Сгенерированный q_N, совпавший с объявленным где-то в наборе id, получает суффикс,
// поэтому запись без id не вытесняет запись с явным id и наоборот.
func NormalizeAll(raws []RawQuestion) []entity.Question {
	declared := make(map[string]struct{}, len(raws))
	for _, r := range raws {
		if id := firstNonEmpty(r.ID, r.QuestionNumber); id != "" {
			declared[id] = struct{}{}
		}
	}

	out := make([]entity.Question, 0, len(raws))
	for i, r := range raws {
		q := Normalize(r, i+1)
		if firstNonEmpty(r.ID, r.QuestionNumber) == "" {
			q.ID = generatedID(q.ID, declared)
		}
		out = append(out, q)
	}
	return out
}

// generatedID подбирает свободный вариант base, base_2, base_3... и резервирует его
func generatedID(base string, taken map[string]struct{}) string {
	id := base
	for n := 2; ; n++ {
		if _, ok := taken[id]; !ok {
			break
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
	taken[id] = struct{}{}
	return id
}

func questionNumber(raw RawQuestion, position int) int {
	for _, v := range []flexString{raw.QuestionNumber, raw.ID} {
		if n, err := strconv.Atoi(string(v)); err == nil {
			return n
		}
	}
	return position
}

// normalizeOptions проставляет буквенные идентификаторы вариантам без id
func normalizeOptions(raw flexOptions) entity.Options {
	if len(raw) == 0 {
		return nil
	}
	out := make(entity.Options, 0, len(raw))
	for i, o := range raw {
		id := string(o.ID)
		if id == "" {
			id = optionLetter(i)
		}
		out = append(out, entity.Option{
			ID:        id,
			Text:      firstNonEmpty(o.Text, o.Label),
			IsCorrect: o.IsCorrect || o.IsCorrectSn || o.Correct,
		})
	}
	return out
}

// resolveAnswer переводит ответ в идентификаторы вариантов.
// Ответ может быть задан id (в любом регистре) или текстом варианта.
func resolveAnswer(options entity.Options, answer []string) entity.StringArray {
	if len(answer) == 0 {
		return nil
	}
	out := make(entity.StringArray, 0, len(answer))
	for _, a := range answer {
		out = append(out, matchOption(options, a))
	}
	return out
}

func matchOption(options entity.Options, answer string) string {
	for _, o := range options {
		if o.ID == answer {
			return o.ID
		}
	}
	for _, o := range options {
		if strings.EqualFold(o.ID, answer) || strings.EqualFold(strings.TrimSpace(o.Text), answer) {
			return o.ID
		}
	}
	switch strings.ToLower(answer) {
	case "true":
		return matchOption(options, "yes")
	case "false":
		return matchOption(options, "no")
	}
	return answer
}

// markCorrect выставляет флаги isCorrect по correct_answer, если документ их не задал
func markCorrect(options entity.Options, correct entity.StringArray) {
	if len(correct) == 0 {
		return
	}
	for _, o := range options {
		if o.IsCorrect {
			return
		}
	}
	set := make(map[string]struct{}, len(correct))
	for _, c := range correct {
		set[c] = struct{}{}
	}
	for i := range options {
		if _, ok := set[options[i].ID]; ok {
			options[i].IsCorrect = true
		}
	}
}

func optionLetter(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return strconv.Itoa(i + 1)
}

func firstNonEmpty(values ...flexString) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

func cleanList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
