package helper

import (
	"hash/fnv"
	"math/rand"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// OptionView - вариант ответа без признака правильности
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// HotspotView - область изображения без признака правильности
type HotspotView struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// SubQuestionView - подвопрос кейса без правильного ответа
type SubQuestionView struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Options []OptionView `json:"options,omitempty"`
}

// ConvertOptions убирает из вариантов флаг isCorrect
func ConvertOptions(options entity.Options) []OptionView {
	converted := make([]OptionView, len(options))
	for i, opt := range options {
		text := opt.Text
		if text == "" {
			text = "(пустой вариант)"
		}
		converted[i] = OptionView{ID: opt.ID, Text: text}
	}
	return converted
}

// ConvertHotspots убирает из областей флаг isCorrect
func ConvertHotspots(hotspots entity.Hotspots) []HotspotView {
	if len(hotspots) == 0 {
		return nil
	}
	converted := make([]HotspotView, len(hotspots))
	for i, h := range hotspots {
		converted[i] = HotspotView{ID: h.ID, Label: h.Label, X: h.X, Y: h.Y, Width: h.Width, Height: h.Height}
	}
	return converted
}

// ConvertSubQuestions убирает правильные ответы подвопросов
func ConvertSubQuestions(subs entity.SubQuestions) []SubQuestionView {
	if len(subs) == 0 {
		return nil
	}
	converted := make([]SubQuestionView, len(subs))
	for i, s := range subs {
		converted[i] = SubQuestionView{ID: s.ID, Text: s.Text}
		if len(s.Options) > 0 {
			converted[i].Options = ConvertOptions(s.Options)
		}
	}
	return converted
}

// ShuffleItems возвращает элементы sequence/drag-drop в перемешанном порядке.
// Порядок детерминирован по ID вопроса и не совпадает с правильным, если это возможно.
// Исходный срез не изменяется.
func ShuffleItems(questionID string, items, correct []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, len(items))
	copy(out, items)
	if len(out) < 2 {
		return out
	}
	reference := correct
	if len(reference) == 0 {
		reference = items
	}

	h := fnv.New64a()
	h.Write([]byte(questionID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	// Сдвиг на одну позицию меняет порядок, если элементы не все одинаковые
	for shift := 0; shift < len(out) && sameSequence(out, reference); shift++ {
		out = append(out[1:], out[0])
	}
	return out
}

func sameSequence(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
