package questionbank

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"sort"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/domain/repository"
)

//go:embed data/*.json
var bundled embed.FS

// Source - источник вопросов для Store
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]entity.Question, error)
}

// RemoteSource читает активные вопросы из таблицы questions
type RemoteSource struct {
	repo repository.QuestionRepository
}

// NewRemoteSource создает удалённый источник
func NewRemoteSource(repo repository.QuestionRepository) *RemoteSource {
	return &RemoteSource{repo: repo}
}

// Name возвращает имя источника
func (s *RemoteSource) Name() string { return SourceRemote }

// Fetch возвращает вопросы в порядке question_number
func (s *RemoteSource) Fetch(ctx context.Context) ([]entity.Question, error) {
	return s.repo.ListActive(ctx)
}

// StaticDocument - документ с вопросами и его имя для логов
type StaticDocument struct {
	Name string
	Data []byte
}

// StaticSource объединяет статические документы в заданном порядке
type StaticSource struct {
	docs []StaticDocument
}

// NewStaticSource создает статический источник из готовых документов
func NewStaticSource(docs ...StaticDocument) *StaticSource {
	return &StaticSource{docs: docs}
}

// Name возвращает имя источника
func (s *StaticSource) Name() string { return SourceStatic }

// Fetch разбирает документы по порядку. Неразборчивый документ пропускается с записью в лог.
// Позиции записей сквозные по всем документам, поэтому идентификаторы q_N не пересекаются.
func (s *StaticSource) Fetch(ctx context.Context) ([]entity.Question, error) {
	var merged []RawQuestion
	for _, doc := range s.docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raws, err := ParseDocument(doc.Data)
		if err != nil {
			log.Printf("[QuestionStore] Пропускаем документ %s: %v", doc.Name, err)
			continue
		}
		merged = append(merged, raws...)
	}
	return activeOnly(NormalizeAll(merged)), nil
}

// activeOnly отбрасывает вопросы с is_active=false, как это делает ListActive
func activeOnly(questions []entity.Question) []entity.Question {
	out := questions[:0]
	for _, q := range questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out
}

// BundledDocuments возвращает встроенные документы, упорядоченные по имени файла
func BundledDocuments() ([]StaticDocument, error) {
	entries, err := fs.ReadDir(bundled, "data")
	if err != nil {
		return nil, fmt.Errorf("read bundled questions: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]StaticDocument, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(bundled, path.Join("data", name))
		if err != nil {
			return nil, fmt.Errorf("read bundled %s: %w", name, err)
		}
		docs = append(docs, StaticDocument{Name: name, Data: data})
	}
	return docs, nil
}

// ReadDocuments читает документы с диска. Отсутствующий файл - ошибка.
func ReadDocuments(paths ...string) ([]StaticDocument, error) {
	docs := make([]StaticDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, StaticDocument{Name: p, Data: data})
	}
	return docs, nil
}
