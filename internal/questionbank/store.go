package questionbank

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yourusername/examprep-api/internal/domain/entity"
)

// Откуда загружено текущее содержимое Store
const (
	SourceRemote = "remote"
	SourceStatic = "static"
	SourceEmpty  = "empty"
)

// LoadResult описывает итог одной загрузки
type LoadResult struct {
	Source   string    `json:"source"`
	Count    int       `json:"count"`
	Stale    bool      `json:"stale"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Store хранит упорядоченный снимок вопросов. После загрузки снимок только читается.
type Store struct {
	remote Source
	static Source

	generation atomic.Uint64

	mu        sync.RWMutex
	questions []entity.Question
	index     map[string]int
	source    string
	loadedAt  time.Time
}

// NewStore создает пустой Store. remote может быть nil.
func NewStore(remote, static Source) *Store {
	return &Store{
		remote: remote,
		static: static,
		index:  map[string]int{},
		source: SourceEmpty,
	}
}

// Load загружает вопросы: сначала удалённый источник, при ошибке или пустом ответе - статические документы.
// Ошибок не возвращает: если пусто везде, Store остаётся пустым.
// При конкурентных вызовах выигрывает последний начатый: результат устаревшей загрузки отбрасывается.
func (s *Store) Load(ctx context.Context) LoadResult {
	gen := s.generation.Add(1)

	questions, source := s.fetch(ctx)
	canonical := make([]entity.Question, len(questions))
	for i, q := range questions {
		canonical[i] = Canonicalize(q)
	}
	questions = Dedupe(canonical)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation.Load() {
		log.Printf("[QuestionStore] Загрузка #%d устарела, результат (%d вопросов) отброшен", gen, len(questions))
		return LoadResult{Source: s.source, Count: len(s.questions), Stale: true, LoadedAt: s.loadedAt}
	}

	index := make(map[string]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}
	s.questions = questions
	s.index = index
	s.source = source
	s.loadedAt = time.Now()

	log.Printf("[QuestionStore] Загружено %d вопросов (source=%s)", len(questions), source)
	return LoadResult{Source: source, Count: len(questions), LoadedAt: s.loadedAt}
}

func (s *Store) fetch(ctx context.Context) ([]entity.Question, string) {
	if s.remote != nil {
		questions, err := s.remote.Fetch(ctx)
		switch {
		case err != nil:
			log.Printf("[QuestionStore] Remote source failed, falling back to static: %v", err)
		case len(questions) == 0:
			log.Printf("[QuestionStore] Remote source returned no questions, falling back to static")
		default:
			return questions, SourceRemote
		}
	}

	if s.static != nil {
		questions, err := s.static.Fetch(ctx)
		if err != nil {
			log.Printf("[QuestionStore] Static source failed: %v", err)
		} else if len(questions) > 0 {
			return questions, SourceStatic
		}
	}
	return nil, SourceEmpty
}

// Dedupe оставляет первое вхождение каждого ID, сохраняя порядок
func Dedupe(questions []entity.Question) []entity.Question {
	seen := make(map[string]struct{}, len(questions))
	out := make([]entity.Question, 0, len(questions))
	for _, q := range questions {
		if _, ok := seen[q.ID]; ok {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}
	return out
}

// Questions возвращает текущий снимок. Срез общий: вызывающий код не должен его изменять.
func (s *Store) Questions() []entity.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions
}

// Get возвращает вопрос по ID
func (s *Store) Get(id string) (*entity.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.questions[i], true
}

// Len возвращает число вопросов
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// Source возвращает источник текущего снимка
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// LoadedAt возвращает время последней успешной загрузки
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
