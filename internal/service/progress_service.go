package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/yourusername/examprep-api/internal/domain/entity"
	"github.com/yourusername/examprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/examprep-api/internal/pkg/errors"
)

// Диапазоны дашборда
const (
	Range7Days  = "7d"
	Range30Days = "30d"
	RangeAll    = "all"
)

// Уровни готовности к экзамену
const (
	ReadinessExamReady      = "exam_ready"
	ReadinessGettingThere   = "getting_there"
	ReadinessKeepPracticing = "keep_practicing"
)

const dashboardCachePrefix = "progress:dashboard:"

// QuestionLookup отдаёт вопросы банка по ID
type QuestionLookup interface {
	Get(id string) (*entity.Question, bool)
	Len() int
}

// ProgressConfig содержит пороги аналитики
type ProgressConfig struct {
	CacheTTL            time.Duration
	WeakThreshold       int
	StrongThreshold     int
	MinAttempts         int
	ReadinessMinAnswers int
	RecentLimit         int
}

// GroupStat - счётчики по типу вопроса или экзаменационной области
type GroupStat struct {
	Key       string `json:"key"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
	Accuracy  int    `json:"accuracy"`
}

// RecentActivity - один из последних ответов пользователя
type RecentActivity struct {
	QuestionID   string    `json:"question_id"`
	QuestionText string    `json:"question_text,omitempty"`
	QuestionType string    `json:"question_type"`
	ExamArea     string    `json:"exam_area"`
	IsCorrect    bool      `json:"is_correct"`
	TimeSpent    int       `json:"time_spent"`
	AnsweredAt   time.Time `json:"answered_at"`
}

// Dashboard - сводка прогресса пользователя за диапазон
type Dashboard struct {
	UserID          string           `json:"user_id"`
	Range           string           `json:"range"`
	TotalQuestions  int              `json:"total_questions"`
	Attempted       int              `json:"questions_attempted"`
	UniqueAttempted int              `json:"unique_questions_attempted"`
	Correct         int              `json:"correct_answers"`
	Accuracy        int              `json:"accuracy"`
	AverageTime     int              `json:"average_time"`
	Readiness       int              `json:"readiness_score"`
	ReadinessLevel  string           `json:"readiness_level"`
	ByType          []GroupStat      `json:"by_type"`
	ByArea          []GroupStat      `json:"by_area"`
	WeakAreas       []GroupStat      `json:"weak_areas"`
	StrongAreas     []GroupStat      `json:"strong_areas"`
	Recent          []RecentActivity `json:"recent_activity"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// ExportRow - строка выгрузки журнала ответов
type ExportRow struct {
	AnsweredAt   time.Time
	QuestionID   string
	QuestionType string
	ExamArea     string
	Topic        string
	IsCorrect    bool
	TimeSpent    int
	Attempt      int
}

// ProgressService строит аналитику по журналу ответов
type ProgressService struct {
	progressRepo repository.ProgressRepository
	cacheRepo    repository.CacheRepository
	questions    QuestionLookup
	config       ProgressConfig
	now          func() time.Time
}

// NewProgressService создает сервис. cacheRepo может быть nil.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	cacheRepo repository.CacheRepository,
	questions QuestionLookup,
	config ProgressConfig,
) *ProgressService {
	if config.RecentLimit <= 0 {
		config.RecentLimit = 10
	}
	return &ProgressService{
		progressRepo: progressRepo,
		cacheRepo:    cacheRepo,
		questions:    questions,
		config:       config,
		now:          time.Now,
	}
}

// NormalizeRange приводит диапазон к известному значению. Пустой диапазон - 7d.
func NormalizeRange(raw string) (string, error) {
	switch raw {
	case "":
		return Range7Days, nil
	case Range7Days, Range30Days, RangeAll:
		return raw, nil
	}
	return "", ErrInvalidRange
}

func (s *ProgressService) since(rangeKey string) time.Time {
	now := s.now()
	switch rangeKey {
	case Range7Days:
		return now.AddDate(0, 0, -7)
	case Range30Days:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

func dashboardCacheKey(userID, rangeKey string) string {
	return fmt.Sprintf("%s%s:%s", dashboardCachePrefix, userID, rangeKey)
}

// Dashboard возвращает сводку из кеша или строит её по журналу
func (s *ProgressService) Dashboard(ctx context.Context, userID, rangeKey string) (*Dashboard, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	rangeKey, err := NormalizeRange(rangeKey)
	if err != nil {
		return nil, err
	}

	cacheKey := dashboardCacheKey(userID, rangeKey)
	if s.cacheRepo != nil {
		var cached Dashboard
		err := s.cacheRepo.GetJSON(ctx, cacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[ProgressService] Ошибка чтения кеша %s: %v", cacheKey, err)
		}
	}

	records, err := s.progressRepo.ListByUserSince(ctx, userID, s.since(rangeKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load progress for user %s: %w", userID, err)
	}

	dashboard := s.build(userID, rangeKey, records)

	if s.cacheRepo != nil && s.config.CacheTTL > 0 {
		if err := s.cacheRepo.SetJSON(ctx, cacheKey, dashboard, s.config.CacheTTL); err != nil {
			log.Printf("[ProgressService] Ошибка записи кеша %s: %v", cacheKey, err)
		}
	}
	return dashboard, nil
}

// build считает сводку. records упорядочены от новых к старым.
func (s *ProgressService) build(userID, rangeKey string, records []entity.UserProgress) *Dashboard {
	d := &Dashboard{
		UserID:         userID,
		Range:          rangeKey,
		TotalQuestions: s.questions.Len(),
		ByType:         []GroupStat{},
		ByArea:         []GroupStat{},
		WeakAreas:      []GroupStat{},
		StrongAreas:    []GroupStat{},
		Recent:         []RecentActivity{},
		GeneratedAt:    s.now(),
	}

	byType := map[string]*GroupStat{}
	byArea := map[string]*GroupStat{}
	unique := map[string]struct{}{}
	totalTime := 0

	for i, r := range records {
		d.Attempted++
		if r.IsCorrect {
			d.Correct++
		}
		totalTime += r.TimeSpent
		unique[r.QuestionID] = struct{}{}

		typeKey, areaKey, text := "unknown", "unknown", ""
		if q, ok := s.questions.Get(r.QuestionID); ok {
			typeKey, areaKey, text = q.TypeKey(), q.AreaKey(), q.Text
		}
		addTo(byType, typeKey, r.IsCorrect)
		addTo(byArea, areaKey, r.IsCorrect)

		if i < s.config.RecentLimit {
			d.Recent = append(d.Recent, RecentActivity{
				QuestionID:   r.QuestionID,
				QuestionText: text,
				QuestionType: typeKey,
				ExamArea:     areaKey,
				IsCorrect:    r.IsCorrect,
				TimeSpent:    r.TimeSpent,
				AnsweredAt:   r.CreatedAt,
			})
		}
	}

	d.UniqueAttempted = len(unique)
	if d.Attempted > 0 {
		d.Accuracy = percent(d.Correct, d.Attempted)
		d.AverageTime = int(math.Round(float64(totalTime) / float64(d.Attempted)))
	}
	d.ByType = sortedGroups(byType)
	d.ByArea = sortedGroups(byArea)

	for _, area := range d.ByArea {
		if area.Attempted < s.config.MinAttempts {
			continue
		}
		exact := float64(area.Correct) * 100 / float64(area.Attempted)
		switch {
		case exact < float64(s.config.WeakThreshold):
			d.WeakAreas = append(d.WeakAreas, area)
		case exact >= float64(s.config.StrongThreshold):
			d.StrongAreas = append(d.StrongAreas, area)
		}
	}

	d.Readiness = s.readiness(d.Accuracy, d.Attempted, d.TotalQuestions)
	d.ReadinessLevel = readinessLevel(d.Readiness)
	return d
}

// readiness = min(100, round(accuracy * attempted / total)), пока ответов не больше порога - 0
func (s *ProgressService) readiness(accuracy, attempted, total int) int {
	if attempted <= s.config.ReadinessMinAnswers || total == 0 {
		return 0
	}
	score := int(math.Round(float64(accuracy) * float64(attempted) / float64(total)))
	if score > 100 {
		return 100
	}
	return score
}

func readinessLevel(score int) string {
	switch {
	case score >= 80:
		return ReadinessExamReady
	case score >= 60:
		return ReadinessGettingThere
	}
	return ReadinessKeepPracticing
}

func addTo(groups map[string]*GroupStat, key string, isCorrect bool) {
	g, ok := groups[key]
	if !ok {
		g = &GroupStat{Key: key}
		groups[key] = g
	}
	g.Attempted++
	if isCorrect {
		g.Correct++
	}
}

func sortedGroups(groups map[string]*GroupStat) []GroupStat {
	out := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		g.Accuracy = percent(g.Correct, g.Attempted)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

// ExportRows возвращает журнал ответов пользователя за диапазон, от новых к старым
func (s *ProgressService) ExportRows(ctx context.Context, userID, rangeKey string) ([]ExportRow, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	rangeKey, err := NormalizeRange(rangeKey)
	if err != nil {
		return nil, err
	}
	records, err := s.progressRepo.ListByUserSince(ctx, userID, s.since(rangeKey))
	if err != nil {
		return nil, fmt.Errorf("failed to load progress for export: %w", err)
	}

	rows := make([]ExportRow, 0, len(records))
	for _, r := range records {
		row := ExportRow{
			AnsweredAt: r.CreatedAt,
			QuestionID: r.QuestionID,
			IsCorrect:  r.IsCorrect,
			TimeSpent:  r.TimeSpent,
			Attempt:    r.AttemptNumber,
		}
		if q, ok := s.questions.Get(r.QuestionID); ok {
			row.QuestionType = q.TypeKey()
			row.ExamArea = q.AreaKey()
			row.Topic = q.Topic
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// InvalidateUser сбрасывает кеш дашборда пользователя
func (s *ProgressService) InvalidateUser(ctx context.Context, userID string) {
	if s.cacheRepo == nil || userID == "" {
		return
	}
	if _, err := s.cacheRepo.DeleteByPrefix(ctx, dashboardCachePrefix+userID+":"); err != nil {
		log.Printf("[ProgressService] Не удалось сбросить кеш пользователя %s: %v", userID, err)
	}
}

// InvalidateAll сбрасывает кеш дашбордов всех пользователей (после перезагрузки банка)
func (s *ProgressService) InvalidateAll(ctx context.Context) {
	if s.cacheRepo == nil {
		return
	}
	deleted, err := s.cacheRepo.DeleteByPrefix(ctx, dashboardCachePrefix)
	if err != nil {
		log.Printf("[ProgressService] Не удалось сбросить кеш дашбордов: %v", err)
		return
	}
	log.Printf("[ProgressService] Сброшено %d закешированных дашбордов", deleted)
}

// OnProgressSaved - обработчик успешной записи в журнал, сбрасывает кеш дашборда
func (s *ProgressService) OnProgressSaved(record entity.UserProgress) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.InvalidateUser(ctx, record.UserID)
}
