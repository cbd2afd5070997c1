package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает gin.Context для unit тестов хендлеров
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// doJSON выполняет запрос к роутеру
func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ============================================================================
// Хранилища в памяти для сквозных тестов хендлеров с настоящими сервисами
// ============================================================================

type memoryStore struct {
	mu        sync.Mutex
	games     map[uint]*entity.Game
	questions map[uint]*entity.Question
	results   []entity.PlayResult
	sessions  map[string]entity.PlaySession
	profiles  map[uint]*entity.Profile
	nextID    uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		games:     make(map[uint]*entity.Game),
		questions: make(map[uint]*entity.Question),
		sessions:  make(map[string]entity.PlaySession),
		profiles:  make(map[uint]*entity.Profile),
	}
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

// seedGame добавляет игру с вопросами и возвращает её ID
func (s *memoryStore) seedGame(title, status string, questions ...entity.Question) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &entity.Game{ID: s.id(), Title: title, Type: entity.GameTypeQuiz, Status: status, QuestionCount: len(questions)}
	s.games[g.ID] = g
	for i := range questions {
		q := questions[i]
		q.ID = s.id()
		q.GameID = g.ID
		q.Position = i
		s.questions[q.ID] = &q
	}
	return g.ID
}

type memGameRepo struct{ s *memoryStore }

func (r memGameRepo) Create(game *entity.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	game.ID = r.s.id()
	g := *game
	g.Questions = nil
	r.s.games[g.ID] = &g
	return nil
}

func (r memGameRepo) CreateWithQuestions(game *entity.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	game.ID = r.s.id()
	game.QuestionCount = len(game.Questions)
	for i := range game.Questions {
		q := &game.Questions[i]
		q.ID = r.s.id()
		q.GameID = game.ID
		cp := *q
		r.s.questions[cp.ID] = &cp
	}
	g := *game
	g.Questions = nil
	r.s.games[g.ID] = &g
	return nil
}

func (r memGameRepo) GetByID(id uint) (*entity.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r memGameRepo) GetWithQuestions(id uint) (*entity.Game, error) {
	g, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	qs, _ := memQuestionRepo(r).GetByGameID(id)
	g.Questions = qs
	return g, nil
}

func (r memGameRepo) Update(game *entity.Game) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[game.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	g.Title = game.Title
	g.Type = game.Type
	g.Category = game.Category
	g.Difficulty = game.Difficulty
	g.Description = game.Description
	return nil
}

func (r memGameRepo) UpdateStatus(gameID uint, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[gameID]
	if !ok {
		return apperrors.ErrNotFound
	}
	g.Status = status
	return nil
}

func (r memGameRepo) AppendQuestion(question *entity.Question, maxQuestions int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.games[question.GameID]
	if !ok {
		return apperrors.ErrNotFound
	}
	count, maxPos := 0, -1
	for _, q := range r.s.questions {
		if q.GameID == question.GameID {
			count++
			if q.Position > maxPos {
				maxPos = q.Position
			}
		}
	}
	if maxQuestions > 0 && count >= maxQuestions {
		return repository.ErrQuestionLimitReached
	}
	question.ID = r.s.id()
	question.Position = maxPos + 1
	cp := *question
	r.s.questions[cp.ID] = &cp
	g.QuestionCount = count + 1
	return nil
}

func (r memGameRepo) RemoveQuestion(questionID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[questionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.questions, questionID)
	if g, ok := r.s.games[q.GameID]; ok && g.QuestionCount > 0 {
		g.QuestionCount--
	}
	return nil
}

func (r memGameRepo) IncrementPlayCount(gameID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g, ok := r.s.games[gameID]; ok {
		g.PlayCount++
	}
	return nil
}

func (r memGameRepo) ListWithFilters(filters repository.GameFilters, limit, offset int) ([]entity.Game, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Game
	for _, g := range r.s.games {
		if filters.Status != "" && g.Status != filters.Status {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if offset >= len(out) {
		return []entity.Game{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r memGameRepo) ListByAuthor(authorID uint) ([]entity.Game, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Game
	for _, g := range r.s.games {
		if g.AuthorID == authorID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r memGameRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.games[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.games, id)
	return nil
}

type memQuestionRepo struct{ s *memoryStore }

func (r memQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (r memQuestionRepo) GetByGameID(gameID uint) ([]entity.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Question{}
	for _, q := range r.s.questions {
		if q.GameID == gameID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memQuestionRepo) Update(question *entity.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[question.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	q.Text = question.Text
	q.Answers = append(entity.StringArray(nil), question.Answers...)
	q.CorrectAnswer = question.CorrectAnswer
	return nil
}

func (r memQuestionRepo) SetMediaRef(questionID uint, kind, ref string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.questions[questionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	q.SetMediaRef(kind, ref)
	return nil
}

func (r memQuestionRepo) CountByGameID(gameID uint) (int64, error) {
	qs, _ := r.GetByGameID(gameID)
	return int64(len(qs)), nil
}

type memResultRepo struct{ s *memoryStore }

func (r memResultRepo) Save(result *entity.PlayResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.results {
		if existing.SessionID == result.SessionID && existing.Attempt == result.Attempt {
			return nil
		}
	}
	result.ID = r.s.id()
	r.s.results = append(r.s.results, *result)
	return nil
}

func (r memResultRepo) ListByGame(gameID uint, limit, offset int) ([]entity.PlayResult, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.PlayResult
	for i := len(r.s.results) - 1; i >= 0; i-- {
		if r.s.results[i].GameID == gameID {
			out = append(out, r.s.results[i])
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []entity.PlayResult{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (r memResultRepo) SummaryByGames(gameIDs []uint) (*repository.PlayResultSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make(map[uint]bool, len(gameIDs))
	for _, id := range gameIDs {
		ids[id] = true
	}
	summary := &repository.PlayResultSummary{}
	sum := 0
	for _, res := range r.s.results {
		if ids[res.GameID] {
			summary.Count++
			sum += res.Percentage
		}
	}
	if summary.Count > 0 {
		summary.AveragePercentage = float64(sum) / float64(summary.Count)
	}
	return summary, nil
}

type memSessionRepo struct{ s *memoryStore }

func (r memSessionRepo) Save(ctx context.Context, session *entity.PlaySession, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = *session
	return nil
}

func (r memSessionRepo) Get(ctx context.Context, id string) (*entity.PlaySession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.sessions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r memSessionRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.sessions, id)
	return nil
}

type memProfileRepo struct{ s *memoryStore }

func (r memProfileRepo) Create(profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	profile.ID = r.s.id()
	p := *profile
	r.s.profiles[p.ID] = &p
	return nil
}

func (r memProfileRepo) GetByID(id uint) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memProfileRepo) Update(profile *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[profile.ID]; !ok {
		return apperrors.ErrNotFound
	}
	p := *profile
	r.s.profiles[p.ID] = &p
	return nil
}

var (
	_ repository.ProfileRepository    = memProfileRepo{}
	_ repository.GameRepository       = memGameRepo{}
	_ repository.QuestionRepository   = memQuestionRepo{}
	_ repository.PlayResultRepository = memResultRepo{}
	_ repository.SessionRepository    = memSessionRepo{}
)
