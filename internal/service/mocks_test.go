package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockGameRepository реализует repository.GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(game *entity.Game) error {
	args := m.Called(game)
	return args.Error(0)
}

func (m *MockGameRepository) CreateWithQuestions(game *entity.Game) error {
	args := m.Called(game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(id uint) (*entity.Game, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepository) GetWithQuestions(id uint) (*entity.Game, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (m *MockGameRepository) Update(game *entity.Game) error {
	args := m.Called(game)
	return args.Error(0)
}

func (m *MockGameRepository) UpdateStatus(gameID uint, status string) error {
	args := m.Called(gameID, status)
	return args.Error(0)
}

func (m *MockGameRepository) AppendQuestion(question *entity.Question, maxQuestions int) error {
	args := m.Called(question, maxQuestions)
	return args.Error(0)
}

func (m *MockGameRepository) RemoveQuestion(questionID uint) error {
	args := m.Called(questionID)
	return args.Error(0)
}

func (m *MockGameRepository) IncrementPlayCount(gameID uint) error {
	args := m.Called(gameID)
	return args.Error(0)
}

func (m *MockGameRepository) ListWithFilters(filters repository.GameFilters, limit, offset int) ([]entity.Game, int64, error) {
	args := m.Called(filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Game), args.Get(1).(int64), args.Error(2)
}

func (m *MockGameRepository) ListByAuthor(authorID uint) ([]entity.Game, error) {
	args := m.Called(authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Game), args.Error(1)
}

func (m *MockGameRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepository) SetMediaRef(questionID uint, kind, ref string) error {
	args := m.Called(questionID, kind, ref)
	return args.Error(0)
}

func (m *MockQuestionRepository) CountByGameID(gameID uint) (int64, error) {
	args := m.Called(gameID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProfileRepository реализует repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(profile *entity.Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByID(id uint) (*entity.Profile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(profile *entity.Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

// MockPlayResultRepository реализует repository.PlayResultRepository
type MockPlayResultRepository struct {
	mock.Mock
}

func (m *MockPlayResultRepository) Save(result *entity.PlayResult) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockPlayResultRepository) ListByGame(gameID uint, limit, offset int) ([]entity.PlayResult, int64, error) {
	args := m.Called(gameID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.PlayResult), args.Get(1).(int64), args.Error(2)
}

func (m *MockPlayResultRepository) SummaryByGames(gameIDs []uint) (*repository.PlayResultSummary, error) {
	args := m.Called(gameIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PlayResultSummary), args.Error(1)
}

// memorySessionRepo - хранилище прохождений в памяти, хранит копии значений
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]entity.PlaySession
	saves    int
	lastTTL  time.Duration
	saveErr  error
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]entity.PlaySession)}
}

func (r *memorySessionRepo) Save(ctx context.Context, session *entity.PlaySession, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sessions[session.ID] = *session
	r.saves++
	r.lastTTL = ttl
	return nil
}

func (r *memorySessionRepo) Get(ctx context.Context, id string) (*entity.PlaySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// ============================================================================
// Моки внешних зависимостей
// ============================================================================

// MockStorageProvider реализует storage.Provider
type MockStorageProvider struct {
	mock.Mock
}

func (m *MockStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageProvider) GetURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockEmailSender реализует EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Проверки соответствия интерфейсам
var (
	_ repository.GameRepository       = (*MockGameRepository)(nil)
	_ repository.QuestionRepository   = (*MockQuestionRepository)(nil)
	_ repository.ProfileRepository    = (*MockProfileRepository)(nil)
	_ repository.PlayResultRepository = (*MockPlayResultRepository)(nil)
	_ repository.SessionRepository    = (*memorySessionRepo)(nil)
	_ EmailSender                     = (*MockEmailSender)(nil)
)
