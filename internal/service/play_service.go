package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/quizrunner"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
	"github.com/yourusername/eduplay-api/pkg/logger"
	"github.com/yourusername/eduplay-api/pkg/monitoring"
)

// Операции прохождения (используются в метриках и логах)
const (
	OpSelect  = "select"
	OpAdvance = "advance"
	OpBack    = "back"
	OpRestart = "restart"
)

// PlayService ведёт прохождения игр: каждое изменение - загрузка снимка,
// переход механизма прохождения и сохранение снимка обратно.
type PlayService struct {
	gameRepo    repository.GameRepository
	resultRepo  repository.PlayResultRepository
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	locks       *keyedMutex
	now         func() time.Time
}

// NewPlayService создает сервис прохождений
func NewPlayService(
	gameRepo repository.GameRepository,
	resultRepo repository.PlayResultRepository,
	sessionRepo repository.SessionRepository,
	ttl time.Duration,
) *PlayService {
	return &PlayService{
		gameRepo:    gameRepo,
		resultRepo:  resultRepo,
		sessionRepo: sessionRepo,
		ttl:         ttl,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

// StartSession начинает новое прохождение игры
func (s *PlayService) StartSession(ctx context.Context, gameID uint) (*entity.PlaySession, error) {
	game, err := s.gameRepo.GetWithQuestions(gameID)
	if err != nil {
		return nil, err
	}
	if len(game.Questions) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, quizrunner.ErrNoQuestions)
	}

	runner, err := quizrunner.New(entity.ToRunnerQuestions(game.Questions))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	now := s.now()
	session := &entity.PlaySession{
		ID:        uuid.NewString(),
		GameID:    game.ID,
		GameTitle: game.Title,
		GameType:  game.Type,
		Questions: runner.Questions(),
		State:     runner.Snapshot(),
		Attempt:   1,
		StartedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionRepo.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	monitoring.SessionsStarted.Inc()
	logger.Log.Info("Начато прохождение",
		zap.String("session_id", session.ID), zap.Uint("game_id", game.ID), zap.Int("questions", len(session.Questions)))
	return session, nil
}

// Get возвращает текущее состояние прохождения
func (s *PlayService) Get(ctx context.Context, sessionID string) (*entity.PlaySession, error) {
	return s.sessionRepo.Get(ctx, sessionID)
}

// Select выбирает вариант ответа на текущий вопрос
func (s *PlayService) Select(ctx context.Context, sessionID string, choice int) (*entity.PlaySession, error) {
	return s.mutate(ctx, sessionID, OpSelect, func(r *quizrunner.Runner, _ *entity.PlaySession) error {
		return r.SelectAnswer(choice)
	})
}

// Advance фиксирует ответ и переходит к следующему вопросу или завершает игру
func (s *PlayService) Advance(ctx context.Context, sessionID string) (*entity.PlaySession, error) {
	return s.mutate(ctx, sessionID, OpAdvance, func(r *quizrunner.Runner, _ *entity.PlaySession) error {
		return r.Advance()
	})
}

// GoBack возвращает к предыдущему вопросу
func (s *PlayService) GoBack(ctx context.Context, sessionID string) (*entity.PlaySession, error) {
	return s.mutate(ctx, sessionID, OpBack, func(r *quizrunner.Runner, _ *entity.PlaySession) error {
		return r.GoBack()
	})
}

// Restart начинает новую попытку в том же прохождении
func (s *PlayService) Restart(ctx context.Context, sessionID string) (*entity.PlaySession, error) {
	return s.mutate(ctx, sessionID, OpRestart, func(r *quizrunner.Runner, session *entity.PlaySession) error {
		r.Restart()
		session.Attempt++
		return nil
	})
}

// Close завершает прохождение и удаляет его снимок
func (s *PlayService) Close(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.sessionRepo.Delete(ctx, sessionID)
}

// GameResults возвращает итоги завершённых прохождений игры, новые первыми
func (s *PlayService) GameResults(gameID uint, page, pageSize int) ([]entity.PlayResult, int64, error) {
	if _, err := s.gameRepo.GetByID(gameID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxCatalogSize {
		pageSize = DefaultCatalogSize
	}
	return s.resultRepo.ListByGame(gameID, pageSize, (page-1)*pageSize)
}

// mutate выполняет переход под блокировкой прохождения.
// Отклонённый переход ничего не сохраняет.
func (s *PlayService) mutate(
	ctx context.Context,
	sessionID, op string,
	apply func(r *quizrunner.Runner, session *entity.PlaySession) error,
) (*entity.PlaySession, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	runner, err := quizrunner.Restore(session.Questions, session.State)
	if err != nil {
		logger.Log.Error("Повреждённый снимок прохождения", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
	}

	wasFinished := session.State.IsFinished()
	if err := apply(runner, session); err != nil {
		mapped := mapRunnerError(err)
		monitoring.SessionRejected.WithLabelValues(op, rejectReason(err)).Inc()
		logger.Log.Debug("Операция прохождения отклонена",
			zap.String("session_id", sessionID), zap.String("op", op), zap.Error(err))
		return nil, mapped
	}

	session.State = runner.Snapshot()
	session.UpdatedAt = s.now()
	if err := s.sessionRepo.Save(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if !wasFinished && session.State.IsFinished() {
		s.recordFinish(session)
	}
	return session, nil
}

// recordFinish учитывает завершённое прохождение. Ошибки только логируются:
// игрок уже получил результат, а статистика вторична.
func (s *PlayService) recordFinish(session *entity.PlaySession) {
	st := session.State
	tier := quizrunner.TierFor(st.Score, st.Total)
	monitoring.SessionsFinished.WithLabelValues(string(tier)).Inc()

	if err := s.gameRepo.IncrementPlayCount(session.GameID); err != nil {
		logger.Log.Error("Не удалось увеличить счётчик прохождений", zap.Uint("game_id", session.GameID), zap.Error(err))
	}

	result := &entity.PlayResult{
		GameID:      session.GameID,
		SessionID:   session.ID,
		Attempt:     session.Attempt,
		Score:       st.Score,
		Total:       st.Total,
		Percentage:  quizrunner.Percentage(st.Score, st.Total),
		Tier:        string(tier),
		CompletedAt: session.UpdatedAt,
	}
	if err := s.resultRepo.Save(result); err != nil {
		logger.Log.Error("Не удалось сохранить итог прохождения", zap.String("session_id", session.ID), zap.Error(err))
		return
	}

	logger.Log.Info("Прохождение завершено",
		zap.String("session_id", session.ID), zap.Int("score", st.Score), zap.Int("total", st.Total), zap.String("tier", string(tier)))
}

// mapRunnerError переводит ошибки механизма прохождения в ошибки приложения,
// сохраняя исходную ошибку в цепочке
func mapRunnerError(err error) error {
	switch {
	case errors.Is(err, quizrunner.ErrInvalidChoice):
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	case errors.Is(err, quizrunner.ErrInvalidTransition), errors.Is(err, quizrunner.ErrInvalidState):
		return fmt.Errorf("%w: %w", apperrors.ErrConflict, err)
	default:
		return err
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, quizrunner.ErrInvalidChoice):
		return "invalid_choice"
	case errors.Is(err, quizrunner.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, quizrunner.ErrInvalidState):
		return "invalid_state"
	default:
		return "other"
	}
}

// keyedMutex - набор мьютексов по ключу. Запись удаляется, когда её никто не держит.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock захватывает мьютекс ключа и возвращает функцию освобождения
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
