package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
)

const sessionKeyPrefix = "play:session:"

// SessionRepo реализует repository.SessionRepository поверх Redis.
// Прохождение хранится одним JSON-значением с TTL, каждое сохранение продлевает срок жизни.
type SessionRepo struct {
	client redis.UniversalClient
}

// NewSessionRepo создает новый репозиторий прохождений и возвращает ошибку при проблемах
func NewSessionRepo(client redis.UniversalClient) (*SessionRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil for SessionRepo")
	}
	return &SessionRepo{client: client}, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save сохраняет прохождение
func (r *SessionRepo) Save(ctx context.Context, session *entity.PlaySession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

// Get возвращает прохождение, apperrors.ErrNotFound если оно истекло или не существовало
func (r *SessionRepo) Get(ctx context.Context, id string) (*entity.PlaySession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	var session entity.PlaySession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

// Delete удаляет прохождение
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

var _ repository.SessionRepository = (*SessionRepo)(nil)
