package repository

import (
	"context"
	"time"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
)

// SessionRepository хранит эфемерные прохождения с ограниченным сроком жизни
type SessionRepository interface {
	Save(ctx context.Context, session *entity.PlaySession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*entity.PlaySession, error)
	Delete(ctx context.Context, id string) error
}
