package repository

import (
	"github.com/yourusername/eduplay-api/internal/domain/entity"
)

// ProfileRepository определяет методы для работы с профилями авторов
type ProfileRepository interface {
	Create(profile *entity.Profile) error
	GetByID(id uint) (*entity.Profile, error)
	Update(profile *entity.Profile) error
}
