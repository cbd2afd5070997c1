package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
)

// ProfileRepo реализует repository.ProfileRepository
type ProfileRepo struct {
	db *gorm.DB
}

// NewProfileRepo создает новый репозиторий профилей
func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Create создает профиль
func (r *ProfileRepo) Create(profile *entity.Profile) error {
	return r.db.Create(profile).Error
}

// GetByID возвращает профиль по ID
func (r *ProfileRepo) GetByID(id uint) (*entity.Profile, error) {
	var profile entity.Profile
	err := r.db.First(&profile, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Update обновляет профиль
func (r *ProfileRepo) Update(profile *entity.Profile) error {
	return r.db.Save(profile).Error
}
