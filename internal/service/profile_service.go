package service

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
)

// ProfileInput - изменяемые поля профиля
type ProfileInput struct {
	Name      string
	Email     string
	School    string
	Bio       string
	AvatarURL string
}

// ProfileService предоставляет методы для работы с профилем автора
type ProfileService struct {
	profileRepo repository.ProfileRepository
	gameRepo    repository.GameRepository
	resultRepo  repository.PlayResultRepository
}

// NewProfileService создает сервис профилей
func NewProfileService(
	profileRepo repository.ProfileRepository,
	gameRepo repository.GameRepository,
	resultRepo repository.PlayResultRepository,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		gameRepo:    gameRepo,
		resultRepo:  resultRepo,
	}
}

func validateProfileInput(in *ProfileInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.School = strings.TrimSpace(in.School)
	in.Bio = strings.TrimSpace(in.Bio)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)

	if in.Name == "" || utf8.RuneCountInString(in.Name) > 100 {
		return validationError("name must be 1-100 characters")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return validationError("invalid email")
		}
	}
	if utf8.RuneCountInString(in.School) > 255 || utf8.RuneCountInString(in.AvatarURL) > 255 {
		return validationError("school or avatar url is too long")
	}
	if utf8.RuneCountInString(in.Bio) > 500 {
		return validationError("bio is too long")
	}
	return nil
}

// Create создает профиль
func (s *ProfileService) Create(in ProfileInput) (*entity.Profile, error) {
	if err := validateProfileInput(&in); err != nil {
		return nil, err
	}

	profile := &entity.Profile{
		Name:      in.Name,
		Email:     in.Email,
		School:    in.School,
		Bio:       in.Bio,
		AvatarURL: in.AvatarURL,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// Get возвращает профиль
func (s *ProfileService) Get(profileID uint) (*entity.Profile, error) {
	return s.profileRepo.GetByID(profileID)
}

// Update изменяет профиль
func (s *ProfileService) Update(profileID uint, in ProfileInput) (*entity.Profile, error) {
	if err := validateProfileInput(&in); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(profileID)
	if err != nil {
		return nil, err
	}

	profile.Name = in.Name
	profile.Email = in.Email
	profile.School = in.School
	profile.Bio = in.Bio
	profile.AvatarURL = in.AvatarURL

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// Games возвращает игры автора
func (s *ProfileService) Games(profileID uint) ([]entity.Game, error) {
	if _, err := s.profileRepo.GetByID(profileID); err != nil {
		return nil, err
	}
	return s.gameRepo.ListByAuthor(profileID)
}

// Stats считает статистику автора: игры, прохождения, вопросы и средний результат
func (s *ProfileService) Stats(profileID uint) (*entity.ProfileStats, error) {
	games, err := s.Games(profileID)
	if err != nil {
		return nil, err
	}

	stats := &entity.ProfileStats{TotalGames: len(games)}
	ids := make([]uint, 0, len(games))
	for _, g := range games {
		stats.TotalPlays += g.PlayCount
		stats.TotalQuestions += g.QuestionCount
		ids = append(ids, g.ID)
	}

	summary, err := s.resultRepo.SummaryByGames(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize play results: %w", err)
	}
	stats.FinishedSessions = summary.Count
	stats.AveragePercentage = math.Round(summary.AveragePercentage*10) / 10

	return stats, nil
}
