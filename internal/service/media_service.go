package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
	"github.com/yourusername/eduplay-api/pkg/logger"
	"github.com/yourusername/eduplay-api/pkg/storage"
)

// MediaUpload - загружаемый файл вложения
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// MediaService управляет вложениями вопросов (изображение, аудио, видео)
type MediaService struct {
	questionRepo repository.QuestionRepository
	storage      storage.Provider
	maxBytes     int64
}

// NewMediaService создает сервис вложений
func NewMediaService(questionRepo repository.QuestionRepository, provider storage.Provider, maxBytes int64) *MediaService {
	return &MediaService{
		questionRepo: questionRepo,
		storage:      provider,
		maxBytes:     maxBytes,
	}
}

// objectKey формирует ключ объекта: <вид>/<uuid><расширение>
func objectKey(kind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return kind + "/" + uuid.NewString() + ext
}

// checkContentType проверяет, что тип содержимого соответствует виду вложения
func checkContentType(kind, contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return validationError("invalid content type")
	}
	if !strings.HasPrefix(mediaType, kind+"/") {
		return validationError("content type %s does not match %s attachment", mediaType, kind)
	}
	return nil
}

// Attach загружает вложение и привязывает его к вопросу.
// Предыдущее вложение того же вида удаляется из хранилища.
func (s *MediaService) Attach(ctx context.Context, questionID uint, kind string, upload MediaUpload) (*entity.Question, error) {
	if !entity.IsValidMediaKind(kind) {
		return nil, validationError("unknown media kind %q", kind)
	}
	if upload.Size <= 0 {
		return nil, validationError("file is empty")
	}
	if upload.Size > s.maxBytes {
		return nil, validationError("file exceeds %d bytes", s.maxBytes)
	}
	if err := checkContentType(kind, upload.ContentType); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	key := objectKey(kind, upload.Filename)
	if _, err := s.storage.Upload(ctx, key, io.LimitReader(upload.Reader, upload.Size), upload.Size, upload.ContentType); err != nil {
		return nil, fmt.Errorf("%w: upload failed: %v", apperrors.ErrUnavailable, err)
	}

	previous := question.MediaRef(kind)
	if err := s.questionRepo.SetMediaRef(questionID, kind, key); err != nil {
		s.removeObject(ctx, key)
		return nil, fmt.Errorf("failed to attach media: %w", err)
	}
	question.SetMediaRef(kind, key)

	if previous != "" {
		s.removeObject(ctx, previous)
	}

	logger.Log.Info("Вложение загружено",
		zap.Uint("question_id", questionID), zap.String("kind", kind), zap.String("key", key), zap.Int64("size", upload.Size))
	return question, nil
}

// Detach отвязывает вложение от вопроса и удаляет объект
func (s *MediaService) Detach(ctx context.Context, questionID uint, kind string) (*entity.Question, error) {
	if !entity.IsValidMediaKind(kind) {
		return nil, validationError("unknown media kind %q", kind)
	}

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	ref := question.MediaRef(kind)
	if ref == "" {
		return nil, fmt.Errorf("%w: question has no %s attachment", apperrors.ErrNotFound, kind)
	}

	if err := s.questionRepo.SetMediaRef(questionID, kind, ""); err != nil {
		return nil, fmt.Errorf("failed to detach media: %w", err)
	}
	question.SetMediaRef(kind, "")

	s.removeObject(ctx, ref)
	return question, nil
}

// URL возвращает адрес вложения по его ссылке
func (s *MediaService) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.storage.GetURL(ref)
}

// removeObject удаляет объект, ошибка только логируется: ссылка на него уже снята
func (s *MediaService) removeObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.Log.Warn("Не удалось удалить объект из хранилища", zap.String("key", key), zap.Error(err))
	}
}
