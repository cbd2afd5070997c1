package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/repository"
	apperrors "github.com/yourusername/eduplay-api/internal/pkg/errors"
)

func newTestGameService(maxQuestions int) (*GameService, *MockGameRepository, *MockQuestionRepository) {
	gameRepo := new(MockGameRepository)
	questionRepo := new(MockQuestionRepository)
	return NewGameService(gameRepo, questionRepo, maxQuestions), gameRepo, questionRepo
}

func validQuestionInput() QuestionInput {
	return QuestionInput{
		Text:          "  Столица Франции?  ",
		Answers:       []string{"Берлин", " Париж ", "", "Рим"},
		CorrectAnswer: 1,
	}
}

// ============================================================================
// CreateGame
// ============================================================================

func TestCreateGame_Success(t *testing.T) {
	// Arrange
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("Create", mock.AnythingOfType("*entity.Game")).
		Run(func(args mock.Arguments) { args.Get(0).(*entity.Game).ID = 5 }).
		Return(nil)

	// Act
	game, err := svc.CreateGame(GameInput{
		AuthorID: 1, Title: "  Викторина по истории ", Type: entity.GameTypeQuiz,
		Category: "История", Difficulty: entity.DifficultyMedium,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(5), game.ID)
	assert.Equal(t, "Викторина по истории", game.Title, "название обрезается по краям")
	assert.Equal(t, entity.GameStatusDraft, game.Status, "новая игра - черновик")
	gameRepo.AssertExpectations(t)
}

func TestCreateGame_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		input GameInput
	}{
		{"короткое название", GameInput{Title: "ab", Type: entity.GameTypeQuiz}},
		{"пробельное название", GameInput{Title: "     ", Type: entity.GameTypeQuiz}},
		{"длинное название", GameInput{Title: strings.Repeat("я", 101), Type: entity.GameTypeQuiz}},
		{"неизвестный тип", GameInput{Title: "Игра", Type: "arcade"}},
		{"неизвестная сложность", GameInput{Title: "Игра", Type: entity.GameTypeQuiz, Difficulty: "insane"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, gameRepo, _ := newTestGameService(10)

			_, err := svc.CreateGame(tc.input)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			gameRepo.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestCreateGame_TitleLengthCountsRunes(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("Create", mock.Anything).Return(nil)

	_, err := svc.CreateGame(GameInput{Title: strings.Repeat("я", 100), Type: entity.GameTypeTest})

	assert.NoError(t, err, "100 кириллических символов допустимы")
}

// ============================================================================
// AddQuestion
// ============================================================================

func TestAddQuestion_AppendsThroughRepository(t *testing.T) {
	// Arrange
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("AppendQuestion", mock.AnythingOfType("*entity.Question"), 10).
		Run(func(args mock.Arguments) {
			q := args.Get(0).(*entity.Question)
			q.ID = 21
			q.Position = 5
		}).
		Return(nil)

	input := validQuestionInput()

	// Act
	q, err := svc.AddQuestion(3, input)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(21), q.ID)
	assert.Equal(t, uint(3), q.GameID)
	assert.Equal(t, 5, q.Position, "позицию назначает репозиторий внутри транзакции")
	assert.Equal(t, "Столица Франции?", q.Text)
	assert.Equal(t, entity.StringArray{"Берлин", "Париж", "", "Рим"}, q.Answers, "пустой слот сохраняет позицию")
	assert.Equal(t, " Париж ", input.Answers[1], "входной срез не изменяется")
	gameRepo.AssertExpectations(t)
}

func TestAddQuestion_RepositoryFailure(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("AppendQuestion", mock.Anything, 10).Return(errors.New("db down"))

	q, err := svc.AddQuestion(1, validQuestionInput())

	require.Error(t, err)
	assert.Nil(t, q)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
}

func TestAddQuestion_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		input QuestionInput
	}{
		{"пустой текст", QuestionInput{Text: "   ", Answers: []string{"A", "B"}, CorrectAnswer: 0}},
		{"один видимый вариант", QuestionInput{Text: "Q", Answers: []string{"A", " ", ""}, CorrectAnswer: 0}},
		{"правильный вне диапазона", QuestionInput{Text: "Q", Answers: []string{"A", "B"}, CorrectAnswer: 2}},
		{"отрицательный правильный", QuestionInput{Text: "Q", Answers: []string{"A", "B"}, CorrectAnswer: -1}},
		{"правильный указывает на пустой", QuestionInput{Text: "Q", Answers: []string{"A", "", "C"}, CorrectAnswer: 1}},
		{"слишком много слотов", QuestionInput{Text: "Q", Answers: []string{"A", "B", "C", "D", "E"}, CorrectAnswer: 0}},
		{"длинный текст", QuestionInput{Text: strings.Repeat("x", MaxQuestionText+1), Answers: []string{"A", "B"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, gameRepo, _ := newTestGameService(10)

			_, err := svc.AddQuestion(1, tc.input)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			gameRepo.AssertNotCalled(t, "AppendQuestion", mock.Anything, mock.Anything)
		})
	}
}

func TestAddQuestion_LimitReached(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(3)
	gameRepo.On("AppendQuestion", mock.Anything, 3).Return(repository.ErrQuestionLimitReached)

	_, err := svc.AddQuestion(1, validQuestionInput())

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "maximum number of questions is 3")
}

func TestAddQuestion_GameNotFound(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(3)
	gameRepo.On("AppendQuestion", mock.Anything, 3).Return(apperrors.ErrNotFound)

	_, err := svc.AddQuestion(9, validQuestionInput())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// UpdateQuestion / DeleteQuestion
// ============================================================================

func TestUpdateQuestion_KeepsMedia(t *testing.T) {
	svc, _, questionRepo := newTestGameService(10)
	existing := &entity.Question{ID: 7, GameID: 1, Text: "old", Answers: entity.StringArray{"a", "b"}, ImageRef: "image/x.png"}
	questionRepo.On("GetByID", uint(7)).Return(existing, nil)
	questionRepo.On("Update", existing).Return(nil)

	q, err := svc.UpdateQuestion(7, validQuestionInput())

	require.NoError(t, err)
	assert.Equal(t, "Столица Франции?", q.Text)
	assert.Equal(t, 1, q.CorrectAnswer)
	assert.Equal(t, "image/x.png", q.ImageRef, "вложения не теряются при правке")
}

func TestDeleteQuestion_RemovesThroughRepository(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("RemoveQuestion", uint(7)).Return(nil)

	err := svc.DeleteQuestion(7)

	require.NoError(t, err)
	gameRepo.AssertExpectations(t)
}

func TestDeleteQuestion_NotFound(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("RemoveQuestion", uint(7)).Return(apperrors.ErrNotFound)

	err := svc.DeleteQuestion(7)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// PublishGame
// ============================================================================

func TestPublishGame_RequiresQuestion(t *testing.T) {
	svc, gameRepo, questionRepo := newTestGameService(10)
	gameRepo.On("GetByID", uint(1)).Return(&entity.Game{ID: 1, Title: "Игра", Status: entity.GameStatusDraft}, nil)
	questionRepo.On("CountByGameID", uint(1)).Return(int64(0), nil)

	_, err := svc.PublishGame(1)

	assert.ErrorIs(t, err, apperrors.ErrValidation, "игру без вопросов нельзя опубликовать")
	gameRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestPublishGame_RequiresTitle(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("GetByID", uint(1)).Return(&entity.Game{ID: 1, Title: "  "}, nil)

	_, err := svc.PublishGame(1)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPublishGame_Success(t *testing.T) {
	svc, gameRepo, questionRepo := newTestGameService(10)
	gameRepo.On("GetByID", uint(1)).Return(&entity.Game{ID: 1, Title: "Игра", Status: entity.GameStatusDraft}, nil)
	questionRepo.On("CountByGameID", uint(1)).Return(int64(2), nil)
	gameRepo.On("UpdateStatus", uint(1), entity.GameStatusPublished).Return(nil)

	game, err := svc.PublishGame(1)

	require.NoError(t, err)
	assert.True(t, game.IsPublished())
}

func TestPublishGame_AlreadyPublishedIsNoop(t *testing.T) {
	svc, gameRepo, questionRepo := newTestGameService(10)
	gameRepo.On("GetByID", uint(1)).Return(&entity.Game{ID: 1, Title: "Игра", Status: entity.GameStatusPublished}, nil)
	questionRepo.On("CountByGameID", uint(1)).Return(int64(2), nil)

	game, err := svc.PublishGame(1)

	require.NoError(t, err)
	assert.True(t, game.IsPublished())
	gameRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestUnpublishGame(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("GetByID", uint(1)).Return(&entity.Game{ID: 1, Status: entity.GameStatusPublished}, nil)
	gameRepo.On("UpdateStatus", uint(1), entity.GameStatusDraft).Return(nil)

	game, err := svc.UnpublishGame(1)

	require.NoError(t, err)
	assert.False(t, game.IsPublished())
}

// ============================================================================
// DuplicateGame
// ============================================================================

func TestDuplicateGame_CopiesQuestions(t *testing.T) {
	// Arrange
	svc, gameRepo, _ := newTestGameService(10)
	src := &entity.Game{
		ID: 1, AuthorID: 2, Title: "Планеты", Type: entity.GameTypeQuiz, Status: entity.GameStatusPublished, PlayCount: 40,
		Questions: []entity.Question{
			{ID: 10, GameID: 1, Position: 0, Text: "Q1", Answers: entity.StringArray{"a", "b"}, CorrectAnswer: 0, ImageRef: "image/p.png"},
			{ID: 11, GameID: 1, Position: 1, Text: "Q2", Answers: entity.StringArray{"a", "b"}, CorrectAnswer: 1},
		},
	}
	gameRepo.On("GetWithQuestions", uint(1)).Return(src, nil)
	var created *entity.Game
	gameRepo.On("CreateWithQuestions", mock.AnythingOfType("*entity.Game")).
		Run(func(args mock.Arguments) {
			created = args.Get(0).(*entity.Game)
			created.ID = 99
			created.QuestionCount = len(created.Questions)
		}).
		Return(nil)

	// Act
	dup, err := svc.DuplicateGame(1, 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(99), dup.ID)
	assert.Equal(t, uint(7), dup.AuthorID)
	assert.Equal(t, "Планеты (копия)", dup.Title)
	assert.Equal(t, entity.GameStatusDraft, dup.Status)
	assert.Equal(t, 0, dup.PlayCount, "счётчик прохождений не копируется")
	assert.Equal(t, 2, dup.QuestionCount)

	require.Same(t, created, dup)
	copied := created.Questions
	require.Len(t, copied, 2)
	for i, q := range copied {
		assert.Zero(t, q.ID, "новые вопросы получают свои ID")
		assert.Equal(t, src.Questions[i].Position, q.Position)
		assert.Equal(t, src.Questions[i].Text, q.Text)
	}
	gameRepo.AssertNotCalled(t, "Create", mock.Anything)
	assert.Equal(t, "image/p.png", copied[0].ImageRef)

	copied[0].Answers[0] = "changed"
	assert.Equal(t, "a", src.Questions[0].Answers[0], "варианты копируются, а не разделяются")
}

func TestDuplicateGame_TruncatesLongTitle(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("GetWithQuestions", uint(1)).Return(&entity.Game{ID: 1, Title: strings.Repeat("ж", 100)}, nil)
	gameRepo.On("CreateWithQuestions", mock.Anything).Return(nil)

	dup, err := svc.DuplicateGame(1, 1)

	require.NoError(t, err)
	assert.Equal(t, MaxTitleLength, len([]rune(dup.Title)))
	assert.True(t, strings.HasSuffix(dup.Title, " (копия)"))
}

func TestDuplicateGame_FailedCreateLeavesNoCopy(t *testing.T) {
	// Arrange: транзакция создания копии откатилась
	svc, gameRepo, _ := newTestGameService(10)
	src := &entity.Game{
		ID: 1, Title: "Дроби",
		Questions: []entity.Question{{ID: 10, GameID: 1, Text: "Q1", Answers: entity.StringArray{"a", "b"}}},
	}
	gameRepo.On("GetWithQuestions", uint(1)).Return(src, nil)
	gameRepo.On("CreateWithQuestions", mock.AnythingOfType("*entity.Game")).Return(errors.New("db down"))

	// Act
	dup, err := svc.DuplicateGame(1, 7)

	// Assert
	require.Error(t, err)
	assert.Nil(t, dup)
	assert.Contains(t, err.Error(), "db down")
	gameRepo.AssertNumberOfCalls(t, "CreateWithQuestions", 1)
	gameRepo.AssertNotCalled(t, "Create", mock.Anything)
}

// ============================================================================
// ListCatalog
// ============================================================================

func TestListCatalog_PublishedOnlyWithPaging(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	expected := repository.GameFilters{Search: "мат", Type: entity.GameTypeQuiz, Status: entity.GameStatusPublished}
	gameRepo.On("ListWithFilters", expected, 20, 40).Return([]entity.Game{{ID: 1}}, int64(41), nil)

	games, total, err := svc.ListCatalog(CatalogFilters{Search: "  мат ", Type: entity.GameTypeQuiz}, 3, 0)

	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.Equal(t, int64(41), total)
	gameRepo.AssertExpectations(t)
}

func TestListCatalog_PageSizeClamped(t *testing.T) {
	svc, gameRepo, _ := newTestGameService(10)
	gameRepo.On("ListWithFilters", mock.Anything, MaxCatalogSize, 0).Return([]entity.Game{}, int64(0), nil)

	_, _, err := svc.ListCatalog(CatalogFilters{}, 0, 1000)

	require.NoError(t, err)
	gameRepo.AssertExpectations(t)
}

func TestListCatalog_InvalidFilter(t *testing.T) {
	svc, _, _ := newTestGameService(10)

	_, _, err := svc.ListCatalog(CatalogFilters{Type: "arcade"}, 1, 10)

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
