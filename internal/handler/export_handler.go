package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/domain/entity"
	"github.com/yourusername/eduplay-api/internal/domain/quizrunner"
	"github.com/yourusername/eduplay-api/internal/service"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

// exportHeaders - колонки выгрузки вопросов: номер, текст, слоты A-D, ответ, вложения
var exportHeaders = []string{"№", "Вопрос", "A", "B", "C", "D", "Правильный ответ", "Изображение", "Аудио", "Видео"}

// ExportGame выгружает вопросы игры в CSV или Excel
// GET /api/games/:id/export?format=csv|xlsx
func (h *GameHandler) ExportGame(c *gin.Context) {
	gameID := c.MustGet("gameID").(uint)
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "error_type": "bad_request"})
		return
	}

	game, err := h.gameService.GetGameWithQuestions(gameID)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("game_%d_questions_%s", gameID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, game, filename)
	default:
		h.exportCSV(c, game, filename)
	}
}

// exportRow формирует строку выгрузки для вопроса
func exportRow(i int, q *entity.Question) []string {
	row := make([]string, 0, len(exportHeaders))
	row = append(row, strconv.Itoa(i+1), sanitizeForExcel(q.Text))
	for slot := 0; slot < service.MaxAnswerSlots; slot++ {
		answer := ""
		if slot < len(q.Answers) {
			answer = q.Answers[slot]
		}
		row = append(row, sanitizeForExcel(answer))
	}
	return append(row,
		quizrunner.ChoiceLabel(q.CorrectAnswer),
		yesNo(q.ImageRef != ""),
		yesNo(q.AudioRef != ""),
		yesNo(q.VideoRef != ""),
	)
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

// exportCSV экспортирует вопросы в CSV с правильным экранированием спецсимволов
func (h *GameHandler) exportCSV(c *gin.Context, game *entity.Game, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range game.Questions {
		writer.Write(exportRow(i, &game.Questions[i]))
	}
}

// exportXLSX экспортирует вопросы в Excel с использованием StreamWriter
func (h *GameHandler) exportXLSX(c *gin.Context, game *entity.Game, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Вопросы"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		logger.Log.Error("Ошибка создания StreamWriter", zap.Uint("game_id", game.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "error_type": "internal"})
		return
	}

	if err := sw.SetRow("A1", toCells(exportHeaders)); err != nil {
		logger.Log.Warn("Ошибка записи заголовков", zap.Error(err))
	}
	for i := range game.Questions {
		cell := fmt.Sprintf("A%d", i+2)
		if err := sw.SetRow(cell, toCells(exportRow(i, &game.Questions[i]))); err != nil {
			logger.Log.Warn("Ошибка записи строки", zap.Int("row", i+2), zap.Error(err))
		}
	}

	if err := sw.Flush(); err != nil {
		logger.Log.Error("Ошибка при Flush", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "error_type": "internal"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		logger.Log.Error("Ошибка записи Excel в response", zap.Error(err))
	}
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
