package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"smart-dpr-be/internal/constant"
	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/entity"
	"smart-dpr-be/internal/history"
	"smart-dpr-be/internal/pkg/logger"
	"smart-dpr-be/internal/pkg/serverutils"
	"smart-dpr-be/pkg/events"
	"smart-dpr-be/pkg/llm"
	pktNats "smart-dpr-be/pkg/nats"
	"smart-dpr-be/pkg/sheets"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	defaultLogsSheet = "Logs"
	defaultDataSheet = "Sheet1"

	// sheetReadRange bounds how much of a tab is handed to the model.
	sheetReadRange = "A1:Z1000"
)

type IChatService interface {
	QueryLogs(ctx context.Context, userId uuid.UUID, req *dto.QueryLogsRequest) (*dto.QueryLogsResponse, error)
	UpdateSheet(ctx context.Context, userId uuid.UUID, req *dto.UpdateSheetRequest) (*dto.UpdateSheetResponse, error)
	PrintHelloWorld(ctx context.Context, userId uuid.UUID, req *dto.HelloWorldRequest) (*dto.HelloWorldResponse, error)
}

type chatService struct {
	auth         IAuthService
	sheetsClient *sheets.Client
	llmProvider  llm.LLMProvider
	manager      *history.Manager
	publisher    IPublisherService
	eventPub     *pktNats.Publisher
	log          logger.ILogger
	now          func() time.Time
}

func NewChatService(
	auth IAuthService,
	sheetsClient *sheets.Client,
	llmProvider llm.LLMProvider,
	manager *history.Manager,
	publisher IPublisherService,
	eventPub *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		auth:         auth,
		sheetsClient: sheetsClient,
		llmProvider:  llmProvider,
		manager:      manager,
		publisher:    publisher,
		eventPub:     eventPub,
		log:          log,
		now:          time.Now,
	}
}

func (s *chatService) QueryLogs(ctx context.Context, userId uuid.UUID, req *dto.QueryLogsRequest) (*dto.QueryLogsResponse, error) {
	ts, err := s.auth.TokenSource(ctx, userId)
	if err != nil {
		return nil, err
	}

	sheetName := req.SheetName
	if sheetName == "" {
		sheetName = defaultLogsSheet
	}

	rows, err := s.sheetsClient.ReadRange(ctx, ts, req.SpreadsheetId, fmt.Sprintf("%s!%s", sheetName, sheetReadRange))
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("failed reading log sheet: %v", err))
	}

	answer, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.LogsSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(constant.LogsQueryPromptTemplate, formatSheetData(rows), req.Query)},
	}, llm.WithTemperature(0.2))
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("model call failed: %v", err))
	}

	s.recordTranscript(ctx, userId, req.SpreadsheetId, sheetName, req.Query, answer, false)

	return &dto.QueryLogsResponse{Status: "success", Result: answer}, nil
}

func (s *chatService) UpdateSheet(ctx context.Context, userId uuid.UUID, req *dto.UpdateSheetRequest) (*dto.UpdateSheetResponse, error) {
	ts, err := s.auth.TokenSource(ctx, userId)
	if err != nil {
		return nil, err
	}

	sheetName := req.SheetName
	if sheetName == "" {
		sheetName = defaultDataSheet
	}

	rows, err := s.sheetsClient.ReadRange(ctx, ts, req.SpreadsheetId, fmt.Sprintf("%s!%s", sheetName, sheetReadRange))
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("failed reading sheet: %v", err))
	}

	raw, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: constant.ExtractionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(constant.ExtractionActionPromptTemplate, formatSheetData(rows), req.UserQuery)},
	}, llm.WithTemperature(0), llm.WithJSONOutput())
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("model call failed: %v", err))
	}

	extraction, err := parseExtraction(raw)
	if err != nil {
		s.log.Error("ChatService", "Unparseable extraction output", map[string]interface{}{"error": err.Error(), "raw": raw})
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, "model returned an unreadable extraction result")
	}

	today := s.now().Format("2006-01-02")
	updates, buildErrs := buildCellUpdates(extraction, today)

	feedback := append([]string{}, extraction.Feedbacks...)
	feedback = append(feedback, buildErrs...)

	resp := &dto.UpdateSheetResponse{Feedback: feedback}
	if len(updates) == 0 {
		resp.Status = "rejected"
		s.recordTranscript(ctx, userId, req.SpreadsheetId, sheetName, req.UserQuery, strings.Join(feedback, "\n"), true)
		return resp, nil
	}

	if err := s.sheetsClient.ApplyCellUpdates(ctx, ts, req.SpreadsheetId, updates); err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("failed writing sheet: %v", err))
	}

	cells := make([]string, 0, len(updates))
	for _, u := range updates {
		cells = append(cells, fmt.Sprintf("%s%d", u.Column, u.Row))
	}
	resp.Status = "success"
	resp.UpdatedCells = cells

	s.appendLogEntries(ctx, ts, userId, req.SpreadsheetId, req.UserQuery, updates)
	s.publishSheetUpdated(ctx, userId, req.SpreadsheetId, cells)
	s.recordTranscript(ctx, userId, req.SpreadsheetId, sheetName, req.UserQuery, strings.Join(feedback, "\n"), false)

	return resp, nil
}

func (s *chatService) PrintHelloWorld(ctx context.Context, userId uuid.UUID, req *dto.HelloWorldRequest) (*dto.HelloWorldResponse, error) {
	ts, err := s.auth.TokenSource(ctx, userId)
	if err != nil {
		return nil, err
	}

	sheetName := req.SheetName
	if sheetName == "" {
		sheetName = defaultDataSheet
	}
	count := req.RowCount
	if count <= 0 {
		count = 10
	}

	column := make([]interface{}, 0, count)
	for i := 1; i <= count; i++ {
		column = append(column, fmt.Sprintf("Hello World %d", i))
	}

	updated, err := s.sheetsClient.UpdateRange(ctx, ts, req.SpreadsheetId,
		fmt.Sprintf("%s!A1:A%d", sheetName, count), [][]interface{}{column}, "COLUMNS")
	if err != nil {
		return nil, serverutils.NewAppError(fiber.StatusBadGateway, fmt.Sprintf("failed writing sheet: %v", err))
	}

	return &dto.HelloWorldResponse{Status: "success", UpdatedCells: updated}, nil
}

// recordTranscript appends the exchange to today's chat for the sheet.
// Best-effort: a history failure never fails the sheet operation.
func (s *chatService) recordTranscript(ctx context.Context, userId uuid.UUID, sheetId, sheetName, query, answer string, isError bool) {
	store := s.manager.ForUser(userId.String())

	var messages []entity.Message
	if existing := store.TodaysChat(ctx, sheetId); existing != nil {
		messages = existing.Messages
	}

	now := s.now()
	messages = append(messages,
		entity.Message{Id: uuid.NewString(), Text: query, IsUser: true, Timestamp: now},
		entity.Message{Id: uuid.NewString(), Text: answer, IsError: isError, Timestamp: now},
	)

	if _, err := store.SaveChat(ctx, sheetId, sheetName, messages); err != nil {
		s.log.Warn("ChatService", "Failed recording transcript", map[string]interface{}{"sheet_id": sheetId, "error": err.Error()})
	}
}

// appendLogEntries writes one audit row per cell update to the Logs tab so
// QueryLogs has material to answer from. Best-effort.
func (s *chatService) appendLogEntries(ctx context.Context, ts oauth2.TokenSource, userId uuid.UUID, spreadsheetId, query string, updates []sheets.CellUpdate) {
	engineer := userId.String()
	if user, err := s.auth.User(ctx, userId); err == nil && user != nil {
		engineer = user.Email
	}

	now := s.now().Format(time.RFC3339)
	rows := make([][]interface{}, 0, len(updates))
	for _, u := range updates {
		rows = append(rows, []interface{}{
			now,
			engineer,
			fmt.Sprintf("%s%d", u.Column, u.Row),
			u.Status,
			u.Quantity,
			query,
		})
	}

	if _, _, err := s.sheetsClient.AppendRows(ctx, ts, spreadsheetId, defaultLogsSheet+"!A1", rows); err != nil {
		s.log.Warn("ChatService", "Failed appending log entries", map[string]interface{}{"spreadsheet_id": spreadsheetId, "error": err.Error()})
	}
}

func (s *chatService) publishSheetUpdated(ctx context.Context, userId uuid.UUID, spreadsheetId string, cells []string) {
	payload, err := json.Marshal(dto.NotificationMessage{
		UserId:    userId,
		Type:      dto.NotificationTypeSheetUpdated,
		Title:     "Sheet updated",
		Message:   fmt.Sprintf("%d cell(s) updated", len(cells)),
		Data:      map[string]interface{}{"spreadsheet_id": spreadsheetId, "cells": cells},
		CreatedAt: s.now(),
	})
	if err == nil {
		if err := s.publisher.Publish(ctx, payload); err != nil {
			s.log.Warn("ChatService", "Failed publishing notification", map[string]interface{}{"error": err.Error()})
		}
	}

	if s.eventPub != nil {
		evt := events.NewBaseEvent("sheet.updated", map[string]interface{}{
			"user_id":        userId.String(),
			"spreadsheet_id": spreadsheetId,
			"cells":          cells,
		})
		if err := s.eventPub.Publish(ctx, evt); err != nil {
			s.log.Warn("ChatService", "Failed publishing audit event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// parseExtraction unwraps possible markdown fences and decodes the model's
// structured answer.
func parseExtraction(raw string) (*dto.UpdateExtraction, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var out dto.UpdateExtraction
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("invalid extraction JSON: %w", err)
	}
	return normalizeExtraction(&out), nil
}

// normalizeExtraction enforces the list-length contract: if the four aligned
// lists disagree in length the whole batch is dropped and only the feedbacks
// survive, since a misaligned batch could write the wrong cells.
func normalizeExtraction(e *dto.UpdateExtraction) *dto.UpdateExtraction {
	n := len(e.RowIndex)
	if len(e.ColumnsIndex) != n || len(e.Updations) != n || len(e.Quantities) != n {
		return &dto.UpdateExtraction{Feedbacks: append([]string{"Extraction lists were inconsistent, no cells were updated."}, e.Feedbacks...)}
	}
	return e
}

// buildCellUpdates turns a validated extraction into concrete cell writes,
// rejecting individual rows that fail basic sanity checks.
func buildCellUpdates(e *dto.UpdateExtraction, date string) ([]sheets.CellUpdate, []string) {
	var updates []sheets.CellUpdate
	var errs []string

	for i := range e.RowIndex {
		row, err := strconv.Atoi(strings.TrimSpace(e.RowIndex[i]))
		if err != nil || row < 1 {
			errs = append(errs, fmt.Sprintf("Skipped item %d: invalid row index %q.", i+1, e.RowIndex[i]))
			continue
		}

		column := strings.ToUpper(strings.TrimSpace(e.ColumnsIndex[i]))
		if _, err := sheets.ColumnIndex(column); err != nil {
			errs = append(errs, fmt.Sprintf("Skipped item %d: invalid column %q.", i+1, e.ColumnsIndex[i]))
			continue
		}

		status := strings.ToUpper(strings.TrimSpace(e.Updations[i]))
		if status != "WIP" && status != "COM" {
			errs = append(errs, fmt.Sprintf("Skipped item %d: unknown status %q.", i+1, e.Updations[i]))
			continue
		}

		if e.Quantities[i] < 0 {
			errs = append(errs, fmt.Sprintf("Skipped item %d: negative quantity.", i+1))
			continue
		}

		updates = append(updates, sheets.CellUpdate{
			Row:      row,
			Column:   column,
			Status:   status,
			Quantity: e.Quantities[i],
			Date:     date,
		})
	}
	return updates, errs
}

// formatSheetData renders raw sheet rows as tab-separated lines for prompts.
func formatSheetData(rows [][]interface{}) string {
	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprint(cell))
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
