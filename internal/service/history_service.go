package service

import (
	"context"
	"encoding/json"
	"time"

	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/entity"
	"smart-dpr-be/internal/history"
	"smart-dpr-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type IHistoryService interface {
	SaveChat(ctx context.Context, userId uuid.UUID, req *dto.SaveChatRequest) (*dto.SaveChatResponse, error)
	GetChatsBySheet(ctx context.Context, userId uuid.UUID, sheetId string) []dto.MonthGroupResponse
	GetTodaysChat(ctx context.Context, userId uuid.UUID, sheetId string) *dto.ChatRecordResponse
	GetChatById(ctx context.Context, userId uuid.UUID, chatId string) *dto.ChatRecordResponse
	DeleteChat(ctx context.Context, userId uuid.UUID, chatId string) (*dto.DeleteChatResponse, error)
	ClearChatHistory(ctx context.Context, userId uuid.UUID, sheetId string) error
}

type historyService struct {
	manager   *history.Manager
	publisher IPublisherService
	log       logger.ILogger
}

func NewHistoryService(manager *history.Manager, publisher IPublisherService, log logger.ILogger) IHistoryService {
	return &historyService{
		manager:   manager,
		publisher: publisher,
		log:       log,
	}
}

func (s *historyService) SaveChat(ctx context.Context, userId uuid.UUID, req *dto.SaveChatRequest) (*dto.SaveChatResponse, error) {
	store := s.manager.ForUser(userId.String())

	record, err := store.SaveChat(ctx, req.SheetId, req.SheetName, messagesFromDTO(req.Messages))
	if err != nil {
		return nil, err
	}
	if record == nil {
		// Nothing worth persisting (no sheet or only loading turns).
		return &dto.SaveChatResponse{Saved: false}, nil
	}

	s.notify(ctx, userId, dto.NotificationTypeChatSaved, "Chat saved", map[string]interface{}{
		"chat_id":  record.Id,
		"sheet_id": record.SheetId,
		"date":     record.Date,
	})

	resp := chatRecordToDTO(record)
	return &dto.SaveChatResponse{Saved: true, Record: &resp}, nil
}

func (s *historyService) GetChatsBySheet(ctx context.Context, userId uuid.UUID, sheetId string) []dto.MonthGroupResponse {
	groups := s.manager.ForUser(userId.String()).ChatsBySheet(ctx, sheetId)

	out := make([]dto.MonthGroupResponse, 0, len(groups))
	for _, g := range groups {
		records := make([]dto.ChatRecordResponse, 0, len(g.Records))
		for _, record := range g.Records {
			records = append(records, chatRecordToDTO(record))
		}
		out = append(out, dto.MonthGroupResponse{Month: g.Month, Records: records})
	}
	return out
}

func (s *historyService) GetTodaysChat(ctx context.Context, userId uuid.UUID, sheetId string) *dto.ChatRecordResponse {
	record := s.manager.ForUser(userId.String()).TodaysChat(ctx, sheetId)
	if record == nil {
		return nil
	}
	resp := chatRecordToDTO(record)
	return &resp
}

func (s *historyService) GetChatById(ctx context.Context, userId uuid.UUID, chatId string) *dto.ChatRecordResponse {
	record := s.manager.ForUser(userId.String()).ChatByID(ctx, chatId)
	if record == nil {
		return nil
	}
	resp := chatRecordToDTO(record)
	return &resp
}

func (s *historyService) DeleteChat(ctx context.Context, userId uuid.UUID, chatId string) (*dto.DeleteChatResponse, error) {
	deleted, err := s.manager.ForUser(userId.String()).DeleteChat(ctx, chatId)
	if err != nil {
		return nil, err
	}

	if deleted {
		s.notify(ctx, userId, dto.NotificationTypeChatDeleted, "Chat deleted", map[string]interface{}{
			"chat_id": chatId,
		})
	}
	return &dto.DeleteChatResponse{Deleted: deleted}, nil
}

func (s *historyService) ClearChatHistory(ctx context.Context, userId uuid.UUID, sheetId string) error {
	return s.manager.ForUser(userId.String()).ClearHistory(ctx, sheetId)
}

// notify is best-effort: history writes must not fail because the
// notification bus is down.
func (s *historyService) notify(ctx context.Context, userId uuid.UUID, notifType, title string, data map[string]interface{}) {
	payload, err := json.Marshal(dto.NotificationMessage{
		UserId:    userId,
		Type:      notifType,
		Title:     title,
		Data:      data,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Warn("HistoryService", "Failed publishing notification", map[string]interface{}{"type": notifType, "error": err.Error()})
	}
}

func messagesFromDTO(in []dto.MessageDTO) []entity.Message {
	out := make([]entity.Message, 0, len(in))
	for _, m := range in {
		out = append(out, entity.Message{
			Id:        m.Id,
			Text:      m.Text,
			IsUser:    m.IsUser,
			IsError:   m.IsError,
			IsLoading: m.IsLoading,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func chatRecordToDTO(record *entity.ChatRecord) dto.ChatRecordResponse {
	messages := make([]dto.MessageDTO, 0, len(record.Messages))
	for _, m := range record.Messages {
		messages = append(messages, dto.MessageDTO{
			Id:        m.Id,
			Text:      m.Text,
			IsUser:    m.IsUser,
			IsError:   m.IsError,
			IsLoading: m.IsLoading,
			Timestamp: m.Timestamp,
		})
	}
	return dto.ChatRecordResponse{
		Id:        record.Id,
		SheetId:   record.SheetId,
		SheetName: record.SheetName,
		Title:     record.Title,
		Date:      record.Date,
		Messages:  messages,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
