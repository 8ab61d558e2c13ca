package dto

import "time"

type MessageDTO struct {
	Id        string    `json:"id" validate:"required"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	IsError   bool      `json:"is_error,omitempty"`
	IsLoading bool      `json:"is_loading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type SaveChatRequest struct {
	SheetId   string       `json:"sheet_id" validate:"required"`
	SheetName string       `json:"sheet_name"`
	Messages  []MessageDTO `json:"messages" validate:"dive"`
}

type ChatRecordResponse struct {
	Id        string       `json:"id"`
	SheetId   string       `json:"sheet_id"`
	SheetName string       `json:"sheet_name"`
	Title     string       `json:"title"`
	Date      string       `json:"date"`
	Messages  []MessageDTO `json:"messages"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type SaveChatResponse struct {
	Saved  bool                `json:"saved"`
	Record *ChatRecordResponse `json:"record,omitempty"`
}

type MonthGroupResponse struct {
	Month   string               `json:"month"`
	Records []ChatRecordResponse `json:"records"`
}

type DeleteChatResponse struct {
	Deleted bool `json:"deleted"`
}
