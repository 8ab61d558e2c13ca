package entity

import (
	"fmt"
	"time"
)

// Message is one turn of a persisted conversation.
type Message struct {
	Id        string    `json:"id"`
	Text      string    `json:"text"`
	IsUser    bool      `json:"is_user"`
	IsError   bool      `json:"is_error,omitempty"`
	IsLoading bool      `json:"is_loading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRecord holds one calendar day of conversation for one sheet.
// There is at most one record per (SheetId, Date) pair; the record id is the
// deterministic "{sheetId}_{date}" composite.
type ChatRecord struct {
	Id        string    `json:"id"`
	SheetId   string    `json:"sheet_id"`
	SheetName string    `json:"sheet_name"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // YYYY-MM-DD, fixed at first save
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatRecordId builds the deterministic record id for a sheet and day.
func ChatRecordId(sheetId, date string) string {
	return fmt.Sprintf("%s_%s", sheetId, date)
}

// MonthKey returns the YYYY-MM grouping key of the record's date.
func (r *ChatRecord) MonthKey() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}
