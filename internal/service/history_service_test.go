package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"smart-dpr-be/internal/dto"
	"smart-dpr-be/internal/entity"
	"smart-dpr-be/internal/history"
	"smart-dpr-be/internal/pkg/logger"
	"smart-dpr-be/internal/substrate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	payloads [][]byte
}

func (p *capturingPublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

func newTestHistoryService(t *testing.T) (IHistoryService, substrate.Substrate, *capturingPublisher) {
	t.Helper()
	sub := substrate.NewMemorySubstrate()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "history.log"))
	pub := &capturingPublisher{}
	return NewHistoryService(history.NewManager(sub, log), pub, log), sub, pub
}

func TestSaveChatThenGetChatsBySheet(t *testing.T) {
	svc, _, pub := newTestHistoryService(t)
	ctx := context.Background()
	userId := uuid.New()
	now := time.Now()

	resp, err := svc.SaveChat(ctx, userId, &dto.SaveChatRequest{
		SheetId:   "sheet-1",
		SheetName: "Q1 DPR",
		Messages: []dto.MessageDTO{
			{Id: "m1", Text: "hello", IsUser: true, Timestamp: now},
			{Id: "m2", Text: "hi there", Timestamp: now},
		},
	})
	require.NoError(t, err)
	require.True(t, resp.Saved)
	require.NotNil(t, resp.Record)

	groups := svc.GetChatsBySheet(ctx, userId, "sheet-1")
	require.Len(t, groups, 1)
	assert.Equal(t, now.Format("2006-01"), groups[0].Month)
	require.Len(t, groups[0].Records, 1)

	record := groups[0].Records[0]
	assert.Equal(t, resp.Record.Id, record.Id)
	assert.Equal(t, "sheet-1", record.SheetId)
	assert.Equal(t, "Q1 DPR", record.SheetName)
	require.Len(t, record.Messages, 2)
	assert.Equal(t, "hello", record.Messages[0].Text)
	assert.True(t, record.Messages[0].IsUser)
	assert.False(t, record.Messages[1].IsUser)

	assert.Len(t, pub.payloads, 1)
}

func TestGetChatsBySheetGroupsAcrossMonths(t *testing.T) {
	svc, sub, _ := newTestHistoryService(t)
	ctx := context.Background()
	userId := uuid.New()

	stamp := time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)
	seed := map[string]*entity.ChatRecord{
		"sheet-1_2025-03-15": {Id: "sheet-1_2025-03-15", SheetId: "sheet-1", Date: "2025-03-15", Title: "Mar 15, 2025", UpdatedAt: stamp.AddDate(0, -1, 0)},
		"sheet-1_2025-04-02": {Id: "sheet-1_2025-04-02", SheetId: "sheet-1", Date: "2025-04-02", Title: "Apr 2, 2025", UpdatedAt: stamp},
		"sheet-2_2025-04-03": {Id: "sheet-2_2025-04-03", SheetId: "sheet-2", Date: "2025-04-03", Title: "Apr 3, 2025", UpdatedAt: stamp},
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, sub.Set(ctx, history.StorageKeyPrefix+":"+userId.String(), string(raw)))

	groups := svc.GetChatsBySheet(ctx, userId, "sheet-1")
	require.Len(t, groups, 2)

	assert.Equal(t, "2025-04", groups[0].Month)
	require.Len(t, groups[0].Records, 1)
	assert.Equal(t, "sheet-1_2025-04-02", groups[0].Records[0].Id)
	assert.Equal(t, "Apr 2, 2025", groups[0].Records[0].Title)

	assert.Equal(t, "2025-03", groups[1].Month)
	require.Len(t, groups[1].Records, 1)
	assert.Equal(t, "sheet-1_2025-03-15", groups[1].Records[0].Id)

	assert.Empty(t, svc.GetChatsBySheet(ctx, userId, "sheet-3"))
}

func TestDeleteChatNotifiesOnlyWhenFound(t *testing.T) {
	svc, _, pub := newTestHistoryService(t)
	ctx := context.Background()
	userId := uuid.New()

	saved, err := svc.SaveChat(ctx, userId, &dto.SaveChatRequest{
		SheetId:  "sheet-1",
		Messages: []dto.MessageDTO{{Id: "m1", Text: "hello", IsUser: true, Timestamp: time.Now()}},
	})
	require.NoError(t, err)
	require.True(t, saved.Saved)

	miss, err := svc.DeleteChat(ctx, userId, "sheet-1_1999-01-01")
	require.NoError(t, err)
	assert.False(t, miss.Deleted)

	hit, err := svc.DeleteChat(ctx, userId, saved.Record.Id)
	require.NoError(t, err)
	assert.True(t, hit.Deleted)

	// One publish for the save, one for the successful delete.
	assert.Len(t, pub.payloads, 2)
}
