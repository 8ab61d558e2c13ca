package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"smart-dpr-be/internal/entity"
	"smart-dpr-be/internal/substrate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	store := NewStore(substrate.NewMemorySubstrate(), "dpr_chat_history:test", WithClock(func() time.Time { return now }))
	return store, &now
}

func msg(id, text string, isUser bool) entity.Message {
	return entity.Message{Id: id, Text: text, IsUser: isUser, Timestamp: time.Now()}
}

func TestSaveChatCreatesDayRecord(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	record, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{
		msg("m1", "update row 5", true),
		msg("m2", "Done.", false),
	})
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "sheet-1_2025-03-15", record.Id)
	assert.Equal(t, "sheet-1", record.SheetId)
	assert.Equal(t, "Site A", record.SheetName)
	assert.Equal(t, "2025-03-15", record.Date)
	assert.Equal(t, "Mar 15, 2025", record.Title)
	assert.Len(t, record.Messages, 2)
	assert.Equal(t, record.CreatedAt, record.UpdatedAt)
}

func TestSaveChatSameDayReplacesMessages(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	first, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "hello", true)})
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	second, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{
		msg("m1", "hello", true),
		msg("m2", "hi", false),
		msg("m3", "more", true),
	})
	require.NoError(t, err)

	// Same calendar day: same record, replaced snapshot.
	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, second.Messages, 3)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	groups := store.ChatsBySheet(ctx, "sheet-1")
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Records, 1)
}

func TestSaveChatNewDayNewRecord(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "day one", true)})
	require.NoError(t, err)

	*now = now.Add(24 * time.Hour)
	record, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m2", "day two", true)})
	require.NoError(t, err)

	assert.Equal(t, "sheet-1_2025-03-16", record.Id)
	assert.Len(t, record.Messages, 1)

	// Yesterday's record is untouched.
	yesterday := store.ChatByID(ctx, "sheet-1_2025-03-15")
	require.NotNil(t, yesterday)
	assert.Equal(t, "day one", yesterday.Messages[0].Text)
}

func TestSaveChatRejectsEmptySheetId(t *testing.T) {
	store, _ := newTestStore(t)

	record, err := store.SaveChat(context.Background(), "", "Site A", []entity.Message{msg("m1", "hi", true)})
	assert.NoError(t, err)
	assert.Nil(t, record)
}

func TestSaveChatSkipsLoadingOnlySnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	existing, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "kept", true)})
	require.NoError(t, err)

	// A render caught mid-response must not erase the day's record.
	record, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{
		{Id: "m2", Text: "", IsLoading: true},
	})
	assert.NoError(t, err)
	assert.Nil(t, record)

	got := store.ChatByID(ctx, existing.Id)
	require.NotNil(t, got)
	assert.Equal(t, "kept", got.Messages[0].Text)
}

func TestSaveChatStripsLoadingMessages(t *testing.T) {
	store, _ := newTestStore(t)

	record, err := store.SaveChat(context.Background(), "sheet-1", "Site A", []entity.Message{
		msg("m1", "question", true),
		{Id: "m2", IsLoading: true},
		msg("m3", "answer", false),
	})
	require.NoError(t, err)
	require.NotNil(t, record)

	require.Len(t, record.Messages, 2)
	assert.Equal(t, "question", record.Messages[0].Text)
	assert.Equal(t, "answer", record.Messages[1].Text)
}

func TestChatsBySheetGroupsByMonth(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "march 15", true)})
	require.NoError(t, err)

	*now = time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC)
	_, err = store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m2", "march 20", true)})
	require.NoError(t, err)

	*now = time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)
	_, err = store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m3", "april 2", true)})
	require.NoError(t, err)

	// Another sheet must not leak into the grouping.
	_, err = store.SaveChat(ctx, "sheet-2", "Site B", []entity.Message{msg("m4", "other", true)})
	require.NoError(t, err)

	groups := store.ChatsBySheet(ctx, "sheet-1")
	require.Len(t, groups, 2)

	assert.Equal(t, "2025-04", groups[0].Month)
	require.Len(t, groups[0].Records, 1)
	assert.Equal(t, "sheet-1_2025-04-02", groups[0].Records[0].Id)

	assert.Equal(t, "2025-03", groups[1].Month)
	require.Len(t, groups[1].Records, 2)
	// Newest first within the month.
	assert.Equal(t, "sheet-1_2025-03-20", groups[1].Records[0].Id)
	assert.Equal(t, "sheet-1_2025-03-15", groups[1].Records[1].Id)
}

func TestChatsBySheetUnknownSheetIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	groups := store.ChatsBySheet(context.Background(), "nope")
	assert.Empty(t, groups)
}

func TestChatsBySheetStableOrderOnEqualUpdatedAt(t *testing.T) {
	// SaveChat stamps UpdatedAt from the clock that also picks the date, so
	// equal timestamps across days only occur in blobs written by an older
	// client. Seed one directly.
	sub := substrate.NewMemorySubstrate()
	ctx := context.Background()

	stamp := time.Date(2025, time.March, 16, 12, 0, 0, 0, time.UTC)
	seed := map[string]*entity.ChatRecord{
		"sheet-1_2025-03-15": {Id: "sheet-1_2025-03-15", SheetId: "sheet-1", Date: "2025-03-15", UpdatedAt: stamp},
		"sheet-1_2025-03-16": {Id: "sheet-1_2025-03-16", SheetId: "sheet-1", Date: "2025-03-16", UpdatedAt: stamp},
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, sub.Set(ctx, "dpr_chat_history:test", string(raw)))

	store := NewStore(sub, "dpr_chat_history:test")

	groups := store.ChatsBySheet(ctx, "sheet-1")
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Records, 2)
	// Ties fall back to id, descending, and stay put across calls.
	assert.Equal(t, "sheet-1_2025-03-16", groups[0].Records[0].Id)
	assert.Equal(t, "sheet-1_2025-03-15", groups[0].Records[1].Id)

	again := store.ChatsBySheet(ctx, "sheet-1")
	require.Len(t, again, 1)
	assert.Equal(t, groups[0].Records[0].Id, again[0].Records[0].Id)
	assert.Equal(t, groups[0].Records[1].Id, again[0].Records[1].Id)
}

func TestTodaysChat(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	assert.Nil(t, store.TodaysChat(ctx, "sheet-1"))

	_, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "hi", true)})
	require.NoError(t, err)

	got := store.TodaysChat(ctx, "sheet-1")
	require.NotNil(t, got)
	assert.Equal(t, "sheet-1_2025-03-15", got.Id)

	// The clock rolling past midnight makes today's chat nil again.
	*now = now.Add(24 * time.Hour)
	assert.Nil(t, store.TodaysChat(ctx, "sheet-1"))
}

func TestDeleteChat(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	record, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "hi", true)})
	require.NoError(t, err)

	deleted, err := store.DeleteChat(ctx, record.Id)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Nil(t, store.ChatByID(ctx, record.Id))

	deleted, err = store.DeleteChat(ctx, record.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestClearHistoryOnlyTargetSheet(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	_, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "a", true)})
	require.NoError(t, err)
	*now = now.AddDate(0, 0, 1)
	_, err = store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m2", "b", true)})
	require.NoError(t, err)
	_, err = store.SaveChat(ctx, "sheet-2", "Site B", []entity.Message{msg("m3", "c", true)})
	require.NoError(t, err)

	require.NoError(t, store.ClearHistory(ctx, "sheet-1"))

	assert.Empty(t, store.ChatsBySheet(ctx, "sheet-1"))
	groups := store.ChatsBySheet(ctx, "sheet-2")
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Records, 1)
}

func TestCorruptBlobFallsBackToEmpty(t *testing.T) {
	sub := substrate.NewMemorySubstrate()
	ctx := context.Background()
	require.NoError(t, sub.Set(ctx, "dpr_chat_history:test", "{not json"))

	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)
	store := NewStore(sub, "dpr_chat_history:test", WithClock(func() time.Time { return now }))

	assert.Empty(t, store.ChatsBySheet(ctx, "sheet-1"))

	// Writing after corruption starts a fresh blob.
	record, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "hi", true)})
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, store.ChatByID(ctx, record.Id))
}

func TestSaveChatReturnsDetachedCopy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	record, err := store.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "original", true)})
	require.NoError(t, err)

	record.SheetName = "mutated"

	got := store.ChatByID(ctx, record.Id)
	require.NotNil(t, got)
	assert.Equal(t, "Site A", got.SheetName)
}

func TestManagerIsolatesUsers(t *testing.T) {
	sub := substrate.NewMemorySubstrate()
	manager := NewManager(sub, nil)
	ctx := context.Background()

	alice := manager.ForUser("alice")
	bob := manager.ForUser("bob")
	assert.NotSame(t, alice, bob)
	assert.Same(t, alice, manager.ForUser("alice"))

	_, err := alice.SaveChat(ctx, "sheet-1", "Site A", []entity.Message{msg("m1", "private", true)})
	require.NoError(t, err)

	assert.Empty(t, bob.ChatsBySheet(ctx, "sheet-1"))
	assert.Len(t, alice.ChatsBySheet(ctx, "sheet-1"), 1)
}
