// Package history persists chat transcripts per (sheet, calendar day) on top
// of a single-key blob substrate. Records are keyed "{sheetId}_{YYYY-MM-DD}"
// so one sheet accumulates at most one record per day; saving replaces the
// day's message list wholesale.
package history

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"smart-dpr-be/internal/entity"
	"smart-dpr-be/internal/pkg/logger"
	"smart-dpr-be/internal/substrate"
)

const dateLayout = "2006-01-02"

// MonthGroup is one sidebar section: all of a sheet's records whose date
// falls in Month (YYYY-MM), newest first.
type MonthGroup struct {
	Month   string               `json:"month"`
	Records []*entity.ChatRecord `json:"records"`
}

// Store records chat transcripts under one storage key. Every operation is a
// read-modify-write of the whole blob; saves within one Store are serialized
// by a mutex so a debounced auto-save cannot race a manual save in-process.
// Cross-process writers remain last-writer-wins at blob granularity.
type Store struct {
	sub   substrate.Substrate
	key   string
	clock func() time.Time
	log   logger.ILogger

	mu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the wall clock, used by tests to cross day boundaries.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func WithLogger(log logger.ILogger) Option {
	return func(s *Store) { s.log = log }
}

func NewStore(sub substrate.Substrate, key string, opts ...Option) *Store {
	s := &Store{
		sub:   sub,
		key:   key,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveChat upserts today's record for the sheet with the given message
// snapshot. Loading placeholders are stripped before persisting; if nothing
// remains the call is a no-op and returns nil, so a transient empty render
// can never erase an existing record. The returned record is the persisted
// state after the save.
func (s *Store) SaveChat(ctx context.Context, sheetId, sheetName string, messages []entity.Message) (*entity.ChatRecord, error) {
	if sheetId == "" {
		return nil, nil
	}
	snapshot := persistableMessages(messages)
	if len(snapshot) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.loadAll(ctx)

	now := s.clock()
	today := now.Format(dateLayout)
	id := entity.ChatRecordId(sheetId, today)

	record, ok := all[id]
	if !ok {
		record = &entity.ChatRecord{
			Id:        id,
			SheetId:   sheetId,
			Date:      today,
			CreatedAt: now,
		}
		all[id] = record
	}

	record.SheetName = sheetName
	record.Title = now.Format("Jan 2, 2006")
	record.Messages = snapshot
	record.UpdatedAt = now

	if err := s.persist(ctx, all); err != nil {
		return nil, err
	}

	saved := *record
	return &saved, nil
}

// ChatsBySheet returns the sheet's records grouped by calendar month of the
// record date, months newest-first, records within a month newest-first by
// UpdatedAt. A missing sheet or an unreadable blob yields an empty result,
// never an error.
func (s *Store) ChatsBySheet(ctx context.Context, sheetId string) []MonthGroup {
	all := s.loadAll(ctx)

	byMonth := make(map[string][]*entity.ChatRecord)
	for _, record := range all {
		if record.SheetId != sheetId {
			continue
		}
		month := record.MonthKey()
		byMonth[month] = append(byMonth[month], record)
	}

	groups := make([]MonthGroup, 0, len(byMonth))
	for month, records := range byMonth {
		sort.Slice(records, func(i, j int) bool {
			if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
				return records[i].UpdatedAt.After(records[j].UpdatedAt)
			}
			// Tie-break on id so repeated calls render in a stable order.
			return records[i].Id > records[j].Id
		})
		groups = append(groups, MonthGroup{Month: month, Records: records})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Month > groups[j].Month
	})
	return groups
}

// TodaysChat returns the record for the sheet's current calendar day, or nil.
func (s *Store) TodaysChat(ctx context.Context, sheetId string) *entity.ChatRecord {
	today := s.clock().Format(dateLayout)
	return s.ChatByID(ctx, entity.ChatRecordId(sheetId, today))
}

// ChatByID is a point lookup by the deterministic record id.
func (s *Store) ChatByID(ctx context.Context, chatId string) *entity.ChatRecord {
	all := s.loadAll(ctx)
	return all[chatId]
}

// DeleteChat removes one record and reports whether it existed. Deleting an
// absent record is not an error.
func (s *Store) DeleteChat(ctx context.Context, chatId string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.loadAll(ctx)
	if _, ok := all[chatId]; !ok {
		return false, nil
	}
	delete(all, chatId)
	if err := s.persist(ctx, all); err != nil {
		return false, err
	}
	return true, nil
}

// ClearHistory removes every record belonging to the sheet.
func (s *Store) ClearHistory(ctx context.Context, sheetId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.loadAll(ctx)
	removed := false
	for id, record := range all {
		if record.SheetId == sheetId {
			delete(all, id)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	return s.persist(ctx, all)
}

// loadAll reads and decodes the whole blob. Corrupt or unreadable data falls
// back to an empty store: history is a convenience feature and a previously
// bad write must not keep the chat flow from functioning.
func (s *Store) loadAll(ctx context.Context) map[string]*entity.ChatRecord {
	raw, found, err := s.sub.Get(ctx, s.key)
	if err != nil {
		s.warn("failed reading history blob", map[string]interface{}{"key": s.key, "error": err.Error()})
		return map[string]*entity.ChatRecord{}
	}
	if !found || raw == "" {
		return map[string]*entity.ChatRecord{}
	}

	var all map[string]*entity.ChatRecord
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		s.warn("discarding corrupt history blob", map[string]interface{}{"key": s.key, "error": err.Error()})
		return map[string]*entity.ChatRecord{}
	}
	if all == nil {
		return map[string]*entity.ChatRecord{}
	}
	return all
}

func (s *Store) persist(ctx context.Context, all map[string]*entity.ChatRecord) error {
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.sub.Set(ctx, s.key, string(data))
}

func (s *Store) warn(message string, details map[string]interface{}) {
	if s.log != nil {
		s.log.Warn("HistoryStore", message, details)
	}
}

// persistableMessages copies the caller's messages by value, dropping turns
// still marked as loading. The store never persists a loading placeholder.
func persistableMessages(messages []entity.Message) []entity.Message {
	out := make([]entity.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.IsLoading {
			continue
		}
		out = append(out, msg)
	}
	return out
}
