package history

import (
	"sync"
	"time"

	"smart-dpr-be/internal/pkg/logger"
	"smart-dpr-be/internal/substrate"
)

// StorageKeyPrefix mirrors the original single-user "dpr_chat_history" key;
// the server suffixes it with the user id so tenants stay isolated.
const StorageKeyPrefix = "dpr_chat_history"

// Manager hands out one Store per user so all of a user's saves funnel
// through the same in-process write lock.
type Manager struct {
	sub   substrate.Substrate
	clock func() time.Time
	log   logger.ILogger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(sub substrate.Substrate, log logger.ILogger) *Manager {
	return &Manager{
		sub:    sub,
		clock:  time.Now,
		log:    log,
		stores: make(map[string]*Store),
	}
}

func (m *Manager) ForUser(userId string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[userId]; ok {
		return store
	}
	store := NewStore(m.sub, StorageKeyPrefix+":"+userId, WithClock(m.clock), WithLogger(m.log))
	m.stores[userId] = store
	return store
}
