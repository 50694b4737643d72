package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// TriggerStore implements store.TriggerStore. The in-memory mirror is
// the fast path; durable writes are best-effort and never rolled back
// into memory on failure.
type TriggerStore struct {
	db    *sql.DB
	seeds map[string]bool
	mu    sync.RWMutex
	chats map[int64]map[string]bool
}

// NewTriggerStore creates a trigger store. seeds are already-normalized
// config triggers visible in every chat and immune to Remove/Clear.
func NewTriggerStore(db *sql.DB, seeds []string) *TriggerStore {
	seedSet := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		seedSet[s] = true
	}
	return &TriggerStore{
		db:    db,
		seeds: seedSet,
		chats: make(map[int64]map[string]bool),
	}
}

func (s *TriggerStore) Load() error {
	rows, err := s.db.Query(`SELECT chat_id, value FROM triggers`)
	if err != nil {
		return fmt.Errorf("load triggers: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := 0
	for rows.Next() {
		var chatID int64
		var value string
		if err := rows.Scan(&chatID, &value); err != nil {
			slog.Warn("skipping unreadable trigger row", "error", err)
			continue
		}
		set := s.chats[chatID]
		if set == nil {
			set = make(map[string]bool)
			s.chats[chatID] = set
		}
		set[value] = true
		loaded++
	}
	slog.Info("triggers loaded", "count", loaded, "seeds", len(s.seeds))
	return rows.Err()
}

func (s *TriggerStore) Add(chatID int64, value string) bool {
	if s.seeds[value] {
		return false
	}

	s.mu.Lock()
	set := s.chats[chatID]
	if set == nil {
		set = make(map[string]bool)
		s.chats[chatID] = set
	}
	if set[value] {
		s.mu.Unlock()
		return false
	}
	set[value] = true
	s.mu.Unlock()

	if _, err := s.db.Exec(`INSERT OR IGNORE INTO triggers (chat_id, value) VALUES (?, ?)`, chatID, value); err != nil {
		slog.Warn("trigger persist failed, kept in memory", "chat_id", chatID, "value", value, "error", err)
	}
	return true
}

func (s *TriggerStore) Remove(chatID int64, value string) bool {
	if s.seeds[value] {
		return false
	}

	s.mu.Lock()
	set := s.chats[chatID]
	if set == nil || !set[value] {
		s.mu.Unlock()
		return false
	}
	delete(set, value)
	s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM triggers WHERE chat_id = ? AND value = ?`, chatID, value); err != nil {
		slog.Warn("trigger delete persist failed", "chat_id", chatID, "value", value, "error", err)
	}
	return true
}

func (s *TriggerStore) Clear(chatID int64) int {
	s.mu.Lock()
	removed := len(s.chats[chatID])
	delete(s.chats, chatID)
	s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM triggers WHERE chat_id = ?`, chatID); err != nil {
		slog.Warn("trigger clear persist failed", "chat_id", chatID, "error", err)
	}
	return removed
}

func (s *TriggerStore) List(chatID int64) []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.chats[chatID])+len(s.seeds))
	for v := range s.chats[chatID] {
		out = append(out, v)
	}
	s.mu.RUnlock()

	for v := range s.seeds {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
