package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
)

// ChatStatusStore implements store.ChatStatusStore. Absence means
// enabled: only explicit toggles produce rows.
type ChatStatusStore struct {
	db *sql.DB
	mu sync.RWMutex
	// chats maps chat id to its explicit flag. Unlisted chats default
	// to enabled.
	chats map[int64]bool
}

func NewChatStatusStore(db *sql.DB) *ChatStatusStore {
	return &ChatStatusStore{db: db, chats: make(map[int64]bool)}
}

func (s *ChatStatusStore) Load() error {
	rows, err := s.db.Query(`SELECT chat_id, enabled FROM chat_status`)
	if err != nil {
		return fmt.Errorf("load chat statuses: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var chatID int64
		var enabled bool
		if err := rows.Scan(&chatID, &enabled); err != nil {
			slog.Warn("skipping unreadable chat status row", "error", err)
			continue
		}
		s.chats[chatID] = enabled
	}
	slog.Info("chat statuses loaded", "count", len(s.chats))
	return rows.Err()
}

func (s *ChatStatusStore) IsEnabled(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enabled, ok := s.chats[chatID]
	if !ok {
		return true
	}
	return enabled
}

func (s *ChatStatusStore) SetEnabled(chatID int64, enabled bool) {
	s.mu.Lock()
	s.chats[chatID] = enabled
	s.mu.Unlock()

	if _, err := s.db.Exec(
		`INSERT INTO chat_status (chat_id, enabled) VALUES (?, ?)
		 ON CONFLICT (chat_id) DO UPDATE SET enabled = excluded.enabled`,
		chatID, enabled,
	); err != nil {
		slog.Warn("chat status persist failed, kept in memory", "chat_id", chatID, "enabled", enabled, "error", err)
	}
}

func (s *ChatStatusStore) Statuses() map[int64]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]bool, len(s.chats))
	for k, v := range s.chats {
		out[k] = v
	}
	return out
}
