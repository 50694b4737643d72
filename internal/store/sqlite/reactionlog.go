package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/autoreact/internal/store"
)

// ReactionLogStore appends dispatched reactions for operator reporting.
// Unlike the other stores it has no in-memory mirror: nothing on the
// hot path ever reads it back.
type ReactionLogStore struct {
	db *sql.DB
}

func NewReactionLogStore(db *sql.DB) *ReactionLogStore {
	return &ReactionLogStore{db: db}
}

func (s *ReactionLogStore) Record(rec store.ReactionRecord) {
	if _, err := s.db.Exec(
		`INSERT INTO reaction_log (id, chat_id, message_id, emoji, rule, trigger_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.Must(uuid.NewV7()).String(),
		rec.ChatID, rec.MessageID, rec.Emoji, rec.Rule, rec.Trigger, rec.At,
	); err != nil {
		slog.Warn("reaction log insert failed", "chat_id", rec.ChatID, "error", err)
	}
}

func (s *ReactionLogStore) CountByChat() (map[int64]int64, error) {
	rows, err := s.db.Query(`SELECT chat_id, COUNT(*) FROM reaction_log GROUP BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int64)
	for rows.Next() {
		var chatID, n int64
		if err := rows.Scan(&chatID, &n); err != nil {
			return nil, fmt.Errorf("scan reaction count: %w", err)
		}
		out[chatID] = n
	}
	return out, rows.Err()
}
