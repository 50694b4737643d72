// Package store defines the storage interfaces for trigger, chat-flag
// and user-set state. Every implementation keeps an authoritative
// in-memory mirror in front of the durable copy: reads are served from
// memory, mutations apply to memory first and persist best-effort, so a
// failing database never degrades matching or dispatch.
package store

import (
	"time"

	"golang.org/x/sync/errgroup"
)

// TriggerStore holds per-chat reaction triggers (keywords, handles and
// id:<N> identity markers), normalized lowercase without a leading "@".
type TriggerStore interface {
	// Load populates the in-memory mirror from the durable snapshot.
	// Partial loads are kept; Load never leaves the store unusable.
	Load() error
	// Add inserts a normalized trigger. Returns false when the value is
	// already present (including config seed triggers).
	Add(chatID int64, value string) bool
	// Remove deletes a trigger. Returns false when not present or when
	// the value is a config seed (seeds are not removable at runtime).
	Remove(chatID int64, value string) bool
	// Clear deletes all of the chat's stored triggers and returns how
	// many were removed. Seeds survive a clear.
	Clear(chatID int64) int
	// List returns the chat's triggers, seeds included, sorted
	// lexicographically.
	List(chatID int64) []string
}

// ChatStatusStore holds the per-chat "reactions enabled" flag. A chat
// never seen before is enabled; the process-wide kill switch is the
// dispatcher's concern, not the store's.
type ChatStatusStore interface {
	Load() error
	IsEnabled(chatID int64) bool
	SetEnabled(chatID int64, enabled bool)
	// Statuses returns a copy of all explicitly set flags.
	Statuses() map[int64]bool
}

// SudoStore holds the superuser id set consumed by the permission
// resolver. Managed via the sudo CLI subcommand, read on the hot path.
type SudoStore interface {
	Load() error
	IsSudo(userID int64) bool
	Add(userID int64) bool
	Remove(userID int64) bool
	List() []int64
}

// BanStore holds user ids ignored by every handler.
type BanStore interface {
	Load() error
	IsBanned(userID int64) bool
	Ban(userID int64) bool
	Unban(userID int64) bool
	List() []int64
}

// ReactionRecord is one dispatched reaction, kept for operator
// reporting.
type ReactionRecord struct {
	ChatID    int64
	MessageID int
	Emoji     string
	Rule      string
	Trigger   string
	At        time.Time
}

// ReactionLogStore appends dispatched reactions. Record is best-effort;
// the dispatch path never waits on it or observes its failure.
type ReactionLogStore interface {
	Record(rec ReactionRecord)
	CountByChat() (map[int64]int64, error)
}

// Stores is the top-level container for all storage backends.
type Stores struct {
	Triggers    TriggerStore
	ChatStatus  ChatStatusStore
	Sudoers     SudoStore
	Bans        BanStore
	ReactionLog ReactionLogStore
}

// Load populates all in-memory mirrors concurrently. Individual store
// loads already tolerate partial durable state, so an error here means
// the database itself is unreachable.
func (s *Stores) Load() error {
	var g errgroup.Group
	g.Go(s.Triggers.Load)
	g.Go(s.ChatStatus.Load)
	g.Go(s.Sudoers.Load)
	g.Go(s.Bans.Load)
	return g.Wait()
}
