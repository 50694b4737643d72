package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// idSet is the shared cache+table implementation behind the sudoer and
// banned-user stores: a mutex-guarded id set mirroring a single-column
// table.
type idSet struct {
	db    *sql.DB
	table string
	mu    sync.RWMutex
	ids   map[int64]bool
}

func newIDSet(db *sql.DB, table string) *idSet {
	return &idSet{db: db, table: table, ids: make(map[int64]bool)}
}

func (s *idSet) load() error {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT user_id FROM %s`, s.table))
	if err != nil {
		return fmt.Errorf("load %s: %w", s.table, err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			slog.Warn("skipping unreadable user row", "table", s.table, "error", err)
			continue
		}
		s.ids[id] = true
	}
	slog.Info("user set loaded", "table", s.table, "count", len(s.ids))
	return rows.Err()
}

func (s *idSet) contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[id]
}

func (s *idSet) add(id int64) bool {
	s.mu.Lock()
	if s.ids[id] {
		s.mu.Unlock()
		return false
	}
	s.ids[id] = true
	s.mu.Unlock()

	if _, err := s.db.Exec(fmt.Sprintf(`INSERT OR IGNORE INTO %s (user_id) VALUES (?)`, s.table), id); err != nil {
		slog.Warn("user set persist failed, kept in memory", "table", s.table, "user_id", id, "error", err)
	}
	return true
}

func (s *idSet) remove(id int64) bool {
	s.mu.Lock()
	if !s.ids[id] {
		s.mu.Unlock()
		return false
	}
	delete(s.ids, id)
	s.mu.Unlock()

	if _, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, s.table), id); err != nil {
		slog.Warn("user set delete persist failed", "table", s.table, "user_id", id, "error", err)
	}
	return true
}

func (s *idSet) list() []int64 {
	s.mu.RLock()
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SudoStore implements store.SudoStore.
type SudoStore struct{ set *idSet }

func NewSudoStore(db *sql.DB) *SudoStore {
	return &SudoStore{set: newIDSet(db, "sudoers")}
}

func (s *SudoStore) Load() error             { return s.set.load() }
func (s *SudoStore) IsSudo(id int64) bool    { return s.set.contains(id) }
func (s *SudoStore) Add(id int64) bool       { return s.set.add(id) }
func (s *SudoStore) Remove(id int64) bool    { return s.set.remove(id) }
func (s *SudoStore) List() []int64           { return s.set.list() }

// BanStore implements store.BanStore.
type BanStore struct{ set *idSet }

func NewBanStore(db *sql.DB) *BanStore {
	return &BanStore{set: newIDSet(db, "banned_users")}
}

func (s *BanStore) Load() error            { return s.set.load() }
func (s *BanStore) IsBanned(id int64) bool { return s.set.contains(id) }
func (s *BanStore) Ban(id int64) bool      { return s.set.add(id) }
func (s *BanStore) Unban(id int64) bool    { return s.set.remove(id) }
func (s *BanStore) List() []int64          { return s.set.list() }
