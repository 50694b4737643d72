package sqlite

import (
	"database/sql"
	"testing"
	"time"

	"github.com/nextlevelbuilder/autoreact/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A pooled :memory: database is a new empty database per
	// connection; pin the pool to one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestTriggerAddListRoundTrip(t *testing.T) {
	s := NewTriggerStore(testDB(t), nil)

	if !s.Add(1, "neko") {
		t.Fatal("first add reported already-exists")
	}
	if s.Add(1, "neko") {
		t.Fatal("second add of same value must report already-exists")
	}

	got := s.List(1)
	if len(got) != 1 || got[0] != "neko" {
		t.Fatalf("List(1) = %v, want [neko]", got)
	}

	// Fresh store over the same database sees the durable copy.
	s2 := NewTriggerStore(s.db, nil)
	if err := s2.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got = s2.List(1)
	if len(got) != 1 || got[0] != "neko" {
		t.Fatalf("reloaded List(1) = %v, want [neko]", got)
	}
}

func TestTriggerRemoveNotFound(t *testing.T) {
	s := NewTriggerStore(testDB(t), nil)
	s.Add(1, "neko")

	if s.Remove(1, "ghost") {
		t.Fatal("removing absent trigger reported success")
	}
	if got := s.List(1); len(got) != 1 {
		t.Fatalf("store changed by failed remove: %v", got)
	}
	if !s.Remove(1, "neko") {
		t.Fatal("removing present trigger failed")
	}
	if got := s.List(1); len(got) != 0 {
		t.Fatalf("List after remove = %v, want empty", got)
	}
}

func TestTriggerChatsAreIndependent(t *testing.T) {
	s := NewTriggerStore(testDB(t), nil)
	s.Add(1, "neko")
	s.Add(2, "inu")

	if got := s.List(1); len(got) != 1 || got[0] != "neko" {
		t.Fatalf("List(1) = %v", got)
	}
	if got := s.List(2); len(got) != 1 || got[0] != "inu" {
		t.Fatalf("List(2) = %v", got)
	}
	if n := s.Clear(1); n != 1 {
		t.Fatalf("Clear(1) = %d, want 1", n)
	}
	if got := s.List(2); len(got) != 1 {
		t.Fatalf("Clear(1) touched chat 2: %v", got)
	}
}

func TestTriggerSeedsAreBaseline(t *testing.T) {
	s := NewTriggerStore(testDB(t), []string{"boss"})

	got := s.List(9)
	if len(got) != 1 || got[0] != "boss" {
		t.Fatalf("seed missing from List: %v", got)
	}
	if s.Add(9, "boss") {
		t.Fatal("adding a seed must report already-exists")
	}
	if s.Remove(9, "boss") {
		t.Fatal("seeds must not be removable")
	}
	s.Add(9, "neko")
	if n := s.Clear(9); n != 1 {
		t.Fatalf("Clear = %d, want 1 (seeds excluded)", n)
	}
	if got := s.List(9); len(got) != 1 || got[0] != "boss" {
		t.Fatalf("seed did not survive clear: %v", got)
	}
}

func TestChatStatusDefaultsEnabled(t *testing.T) {
	s := NewChatStatusStore(testDB(t))

	if !s.IsEnabled(123) {
		t.Fatal("unseen chat must default to enabled")
	}
	s.SetEnabled(123, false)
	if s.IsEnabled(123) {
		t.Fatal("disabled chat reported enabled")
	}
	s.SetEnabled(123, true)
	if !s.IsEnabled(123) {
		t.Fatal("re-enabled chat reported disabled")
	}

	s2 := NewChatStatusStore(s.db)
	if err := s2.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s2.IsEnabled(123) {
		t.Fatal("durable status lost across reload")
	}
}

func TestSudoAndBanStores(t *testing.T) {
	db := testDB(t)
	sudo := NewSudoStore(db)
	bans := NewBanStore(db)

	if !sudo.Add(42) || sudo.Add(42) {
		t.Fatal("sudo add idempotence broken")
	}
	if !sudo.IsSudo(42) || sudo.IsSudo(43) {
		t.Fatal("sudo membership wrong")
	}
	if !bans.Ban(7) || bans.IsBanned(8) || !bans.IsBanned(7) {
		t.Fatal("ban membership wrong")
	}
	if !bans.Unban(7) || bans.IsBanned(7) {
		t.Fatal("unban failed")
	}

	sudo2 := NewSudoStore(db)
	if err := sudo2.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := sudo2.List(); len(got) != 1 || got[0] != 42 {
		t.Fatalf("sudo List after reload = %v, want [42]", got)
	}
}

func TestReactionLogCounts(t *testing.T) {
	s := NewReactionLogStore(testDB(t))

	now := time.Now()
	for i := 0; i < 3; i++ {
		s.Record(store.ReactionRecord{ChatID: 1, MessageID: i, Emoji: "❤️", Rule: "keyword", Trigger: "neko", At: now})
	}
	s.Record(store.ReactionRecord{ChatID: 2, MessageID: 9, Emoji: "🔥", Rule: "mention", Trigger: "alice", At: now})

	counts, err := s.CountByChat()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[1] != 3 || counts[2] != 1 {
		t.Fatalf("counts = %v, want chat1=3 chat2=1", counts)
	}
}
