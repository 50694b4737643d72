// Package auth decides whether an actor may mutate a chat's reaction
// configuration. The policy is an ordered short-circuit chain of rules;
// external API failures log and fall through to the next rule, so
// platform instability degrades toward denial, never toward a false
// authorization.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ChatAPI is the slice of the platform client the resolver needs. All
// calls may be slow and may fail; the resolver holds no lock across
// them.
type ChatAPI interface {
	// MemberStatus returns the platform membership status string for a
	// user in a chat ("creator", "administrator", "member", ...).
	MemberStatus(ctx context.Context, chatID, userID int64) (string, error)
	// AdminIDs returns the ids of the chat's current administrators.
	AdminIDs(ctx context.Context, chatID int64) ([]int64, error)
	// LinkedChatID returns the id of the chat's linked discussion
	// channel, or 0 when none is configured.
	LinkedChatID(ctx context.Context, chatID int64) (int64, error)
}

// SudoChecker reports superuser membership. Satisfied by
// store.SudoStore.
type SudoChecker interface {
	IsSudo(userID int64) bool
}

// Request is the ephemeral authorization context for one check.
type Request struct {
	// ActorID is the sending user, 0 when the platform supplied none.
	ActorID int64
	// SenderChatID is non-zero when a channel posted as the sender
	// (e.g. a channel's own posts in its discussion group).
	SenderChatID int64
	ChatID       int64
	// ChatKind is the platform chat type: "private", "group",
	// "supergroup" or "channel".
	ChatKind string
}

type decision int

const (
	inconclusive decision = iota
	allow
	deny
)

type rule struct {
	name  string
	check func(ctx context.Context, req Request) (decision, string)
}

// DefaultRosterTTL bounds how long a cached admin roster is trusted.
const DefaultRosterTTL = 600 * time.Second

type roster struct {
	ids     map[int64]bool
	fetched time.Time
}

// Resolver evaluates the layered permission policy.
type Resolver struct {
	ownerID   int64
	sudo      SudoChecker
	api       ChatAPI
	rosterTTL time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	rosters map[int64]roster
	sf      singleflight.Group

	rules []rule
}

// NewResolver builds a resolver with the default roster TTL.
func NewResolver(ownerID int64, sudo SudoChecker, api ChatAPI) *Resolver {
	r := &Resolver{
		ownerID:   ownerID,
		sudo:      sudo,
		api:       api,
		rosterTTL: DefaultRosterTTL,
		now:       time.Now,
		rosters:   make(map[int64]roster),
	}
	r.rules = []rule{
		{name: "bypass", check: r.checkBypass},
		{name: "linked_channel", check: r.checkLinkedChannel},
		{name: "chat_kind", check: r.checkChatKind},
		{name: "member_lookup", check: r.checkMemberStatus},
		{name: "cached_roster", check: r.checkCachedRoster},
		{name: "roster_refresh", check: r.checkRefreshedRoster},
	}
	return r
}

// Authorize runs the rule chain. It never panics and never returns an
// error: the result is a verdict plus a short diagnostic usable in
// operator-facing replies.
func (r *Resolver) Authorize(ctx context.Context, req Request) (bool, string) {
	var diags []string
	for _, rl := range r.rules {
		verdict, detail := rl.check(ctx, req)
		switch verdict {
		case allow:
			return true, rl.name
		case deny:
			if detail == "" {
				detail = rl.name
			}
			return false, detail
		default:
			if detail != "" {
				diags = append(diags, detail)
			}
		}
	}
	if len(diags) > 0 {
		return false, "not admin (" + strings.Join(diags, "; ") + ")"
	}
	return false, "not admin"
}

func (r *Resolver) checkBypass(_ context.Context, req Request) (decision, string) {
	if req.ActorID == 0 {
		return inconclusive, ""
	}
	if req.ActorID == r.ownerID {
		return allow, ""
	}
	if r.sudo != nil && r.sudo.IsSudo(req.ActorID) {
		return allow, ""
	}
	return inconclusive, ""
}

func (r *Resolver) checkLinkedChannel(ctx context.Context, req Request) (decision, string) {
	if req.SenderChatID == 0 {
		return inconclusive, ""
	}
	// A sender chat equal to the chat itself is an anonymous admin
	// post; only admins can post that way.
	if req.SenderChatID == req.ChatID {
		return allow, ""
	}
	linked, err := r.api.LinkedChatID(ctx, req.ChatID)
	if err != nil {
		slog.Warn("linked chat lookup failed", "chat_id", req.ChatID, "error", err)
		return inconclusive, "linked_lookup_failed"
	}
	if linked != 0 && linked == req.SenderChatID {
		return allow, ""
	}
	return inconclusive, ""
}

func (r *Resolver) checkChatKind(_ context.Context, req Request) (decision, string) {
	switch req.ChatKind {
	case "group", "supergroup", "channel":
	default:
		return deny, fmt.Sprintf("chat_kind=%s", req.ChatKind)
	}
	if req.ActorID == 0 {
		return deny, "no actor and not a linked channel"
	}
	return inconclusive, ""
}

func (r *Resolver) checkMemberStatus(ctx context.Context, req Request) (decision, string) {
	status, err := r.api.MemberStatus(ctx, req.ChatID, req.ActorID)
	if err != nil {
		slog.Warn("member lookup failed", "chat_id", req.ChatID, "user_id", req.ActorID, "error", err)
		return inconclusive, "member_lookup_failed"
	}
	if status == "creator" || status == "administrator" {
		return allow, ""
	}
	return inconclusive, "status=" + status
}

func (r *Resolver) checkCachedRoster(_ context.Context, req Request) (decision, string) {
	r.mu.RLock()
	cached, ok := r.rosters[req.ChatID]
	r.mu.RUnlock()
	if !ok || r.now().Sub(cached.fetched) > r.rosterTTL {
		return inconclusive, ""
	}
	if cached.ids[req.ActorID] {
		return allow, ""
	}
	return inconclusive, ""
}

func (r *Resolver) checkRefreshedRoster(ctx context.Context, req Request) (decision, string) {
	ids, err := r.refreshRoster(ctx, req.ChatID)
	if err != nil {
		slog.Warn("admin roster fetch failed", "chat_id", req.ChatID, "error", err)
		return inconclusive, "roster_fetch_failed"
	}
	if ids[req.ActorID] {
		return allow, ""
	}
	return deny, "not admin"
}

// refreshRoster fetches and caches the chat's admin ids. Concurrent
// checks for the same chat share one fetch.
func (r *Resolver) refreshRoster(ctx context.Context, chatID int64) (map[int64]bool, error) {
	v, err, _ := r.sf.Do(fmt.Sprintf("%d", chatID), func() (interface{}, error) {
		raw, err := r.api.AdminIDs(ctx, chatID)
		if err != nil {
			return nil, err
		}
		ids := make(map[int64]bool, len(raw))
		for _, id := range raw {
			ids[id] = true
		}
		r.mu.Lock()
		r.rosters[chatID] = roster{ids: ids, fetched: r.now()}
		r.mu.Unlock()
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[int64]bool), nil
}
