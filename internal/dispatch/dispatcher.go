// Package dispatch orchestrates the per-message reaction pipeline:
// status gates, matching, emoji rotation and the external react call.
// Nothing here returns an error to the caller — a single message's
// failure must never take down the ingestion loop.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/autoreact/internal/reaction"
	"github.com/nextlevelbuilder/autoreact/internal/store"
)

// Reactor sends one reaction to the platform. The call may silently
// fail; delivery is at-most-once plus a single fallback attempt.
type Reactor interface {
	React(ctx context.Context, chatID int64, messageID int, emoji string) error
}

// Message is the dispatcher's view of one inbound chat message.
type Message struct {
	ChatID    int64
	MessageID int
	SenderID  int64
	Text      string
	Caption   string
	Mentions  []reaction.Mention
}

// Outcome is the terminal state of the per-message state machine.
type Outcome int

const (
	Suppressed Outcome = iota
	Dispatched
)

// Result reports what happened to a message, observable for tests and
// debug logging.
type Result struct {
	Outcome Outcome
	// Reason is the suppression cause ("kill_switch", "chat_disabled",
	// "command", "banned", "no_match", "rate_limited", "react_failed")
	// or empty on dispatch.
	Reason string
	Emoji  string
	Match  reaction.Match
}

func suppressed(reason string) Result { return Result{Outcome: Suppressed, Reason: reason} }

// Dispatcher wires the stores, matcher and rotator to a Reactor.
type Dispatcher struct {
	killSwitch func() bool
	prefixes   string
	triggers   store.TriggerStore
	status     store.ChatStatusStore
	bans       store.BanStore
	log        store.ReactionLogStore
	rotator    *reaction.Rotator
	reactor    Reactor

	// ratePerMin caps reactions per chat per minute; 0 disables the cap.
	ratePerMin int
	limiterMu  sync.Mutex
	limiters   map[int64]*rate.Limiter
}

// Config carries the dispatcher's collaborators.
type Config struct {
	KillSwitch      func() bool
	CommandPrefixes string
	Stores          *store.Stores
	Rotator         *reaction.Rotator
	Reactor         Reactor
	RatePerMinute   int
}

func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		killSwitch: cfg.KillSwitch,
		prefixes:   cfg.CommandPrefixes,
		triggers:   cfg.Stores.Triggers,
		status:     cfg.Stores.ChatStatus,
		bans:       cfg.Stores.Bans,
		log:        cfg.Stores.ReactionLog,
		rotator:    cfg.Rotator,
		reactor:    cfg.Reactor,
		ratePerMin: cfg.RatePerMinute,
		limiters:   make(map[int64]*rate.Limiter),
	}
}

// OnMessage runs the Received → StatusChecked → Matched|NoMatch →
// Dispatched|Suppressed machine for one message.
func (d *Dispatcher) OnMessage(ctx context.Context, msg Message) Result {
	if !d.killSwitch() {
		return suppressed("kill_switch")
	}
	if d.bans.IsBanned(msg.SenderID) {
		return suppressed("banned")
	}
	if reaction.IsCommand(msg.Text, d.prefixes) {
		return suppressed("command")
	}
	if !d.status.IsEnabled(msg.ChatID) {
		return suppressed("chat_disabled")
	}

	snapshot := reaction.NewSnapshot(d.triggers.List(msg.ChatID))
	match, ok := reaction.MatchMessage(reaction.Message{
		Text:     msg.Text,
		Caption:  msg.Caption,
		Mentions: msg.Mentions,
	}, snapshot)
	if !ok {
		return suppressed("no_match")
	}

	if !d.allowRate(msg.ChatID) {
		slog.Debug("reaction rate-limited", "chat_id", msg.ChatID)
		return suppressed("rate_limited")
	}

	emoji := d.rotator.Next(msg.ChatID)
	if err := d.reactor.React(ctx, msg.ChatID, msg.MessageID, emoji); err != nil {
		slog.Warn("react call failed, trying fallback",
			"chat_id", msg.ChatID, "message_id", msg.MessageID, "emoji", emoji, "error", err)
		emoji = reaction.DefaultEmoji
		if err := d.reactor.React(ctx, msg.ChatID, msg.MessageID, emoji); err != nil {
			slog.Warn("fallback react failed, giving up",
				"chat_id", msg.ChatID, "message_id", msg.MessageID, "error", err)
			return suppressed("react_failed")
		}
	}

	slog.Debug("reacted",
		"chat_id", msg.ChatID, "message_id", msg.MessageID,
		"emoji", emoji, "rule", match.Rule.String(), "trigger", match.Trigger)
	d.log.Record(store.ReactionRecord{
		ChatID:    msg.ChatID,
		MessageID: msg.MessageID,
		Emoji:     emoji,
		Rule:      match.Rule.String(),
		Trigger:   match.Trigger,
		At:        time.Now(),
	})
	return Result{Outcome: Dispatched, Emoji: emoji, Match: match}
}

func (d *Dispatcher) allowRate(chatID int64) bool {
	if d.ratePerMin <= 0 {
		return true
	}
	d.limiterMu.Lock()
	lim := d.limiters[chatID]
	if lim == nil {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(d.ratePerMin)), d.ratePerMin)
		d.limiters[chatID] = lim
	}
	d.limiterMu.Unlock()
	return lim.Allow()
}
