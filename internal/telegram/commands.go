package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/autoreact/internal/auth"
	"github.com/nextlevelbuilder/autoreact/internal/reaction"
)

const helpText = `I react to messages that mention registered triggers.

/addreact <keyword_or_username> — add a trigger (admin)
/delreact <keyword_or_username> — remove a trigger (admin)
/reactlist — list this chat's triggers
/clearreact — remove all triggers (admin)
/reactionon — enable reactions here (admin)
/reactionoff — disable reactions here (admin)
/reaction — show current status`

// handleBotCommand checks whether the message is one of the bot's
// commands and handles it. Returns true when handled; unknown commands
// fall through so the dispatcher can suppress them as command text.
func (c *Channel) handleBotCommand(ctx context.Context, message *telego.Message, senderID int64) bool {
	text := message.Text
	if len(text) == 0 || text[0] != '/' {
		return false
	}

	// Extract command and argument; strip an @botname suffix.
	head, arg, _ := strings.Cut(text, " ")
	head, _, _ = strings.Cut(head, "@")
	cmd := strings.ToLower(head)
	arg = strings.TrimSpace(arg)
	chatID := message.Chat.ID

	switch cmd {
	case "/start", "/help":
		c.reply(ctx, message, helpText)
		return true

	case "/reactlist":
		triggers := c.stores.Triggers.List(chatID)
		if len(triggers) == 0 {
			c.reply(ctx, message, "No reaction triggers configured for this chat.")
			return true
		}
		var b strings.Builder
		b.WriteString("Reaction triggers:\n")
		for _, t := range triggers {
			b.WriteString("• ")
			b.WriteString(t)
			b.WriteString("\n")
		}
		c.reply(ctx, message, strings.TrimRight(b.String(), "\n"))
		return true

	case "/reaction":
		chatState := "enabled ✅"
		if !c.stores.ChatStatus.IsEnabled(chatID) {
			chatState = "disabled ⛔"
		}
		global := "on"
		if !c.kill.On() {
			global = "off"
		}
		c.reply(ctx, message, fmt.Sprintf(
			"Reaction status\n\nGlobal switch: %s\nThis chat: %s\nTriggers: %d",
			global, chatState, len(c.stores.Triggers.List(chatID))))
		return true

	case "/addreact":
		if !c.authorize(ctx, message, senderID) {
			return true
		}
		value, err := reaction.NormalizeTrigger(arg)
		if err != nil {
			c.reply(ctx, message, "Usage: /addreact <keyword_or_username>")
			return true
		}
		if !c.stores.Triggers.Add(chatID, value) {
			c.reply(ctx, message, fmt.Sprintf("%q is already a trigger.", value))
			return true
		}
		// When the value is a handle we have seen, register the
		// identity form too so resolved mentions match even without
		// the handle text. A miss is fine — the value stays a keyword.
		note := ""
		if id, ok := c.users.Resolve(value); ok {
			if c.stores.Triggers.Add(chatID, reaction.IdentityTrigger(id)) {
				note = fmt.Sprintf(" (id: %d)", id)
			}
		}
		c.reply(ctx, message, fmt.Sprintf("✨ Added %q%s.", value, note))
		return true

	case "/delreact":
		if !c.authorize(ctx, message, senderID) {
			return true
		}
		value, err := reaction.NormalizeTrigger(arg)
		if err != nil {
			c.reply(ctx, message, "Usage: /delreact <keyword_or_username>")
			return true
		}
		removed := c.stores.Triggers.Remove(chatID, value)
		if id, ok := c.users.Resolve(value); ok {
			if c.stores.Triggers.Remove(chatID, reaction.IdentityTrigger(id)) {
				removed = true
			}
		}
		if removed {
			c.reply(ctx, message, fmt.Sprintf("🗑 Removed %q.", value))
		} else {
			c.reply(ctx, message, fmt.Sprintf("%q is not a trigger.", value))
		}
		return true

	case "/clearreact":
		if !c.authorize(ctx, message, senderID) {
			return true
		}
		n := c.stores.Triggers.Clear(chatID)
		c.reply(ctx, message, fmt.Sprintf("🧹 Cleared %d trigger(s).", n))
		return true

	case "/reactionon":
		if !c.authorize(ctx, message, senderID) {
			return true
		}
		c.stores.ChatStatus.SetEnabled(chatID, true)
		c.reply(ctx, message, "✅ Reactions enabled for this chat.")
		return true

	case "/reactionoff":
		if !c.authorize(ctx, message, senderID) {
			return true
		}
		c.stores.ChatStatus.SetEnabled(chatID, false)
		c.reply(ctx, message, "⛔ Reactions disabled for this chat.")
		return true
	}

	return false
}

// authorize runs the permission chain for a mutating command and
// replies with the denial reason when the actor is not allowed.
func (c *Channel) authorize(ctx context.Context, message *telego.Message, senderID int64) bool {
	var senderChatID int64
	if message.SenderChat != nil {
		senderChatID = message.SenderChat.ID
	}
	ok, reason := c.resolver.Authorize(ctx, auth.Request{
		ActorID:      senderID,
		SenderChatID: senderChatID,
		ChatID:       message.Chat.ID,
		ChatKind:     message.Chat.Type,
	})
	if !ok {
		c.reply(ctx, message, fmt.Sprintf(
			"⚠️ Only the owner, sudo users or chat admins can do that.\n\nDebug: %s", reason))
	}
	return ok
}

func (c *Channel) reply(ctx context.Context, message *telego.Message, text string) {
	msg := tu.Message(tu.ID(message.Chat.ID), text)
	msg.ReplyParameters = &telego.ReplyParameters{MessageID: message.MessageID}
	if _, err := c.bot.SendMessage(ctx, msg); err != nil {
		slog.Warn("reply failed", "chat_id", message.Chat.ID, "error", err)
	}
}
