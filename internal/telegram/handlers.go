package telegram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/autoreact/internal/dispatch"
	"github.com/nextlevelbuilder/autoreact/internal/reaction"
)

// handleMessage processes one incoming Telegram message.
func (c *Channel) handleMessage(ctx context.Context, message *telego.Message) {
	// Service messages (member joined, title changed, ...) carry no
	// text or caption and can never match.
	if message.Text == "" && message.Caption == "" {
		return
	}

	c.rememberUsers(message)

	var senderID int64
	if message.From != nil {
		senderID = message.From.ID
	}
	if senderID != 0 && c.stores.Bans.IsBanned(senderID) {
		slog.Debug("message from banned user ignored", "user_id", senderID, "chat_id", message.Chat.ID)
		return
	}

	if handled := c.handleBotCommand(ctx, message, senderID); handled {
		return
	}

	res := c.dispatcher.OnMessage(ctx, dispatch.Message{
		ChatID:    message.Chat.ID,
		MessageID: message.MessageID,
		SenderID:  senderID,
		Text:      message.Text,
		Caption:   message.Caption,
		Mentions:  extractMentions(message),
	})
	if res.Outcome == dispatch.Suppressed && res.Reason != "no_match" {
		slog.Debug("reaction suppressed",
			"chat_id", message.Chat.ID, "message_id", message.MessageID, "reason", res.Reason)
	}
}

// rememberUsers feeds the handle resolver from the message's sender and
// any resolved mention entities.
func (c *Channel) rememberUsers(message *telego.Message) {
	if message.From != nil {
		c.users.Remember(message.From.Username, message.From.ID)
	}
	for _, pair := range entityPairs(message) {
		for _, ent := range pair.entities {
			if ent.Type == "text_mention" && ent.User != nil {
				c.users.Remember(ent.User.Username, ent.User.ID)
			}
		}
	}
}

type entityPair struct {
	entities []telego.MessageEntity
	text     string
}

func entityPairs(message *telego.Message) []entityPair {
	return []entityPair{
		{message.Entities, message.Text},
		{message.CaptionEntities, message.Caption},
	}
}

// extractMentions turns Telegram mention entities into the matcher's
// platform-neutral form. Text entities and caption entities are
// treated alike, the way photos carry their mentions in the caption.
func extractMentions(message *telego.Message) []reaction.Mention {
	var out []reaction.Mention
	for _, pair := range entityPairs(message) {
		if pair.text == "" {
			continue
		}
		for _, ent := range pair.entities {
			switch ent.Type {
			case "mention":
				handle := sliceEntity(pair.text, ent)
				handle = strings.ToLower(strings.TrimPrefix(handle, "@"))
				if handle != "" {
					out = append(out, reaction.Mention{Handle: handle})
				}
			case "text_mention":
				if ent.User != nil {
					out = append(out, reaction.Mention{
						Handle: strings.ToLower(ent.User.Username),
						UserID: ent.User.ID,
					})
				}
			}
		}
	}
	return out
}

func sliceEntity(text string, ent telego.MessageEntity) string {
	start, end := ent.Offset, ent.Offset+ent.Length
	if start < 0 || end > len(text) || start >= end {
		return ""
	}
	return text[start:end]
}
