package telegram

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// API adapts the telego bot to the narrow interfaces the dispatcher
// (Reactor) and the permission resolver (ChatAPI) consume.
type API struct {
	bot *telego.Bot
}

func NewAPI(bot *telego.Bot) *API {
	return &API{bot: bot}
}

// React sets a single emoji reaction on a message.
func (a *API) React(ctx context.Context, chatID int64, messageID int, emoji string) error {
	return a.bot.SetMessageReaction(ctx, &telego.SetMessageReactionParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
		Reaction: []telego.ReactionType{
			&telego.ReactionTypeEmoji{Type: "emoji", Emoji: emoji},
		},
	})
}

// MemberStatus returns the actor's membership status string in a chat.
func (a *API) MemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	member, err := a.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: tu.ID(chatID),
		UserID: userID,
	})
	if err != nil {
		return "", fmt.Errorf("get chat member: %w", err)
	}
	if member == nil {
		return "", fmt.Errorf("get chat member: empty response")
	}
	return member.MemberStatus(), nil
}

// AdminIDs returns the ids of the chat's administrators.
func (a *API) AdminIDs(ctx context.Context, chatID int64) ([]int64, error) {
	admins, err := a.bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{
		ChatID: tu.ID(chatID),
	})
	if err != nil {
		return nil, fmt.Errorf("get chat administrators: %w", err)
	}
	ids := make([]int64, 0, len(admins))
	for _, m := range admins {
		ids = append(ids, m.MemberUser().ID)
	}
	return ids, nil
}

// LinkedChatID returns the chat's linked discussion channel id, 0 when
// none.
func (a *API) LinkedChatID(ctx context.Context, chatID int64) (int64, error) {
	chat, err := a.bot.GetChat(ctx, &telego.GetChatParams{ChatID: tu.ID(chatID)})
	if err != nil {
		return 0, fmt.Errorf("get chat: %w", err)
	}
	return chat.LinkedChatID, nil
}
