// Package reaction holds the pure pieces of the auto-reaction pipeline:
// the emoji palette, the per-chat rotation selector, trigger
// normalization and the message matcher. Nothing in this package talks
// to Telegram or to storage.
package reaction

// validReactions is the set of emoji Telegram accepts in
// setMessageReaction. Anything outside this set is rejected by the Bot
// API, so configured palettes are filtered against it.
var validReactions = map[string]bool{
	"👍": true, "👎": true, "❤️": true, "🔥": true, "👏": true,
	"😁": true, "🤔": true, "😢": true, "🤯": true, "😍": true,
	"🤬": true, "😱": true, "🎉": true, "🤩": true, "🙏": true,
	"🥰": true, "💯": true, "⚡": true, "🏆": true, "😎": true,
	"🤣": true, "😘": true, "🕊️": true, "💔": true, "😇": true,
}

// DefaultEmoji is the single fallback reaction used when the rotated
// pick fails to send.
const DefaultEmoji = "❤️"

// IsValidReaction reports whether emoji can be used as a Telegram
// message reaction.
func IsValidReaction(emoji string) bool {
	return validReactions[emoji]
}

// SafePalette filters configured into the set of valid reaction emoji,
// preserving order and dropping duplicates. An empty result falls back
// to the full valid set so the rotator never starts with an empty
// palette.
func SafePalette(configured []string) []string {
	seen := make(map[string]bool, len(configured))
	var out []string
	for _, e := range configured {
		if !validReactions[e] || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	if len(out) == 0 {
		out = make([]string, 0, len(validReactions))
		for e := range validReactions {
			out = append(out, e)
		}
	}
	return out
}
