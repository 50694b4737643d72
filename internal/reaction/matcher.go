package reaction

import (
	"sort"
	"strings"
)

// Snapshot is an immutable view of a chat's trigger set, taken once per
// message so matching never races with concurrent mutation.
type Snapshot struct {
	values []string
	set    map[string]bool
}

// NewSnapshot builds a snapshot from normalized trigger values. The
// iteration order used for keyword matching is lexicographic.
func NewSnapshot(values []string) Snapshot {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	set := make(map[string]bool, len(sorted))
	for _, v := range sorted {
		set[v] = true
	}
	return Snapshot{values: sorted, set: set}
}

// Contains reports whether the normalized value is a trigger.
func (s Snapshot) Contains(value string) bool { return s.set[value] }

// Values returns the triggers in lexicographic order.
func (s Snapshot) Values() []string { return s.values }

// Len returns the number of triggers in the snapshot.
func (s Snapshot) Len() int { return len(s.values) }

// Rule identifies which precedence rule produced a match.
type Rule int

const (
	// RuleMention: an explicit @handle mention matched a trigger.
	RuleMention Rule = iota + 1
	// RuleIdentity: a resolved mention identity matched an id:<N> trigger.
	RuleIdentity
	// RuleKeyword: the trigger appeared as a substring of text/caption.
	RuleKeyword
)

func (r Rule) String() string {
	switch r {
	case RuleMention:
		return "mention"
	case RuleIdentity:
		return "identity"
	case RuleKeyword:
		return "keyword"
	default:
		return "none"
	}
}

// Mention is a platform mention annotation, already sliced out of the
// message text by the channel. Handle is lowercased without the "@";
// UserID is non-zero only when the platform resolved the mention to a
// numeric identity.
type Mention struct {
	Handle string
	UserID int64
}

// Message is the matcher's view of an inbound message.
type Message struct {
	Text     string
	Caption  string
	Mentions []Mention
}

// Match is the winning trigger and the rule that selected it.
type Match struct {
	Rule    Rule
	Trigger string
}

// IsCommand reports whether text starts with one of the configured
// command prefix characters. Command messages never trigger reactions.
func IsCommand(text, prefixes string) bool {
	if text == "" {
		return false
	}
	return strings.ContainsRune(prefixes, rune(text[0]))
}

// MatchMessage applies the precedence rules and returns at most one
// match. Explicit handle mentions win over resolved identities, which
// win over keyword containment; within the keyword rule the first
// snapshot entry in lexicographic order wins.
func MatchMessage(msg Message, triggers Snapshot) (Match, bool) {
	if triggers.Len() == 0 {
		return Match{}, false
	}

	// 1. Explicit handle mentions.
	for _, m := range msg.Mentions {
		if m.Handle != "" && triggers.Contains(m.Handle) {
			return Match{Rule: RuleMention, Trigger: m.Handle}, true
		}
	}

	// 2. Resolved identity mentions.
	for _, m := range msg.Mentions {
		if m.UserID != 0 {
			if key := IdentityTrigger(m.UserID); triggers.Contains(key) {
				return Match{Rule: RuleIdentity, Trigger: key}, true
			}
		}
	}

	// 3. Keyword containment over text and caption together.
	body := strings.ToLower(msg.Text)
	if msg.Caption != "" {
		if body != "" {
			body += " "
		}
		body += strings.ToLower(msg.Caption)
	}
	if body == "" {
		return Match{}, false
	}
	for _, trig := range triggers.Values() {
		if IsIdentityTrigger(trig) {
			continue
		}
		if strings.Contains(body, trig) {
			return Match{Rule: RuleKeyword, Trigger: trig}, true
		}
	}
	return Match{}, false
}
