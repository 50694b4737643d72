package reaction

import "testing"

func snap(values ...string) Snapshot { return NewSnapshot(values) }

func TestNormalizeTrigger(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "@Alice", want: "alice"},
		{in: "NEKO", want: "neko"},
		{in: "  @Bob  ", want: "bob"},
		{in: "id:555", want: "id:555"},
		{in: "", wantErr: true},
		{in: "@", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeTrigger(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeTrigger(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeTrigger(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTrigger(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchMentionBeatsKeyword(t *testing.T) {
	// "alice" is both a handle trigger and literally contained in the
	// text; the mention rule must win and only one match may fire.
	msg := Message{
		Text:     "hey @alice, alice is here",
		Mentions: []Mention{{Handle: "alice"}},
	}
	m, ok := MatchMessage(msg, snap("alice"))
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Rule != RuleMention {
		t.Fatalf("rule = %s, want mention", m.Rule)
	}
	if m.Trigger != "alice" {
		t.Fatalf("trigger = %q, want alice", m.Trigger)
	}
}

func TestMatchIdentityMention(t *testing.T) {
	msg := Message{
		Text:     "look at this",
		Mentions: []Mention{{Handle: "", UserID: 555}},
	}
	m, ok := MatchMessage(msg, snap("id:555"))
	if !ok || m.Rule != RuleIdentity || m.Trigger != "id:555" {
		t.Fatalf("got %+v ok=%v, want identity id:555", m, ok)
	}
}

func TestMatchKeyword(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		triggers Snapshot
		wantTrig string
		wantOK   bool
	}{
		{
			name:     "case-insensitive substring",
			msg:      Message{Text: "hello NEKO!"},
			triggers: snap("neko"),
			wantTrig: "neko",
			wantOK:   true,
		},
		{
			name:     "at-prefixed surface form",
			msg:      Message{Text: "ping @neko please"},
			triggers: snap("neko"),
			wantTrig: "neko",
			wantOK:   true,
		},
		{
			name:     "caption joins text",
			msg:      Message{Text: "photo", Caption: "with neko inside"},
			triggers: snap("neko"),
			wantTrig: "neko",
			wantOK:   true,
		},
		{
			name:     "caption only",
			msg:      Message{Caption: "neko"},
			triggers: snap("neko"),
			wantTrig: "neko",
			wantOK:   true,
		},
		{
			name:     "identity entries skipped for keyword scan",
			msg:      Message{Text: "id:555 appears literally"},
			triggers: snap("id:555"),
			wantOK:   false,
		},
		{
			name:     "lexicographic first wins",
			msg:      Message{Text: "banana apple"},
			triggers: snap("banana", "apple"),
			wantTrig: "apple",
			wantOK:   true,
		},
		{
			name:     "no match",
			msg:      Message{Text: "nothing to see"},
			triggers: snap("neko"),
			wantOK:   false,
		},
		{
			name:     "empty message",
			msg:      Message{},
			triggers: snap("neko"),
			wantOK:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := MatchMessage(tt.msg, tt.triggers)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (match %+v)", ok, tt.wantOK, m)
			}
			if !ok {
				return
			}
			if m.Rule != RuleKeyword {
				t.Fatalf("rule = %s, want keyword", m.Rule)
			}
			if m.Trigger != tt.wantTrig {
				t.Fatalf("trigger = %q, want %q", m.Trigger, tt.wantTrig)
			}
		})
	}
}

func TestMatchEmptySnapshot(t *testing.T) {
	if _, ok := MatchMessage(Message{Text: "anything"}, snap()); ok {
		t.Fatal("empty snapshot must never match")
	}
}

func TestIsCommand(t *testing.T) {
	const prefixes = "/!$.#"
	tests := []struct {
		text string
		want bool
	}{
		{"/addreact neko", true},
		{"!ban", true},
		{".roll", true},
		{"hello /slash later", false},
		{"", false},
		{"plain text", false},
	}
	for _, tt := range tests {
		if got := IsCommand(tt.text, prefixes); got != tt.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
