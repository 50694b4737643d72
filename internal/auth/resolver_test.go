package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAPI struct {
	memberStatus string
	memberErr    error
	admins       []int64
	adminsErr    error
	adminCalls   int
	linkedID     int64
	linkedErr    error
}

func (f *fakeAPI) MemberStatus(_ context.Context, _, _ int64) (string, error) {
	return f.memberStatus, f.memberErr
}

func (f *fakeAPI) AdminIDs(_ context.Context, _ int64) ([]int64, error) {
	f.adminCalls++
	return f.admins, f.adminsErr
}

func (f *fakeAPI) LinkedChatID(_ context.Context, _ int64) (int64, error) {
	return f.linkedID, f.linkedErr
}

type fakeSudo map[int64]bool

func (f fakeSudo) IsSudo(id int64) bool { return f[id] }

var errDown = errors.New("api unavailable")

func brokenAPI() *fakeAPI {
	return &fakeAPI{memberErr: errDown, adminsErr: errDown, linkedErr: errDown}
}

const ownerID = 100

func TestOwnerAlwaysAuthorized(t *testing.T) {
	// Even with every external call failing and a private chat kind,
	// the configured owner passes.
	r := NewResolver(ownerID, fakeSudo{}, brokenAPI())
	for _, kind := range []string{"private", "group", "supergroup", "channel"} {
		ok, reason := r.Authorize(context.Background(), Request{ActorID: ownerID, ChatID: -1, ChatKind: kind})
		if !ok {
			t.Fatalf("owner denied in %s chat: %s", kind, reason)
		}
	}
}

func TestSudoBypass(t *testing.T) {
	r := NewResolver(ownerID, fakeSudo{55: true}, brokenAPI())
	ok, _ := r.Authorize(context.Background(), Request{ActorID: 55, ChatID: -1, ChatKind: "supergroup"})
	if !ok {
		t.Fatal("sudo user denied")
	}
}

func TestFailClosedUnderAPIFailure(t *testing.T) {
	// Non-owner, non-sudo, non-admin in a supergroup with member lookup
	// and roster fetch both failing must be denied, never authorized.
	r := NewResolver(ownerID, fakeSudo{}, brokenAPI())
	ok, reason := r.Authorize(context.Background(), Request{ActorID: 7, ChatID: -1, ChatKind: "supergroup"})
	if ok {
		t.Fatal("authorized despite total API failure")
	}
	if reason == "" {
		t.Fatal("denial carries no diagnostic reason")
	}
}

func TestPrivateChatDenied(t *testing.T) {
	r := NewResolver(ownerID, fakeSudo{}, &fakeAPI{memberStatus: "administrator"})
	ok, reason := r.Authorize(context.Background(), Request{ActorID: 7, ChatID: 7, ChatKind: "private"})
	if ok {
		t.Fatal("non-owner authorized in private chat")
	}
	if reason != "chat_kind=private" {
		t.Fatalf("reason = %q, want chat_kind=private", reason)
	}
}

func TestMissingActorDenied(t *testing.T) {
	r := NewResolver(ownerID, fakeSudo{}, &fakeAPI{})
	ok, _ := r.Authorize(context.Background(), Request{ActorID: 0, ChatID: -1, ChatKind: "supergroup"})
	if ok {
		t.Fatal("authorized with no actor identity")
	}
}

func TestLinkedChannelSenderAuthorized(t *testing.T) {
	api := &fakeAPI{linkedID: -200, memberErr: errDown, adminsErr: errDown}
	r := NewResolver(ownerID, fakeSudo{}, api)
	ok, _ := r.Authorize(context.Background(), Request{SenderChatID: -200, ChatID: -1, ChatKind: "supergroup"})
	if !ok {
		t.Fatal("linked discussion channel sender denied")
	}
}

func TestUnlinkedChannelSenderDenied(t *testing.T) {
	api := &fakeAPI{linkedID: -999}
	r := NewResolver(ownerID, fakeSudo{}, api)
	ok, _ := r.Authorize(context.Background(), Request{SenderChatID: -200, ChatID: -1, ChatKind: "supergroup"})
	if ok {
		t.Fatal("unrelated channel sender authorized")
	}
}

func TestDirectAdminLookup(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"creator", true},
		{"administrator", true},
		{"member", false},
		{"left", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			api := &fakeAPI{memberStatus: tt.status}
			r := NewResolver(ownerID, fakeSudo{}, api)
			ok, _ := r.Authorize(context.Background(), Request{ActorID: 7, ChatID: -1, ChatKind: "group"})
			if ok != tt.want {
				t.Fatalf("status %s: authorized = %v, want %v", tt.status, ok, tt.want)
			}
		})
	}
}

func TestRosterFallbackAuthorizes(t *testing.T) {
	// Member lookup fails, roster fetch succeeds and contains the actor.
	api := &fakeAPI{memberErr: errDown, admins: []int64{7, 8}}
	r := NewResolver(ownerID, fakeSudo{}, api)
	ok, _ := r.Authorize(context.Background(), Request{ActorID: 7, ChatID: -1, ChatKind: "supergroup"})
	if !ok {
		t.Fatal("actor in refreshed roster denied")
	}
}

func TestRosterCacheServesWithinTTL(t *testing.T) {
	api := &fakeAPI{memberErr: errDown, admins: []int64{7}}
	r := NewResolver(ownerID, fakeSudo{}, api)

	now := time.Unix(1000, 0)
	r.now = func() time.Time { return now }

	req := Request{ActorID: 7, ChatID: -1, ChatKind: "supergroup"}
	if ok, _ := r.Authorize(context.Background(), req); !ok {
		t.Fatal("first check denied")
	}
	if api.adminCalls != 1 {
		t.Fatalf("adminCalls = %d, want 1", api.adminCalls)
	}

	// Within TTL the cached roster answers without another fetch.
	now = now.Add(DefaultRosterTTL / 2)
	if ok, _ := r.Authorize(context.Background(), req); !ok {
		t.Fatal("cached check denied")
	}
	if api.adminCalls != 1 {
		t.Fatalf("adminCalls = %d after cached check, want 1", api.adminCalls)
	}

	// Past TTL the roster is stale and refetched.
	now = now.Add(DefaultRosterTTL)
	if ok, _ := r.Authorize(context.Background(), req); !ok {
		t.Fatal("post-TTL check denied")
	}
	if api.adminCalls != 2 {
		t.Fatalf("adminCalls = %d after stale check, want 2", api.adminCalls)
	}
}

func TestAnonymousAdminSenderAuthorized(t *testing.T) {
	// Anonymous admin posts carry the chat itself as the sender chat.
	r := NewResolver(ownerID, fakeSudo{}, brokenAPI())
	ok, _ := r.Authorize(context.Background(), Request{SenderChatID: -1, ChatID: -1, ChatKind: "supergroup"})
	if !ok {
		t.Fatal("anonymous admin sender denied")
	}
}
