package telegram

import (
	"strings"
	"sync"
)

// userCache remembers handle → numeric id mappings learned from
// observed traffic (senders and resolved mention entities). The Bot API
// has no username lookup, so this cache is the only handle resolver;
// a miss is a legitimate outcome and callers treat it as "keyword, not
// a user".
type userCache struct {
	mu  sync.RWMutex
	ids map[string]int64
}

func newUserCache() *userCache {
	return &userCache{ids: make(map[string]int64)}
}

// Remember stores a handle/id pair. Empty handles are ignored.
func (u *userCache) Remember(handle string, id int64) {
	if handle == "" || id == 0 {
		return
	}
	handle = strings.ToLower(handle)
	u.mu.Lock()
	u.ids[handle] = id
	u.mu.Unlock()
}

// Resolve returns the id last seen for a handle.
func (u *userCache) Resolve(handle string) (int64, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	id, ok := u.ids[strings.ToLower(handle)]
	return id, ok
}
