package reaction

import (
	"math/rand"
	"sync"
)

// Rotator picks reaction emoji per chat without repeating any palette
// entry until the whole palette has been used once. Rotation state is
// in-memory only and resets on restart.
type Rotator struct {
	mu      sync.Mutex
	palette []string
	used    map[int64]map[string]bool
	rand    *rand.Rand
}

// NewRotator creates a rotator over the given palette. The palette must
// be non-empty; callers build it with SafePalette.
func NewRotator(palette []string, src rand.Source) *Rotator {
	return &Rotator{
		palette: palette,
		used:    make(map[int64]map[string]bool),
		rand:    rand.New(src),
	}
}

// Next returns a uniformly random palette emoji not yet used in this
// chat's current rotation lap. When the lap is complete the used-set is
// cleared first, so Next never deadlocks on an exhausted palette.
func (r *Rotator) Next(chatID int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	used := r.used[chatID]
	if used == nil {
		used = make(map[string]bool, len(r.palette))
		r.used[chatID] = used
	}
	if len(used) >= len(r.palette) {
		clear(used)
	}

	remaining := make([]string, 0, len(r.palette)-len(used))
	for _, e := range r.palette {
		if !used[e] {
			remaining = append(remaining, e)
		}
	}
	emoji := remaining[r.rand.Intn(len(remaining))]
	used[emoji] = true
	return emoji
}

// PaletteSize returns the number of emoji in one rotation lap.
func (r *Rotator) PaletteSize() int {
	return len(r.palette)
}
