package wizard

import (
	"sync"
	"time"
)

// NoticeTTL is how long a notice stays visible.
const NoticeTTL = 3 * time.Second

// Board holds the single transient notice shown to the user. A new notice
// replaces the current one and restarts its timer.
type Board struct {
	mu    sync.Mutex
	text  string
	until time.Time
	ttl   time.Duration
	now   func() time.Time
}

func NewBoard() *Board {
	return &Board{ttl: NoticeTTL, now: time.Now}
}

func (b *Board) Show(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.until = b.now().Add(b.ttl)
}

// Current returns the visible notice, if any.
func (b *Board) Current() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.text == "" || !b.now().Before(b.until) {
		b.text = ""
		return "", false
	}
	return b.text, true
}

func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
}
