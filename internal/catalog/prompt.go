package catalog

import (
	"sync"
	"time"

	"github.com/fedya1922n/food-shop/internal/sched"
)

// SwitchPrompt is the transient "switch language?" suggestion raised when a
// search matches a language other than the active one. A single timer backs
// it; re-raising resets the timer instead of stacking dismissals.
type SwitchPrompt struct {
	Clock sched.Clock
	TTL   time.Duration

	mu    sync.Mutex
	lang  string
	timer sched.Timer
}

// Raise activates the prompt for the given language and (re)arms the
// dismissal timer.
func (p *SwitchPrompt) Raise(lang string) {
	if p == nil || lang == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lang = lang
	if p.timer != nil {
		p.timer.Reset(p.ttl())
		return
	}
	clock := p.Clock
	if clock == nil {
		clock = sched.Real()
	}
	p.timer = clock.AfterFunc(p.ttl(), func() {
		p.mu.Lock()
		p.lang = ""
		p.timer = nil
		p.mu.Unlock()
	})
}

// Active returns the suggested language, or empty when no prompt is active.
func (p *SwitchPrompt) Active() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang
}

// Dismiss clears the prompt and cancels the pending timer.
func (p *SwitchPrompt) Dismiss() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lang = ""
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Close cancels the timer on teardown.
func (p *SwitchPrompt) Close() {
	p.Dismiss()
}

func (p *SwitchPrompt) ttl() time.Duration {
	if p.TTL <= 0 {
		return 6 * time.Second
	}
	return p.TTL
}
