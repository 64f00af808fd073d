package dashboard

import (
	"sync"
	"time"
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 3 * time.Second

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is a transient notification.
type Toast struct {
	Kind    ToastKind
	Message string
}

// Toaster shows one toast at a time and hides it after a fixed duration.
// A new toast replaces the current one and restarts the timer.
type Toaster struct {
	duration time.Duration

	mu      sync.Mutex
	current *Toast
	timer   *time.Timer
	seq     uint64
	onShow  func(Toast)
}

func NewToaster(duration time.Duration) *Toaster {
	if duration <= 0 {
		duration = DefaultToastDuration
	}
	return &Toaster{duration: duration}
}

// OnShow registers fn to be called with every toast shown.
func (t *Toaster) OnShow(fn func(Toast)) {
	t.mu.Lock()
	t.onShow = fn
	t.mu.Unlock()
}

func (t *Toaster) Success(message string) { t.show(Toast{Kind: ToastSuccess, Message: message}) }

func (t *Toaster) Error(message string) { t.show(Toast{Kind: ToastError, Message: message}) }

func (t *Toaster) show(toast Toast) {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.current = &toast
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.duration, func() { t.expire(seq) })
	onShow := t.onShow
	t.mu.Unlock()

	if onShow != nil {
		onShow(toast)
	}
}

func (t *Toaster) expire(seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.seq == seq {
		t.current = nil
	}
}

// Current returns the visible toast, if any.
func (t *Toaster) Current() (Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Toast{}, false
	}
	return *t.current, true
}

// Dismiss hides the current toast immediately.
func (t *Toaster) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
