package dashboard

import (
	"context"
	"errors"
	"sync"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"
)

// ErrClosed is returned by controller actions after Close. Results of
// requests that were in flight at Close are discarded.
var ErrClosed = errors.New("dashboard: controller closed")

// Identity exposes the signed-in user.
type Identity interface {
	CurrentUser() *client.User
}

// lifecycle is embedded by every controller. It owns the base context that
// Close cancels and the loading flag.
type lifecycle struct {
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	inflight int
}

func newLifecycle() *lifecycle {
	base, cancel := context.WithCancel(context.Background())
	return &lifecycle{base: base, cancel: cancel}
}

// begin derives a request context that ends when either ctx or the
// controller ends.
func (l *lifecycle) begin(ctx context.Context) (context.Context, func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, nil, ErrClosed
	}
	l.inflight++

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.base, cancel)
	return reqCtx, func() {
		stop()
		cancel()
		l.mu.Lock()
		l.inflight--
		l.mu.Unlock()
	}, nil
}

// commit runs apply under the controller lock unless the controller was
// closed while the request was in flight.
func (l *lifecycle) commit(apply func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	apply()
	return nil
}

// settle returns ErrClosed in place of err once the controller is closed.
func (l *lifecycle) settle(err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	return err
}

// read runs fn under the controller lock.
func (l *lifecycle) read(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// Loading reports whether a request is in flight.
func (l *lifecycle) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight > 0
}

// Close cancels in-flight requests and makes later actions fail with
// ErrClosed.
func (l *lifecycle) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
}

// report toasts err unless it is a validation error, which the caller shows
// inline, or the controller was closed.
func report(toast *Toaster, err error) error {
	if err == nil || errors.Is(err, ErrClosed) || toast == nil {
		return err
	}
	if !apperrors.IsValidation(err) {
		toast.Error(apperrors.MessageOf(err))
	}
	return err
}

func actorOf(id Identity) domain.Actor {
	if id == nil {
		return domain.Actor{}
	}
	return id.CurrentUser().Actor()
}
