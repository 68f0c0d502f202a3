package animtex

import (
	"sync"
	"time"
)

// Loop dispatches render ticks to subscribers. The host render loop owns a
// Loop and calls Step once per frame; each animated texture subscribes when
// its animation is ready and unsubscribes on Close.
//
// Loop is safe for concurrent use. Subscribers are invoked in subscription
// order on the goroutine that calls Step.
type Loop struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewLoop creates an empty render loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Subscribe registers fn to run on every Step. The returned Subscription
// cancels the registration: once Cancel returns, no Step that starts
// afterwards invokes fn. A Step already in flight on another goroutine may
// invoke fn one final time.
func (l *Loop) Subscribe(fn func(now time.Time)) *Subscription {
	sub := &Subscription{loop: l, fn: fn}
	l.mu.Lock()
	l.subs = append(l.subs, sub)
	l.mu.Unlock()
	return sub
}

// Step invokes every live subscriber with the given time. Hosts call Step
// once per rendered frame, passing the frame's timestamp.
func (l *Loop) Step(now time.Time) {
	l.mu.Lock()
	live := make([]*Subscription, len(l.subs))
	copy(live, l.subs)
	l.mu.Unlock()

	for _, sub := range live {
		sub.mu.Lock()
		fn := sub.fn
		sub.mu.Unlock()
		if fn != nil {
			fn(now)
		}
	}
}

// Len returns the number of live subscriptions.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Subscription is a handle to a render loop registration.
type Subscription struct {
	loop *Loop

	mu sync.Mutex
	fn func(now time.Time)
}

// Cancel removes the subscription from its loop. Cancel is idempotent and
// safe to call from within the subscriber itself.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	s.fn = nil
	s.mu.Unlock()

	l := s.loop
	l.mu.Lock()
	for i, sub := range l.subs {
		if sub == s {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
}
