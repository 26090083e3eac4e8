package events

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/PolarWolf314/conf/internal/document"
)

// Reader returns the current value a subscription watches.
type Reader func() (any, error)

// Callback receives the new and previous value.
type Callback func(newValue, oldValue any)

type subscription struct {
	id     uint64
	read   Reader
	cb     Callback
	last   any
	active atomic.Bool
}

// Notifier fans a change signal out to subscriptions.
type Notifier struct {
	// OnError is called when a subscription cannot read its value. The
	// subscription keeps its captured value.
	OnError func(error)

	mu          sync.Mutex
	subs        map[uint64]*subscription
	next        uint64
	dispatching bool
	dirty       bool
}

// Subscribe captures the current value and registers cb. The returned
// function removes the subscription; it takes effect immediately, even for a
// dispatch already in progress.
func (n *Notifier) Subscribe(read Reader, cb Callback) (func(), error) {
	initial, err := read()
	if err != nil {
		return nil, err
	}

	s := &subscription{read: read, cb: cb, last: initial}
	s.active.Store(true)

	n.mu.Lock()
	if n.subs == nil {
		n.subs = map[uint64]*subscription{}
	}
	n.next++
	s.id = n.next
	n.subs[s.id] = s
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			n.mu.Lock()
			delete(n.subs, s.id)
			n.mu.Unlock()
		})
	}, nil
}

// Emit signals a change. Subscriptions are visited in subscription order.
func (n *Notifier) Emit() {
	n.mu.Lock()
	if n.dispatching {
		n.dirty = true
		n.mu.Unlock()
		return
	}
	n.dispatching = true

	for {
		n.dirty = false
		subs := n.snapshot()
		n.mu.Unlock()

		for _, s := range subs {
			n.deliver(s)
		}

		n.mu.Lock()
		if !n.dirty {
			n.dispatching = false
			n.mu.Unlock()
			return
		}
	}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Reset drops every subscription.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.subs {
		s.active.Store(false)
	}
	n.subs = nil
}

func (n *Notifier) snapshot() []*subscription {
	out := make([]*subscription, 0, len(n.subs))
	for _, s := range n.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (n *Notifier) deliver(s *subscription) {
	if !s.active.Load() {
		return
	}
	current, err := s.read()
	if err != nil {
		if n.OnError != nil {
			n.OnError(err)
		}
		return
	}
	previous := s.last
	s.last = current
	if document.Equal(current, previous) {
		return
	}
	if s.active.Load() {
		s.cb(current, previous)
	}
}
