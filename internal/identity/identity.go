// Package identity models the sign-in collaborator: who owns the
// continue-watching list right now, plus a change signal for sign-in/out.
// Token verification lives in platform/auth; this package only tracks the
// resolved owner.
package identity

import "sync"

// Watcher reports the active owner and notifies on changes.
type Watcher interface {
	// CurrentOwner returns the signed-in owner id, or ok=false when the
	// session is anonymous.
	CurrentOwner() (string, bool)
	// OnChange registers fn to run after every sign-in or sign-out.
	// The returned function unregisters it.
	OnChange(fn func()) (unsubscribe func())
}

// Broadcaster is the concrete Watcher wired into the app: the auth layer
// calls SignIn/SignOut and every registered listener is notified.
type Broadcaster struct {
	mu        sync.Mutex
	owner     string
	listeners map[int]func()
	next      int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]func())}
}

func (b *Broadcaster) CurrentOwner() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner, b.owner != ""
}

func (b *Broadcaster) OnChange(fn func()) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// SignIn switches the active owner. A no-op when ownerID is already active.
func (b *Broadcaster) SignIn(ownerID string) {
	b.setOwner(ownerID)
}

// SignOut returns the session to anonymous.
func (b *Broadcaster) SignOut() {
	b.setOwner("")
}

func (b *Broadcaster) setOwner(owner string) {
	b.mu.Lock()
	if b.owner == owner {
		b.mu.Unlock()
		return
	}
	b.owner = owner
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	// Listeners run outside the lock so they may call back into the broadcaster.
	for _, fn := range fns {
		fn()
	}
}
