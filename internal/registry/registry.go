// Package registry keeps track of the browser sessions opened by the keyword
// library. Sessions are stored under a caller supplied alias or, when no alias
// is given, under the next sequential index. One session at most is current.
//
// A Registry is not safe for concurrent mutation. The library executes one
// keyword at a time and callers that share a Registry must serialize access.
package registry

import (
	log "github.com/sirupsen/logrus"
)

// Session is an opaque handle to an open browser. The registry never looks
// at it beyond calling Close when the entry is closed.
type Session interface {
	Close() error
}

type entry[S Session] struct {
	key     Key
	session S
}

// Registry maps aliases and indices to sessions and remembers which one is
// current.
type Registry[S Session] struct {
	entries    []entry[S]
	current    Key
	hasCurrent bool
	lastIndex  int
}

// New returns an empty registry.
func New[S Session]() *Registry[S] {
	return &Registry[S]{
		entries: make([]entry[S], 0),
	}
}

// Register stores session and makes it current. A non-empty alias is used as
// the key; otherwise the next index is assigned. Indices start at 1 and are
// never handed out twice.
func (r *Registry[S]) Register(session S, alias string) (Key, error) {
	var key Key
	if alias != "" {
		key = Alias(alias)
		if r.find(key) >= 0 {
			return Key{}, &DuplicateAliasError{Alias: alias}
		}
	} else {
		r.lastIndex++
		key = Index(r.lastIndex)
	}

	r.entries = append(r.entries, entry[S]{key: key, session: session})
	r.current = key
	r.hasCurrent = true
	log.Debugf("Registered browser session %s (%d open)", key, len(r.entries))
	return key, nil
}

// Current returns the current session. The boolean is false when no session
// is current.
func (r *Registry[S]) Current() (S, bool) {
	var zero S
	if !r.hasCurrent {
		return zero, false
	}
	i := r.find(r.current)
	if i < 0 {
		return zero, false
	}
	return r.entries[i].session, true
}

// MustCurrent is Current for callers that need a session.
func (r *Registry[S]) MustCurrent() (S, error) {
	session, ok := r.Current()
	if !ok {
		return session, ErrNoCurrentSession
	}
	return session, nil
}

// CurrentKey returns the key of the current session.
func (r *Registry[S]) CurrentKey() (Key, bool) {
	if !r.hasCurrent {
		return Key{}, false
	}
	return r.current, true
}

// Switch makes the session stored under key current and returns it.
func (r *Registry[S]) Switch(key Key) (S, error) {
	i := r.find(key)
	if i < 0 {
		var zero S
		return zero, &UnknownSessionError{Key: key}
	}
	r.current = key
	r.hasCurrent = true
	log.Debugf("Switched to browser session %s", key)
	return r.entries[i].session, nil
}

// CloseCurrent closes the current session and removes it. No other session
// becomes current. It does nothing when no session is current.
func (r *Registry[S]) CloseCurrent() error {
	if !r.hasCurrent {
		log.Debug("No current browser session to close")
		return nil
	}
	return r.Close(r.current)
}

// Close closes the session stored under key and removes it. If it was the
// current session the current pointer is cleared. The entry is removed even
// when the teardown fails.
func (r *Registry[S]) Close(key Key) error {
	i := r.find(key)
	if i < 0 {
		return &UnknownSessionError{Key: key}
	}
	session := r.entries[i].session
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	if r.hasCurrent && r.current == key {
		r.current = Key{}
		r.hasCurrent = false
	}

	if err := session.Close(); err != nil {
		log.Debugf("Error closing browser session %s: %v", key, err)
		return err
	}
	log.Debugf("Closed browser session %s", key)
	return nil
}

// CloseAll closes every session in registration order and empties the
// registry. All sessions are closed even if some fail; the failures are
// returned together as a *TeardownError.
func (r *Registry[S]) CloseAll() error {
	entries := r.entries
	r.entries = make([]entry[S], 0)
	r.current = Key{}
	r.hasCurrent = false

	var failures []KeyError
	for _, e := range entries {
		if err := e.session.Close(); err != nil {
			log.Debugf("Error closing browser session %s: %v", e.key, err)
			failures = append(failures, KeyError{Key: e.key, Err: err})
		}
	}
	if len(entries) > 0 {
		log.Debugf("Closed %d browser session(s), %d failed", len(entries), len(failures))
	}
	if len(failures) > 0 {
		return &TeardownError{Failures: failures}
	}
	return nil
}

// IsEmpty reports whether no sessions are open.
func (r *Registry[S]) IsEmpty() bool {
	return len(r.entries) == 0
}

// Count returns the number of open sessions.
func (r *Registry[S]) Count() int {
	return len(r.entries)
}

// Keys returns the keys of the open sessions in registration order.
func (r *Registry[S]) Keys() []Key {
	keys := make([]Key, 0, len(r.entries))
	for _, e := range r.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Sessions returns the open sessions in registration order.
func (r *Registry[S]) Sessions() []S {
	sessions := make([]S, 0, len(r.entries))
	for _, e := range r.entries {
		sessions = append(sessions, e.session)
	}
	return sessions
}

// Resolve turns a keyword argument into the key of an open session. A live
// alias with that exact name wins over reading the text as an index.
func (r *Registry[S]) Resolve(text string) (Key, bool) {
	if text == "" {
		return Key{}, false
	}
	if key := Alias(text); r.find(key) >= 0 {
		return key, true
	}
	if key, ok := ParseIndex(text); ok && r.find(key) >= 0 {
		return key, true
	}
	return Key{}, false
}

// Contains reports whether key is live.
func (r *Registry[S]) Contains(key Key) bool {
	return r.find(key) >= 0
}

func (r *Registry[S]) find(key Key) int {
	for i := 0; i < len(r.entries); i++ {
		if r.entries[i].key == key {
			return i
		}
	}
	return -1
}
