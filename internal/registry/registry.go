// Package registry holds the ephemeral connection-to-meeting bindings.
// The map lives only in process memory and is rebuilt from nothing on
// restart; it must never be persisted.
package registry

import "sync"

// Binding is what a live connection is currently attached to.
type Binding struct {
	MeetingCode string
	DisplayName string
}

type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

func New() *Registry {
	return &Registry{bindings: make(map[string]Binding)}
}

// Bind upserts the binding for connID. Last bind wins.
func (r *Registry) Bind(connID, meetingCode, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[connID] = Binding{MeetingCode: meetingCode, DisplayName: displayName}
}

// Lookup returns the current binding for connID, if any.
func (r *Registry) Lookup(connID string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	binding, ok := r.bindings[connID]
	return binding, ok
}

// Unbind removes the binding for connID. No-op if absent.
func (r *Registry) Unbind(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, connID)
}
