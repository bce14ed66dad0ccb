// Package notify holds the channel capability the dispatch job fans out to.
// Channels register under a name; adding a channel requires no dispatch
// changes, only a new Notifier implementation.
package notify

import (
	"context"
	"fmt"
	"sync"
)

// Notifier sends one piece of campaign content to one destination.
type Notifier interface {
	Send(ctx context.Context, title, message, destination string) error
}

// Registry is a named lookup of channel implementations.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Notifier
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Notifier)}
}

func (r *Registry) Register(name string, n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[name] = n
}

func (r *Registry) Get(name string) (Notifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.channels[name]
	if !ok {
		return nil, fmt.Errorf("no notifier registered for channel %q", name)
	}
	return n, nil
}

// BuildRegistry wires the default channel set. Without an API key the email
// channel degrades to the mock, which logs instead of sending.
func BuildRegistry(resendAPIKey, emailFrom string) *Registry {
	r := NewRegistry()
	if resendAPIKey != "" {
		r.Register("email", NewEmailNotifier(resendAPIKey, emailFrom))
	} else {
		r.Register("email", NewMockNotifier())
	}
	r.Register("mock", NewMockNotifier())
	return r
}
