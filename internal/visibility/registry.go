package visibility

import "sync"

// Registry holds one Controller per user.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// Get returns the controller of username, creating it from tickers on first use.
// tickers is only consulted at initialisation.
func (r *Registry) Get(username string, tickers func() ([]string, error)) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[username]; ok {
		return c, nil
	}

	list, err := tickers()
	if err != nil {
		return nil, err
	}
	c := New(list)
	r.controllers[username] = c
	return c, nil
}

// Reset drops the controller of username so that it is rebuilt from the next
// position list.
func (r *Registry) Reset(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, username)
}
