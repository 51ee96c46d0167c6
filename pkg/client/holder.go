package client

import "sync"

// Holder hands out the current Client and replaces it when credentials or
// the base URL change. It is an ordinary value passed to whoever needs a
// client; there is no package-level instance.
type Holder struct {
	build func() *Client

	mu         sync.RWMutex
	current    *Client
	generation uint64
}

// NewHolder builds the first client with build and returns the holder.
func NewHolder(build func() *Client) *Holder {
	return &Holder{build: build, current: build()}
}

// Current returns the client in use.
func (h *Holder) Current() *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Rebuild constructs a fresh client and makes it current.
func (h *Holder) Rebuild() *Client {
	c := h.build()
	h.mu.Lock()
	h.current = c
	h.generation++
	h.mu.Unlock()
	return c
}

// Generation counts rebuilds since construction.
func (h *Holder) Generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.generation
}
