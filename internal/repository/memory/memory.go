// Package memory keeps every repository in process memory. It backs the
// "memory" store for local development and doubles as the test store: any
// operation can be made to fail or to wait through Fail and Before.
package memory

import (
	"sync"
)

// hooks lets callers inject faults per operation name. Operation names are
// the method names, optionally suffixed with "/<id>" for per-document
// faults ("PutMirror", "Delete/p2").
type hooks struct {
	mu     sync.Mutex
	faults map[string]error
	before map[string]func()
}

// Fail makes op return err until cleared with a nil err.
func (h *hooks) Fail(op string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.faults == nil {
		h.faults = make(map[string]error)
	}
	if err == nil {
		delete(h.faults, op)
		return
	}
	h.faults[op] = err
}

// Before runs fn at the start of op, outside any repository lock.
func (h *hooks) Before(op string, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.before == nil {
		h.before = make(map[string]func())
	}
	h.before[op] = fn
}

func (h *hooks) enter(op string) error {
	h.mu.Lock()
	fn := h.before[op]
	err := h.faults[op]
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
	return err
}

func (h *hooks) fault(op string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.faults[op]
}
