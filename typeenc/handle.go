package typeenc

import (
	"sync"
	"sync/atomic"
)

// Handle identifies an object while it travels through an argument or
// return buffer. The zero Handle is nil.
type Handle uint64

// Handles is a table of objects currently referenced from buffers. A
// runtime retains an object to write it into a slot and the reader
// releases the handle once the object has been looked up.
type Handles struct {
	nextID  atomic.Uint64
	mu      sync.RWMutex
	objects map[Handle]any
}

// NewHandles creates an empty handle table.
func NewHandles() *Handles {
	return &Handles{objects: make(map[Handle]any)}
}

// Retain stores obj and returns its handle. nil maps to the zero handle.
func (h *Handles) Retain(obj any) Handle {
	if obj == nil {
		return 0
	}
	id := Handle(h.nextID.Add(1))
	h.mu.Lock()
	h.objects[id] = obj
	h.mu.Unlock()
	return id
}

// Lookup returns the object for a handle.
func (h *Handles) Lookup(id Handle) (any, bool) {
	if id == 0 {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	obj, ok := h.objects[id]
	return obj, ok
}

// Release drops a handle. Releasing an unknown handle is a no-op.
func (h *Handles) Release(id Handle) {
	if id == 0 {
		return
	}
	h.mu.Lock()
	delete(h.objects, id)
	h.mu.Unlock()
}

// Len returns the number of live handles.
func (h *Handles) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.objects)
}
