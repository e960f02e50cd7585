// internal/dmx/ports.go
package dmx

import "sync"

// PortRegistry tracks the port callers want and the port the transport holds.
// The two fields are locked separately so port selection never waits on the writer.
type PortRegistry struct {
	desiredMu sync.Mutex
	desired   string

	openedMu sync.Mutex
	opened   string
}

// NewPortRegistry creates an empty registry
func NewPortRegistry() *PortRegistry {
	return &PortRegistry{}
}

// SetDesired records the port the writer should transmit on
func (r *PortRegistry) SetDesired(port string) {
	r.desiredMu.Lock()
	defer r.desiredMu.Unlock()
	r.desired = port
}

// Desired returns the requested port, if any
func (r *PortRegistry) Desired() (string, bool) {
	r.desiredMu.Lock()
	defer r.desiredMu.Unlock()
	return r.desired, r.desired != ""
}

// MarkOpened records that the transport now holds port open
func (r *PortRegistry) MarkOpened(port string) {
	r.openedMu.Lock()
	defer r.openedMu.Unlock()
	r.opened = port
}

// ClearOpened forgets the opened port so the next cycle reopens it
func (r *PortRegistry) ClearOpened() {
	r.openedMu.Lock()
	defer r.openedMu.Unlock()
	r.opened = ""
}

// Opened returns the port currently held open, if any
func (r *PortRegistry) Opened() (string, bool) {
	r.openedMu.Lock()
	defer r.openedMu.Unlock()
	return r.opened, r.opened != ""
}

// NeedsReopen reports whether port differs from the opened port
func (r *PortRegistry) NeedsReopen(port string) bool {
	r.openedMu.Lock()
	defer r.openedMu.Unlock()
	return r.opened == "" || r.opened != port
}
