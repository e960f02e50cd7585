// internal/dmx/controller.go
package dmx

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Controller is the entry point for callers: it lists ports, accepts levels
// and owns the single writer loop.
type Controller struct {
	frames    *FrameBuffer
	ports     *PortRegistry
	transport Transport
	timing    Timing
	base      *zap.Logger
	logger    *zap.Logger

	blackoutOnStop bool

	listenerMu sync.RWMutex
	listeners  []StateListener

	// guards the writer handle only, never the frame or port state
	writerMu sync.Mutex
	writer   *Writer
	closed   bool
}

// Option configures a Controller
type Option func(*Controller)

// WithTiming overrides the protocol timing
func WithTiming(timing Timing) Option {
	return func(c *Controller) {
		c.timing = timing
	}
}

// WithBlackoutOnStop makes the writer send an all-zero frame before closing the port
func WithBlackoutOnStop(enabled bool) Option {
	return func(c *Controller) {
		c.blackoutOnStop = enabled
	}
}

// NewController creates a controller. No writer runs until the first SetLevels.
func NewController(transport Transport, logger *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		frames:    NewFrameBuffer(),
		ports:     NewPortRegistry(),
		transport: transport,
		timing:    DefaultTiming(),
		base:      logger,
		logger:    logger.With(zap.String("component", "dmx-controller")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a listener for writer state transitions
func (c *Controller) Subscribe(listener StateListener) {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	c.listeners = append(c.listeners, listener)
}

// ListPorts returns the available serial ports sorted by path
func (c *Controller) ListPorts() ([]PortInfo, error) {
	found, err := c.transport.ListPorts()
	if err != nil {
		return nil, &TransportError{Op: "list_ports", Err: err}
	}

	ports := make([]PortInfo, 0, len(found))
	for path, meta := range found {
		ports = append(ports, newPortInfo(path, meta))
	}

	sort.Slice(ports, func(i, j int) bool {
		return ports[i].Path < ports[j].Path
	})

	return ports, nil
}

// SetLevels selects port and replaces the frame with levels, starting the
// writer if it is not running yet.
func (c *Controller) SetLevels(port string, levels []byte) error {
	if port == "" {
		return &ValidationError{Count: len(levels), Err: ErrPortRequired}
	}
	if len(levels) > MaxChannels {
		return &ValidationError{Count: len(levels), Err: ErrOutOfRange}
	}
	if c.isClosed() {
		return ErrControllerClosed
	}

	c.ports.SetDesired(port)
	if err := c.frames.Update(levels); err != nil {
		return err
	}

	if err := c.ensureWriter(); err != nil {
		return fmt.Errorf("failed to start dmx writer: %w", err)
	}
	return nil
}

// Blackout sets every channel on port to zero
func (c *Controller) Blackout(port string) error {
	return c.SetLevels(port, nil)
}

// Frame returns a copy of the frame the writer will send next
func (c *Controller) Frame() []byte {
	return c.frames.Snapshot()
}

// Status reports the writer status. Without a writer it is idle, or stopped after Shutdown.
func (c *Controller) Status() Status {
	c.writerMu.Lock()
	w, closed := c.writer, c.closed
	c.writerMu.Unlock()

	if w != nil {
		return w.Status()
	}

	status := Status{State: StateIdle}
	if closed {
		status.State = StateStopped
	}
	status.DesiredPort, _ = c.ports.Desired()
	return status
}

// Running reports whether the writer loop has been started and not stopped
func (c *Controller) Running() bool {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()
	return c.writer != nil && !c.closed
}

// Shutdown stops the writer and waits for it to release the port
func (c *Controller) Shutdown(ctx context.Context) error {
	c.writerMu.Lock()
	c.closed = true
	w := c.writer
	c.writerMu.Unlock()

	if w == nil {
		return nil
	}

	w.Stop()
	select {
	case <-w.Done():
		c.logger.Info("DMX controller shut down")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for dmx writer: %w", ctx.Err())
	}
}

func (c *Controller) isClosed() bool {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()
	return c.closed
}

func (c *Controller) ensureWriter() error {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if c.writer != nil {
		return nil
	}

	w := NewWriter(c.frames, c.ports, c.transport, c.timing, c.base, c.notify)
	w.blackoutOnStop = c.blackoutOnStop
	c.writer = w

	go w.Run(context.Background())

	c.logger.Info("DMX writer launched")
	return nil
}

func (c *Controller) notify(status Status) {
	c.listenerMu.RLock()
	listeners := make([]StateListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.listenerMu.RUnlock()

	for _, listener := range listeners {
		listener(status)
	}
}
