// internal/dmx/writer.go
package dmx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the writer loop state
type State int

const (
	StateIdle State = iota
	StateOpening
	StateStreaming
	StateFaultBackoff
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateFaultBackoff:
		return "fault_backoff"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Timing holds the protocol delays used by the writer
type Timing struct {
	Cycle          time.Duration
	OpenBackoff    time.Duration
	Break          time.Duration
	MarkAfterBreak time.Duration
}

// DefaultTiming returns the fixed DMX512 cadence: a frame every 25ms,
// 110µs break, 12µs mark-after-break, 500ms between failed opens.
func DefaultTiming() Timing {
	return Timing{
		Cycle:          25 * time.Millisecond,
		OpenBackoff:    500 * time.Millisecond,
		Break:          110 * time.Microsecond,
		MarkAfterBreak: 12 * time.Microsecond,
	}
}

// Status is a point-in-time view of the writer
type Status struct {
	State       State      `json:"state"`
	DesiredPort string     `json:"desired_port,omitempty"`
	OpenedPort  string     `json:"opened_port,omitempty"`
	FramesSent  uint64     `json:"frames_sent"`
	Faults      uint64     `json:"faults"`
	LastError   string     `json:"last_error,omitempty"`
	LastFrameAt *time.Time `json:"last_frame_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StateListener is called after every state transition
type StateListener func(Status)

// Writer retransmits the current frame on the desired port until stopped
type Writer struct {
	frames     *FrameBuffer
	ports      *PortRegistry
	transport  Transport
	portConfig PortConfig
	timing     Timing
	logger     *zap.Logger
	listener   StateListener

	blackoutOnStop bool

	// serialises break, mark-after-break and data as one unit
	writeMu sync.Mutex

	statsMu     sync.Mutex
	state       State
	framesSent  uint64
	faults      uint64
	lastError   string
	lastFrameAt time.Time
	updatedAt   time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWriter creates a writer. Run must be called to start transmitting.
func NewWriter(frames *FrameBuffer, ports *PortRegistry, transport Transport, timing Timing, logger *zap.Logger, listener StateListener) *Writer {
	return &Writer{
		frames:     frames,
		ports:      ports,
		transport:  transport,
		portConfig: DMXPortConfig(),
		timing:     timing,
		logger:     logger.With(zap.String("component", "dmx-writer")),
		listener:   listener,
		state:      StateIdle,
		updatedAt:  time.Now(),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run loops until Stop is called or ctx is cancelled. Transport faults never end the loop.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)
	defer w.finish()

	w.logger.Info("DMX writer started", zap.Duration("cycle", w.timing.Cycle))

	for {
		select {
		case <-w.stop:
			w.logger.Info("DMX writer stopping", zap.String("reason", "stop signal"))
			return
		case <-ctx.Done():
			w.logger.Info("DMX writer stopping", zap.String("reason", ctx.Err().Error()))
			return
		default:
		}

		w.sleep(ctx, w.safeCycle())
	}
}

// Stop signals the loop to exit on its next poll. Safe to call more than once.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

// Done is closed once Run has returned
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Status returns the current writer status
func (w *Writer) Status() Status {
	w.statsMu.Lock()
	status := w.statusLocked()
	w.statsMu.Unlock()

	status.DesiredPort, _ = w.ports.Desired()
	status.OpenedPort, _ = w.ports.Opened()
	return status
}

func (w *Writer) statusLocked() Status {
	status := Status{
		State:      w.state,
		FramesSent: w.framesSent,
		Faults:     w.faults,
		LastError:  w.lastError,
		UpdatedAt:  w.updatedAt,
	}
	if !w.lastFrameAt.IsZero() {
		at := w.lastFrameAt
		status.LastFrameAt = &at
	}
	return status
}

// safeCycle runs one cycle, converting a panic into a transport fault
func (w *Writer) safeCycle() (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("DMX writer cycle panicked",
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			w.ports.ClearOpened()
			w.recordFault(fmt.Errorf("panic: %v", r))
			w.setState(StateFaultBackoff)
			delay = w.timing.OpenBackoff
		}
	}()

	return w.cycle()
}

// cycle performs one pass of the state machine and returns the delay before the next one
func (w *Writer) cycle() time.Duration {
	port, ok := w.ports.Desired()
	if !ok {
		w.setState(StateIdle)
		return w.timing.Cycle
	}

	logger := w.logger.With(zap.String("port", port))

	if w.ports.NeedsReopen(port) {
		w.setState(StateOpening)
		if err := w.open(port); err != nil {
			w.ports.ClearOpened()
			w.recordFault(err)
			w.setState(StateFaultBackoff)
			logger.Error("Failed to open DMX port",
				zap.Error(err),
				zap.Duration("retry_in", w.timing.OpenBackoff),
			)
			return w.timing.OpenBackoff
		}
		w.ports.MarkOpened(port)
		logger.Info("DMX port opened")
	}

	frame := w.frames.Snapshot()
	if err := w.transmit(port, frame); err != nil {
		w.ports.ClearOpened()
		if cerr := w.transport.Close(port); cerr != nil {
			logger.Debug("Closing faulted port failed", zap.Error(cerr))
		}
		w.recordFault(err)
		w.setState(StateFaultBackoff)
		logger.Error("Failed to transmit DMX frame", zap.Error(err))
		return w.timing.Cycle
	}

	w.recordFrame()
	w.setState(StateStreaming)
	if ce := logger.Check(zap.DebugLevel, "DMX frame sent"); ce != nil {
		ce.Write(zap.Int("bytes", len(frame)))
	}
	return w.timing.Cycle
}

// open opens port, releasing a previously opened different port first
func (w *Writer) open(port string) error {
	if prev, ok := w.ports.Opened(); ok && prev != port {
		w.ports.ClearOpened()
		if err := w.transport.Close(prev); err != nil {
			w.logger.Warn("Failed to close previous DMX port",
				zap.String("port", prev),
				zap.Error(err),
			)
		}
	}

	if err := w.transport.Open(port, w.portConfig); err != nil {
		return &TransportError{Op: "open", Port: port, Err: err}
	}
	return nil
}

// transmit sends break, mark-after-break and the frame
func (w *Writer) transmit(port string, frame []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	if err := w.transport.SetBreak(port); err != nil {
		return &TransportError{Op: "set_break", Port: port, Err: err}
	}
	time.Sleep(w.timing.Break)

	if err := w.transport.ClearBreak(port); err != nil {
		return &TransportError{Op: "clear_break", Port: port, Err: err}
	}
	time.Sleep(w.timing.MarkAfterBreak)

	if err := w.transport.Write(port, frame); err != nil {
		return &TransportError{Op: "write", Port: port, Err: err}
	}
	return nil
}

// finish releases the port and marks the writer stopped
func (w *Writer) finish() {
	if port, ok := w.ports.Opened(); ok {
		if w.blackoutOnStop {
			blank := make([]byte, FrameSize)
			if err := w.transmit(port, blank); err != nil {
				w.logger.Warn("Failed to send blackout frame", zap.String("port", port), zap.Error(err))
			}
		}
		if err := w.transport.Close(port); err != nil {
			w.logger.Warn("Failed to close DMX port", zap.String("port", port), zap.Error(err))
		}
		w.ports.ClearOpened()
	}

	w.setState(StateStopped)
	w.logger.Info("DMX writer stopped")
}

func (w *Writer) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-w.stop:
	case <-ctx.Done():
	}
}

func (w *Writer) setState(state State) {
	w.statsMu.Lock()
	if w.state == state {
		w.statsMu.Unlock()
		return
	}
	w.state = state
	w.updatedAt = time.Now()
	status := w.statusLocked()
	w.statsMu.Unlock()

	if w.listener != nil {
		status.DesiredPort, _ = w.ports.Desired()
		status.OpenedPort, _ = w.ports.Opened()
		w.listener(status)
	}
}

func (w *Writer) recordFault(err error) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.faults++
	w.lastError = err.Error()
}

func (w *Writer) recordFrame() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.framesSent++
	w.lastFrameAt = time.Now()
}
