package dmx

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var errBoom = errors.New("device unplugged")

// fakeTransport records every call and fails according to scripted error queues
type fakeTransport struct {
	mu sync.Mutex

	ports   map[string]PortMetadata
	listErr error

	openErrs       []error
	setBreakErrs   []error
	clearBreakErrs []error
	writeErrs      []error
	panicOnWrite   bool

	open    map[string]PortConfig
	opens   []string
	closes  []string
	ops     []string
	written [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		ports: make(map[string]PortMetadata),
		open:  make(map[string]PortConfig),
	}
}

func pop(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func (f *fakeTransport) Open(path string, cfg PortConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens = append(f.opens, path)
	if err := pop(&f.openErrs); err != nil {
		return err
	}
	f.open[path] = cfg
	return nil
}

func (f *fakeTransport) Close(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes = append(f.closes, path)
	delete(f.open, path)
	return nil
}

func (f *fakeTransport) SetBreak(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "set_break:"+path)
	if err := pop(&f.setBreakErrs); err != nil {
		return err
	}
	return f.checkOpen(path)
}

func (f *fakeTransport) ClearBreak(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "clear_break:"+path)
	if err := pop(&f.clearBreakErrs); err != nil {
		return err
	}
	return f.checkOpen(path)
}

func (f *fakeTransport) Write(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnWrite {
		f.panicOnWrite = false
		panic("driver exploded")
	}
	f.ops = append(f.ops, "write:"+path)
	if err := pop(&f.writeErrs); err != nil {
		return err
	}
	if err := f.checkOpen(path); err != nil {
		return err
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	f.written = append(f.written, frame)
	return nil
}

func (f *fakeTransport) ListPorts() (map[string]PortMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make(map[string]PortMetadata, len(f.ports))
	for k, v := range f.ports {
		out[k] = v
	}
	return out, nil
}

func (f *fakeTransport) checkOpen(path string) error {
	if _, ok := f.open[path]; !ok {
		return fmt.Errorf("port %s not open", path)
	}
	return nil
}

func (f *fakeTransport) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opens)
}

func (f *fakeTransport) isOpen(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.open[path]
	return ok
}

func (f *fakeTransport) lastWritten() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		return nil
	}
	return f.written[len(f.written)-1]
}

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func (f *fakeTransport) opsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func testTiming() Timing {
	return Timing{
		Cycle:          time.Millisecond,
		OpenBackoff:    2 * time.Millisecond,
		Break:          time.Microsecond,
		MarkAfterBreak: time.Microsecond,
	}
}

func expectedFrame(levels ...byte) []byte {
	frame := make([]byte, FrameSize)
	copy(frame[1:], levels)
	return frame
}
