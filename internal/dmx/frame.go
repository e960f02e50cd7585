// internal/dmx/frame.go
package dmx

import "sync"

const (
	// StartCode is the null start code sent in slot 0 of every frame
	StartCode byte = 0x00

	// MaxChannels is the number of level slots in one universe
	MaxChannels = 512

	// FrameSize is start code plus all channel slots
	FrameSize = MaxChannels + 1
)

// FrameBuffer holds the frame the writer transmits
type FrameBuffer struct {
	mu    sync.Mutex
	frame [FrameSize]byte
}

// NewFrameBuffer returns a buffer with every channel at zero
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Update replaces the whole frame. Channels beyond len(levels) are reset to 0.
func (b *FrameBuffer) Update(levels []byte) error {
	if len(levels) > MaxChannels {
		return &ValidationError{Count: len(levels), Err: ErrOutOfRange}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.frame = [FrameSize]byte{}
	b.frame[0] = StartCode
	copy(b.frame[1:], levels)
	return nil
}

// Snapshot returns an independent copy of the current frame
func (b *FrameBuffer) Snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]byte, FrameSize)
	copy(out, b.frame[:])
	return out
}
