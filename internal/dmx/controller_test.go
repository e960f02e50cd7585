package dmx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestController(t *testing.T, ft *fakeTransport, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithTiming(testTiming())}, opts...)
	c := NewController(ft, zaptest.NewLogger(t), opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c
}

func TestControllerListPortsSortedAndFiltered(t *testing.T) {
	ft := newFakeTransport()
	ft.ports["/dev/ttyUSB1"] = PortMetadata{Type: "USB", Manufacturer: "FTDI", Product: Unknown, SerialNumber: "A10K"}
	ft.ports["/dev/ttyS0"] = PortMetadata{Type: Unknown, Manufacturer: Unknown, Product: Unknown, SerialNumber: Unknown}
	ft.ports["/dev/ttyACM0"] = PortMetadata{Type: "USB", Manufacturer: Unknown, Product: "DMXking ultraDMX Micro", SerialNumber: Unknown}
	c := newTestController(t, ft)

	ports, err := c.ListPorts()
	require.NoError(t, err)

	assert.Equal(t, []PortInfo{
		{Path: "/dev/ttyACM0", Kind: "USB", Product: "DMXking ultraDMX Micro"},
		{Path: "/dev/ttyS0"},
		{Path: "/dev/ttyUSB1", Kind: "USB", Manufacturer: "FTDI", SerialNumber: "A10K"},
	}, ports)

	for _, p := range ports {
		for _, v := range []string{p.Kind, p.Manufacturer, p.Product, p.SerialNumber} {
			assert.NotEqual(t, Unknown, v)
		}
	}
}

func TestControllerListPortsError(t *testing.T) {
	ft := newFakeTransport()
	ft.listErr = errBoom
	c := newTestController(t, ft)

	_, err := c.ListPorts()

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "list_ports", terr.Op)
	assert.ErrorIs(t, err, errBoom)
}

func TestControllerSetLevelsScenario(t *testing.T) {
	ft := newFakeTransport()
	ft.ports["COM3"] = PortMetadata{Type: "USB", Manufacturer: Unknown, Product: Unknown, SerialNumber: Unknown}
	c := newTestController(t, ft)

	before, err := c.ListPorts()
	require.NoError(t, err)

	require.NoError(t, c.SetLevels("COM3", []byte{255, 0, 128}))

	frame := c.Frame()
	require.Len(t, frame, FrameSize)
	assert.Equal(t, expectedFrame(255, 0, 128), frame)

	after, err := c.ListPorts()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(expectedFrame(255, 0, 128), ft.lastWritten())
	}, time.Second, time.Millisecond)
}

func TestControllerSetLevelsRejectsTooMany(t *testing.T) {
	ft := newFakeTransport()
	c := newTestController(t, ft)
	require.NoError(t, c.SetLevels("COM3", []byte{1, 2, 3}))

	err := c.SetLevels("COM9", make([]byte, MaxChannels+1))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, expectedFrame(1, 2, 3), c.Frame())
	assert.Equal(t, "COM3", c.Status().DesiredPort)
}

func TestControllerSetLevelsRequiresPort(t *testing.T) {
	c := newTestController(t, newFakeTransport())

	err := c.SetLevels("", []byte{1})

	assert.ErrorIs(t, err, ErrPortRequired)
	assert.False(t, c.Running())
}

func TestControllerStartsSingleWriter(t *testing.T) {
	ft := newFakeTransport()
	c := newTestController(t, ft)

	require.NoError(t, c.SetLevels("COM3", []byte{1}))
	first := c.writer
	require.NoError(t, c.SetLevels("COM3", []byte{2}))

	assert.Same(t, first, c.writer)
	assert.True(t, c.Running())
	assert.Equal(t, expectedFrame(2), c.Frame())
}

func TestControllerRapidUpdatesTransmitLatest(t *testing.T) {
	ft := newFakeTransport()
	c := newTestController(t, ft)

	require.NoError(t, c.SetLevels("COM3", []byte{10, 10, 10}))
	require.NoError(t, c.SetLevels("COM3", []byte{99}))

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(expectedFrame(99), ft.lastWritten())
	}, time.Second, time.Millisecond)
}

func TestControllerRecoversAfterWriteFailure(t *testing.T) {
	ft := newFakeTransport()
	ft.writeErrs = []error{errBoom}
	c := newTestController(t, ft)

	require.NoError(t, c.SetLevels("COM3", []byte{7}))

	require.Eventually(t, func() bool { return ft.writeCount() > 0 }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, ft.openCount(), 2)
	assert.Equal(t, uint64(1), c.Status().Faults)
}

func TestControllerBlackout(t *testing.T) {
	c := newTestController(t, newFakeTransport())
	require.NoError(t, c.SetLevels("COM3", []byte{255, 255}))

	require.NoError(t, c.Blackout("COM3"))

	assert.Equal(t, make([]byte, FrameSize), c.Frame())
}

func TestControllerShutdown(t *testing.T) {
	ft := newFakeTransport()
	rec := &recorder{}
	c := newTestController(t, ft)
	c.Subscribe(rec.listen)

	require.NoError(t, c.SetLevels("COM3", []byte{5}))
	require.Eventually(t, func() bool { return ft.writeCount() > 0 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	assert.False(t, ft.isOpen("COM3"))
	assert.Equal(t, StateStopped, c.Status().State)
	assert.Contains(t, rec.seen(), StateStopped)
	assert.ErrorIs(t, c.SetLevels("COM3", []byte{1}), ErrControllerClosed)
}

func TestControllerStatusBeforeStart(t *testing.T) {
	c := newTestController(t, newFakeTransport())

	status := c.Status()

	assert.Equal(t, StateIdle, status.State)
	assert.False(t, c.Running())
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestControllerStatusStoppedWithoutWriter(t *testing.T) {
	c := newTestController(t, newFakeTransport())

	require.NoError(t, c.Shutdown(context.Background()))

	assert.Equal(t, StateStopped, c.Status().State)
	assert.ErrorIs(t, c.Blackout("COM3"), ErrControllerClosed)
}
