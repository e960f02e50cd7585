// internal/protocol/serial/transport.go
package serial

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"dmx-service/internal/dmx"
)

// Transport implements dmx.Transport on top of go.bug.st/serial.
// Open ports are kept by path so the writer can address them by name.
type Transport struct {
	ports         map[string]serial.Port
	mutex         sync.Mutex
	breakDuration time.Duration
	vendors       *VendorDatabase
	logger        *zap.Logger

	// replaced in tests
	openPort  func(name string, mode *serial.Mode) (serial.Port, error)
	listPorts func() ([]*enumerator.PortDetails, error)
}

// NewTransport creates a transport. breakDuration is how long SetBreak holds the line low.
func NewTransport(breakDuration time.Duration, logger *zap.Logger) *Transport {
	return &Transport{
		ports:         make(map[string]serial.Port),
		breakDuration: breakDuration,
		vendors:       NewVendorDatabase(),
		logger:        logger.With(zap.String("protocol", "serial")),
		openPort:      serial.Open,
		listPorts:     enumerator.GetDetailedPortsList,
	}
}

// Open opens path with cfg, replacing any handle already held for it
func (t *Transport) Open(path string, cfg dmx.PortConfig) error {
	mode, err := toMode(cfg)
	if err != nil {
		return err
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if stale, ok := t.ports[path]; ok {
		delete(t.ports, path)
		if err := stale.Close(); err != nil {
			t.logger.Debug("Closing stale serial handle failed", zap.String("port", path), zap.Error(err))
		}
	}

	t.logger.Info("Opening serial port",
		zap.String("port", path),
		zap.Int("baud_rate", cfg.BaudRate),
		zap.Int("stop_bits", cfg.StopBits),
	)

	port, err := t.openPort(path, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(cfg.Timeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	t.ports[path] = port
	return nil
}

// Close closes path. Closing a port that is not open is a no-op.
func (t *Transport) Close(path string) error {
	t.mutex.Lock()
	port, ok := t.ports[path]
	delete(t.ports, path)
	t.mutex.Unlock()

	if !ok {
		return nil
	}

	if err := port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	t.logger.Info("Serial port closed", zap.String("port", path))
	return nil
}

// SetBreak asserts a line break. go.bug.st/serial only offers a timed break,
// so the call returns once the break has been held and released.
func (t *Transport) SetBreak(path string) error {
	port, err := t.get(path)
	if err != nil {
		return err
	}

	if err := port.Break(t.breakDuration); err != nil {
		return fmt.Errorf("failed to send break: %w", err)
	}
	return nil
}

// ClearBreak ends the break started by SetBreak. The line is already released,
// so this only confirms the port is still held.
func (t *Transport) ClearBreak(path string) error {
	_, err := t.get(path)
	return err
}

// Write sends data and waits until it has left the UART so the next break
// cannot cut the frame short.
func (t *Transport) Write(path string, data []byte) error {
	port, err := t.get(path)
	if err != nil {
		return err
	}

	n, err := port.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	if err := port.Drain(); err != nil {
		return fmt.Errorf("failed to drain serial port: %w", err)
	}
	return nil
}

// ListPorts enumerates serial ports with whatever metadata the OS reports
func (t *Transport) ListPorts() (map[string]dmx.PortMetadata, error) {
	details, err := t.listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	ports := make(map[string]dmx.PortMetadata, len(details))
	for _, d := range details {
		ports[d.Name] = t.describe(d)
	}

	t.logger.Debug("Serial ports enumerated", zap.Int("count", len(ports)))
	return ports, nil
}

// CloseAll closes every port still held
func (t *Transport) CloseAll() {
	t.mutex.Lock()
	ports := t.ports
	t.ports = make(map[string]serial.Port)
	t.mutex.Unlock()

	for path, port := range ports {
		if err := port.Close(); err != nil {
			t.logger.Warn("Failed to close serial port", zap.String("port", path), zap.Error(err))
		}
	}
}

func (t *Transport) get(path string) (serial.Port, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	port, ok := t.ports[path]
	if !ok {
		return nil, fmt.Errorf("serial port %s not open", path)
	}
	return port, nil
}

func (t *Transport) describe(d *enumerator.PortDetails) dmx.PortMetadata {
	meta := dmx.PortMetadata{
		Type:         dmx.Unknown,
		Manufacturer: dmx.Unknown,
		Product:      dmx.Unknown,
		SerialNumber: dmx.Unknown,
	}

	if d.SerialNumber != "" {
		meta.SerialNumber = d.SerialNumber
	}
	if d.Product != "" {
		meta.Product = d.Product
	}
	if !d.IsUSB {
		return meta
	}

	meta.Type = "USB"
	if vendor := t.vendors.GetVendorInfo(d.VID); vendor != nil {
		meta.Manufacturer = vendor.Name
		if product := vendor.GetProductInfo(d.PID); product != nil && d.Product == "" {
			meta.Product = product.Name
		}
	}
	return meta
}

// toMode converts line settings to a go.bug.st/serial mode
func toMode(cfg dmx.PortConfig) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
	}

	switch cfg.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits: %d", cfg.StopBits)
	}

	switch strings.ToLower(cfg.Parity) {
	case "", "none":
		mode.Parity = serial.NoParity
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("unsupported parity: %s", cfg.Parity)
	}

	// go.bug.st/serial never enables hardware flow control
	switch strings.ToLower(cfg.FlowControl) {
	case "", "none":
	default:
		return nil, fmt.Errorf("unsupported flow control: %s", cfg.FlowControl)
	}

	return mode, nil
}
