// internal/dmx/transport.go
package dmx

import "time"

// Unknown is the value a transport reports for metadata it could not determine
const Unknown = "Unknown"

// Transport is the serial capability the writer drives. Implementations are
// addressed by port path and must be safe for concurrent use.
type Transport interface {
	Open(path string, cfg PortConfig) error
	Close(path string) error
	SetBreak(path string) error
	ClearBreak(path string) error
	Write(path string, data []byte) error
	ListPorts() (map[string]PortMetadata, error)
}

// PortConfig represents serial line settings
type PortConfig struct {
	BaudRate    int           `json:"baud_rate"`
	DataBits    int           `json:"data_bits"`
	StopBits    int           `json:"stop_bits"`
	Parity      string        `json:"parity"`
	FlowControl string        `json:"flow_control"`
	Timeout     time.Duration `json:"timeout"`
}

// DMXPortConfig returns the fixed DMX512 line settings: 250 kbit/s, 8N2, no flow control
func DMXPortConfig() PortConfig {
	return PortConfig{
		BaudRate:    250000,
		DataBits:    8,
		StopBits:    2,
		Parity:      "none",
		FlowControl: "none",
		Timeout:     100 * time.Millisecond,
	}
}

// PortMetadata is what the transport knows about an enumerated port.
// Any field may hold Unknown.
type PortMetadata struct {
	Type         string
	Manufacturer string
	Product      string
	SerialNumber string
}

// PortInfo is an enumerated port as presented to callers
type PortInfo struct {
	Path         string `json:"path"`
	Kind         string `json:"kind,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

func newPortInfo(path string, meta PortMetadata) PortInfo {
	return PortInfo{
		Path:         path,
		Kind:         known(meta.Type),
		Manufacturer: known(meta.Manufacturer),
		Product:      known(meta.Product),
		SerialNumber: known(meta.SerialNumber),
	}
}

func known(v string) string {
	if v == Unknown {
		return ""
	}
	return v
}
