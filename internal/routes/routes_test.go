package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dmx-service/internal/config"
	"dmx-service/internal/dmx"
	"dmx-service/internal/handler"
)

// stubTransport accepts every call
type stubTransport struct{}

func (stubTransport) Open(string, dmx.PortConfig) error { return nil }
func (stubTransport) Close(string) error                { return nil }
func (stubTransport) SetBreak(string) error             { return nil }
func (stubTransport) ClearBreak(string) error           { return nil }
func (stubTransport) Write(string, []byte) error        { return nil }
func (stubTransport) ListPorts() (map[string]dmx.PortMetadata, error) {
	return map[string]dmx.PortMetadata{"/dev/ttyUSB0": {Type: "USB", Manufacturer: "FTDI", Product: dmx.Unknown, SerialNumber: dmx.Unknown}}, nil
}

func newTestEngine(t *testing.T) (http.Handler, *dmx.Controller) {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Name: "dmx-service", Version: "test", Environment: "development"},
	}
	controller := dmx.NewController(stubTransport{}, zap.NewNop(), dmx.WithTiming(dmx.Timing{
		Cycle:          time.Millisecond,
		OpenBackoff:    time.Millisecond,
		Break:          time.Microsecond,
		MarkAfterBreak: time.Microsecond,
	}))
	bus := handler.NewEventBus(zap.NewNop())
	go bus.Start()

	router := NewRouter(cfg, zap.NewNop(), controller, bus)
	t.Cleanup(func() {
		router.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = controller.Shutdown(ctx)
		bus.Stop()
	})

	return router.SetupRouter(), controller
}

func request(engine http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRegistered(t *testing.T) {
	engine, _ := newTestEngine(t)

	for _, path := range []string{"/health", "/ready", "/live", "/api/v1/dmx/ports", "/api/v1/dmx/frame", "/api/v1/dmx/status"} {
		rec := request(engine, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}
}

func TestDocsRedirect(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec := request(engine, http.MethodGet, "/docs", "")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
}

func TestSetLevelsEndToEnd(t *testing.T) {
	engine, controller := newTestEngine(t)

	rec := request(engine, http.MethodPut, "/api/v1/dmx/levels", `{"port_path":"/dev/ttyUSB0","levels":[255,0,128]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	frame := controller.Frame()
	assert.Equal(t, []byte{0, 255, 0, 128, 0}, frame[:5])
	assert.True(t, controller.Running())

	require.Eventually(t, func() bool {
		return controller.Status().State == dmx.StateStreaming
	}, time.Second, time.Millisecond)

	rec = request(engine, http.MethodPost, "/api/v1/dmx/blackout", `{"port_path":"/dev/ttyUSB0"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, make([]byte, dmx.FrameSize), controller.Frame())
}

func TestSetLevelsAfterShutdownUnavailable(t *testing.T) {
	engine, controller := newTestEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, controller.Shutdown(ctx))

	rec := request(engine, http.MethodPut, "/api/v1/dmx/levels", `{"port_path":"/dev/ttyUSB0","levels":[1]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
