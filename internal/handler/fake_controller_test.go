package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"dmx-service/internal/dmx"
	"dmx-service/internal/utils"
)

type fakeController struct {
	mu sync.Mutex

	ports   []dmx.PortInfo
	listErr error
	setErr  error
	status  dmx.Status

	port   string
	levels []byte
	frame  []byte
}

func newFakeController() *fakeController {
	return &fakeController{frame: make([]byte, dmx.FrameSize)}
}

func (f *fakeController) ListPorts() ([]dmx.PortInfo, error) {
	return f.ports, f.listErr
}

func (f *fakeController) SetLevels(port string, levels []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}
	if port == "" {
		return &dmx.ValidationError{Err: dmx.ErrPortRequired}
	}
	if len(levels) > dmx.MaxChannels {
		return &dmx.ValidationError{Count: len(levels), Err: dmx.ErrOutOfRange}
	}

	f.port = port
	f.levels = levels
	f.frame = make([]byte, dmx.FrameSize)
	copy(f.frame[1:], levels)
	return nil
}

func (f *fakeController) Blackout(port string) error {
	return f.SetLevels(port, nil)
}

func (f *fakeController) Frame() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.frame...)
}

func (f *fakeController) Status() dmx.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeController) setStatus(status dmx.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
