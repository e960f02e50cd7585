// internal/handler/dmx_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dmx-service/internal/dmx"
	"dmx-service/internal/utils"
)

// DMXController is the control surface the handler drives
type DMXController interface {
	ListPorts() ([]dmx.PortInfo, error)
	SetLevels(port string, levels []byte) error
	Blackout(port string) error
	Frame() []byte
	Status() dmx.Status
}

// DMXHandler handles DMX output requests
type DMXHandler struct {
	controller DMXController
	logger     *utils.ServiceLogger
}

// NewDMXHandler creates a new DMX handler
func NewDMXHandler(controller DMXController, logger *zap.Logger) *DMXHandler {
	return &DMXHandler{
		controller: controller,
		logger:     utils.NewServiceLogger(logger, "dmx-handler"),
	}
}

// SetLevelsRequest represents a level update for one port
type SetLevelsRequest struct {
	PortPath string `json:"port_path" binding:"required" example:"/dev/ttyUSB0"`
	Levels   []int  `json:"levels" binding:"dive,min=0,max=255" example:"255,0,128"`
}

// BlackoutRequest represents a blackout request
type BlackoutRequest struct {
	PortPath string `json:"port_path" binding:"required" example:"/dev/ttyUSB0"`
}

// FrameResponse is the frame the writer transmits next
type FrameResponse struct {
	StartCode int   `json:"start_code"`
	Channels  []int `json:"channels"`
}

// ListPorts lists serial ports available for DMX output
// @Summary List serial ports
// @Description Enumerate serial ports; metadata the OS cannot determine is omitted
// @Tags DMX
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]dmx.PortInfo} "Ports listed"
// @Failure 502 {object} utils.APIResponse "Enumeration failed"
// @Router /dmx/ports [get]
func (h *DMXHandler) ListPorts(c *gin.Context) {
	ports, err := h.controller.ListPorts()
	if err != nil {
		h.logger.Error("Failed to list serial ports", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadGateway, "Failed to list serial ports", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Serial ports listed", ports)
}

// SetLevels replaces the DMX frame and selects the output port
// @Summary Set channel levels
// @Description Replace the frame with up to 512 levels starting at channel 1; remaining channels are set to 0
// @Tags DMX
// @Accept json
// @Produce json
// @Param request body SetLevelsRequest true "Port and levels"
// @Success 200 {object} utils.APIResponse "Levels applied"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Controller shut down"
// @Router /dmx/levels [put]
func (h *DMXHandler) SetLevels(c *gin.Context) {
	var req SetLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	levels := make([]byte, len(req.Levels))
	for i, v := range req.Levels {
		levels[i] = byte(v)
	}

	if err := h.controller.SetLevels(req.PortPath, levels); err != nil {
		h.respondError(c, "Failed to set levels", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Levels applied", gin.H{
		"port_path": req.PortPath,
		"channels":  len(levels),
	})
}

// Blackout sets every channel to zero
// @Summary Blackout
// @Description Set all 512 channels to 0 on the given port
// @Tags DMX
// @Accept json
// @Produce json
// @Param request body BlackoutRequest true "Port"
// @Success 200 {object} utils.APIResponse "Blackout applied"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 503 {object} utils.APIResponse "Controller shut down"
// @Router /dmx/blackout [post]
func (h *DMXHandler) Blackout(c *gin.Context) {
	var req BlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	if err := h.controller.Blackout(req.PortPath); err != nil {
		h.respondError(c, "Failed to apply blackout", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Blackout applied", gin.H{"port_path": req.PortPath})
}

// GetFrame returns the current frame
// @Summary Current frame
// @Tags DMX
// @Produce json
// @Success 200 {object} utils.APIResponse{data=FrameResponse} "Frame retrieved"
// @Router /dmx/frame [get]
func (h *DMXHandler) GetFrame(c *gin.Context) {
	frame := h.controller.Frame()

	channels := make([]int, len(frame)-1)
	for i, v := range frame[1:] {
		channels[i] = int(v)
	}

	utils.SuccessResponse(c, http.StatusOK, "Frame retrieved", FrameResponse{
		StartCode: int(frame[0]),
		Channels:  channels,
	})
}

// GetStatus returns the writer status
// @Summary Writer status
// @Tags DMX
// @Produce json
// @Success 200 {object} utils.APIResponse{data=dmx.Status} "Status retrieved"
// @Router /dmx/status [get]
func (h *DMXHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Status retrieved", h.controller.Status())
}

func (h *DMXHandler) respondError(c *gin.Context, message string, err error) {
	var verr *dmx.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ValidationErrorResponse(c, err)
	case errors.Is(err, dmx.ErrControllerClosed):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, message, err)
	default:
		h.logger.Error(message, zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
