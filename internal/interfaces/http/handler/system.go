package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/farmeet/backend/internal/infrastructure/scheduler"
	"github.com/farmeet/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	sweeper   *scheduler.ReservationSweeper
}

// NewSystemHandler creates a new SystemHandler. The sweeper may be nil when
// the background sweep is disabled.
func NewSystemHandler(sweeper *scheduler.ReservationSweeper) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		sweeper:   sweeper,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           healthCheck
// @Summary      Health check
// @Description  Returns service health, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	info := HealthResponse{
		Status:    "ok",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// SweeperStatus godoc
// @ID           getSweeperStatus
// @Summary      Get reservation sweeper status
// @Description  Reports whether the background reservation sweep is enabled and running
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SweeperStatusData]
// @Security     BearerAuth
// @Router       /system/sweeper [get]
func (h *SystemHandler) SweeperStatus(c *gin.Context) {
	status := SweeperStatusData{}
	if h.sweeper != nil {
		status.Enabled = true
		status.Running = h.sweeper.IsRunning()
	}

	h.Success(c, status)
}

// TriggerSweep godoc
// @ID           triggerSweep
// @Summary      Trigger an immediate sweep
// @Description  Runs the reservation sweep now instead of waiting for the next tick
// @Tags         system
// @Produce      json
// @Success      202 {object} APIResponse[SweeperStatusData]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /system/sweeper/trigger [post]
func (h *SystemHandler) TriggerSweep(c *gin.Context) {
	if h.sweeper == nil {
		h.Conflict(c, "Reservation sweeper is not enabled")
		return
	}

	if err := h.sweeper.TriggerImmediateSweep(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(SweeperStatusData{
		Enabled: true,
		Running: h.sweeper.IsRunning(),
	}))
}
