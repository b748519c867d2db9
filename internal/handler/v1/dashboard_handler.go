package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/service"
)

type DashboardHandler struct {
	activity *service.ActivityService
}

func NewDashboardHandler(activity *service.ActivityService) *DashboardHandler {
	return &DashboardHandler{activity: activity}
}

func (h *DashboardHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/activity", h.Activity)
}

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	d, err := h.activity.Dashboard(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

// Activity returns the newest entries first; ?limit= defaults to the
// configured feed length.
func (h *DashboardHandler) Activity(c *gin.Context) {
	entries, err := h.activity.Recent(c.Request.Context(), parseQueryInt(c, "limit", 0))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entries)
}
