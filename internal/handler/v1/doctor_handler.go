package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/doctor"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/service"
)

type DoctorHandler struct {
	doctors      *service.DoctorService
	availability *service.AvailabilityService
}

func NewDoctorHandler(doctors *service.DoctorService, availability *service.AvailabilityService) *DoctorHandler {
	return &DoctorHandler{doctors: doctors, availability: availability}
}

func (h *DoctorHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/doctors")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/slots", h.Slots)
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var cmd doctor.CreateDoctorCommand
	if !bindJSON(c, &cmd) {
		return
	}

	d, err := h.doctors.CreateDoctor(c.Request.Context(), &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, d)
}

func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.doctors.ListDoctors(c.Request.Context(), &doctor.ListDoctorsQuery{
		Search: strings.TrimSpace(c.Query("q")),
		ByID:   parseQueryBool(c, "by_id"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	d, err := h.doctors.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd doctor.UpdateDoctorCommand
	if !bindJSON(c, &cmd) {
		return
	}

	d, err := h.doctors.UpdateDoctor(c.Request.Context(), id, &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.doctors.DeleteDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !deleted {
		respondServiceError(c, doctor.ErrDoctorNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

type slotsResponse struct {
	DoctorID int64               `json:"doctor_id"`
	Date     string              `json:"date"`
	Duration int                 `json:"duration"`
	Slots    []calendar.Interval `json:"slots"`
}

// Slots lists the doctor's free slots on ?date=. A missing or zero ?duration=
// uses the clinic's default slot length.
func (h *DoctorHandler) Slots(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid duration: must be an integer number of minutes")
			return
		}
		duration = v
	}
	if duration == 0 {
		duration = h.availability.DefaultSlotMinutes()
	}

	date := c.Query("date")
	slots, err := h.availability.FreeSlots(c.Request.Context(), id, date, duration)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, slotsResponse{DoctorID: id, Date: date, Duration: duration, Slots: slots})
}
