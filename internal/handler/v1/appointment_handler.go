package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/service"
)

type AppointmentHandler struct {
	appointments *service.AppointmentService
}

func NewAppointmentHandler(appointments *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/appointments")
	g.POST("", h.Schedule)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Cancel)
}

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	var cmd appointment.ScheduleAppointmentCommand
	if !bindJSON(c, &cmd) {
		return
	}

	a, err := h.appointments.ScheduleAppointment(c.Request.Context(), &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

// List filters by ?doctor_id=, ?patient_id=, ?date= and ?q=, with ?by_id=true
// treating q as an appointment identifier.
func (h *AppointmentHandler) List(c *gin.Context) {
	doctorID, ok := parseQueryID(c, "doctor_id")
	if !ok {
		return
	}
	patientID, ok := parseQueryID(c, "patient_id")
	if !ok {
		return
	}

	q := &appointment.ListAppointmentsQuery{
		DoctorID:  doctorID,
		PatientID: patientID,
		Search:    strings.TrimSpace(c.Query("q")),
		ByID:      parseQueryBool(c, "by_id"),
	}
	if raw := c.Query("date"); raw != "" {
		day, err := calendar.ParseDate(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		q.Date = &day
	}

	appts, err := h.appointments.ListAppointments(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.appointments.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	cancelled, err := h.appointments.CancelAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !cancelled {
		respondServiceError(c, appointment.ErrAppointmentNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
