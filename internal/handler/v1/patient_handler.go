package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/service"
)

type PatientHandler struct {
	patients     *service.PatientService
	appointments *service.AppointmentService
	receipts     *service.ReceiptService
}

func NewPatientHandler(patients *service.PatientService, appointments *service.AppointmentService, receipts *service.ReceiptService) *PatientHandler {
	return &PatientHandler{patients: patients, appointments: appointments, receipts: receipts}
}

func (h *PatientHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/patients")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/appointments", h.Appointments)
	g.GET("/:id/receipt", h.Receipt)
}

func (h *PatientHandler) Create(c *gin.Context) {
	var cmd patient.CreatePatientCommand
	if !bindJSON(c, &cmd) {
		return
	}

	p, err := h.patients.CreatePatient(c.Request.Context(), &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, p)
}

// List accepts ?q= for a name or diagnosis substring and ?by_id=true to treat
// q as an identifier.
func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.patients.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{
		Search: strings.TrimSpace(c.Query("q")),
		ByID:   parseQueryBool(c, "by_id"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.patients.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd patient.UpdatePatientCommand
	if !bindJSON(c, &cmd) {
		return
	}

	p, err := h.patients.UpdatePatient(c.Request.Context(), id, &cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.patients.DeletePatient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !deleted {
		respondServiceError(c, patient.ErrPatientNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) Appointments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	appts, err := h.appointments.PatientAppointments(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

// Receipt downloads the patient's receipt as a text attachment.
func (h *PatientHandler) Receipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	text, err := h.receipts.PatientReceipt(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+service.ReceiptFilename(id)+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
