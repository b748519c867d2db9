package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/patient"
)

const receiptRule = "--------------------------"

// ReceiptService renders printable patient receipts.
type ReceiptService struct {
	patients     patient.Repository
	appointments appointment.Repository
}

func NewReceiptService(patients patient.Repository, appointments appointment.Repository) *ReceiptService {
	return &ReceiptService{patients: patients, appointments: appointments}
}

// ReceiptFilename is the attachment name a receipt for patientID is served as.
func ReceiptFilename(patientID int64) string {
	return fmt.Sprintf("patient_%d_receipt.txt", patientID)
}

// PatientReceipt lists the patient's details followed by every appointment in
// date order.
func (s *ReceiptService) PatientReceipt(ctx context.Context, patientID int64) (string, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return "", err
	}
	appts, err := s.appointments.List(ctx, &appointment.ListAppointmentsQuery{PatientID: patientID})
	if err != nil {
		return "", fmt.Errorf("loading patient appointments: %w", err)
	}

	var b strings.Builder
	fmt.Fprintln(&b, "CLINIC APPOINTMENT SYSTEM")
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintln(&b, "PATIENT RECEIPT")
	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintf(&b, "Patient ID: %d\n", p.ID)
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Age: %d\n", p.Age)
	fmt.Fprintf(&b, "Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "Admission Date: %s\n", p.AdmissionDate)
	fmt.Fprintf(&b, "Diagnosis: %s\n", p.Diagnosis)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "APPOINTMENTS:")

	if len(appts) == 0 {
		fmt.Fprintln(&b, "  (none)")
	}
	for _, a := range appts {
		doctorName := a.DoctorName
		if doctorName == "" {
			doctorName = fmt.Sprintf("#%d (removed)", a.DoctorID)
		}
		fmt.Fprintf(&b, "  - Appointment with Dr. %s", doctorName)
		if a.DoctorSpecialization != "" {
			fmt.Fprintf(&b, " (%s)", a.DoctorSpecialization)
		}
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "    Date: %s\n", a.Date)
		fmt.Fprintf(&b, "    Time: %s - %s\n", a.StartTime, a.EndTime)
		fmt.Fprintf(&b, "    Notes: %s\n", a.Notes)
	}

	fmt.Fprintln(&b, receiptRule)
	fmt.Fprintln(&b, "Thank you for choosing our clinic!")

	return b.String(), nil
}
