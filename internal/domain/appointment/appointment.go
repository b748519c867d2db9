package appointment

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
)

// Appointment books a doctor for a patient over [StartTime, EndTime) on Date.
// PatientID and DoctorID are weak references; the rows they point to may
// have been deleted.
type Appointment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	PatientID int64 `gorm:"column:patient_id;not null;index" json:"patient_id"`
	DoctorID  int64 `gorm:"column:doctor_id;not null;index:idx_appointments_doctor_date,priority:1" json:"doctor_id"`

	Date      calendar.Date  `gorm:"column:appointment_date;type:varchar(10);not null;index:idx_appointments_doctor_date,priority:2" json:"date"`
	StartTime calendar.Clock `gorm:"column:start_time;type:varchar(5);not null" json:"start_time"`
	EndTime   calendar.Clock `gorm:"column:end_time;type:varchar(5);not null" json:"end_time"`

	Notes string `gorm:"column:notes;type:text" json:"notes"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) Interval() calendar.Interval {
	return calendar.NewInterval(a.StartTime, a.EndTime)
}

// Listing is an appointment joined with the names shown alongside it.
// The joined fields are empty when the referenced row no longer exists.
type Listing struct {
	Appointment

	PatientName          string `gorm:"column:patient_name" json:"patient_name"`
	DoctorName           string `gorm:"column:doctor_name" json:"doctor_name"`
	DoctorSpecialization string `gorm:"column:doctor_specialization" json:"doctor_specialization"`
}

// ScheduleAppointmentCommand carries a booking request in wire format.
type ScheduleAppointmentCommand struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Notes     string `json:"notes"`
}

// ListAppointmentsQuery filters listings. Zero values mean "no filter".
type ListAppointmentsQuery struct {
	PatientID int64
	DoctorID  int64
	Date      *calendar.Date

	// Search is a case-insensitive substring of patient name, doctor name or
	// notes. With ByID it is an appointment identifier instead.
	Search string
	ByID   bool
}
