package patient

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
)

type Patient struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	Name      string        `gorm:"column:name;type:varchar(200);not null;index" json:"name"`
	Age       int           `gorm:"column:age;not null" json:"age"`
	Gender    domain.Gender `gorm:"column:gender;type:varchar(10);not null" json:"gender"`
	Diagnosis string        `gorm:"column:diagnosis;type:text" json:"diagnosis"`

	AdmissionDate calendar.Date `gorm:"column:admission_date;type:varchar(10);not null" json:"admission_date"`
}

func (Patient) TableName() string {
	return "patients"
}

// Apply copies the fields of an update command onto the patient.
func (p *Patient) Apply(cmd *UpdatePatientCommand) {
	p.Name = cmd.Name
	p.Age = cmd.Age
	p.Gender = cmd.Gender
	p.Diagnosis = cmd.Diagnosis
}

type CreatePatientCommand struct {
	Name      string        `json:"name" validate:"required,max=200"`
	Age       int           `json:"age" validate:"gt=0"`
	Gender    domain.Gender `json:"gender" validate:"oneof=Male Female Other"`
	Diagnosis string        `json:"diagnosis"`
	// AdmissionDate defaults to the day of creation when empty.
	AdmissionDate string `json:"admission_date"`
}

type UpdatePatientCommand struct {
	Name      string        `json:"name" validate:"required,max=200"`
	Age       int           `json:"age" validate:"gt=0"`
	Gender    domain.Gender `json:"gender" validate:"oneof=Male Female Other"`
	Diagnosis string        `json:"diagnosis"`
}

// ListPatientsQuery matches on name or diagnosis, or on the identifier when
// ByID is set.
type ListPatientsQuery struct {
	Search string
	ByID   bool
}
