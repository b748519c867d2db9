package doctor

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
)

type Doctor struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	Name           string        `gorm:"column:name;type:varchar(200);not null;index" json:"name"`
	Specialization string        `gorm:"column:specialization;type:varchar(200);not null" json:"specialization"`
	Experience     int           `gorm:"column:experience;not null;default:0" json:"experience"`
	Gender         domain.Gender `gorm:"column:gender;type:varchar(10);not null" json:"gender"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d *Doctor) Apply(cmd *UpdateDoctorCommand) {
	d.Name = cmd.Name
	d.Specialization = cmd.Specialization
	d.Experience = cmd.Experience
	d.Gender = cmd.Gender
}

type CreateDoctorCommand struct {
	Name           string        `json:"name" validate:"required,max=200"`
	Specialization string        `json:"specialization" validate:"required,max=200"`
	Experience     int           `json:"experience" validate:"gte=0"`
	Gender         domain.Gender `json:"gender" validate:"oneof=Male Female Other"`
}

type UpdateDoctorCommand struct {
	Name           string        `json:"name" validate:"required,max=200"`
	Specialization string        `json:"specialization" validate:"required,max=200"`
	Experience     int           `json:"experience" validate:"gte=0"`
	Gender         domain.Gender `json:"gender" validate:"oneof=Male Female Other"`
}

// ListDoctorsQuery matches on name or specialization, or on the identifier
// when ByID is set.
type ListDoctorsQuery struct {
	Search string
	ByID   bool
}
