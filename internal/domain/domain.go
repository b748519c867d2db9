package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrStore marks a failure of the underlying persistence layer. It is fatal to
// the current operation and never retried by the core.
var ErrStore = errors.New("store failure")

// StoreError wraps a persistence failure so callers can match ErrStore.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// DeletePolicy decides what happens to appointments when the patient or
// doctor they reference is deleted.
type DeletePolicy string

const (
	// DeleteRetain keeps the appointments; their references dangle.
	DeleteRetain DeletePolicy = "retain"
	// DeleteCascade removes the appointments in the same transaction.
	DeleteCascade DeletePolicy = "cascade"
)

func (p DeletePolicy) IsValid() bool {
	return p == DeleteRetain || p == DeleteCascade
}

type ActivityKind string

const (
	KindPatient     ActivityKind = "patient"
	KindDoctor      ActivityKind = "doctor"
	KindAppointment ActivityKind = "appointment"
)

type ActivityAction string

const (
	ActionCreate ActivityAction = "create"
	ActionUpdate ActivityAction = "update"
	ActionDelete ActivityAction = "delete"
	ActionCancel ActivityAction = "cancel"
)

// ActivityEntry is one line of the clinic's activity feed.
type ActivityEntry struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index" json:"occurred_at"`

	Kind       ActivityKind   `gorm:"column:kind;type:varchar(20);not null;index" json:"kind"`
	Action     ActivityAction `gorm:"column:action;type:varchar(20);not null" json:"action"`
	ResourceID int64          `gorm:"column:resource_id;index" json:"resource_id"`

	Description string `gorm:"column:description;type:text" json:"description"`
}

func (ActivityEntry) TableName() string {
	return "activity_log"
}

// Counts summarises the size of the clinic's records.
type Counts struct {
	Patients     int64 `json:"patients"`
	Doctors      int64 `json:"doctors"`
	Appointments int64 `json:"appointments"`
}
