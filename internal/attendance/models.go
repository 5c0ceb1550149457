package attendance

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Location is a reported coordinate stored as a JSONB column.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Address   string   `json:"address,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
}

// AbsenceDocumentation records a documented absence (sick leave, emergency)
// submitted against a day with no check-in. Stored as a JSONB column on the
// same attendance row.
type AbsenceDocumentation struct {
	Type            string    `json:"type"` // sick, emergency, personal, medical, family
	Reason          string    `json:"reason"`
	ContactNumber   string    `json:"contact_number,omitempty"`
	AdditionalNotes string    `json:"additional_notes,omitempty"`
	Files           []string  `json:"documentation_files,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

func (d AbsenceDocumentation) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *AbsenceDocumentation) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported type: %T", value)
	}
}

// Record is the one attendance row per person per calendar date. The
// composite unique index is the consistency guarantee against concurrent
// check-ins; the service maps its violation to ErrAlreadyCheckedIn.
//
// Rows are created on the first check-in (or absence submission) of the day
// and mutated in place afterwards; they are never deleted.
type Record struct {
	ID               string                `json:"id" gorm:"primaryKey"`
	PersonID         uuid.UUID             `json:"person_id" gorm:"type:uuid;index:idx_attendance_person_date,unique"`
	Date             string                `json:"date" gorm:"type:date;index:idx_attendance_person_date,unique"`
	EmployeeID       string                `json:"employee_id" gorm:"index"`
	InstitutionID    *uuid.UUID            `json:"institution_id" gorm:"type:uuid;index"`
	WorkGroupID      *uuid.UUID            `json:"work_group_id" gorm:"type:uuid"`
	CheckInTime      *time.Time            `json:"check_in_time"`
	CheckInLocation  *Location             `json:"check_in_location" gorm:"type:jsonb"`
	CheckOutTime     *time.Time            `json:"check_out_time"`
	CheckOutLocation *Location             `json:"check_out_location" gorm:"type:jsonb"`
	Status           Status                `json:"status" gorm:"type:text;default:'absent'"`
	Method           string                `json:"verification_method" gorm:"column:verification_method"`
	Notes            string                `json:"notes"`
	WorkedHours      *float64              `json:"actual_working_hours" gorm:"column:actual_working_hours"`
	OvertimeHours    *float64              `json:"overtime_hours"`
	Absence          *AbsenceDocumentation `json:"absence_documentation" gorm:"type:jsonb;column:absence_documentation"`
	Persisted        bool                  `json:"persisted" gorm:"-"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func (Record) TableName() string { return "attendance.records" }

// UnsavedIDPrefix marks record ids synthesized by the degraded write path.
// Downstream consumers can tell a best-effort response from a stored row by
// this prefix even when the Persisted flag is dropped in transit.
const UnsavedIDPrefix = "unsaved-"
