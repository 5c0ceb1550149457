package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type LeaveType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	MaxDays     int       `gorm:"default:14" json:"max_days"`
	CreatedAt   time.Time `json:"created_at"`
}

func (LeaveType) TableName() string { return "leave.leave_types" }

type LeaveRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PersonID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"person_id"`
	EmployeeID  string     `gorm:"not null" json:"employee_id"`
	LeaveTypeID uuid.UUID  `gorm:"type:uuid;not null" json:"leave_type_id"`
	StartDate   string     `gorm:"type:date;not null" json:"start_date"`
	EndDate     string     `gorm:"type:date;not null" json:"end_date"`
	Reason      string     `gorm:"not null" json:"reason"`
	Status      string     `gorm:"default:'pending';index" json:"status"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewNote  string     `json:"review_note,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LeaveRequest) TableName() string { return "leave.leave_requests" }
