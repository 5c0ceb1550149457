package notify

import (
	"context"
	"fmt"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ApprovalNotice is the context an admin needs to approve or reject a
// pending attendance event.
type ApprovalNotice struct {
	PersonID   uuid.UUID
	PersonName string
	EmployeeID string
	Date       string
	RecordID   string
	Method     string
	Reason     string
	Latitude   *float64
	Longitude  *float64
}

// CreateApprovalNotice files a dashboard notification for a check-in that
// landed in pending_approval.
func CreateApprovalNotice(ctx context.Context, notice ApprovalNotice) error {
	data := JSONB{
		"record_id":   notice.RecordID,
		"employee_id": notice.EmployeeID,
		"date":        notice.Date,
		"method":      notice.Method,
		"reason":      notice.Reason,
	}
	if notice.Latitude != nil && notice.Longitude != nil {
		data["latitude"] = *notice.Latitude
		data["longitude"] = *notice.Longitude
	}

	n := Notification{
		Type:          TypeApprovalRequired,
		Title:         "Attendance approval required",
		Message:       fmt.Sprintf("%s (%s) checked in outside verified premises on %s and needs manual approval.", notice.PersonName, notice.EmployeeID, notice.Date),
		Data:          data,
		Channels:      pq.StringArray{"dashboard"},
		RecipientRole: "admin",
		PersonID:      &notice.PersonID,
	}
	return db.DB.WithContext(ctx).Create(&n).Error
}

// CreateLeaveNotice records a newly submitted leave request.
func CreateLeaveNotice(ctx context.Context, personID uuid.UUID, personName, employeeID, startDate, endDate string) error {
	n := Notification{
		Type:    TypeLeaveRequested,
		Title:   "Leave request submitted",
		Message: fmt.Sprintf("%s (%s) requested leave from %s to %s.", personName, employeeID, startDate, endDate),
		Data: JSONB{
			"employee_id": employeeID,
			"start_date":  startDate,
			"end_date":    endDate,
		},
		Channels:      pq.StringArray{"dashboard"},
		RecipientRole: "admin",
		PersonID:      &personID,
	}
	return db.DB.WithContext(ctx).Create(&n).Error
}

// CreateAbsenceNotice records that a person documented an absence.
func CreateAbsenceNotice(ctx context.Context, personID uuid.UUID, personName, employeeID, date, absenceType string) error {
	n := Notification{
		Type:    TypeAbsenceSubmitted,
		Title:   "Absence documented",
		Message: fmt.Sprintf("%s (%s) submitted %s absence documentation for %s.", personName, employeeID, absenceType, date),
		Data: JSONB{
			"employee_id":  employeeID,
			"date":         date,
			"absence_type": absenceType,
		},
		Channels:      pq.StringArray{"dashboard"},
		RecipientRole: "admin",
		PersonID:      &personID,
	}
	return db.DB.WithContext(ctx).Create(&n).Error
}
