package notify

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// JSONB is a free-form payload column. Approval notices carry the event
// context (distance, premise, method) so the admin UI can render it without
// a second lookup.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("notify: cannot scan non-bytes into JSONB")
	}
	return json.Unmarshal(bytes, j)
}

const (
	TypeApprovalRequired = "approval_required"
	TypeAbsenceSubmitted = "absence_submitted"
	TypeLeaveRequested   = "leave_requested"
)

type Notification struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Type          string         `gorm:"not null" json:"type"`
	Title         string         `gorm:"not null" json:"title"`
	Message       string         `gorm:"not null" json:"message"`
	Data          JSONB          `gorm:"type:jsonb" json:"data,omitempty"`
	Channels      pq.StringArray `gorm:"type:text[]" json:"channels"`
	RecipientRole string         `gorm:"default:'admin'" json:"recipient_role"`
	PersonID      *uuid.UUID     `gorm:"type:uuid;index" json:"person_id,omitempty"`
	Read          bool           `gorm:"default:false" json:"read"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (Notification) TableName() string {
	return "notify.notifications"
}
