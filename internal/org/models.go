package org

import (
	"time"

	"github.com/google/uuid"
)

// LocationStatus values for Premise. Only verified premises take part in
// geofence evaluation.
const (
	LocationPending  = "pending"
	LocationVerified = "verified"
	LocationRejected = "rejected"
)

type Institution struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone" gorm:"default:'Asia/Kuala_Lumpur'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Premise is a registered physical location of an institution. The
// attendance radius is in meters around (Latitude, Longitude).
type Premise struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	InstitutionID       uuid.UUID `json:"institution_id" gorm:"type:uuid;index"`
	Name                string    `json:"name"`
	Address             string    `json:"address"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	AttendanceRadius    float64   `json:"attendance_radius" gorm:"default:300"`
	IsActive            bool      `json:"is_active" gorm:"default:true"`
	IsAttendanceEnabled bool      `json:"is_attendance_enabled" gorm:"default:true"`
	LocationStatus      string    `json:"location_status" gorm:"default:'pending'"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Institution) TableName() string { return "org.institutions" }
func (Premise) TableName() string     { return "org.premises" }
